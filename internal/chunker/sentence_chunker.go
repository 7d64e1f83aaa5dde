package chunker

import (
	"regexp"
	"strings"
)

// DefaultMaxWords is the chunk size used when no positive limit is configured.
const DefaultMaxWords = 500

// SentenceChunker packs whole sentences into chunks of at most maxWords words.
// The limit is soft: a sentence longer than the limit becomes a chunk of its own.
type SentenceChunker struct {
	maxWords int
	boundary *regexp.Regexp
}

func NewSentenceChunker(maxWords int) *SentenceChunker {
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}
	return &SentenceChunker{
		maxWords: maxWords,
		boundary: regexp.MustCompile(`[.!?][\s\p{Zs}]+`),
	}
}

// MaxWords returns the configured words-per-chunk limit.
func (c *SentenceChunker) MaxWords() int { return c.maxWords }

// Chunk splits text into sentence-aligned chunks, preserving source order.
func (c *SentenceChunker) Chunk(text string) []string {
	var chunks []string
	var current []string
	for _, sentence := range c.Sentences(text) {
		words := strings.Fields(sentence)
		if len(words) == 0 {
			continue
		}
		if len(current)+len(words) > c.maxWords {
			if len(current) > 0 {
				chunks = append(chunks, strings.Join(current, " "))
			}
			current = append(current[:0:0], words...)
			continue
		}
		current = append(current, words...)
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}

// Sentences splits text after each '.', '!' or '?' that is followed by whitespace,
// including Unicode spaces such as U+00A0.
func (c *SentenceChunker) Sentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	var sentences []string
	start := 0
	for _, loc := range c.boundary.FindAllStringIndex(text, -1) {
		sentences = append(sentences, text[start:loc[0]+1])
		start = loc[1]
	}
	return append(sentences, text[start:])
}
