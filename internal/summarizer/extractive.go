// Package summarizer picks representative sentences from a text without
// calling the generation service.
package summarizer

import (
	"math"
	"sort"
	"strings"

	"docqa/internal/embedding/tfidf"
)

// DefaultSentences is used when a non-positive count is requested.
const DefaultSentences = 5

// Splitter breaks text into sentences.
type Splitter interface {
	Sentences(text string) []string
}

// Extractive ranks sentences by the normalized frequency of their
// non-stopword terms and keeps the best ones in document order.
type Extractive struct {
	splitter  Splitter
	tokens    *tfidf.Vectorizer
	stopwords map[string]struct{}
}

func NewExtractive(splitter Splitter) *Extractive {
	return &Extractive{splitter: splitter, tokens: tfidf.NewVectorizer(), stopwords: defaultStopwords()}
}

// Summarize returns at most n sentences of text joined by single spaces.
func (s *Extractive) Summarize(text string, n int) string {
	if n <= 0 {
		n = DefaultSentences
	}
	sentences := s.splitter.Sentences(text)
	if len(sentences) <= n {
		return strings.Join(sentences, " ")
	}

	tokenized := make([][]string, len(sentences))
	freq := map[string]float64{}
	top := 0.0
	for i, sent := range sentences {
		tokenized[i] = s.tokens.Tokenize(sent)
		for _, tok := range tokenized[i] {
			if _, stop := s.stopwords[tok]; stop {
				continue
			}
			freq[tok]++
			top = math.Max(top, freq[tok])
		}
	}

	type scored struct {
		idx   int
		score float64
	}
	ranked := make([]scored, len(sentences))
	for i, toks := range tokenized {
		sum := 0.0
		for _, tok := range toks {
			sum += freq[tok]
		}
		if len(toks) > 0 && top > 0 {
			// damped by sentence length
			sum /= top * math.Sqrt(float64(len(toks)))
		}
		ranked[i] = scored{i, sum}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	keep := make([]int, n)
	for i := range keep {
		keep[i] = ranked[i].idx
	}
	sort.Ints(keep)
	out := make([]string, n)
	for i, idx := range keep {
		out[i] = sentences[idx]
	}
	return strings.Join(out, " ")
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with",
		"as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up",
		"down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through",
		"during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will",
		"just", "should", "now", "all", "any", "each", "may", "must", "not", "no", "its", "their", "our", "we", "you",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
