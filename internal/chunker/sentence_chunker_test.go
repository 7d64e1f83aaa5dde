package chunker

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/cache"
	"docqa/internal/logging"
)

func TestSentences(t *testing.T) {
	c := NewSentenceChunker(10)

	got := c.Sentences("  Tuition deadlines are March 1. Fees are due April 1!  Really?\nYes  ")
	assert.Equal(t, []string{
		"Tuition deadlines are March 1.",
		"Fees are due April 1!",
		"Really?",
		"Yes",
	}, got)

	// no whitespace after the dot: not a boundary
	assert.Equal(t, []string{"Version 1.2 ships soon."}, c.Sentences("Version 1.2 ships soon."))
	assert.Nil(t, c.Sentences(" \n\t "))
}

func TestSentences_UnicodeSpaceAfterPunctuation(t *testing.T) {
	c := NewSentenceChunker(3)
	text := "One two three.\u00a0Four five six.\u2009Seven."
	assert.Equal(t, []string{"One two three.", "Four five six.", "Seven."}, c.Sentences(text))
	assert.Equal(t, []string{"One two three.", "Four five six.", "Seven."}, c.Chunk(text))
}

func TestChunk_EmptyInput(t *testing.T) {
	c := NewSentenceChunker(5)
	assert.Empty(t, c.Chunk(""))
	assert.Empty(t, c.Chunk("   \n\t  "))
}

func TestChunk_PacksSentencesUpToLimit(t *testing.T) {
	c := NewSentenceChunker(8)
	text := "One two three. Four five six. Seven eight nine ten. Eleven."

	got := c.Chunk(text)
	assert.Equal(t, []string{
		"One two three. Four five six.",
		"Seven eight nine ten. Eleven.",
	}, got)
}

func TestChunk_LimitIsInclusive(t *testing.T) {
	c := NewSentenceChunker(4)
	got := c.Chunk("a b. c d. e.")
	assert.Equal(t, []string{"a b. c d.", "e."}, got)
}

func TestChunk_LongSentenceStaysWhole(t *testing.T) {
	c := NewSentenceChunker(3)
	long := "this sentence has far more than three words in it."
	got := c.Chunk("Short one. " + long + " Tail here.")

	require.Len(t, got, 3)
	assert.Equal(t, "Short one.", got[0])
	assert.Equal(t, long, got[1])
	assert.Equal(t, "Tail here.", got[2])
}

func TestChunk_NonPositiveLimitUsesDefault(t *testing.T) {
	assert.Equal(t, DefaultMaxWords, NewSentenceChunker(0).MaxWords())
	assert.Equal(t, DefaultMaxWords, NewSentenceChunker(-3).MaxWords())
}

func TestChunk_Properties(t *testing.T) {
	texts := []string{
		"Tuition deadlines are March 1. Fees are due April 1.",
		"The music department offers jazz studies.",
		"no punctuation at all just words flowing on and on and on",
		"A! B? C. D e f g h i j k l m n o p q r s t u v w x y z. End.",
		strings.Repeat("Registration opens in the spring term for all students. ", 40),
		"Line one.\nLine two.\n\nLine three?  Line four!",
	}
	for _, limit := range []int{1, 2, 5, 17, 500} {
		for i, text := range texts {
			t.Run(fmt.Sprintf("limit=%d/text=%d", limit, i), func(t *testing.T) {
				c := NewSentenceChunker(limit)
				chunks := c.Chunk(text)

				// word sequence preserved
				assert.Equal(t, strings.Fields(text), strings.Fields(strings.Join(chunks, " ")))

				for _, ch := range chunks {
					assert.NotEmpty(t, strings.TrimSpace(ch))
					n := len(strings.Fields(ch))
					if n > limit {
						// only a single over-long sentence may exceed the limit
						assert.Len(t, c.Sentences(ch), 1, "chunk %q exceeds limit", ch)
					}
				}

				// deterministic
				assert.Equal(t, chunks, c.Chunk(text))
			})
		}
	}
}

func TestChunk_ThreeTimesLimit(t *testing.T) {
	const limit = 20
	var sb strings.Builder
	for i := 0; i < 12; i++ {
		fmt.Fprintf(&sb, "Sentence %d has five words. ", i)
	}
	text := sb.String()
	require.Len(t, strings.Fields(text), 3*limit)

	chunks := NewSentenceChunker(limit).Chunk(text)
	assert.GreaterOrEqual(t, len(chunks), 3)
	total := 0
	for _, ch := range chunks {
		n := len(strings.Fields(ch))
		assert.LessOrEqual(t, n, limit)
		total += n
	}
	assert.Equal(t, len(strings.Fields(text)), total)
}

func TestMemoized_CachesByLimitAndText(t *testing.T) {
	store := cache.NewMemoryStore()
	memo := cache.NewMemo(store, logging.Nop())
	ctx := context.Background()

	m := NewMemoized(NewSentenceChunker(3), memo)
	first := m.Chunk(ctx, "a b c. d e f.")
	assert.Equal(t, []string{"a b c.", "d e f."}, first)
	assert.Equal(t, 1, store.Len())

	assert.Equal(t, first, m.Chunk(ctx, "a b c. d e f."))
	assert.Equal(t, 1, store.Len())

	other := NewMemoized(NewSentenceChunker(10), memo)
	assert.Equal(t, []string{"a b c. d e f."}, other.Chunk(ctx, "a b c. d e f."))
	assert.Equal(t, 2, store.Len())

	assert.Empty(t, m.Chunk(ctx, "   "))
}
