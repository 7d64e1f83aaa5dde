package chunker

import (
	"context"
	"strconv"

	"docqa/internal/cache"
)

// Memoized caches chunk lists keyed by (limit, text).
type Memoized struct {
	inner *SentenceChunker
	memo  *cache.Memo
}

func NewMemoized(inner *SentenceChunker, memo *cache.Memo) *Memoized {
	return &Memoized{inner: inner, memo: memo}
}

func (m *Memoized) Chunk(ctx context.Context, text string) []string {
	key := cache.Key("chunk", []byte(strconv.Itoa(m.inner.MaxWords())), []byte(text))
	return m.memo.Strings(ctx, key, func() []string { return m.inner.Chunk(text) })
}
