// Package ranker selects the document of a corpus most relevant to a query.
package ranker

import (
	"context"
	"math"
	"sort"

	"github.com/kart-io/logger/core"

	"docqa/internal/domain"
	"docqa/internal/embedding/tfidf"
)

// DefaultTopK is the number of chunks kept per document when none is configured.
const DefaultTopK = 3

// Ranker scores every document independently: each one gets its own TF-IDF
// space built from the query and that document's chunks only.
type Ranker struct {
	extractor domain.Extractor
	chunker   domain.Chunker
	topK      int
	log       core.Logger
}

func NewRanker(extractor domain.Extractor, chunker domain.Chunker, topK int, log core.Logger) *Ranker {
	if topK < 1 {
		topK = DefaultTopK
	}
	return &Ranker{extractor: extractor, chunker: chunker, topK: topK, log: log}
}

// TopK returns the number of chunks kept per document.
func (r *Ranker) TopK() int { return r.topK }

// Best returns the document whose top chunks are on average most similar to
// query. Ties keep the earlier document. Documents without chunks are
// skipped; if none has any, the zero Retrieval is returned.
func (r *Ranker) Best(ctx context.Context, query string, ids []string) domain.Retrieval {
	var best domain.Retrieval
	bestScore := -1.0
	for _, id := range ids {
		chunks := r.chunker.Chunk(ctx, r.extractor.Text(ctx, id))
		if len(chunks) == 0 {
			r.log.Debugw("document skipped, no chunks", "document", id)
			continue
		}
		top, score := Score(query, chunks, r.topK)
		r.log.Debugw("document scored", "document", id, "chunks", len(chunks), "score", score)
		if score > bestScore {
			bestScore = score
			best = domain.Retrieval{DocumentID: id, Chunks: texts(top), Score: score}
		}
	}
	if best.Found() {
		best.Score = math.Max(best.Score, 0)
	}
	return best
}

// Score returns the topK chunks most similar to query, best first with ties
// in source order, and the mean similarity of those chunks.
func Score(query string, chunks []string, topK int) ([]domain.ScoredChunk, float64) {
	if len(chunks) == 0 || topK < 1 {
		return nil, 0
	}
	v := tfidf.NewVectorizer()
	if err := v.Fit(append([]string{query}, chunks...)); err != nil {
		return nil, 0
	}
	qv, _ := v.Transform(query)
	scored := make([]domain.ScoredChunk, len(chunks))
	for i, ch := range chunks {
		cv, _ := v.Transform(ch)
		scored[i] = domain.ScoredChunk{Index: i, Text: ch, Score: math.Min(tfidf.Cosine(qv, cv), 1)}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if topK > len(scored) {
		topK = len(scored)
	}
	top := scored[:topK]
	sum := 0.0
	for _, s := range top {
		sum += s.Score
	}
	return top, sum / float64(len(top))
}

func texts(scored []domain.ScoredChunk) []string {
	out := make([]string, len(scored))
	for i, s := range scored {
		out[i] = s.Text
	}
	return out
}
