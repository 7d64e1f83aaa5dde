// Package reranker refines the order of retrieved chunks with a secondary
// similarity signal. Every strategy returns a permutation of its input.
package reranker

import (
	"context"
	"errors"
	"sort"
)

var (
	// ErrUnavailable means the similarity service could not be reached or refused the call.
	ErrUnavailable = errors.New("similarity service unavailable")
	// ErrTimeout means the per-call deadline expired.
	ErrTimeout = errors.New("similarity service timeout")
	// ErrInvalidResponse means the service answered with a body that carries no score.
	ErrInvalidResponse = errors.New("similarity service invalid response")
)

// Noop keeps the retrieval order. It is used when no credential is configured.
type Noop struct{}

func (Noop) Name() string { return "none" }

func (Noop) Rerank(_ context.Context, _ string, chunks []string) []string { return chunks }

// SimilarityFunc scores one (query, candidate) pair.
type SimilarityFunc func(ctx context.Context, query, candidate string) (float64, error)

// sortBySimilarity orders chunks by descending score, keeping the input order
// among equal scores. Failed calls score 0.
func sortBySimilarity(ctx context.Context, query string, chunks []string, sim SimilarityFunc, onError func(int, error)) []string {
	type pair struct {
		score float64
		text  string
	}
	scored := make([]pair, len(chunks))
	for i, c := range chunks {
		s, err := sim(ctx, query, c)
		if err != nil {
			onError(i, err)
			s = 0
		}
		scored[i] = pair{score: s, text: c}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })
	out := make([]string, len(scored))
	for i, p := range scored {
		out[i] = p.text
	}
	return out
}
