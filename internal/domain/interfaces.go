package domain

import (
	"context"
	"strings"
)

// Document is a single file of the bundled corpus after text extraction.
type Document struct {
	ID    string
	Pages []string
}

// Text returns the page texts concatenated in page order, newline-separated.
func (d Document) Text() string { return strings.Join(d.Pages, "\n") }

// ScoredChunk is a chunk of a document together with its similarity to a query.
type ScoredChunk struct {
	Index int
	Text  string
	Score float64
}

// Retrieval is the outcome of ranking a corpus for one query.
// The zero value means no document produced any chunk.
type Retrieval struct {
	DocumentID string
	Chunks     []string
	Score      float64
}

// Found reports whether a document was selected.
func (r Retrieval) Found() bool { return r.DocumentID != "" }

// Role tags a conversational turn sent to the generation service.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Turn is one role-tagged message of a generation request.
type Turn struct {
	Role    Role
	Content string
}

// Status classifies how a pipeline operation terminated.
type Status string

const (
	StatusOK          Status = "ok"
	StatusNoDocuments Status = "no_documents"
	StatusNoMatch     Status = "no_match"
	StatusEmptyInput  Status = "empty_input"
)

// Result is what the answer and summarize operations hand back to callers.
type Result struct {
	Text       string
	DocumentID string
	Score      float64
	Status     Status
}

// Corpus lists and reads the raw documents of the bundled collection.
type Corpus interface {
	List(ctx context.Context) ([]string, error)
	Read(ctx context.Context, id string) ([]byte, error)
}

// Extractor turns a corpus document into plain text. It never fails:
// unreadable documents yield empty text.
type Extractor interface {
	Text(ctx context.Context, id string) string
}

// Chunker splits plain text into retrieval units.
type Chunker interface {
	Chunk(ctx context.Context, text string) []string
}

// Reranker reorders retrieved chunks by a secondary similarity signal.
// It must return a permutation of its input.
type Reranker interface {
	Name() string
	Rerank(ctx context.Context, query string, chunks []string) []string
}

// Generator produces text from an ordered list of turns. It never fails:
// every failure mode degrades to a text payload.
type Generator interface {
	Generate(ctx context.Context, turns []Turn) string
}

// PipelineService defines the operations exposed by the application core.
type PipelineService interface {
	Documents(ctx context.Context) []string
	Answer(ctx context.Context, question string) Result
	Summarize(ctx context.Context, prompt string) Result
	SummarizeDocument(ctx context.Context, id string) Result
}
