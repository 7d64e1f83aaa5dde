// Package service wires corpus, ranking, refinement and generation into the
// question-answering and summarization operations.
package service

import (
	"context"
	"strings"

	"github.com/kart-io/logger/core"

	"docqa/internal/domain"
)

// Retriever picks the most relevant document for a query.
type Retriever interface {
	Best(ctx context.Context, query string, ids []string) domain.Retrieval
}

// Outliner picks representative sentences without calling the generator.
type Outliner interface {
	Summarize(text string, n int) string
}

// Deps are the collaborators of a Pipeline.
type Deps struct {
	Corpus    domain.Corpus
	Extractor domain.Extractor
	Chunker   domain.Chunker
	Retriever Retriever
	Reranker  domain.Reranker
	Generator domain.Generator
	Outliner  Outliner
}

// Options tune a Pipeline.
type Options struct {
	// CorpusLabel names the corpus in the empty-corpus marker.
	CorpusLabel string
	// MinScore rejects winners below it. Zero disables the check.
	MinScore float64
}

// Pipeline implements domain.PipelineService.
type Pipeline struct {
	deps Deps
	opts Options
	log  core.Logger
}

var _ domain.PipelineService = (*Pipeline)(nil)

func NewPipeline(deps Deps, opts Options, log core.Logger) *Pipeline {
	return &Pipeline{deps: deps, opts: opts, log: log}
}

// Documents lists the corpus. A listing failure is logged and reported as
// an empty corpus.
func (p *Pipeline) Documents(ctx context.Context) []string {
	ids, err := p.deps.Corpus.List(ctx)
	if err != nil {
		p.log.Warnw("corpus listing failed", "corpus", p.opts.CorpusLabel, "error", err.Error())
		return nil
	}
	return ids
}

// Answer answers question from the most relevant document.
func (p *Pipeline) Answer(ctx context.Context, question string) domain.Result {
	if strings.TrimSpace(question) == "" {
		return domain.Result{Text: MarkerBlankQuestion, Status: domain.StatusEmptyInput}
	}
	r, res, ok := p.retrieve(ctx, question, MarkerNoAnswerDoc)
	if !ok {
		return res
	}
	text := p.deps.Generator.Generate(ctx, answerTurns(r.DocumentID, joinContext(r.Chunks), question))
	return domain.Result{Text: text, DocumentID: r.DocumentID, Score: r.Score, Status: domain.StatusOK}
}

// Summarize writes a summary of the document most relevant to prompt,
// focused on what prompt asks for.
func (p *Pipeline) Summarize(ctx context.Context, prompt string) domain.Result {
	if strings.TrimSpace(prompt) == "" {
		return domain.Result{Text: MarkerBlankPrompt, Status: domain.StatusEmptyInput}
	}
	r, res, ok := p.retrieve(ctx, prompt, MarkerNoSummaryDoc)
	if !ok {
		return res
	}
	text := p.deps.Generator.Generate(ctx, summaryTurns(r.DocumentID, joinContext(r.Chunks), prompt))
	return domain.Result{Text: text, DocumentID: r.DocumentID, Score: r.Score, Status: domain.StatusOK}
}

// SummarizeDocument summarizes a whole document in two stages.
func (p *Pipeline) SummarizeDocument(ctx context.Context, id string) domain.Result {
	text := p.deps.Extractor.Text(ctx, id)
	if strings.TrimSpace(text) == "" {
		return domain.Result{Text: MarkerNoSummaryDoc, Status: domain.StatusNoMatch}
	}
	return domain.Result{Text: p.SummarizeText(ctx, text), DocumentID: id, Status: domain.StatusOK}
}

// OutlineDocument returns the n most representative sentences of a
// document in their original order.
func (p *Pipeline) OutlineDocument(ctx context.Context, id string, n int) domain.Result {
	text := p.deps.Extractor.Text(ctx, id)
	if strings.TrimSpace(text) == "" || p.deps.Outliner == nil {
		return domain.Result{Text: MarkerNoSummaryDoc, Status: domain.StatusNoMatch}
	}
	return domain.Result{Text: p.deps.Outliner.Summarize(text, n), DocumentID: id, Status: domain.StatusOK}
}

// SummarizeText summarizes every chunk of text independently, then merges
// the partial notes with one more generation call. Empty text yields "".
func (p *Pipeline) SummarizeText(ctx context.Context, text string) string {
	chunks := p.deps.Chunker.Chunk(ctx, text)
	if len(chunks) == 0 {
		return ""
	}
	partials := make([]string, 0, len(chunks))
	for i, c := range chunks {
		partials = append(partials, p.deps.Generator.Generate(ctx, sectionTurns(c)))
		p.log.Debugw("section summarized", "section", i+1, "of", len(chunks))
	}
	return p.deps.Generator.Generate(ctx, unifyTurns(strings.Join(partials, "\n\n")))
}

// retrieve runs listing, ranking and refinement. When it returns false the
// Result carries the marker to hand back.
func (p *Pipeline) retrieve(ctx context.Context, query, noMatch string) (domain.Retrieval, domain.Result, bool) {
	ids := p.Documents(ctx)
	if len(ids) == 0 {
		return domain.Retrieval{}, domain.Result{Text: NoDocumentsMarker(p.opts.CorpusLabel), Status: domain.StatusNoDocuments}, false
	}

	r := p.deps.Retriever.Best(ctx, query, ids)
	if !r.Found() {
		p.log.Infow("no document matched", "documents", len(ids))
		return r, domain.Result{Text: noMatch, Status: domain.StatusNoMatch}, false
	}
	if p.opts.MinScore > 0 && r.Score < p.opts.MinScore {
		p.log.Infow("best document below threshold", "document", r.DocumentID, "score", r.Score, "min_score", p.opts.MinScore)
		return domain.Retrieval{}, domain.Result{Text: noMatch, Status: domain.StatusNoMatch}, false
	}

	r.Chunks = p.deps.Reranker.Rerank(ctx, query, r.Chunks)
	p.log.Infow("document selected", "document", r.DocumentID, "score", r.Score, "reranker", p.deps.Reranker.Name())
	return r, domain.Result{}, true
}
