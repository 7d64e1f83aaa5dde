package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/cache"
	"docqa/internal/chunker"
	"docqa/internal/corpus"
	"docqa/internal/domain"
	"docqa/internal/extract"
	"docqa/internal/generator"
	"docqa/internal/logging"
	"docqa/internal/ranker"
	"docqa/internal/reranker"
	"docqa/internal/summarizer"
)

type recorder struct {
	mu    sync.Mutex
	calls [][]domain.Turn
}

func (r *recorder) Generate(_ context.Context, turns []domain.Turn) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, turns)
	return fmt.Sprintf("out-%d", len(r.calls))
}

type reversing struct{ queries []string }

func (r *reversing) Name() string { return "reversing" }

func (r *reversing) Rerank(_ context.Context, query string, chunks []string) []string {
	r.queries = append(r.queries, query)
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[len(chunks)-1-i] = c
	}
	return out
}

type fixture struct {
	dir      string
	maxWords int
	topK     int
	minScore float64
	gen      domain.Generator
	rerank   domain.Reranker
}

func (f fixture) build(t *testing.T, files map[string]string) *Pipeline {
	t.Helper()
	dir := f.dir
	if dir == "" {
		dir = t.TempDir()
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	if f.maxWords == 0 {
		f.maxWords = 500
	}
	if f.rerank == nil {
		f.rerank = reranker.Noop{}
	}
	log := logging.Nop()
	memo := cache.NewMemo(cache.NewMemoryStore(), log)
	src := corpus.NewDirectory(dir)
	ext := extract.NewExtractor(src, memo, log)
	chk := chunker.NewMemoized(chunker.NewSentenceChunker(f.maxWords), memo)
	return NewPipeline(Deps{
		Corpus:    src,
		Extractor: ext,
		Chunker:   chk,
		Retriever: ranker.NewRanker(ext, chk, f.topK, log),
		Reranker:  f.rerank,
		Generator: f.gen,
		Outliner:  summarizer.NewExtractive(chunker.NewSentenceChunker(f.maxWords)),
	}, Options{CorpusLabel: "pdfs", MinScore: f.minScore}, log)
}

var campus = map[string]string{
	"tuition.txt": "Tuition deadlines are March 1. Fees are due April 1.",
	"music.txt":   "The music department offers jazz studies.",
}

func TestAnswer_SelectsRelevantDocument(t *testing.T) {
	gen := &recorder{}
	p := fixture{gen: gen}.build(t, campus)

	res := p.Answer(context.Background(), "When are tuition deadlines?")
	assert.Equal(t, domain.StatusOK, res.Status)
	assert.Equal(t, "tuition.txt", res.DocumentID)
	assert.Greater(t, res.Score, 0.0)
	assert.Equal(t, "out-1", res.Text)

	require.Len(t, gen.calls, 1)
	turns := gen.calls[0]
	require.Len(t, turns, 2)
	assert.Equal(t, domain.RoleSystem, turns[0].Role)
	assert.Equal(t, "You are a precise academic assistant.", turns[0].Content)
	assert.Equal(t, domain.RoleUser, turns[1].Role)
	assert.Contains(t, turns[1].Content, "the PDF titled 'tuition.txt'")
	assert.Contains(t, turns[1].Content, "Use ONLY the context below.")
	assert.Contains(t, turns[1].Content, "Context:\nTuition deadlines are March 1.")
	assert.Contains(t, turns[1].Content, "Question: When are tuition deadlines?\n")
}

func TestAnswer_FallbackEchoesPrompt(t *testing.T) {
	gen := generator.NewClient(nil, generator.Options{}, logging.Nop())
	p := fixture{gen: gen}.build(t, campus)

	res := p.Answer(context.Background(), "When are tuition deadlines?")
	assert.Equal(t, "tuition.txt", res.DocumentID)
	assert.True(t, strings.HasPrefix(res.Text, "You are answering a question about the PDF titled 'tuition.txt'."), res.Text)
	assert.Contains(t, res.Text, "Tuition deadlines are March 1.")
}

func TestEmptyCorpus(t *testing.T) {
	gen := &recorder{}
	want := domain.Result{Text: "[No PDFs found in the 'pdfs' folder.]", Status: domain.StatusNoDocuments}

	p := fixture{gen: gen}.build(t, nil)
	assert.Equal(t, want, p.Answer(context.Background(), "anything"))
	assert.Equal(t, want, p.Summarize(context.Background(), "anything"))

	missing := fixture{gen: gen, dir: filepath.Join(t.TempDir(), "absent")}.build(t, nil)
	assert.Equal(t, want, missing.Answer(context.Background(), "anything"))
	assert.Empty(t, gen.calls)
}

func TestNoMatch_DocumentsWithoutText(t *testing.T) {
	gen := &recorder{}
	p := fixture{gen: gen}.build(t, map[string]string{"blank.txt": "  \n ", "broken.pdf": "not a pdf"})

	res := p.Answer(context.Background(), "When are tuition deadlines?")
	assert.Equal(t, domain.Result{Text: MarkerNoAnswerDoc, Status: domain.StatusNoMatch}, res)

	res = p.Summarize(context.Background(), "tuition")
	assert.Equal(t, domain.Result{Text: MarkerNoSummaryDoc, Status: domain.StatusNoMatch}, res)
	assert.Empty(t, gen.calls)
}

func TestMinScore(t *testing.T) {
	gen := &recorder{}
	loose := fixture{gen: gen}.build(t, campus)
	res := loose.Answer(context.Background(), "quantum chromodynamics")
	assert.Equal(t, domain.StatusOK, res.Status)
	assert.Equal(t, 0.0, res.Score)
	assert.Equal(t, "music.txt", res.DocumentID, "ties keep the first listed document")

	strict := fixture{gen: gen, minScore: 0.1}.build(t, campus)
	res = strict.Answer(context.Background(), "quantum chromodynamics")
	assert.Equal(t, domain.Result{Text: MarkerNoAnswerDoc, Status: domain.StatusNoMatch}, res)

	res = strict.Answer(context.Background(), "When are tuition deadlines?")
	assert.Equal(t, domain.StatusOK, res.Status)
}

func TestBlankInput(t *testing.T) {
	gen := &recorder{}
	p := fixture{gen: gen}.build(t, campus)

	assert.Equal(t, domain.Result{Text: MarkerBlankQuestion, Status: domain.StatusEmptyInput}, p.Answer(context.Background(), " \t\n"))
	assert.Equal(t, domain.Result{Text: MarkerBlankPrompt, Status: domain.StatusEmptyInput}, p.Summarize(context.Background(), ""))
	assert.Empty(t, gen.calls)
}

func TestRerankAppliesToBothVariants(t *testing.T) {
	gen := &recorder{}
	rr := &reversing{}
	p := fixture{gen: gen, rerank: rr, maxWords: 5}.build(t, map[string]string{
		"fees.txt": "Tuition fees rise in spring. Tuition fees fall in autumn. Parking costs stay flat.",
	})

	res := p.Answer(context.Background(), "tuition fees spring")
	require.Equal(t, domain.StatusOK, res.Status)
	res = p.Summarize(context.Background(), "tuition fees spring")
	require.Equal(t, domain.StatusOK, res.Status)

	assert.Equal(t, []string{"tuition fees spring", "tuition fees spring"}, rr.queries)
	require.Len(t, gen.calls, 2)
	for _, call := range gen.calls {
		user := call[1].Content
		// ranked best-first, then reversed by the refinement stage
		assert.Less(t, strings.Index(user, "Parking costs stay flat."), strings.Index(user, "Tuition fees rise in spring."))
	}
	assert.Contains(t, gen.calls[1][0].Content, "faithful, high-level summaries")
	assert.Contains(t, gen.calls[1][1].Content, "the PDF 'fees.txt'")
	assert.Contains(t, gen.calls[1][1].Content, "this request: 'tuition fees spring'")
}

func TestSummarizeText_TwoStage(t *testing.T) {
	gen := &recorder{}
	p := fixture{gen: gen, maxWords: 5}.build(t, nil)

	out := p.SummarizeText(context.Background(), "One two three four five. Six seven eight nine ten. Eleven twelve.")
	assert.Equal(t, "out-4", out)
	require.Len(t, gen.calls, 4)
	assert.Equal(t, "You are a concise academic summarizer.", gen.calls[0][0].Content)
	assert.Equal(t, "Summarize this section in 3–6 bullet points.\n\nOne two three four five.", gen.calls[0][1].Content)
	assert.Equal(t, "Summarize this section in 3–6 bullet points.\n\nEleven twelve.", gen.calls[2][1].Content)

	final := gen.calls[3]
	assert.Equal(t, "You write clean, faithful, non-redundant summaries.", final[0].Content)
	assert.True(t, strings.HasSuffix(final[1].Content, "\n\nout-1\n\nout-2\n\nout-3"), final[1].Content)

	gen.calls = nil
	assert.Equal(t, "", p.SummarizeText(context.Background(), "   "))
	assert.Empty(t, gen.calls)
}

func TestSummarizeDocument_LargeDocument(t *testing.T) {
	const limit = 20
	var sb strings.Builder
	for i := 0; i < 12; i++ {
		fmt.Fprintf(&sb, "Clause %d covers housing policy. ", i)
	}
	gen := &recorder{}
	p := fixture{gen: gen, maxWords: limit}.build(t, map[string]string{"policy.txt": sb.String()})

	res := p.SummarizeDocument(context.Background(), "policy.txt")
	assert.Equal(t, domain.StatusOK, res.Status)
	assert.Equal(t, "policy.txt", res.DocumentID)

	sections := gen.calls[:len(gen.calls)-1]
	require.GreaterOrEqual(t, len(sections), 3)
	words := 0
	for _, call := range sections {
		body := strings.TrimPrefix(call[1].Content, "Summarize this section in 3–6 bullet points.\n\n")
		n := len(strings.Fields(body))
		assert.LessOrEqual(t, n, limit)
		words += n
	}
	assert.Equal(t, len(strings.Fields(sb.String())), words)
}

func TestSummarizeDocument_Unknown(t *testing.T) {
	gen := &recorder{}
	p := fixture{gen: gen}.build(t, campus)
	assert.Equal(t, domain.Result{Text: MarkerNoSummaryDoc, Status: domain.StatusNoMatch}, p.SummarizeDocument(context.Background(), "nope.pdf"))
	assert.Empty(t, gen.calls)
}

func TestDocuments(t *testing.T) {
	p := fixture{gen: &recorder{}}.build(t, map[string]string{"b.pdf": "x", "a.txt": "y", "skip.png": "z"})
	assert.Equal(t, []string{"a.txt", "b.pdf"}, p.Documents(context.Background()))
}

func TestOutlineDocument(t *testing.T) {
	gen := &recorder{}
	p := fixture{gen: gen}.build(t, map[string]string{
		"housing.txt": "Housing applications open in May. The weather was pleasant. " +
			"Housing applications require a deposit. Late housing applications are waitlisted.",
	})

	res := p.OutlineDocument(context.Background(), "housing.txt", 2)
	assert.Equal(t, domain.StatusOK, res.Status)
	assert.Equal(t, "housing.txt", res.DocumentID)
	assert.Equal(t, "Housing applications require a deposit. Late housing applications are waitlisted.", res.Text)
	assert.Empty(t, gen.calls)

	res = p.OutlineDocument(context.Background(), "missing.txt", 2)
	assert.Equal(t, domain.StatusNoMatch, res.Status)
}
