// Package extract converts corpus documents into plain text.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kart-io/logger/core"
	"github.com/ledongthuc/pdf"

	"docqa/internal/cache"
	"docqa/internal/domain"
)

// Extractor reads documents from a corpus and returns their page text joined
// in page order. Failures degrade to empty text so that a broken document
// simply contributes nothing to ranking.
type Extractor struct {
	corpus domain.Corpus
	memo   *cache.Memo
	log    core.Logger
}

func NewExtractor(corpus domain.Corpus, memo *cache.Memo, log core.Logger) *Extractor {
	return &Extractor{corpus: corpus, memo: memo, log: log}
}

// Text returns the plain text of document id, or "" when it cannot be read.
func (e *Extractor) Text(ctx context.Context, id string) string {
	data, err := e.corpus.Read(ctx, id)
	if err != nil {
		e.log.Warnw("document unreadable", "document", id, "error", err.Error())
		return ""
	}
	key := cache.Key("extract", []byte(id), data)
	return e.memo.String(ctx, key, func() string {
		doc, err := Parse(id, data)
		if err != nil {
			e.log.Warnw("text extraction failed", "document", id, "error", err.Error())
			return ""
		}
		text := doc.Text()
		e.log.Debugw("extracted document", "document", id, "pages", len(doc.Pages), "chars", len(text))
		return text
	})
}

// Parse decodes raw document bytes according to the extension of id.
func Parse(id string, data []byte) (domain.Document, error) {
	switch strings.ToLower(filepath.Ext(id)) {
	case ".pdf":
		pages, err := pdfPages(data)
		if err != nil {
			return domain.Document{}, err
		}
		return domain.Document{ID: id, Pages: pages}, nil
	case ".txt", ".md":
		return domain.Document{ID: id, Pages: []string{string(data)}}, nil
	default:
		return domain.Document{}, fmt.Errorf("unsupported file type: %s", filepath.Ext(id))
	}
}

// pdfPages extracts the text of every page. Null pages and pages whose
// content cannot be decoded are skipped; the parser panics on some malformed
// files, which is reported as an error.
func pdfPages(data []byte) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("malformed pdf: %v", r)
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF reader: %w", err)
	}
	total := reader.NumPage()
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := pageText(page)
		if err != nil {
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}

func pageText(page pdf.Page) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("page content: %v", r)
		}
	}()
	return page.GetPlainText(nil)
}
