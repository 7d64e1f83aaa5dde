// Package corpus exposes the bundled document folder.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNotFound is returned when an id does not name a document of the corpus.
var ErrNotFound = errors.New("document not found")

// Extensions lists the file types the corpus serves, lower-case.
var Extensions = []string{".pdf", ".txt", ".md"}

// Directory serves the documents found directly inside one folder.
type Directory struct {
	root string
}

func NewDirectory(root string) *Directory {
	return &Directory{root: root}
}

// Root returns the folder the corpus reads from.
func (d *Directory) Root() string { return d.root }

// List returns the sorted file names of all supported documents.
// A missing folder is an empty corpus, not an error.
func (d *Directory) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list %s: %w", d.root, err)
	}
	var ids []string
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() || !Supported(e.Name()) {
			continue
		}
		ids = append(ids, e.Name())
	}
	sort.Strings(ids)
	return ids, nil
}

// Read returns the raw bytes of the document named id.
func (d *Directory) Read(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if id == "" || id != filepath.Base(id) || !Supported(id) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	data, err := os.ReadFile(filepath.Join(d.root, id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
		}
		return nil, fmt.Errorf("read %s: %w", id, err)
	}
	return data, nil
}

// Supported reports whether name has one of the served extensions.
func Supported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}
