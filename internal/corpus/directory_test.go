package corpus

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestDirectory_ListSortedSupportedOnly(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.pdf", "%PDF-1.4")
	writeFile(t, dir, "A.PDF", "%PDF-1.4")
	writeFile(t, dir, "notes.txt", "hello")
	writeFile(t, dir, "image.png", "png")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.pdf"), 0o755))

	ids, err := NewDirectory(dir).List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"A.PDF", "b.pdf", "notes.txt"}, ids)
}

func TestDirectory_MissingFolderIsEmpty(t *testing.T) {
	ids, err := NewDirectory(filepath.Join(t.TempDir(), "absent")).List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestDirectory_Read(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", "hello")
	d := NewDirectory(dir)
	ctx := context.Background()

	data, err := d.Read(ctx, "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	for _, id := range []string{"", "missing.txt", "../notes.txt", "image.png"} {
		_, err := d.Read(ctx, id)
		assert.ErrorIs(t, err, ErrNotFound, id)
	}
}

func TestDirectory_HonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewDirectory(t.TempDir()).Read(ctx, "x.txt")
	assert.ErrorIs(t, err, context.Canceled)
}
