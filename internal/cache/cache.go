// Package cache memoizes extraction and chunking results.
//
// Entries are write-once: a key always maps to the value computed from the
// content it was derived from, so nothing is ever invalidated in-process.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// ErrClosed is returned by stores used after Close.
var ErrClosed = errors.New("cache: store closed")

// Store is a byte-oriented key/value backend.
type Store interface {
	// Get returns the value and true when key is present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key unless the key is already present.
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Key derives a content-addressed cache key. Parts are separated by a NUL
// byte so that ("ab","c") and ("a","bc") never collide.
func Key(namespace string, parts ...[]byte) string {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write(p)
	}
	return namespace + ":" + hex.EncodeToString(h.Sum(nil))
}
