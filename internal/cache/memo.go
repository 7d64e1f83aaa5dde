package cache

import (
	"context"
	"encoding/json"

	"github.com/kart-io/logger/core"
	"golang.org/x/sync/singleflight"
)

// Memo computes values at most once per key and per process, even under
// concurrent misses. Store failures only cost a recomputation.
type Memo struct {
	store Store
	log   core.Logger
	group singleflight.Group
}

func NewMemo(store Store, log core.Logger) *Memo {
	return &Memo{store: store, log: log}
}

// Do returns the cached value for key or stores the result of compute.
// Errors from compute are returned and not cached.
func (m *Memo) Do(ctx context.Context, key string, compute func() ([]byte, error)) ([]byte, error) {
	if v, ok, err := m.store.Get(ctx, key); err != nil {
		m.log.Warnw("cache get failed", "key", key, "error", err.Error())
	} else if ok {
		return v, nil
	}
	v, err, _ := m.group.Do(key, func() (interface{}, error) {
		// another flight may have filled the key since the first lookup
		if v, ok, err := m.store.Get(ctx, key); err == nil && ok {
			return v, nil
		}
		data, err := compute()
		if err != nil {
			return nil, err
		}
		if err := m.store.Set(ctx, key, data); err != nil {
			m.log.Warnw("cache set failed", "key", key, "error", err.Error())
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Strings memoizes a string-slice computation, JSON-encoded in the store.
func (m *Memo) Strings(ctx context.Context, key string, compute func() []string) []string {
	data, err := m.Do(ctx, key, func() ([]byte, error) {
		return json.Marshal(compute())
	})
	if err != nil {
		m.log.Warnw("cache compute failed", "key", key, "error", err.Error())
		return compute()
	}
	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		m.log.Warnw("cache entry corrupt", "key", key, "error", err.Error())
		return compute()
	}
	return out
}

// String memoizes a string computation.
func (m *Memo) String(ctx context.Context, key string, compute func() string) string {
	data, err := m.Do(ctx, key, func() ([]byte, error) {
		return []byte(compute()), nil
	})
	if err != nil {
		return compute()
	}
	return string(data)
}
