package store

import (
	"context"

	"github.com/amirasaad/currency-converter/pkg/store"
	"github.com/patrickmn/go-cache"
)

// Memory is a process-local backend. Entries never expire.
type Memory struct {
	cache *cache.Cache
}

func NewMemory() *Memory {
	return &Memory{cache: cache.New(cache.NoExpiration, 0)}
}

// Get implements store.KV.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.cache.Get(key)
	if !ok {
		return nil, store.ErrNotFound
	}
	raw := v.([]byte)
	return append([]byte(nil), raw...), nil
}

// Set implements store.KV.
func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.cache.Set(key, append([]byte(nil), value...), cache.NoExpiration)
	return nil
}

var _ store.KV = (*Memory)(nil)

// Close implements Backend.
func (m *Memory) Close() error {
	m.cache.Flush()
	return nil
}
