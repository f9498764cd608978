package store

import (
	"context"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps values for the lifetime of the process.
// Used by tests and by `storage.backend: memory` for throwaway sessions.
type MemoryStore struct {
	cache *cache.Cache
}

// NewMemoryStore creates an empty MemoryStore. Entries never expire.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	if x, found := m.cache.Get(key); found {
		return x.(string), nil
	}
	return "", ErrNotFound
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	m.cache.Set(key, value, cache.NoExpiration)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	m.cache.Delete(key)
	return nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.cache.Flush()
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}
