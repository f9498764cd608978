// Package store provides the small key-value persistence port the client uses
// to remember the session token, the signed-in user record and the last
// selected legal category between runs.
//
// Three implementations exist: FileStore (one file per key, atomic writes),
// MemoryStore (process lifetime only) and RedisStore (shared server).
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Keys persisted by the client. Values are opaque strings; the user record is
// stored as JSON.
const (
	KeyToken            = "lexai_token"
	KeyUser             = "lexai_user"
	KeySelectedCategory = "selected_category"
)

// ErrNotFound is returned by Get when a key has no value.
var ErrNotFound = errors.New("key not found")

// ErrInvalidKey is returned when a key is empty or contains a path separator.
var ErrInvalidKey = errors.New("invalid key")

// Store is a string key-value store.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Clear removes every key owned by the store.
	Clear(ctx context.Context) error
	// Close releases resources held by the store.
	Close() error
}

func validateKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
