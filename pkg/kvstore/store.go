// Package kvstore is the durable key-value store behind every piece of
// ByaheNow state. Keys are opaque strings; values are opaque bytes. The only
// read primitives are point lookup and prefix scan, and the only write is an
// unconditional replace of a single key.
//
// Every backend guarantees that a single Set is atomic with respect to
// readers: a concurrent Get or ScanPrefix observes either the old value or
// the new one, never a mix. Nothing is guaranteed across keys.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when the key has never been set.
var ErrNotFound = errors.New("kvstore: key not found")

// Entry is a single key/value pair returned by a prefix scan.
type Entry struct {
	Key   string
	Value []byte
}

// Store is the key-value contract shared by all backends.
type Store interface {
	// Get returns the value stored at key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set replaces the value at key.
	Set(ctx context.Context, key string, value []byte) error

	// ScanPrefix returns every entry whose key starts with prefix. Order is
	// backend-defined.
	ScanPrefix(ctx context.Context, prefix string) ([]Entry, error)

	// Close releases the backend's resources.
	Close() error
}

// GetJSON loads the value at key and decodes it into v.
func GetJSON(ctx context.Context, s Store, key string, v interface{}) error {
	data, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// SetJSON encodes v and stores it at key.
func SetJSON(ctx context.Context, s Store, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, data)
}
