package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrKeyNotFound is returned by Get when no document exists for the key.
var ErrKeyNotFound = errors.New("key not found")

// Store abstracts the document store: an async mapping from string key to
// arbitrary JSON value with exact lookup and prefix scan.
type Store interface {
	Get(ctx context.Context, key string) (json.RawMessage, error)
	Set(ctx context.Context, key string, value json.RawMessage) error
	Delete(ctx context.Context, key string) error
	// GetByPrefix returns the values of all keys starting with prefix,
	// ordered by key.
	GetByPrefix(ctx context.Context, prefix string) ([]json.RawMessage, error)
}

// GetJSON loads the document at key and unmarshals it into dest.
func GetJSON(ctx context.Context, s Store, key string, dest any) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// SetJSON marshals value and stores it at key.
func SetJSON(ctx context.Context, s Store, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}
