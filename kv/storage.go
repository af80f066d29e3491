package kv

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable is returned when the backend cannot be reached.
	ErrUnavailable = errors.New("kv: storage unavailable")
	// ErrQuotaExceeded is returned when a write would exceed the storage quota.
	ErrQuotaExceeded = errors.New("kv: quota exceeded")
)

// Storage is a durable string key-value store.
//
// SetMany must be all-or-nothing: either every key is written or none is.
// Delete of an absent key is not an error.
type Storage interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	SetMany(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, keys ...string) error
}

// Set writes a single key through s.
func Set(ctx context.Context, s Storage, key, value string) error {
	return s.SetMany(ctx, map[string]string{key: value})
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + ":" + key
}
