// Package store provides the key-value persistence scopes that back identity
// and chat history.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("key not found")

// durableScope is the scope column value for rows that survive restarts.
// The tab scope never reaches SQLite: it lives in the session header.
const durableScope = "durable"

// KV defines a string key-value store. Values are opaque strings; callers
// serialize documents themselves.
type KV interface {
	// Get returns the value for key or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}

// Repository is a KV that owns an underlying connection.
type Repository interface {
	KV

	// Ping verifies connectivity and returns an error if the backend is unreachable.
	Ping(ctx context.Context) error

	// Close closes the underlying connection.
	Close() error
}
