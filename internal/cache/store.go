package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidKey is returned when an operation receives an empty key.
	ErrInvalidKey = errors.New("cache: key is required")
	// ErrInvalidTTL is returned when a read-through lookup receives a non-positive TTL.
	ErrInvalidTTL = errors.New("cache: ttl must be positive")
	// ErrNotInitialised is returned when a nil store is used.
	ErrNotInitialised = errors.New("cache: store not initialised")
)

// Store represents a shared byte-oriented key/value cache.
// A ttl of zero or less stores the value without expiry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Pinger is implemented by stores that can report their reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}
