package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// MemoryConfig tunes the in-process backend.
type MemoryConfig struct {
	// Capacity bounds the number of entries. Zero means unbounded.
	Capacity uint64
}

// MemoryStore is a process-local Store. It is intended for single instance
// deployments and tests.
type MemoryStore struct {
	items *ttlcache.Cache[string, []byte]
	stop  sync.Once
}

// NewMemoryStore creates the store and starts its expiry loop.
func NewMemoryStore(cfg MemoryConfig) *MemoryStore {
	opts := []ttlcache.Option[string, []byte]{
		ttlcache.WithDisableTouchOnHit[string, []byte](),
	}
	if cfg.Capacity > 0 {
		opts = append(opts, ttlcache.WithCapacity[string, []byte](cfg.Capacity))
	}

	store := &MemoryStore{items: ttlcache.New[string, []byte](opts...)}
	go store.items.Start()
	return store
}

// Close stops the expiry loop. It is safe to call more than once.
func (s *MemoryStore) Close() error {
	if s == nil {
		return nil
	}
	s.stop.Do(s.items.Stop)
	return nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error {
	if s == nil {
		return ErrNotInitialised
	}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	if s == nil {
		return nil, false, ErrNotInitialised
	}
	if key == "" {
		return nil, false, ErrInvalidKey
	}

	item := s.items.Get(key)
	if item == nil || item.IsExpired() {
		return nil, false, nil
	}
	return clone(item.Value()), true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if s == nil {
		return ErrNotInitialised
	}
	if key == "" {
		return ErrInvalidKey
	}
	if ttl <= 0 {
		ttl = ttlcache.NoTTL
	}
	s.items.Set(key, clone(value), ttl)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	if s == nil {
		return ErrNotInitialised
	}
	for _, key := range keys {
		s.items.Delete(key)
	}
	return nil
}

// Len returns the number of live entries.
func (s *MemoryStore) Len() int {
	return s.items.Len()
}

func clone(value []byte) []byte {
	if value == nil {
		return nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out
}
