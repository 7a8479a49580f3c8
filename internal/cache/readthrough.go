package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/charlesng35/usercache/internal/monitoring"
	"github.com/charlesng35/usercache/pkg/logger"
)

// Loader produces the authoritative value for a key on a cache miss.
type Loader[T any] func(ctx context.Context) (T, error)

// Fetch returns the value cached under key, or calls load, stores its JSON
// encoding for ttl and returns it. Loader errors are returned unchanged and
// nothing is cached. Cache failures are returned wrapped and an undecodable
// entry is an error rather than a miss. An empty entry is a miss.
//
// Numbers decoded into untyped values are kept as json.Number so a hit
// re-encodes to the same text the miss stored.
//
// Concurrent misses each call load.
func Fetch[T any](ctx context.Context, store Store, key string, ttl time.Duration, load Loader[T]) (T, error) {
	var zero T
	if store == nil {
		return zero, ErrNotInitialised
	}
	if key == "" {
		return zero, ErrInvalidKey
	}
	if ttl <= 0 {
		return zero, ErrInvalidTTL
	}

	log := logger.WithModule("cache").With(zap.String("key", key))

	raw, found, err := store.Get(ctx, key)
	if err != nil {
		monitoring.RecordCacheLookup(key, monitoring.CacheError)
		return zero, fmt.Errorf("cache: get %q: %w", key, err)
	}
	if found && len(raw) > 0 {
		value, err := decode[T](raw)
		if err != nil {
			monitoring.RecordCacheLookup(key, monitoring.CacheError)
			return zero, fmt.Errorf("cache: decode %q: %w", key, err)
		}
		monitoring.RecordCacheLookup(key, monitoring.CacheHit)
		log.Debug("cache hit")
		return value, nil
	}

	monitoring.RecordCacheLookup(key, monitoring.CacheMiss)
	log.Debug("cache miss")

	start := time.Now()
	value, err := load(ctx)
	monitoring.ObserveSourceFetch(key, time.Since(start))
	if err != nil {
		return zero, err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return zero, fmt.Errorf("cache: encode %q: %w", key, err)
	}
	if err := store.Set(ctx, key, encoded, ttl); err != nil {
		return zero, fmt.Errorf("cache: set %q: %w", key, err)
	}
	log.Debug("cache populated", zap.Duration("ttl", ttl), zap.Int("bytes", len(encoded)))

	return value, nil
}

func decode[T any](raw []byte) (T, error) {
	var value T
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&value); err != nil {
		return value, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return value, errors.New("trailing data after cached value")
	}
	return value, nil
}
