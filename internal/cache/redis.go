package cache

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig captures the connection parameters of the Redis backend.
type RedisConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	DB        int
	TLS       bool
	Timeout   time.Duration
	KeyPrefix string
}

const (
	defaultRedisTimeout = 5 * time.Second
	defaultRedisPort    = 6379
)

// Address returns host:port with defaults applied.
func (c RedisConfig) Address() string {
	host := strings.TrimSpace(c.Host)
	if host == "" {
		host = "localhost"
	}
	port := c.Port
	if port <= 0 {
		port = defaultRedisPort
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// RedisClient is a Store backed by a pooled go-redis client.
type RedisClient struct {
	client *redis.Client
	prefix string
}

// NewRedisClient builds a client without dialing. Connections are established
// lazily, so an unreachable server is reported per command rather than at startup.
func NewRedisClient(cfg RedisConfig) (*RedisClient, error) {
	if cfg.DB < 0 {
		return nil, fmt.Errorf("redis: invalid database index %d", cfg.DB)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRedisTimeout
	}

	opts := &redis.Options{
		Addr:         cfg.Address(),
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}
	if cfg.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	return &RedisClient{
		client: redis.NewClient(opts),
		prefix: cfg.KeyPrefix,
	}, nil
}

// Close releases pooled connections.
func (c *RedisClient) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

// Ping checks connectivity with the server.
func (c *RedisClient) Ping(ctx context.Context) error {
	if c == nil {
		return ErrNotInitialised
	}
	return c.client.Ping(ctx).Err()
}

// Get returns the stored value. A missing key is a miss, not an error.
func (c *RedisClient) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if c == nil {
		return nil, false, ErrNotInitialised
	}
	if key == "" {
		return nil, false, ErrInvalidKey
	}

	value, err := c.client.Get(ctx, c.prefixed(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Set stores value under key. Positive TTLs below one millisecond are rounded
// up since Redis treats a zero expiration as persistent.
func (c *RedisClient) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c == nil {
		return ErrNotInitialised
	}
	if key == "" {
		return ErrInvalidKey
	}
	if ttl < 0 {
		ttl = 0
	}
	if ttl > 0 && ttl < time.Millisecond {
		ttl = time.Millisecond
	}
	return c.client.Set(ctx, c.prefixed(key), value, ttl).Err()
}

// Delete removes keys from the server.
func (c *RedisClient) Delete(ctx context.Context, keys ...string) error {
	if c == nil {
		return ErrNotInitialised
	}
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, 0, len(keys))
	for _, key := range keys {
		prefixed = append(prefixed, c.prefixed(key))
	}
	return c.client.Del(ctx, prefixed...).Err()
}

func (c *RedisClient) prefixed(key string) string {
	if c.prefix == "" || strings.HasPrefix(key, c.prefix) {
		return key
	}
	return c.prefix + key
}
