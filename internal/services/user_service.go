package services

import (
	"context"
	"errors"
	"time"

	"github.com/charlesng35/usercache/internal/cache"
	"github.com/charlesng35/usercache/internal/database"
)

const (
	// UsersCacheKey is the cache key holding the serialised user list.
	UsersCacheKey = "users"
	// DefaultUsersTTL bounds how stale a cached user list may be.
	DefaultUsersTTL = 60 * time.Second

	listUsersQuery = "SELECT * FROM users"
)

// RowSource runs a raw query and returns its rows.
type RowSource interface {
	Query(ctx context.Context, sql string, args ...any) ([]database.Row, error)
}

// UserService serves the user list through the read-through cache.
type UserService struct {
	source RowSource
	store  cache.Store
	ttl    time.Duration
}

// NewUserService wires the service. A non-positive ttl selects DefaultUsersTTL.
func NewUserService(source RowSource, store cache.Store, ttl time.Duration) (*UserService, error) {
	if source == nil {
		return nil, errors.New("user service: row source is required")
	}
	if store == nil {
		return nil, errors.New("user service: cache store is required")
	}
	if ttl <= 0 {
		ttl = DefaultUsersTTL
	}
	return &UserService{source: source, store: store, ttl: ttl}, nil
}

// List returns every row of the users table, served from cache for up to ttl
// after it was last loaded.
func (s *UserService) List(ctx context.Context) ([]database.Row, error) {
	rows, err := cache.Fetch(ctx, s.store, UsersCacheKey, s.ttl, func(ctx context.Context) ([]database.Row, error) {
		return s.source.Query(ctx, listUsersQuery)
	})
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []database.Row{}
	}
	return rows, nil
}

// TTL reports the cache lifetime of the user list.
func (s *UserService) TTL() time.Duration {
	return s.ttl
}
