package cache

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/charlesng35/usercache/internal/models"
	"github.com/charlesng35/usercache/pkg/logger"
)

// DatabaseStore implements Store on top of the primary SQL database.
type DatabaseStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewDatabaseStore constructs a database-backed Store. The cache_entries
// table must already exist.
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	if db == nil {
		return nil
	}
	return &DatabaseStore{db: db, now: time.Now}
}

// Set upserts the value for a given key with expiry.
func (s *DatabaseStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if s == nil {
		return ErrNotInitialised
	}
	if key == "" {
		return ErrInvalidKey
	}

	entry := models.CacheEntry{
		Key:   key,
		Value: value,
	}
	if ttl > 0 {
		expiry := s.now().UTC().Add(ttl)
		entry.ExpiresAt = &expiry
	}
	if entry.Value == nil {
		entry.Value = []byte{}
	}

	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "cache_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
		}).Create(&entry).Error
}

// Get retrieves a value by key. Expired rows are treated as misses and removed
// unless a newer write replaced them in the meantime.
func (s *DatabaseStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s == nil {
		return nil, false, ErrNotInitialised
	}
	if key == "" {
		return nil, false, ErrInvalidKey
	}

	var entry models.CacheEntry
	err := s.db.WithContext(ctx).Take(&entry, "cache_key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	now := s.now().UTC()
	if entry.Expired(now) {
		if _, err := s.deleteExpired(ctx, key, now); err != nil {
			logger.WithModule("cache").Warn("remove expired cache entry failed",
				zap.String("key", key),
				zap.Error(err),
			)
		}
		return nil, false, nil
	}

	return entry.Value, true, nil
}

// Delete removes keys from the store.
func (s *DatabaseStore) Delete(ctx context.Context, keys ...string) error {
	if s == nil {
		return ErrNotInitialised
	}
	if len(keys) == 0 {
		return nil
	}

	return s.db.WithContext(ctx).Where("cache_key IN ?", keys).Delete(&models.CacheEntry{}).Error
}

func (s *DatabaseStore) deleteExpired(ctx context.Context, key string, now time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("cache_key = ? AND expires_at IS NOT NULL AND expires_at <= ?", key, now).
		Delete(&models.CacheEntry{})
	return result.RowsAffected, result.Error
}

// PurgeExpired deletes every entry whose expiry is at or before now and
// returns the number of removed rows.
func (s *DatabaseStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	if s == nil {
		return 0, ErrNotInitialised
	}

	result := s.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", now.UTC()).
		Delete(&models.CacheEntry{})
	return result.RowsAffected, result.Error
}

// Ping verifies the backing database is reachable.
func (s *DatabaseStore) Ping(ctx context.Context) error {
	if s == nil {
		return ErrNotInitialised
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
