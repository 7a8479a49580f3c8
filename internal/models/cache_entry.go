package models

import (
	"time"
)

// CacheEntry is a row of the SQL-backed cache. A nil ExpiresAt never expires.
type CacheEntry struct {
	Key       string     `gorm:"column:cache_key;primaryKey;size:255"`
	Value     []byte     `gorm:"not null"`
	ExpiresAt *time.Time `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName pins the table name independent of gorm naming strategy.
func (CacheEntry) TableName() string {
	return "cache_entries"
}

// Expired reports whether the entry has passed its expiry at now.
func (e CacheEntry) Expired(now time.Time) bool {
	return e.ExpiresAt != nil && !now.Before(*e.ExpiresAt)
}
