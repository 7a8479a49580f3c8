package database

import (
	"errors"

	"gorm.io/gorm"

	"github.com/charlesng35/usercache/internal/models"
)

// AutoMigrateCache creates the table used by the SQL cache backend. The users
// table is owned by whoever operates the database and is never migrated here.
func AutoMigrateCache(db *gorm.DB) error {
	if db == nil {
		return errors.New("nil database handle")
	}
	return db.AutoMigrate(&models.CacheEntry{})
}
