package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/usercache/internal/database"
)

// TestUser is a row inserted into the test-only users table.
type TestUser struct {
	Name  string
	Email string
}

// TestDBOption customises the behaviour of MustOpenTestDB.
type TestDBOption func(*testDBConfig)

type testDBConfig struct {
	cacheTable bool
	usersTable bool
	users      []TestUser
}

// WithCacheTable migrates the cache_entries table.
func WithCacheTable() TestDBOption {
	return func(cfg *testDBConfig) {
		cfg.cacheTable = true
	}
}

// WithUsers creates a users table and inserts the supplied rows.
func WithUsers(users ...TestUser) TestDBOption {
	return func(cfg *testDBConfig) {
		cfg.usersTable = true
		cfg.users = append(cfg.users, users...)
	}
}

// MustOpenTestDB opens a private in-memory SQLite database for a single test.
// The returned connection is automatically closed via t.Cleanup.
func MustOpenTestDB(t *testing.T, opts ...TestDBOption) *gorm.DB {
	t.Helper()

	cfg := testDBConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Open(database.Config{Driver: "sqlite", DSN: dsn})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if cfg.cacheTable {
		require.NoError(t, database.AutoMigrateCache(db))
	}
	if cfg.usersTable {
		require.NoError(t, db.Exec(`CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			email TEXT NOT NULL
		)`).Error)
		InsertUsers(t, db, cfg.users...)
	}

	return db
}

// InsertUsers appends rows to the users table created by WithUsers.
func InsertUsers(t *testing.T, db *gorm.DB, users ...TestUser) {
	t.Helper()

	for _, user := range users {
		require.NoError(t, db.Exec("INSERT INTO users (name, email) VALUES (?, ?)", user.Name, user.Email).Error)
	}
}
