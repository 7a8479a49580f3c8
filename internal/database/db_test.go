package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/usercache/internal/database"
	"github.com/charlesng35/usercache/internal/database/testutil"
)

func TestOpenSQLiteMemory(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	require.NoError(t, db.Exec("SELECT 1").Error)
	require.NoError(t, database.Ping(context.Background(), db))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := database.Open(database.Config{Driver: "oracle"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported database driver")
}

func TestOpenPostgresDoesNotConnect(t *testing.T) {
	db, err := database.Open(database.Config{
		Driver: "postgres",
		Host:   "127.0.0.1",
		Port:   1,
		User:   "nobody",
		Name:   "nothing",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
}

func TestAutoMigrateCacheCreatesTable(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithCacheTable())

	require.True(t, db.Migrator().HasTable("cache_entries"))
	require.Error(t, database.AutoMigrateCache(nil))
}

func TestClientQueryReturnsRows(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithUsers(
		testutil.TestUser{Name: "Ada", Email: "ada@example.com"},
		testutil.TestUser{Name: "Linus", Email: "linus@example.com"},
	))

	client, err := database.NewClient(db)
	require.NoError(t, err)

	rows, err := client.Query(context.Background(), "SELECT * FROM users ORDER BY id")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "Ada", rows[0]["name"])
	require.Equal(t, "linus@example.com", rows[1]["email"])
	require.EqualValues(t, 1, rows[0]["id"])
}

func TestClientQueryEmptyTable(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithUsers())

	client, err := database.NewClient(db)
	require.NoError(t, err)

	rows, err := client.Query(context.Background(), "SELECT * FROM users")
	require.NoError(t, err)
	require.NotNil(t, rows)
	require.Empty(t, rows)
}

func TestClientQueryPropagatesErrors(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	client, err := database.NewClient(db)
	require.NoError(t, err)

	_, err = client.Query(context.Background(), "SELECT * FROM users")
	require.Error(t, err)
	require.Contains(t, err.Error(), "database: query")
}

func TestClientQueryFailsAfterClose(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithUsers())
	client, err := database.NewClient(db)
	require.NoError(t, err)

	require.NoError(t, database.Close(db))

	_, err = client.Query(context.Background(), "SELECT * FROM users")
	require.Error(t, err)
	require.Error(t, client.Ping(context.Background()))
}

func TestNewClientRequiresDB(t *testing.T) {
	_, err := database.NewClient(nil)
	require.Error(t, err)
}
