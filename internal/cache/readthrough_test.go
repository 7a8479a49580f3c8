package cache_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/usercache/internal/cache"
)

type fakeStore struct {
	mu     sync.Mutex
	values map[string][]byte
	ttls   map[string]time.Duration
	getErr error
	setErr error
	sets   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (f *fakeStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	value, ok := f.values[key]
	return value, ok, nil
}

func (f *fakeStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.sets++
	f.values[key] = value
	f.ttls[key] = ttl
	return nil
}

func (f *fakeStore) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

type user struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func TestFetchMissLoadsAndStores(t *testing.T) {
	store := newFakeStore()
	calls := 0
	load := func(context.Context) ([]user, error) {
		calls++
		return []user{{ID: 1, Name: "Ada"}}, nil
	}

	got, err := cache.Fetch(context.Background(), store, "users", time.Minute, load)
	require.NoError(t, err)
	require.Equal(t, []user{{ID: 1, Name: "Ada"}}, got)
	require.Equal(t, 1, calls)
	require.JSONEq(t, `[{"id":1,"name":"Ada"}]`, string(store.values["users"]))
	require.Equal(t, time.Minute, store.ttls["users"])
}

func TestFetchHitSkipsLoader(t *testing.T) {
	store := newFakeStore()
	store.values["users"] = []byte(`[{"id":7,"name":"cached"}]`)

	got, err := cache.Fetch(context.Background(), store, "users", time.Minute, func(context.Context) ([]user, error) {
		t.Fatal("loader must not run on a hit")
		return nil, nil
	})
	require.NoError(t, err)
	require.Equal(t, []user{{ID: 7, Name: "cached"}}, got)
	require.Zero(t, store.sets)
}

func TestFetchLoaderErrorIsNotCached(t *testing.T) {
	store := newFakeStore()
	boom := errors.New("connection refused")

	_, err := cache.Fetch(context.Background(), store, "users", time.Minute, func(context.Context) ([]user, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
	require.Zero(t, store.sets)
	require.NotContains(t, store.values, "users")
}

func TestFetchGetErrorSkipsLoader(t *testing.T) {
	store := newFakeStore()
	store.getErr = errors.New("redis down")

	_, err := cache.Fetch(context.Background(), store, "users", time.Minute, func(context.Context) ([]user, error) {
		t.Fatal("loader must not run when the cache is unavailable")
		return nil, nil
	})
	require.ErrorIs(t, err, store.getErr)
	require.Contains(t, err.Error(), `cache: get "users"`)
}

func TestFetchSetErrorFails(t *testing.T) {
	store := newFakeStore()
	store.setErr = errors.New("read only replica")

	_, err := cache.Fetch(context.Background(), store, "users", time.Minute, func(context.Context) ([]user, error) {
		return []user{}, nil
	})
	require.ErrorIs(t, err, store.setErr)
}

func TestFetchCorruptEntryIsAnError(t *testing.T) {
	store := newFakeStore()
	store.values["users"] = []byte("not json")

	_, err := cache.Fetch(context.Background(), store, "users", time.Minute, func(context.Context) ([]user, error) {
		t.Fatal("loader must not run for a corrupt entry")
		return nil, nil
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode")
}

func TestFetchEmptyResultIsCached(t *testing.T) {
	store := newFakeStore()

	got, err := cache.Fetch(context.Background(), store, "users", time.Minute, func(context.Context) ([]user, error) {
		return []user{}, nil
	})
	require.NoError(t, err)
	require.Empty(t, got)
	require.Equal(t, "[]", string(store.values["users"]))
}

func TestFetchRejectsInvalidArguments(t *testing.T) {
	store := newFakeStore()
	load := func(context.Context) (int, error) { return 1, nil }

	_, err := cache.Fetch(context.Background(), store, "", time.Minute, load)
	require.ErrorIs(t, err, cache.ErrInvalidKey)

	_, err = cache.Fetch(context.Background(), store, "users", 0, load)
	require.ErrorIs(t, err, cache.ErrInvalidTTL)

	_, err = cache.Fetch[int](context.Background(), nil, "users", time.Minute, load)
	require.ErrorIs(t, err, cache.ErrNotInitialised)
}

func TestFetchEmptyEntryIsMiss(t *testing.T) {
	store := newFakeStore()
	store.values["users"] = []byte{}

	got, err := cache.Fetch(context.Background(), store, "users", time.Minute, func(context.Context) ([]user, error) {
		return []user{{ID: 2, Name: "Linus"}}, nil
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, 1, store.sets)
}

func TestFetchHitPreservesLargeIntegers(t *testing.T) {
	store := newFakeStore()
	store.values["users"] = []byte(`[{"id":9007199254740993,"name":"Ada"}]`)

	got, err := cache.Fetch(context.Background(), store, "users", time.Minute, func(context.Context) ([]map[string]any, error) {
		t.Fatal("loader must not run on a hit")
		return nil, nil
	})
	require.NoError(t, err)
	require.Len(t, got, 1)

	encoded, err := json.Marshal(got)
	require.NoError(t, err)
	require.Equal(t, `[{"id":9007199254740993,"name":"Ada"}]`, string(encoded))
}

func TestFetchTrailingDataIsAnError(t *testing.T) {
	store := newFakeStore()
	store.values["users"] = []byte(`[] []`)

	_, err := cache.Fetch(context.Background(), store, "users", time.Minute, func(context.Context) ([]user, error) {
		t.Fatal("loader must not run for a corrupt entry")
		return nil, nil
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode")
}
