package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupKVTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	return db
}

func setupRedisStore(t *testing.T) (*RedisKeyValueStore, *miniredis.Miniredis) {
	t.Helper()
	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)

	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisKeyValueStore(client), mini
}

func TestKeyValueStoresContract(t *testing.T) {
	backends := map[string]func(t *testing.T) KeyValueStore{
		"memory": func(t *testing.T) KeyValueStore {
			return NewMemoryKeyValueStore()
		},
		"redis": func(t *testing.T) KeyValueStore {
			store, _ := setupRedisStore(t)
			return store
		},
		"gorm": func(t *testing.T) KeyValueStore {
			store, err := NewGormKeyValueStore(setupKVTestDB(t))
			require.NoError(t, err)
			return store
		},
	}

	for name, build := range backends {
		t.Run(name, func(t *testing.T) {
			store := build(t)
			ctx := context.Background()

			_, found, err := store.Get(ctx, "missing")
			require.NoError(t, err)
			require.False(t, found)

			require.NoError(t, store.Set(ctx, "a", []byte(`{"v":1}`)))
			require.NoError(t, store.Set(ctx, "b", []byte("other")))
			require.NoError(t, store.Set(ctx, "a", []byte(`{"v":2}`)))

			value, found, err := store.Get(ctx, "a")
			require.NoError(t, err)
			require.True(t, found)
			require.Equal(t, `{"v":2}`, string(value))

			require.NoError(t, store.Delete(ctx, "a"))
			_, found, err = store.Get(ctx, "a")
			require.NoError(t, err)
			require.False(t, found)

			value, found, err = store.Get(ctx, "b")
			require.NoError(t, err)
			require.True(t, found)
			require.Equal(t, "other", string(value))

			require.NoError(t, store.Delete(ctx, "never-set"))
		})
	}
}

func TestMemoryKeyValueStoreCopiesValues(t *testing.T) {
	store := NewMemoryKeyValueStore()
	ctx := context.Background()

	input := []byte("abc")
	require.NoError(t, store.Set(ctx, "k", input))
	input[0] = 'z'

	value, _, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "abc", string(value))

	value[1] = 'z'
	again, _, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "abc", string(again))
}

func TestRedisKeyValueStoreSurfacesConnectionErrors(t *testing.T) {
	store, mini := setupRedisStore(t)
	mini.Close()

	_, _, err := store.Get(context.Background(), "k")
	require.Error(t, err)
	require.Error(t, store.Set(context.Background(), "k", []byte("v")))
}
