package di

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"stock_predictor/internal/feature/regression/domain/entity"
	"stock_predictor/internal/feature/regression/usecase"
	"stock_predictor/internal/platform/cache"
	"stock_predictor/internal/platform/db"
	"stock_predictor/internal/platform/session"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	return gdb
}

func TestNewModelStore_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	store, cleaner := NewModelStore(rdb, setupDB(t), time.Hour)

	assert.IsType(t, &session.ModelRedis{}, store)
	assert.Nil(t, cleaner)
}

func TestNewModelStore_SQLFallback(t *testing.T) {
	store, cleaner := NewModelStore(nil, setupDB(t), time.Hour)

	require.NotNil(t, cleaner)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "sid", &entity.FittedModel{Slope: 2, Intercept: -36424, Points: 3}))

	got, err := store.Load(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, 2.0, got.Slope)

	_, err = store.Load(ctx, "other")
	assert.ErrorIs(t, err, usecase.ErrModelNotFound)

	n, err := cleaner.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestNewSymbolStore(t *testing.T) {
	gdb := setupDB(t)

	plain := NewSymbolStore(nil, gdb, time.Hour)
	_, isCached := plain.(*cache.CachingSymbolRepository)
	assert.False(t, isCached)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	cached := NewSymbolStore(rdb, gdb, time.Hour)
	assert.IsType(t, &cache.CachingSymbolRepository{}, cached)
}
