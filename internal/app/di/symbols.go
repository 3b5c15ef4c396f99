package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	symbollistadapters "stock_predictor/internal/feature/symbollist/adapters"
	"stock_predictor/internal/platform/cache"
)

// NewSymbolStore creates the reference table repository, wrapped with the Redis cache when available.
func NewSymbolStore(rdb *redis.Client, db *gorm.DB, ttl time.Duration) cache.SymbolStore {
	repo := symbollistadapters.NewSymbolRepository(db)
	if rdb == nil {
		return repo
	}
	return cache.NewCachingSymbolRepository(rdb, ttl, repo, "symbols")
}
