// Package di provides dependency injection factories for creating application components.
package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	regressionadapters "stock_predictor/internal/feature/regression/adapters"
	"stock_predictor/internal/feature/regression/usecase"
	"stock_predictor/internal/platform/scheduler"
	"stock_predictor/internal/platform/session"
)

// NewModelStore creates the per-session model store.
// If Redis is available, it returns a Redis-backed implementation and no cleaner
// (keys expire on their own). Otherwise, it falls back to SQL and also returns
// the store as the cleaner for the scheduled expiry job.
func NewModelStore(rdb *redis.Client, db *gorm.DB, ttl time.Duration) (usecase.ModelStore, scheduler.ExpiredModelCleaner) {
	if rdb != nil {
		return session.NewModelRedis(rdb, "model", ttl), nil
	}
	store := regressionadapters.NewModelSQL(db, ttl)
	return store, store
}
