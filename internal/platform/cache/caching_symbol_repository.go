// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"

	"stock_predictor/internal/feature/symbollist/domain/entity"
	"stock_predictor/internal/feature/symbollist/usecase"
)

// SymbolStore is the repository being decorated: reads for request handling,
// batch import for the offline loader.
type SymbolStore interface {
	usecase.SymbolRepository
	usecase.SymbolImporter
}

// CachingSymbolRepository decorates a SymbolStore with Redis caching.
// Only hits are cached; an unknown code always reaches the inner repository.
type CachingSymbolRepository struct {
	inner     SymbolStore
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ SymbolStore = (*CachingSymbolRepository)(nil)

// NewCachingSymbolRepository decorates a SymbolStore with Redis caching.
// If ttl is 0, it defaults to 1 hour. If namespace is empty, it uses "symbols".
func NewCachingSymbolRepository(rdb *redis.Client, ttl time.Duration, inner SymbolStore, namespace string) *CachingSymbolRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if namespace == "" {
		namespace = "symbols"
	}
	return &CachingSymbolRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// ImportBatch writes symbols and drops every cached entry of the namespace.
func (c *CachingSymbolRepository) ImportBatch(ctx context.Context, symbols []entity.Symbol) (int64, error) {
	n, err := c.inner.ImportBatch(ctx, symbols)
	if err != nil {
		return n, err
	}
	if c.rdb == nil || n == 0 {
		return n, nil
	}
	_ = c.deleteByPattern(ctx, c.namespace+":*") // Best effort: don't fail if cache deletion fails
	return n, nil
}

// ListAll returns the full table, checking cache first.
func (c *CachingSymbolRepository) ListAll(ctx context.Context) ([]entity.Symbol, error) {
	if c.rdb == nil {
		return c.inner.ListAll(ctx)
	}

	key := c.listKey()
	var out []entity.Symbol
	if c.get(ctx, key, &out) {
		return out, nil
	}

	out, err := c.inner.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, out)
	return out, nil
}

// FindByCode resolves a code, checking cache first then falling back to the database.
func (c *CachingSymbolRepository) FindByCode(ctx context.Context, code string) (*entity.Symbol, error) {
	if c.rdb == nil {
		return c.inner.FindByCode(ctx, code)
	}

	key := c.codeKey(code)
	var out entity.Symbol
	if c.get(ctx, key, &out) {
		return &out, nil
	}

	s, err := c.inner.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, s)
	return s, nil
}

// get decodes a cached value into dst. A corrupted entry is deleted and reported as a miss.
func (c *CachingSymbolRepository) get(ctx context.Context, key string, dst any) bool {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil && !errors.Is(err, redis.Nil) {
		slog.Warn("symbol cache unavailable", "key", key, "error", err)
	}
	if err != nil || len(b) == 0 {
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		_ = c.rdb.Del(ctx, key).Err()
		return false
	}
	return true
}

// set stores v in cache (best effort).
func (c *CachingSymbolRepository) set(ctx context.Context, key string, v any) {
	if b, err := json.Marshal(v); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
}

func (c *CachingSymbolRepository) listKey() string {
	return c.namespace + ":all"
}

func (c *CachingSymbolRepository) codeKey(code string) string {
	return c.namespace + ":code:" + safe(code)
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingSymbolRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// safe escapes a code for use inside a Redis key. Codes are case-sensitive and
// matched exactly, so the escaping must be injective.
func safe(s string) string {
	return url.QueryEscape(s)
}
