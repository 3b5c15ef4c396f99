// Package session provides Redis-backed session-scoped storage.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"stock_predictor/internal/feature/regression/domain/entity"
	"stock_predictor/internal/feature/regression/usecase"
)

// DefaultTTL is used when a non-positive TTL is given.
const DefaultTTL = 24 * time.Hour

// ModelRedis implements usecase.ModelStore using Redis.
// Each session owns exactly one key; Save overwrites it with a fresh TTL.
type ModelRedis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ usecase.ModelStore = (*ModelRedis)(nil)

// NewModelRedis creates a new ModelRedis instance.
func NewModelRedis(client *redis.Client, prefix string, ttl time.Duration) *ModelRedis {
	if prefix == "" {
		prefix = "model"
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ModelRedis{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// modelKey returns the Redis key for a session's model slot.
func (r *ModelRedis) modelKey(sessionID string) string {
	return fmt.Sprintf("%s:%s", r.prefix, sessionID)
}

// Save stores the model, replacing any previous one.
func (r *ModelRedis) Save(ctx context.Context, sessionID string, model *entity.FittedModel) error {
	data, err := json.Marshal(model)
	if err != nil {
		return fmt.Errorf("failed to marshal model: %w", err)
	}
	return r.client.Set(ctx, r.modelKey(sessionID), data, r.ttl).Err()
}

// Load retrieves the model saved for the session.
func (r *ModelRedis) Load(ctx context.Context, sessionID string) (*entity.FittedModel, error) {
	data, err := r.client.Get(ctx, r.modelKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, usecase.ErrModelNotFound
		}
		return nil, err
	}

	var model entity.FittedModel
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("failed to unmarshal model: %w", err)
	}
	return &model, nil
}

// Delete removes the session's model slot.
func (r *ModelRedis) Delete(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, r.modelKey(sessionID)).Err()
}
