// Package adapters provides model store implementations for the regression feature.
package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stock_predictor/internal/feature/regression/domain/entity"
	"stock_predictor/internal/feature/regression/usecase"
)

// DefaultModelTTL is used when a non-positive TTL is given.
const DefaultModelTTL = 24 * time.Hour

// FittedModelRecord is the SQL row holding one session's model slot.
type FittedModelRecord struct {
	SessionID   string    `gorm:"primaryKey;size:64"`
	Slope       float64   `gorm:"not null"`
	Intercept   float64   `gorm:"not null"`
	Correlation float64   `gorm:"not null"`
	SeriesCode  string    `gorm:"size:32;not null"`
	SeriesName  string    `gorm:"size:255;not null"`
	MinDate     time.Time `gorm:"not null"`
	MaxDate     time.Time `gorm:"not null"`
	Points      int       `gorm:"not null"`
	FittedAt    time.Time `gorm:"not null"`
	ExpiresAt   time.Time `gorm:"not null;index"`
}

func (FittedModelRecord) TableName() string {
	return "fitted_models"
}

func recordFromEntity(sessionID string, m *entity.FittedModel, expiresAt time.Time) *FittedModelRecord {
	return &FittedModelRecord{
		SessionID:   sessionID,
		Slope:       m.Slope,
		Intercept:   m.Intercept,
		Correlation: m.Correlation,
		SeriesCode:  m.Series.Code,
		SeriesName:  m.Series.Name,
		MinDate:     m.MinDate,
		MaxDate:     m.MaxDate,
		Points:      m.Points,
		FittedAt:    m.FittedAt,
		ExpiresAt:   expiresAt,
	}
}

// ToEntity converts the row back to a domain model. Times are normalized to UTC
// since some drivers return them in the local zone.
func (r *FittedModelRecord) ToEntity() *entity.FittedModel {
	return &entity.FittedModel{
		Slope:       r.Slope,
		Intercept:   r.Intercept,
		Correlation: r.Correlation,
		Series:      entity.SeriesIdentity{Code: r.SeriesCode, Name: r.SeriesName},
		MinDate:     r.MinDate.UTC(),
		MaxDate:     r.MaxDate.UTC(),
		Points:      r.Points,
		FittedAt:    r.FittedAt.UTC(),
	}
}

// modelSQL is the SQL implementation of usecase.ModelStore, used when Redis is unavailable.
type modelSQL struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

// Compile-time check to ensure modelSQL implements ModelStore.
var _ usecase.ModelStore = (*modelSQL)(nil)

// NewModelSQL creates a new instance of modelSQL.
func NewModelSQL(db *gorm.DB, ttl time.Duration) *modelSQL {
	if ttl <= 0 {
		ttl = DefaultModelTTL
	}
	return &modelSQL{db: db, ttl: ttl, now: time.Now}
}

// Save replaces the session's slot in a single upsert.
func (r *modelSQL) Save(ctx context.Context, sessionID string, model *entity.FittedModel) error {
	rec := recordFromEntity(sessionID, model, r.now().Add(r.ttl))
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"slope", "intercept", "correlation", "series_code", "series_name",
			"min_date", "max_date", "points", "fitted_at", "expires_at",
		}),
	}).Create(rec).Error
}

// Load returns the session's model unless it has expired.
func (r *modelSQL) Load(ctx context.Context, sessionID string) (*entity.FittedModel, error) {
	var rec FittedModelRecord
	if err := r.db.WithContext(ctx).
		Where("session_id = ? AND expires_at > ?", sessionID, r.now()).
		First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrModelNotFound
		}
		return nil, err
	}
	return rec.ToEntity(), nil
}

// Delete removes the session's slot. Deleting an empty slot is not an error.
func (r *modelSQL) Delete(ctx context.Context, sessionID string) error {
	return r.db.WithContext(ctx).Delete(&FittedModelRecord{}, "session_id = ?", sessionID).Error
}

// DeleteExpired removes all expired slots and returns how many were deleted.
func (r *modelSQL) DeleteExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", r.now()).
		Delete(&FittedModelRecord{})
	return result.RowsAffected, result.Error
}
