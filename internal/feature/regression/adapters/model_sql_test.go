package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"stock_predictor/internal/feature/regression/domain/entity"
	"stock_predictor/internal/feature/regression/usecase"
)

// setupModelTestDB prepares an in-memory SQLite database for model store testing.
func setupModelTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")

	err = db.AutoMigrate(&FittedModelRecord{})
	require.NoError(t, err, "failed to migrate table")

	return db
}

func testModel(code string, slope float64) *entity.FittedModel {
	return &entity.FittedModel{
		Slope:       slope,
		Intercept:   -36424.123456789,
		Correlation: 0.987654321,
		Series:      entity.SeriesIdentity{Code: code, Name: code + " Corp"},
		MinDate:     time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		MaxDate:     time.Date(2020, 3, 31, 0, 0, 0, 0, time.UTC),
		Points:      61,
		FittedAt:    time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC),
	}
}

func TestNewModelSQL(t *testing.T) {
	db := setupModelTestDB(t)

	repo := NewModelSQL(db, 0)

	assert.NotNil(t, repo, "repository is nil")
	assert.NotNil(t, repo.db, "database connection is nil")
	assert.Equal(t, DefaultModelTTL, repo.ttl)
}

func TestModelSQL_SaveAndLoad(t *testing.T) {
	t.Parallel()

	db := setupModelTestDB(t)
	repo := NewModelSQL(db, time.Hour)
	ctx := context.Background()

	model := testModel("ABC", 2.000000001)
	require.NoError(t, repo.Save(ctx, "sess-1", model))

	found, err := repo.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, model.Slope, found.Slope)
	assert.Equal(t, model.Intercept, found.Intercept)
	assert.Equal(t, model.Correlation, found.Correlation)
	assert.Equal(t, model.Series, found.Series)
	assert.True(t, model.MinDate.Equal(found.MinDate))
	assert.True(t, model.MaxDate.Equal(found.MaxDate))
	assert.Equal(t, model.Points, found.Points)
}

func TestModelSQL_SaveReplaces(t *testing.T) {
	t.Parallel()

	db := setupModelTestDB(t)
	repo := NewModelSQL(db, time.Hour)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "sess-1", testModel("ABC", 1)))
	require.NoError(t, repo.Save(ctx, "sess-1", testModel("XYZ", 3)))

	found, err := repo.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "XYZ", found.Series.Code)
	assert.Equal(t, 3.0, found.Slope)

	var count int64
	require.NoError(t, db.Model(&FittedModelRecord{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestModelSQL_Load(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		setupFunc func(t *testing.T, repo *modelSQL)
		sessionID string
		wantErr   error
	}{
		{
			name:      "failure: nothing saved",
			sessionID: "missing",
			wantErr:   usecase.ErrModelNotFound,
		},
		{
			name: "failure: other session's model is not visible",
			setupFunc: func(t *testing.T, repo *modelSQL) {
				require.NoError(t, repo.Save(context.Background(), "sess-a", testModel("ABC", 1)))
			},
			sessionID: "sess-b",
			wantErr:   usecase.ErrModelNotFound,
		},
		{
			name: "failure: expired model",
			setupFunc: func(t *testing.T, repo *modelSQL) {
				repo.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
				require.NoError(t, repo.Save(context.Background(), "sess-old", testModel("ABC", 1)))
				repo.now = time.Now
			},
			sessionID: "sess-old",
			wantErr:   usecase.ErrModelNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := NewModelSQL(setupModelTestDB(t), time.Hour)
			if tt.setupFunc != nil {
				tt.setupFunc(t, repo)
			}

			found, err := repo.Load(context.Background(), tt.sessionID)

			assert.Nil(t, found)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestModelSQL_Delete(t *testing.T) {
	t.Parallel()

	repo := NewModelSQL(setupModelTestDB(t), time.Hour)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "sess-1", testModel("ABC", 1)))
	require.NoError(t, repo.Delete(ctx, "sess-1"))
	require.NoError(t, repo.Delete(ctx, "sess-1"))

	_, err := repo.Load(ctx, "sess-1")
	assert.ErrorIs(t, err, usecase.ErrModelNotFound)
}

func TestModelSQL_DeleteExpired(t *testing.T) {
	t.Parallel()

	db := setupModelTestDB(t)
	repo := NewModelSQL(db, time.Hour)
	ctx := context.Background()

	repo.now = func() time.Time { return time.Now().Add(-3 * time.Hour) }
	require.NoError(t, repo.Save(ctx, "old-1", testModel("ABC", 1)))
	require.NoError(t, repo.Save(ctx, "old-2", testModel("ABC", 1)))
	repo.now = time.Now
	require.NoError(t, repo.Save(ctx, "fresh", testModel("ABC", 1)))

	deleted, err := repo.DeleteExpired(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
	_, err = repo.Load(ctx, "fresh")
	assert.NoError(t, err)
}
