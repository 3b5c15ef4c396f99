package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"stock_predictor/internal/feature/regression/domain"
	"stock_predictor/internal/feature/regression/domain/entity"
)

// ModelStore はセッションごとに直近の FittedModel を1件だけ保持するストアです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type ModelStore interface {
	// Save は既存のモデルを無条件に置き換えます。
	Save(ctx context.Context, sessionID string, model *entity.FittedModel) error
	// Load は保存済みのモデルを返します。存在しない場合は ErrModelNotFound を返します。
	Load(ctx context.Context, sessionID string) (*entity.FittedModel, error)
	// Delete はセッションのモデルを削除します。
	Delete(ctx context.Context, sessionID string) error
}

// PlotRenderer は散布図と回帰直線の画像を生成します。
type PlotRenderer interface {
	// Stage は画像を一時ファイルに書き出し、確定前の成果物を返します。
	Stage(points []entity.TimeSeriesPoint, model *entity.FittedModel) (StagedPlot, error)
}

// StagedPlot は書き出し済みだが公開パスにはまだ反映されていない画像です。
type StagedPlot interface {
	// Commit は画像を公開パスに上書きします。
	Commit() error
	// Discard は一時ファイルを削除します。
	Discard() error
}

// RegressionUsecase はアップロード・回帰・予測の一連の処理を提供します。
type RegressionUsecase struct {
	symbols  SymbolLookup
	store    ModelStore
	renderer PlotRenderer
	now      func() time.Time
}

// NewRegressionUsecase は RegressionUsecase の新しいインスタンスを生成します。
func NewRegressionUsecase(symbols SymbolLookup, store ModelStore, renderer PlotRenderer) *RegressionUsecase {
	return &RegressionUsecase{
		symbols:  symbols,
		store:    store,
		renderer: renderer,
		now:      time.Now,
	}
}

// Upload はCSVを読み込んで回帰を行い、グラフを書き出してモデルをセッションに保存します。
// 途中で失敗した場合はセッションの状態も公開中のグラフも変更しません。
func (u *RegressionUsecase) Upload(ctx context.Context, sessionID, filename string, data []byte) (*entity.FittedModel, error) {
	series, points, err := LoadDataset(ctx, u.symbols, filename, data)
	if err != nil {
		return nil, err
	}

	model, err := Fit(series, points)
	if err != nil {
		return nil, err
	}
	model.FittedAt = u.now().UTC()

	staged, err := u.renderer.Stage(points, model)
	if err != nil {
		if !errors.Is(err, domain.ErrArtifactWrite) {
			err = domain.NewError(domain.ErrArtifactWrite, "%v", err)
		}
		return nil, err
	}

	prev, err := u.store.Load(ctx, sessionID)
	if err != nil && !errors.Is(err, ErrModelNotFound) {
		u.discard(staged)
		return nil, fmt.Errorf("load previous model: %w", err)
	}

	if err := u.store.Save(ctx, sessionID, model); err != nil {
		u.discard(staged)
		return nil, fmt.Errorf("save model: %w", err)
	}

	if err := staged.Commit(); err != nil {
		u.restore(ctx, sessionID, prev)
		if !errors.Is(err, domain.ErrArtifactWrite) {
			err = domain.NewError(domain.ErrArtifactWrite, "%v", err)
		}
		return nil, err
	}

	slog.Info("model fitted", "session", sessionID, "code", series.Code, "points", model.Points,
		"slope", model.Slope, "intercept", model.Intercept, "r", model.Correlation)
	return model, nil
}

// Predict はセッションに保存されたモデルを指定日で評価します。
// 応答に式や相関係数を含められるよう、評価に使ったモデルも返します。
func (u *RegressionUsecase) Predict(ctx context.Context, sessionID, date string) (*entity.FittedModel, *entity.PredictionResult, error) {
	model, err := u.CurrentModel(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	res, err := Predict(model, date)
	if err != nil {
		return nil, nil, err
	}
	return model, res, nil
}

// CurrentModel はセッションに保存されたモデルを返します。
func (u *RegressionUsecase) CurrentModel(ctx context.Context, sessionID string) (*entity.FittedModel, error) {
	model, err := u.store.Load(ctx, sessionID)
	if errors.Is(err, ErrModelNotFound) {
		return nil, domain.NewError(domain.ErrNoModel, "no previous file upload found; please upload a file first")
	}
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	return model, nil
}

// discard は一時ファイルの削除に失敗してもログに残すだけにします。
func (u *RegressionUsecase) discard(staged StagedPlot) {
	if err := staged.Discard(); err != nil {
		slog.Warn("failed to discard staged plot", "error", err)
	}
}

// restore はグラフの確定に失敗したとき、セッションを直前の状態に戻します。
func (u *RegressionUsecase) restore(ctx context.Context, sessionID string, prev *entity.FittedModel) {
	var err error
	if prev != nil {
		err = u.store.Save(ctx, sessionID, prev)
	} else {
		err = u.store.Delete(ctx, sessionID)
	}
	if err != nil {
		slog.Error("failed to roll back model", "session", sessionID, "error", err)
	}
}
