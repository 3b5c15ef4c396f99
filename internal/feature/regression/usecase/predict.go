package usecase

import (
	"time"

	"stock_predictor/internal/feature/regression/domain"
	"stock_predictor/internal/feature/regression/domain/entity"
)

var (
	// MinPredictionDate は予測を受け付ける最初の日付です（含む）。
	MinPredictionDate = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)
	// MaxPredictionDate は予測を受け付ける最後の日付です（含む）。
	MaxPredictionDate = time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)
)

// Predict はモデルを指定日で評価します。
// 日付の範囲チェックは学習データの期間とは無関係で、範囲内なら外挿も許可します。
func Predict(model *entity.FittedModel, date string) (*entity.PredictionResult, error) {
	d, err := ParseDate(date)
	if err != nil {
		return nil, domain.NewError(domain.ErrDateParse, "invalid prediction date %q", date)
	}
	if d.Before(MinPredictionDate) || d.After(MaxPredictionDate) {
		return nil, domain.NewError(domain.ErrDateRange, "prediction date must be between %s and %s",
			MinPredictionDate.Format("2006-01-02"), MaxPredictionDate.Format("2006-01-02"))
	}
	return &entity.PredictionResult{
		Date:  d,
		Price: model.Evaluate(DaysSinceEpoch(d)),
	}, nil
}
