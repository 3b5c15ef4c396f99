package usecase

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"stock_predictor/internal/feature/regression/domain"
	"stock_predictor/internal/feature/regression/domain/entity"
)

// Fit は経過日数に対する価格の最小二乗直線を計算します。
//
//	slope     = Σ(x-x̄)(y-ȳ) / Σ(x-x̄)²
//	intercept = ȳ - slope·x̄
//	r         = Σ(x-x̄)(y-ȳ) / √(Σ(x-x̄)²·Σ(y-ȳ)²)
//
// 点が2未満、またはすべての x が同じ場合は ErrInsufficientData を返します。
// 価格が一定（Σ(y-ȳ)² = 0）のとき相関係数は 0 とします。
func Fit(series entity.SeriesIdentity, points []entity.TimeSeriesPoint) (*entity.FittedModel, error) {
	if len(points) < 2 {
		return nil, domain.NewError(domain.ErrInsufficientData, "need at least 2 points, got %d", len(points))
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	minDate, maxDate := points[0].Date, points[0].Date
	for i, p := range points {
		xs[i] = float64(DaysSinceEpoch(p.Date))
		ys[i] = p.Price
		if p.Date.Before(minDate) {
			minDate = p.Date
		}
		if p.Date.After(maxDate) {
			maxDate = p.Date
		}
	}

	xMean := stat.Mean(xs, nil)
	yMean := stat.Mean(ys, nil)

	var sxx, sxy, syy float64
	for i := range xs {
		dx := xs[i] - xMean
		dy := ys[i] - yMean
		sxx += dx * dx
		sxy += dx * dy
		syy += dy * dy
	}
	if sxx == 0 {
		return nil, domain.NewError(domain.ErrInsufficientData, "all %d points fall on the same day", len(points))
	}

	slope := sxy / sxx
	intercept := yMean - slope*xMean

	var r float64
	if syy != 0 {
		r = sxy / math.Sqrt(sxx*syy)
		// 丸め誤差で |r| が 1 をわずかに超えることがある
		r = math.Max(-1, math.Min(1, r))
	}

	return &entity.FittedModel{
		Slope:       slope,
		Intercept:   intercept,
		Correlation: r,
		Series:      series,
		MinDate:     minDate,
		MaxDate:     maxDate,
		Points:      len(points),
	}, nil
}
