package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// EquationPlaces is the number of decimal places shown for slope and intercept.
	EquationPlaces = 4
	// PricePlaces is the number of decimal places shown for a predicted price.
	PricePlaces = 2
)

// FittedModel holds the least-squares fit of price against days since 1970-01-01.
// Values are kept at full precision; rounding happens only in the display helpers.
type FittedModel struct {
	Slope       float64        `json:"slope"`
	Intercept   float64        `json:"intercept"`
	Correlation float64        `json:"correlation"`
	Series      SeriesIdentity `json:"series"`
	MinDate     time.Time      `json:"min_date"`
	MaxDate     time.Time      `json:"max_date"`
	Points      int            `json:"points"`
	FittedAt    time.Time      `json:"fitted_at"`
}

// Evaluate returns slope*days + intercept.
func (m *FittedModel) Evaluate(days int64) float64 {
	return m.Slope*float64(days) + m.Intercept
}

// Equation formats the fit as "y = <slope>x + <intercept>" with 4 decimal places.
func (m *FittedModel) Equation() string {
	return "y = " + FormatFixed(m.Slope, EquationPlaces) + "x + " + FormatFixed(m.Intercept, EquationPlaces)
}

// PredictionResult is a price evaluated from a FittedModel. It is never persisted.
type PredictionResult struct {
	Date  time.Time
	Price float64
}

// DisplayPrice returns the price rounded to 2 decimal places.
func (p *PredictionResult) DisplayPrice() string {
	return FormatFixed(p.Price, PricePlaces)
}

// FormatFixed rounds v to places decimal places and formats it with exactly that many digits.
func FormatFixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}
