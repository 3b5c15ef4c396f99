// Package entity defines the domain models for the regression feature.
package entity

import "time"

// TimeSeriesPoint is one observed closing price.
type TimeSeriesPoint struct {
	Date  time.Time // Calendar date at UTC midnight
	Price float64   // Closing price
}

// SeriesIdentity identifies the company a series belongs to.
// It is resolved from the reference table by exact code match.
type SeriesIdentity struct {
	Code string `json:"code"` // Reference code, equal to the uploaded filename stem (e.g., "BBCA")
	Name string `json:"name"` // Company display name
}
