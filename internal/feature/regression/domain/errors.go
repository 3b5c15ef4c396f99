// Package domain defines domain-level errors for the regression feature.
package domain

import (
	"errors"
	"fmt"
)

// Error kinds for the upload and prediction pipeline.
// Every failure surfaced by the usecase unwraps to exactly one of these sentinels,
// so upper layers can classify it with errors.Is.
var (
	// ErrSchema indicates that the uploaded CSV lacks the required "timestamp" or "close" column.
	ErrSchema = errors.New("schema error")

	// ErrUnknownSeries indicates that the filename stem has no entry in the reference table.
	ErrUnknownSeries = errors.New("unknown series")

	// ErrParse indicates that a row of the uploaded CSV could not be parsed.
	ErrParse = errors.New("parse error")

	// ErrInsufficientData indicates fewer than two points or zero variance in the day offsets.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrArtifactWrite indicates that the plot image could not be written.
	ErrArtifactWrite = errors.New("artifact write error")

	// ErrNoModel indicates that no fitted model exists for the current session.
	ErrNoModel = errors.New("no model")

	// ErrDateRange indicates that a requested prediction date is outside [1900-01-01, 2100-01-01].
	ErrDateRange = errors.New("date out of range")

	// ErrDateParse indicates that a requested prediction date could not be parsed.
	ErrDateParse = errors.New("date parse error")
)

// Error pairs an error kind with a human-readable detail.
type Error struct {
	Kind   error
	Detail string
}

// NewError returns an *Error of the given kind with a formatted detail.
func NewError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Detail
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// KindName returns the stable name used in API responses for the kind of err,
// or "InternalError" if err is not one of the domain kinds.
func KindName(err error) string {
	switch {
	case errors.Is(err, ErrSchema):
		return "SchemaError"
	case errors.Is(err, ErrUnknownSeries):
		return "UnknownSeriesError"
	case errors.Is(err, ErrParse):
		return "ParseError"
	case errors.Is(err, ErrInsufficientData):
		return "InsufficientDataError"
	case errors.Is(err, ErrArtifactWrite):
		return "ArtifactWriteError"
	case errors.Is(err, ErrNoModel):
		return "NoModelError"
	case errors.Is(err, ErrDateRange):
		return "DateRangeError"
	case errors.Is(err, ErrDateParse):
		return "DateParseError"
	default:
		return "InternalError"
	}
}
