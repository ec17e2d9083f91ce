// Package analytics implements the filter, aggregate, rank, share and predict
// pipeline that turns a dataset into dashboard views.
package analytics

import "errors"

// Sentinel kinds for pipeline outcomes. Callers use errors.Is.
var (
	// ErrDataUnavailable means no readable source or an empty dataset.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrEmptyFilterResult means the filters matched no records.
	ErrEmptyFilterResult = errors.New("no records match the filters")
	// ErrDegenerateDistribution means the aggregated metric sums to zero.
	ErrDegenerateDistribution = errors.New("metric total is zero")
	// ErrInsufficientData means the regression fit is underdetermined.
	ErrInsufficientData = errors.New("insufficient data for prediction")
	// ErrNoSelection means no players were selected for comparison.
	ErrNoSelection = errors.New("no players selected")
	// ErrInvalidThreshold means the points threshold is NaN or infinite.
	ErrInvalidThreshold = errors.New("min points must be a finite number")
)
