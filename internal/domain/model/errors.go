package model

import "errors"

// Sentinel kinds for model validation.
var (
	ErrUnknownMetric = errors.New("unknown metric")
)
