package source

import "errors"

// Sentinel kinds for loader failures. Every load failure also wraps
// analytics.ErrDataUnavailable.
var (
	ErrNoSource       = errors.New("no source supplied")
	ErrMissingColumns = errors.New("missing required columns")
	ErrParse          = errors.New("parse source")
	ErrNoRows         = errors.New("source has no valid rows")
)
