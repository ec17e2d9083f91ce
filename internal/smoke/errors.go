package smoke

import "errors"

// Error kinds reported by a smoke run.
var (
	ErrInvalidConfig = errors.New("invalid smoke config")
	ErrUnhealthy     = errors.New("service unhealthy")
	ErrUnexpected    = errors.New("unexpected response")
	ErrMismatch      = errors.New("served views differ from local computation")
	ErrFailures      = errors.New("smoke requests failed")
)
