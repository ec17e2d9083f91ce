package chart

import "errors"

// Sentinel kinds for chart rendering errors.
var (
	ErrUnsupportedChart  = errors.New("chart kind is not rendered server-side")
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrEmptyChart        = errors.New("chart has no data")
	ErrRender            = errors.New("chart render failed")
)
