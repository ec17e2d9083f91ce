package source

import "github.com/okian/statboard/pkg/logger"

// Option applies a configuration option to the Loader.
type Option func(*Loader)

// WithLogger sets the logger used to report skipped rows.
func WithLogger(l logger.Logger) Option {
	return func(ld *Loader) {
		if l != nil {
			ld.logger = l
		}
	}
}

// WithMaxRows caps the number of data rows read from a source. Zero means unlimited.
func WithMaxRows(n int) Option {
	return func(ld *Loader) {
		if n >= 0 {
			ld.maxRows = n
		}
	}
}
