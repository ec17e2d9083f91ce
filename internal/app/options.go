package service

import (
	"time"

	"github.com/okian/statboard/internal/adapters/chart"
	"github.com/okian/statboard/internal/adapters/source"
	"github.com/okian/statboard/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDefaultSource sets the dataset path used by sessions without an upload.
func WithDefaultSource(path string) Option {
	return func(s *Service) {
		s.defaultSource = source.FromPath(path)
	}
}

// WithTopN sets the size of the top performers view.
func WithTopN(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.topN = n
		}
	}
}

// WithMaxSessions bounds the number of cached sessions.
func WithMaxSessions(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithSessionTTL sets the idle lifetime of a session.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithSweepInterval sets how often expired sessions are removed.
func WithSweepInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval >= 0 {
			s.sweepInterval = interval
		}
	}
}

// WithLoader replaces the dataset loader.
func WithLoader(l Loader) Option {
	return func(s *Service) {
		if l != nil {
			s.loader = l
		}
	}
}

// WithRenderer replaces the chart renderer.
func WithRenderer(r *chart.Renderer) Option {
	return func(s *Service) {
		if r != nil {
			s.renderer = r
		}
	}
}
