// Package repository holds the in-memory, session-scoped dataset cache.
package repository

import "time"

// Option applies a configuration option to the SessionStore.
type Option func(*SessionStore)

// WithMaxSessions bounds the number of live sessions. Creating a session at
// capacity evicts the least recently accessed one.
func WithMaxSessions(n int) Option {
	return func(s *SessionStore) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithTTL sets the idle time after which a session expires.
func WithTTL(ttl time.Duration) Option {
	return func(s *SessionStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithSweepInterval sets how often expired sessions are removed in the
// background. Zero disables the sweeper.
func WithSweepInterval(interval time.Duration) Option {
	return func(s *SessionStore) {
		if interval >= 0 {
			s.sweepInterval = interval
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *SessionStore) {
		if now != nil {
			s.now = now
		}
	}
}
