// Package smoke drives a running statboard server end to end: it uploads
// generated datasets into fresh sessions and checks the served views against
// a local computation of the same pipeline.
package smoke

import (
	"sync/atomic"
	"time"
)

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL        string        // Base URL of the service
	Sessions       int           // Number of sessions to create and verify
	Teams          int           // Teams in the generated dataset
	PlayersPerTeam int           // Players per generated team
	Workers        int           // Number of concurrent workers
	Timeout        time.Duration // HTTP request timeout
	OutputFile     string        // Optional CSV copy of the generated dataset
}

// Stats holds run statistics.
type Stats struct {
	RowsGenerated   int
	SessionsCreated int
	Uploads         int
	ViewsChecked    int
	Mismatches      int
	Failures        int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}

// counters are shared by the workers of one run.
type counters struct {
	sessions   atomic.Int64
	uploads    atomic.Int64
	views      atomic.Int64
	mismatches atomic.Int64
	failures   atomic.Int64
}

func (c *counters) fill(s *Stats) {
	s.SessionsCreated = int(c.sessions.Load())
	s.Uploads = int(c.uploads.Load())
	s.ViewsChecked = int(c.views.Load())
	s.Mismatches = int(c.mismatches.Load())
	s.Failures = int(c.failures.Load())
}
