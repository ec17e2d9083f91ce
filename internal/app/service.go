// Package service provides the dashboard service that implements the
// dependencies required by the HTTP API and the report command.
package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/statboard/internal/adapters/chart"
	"github.com/okian/statboard/internal/adapters/repository"
	"github.com/okian/statboard/internal/adapters/source"
	"github.com/okian/statboard/internal/domain/analytics"
	"github.com/okian/statboard/internal/domain/model"
	"github.com/okian/statboard/pkg/logger"
	"github.com/okian/statboard/pkg/metrics"
)

// Chart names accepted by Service.Chart.
const (
	ChartTeams   = "teams"
	ChartCompare = "compare"
)

// Defaults for the service.
const (
	defaultMaxSessions   = 1000
	defaultSessionTTL    = time.Hour
	defaultSweepInterval = time.Minute
	defaultSourcePath    = "data/sports_data.csv"
)

// Loader reads a dataset from a source.
type Loader interface {
	Load(ctx context.Context, src source.Source) (model.Dataset, error)
}

// Service runs the analytics pipeline for dashboard sessions.
type Service struct {
	mu sync.RWMutex

	// Core components
	sessions *repository.SessionStore
	loader   Loader
	renderer *chart.Renderer

	// Configuration
	defaultSource source.Source
	topN          int
	maxSessions   int
	sessionTTL    time.Duration
	sweepInterval time.Duration

	// State
	started      bool
	pipelineRuns atomic.Int64
	uploads      atomic.Int64

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		renderer:      chart.NewRenderer(),
		defaultSource: source.FromPath(defaultSourcePath),
		topN:          analytics.TopN,
		maxSessions:   defaultMaxSessions,
		sessionTTL:    defaultSessionTTL,
		sweepInterval: defaultSweepInterval,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the session store. The store's expiry sweeper runs until
// ctx is done or Stop is called.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.loader == nil {
		s.loader = source.NewLoader(source.WithLogger(s.logger.Named("loader")))
	}

	s.logger.Info(ctx, "starting dashboard service...")

	s.sessions = repository.NewSessionStore(ctx,
		repository.WithMaxSessions(s.maxSessions),
		repository.WithTTL(s.sessionTTL),
		repository.WithSweepInterval(s.sweepInterval),
	)

	s.started = true
	s.logger.Info(ctx, "dashboard service started",
		logger.String("defaultSource", s.defaultSource.Path),
		logger.Int("topN", s.topN),
		logger.Int("maxSessions", s.maxSessions),
		logger.String("sessionTTL", s.sessionTTL.String()),
	)

	return nil
}

// Stop shuts down the session store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping dashboard service...")
	if s.sessions != nil {
		_ = s.sessions.Close()
	}
	s.started = false
	s.logger.Info(context.Background(), "dashboard service stopped")
}

func (s *Service) store() (*repository.SessionStore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.sessions, nil
}

// NewSession creates a session that starts on the default source.
func (s *Service) NewSession(ctx context.Context) (string, error) {
	store, err := s.store()
	if err != nil {
		return "", err
	}
	id := store.Create(ctx)
	s.logger.Info(ctx, "session created", logger.String("session", id))
	return id, nil
}

// Upload loads content as the session's dataset. An invalid upload leaves the
// session's previous source in place.
func (s *Service) Upload(ctx context.Context, sessionID, name string, content []byte) (model.Dataset, error) {
	store, err := s.store()
	if err != nil {
		return model.Dataset{}, err
	}
	if !store.Exists(ctx, sessionID) {
		return model.Dataset{}, repository.ErrSessionNotFound
	}
	if len(content) == 0 {
		return model.Dataset{}, fmt.Errorf("%w: %w", analytics.ErrDataUnavailable, ErrEmptyUpload)
	}

	src := source.FromContent(name, content)
	ds, err := s.loader.Load(ctx, src)
	if err != nil {
		s.logger.Warn(ctx, "upload rejected",
			logger.String("session", sessionID),
			logger.String("name", name),
			logger.Error(err),
		)
		return ds, err
	}
	if err := store.Put(ctx, sessionID, src, ds); err != nil {
		return model.Dataset{}, err
	}

	s.uploads.Add(1)
	s.logger.Info(ctx, "dataset uploaded",
		logger.String("session", sessionID),
		logger.String("name", name),
		logger.Int("rows", ds.Len()),
		logger.Int("skipped", ds.Skipped),
	)
	return ds, nil
}

// Dataset returns the session's dataset, loading it when the cache is stale.
func (s *Service) Dataset(ctx context.Context, sessionID string) (model.Dataset, error) {
	store, err := s.store()
	if err != nil {
		return model.Dataset{}, err
	}
	return store.Dataset(ctx, sessionID, s.defaultSource, s.loader.Load)
}

// Controls returns the filter options for the session's dataset.
func (s *Service) Controls(ctx context.Context, sessionID string) (analytics.Controls, error) {
	ds, err := s.Dataset(ctx, sessionID)
	if err != nil {
		return analytics.Controls{}, err
	}
	return analytics.ControlsFor(ds), nil
}

// Views runs the full pipeline for the session's dataset.
func (s *Service) Views(ctx context.Context, sessionID string, q analytics.Query) (analytics.Views, error) {
	ds, err := s.Dataset(ctx, sessionID)
	if err != nil {
		return analytics.Views{}, err
	}
	return s.run(ctx, ds, q)
}

// Chart renders the named bar chart for the session's dataset.
func (s *Service) Chart(ctx context.Context, sessionID, name string, q analytics.Query, format chart.Format) ([]byte, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name != ChartTeams && name != ChartCompare {
		return nil, fmt.Errorf("%w: %q", ErrUnknownChart, name)
	}
	views, err := s.Views(ctx, sessionID, q)
	if err != nil {
		return nil, err
	}

	spec := views.Teams.Chart
	if name == ChartCompare {
		spec = views.Comparison.Chart
	}
	img, err := s.renderer.Render(spec, format)
	if err != nil {
		metrics.RecordErrorByComponent("chart", "render")
		return nil, err
	}
	metrics.RecordChartRender(name, string(format))
	return img, nil
}

// Report runs the pipeline once over src without a session.
func (s *Service) Report(ctx context.Context, src source.Source, q analytics.Query) (model.Dataset, analytics.Views, error) {
	loader := s.loader
	if loader == nil {
		loader = source.NewLoader(source.WithLogger(s.getLogger().Named("loader")))
	}
	ds, err := loader.Load(ctx, src)
	if err != nil {
		return ds, analytics.Views{}, err
	}
	views, err := s.run(ctx, ds, q)
	return ds, views, err
}

// run resolves q against ds and computes every view.
func (s *Service) run(ctx context.Context, ds model.Dataset, q analytics.Query) (analytics.Views, error) {
	spec, err := q.Resolve(ds)
	if err != nil {
		return analytics.Views{}, err
	}

	start := time.Now()
	views := analytics.Run(ds, analytics.Request{Filter: spec, Players: q.Players, TopN: s.topN})
	latency := float64(time.Since(start).Microseconds()) / 1000
	metrics.RecordPipelineRun(latency)
	s.pipelineRuns.Add(1)

	for view, n := range views.Notices() {
		metrics.RecordViewNotice(view, n.Code)
		s.getLogger().Debug(ctx, "view notice",
			logger.String("view", view),
			logger.String("code", n.Code),
		)
	}
	s.getLogger().Debug(ctx, "pipeline run",
		logger.String("dataset", ds.Source.Name),
		logger.Int("filtered", len(views.Filtered.Rows)),
		logger.Float64("latencyMs", latency),
	)
	return views, nil
}

func (s *Service) getLogger() logger.Logger {
	if s.logger == nil {
		return logger.Get()
	}
	return s.logger
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":       s.started,
		"defaultSource": s.defaultSource.Path,
		"topN":          s.topN,
		"maxSessions":   s.maxSessions,
		"sessionTTL":    s.sessionTTL.String(),
		"pipelineRuns":  s.pipelineRuns.Load(),
		"uploads":       s.uploads.Load(),
	}

	if s.started {
		active := s.sessions.Len()
		stats["activeSessions"] = active
		metrics.UpdateActiveSessions(active)
	}

	return stats
}
