package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/statboard/internal/adapters/chart"
	"github.com/okian/statboard/internal/adapters/http/api"
	"github.com/okian/statboard/internal/adapters/http/site"
	"github.com/okian/statboard/internal/adapters/http/swagger"
	"github.com/okian/statboard/internal/adapters/source"
	app "github.com/okian/statboard/internal/app"
	"github.com/okian/statboard/internal/config"
	"github.com/okian/statboard/pkg/logger"
	"github.com/okian/statboard/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	nanosecondsPerMillisecond = 1e6
)

// serveSubcommand returns the serve subcommand.
func serveSubcommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

// runServe loads configuration, starts the service and serves HTTP until
// SIGINT or SIGTERM.
func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	configureLogging(ctx, cfg)
	configureMetrics(cfg)
	loggerInstance := logger.Get()

	svc := newService(cfg, loggerInstance)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	refresh := metrics.RefreshInterval()
	go startSystemMetricsUpdater(ctx, refresh)
	go startServiceMetricsUpdater(ctx, svc, refresh)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, cfg, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			return err
		}
	}
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
	return nil
}

// configureLogging applies the configured format and level, falling back
// to info on an invalid level.
func configureLogging(ctx context.Context, cfg *config.Config) {
	_ = logger.Init(logger.WithFormat(cfg.LogFormat))
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
}

// configureMetrics rebuilds the metrics registry from the metrics section.
func configureMetrics(cfg *config.Config) {
	mc := cfg.Metrics
	metrics.Init(
		metrics.WithMetricsEnabled(mc.Enabled),
		metrics.WithNamespace(mc.Namespace),
		metrics.WithSubsystem(mc.Subsystem),
		metrics.WithMetricPrefix(mc.Prefix),
		metrics.WithCustomLabels(mc.Labels),
		metrics.WithHistogramBuckets(mc.BucketsMs),
		metrics.WithRefreshInterval(cfg.MetricsRefresh()),
	)
}

// newLoader builds the dataset loader shared by serve and report.
func newLoader(cfg *config.Config, l logger.Logger) *source.Loader {
	return source.NewLoader(source.WithLogger(l.Named("loader")), source.WithMaxRows(cfg.MaxRows))
}

// newService builds the dashboard service from configuration.
func newService(cfg *config.Config, l logger.Logger) *app.Service {
	renderer := chart.NewRenderer(
		chart.WithSize(cfg.ChartWidthPx, cfg.ChartHeightPx),
		chart.WithBarWidth(cfg.ChartBarWidthPx),
	)
	return app.New(
		app.WithLogger(l),
		app.WithLoader(newLoader(cfg, l)),
		app.WithDefaultSource(cfg.DefaultSource),
		app.WithTopN(cfg.TopN),
		app.WithMaxSessions(cfg.MaxSessions),
		app.WithSessionTTL(cfg.SessionTTL()),
		app.WithRenderer(renderer),
	)
}

// newMux registers every route: the API, its docs and the root redirect.
func newMux(ctx context.Context, cfg *config.Config, svc *app.Service) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	site.Register(ctx, mux)

	apiServer := api.NewServer(svc, svc, api.WithMaxUploadBytes(cfg.MaxUploadBytes))
	apiServer.Register(ctx, mux)
	return mux
}

// startSystemMetricsUpdater updates system metrics every interval until ctx ends.
func startSystemMetricsUpdater(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater refreshes the session gauge from the service.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics updates service-level metrics. GetStats refreshes
// the active session gauge as a side effect.
func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()
	if active, ok := stats["activeSessions"].(int); ok {
		metrics.UpdateActiveSessions(active)
	}
}
