package smoke

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/okian/statboard/internal/domain/analytics"
	"github.com/okian/statboard/internal/domain/model"
	"github.com/okian/statboard/pkg/logger"
)

// Run defaults.
const (
	DefaultSessions       = 20
	DefaultTeams          = 6
	DefaultPlayersPerTeam = 8
	DefaultTimeout        = 30 * time.Second
	comparedPlayers       = 2
	directoryPermission   = 0o750
	filePermission        = 0o600
	uploadName            = "smoke.csv"
)

func (c *Config) normalize() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base url is required", ErrInvalidConfig)
	}
	if c.Sessions <= 0 {
		c.Sessions = DefaultSessions
	}
	if c.Teams <= 0 {
		c.Teams = DefaultTeams
	}
	if c.PlayersPerTeam <= 0 {
		c.PlayersPerTeam = DefaultPlayersPerTeam
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Workers > c.Sessions {
		c.Workers = c.Sessions
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return nil
}

// Run executes a complete smoke run against cfg.BaseURL.
func Run(ctx context.Context, cfg Config) (*Stats, error) {
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("smoke")

	log.Info(ctx, "starting statboard smoke run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("sessions", cfg.Sessions),
		logger.Int("workers", cfg.Workers),
		logger.Int("teams", cfg.Teams),
		logger.Int("playersPerTeam", cfg.PlayersPerTeam),
		logger.Duration("timeout", cfg.Timeout))

	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)

	// Step 1: Check service health
	if err := client.Health(ctx); err != nil {
		return stats, err
	}

	// Step 2: Generate the dataset
	records := GenerateRecords(cfg.Teams, cfg.PlayersPerTeam)
	content, err := EncodeCSV(records)
	if err != nil {
		return stats, fmt.Errorf("dataset generation failed: %w", err)
	}
	stats.RowsGenerated = len(records)
	if cfg.OutputFile != "" {
		if err := saveDataset(cfg.OutputFile, content); err != nil {
			log.Warn(ctx, "failed to save dataset", logger.String("file", cfg.OutputFile), logger.Error(err))
		}
	}

	// Step 3: Upload and verify concurrently
	ds := model.Dataset{Records: records}
	var c counters
	jobs := make(chan int, cfg.Workers)
	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				if err := checkSession(ctx, client, ds, content, &c); err != nil {
					if errors.Is(err, ErrMismatch) {
						c.mismatches.Add(1)
					} else {
						c.failures.Add(1)
					}
					log.Warn(ctx, "session check failed", logger.Error(err))
				}
			}
		}()
	}
	go func() {
		defer close(jobs)
		for i := 0; i < cfg.Sessions; i++ {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()
	wg.Wait()

	c.fill(stats)
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)

	switch {
	case ctx.Err() != nil:
		return stats, ctx.Err()
	case stats.Failures > 0:
		return stats, fmt.Errorf("%w: %d of %d sessions", ErrFailures, stats.Failures, cfg.Sessions)
	case stats.Mismatches > 0:
		return stats, fmt.Errorf("%w: %d of %d sessions", ErrMismatch, stats.Mismatches, cfg.Sessions)
	}
	return stats, nil
}

// checkSession creates a session, uploads the dataset and compares one
// randomly filtered view set with the local result.
func checkSession(ctx context.Context, client *HTTPClient, ds model.Dataset, content []byte, c *counters) error {
	id, err := client.CreateSession(ctx)
	if err != nil {
		return err
	}
	c.sessions.Add(1)

	rows, err := client.Upload(ctx, id, uploadName, content)
	if err != nil {
		return err
	}
	c.uploads.Add(1)
	if rows != ds.Len() {
		return fmt.Errorf("%w: server parsed %d rows, want %d", ErrMismatch, rows, ds.Len())
	}

	metrics := model.Metrics()
	q := analytics.Query{
		Teams:   randomSubset(ds.Teams()),
		Metric:  string(metrics[randomInt(0, int64(len(metrics)-1))]),
		Players: pickPlayers(model.Players(ds.Records), comparedPlayers),
	}
	got, err := client.Views(ctx, id, q)
	if err != nil {
		return err
	}
	c.views.Add(1)

	want, err := expectedViews(ds, q, len(got.Top.Rows))
	if err != nil {
		return err
	}
	return verifyViews(want, got)
}

func pickPlayers(players []string, n int) []string {
	out := make([]string, 0, n)
	for i := 0; i < n && len(players) > 0; i++ {
		out = append(out, players[randomInt(0, int64(len(players)-1))])
	}
	return out
}

// saveDataset writes the generated CSV to filename.
func saveDataset(filename string, content []byte) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	return os.WriteFile(filename, content, filePermission)
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var perSecond float64
	if stats.Duration > 0 {
		perSecond = float64(stats.SessionsCreated) / stats.Duration.Seconds()
	}
	log.Info(ctx, "final statistics",
		logger.Int("rowsGenerated", stats.RowsGenerated),
		logger.Int("sessionsCreated", stats.SessionsCreated),
		logger.Int("uploads", stats.Uploads),
		logger.Int("viewsChecked", stats.ViewsChecked),
		logger.Int("mismatches", stats.Mismatches),
		logger.Int("failures", stats.Failures),
		logger.Duration("duration", stats.Duration),
		logger.Float64("sessionsPerSecond", perSecond))
}
