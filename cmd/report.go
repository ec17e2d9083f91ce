package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/okian/statboard/internal/adapters/source"
	app "github.com/okian/statboard/internal/app"
	"github.com/okian/statboard/internal/config"
	"github.com/okian/statboard/internal/domain/analytics"
	"github.com/okian/statboard/internal/domain/model"
	"github.com/okian/statboard/pkg/logger"
)

// Report output formats.
const (
	formatText = "text"
	formatJSON = "json"
)

// ErrUnknownFormat is returned for an unsupported --format value.
var ErrUnknownFormat = errors.New("unknown report format")

type reportFlags struct {
	data      string
	teams     string
	metric    string
	minPoints float64
	players   string
	format    string
}

// reportSubcommand returns the report subcommand.
func reportSubcommand() *cobra.Command {
	flags := &reportFlags{}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Run the statistics pipeline once and print every view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q := analytics.Query{Metric: flags.metric}
			if cmd.Flags().Changed("teams") {
				q.Teams = splitList(flags.teams)
			}
			if cmd.Flags().Changed("players") {
				q.Players = splitList(flags.players)
			}
			if cmd.Flags().Changed("min-points") {
				v := flags.minPoints
				q.MinPoints = &v
			}
			return runReport(cmd.Context(), cmd.OutOrStdout(), flags.data, flags.format, q)
		},
	}
	cmd.Flags().StringVar(&flags.data, "data", "", "CSV or XLSX file (defaults to the configured default_source)")
	cmd.Flags().StringVar(&flags.teams, "teams", "", "comma separated teams; omit for all, empty for none")
	cmd.Flags().StringVar(&flags.metric, "metric", string(model.Points), "metric for totals, ranking and comparison")
	cmd.Flags().Float64Var(&flags.minPoints, "min-points", 0, "minimum points filter (defaults to the dataset minimum)")
	cmd.Flags().StringVar(&flags.players, "players", "", "comma separated players to compare")
	cmd.Flags().StringVar(&flags.format, "format", formatText, "output format: text or json")
	return cmd
}

// reportOutput is the JSON form of a report.
type reportOutput struct {
	Source  model.SourceInfo `json:"source"`
	Rows    int              `json:"rows"`
	Skipped int              `json:"skipped"`
	Views   analytics.Views  `json:"views"`
}

// runReport loads the dataset at data (or the configured default) and
// writes every view to w.
func runReport(ctx context.Context, w io.Writer, data, format string, q analytics.Query) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if format != formatText && format != formatJSON {
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	configureLogging(ctx, cfg)
	if data == "" {
		data = cfg.DefaultSource
	}

	l := logger.Get()
	svc := app.New(app.WithLogger(l), app.WithLoader(newLoader(cfg, l)), app.WithTopN(cfg.TopN))
	ds, views, err := svc.Report(ctx, source.FromPath(data), q)
	if err != nil {
		return err
	}

	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reportOutput{Source: ds.Source, Rows: ds.Len(), Skipped: ds.Skipped, Views: views})
	}
	return writeTextReport(w, ds, views)
}

func writeTextReport(out io.Writer, ds model.Dataset, v analytics.Views) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	metric := v.Filter.Metric

	fmt.Fprintf(tw, "Source: %s (%s), %d rows, %d skipped\n", ds.Source.Name, ds.Source.Kind, ds.Len(), ds.Skipped)
	fmt.Fprintf(tw, "Filter: teams=[%s] metric=%s min_points=%g\n",
		strings.Join(v.Filter.Teams, ", "), metric, v.Filter.MinPoints)

	section(tw, "Filtered data", v.Filtered.Notice)
	if len(v.Filtered.Rows) > 0 {
		fmt.Fprintln(tw, "Team\tPlayer\tPoints\tAssists\tRebounds")
		for _, r := range v.Filtered.Rows {
			fmt.Fprintf(tw, "%s\t%s\t%g\t%g\t%g\n", r.Team, r.Player, r.Points, r.Assists, r.Rebounds)
		}
		fmt.Fprintln(tw, "Metric\tCount\tMean\tMedian\tStdDev\tMin\tMax")
		for _, m := range model.Metrics() {
			s, ok := v.Filtered.Summary[m]
			if !ok {
				continue
			}
			fmt.Fprintf(tw, "%s\t%d\t%.2f\t%.2f\t%.2f\t%g\t%g\n", m, s.Count, s.Mean, s.Median, s.StdDev, s.Min, s.Max)
		}
	}

	section(tw, "Team totals ("+string(metric)+")", v.Teams.Notice)
	for _, t := range v.Teams.Totals {
		fmt.Fprintf(tw, "%s\t%g\n", t.Team, t.Total)
	}

	section(tw, "Top players ("+string(metric)+")", v.Top.Notice)
	for _, r := range v.Top.Rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%g\n", r.Rank, r.Player, r.Team, r.Value)
	}

	section(tw, "Comparison ("+string(metric)+")", v.Comparison.Notice)
	for _, r := range v.Comparison.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%g\n", r.Player, r.Team, r.Value)
	}

	section(tw, "Share ("+string(metric)+")", v.Shares.Notice)
	for _, r := range v.Shares.Rows {
		fmt.Fprintf(tw, "%s\t%g\t%.1f%%\n", r.Team, r.Total, r.Share)
	}

	section(tw, "Points prediction", v.Predictions.Notice)
	if p := v.Predictions.Prediction; p != nil {
		fmt.Fprintf(tw, "Points = %.3f + %.3f*Assists + %.3f*Rebounds (n=%d)\n",
			p.Model.Intercept, p.Model.B1, p.Model.B2, p.Model.N)
		fmt.Fprintln(tw, "Player\tActual\tPredicted")
		for _, r := range p.Rows {
			fmt.Fprintf(tw, "%s\t%g\t%.2f\n", r.Player, r.Actual, r.Predicted)
		}
	}
	return tw.Flush()
}

func section(w io.Writer, title string, notice *analytics.Notice) {
	fmt.Fprintf(w, "\n== %s ==\n", title)
	if notice != nil {
		fmt.Fprintf(w, "(%s) %s\n", notice.Code, notice.Message)
	}
}

// splitList splits a comma list, dropping blanks. The result is never nil.
func splitList(raw string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
