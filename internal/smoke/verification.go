package smoke

import (
	"fmt"
	"math"

	"github.com/okian/statboard/internal/domain/analytics"
	"github.com/okian/statboard/internal/domain/model"
)

const tolerance = 1e-9

// expectedViews runs the pipeline locally for the same dataset and query.
// topN follows the size the server used.
func expectedViews(ds model.Dataset, q analytics.Query, topN int) (analytics.Views, error) {
	spec, err := q.Resolve(ds)
	if err != nil {
		return analytics.Views{}, err
	}
	return analytics.Run(ds, analytics.Request{Filter: spec, Players: q.Players, TopN: topN}), nil
}

// verifyViews reports the first difference between served and expected views.
func verifyViews(want, got analytics.Views) error {
	if got.Filter.Metric != want.Filter.Metric {
		return fmt.Errorf("%w: metric %q, want %q", ErrMismatch, got.Filter.Metric, want.Filter.Metric)
	}
	if len(got.Filtered.Rows) != len(want.Filtered.Rows) {
		return fmt.Errorf("%w: %d filtered rows, want %d", ErrMismatch, len(got.Filtered.Rows), len(want.Filtered.Rows))
	}
	if err := verifyTotals(want.Teams.Totals, got.Teams.Totals); err != nil {
		return err
	}
	if err := verifyTop(want.Top.Rows, got.Top.Rows); err != nil {
		return err
	}
	if err := verifyShares(want.Shares.Rows, got.Shares.Rows); err != nil {
		return err
	}
	return verifyPrediction(want.Predictions, got.Predictions)
}

func verifyTotals(want, got []model.TeamTotal) error {
	if len(got) != len(want) {
		return fmt.Errorf("%w: %d team totals, want %d", ErrMismatch, len(got), len(want))
	}
	for i := range want {
		if got[i].Team != want[i].Team || !near(got[i].Total, want[i].Total) {
			return fmt.Errorf("%w: team total %d is %s=%g, want %s=%g",
				ErrMismatch, i, got[i].Team, got[i].Total, want[i].Team, want[i].Total)
		}
	}
	return nil
}

func verifyTop(want, got []model.RankedRow) error {
	if len(got) != len(want) {
		return fmt.Errorf("%w: %d top rows, want %d", ErrMismatch, len(got), len(want))
	}
	for i := range want {
		if got[i].Player != want[i].Player || !near(got[i].Value, want[i].Value) {
			return fmt.Errorf("%w: rank %d is %s (%g), want %s (%g)",
				ErrMismatch, i+1, got[i].Player, got[i].Value, want[i].Player, want[i].Value)
		}
	}
	return nil
}

func verifyShares(want, got []model.AggregateRow) error {
	if len(got) != len(want) {
		return fmt.Errorf("%w: %d share rows, want %d", ErrMismatch, len(got), len(want))
	}
	for i := range want {
		if got[i].Team != want[i].Team || !near(got[i].Share, want[i].Share) {
			return fmt.Errorf("%w: share of %s is %g, want %g", ErrMismatch, got[i].Team, got[i].Share, want[i].Share)
		}
	}
	return nil
}

func verifyPrediction(want, got analytics.PredictionView) error {
	if (want.Prediction == nil) != (got.Prediction == nil) {
		return fmt.Errorf("%w: prediction present=%t, want %t", ErrMismatch, got.Prediction != nil, want.Prediction != nil)
	}
	if want.Prediction == nil {
		return nil
	}
	w, g := want.Prediction.Model, got.Prediction.Model
	if w.N != g.N || !near(w.Intercept, g.Intercept) || !near(w.B1, g.B1) || !near(w.B2, g.B2) {
		return fmt.Errorf("%w: model %+v, want %+v", ErrMismatch, g, w)
	}
	return nil
}

func near(a, b float64) bool {
	return math.Abs(a-b) <= tolerance*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}
