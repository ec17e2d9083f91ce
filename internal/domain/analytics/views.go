package analytics

import (
	"errors"

	"github.com/okian/statboard/internal/domain/chart"
	"github.com/okian/statboard/internal/domain/model"
)

// Notice codes attached to views that could not be fully computed.
const (
	CodeEmptyFilterResult      = "empty_filter_result"
	CodeDegenerateDistribution = "degenerate_distribution"
	CodeInsufficientData       = "insufficient_data"
	CodeNoSelection            = "no_selection"
)

// Notice explains why a view is empty or partial.
type Notice struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NoticeCode maps a pipeline sentinel onto its notice code. Unknown errors
// map to the empty string.
func NoticeCode(err error) string {
	switch {
	case errors.Is(err, ErrEmptyFilterResult):
		return CodeEmptyFilterResult
	case errors.Is(err, ErrDegenerateDistribution):
		return CodeDegenerateDistribution
	case errors.Is(err, ErrInsufficientData):
		return CodeInsufficientData
	case errors.Is(err, ErrNoSelection):
		return CodeNoSelection
	default:
		return ""
	}
}

func newNotice(err error, message string) *Notice {
	return &Notice{Code: NoticeCode(err), Message: message}
}

// Request selects what Run computes.
type Request struct {
	Filter  model.FilterSpec
	Players []string
	// TopN overrides the top performers size when positive.
	TopN int
}

// TableView is the filtered data table.
type TableView struct {
	Rows    []model.Record                 `json:"rows"`
	Summary map[model.Metric]MetricSummary `json:"summary"`
	Notice  *Notice                        `json:"notice,omitempty"`
}

// TeamView is the per-team totals view.
type TeamView struct {
	Totals []model.TeamTotal `json:"totals"`
	Chart  chart.Spec        `json:"chart"`
	Notice *Notice           `json:"notice,omitempty"`
}

// TopView is the top performers view.
type TopView struct {
	Rows   []model.RankedRow `json:"rows"`
	Notice *Notice           `json:"notice,omitempty"`
}

// ComparisonView is the player comparison view.
type ComparisonView struct {
	Options []string              `json:"options"`
	Rows    []model.ComparisonRow `json:"rows"`
	Chart   chart.Spec            `json:"chart"`
	Notice  *Notice               `json:"notice,omitempty"`
}

// ShareView is the team contribution view.
type ShareView struct {
	Rows   []model.AggregateRow `json:"rows"`
	Chart  chart.Spec           `json:"chart"`
	Notice *Notice              `json:"notice,omitempty"`
}

// PredictionView is the fitted points view.
type PredictionView struct {
	Prediction *Prediction `json:"prediction,omitempty"`
	Notice     *Notice     `json:"notice,omitempty"`
}

// Views holds every dashboard view for one request.
type Views struct {
	Filter      model.FilterSpec `json:"filter"`
	Filtered    TableView        `json:"filtered"`
	Teams       TeamView         `json:"teams"`
	Top         TopView          `json:"top"`
	Comparison  ComparisonView   `json:"comparison"`
	Shares      ShareView        `json:"shares"`
	Predictions PredictionView   `json:"predictions"`
}

// Notices lists the notices of all views.
func (v Views) Notices() map[string]*Notice {
	out := make(map[string]*Notice)
	for name, n := range map[string]*Notice{
		"filtered":    v.Filtered.Notice,
		"teams":       v.Teams.Notice,
		"top":         v.Top.Notice,
		"comparison":  v.Comparison.Notice,
		"shares":      v.Shares.Notice,
		"predictions": v.Predictions.Notice,
	} {
		if n != nil {
			out[name] = n
		}
	}
	return out
}

// Run computes every view for ds and req. It never fails: stages that cannot
// produce data leave a Notice instead.
func Run(ds model.Dataset, req Request) Views {
	spec := req.Filter
	if !spec.Metric.Valid() {
		spec.Metric = model.Points
	}
	topN := req.TopN
	if topN <= 0 {
		topN = TopN
	}

	filtered := Filter(ds.Records, spec)
	v := Views{Filter: spec}
	v.Filtered = TableView{Rows: filtered, Summary: Summarize(filtered)}
	v.Comparison.Options = model.Players(filtered)

	if len(filtered) == 0 {
		empty := ErrEmptyFilterResult
		v.Filtered.Notice = newNotice(empty, "No data matches the current filters. Please adjust the filters.")
		v.Teams = TeamView{Totals: []model.TeamTotal{}, Chart: chart.TeamBar(nil, spec.Metric), Notice: newNotice(empty, "No team data available for the selected filters.")}
		v.Top = TopView{Rows: []model.RankedRow{}, Notice: newNotice(empty, "No player data available for the selected filters.")}
		v.Comparison.Rows = []model.ComparisonRow{}
		v.Comparison.Chart = chart.ComparisonBar(nil, spec.Metric)
		v.Comparison.Notice = newNotice(empty, "No players available for the selected filters.")
		v.Shares = ShareView{Rows: []model.AggregateRow{}, Chart: chart.Arc(nil, spec.Metric), Notice: newNotice(empty, "No data available for the selected filters.")}
		v.Predictions = PredictionView{Notice: newNotice(empty, "No data available for predictions.")}
		return v
	}

	totals := Aggregate(filtered, spec.Metric)
	v.Teams = TeamView{Totals: totals, Chart: chart.TeamBar(totals, spec.Metric)}

	v.Top = TopView{Rows: Rank(filtered, spec.Metric, topN)}

	compared, err := Compare(filtered, req.Players, spec.Metric)
	v.Comparison.Rows = compared
	v.Comparison.Chart = chart.ComparisonBar(compared, spec.Metric)
	if errors.Is(err, ErrNoSelection) {
		v.Comparison.Notice = newNotice(err, "Select players to see comparisons.")
	}

	shares, err := Shares(totals)
	v.Shares = ShareView{Rows: shares, Chart: chart.Arc(shares, spec.Metric)}
	if errors.Is(err, ErrDegenerateDistribution) {
		v.Shares.Notice = newNotice(err, "The selected metric totals zero; shares are undefined.")
	}

	prediction, err := Predict(filtered)
	if err != nil {
		v.Predictions.Notice = newNotice(err, "Not enough varied data to fit a prediction: "+err.Error())
	} else {
		v.Predictions.Prediction = &prediction
	}
	return v
}
