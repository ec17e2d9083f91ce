package analytics

import (
	"math"

	"github.com/okian/statboard/internal/domain/model"
)

// Controls are the filter options offered for a dataset.
type Controls struct {
	Teams     []string         `json:"teams"`
	Metrics   []model.Metric   `json:"metrics"`
	PointsMin float64          `json:"points_min"`
	PointsMax float64          `json:"points_max"`
	Default   model.FilterSpec `json:"default"`
}

// ControlsFor derives the filter options from ds. The points bounds are the
// observed range widened to whole numbers.
func ControlsFor(ds model.Dataset) Controls {
	c := Controls{
		Teams:   ds.Teams(),
		Metrics: model.Metrics(),
	}
	if !ds.Empty() {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, r := range ds.Records {
			lo = math.Min(lo, r.Points)
			hi = math.Max(hi, r.Points)
		}
		c.PointsMin = math.Floor(lo)
		c.PointsMax = math.Ceil(hi)
	}
	c.Default = model.FilterSpec{
		Teams:     c.Teams,
		Metric:    model.Points,
		MinPoints: c.PointsMin,
	}
	return c
}

// DefaultFilterSpec selects every team with the lowest points threshold.
func DefaultFilterSpec(ds model.Dataset) model.FilterSpec {
	return ControlsFor(ds).Default
}
