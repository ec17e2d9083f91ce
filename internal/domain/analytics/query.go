package analytics

import (
	"fmt"
	"math"
	"strings"

	"github.com/okian/statboard/internal/domain/model"
)

// Query is a dashboard interaction before it is resolved against a dataset.
type Query struct {
	// Teams selects teams. Nil selects every team; empty non-nil selects none.
	Teams []string
	// Metric names the metric; empty means Points.
	Metric string
	// MinPoints is the points threshold; nil means the lowest slider value.
	MinPoints *float64
	// Players selects players for the comparison view.
	Players []string
}

// Resolve overlays q on the default filter of ds. An unknown metric name is
// an error wrapping model.ErrUnknownMetric; a non-finite threshold wraps
// ErrInvalidThreshold.
func (q Query) Resolve(ds model.Dataset) (model.FilterSpec, error) {
	spec := DefaultFilterSpec(ds)
	if q.Teams != nil {
		spec.Teams = q.Teams
	}
	if strings.TrimSpace(q.Metric) != "" {
		m, err := model.ParseMetric(q.Metric)
		if err != nil {
			return model.FilterSpec{}, err
		}
		spec.Metric = m
	}
	if q.MinPoints != nil {
		v := *q.MinPoints
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return model.FilterSpec{}, fmt.Errorf("%w: %v", ErrInvalidThreshold, v)
		}
		spec.MinPoints = v
	}
	return spec, nil
}
