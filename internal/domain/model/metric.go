package model

import (
	"fmt"
	"strings"
)

// Metric names a numeric column selectable for analysis.
type Metric string

// Selectable metrics.
const (
	Points   Metric = "Points"
	Assists  Metric = "Assists"
	Rebounds Metric = "Rebounds"
)

// Metrics lists the selectable metrics in display order.
func Metrics() []Metric {
	return []Metric{Points, Assists, Rebounds}
}

// ParseMetric resolves a metric name case-insensitively.
func ParseMetric(s string) (Metric, error) {
	name := strings.TrimSpace(s)
	for _, m := range Metrics() {
		if strings.EqualFold(name, string(m)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMetric, s)
}

// Valid reports whether m is one of the selectable metrics.
func (m Metric) Valid() bool {
	switch m {
	case Points, Assists, Rebounds:
		return true
	default:
		return false
	}
}

func (m Metric) String() string { return string(m) }
