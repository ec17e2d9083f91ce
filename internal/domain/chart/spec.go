// Package chart builds declarative chart specifications for dashboard views.
package chart

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/okian/statboard/internal/domain/model"
)

// Kind is the chart mark.
type Kind string

// Supported marks.
const (
	KindBar Kind = "bar"
	KindArc Kind = "arc"
)

// Field types for encodings.
const (
	Nominal      = "nominal"
	Quantitative = "quantitative"
)

// pieStartAngle is where the first wedge starts, in degrees.
const pieStartAngle = 140.0

// Encoding maps a data field onto a chart channel.
type Encoding struct {
	Field string `json:"field"`
	Title string `json:"title"`
	Type  string `json:"type"`
}

// Point is one bar or wedge.
type Point struct {
	Category   string  `json:"category"`
	Value      float64 `json:"value"`
	Color      string  `json:"color,omitempty"`
	Share      float64 `json:"share,omitempty"`
	StartAngle float64 `json:"start_angle,omitempty"`
	EndAngle   float64 `json:"end_angle,omitempty"`
	Label      string  `json:"label,omitempty"`
}

// Spec describes a chart independent of any rendering library.
type Spec struct {
	Kind     Kind      `json:"kind"`
	Title    string    `json:"title"`
	Category Encoding  `json:"category"`
	Value    Encoding  `json:"value"`
	Color    *Encoding `json:"color,omitempty"`
	Points   []Point   `json:"points"`
}

// TeamBar charts team totals for metric, tallest bar first.
func TeamBar(totals []model.TeamTotal, metric model.Metric) Spec {
	points := make([]Point, len(totals))
	for i, t := range totals {
		points[i] = Point{Category: t.Team, Value: t.Total, Color: t.Team}
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Value > points[j].Value })
	return Spec{
		Kind:     KindBar,
		Title:    "Team Performance",
		Category: Encoding{Field: "Team", Title: "Team", Type: Nominal},
		Value:    Encoding{Field: metric.String(), Title: "Total " + metric.String(), Type: Quantitative},
		Color:    &Encoding{Field: "Team", Title: "Team", Type: Nominal},
		Points:   points,
	}
}

// ComparisonBar charts the selected players' metric, coloured by team.
func ComparisonBar(rows []model.ComparisonRow, metric model.Metric) Spec {
	points := make([]Point, len(rows))
	for i, r := range rows {
		points[i] = Point{Category: r.Player, Value: r.Value, Color: r.Team}
	}
	return Spec{
		Kind:     KindBar,
		Title:    "Player Comparisons",
		Category: Encoding{Field: "Player", Title: "Player", Type: Nominal},
		Value:    Encoding{Field: metric.String(), Title: metric.String(), Type: Quantitative},
		Color:    &Encoding{Field: "Team", Title: "Team", Type: Nominal},
		Points:   points,
	}
}

// Arc charts team shares as pie wedges. Wedges run counter-clockwise from
// 140 degrees; each label shows the share and the underlying total.
func Arc(rows []model.AggregateRow, metric model.Metric) Spec {
	points := make([]Point, len(rows))
	angle := pieStartAngle
	for i, r := range rows {
		span := r.Share * 360 / 100
		points[i] = Point{
			Category:   r.Team,
			Value:      r.Total,
			Color:      r.Team,
			Share:      r.Share,
			StartAngle: angle,
			EndAngle:   angle + span,
			Label:      fmt.Sprintf("%.1f%%\n(%s)", r.Share, strconv.FormatFloat(r.Total, 'f', -1, 64)),
		}
		angle += span
	}
	return Spec{
		Kind:     KindArc,
		Title:    metric.String() + " Contributions by Team",
		Category: Encoding{Field: "Team", Title: "Team", Type: Nominal},
		Value:    Encoding{Field: "Percentage", Title: "Share of " + metric.String(), Type: Quantitative},
		Color:    &Encoding{Field: "Team", Title: "Team", Type: Nominal},
		Points:   points,
	}
}
