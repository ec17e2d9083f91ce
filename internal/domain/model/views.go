package model

// TeamTotal is a team's summed metric.
type TeamTotal struct {
	Team  string  `json:"team"`
	Total float64 `json:"total"`
}

// AggregateRow is a team total with its percentage share of the grand total.
type AggregateRow struct {
	Team  string  `json:"team"`
	Total float64 `json:"total"`
	Share float64 `json:"share"`
}

// RankedRow is one entry of the top performers table.
type RankedRow struct {
	Rank   int     `json:"rank"`
	Player string  `json:"player"`
	Team   string  `json:"team"`
	Value  float64 `json:"value"`
}

// ComparisonRow is one bar of the player comparison chart.
type ComparisonRow struct {
	Player string  `json:"player"`
	Team   string  `json:"team"`
	Value  float64 `json:"value"`
}

// PredictionRow pairs a player's actual points with the fitted estimate.
type PredictionRow struct {
	Player    string  `json:"player"`
	Actual    float64 `json:"actual"`
	Predicted float64 `json:"predicted"`
}
