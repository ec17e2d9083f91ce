package analytics

import (
	"github.com/montanaflynn/stats"

	"github.com/okian/statboard/internal/domain/model"
)

// MetricSummary describes the distribution of one metric over a set of records.
type MetricSummary struct {
	Count  int     `json:"count"`
	Sum    float64 `json:"sum"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"std_dev"`
}

// Summarize computes a MetricSummary for every metric. Empty input yields an
// empty map.
func Summarize(records []model.Record) map[model.Metric]MetricSummary {
	out := make(map[model.Metric]MetricSummary)
	if len(records) == 0 {
		return out
	}
	for _, m := range model.Metrics() {
		data := make(stats.Float64Data, len(records))
		for i, r := range records {
			data[i] = r.Value(m)
		}
		out[m] = describe(data)
	}
	return out
}

// describe ignores the library's empty-input errors; callers never pass empty data.
func describe(data stats.Float64Data) MetricSummary {
	sum, _ := stats.Sum(data)
	mean, _ := stats.Mean(data)
	median, _ := stats.Median(data)
	lo, _ := stats.Min(data)
	hi, _ := stats.Max(data)
	sd, _ := stats.StandardDeviation(data)
	return MetricSummary{
		Count:  data.Len(),
		Sum:    sum,
		Mean:   mean,
		Median: median,
		Min:    lo,
		Max:    hi,
		StdDev: sd,
	}
}
