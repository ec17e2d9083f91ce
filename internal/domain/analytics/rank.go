package analytics

import (
	"sort"

	"github.com/okian/statboard/internal/domain/model"
)

// TopN is the size of the top performers table.
const TopN = 5

// Rank orders records by metric descending and keeps the first n. Ties keep
// their input order. n <= 0 yields an empty result.
func Rank(records []model.Record, metric model.Metric, n int) []model.RankedRow {
	if n <= 0 || len(records) == 0 {
		return []model.RankedRow{}
	}
	sorted := make([]model.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value(metric) > sorted[j].Value(metric)
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	out := make([]model.RankedRow, n)
	for i := 0; i < n; i++ {
		out[i] = model.RankedRow{
			Rank:   i + 1,
			Player: sorted[i].Player,
			Team:   sorted[i].Team,
			Value:  sorted[i].Value(metric),
		}
	}
	return out
}
