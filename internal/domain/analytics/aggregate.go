package analytics

import "github.com/okian/statboard/internal/domain/model"

// Aggregate sums metric per team. Teams appear in the order they are first
// seen in records.
func Aggregate(records []model.Record, metric model.Metric) []model.TeamTotal {
	index := make(map[string]int)
	totals := make([]model.TeamTotal, 0)
	for _, r := range records {
		i, ok := index[r.Team]
		if !ok {
			i = len(totals)
			index[r.Team] = i
			totals = append(totals, model.TeamTotal{Team: r.Team})
		}
		totals[i].Total += r.Value(metric)
	}
	return totals
}
