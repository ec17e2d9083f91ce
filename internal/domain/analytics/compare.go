package analytics

import "github.com/okian/statboard/internal/domain/model"

// Compare returns the records of the selected players, in input order.
func Compare(records []model.Record, players []string, metric model.Metric) ([]model.ComparisonRow, error) {
	if len(players) == 0 {
		return []model.ComparisonRow{}, ErrNoSelection
	}
	selected := make(map[string]struct{}, len(players))
	for _, p := range players {
		selected[p] = struct{}{}
	}
	out := make([]model.ComparisonRow, 0, len(players))
	for _, r := range records {
		if _, ok := selected[r.Player]; !ok {
			continue
		}
		out = append(out, model.ComparisonRow{Player: r.Player, Team: r.Team, Value: r.Value(metric)})
	}
	return out, nil
}
