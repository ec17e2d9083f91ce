package analytics

import "github.com/okian/statboard/internal/domain/model"

// Shares expresses each team total as a percentage of the grand total.
//
// When the grand total is zero every share is 0 and ErrDegenerateDistribution
// is returned together with the zero-share rows.
func Shares(totals []model.TeamTotal) ([]model.AggregateRow, error) {
	var grand float64
	for _, t := range totals {
		grand += t.Total
	}
	rows := make([]model.AggregateRow, len(totals))
	for i, t := range totals {
		rows[i] = model.AggregateRow{Team: t.Team, Total: t.Total}
	}
	if grand == 0 {
		return rows, ErrDegenerateDistribution
	}
	for i := range rows {
		rows[i].Share = rows[i].Total / grand * 100
	}
	return rows, nil
}
