package analytics

import "github.com/okian/statboard/internal/domain/model"

// Filter returns the records whose team is selected and whose points reach
// spec.MinPoints, in input order. A NaN threshold matches nothing. The result
// is never nil.
func Filter(records []model.Record, spec model.FilterSpec) []model.Record {
	teams := spec.TeamSet()
	out := make([]model.Record, 0, len(records))
	if len(teams) == 0 {
		return out
	}
	for _, r := range records {
		if _, ok := teams[r.Team]; !ok {
			continue
		}
		if !(r.Points >= spec.MinPoints) {
			continue
		}
		out = append(out, r)
	}
	return out
}
