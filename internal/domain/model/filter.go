package model

// FilterSpec is the current team selection, metric and minimum-points threshold.
// A nil or empty team set selects nothing.
type FilterSpec struct {
	Teams     []string `json:"teams"`
	Metric    Metric   `json:"metric"`
	MinPoints float64  `json:"min_points"`
}

// TeamSet returns the selected teams as a set.
func (f FilterSpec) TeamSet() map[string]struct{} {
	set := make(map[string]struct{}, len(f.Teams))
	for _, t := range f.Teams {
		set[t] = struct{}{}
	}
	return set
}
