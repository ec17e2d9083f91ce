// Package model contains domain models passed between layers.
package model

// Record is one row of the statistics table. Records are immutable once loaded.
type Record struct {
	Team     string  `json:"team"`     // category used for grouping
	Player   string  `json:"player"`   // identity of the row
	Points   float64 `json:"points"`   // scoring metric, also the regression target
	Assists  float64 `json:"assists"`  // first regression predictor
	Rebounds float64 `json:"rebounds"` // second regression predictor
}

// Value returns the record's value for metric m. Unknown metrics read as 0.
func (r Record) Value(m Metric) float64 {
	switch m {
	case Points:
		return r.Points
	case Assists:
		return r.Assists
	case Rebounds:
		return r.Rebounds
	default:
		return 0
	}
}

// SourceKind identifies the encoding of a dataset source.
type SourceKind string

// Supported source encodings.
const (
	SourceCSV  SourceKind = "csv"
	SourceXLSX SourceKind = "xlsx"
)

// SourceInfo describes where a dataset came from.
type SourceInfo struct {
	Name     string     `json:"name"`
	Kind     SourceKind `json:"kind"`
	Identity string     `json:"identity"`
}

// Dataset is an ordered, read-only sequence of records loaded from one source.
type Dataset struct {
	Source  SourceInfo `json:"source"`
	Records []Record   `json:"records"`
	// Skipped counts source rows dropped because they were malformed.
	Skipped int `json:"skipped"`
}

// Len returns the number of records.
func (d Dataset) Len() int { return len(d.Records) }

// Empty reports whether the dataset holds no records.
func (d Dataset) Empty() bool { return len(d.Records) == 0 }

// Teams returns the distinct team names in first-seen order.
func (d Dataset) Teams() []string {
	seen := make(map[string]struct{})
	teams := make([]string, 0)
	for _, r := range d.Records {
		if _, ok := seen[r.Team]; ok {
			continue
		}
		seen[r.Team] = struct{}{}
		teams = append(teams, r.Team)
	}
	return teams
}

// Players returns the distinct player names in first-seen order.
func Players(records []Record) []string {
	seen := make(map[string]struct{})
	players := make([]string, 0)
	for _, r := range records {
		if _, ok := seen[r.Player]; ok {
			continue
		}
		seen[r.Player] = struct{}{}
		players = append(players, r.Player)
	}
	return players
}
