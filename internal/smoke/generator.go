package smoke

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/go-gota/gota/dataframe"
	"github.com/google/uuid"

	"github.com/okian/statboard/internal/domain/model"
)

// Performer tiers shape the generated stat lines.
const (
	tierBench = iota
	tierRotation
	tierStarter
	tierStar
	tierCount
)

type statRange struct {
	points, assists, rebounds [2]int64 // inclusive bounds
}

var tierRanges = [tierCount]statRange{
	tierBench:    {points: [2]int64{0, 8}, assists: [2]int64{0, 3}, rebounds: [2]int64{0, 4}},
	tierRotation: {points: [2]int64{6, 14}, assists: [2]int64{1, 5}, rebounds: [2]int64{2, 7}},
	tierStarter:  {points: [2]int64{12, 22}, assists: [2]int64{2, 7}, rebounds: [2]int64{3, 10}},
	tierStar:     {points: [2]int64{20, 35}, assists: [2]int64{4, 11}, rebounds: [2]int64{5, 14}},
}

// randomInt returns a value in [lo, hi] using crypto/rand.
func randomInt(lo, hi int64) int64 {
	if hi <= lo {
		return lo
	}
	n, err := rand.Int(rand.Reader, big.NewInt(hi-lo+1))
	if err != nil {
		return lo
	}
	return lo + n.Int64()
}

// GenerateRecords builds teams*playersPerTeam records with whole-number
// stats so they survive a CSV round trip exactly.
func GenerateRecords(teams, playersPerTeam int) []model.Record {
	records := make([]model.Record, 0, teams*playersPerTeam)
	for t := 0; t < teams; t++ {
		team := fmt.Sprintf("Team %02d", t+1)
		for p := 0; p < playersPerTeam; p++ {
			r := tierRanges[randomInt(0, tierCount-1)]
			records = append(records, model.Record{
				Team:     team,
				Player:   "Player " + uuid.NewString()[:8],
				Points:   float64(randomInt(r.points[0], r.points[1])),
				Assists:  float64(randomInt(r.assists[0], r.assists[1])),
				Rebounds: float64(randomInt(r.rebounds[0], r.rebounds[1])),
			})
		}
	}
	return records
}

// csvRow fixes the column names and order of generated files.
type csvRow struct {
	Team     string
	Player   string
	Points   float64
	Assists  float64
	Rebounds float64
}

// EncodeCSV writes records with the dataset header row.
func EncodeCSV(records []model.Record) ([]byte, error) {
	rows := make([]csvRow, len(records))
	for i, r := range records {
		rows[i] = csvRow(r)
	}
	df := dataframe.LoadStructs(rows)
	if df.Err != nil {
		return nil, fmt.Errorf("build frame: %w", df.Err)
	}
	var buf bytes.Buffer
	if err := df.WriteCSV(&buf); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

// randomSubset picks a non-empty random subset of items, keeping their order.
func randomSubset(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if randomInt(0, 1) == 1 {
			out = append(out, it)
		}
	}
	if len(out) == 0 && len(items) > 0 {
		out = append(out, items[randomInt(0, int64(len(items)-1))])
	}
	return out
}
