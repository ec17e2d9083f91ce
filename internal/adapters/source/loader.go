package source

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"

	"github.com/okian/statboard/internal/domain/analytics"
	"github.com/okian/statboard/internal/domain/model"
	"github.com/okian/statboard/pkg/logger"
	"github.com/okian/statboard/pkg/metrics"
)

// Required column names.
const (
	ColTeam     = "Team"
	ColPlayer   = "Player"
	ColPoints   = "Points"
	ColAssists  = "Assists"
	ColRebounds = "Rebounds"
)

// RequiredColumns lists the columns every source must provide.
func RequiredColumns() []string {
	return []string{ColTeam, ColPlayer, ColPoints, ColAssists, ColRebounds}
}

// Loader turns a Source into a Dataset.
type Loader struct {
	logger  logger.Logger
	maxRows int
}

// NewLoader creates a Loader with configuration options.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads src into a Dataset. On any failure it returns an empty Dataset
// and an error wrapping analytics.ErrDataUnavailable.
func (l *Loader) Load(ctx context.Context, src Source) (model.Dataset, error) {
	empty := model.Dataset{Records: []model.Record{}}
	if err := ctx.Err(); err != nil {
		return empty, fmt.Errorf("%w: %w", analytics.ErrDataUnavailable, err)
	}
	if src.Absent() {
		return empty, fmt.Errorf("%w: %w", analytics.ErrDataUnavailable, ErrNoSource)
	}

	kind := src.Kind()
	identity, err := src.Identity()
	if err != nil {
		return l.fail(empty, kind, err)
	}
	empty.Source = model.SourceInfo{Name: src.Name, Kind: kind, Identity: identity}

	raw, err := src.read()
	if err != nil {
		return l.fail(empty, kind, err)
	}

	var df dataframe.DataFrame
	switch kind {
	case model.SourceXLSX:
		rows, err := readWorkbook(raw)
		if err != nil {
			return l.fail(empty, kind, err)
		}
		df = dataframe.LoadRecords(rows, loadOptions()...)
	default:
		df = dataframe.ReadCSV(bytes.NewReader(raw), loadOptions()...)
	}
	if df.Err != nil {
		return l.fail(empty, kind, fmt.Errorf("%w: %w", ErrParse, df.Err))
	}

	ds, err := l.toDataset(df)
	if err != nil {
		return l.fail(empty, kind, err)
	}
	ds.Source = empty.Source

	metrics.RecordDatasetLoad(string(kind))
	metrics.UpdateDatasetRows(ds.Len())
	if ds.Skipped > 0 && l.logger != nil {
		l.logger.Warn(ctx, "skipped malformed rows",
			logger.String("dataset", src.Name),
			logger.Int("skipped", ds.Skipped),
			logger.Int("rows", ds.Len()),
		)
	}
	return ds, nil
}

func (l *Loader) fail(empty model.Dataset, kind model.SourceKind, err error) (model.Dataset, error) {
	metrics.RecordDatasetLoadError(string(kind))
	return empty, fmt.Errorf("%w: %w", analytics.ErrDataUnavailable, err)
}

// loadOptions keeps every column as text; metrics are converted per column
// so that one bad cell drops a row instead of retyping the whole column.
func loadOptions() []dataframe.LoadOption {
	return []dataframe.LoadOption{
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues([]string{"", "NA", "NaN", "<nil>"}),
	}
}

// resolveColumns maps each required column to the header actually used in
// the source, comparing case-insensitively after trimming.
func resolveColumns(names []string) (map[string]string, error) {
	found := make(map[string]string, len(names))
	for _, n := range names {
		found[strings.ToLower(strings.TrimSpace(n))] = n
	}
	resolved := make(map[string]string)
	var missing []string
	for _, want := range RequiredColumns() {
		actual, ok := found[strings.ToLower(want)]
		if !ok {
			missing = append(missing, want)
			continue
		}
		resolved[want] = actual
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return resolved, nil
}

func (l *Loader) toDataset(df dataframe.DataFrame) (model.Dataset, error) {
	cols, err := resolveColumns(df.Names())
	if err != nil {
		return model.Dataset{}, err
	}

	teams := df.Col(cols[ColTeam])
	players := df.Col(cols[ColPlayer])
	points := df.Col(cols[ColPoints]).Float()
	assists := df.Col(cols[ColAssists]).Float()
	rebounds := df.Col(cols[ColRebounds]).Float()

	n := df.Nrow()
	if l.maxRows > 0 && n > l.maxRows {
		n = l.maxRows
	}
	ds := model.Dataset{Records: make([]model.Record, 0, n)}
	for i := 0; i < n; i++ {
		if teams.Elem(i).IsNA() || players.Elem(i).IsNA() {
			ds.Skipped++
			continue
		}
		team := strings.TrimSpace(teams.Elem(i).String())
		player := strings.TrimSpace(players.Elem(i).String())
		if team == "" || player == "" || !finite(points[i], assists[i], rebounds[i]) {
			ds.Skipped++
			continue
		}
		ds.Records = append(ds.Records, model.Record{
			Team:     team,
			Player:   player,
			Points:   points[i],
			Assists:  assists[i],
			Rebounds: rebounds[i],
		})
	}
	if ds.Empty() {
		return ds, ErrNoRows
	}
	return ds, nil
}

// readWorkbook returns the first sheet as rows padded to the header width.
func readWorkbook(raw []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoRows
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	width := len(rows[0])
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		if len(row) > width {
			row = row[:width]
		}
		padded := make([]string, width)
		copy(padded, row)
		out = append(out, padded)
	}
	return out, nil
}

func finite(xs ...float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
