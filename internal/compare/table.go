// Package compare assembles per-player stat lines into one comparison table.
package compare

import (
	"errors"
	"fmt"
	"math"

	"github.com/pable/go-epa-compare/internal/identity"
	"github.com/pable/go-epa-compare/internal/model"
)

// MaxPlayers is the largest selection a table accepts.
const MaxPlayers = 5

// PlayerColumn is the leading, non-metric column.
const PlayerColumn = "Player"

// Entry pairs a resolved identity with the stat line computed for it.
type Entry struct {
	Identity identity.Identity
	Line     model.StatLine
}

// Row is one player's values, aligned with Table.Columns.
type Row struct {
	Player   string
	Team     string
	PhotoURL string
	Values   []float64
}

// Table is the comparison view for the current selection.
type Table struct {
	Position model.Position
	Season   int
	Columns  []model.Metric
	Rows     []Row
}

// ErrTooManyPlayers is returned when more than MaxPlayers entries are given.
var ErrTooManyPlayers = errors.New("compare: at most 5 players can be compared")

// Build lays entries out as rows under the schema of pos. Entries keep their
// order; metrics a line lacks are filled with the no-data sentinel.
func Build(pos model.Position, season int, entries []Entry) (*Table, error) {
	if len(entries) > MaxPlayers {
		return nil, ErrTooManyPlayers
	}
	cols := model.Schema(pos.Category())
	t := &Table{
		Position: pos,
		Season:   season,
		Columns:  cols,
		Rows:     make([]Row, 0, len(entries)),
	}
	for _, e := range entries {
		vals := make([]float64, len(cols))
		for i, m := range cols {
			vals[i] = e.Line.Value(m)
		}
		t.Rows = append(t.Rows, Row{
			Player:   e.Identity.DisplayName,
			Team:     e.Identity.Team(),
			PhotoURL: e.Identity.PhotoURL,
			Values:   vals,
		})
	}
	return t, nil
}

// ColumnIndex returns the position of m in the table, or -1.
func (t *Table) ColumnIndex(m model.Metric) int {
	for i, c := range t.Columns {
		if c == m {
			return i
		}
	}
	return -1
}

// Column returns every row's value for m.
func (t *Table) Column(m model.Metric) ([]float64, error) {
	i := t.ColumnIndex(m)
	if i < 0 {
		return nil, fmt.Errorf("column %q not in %s table", m, t.Position)
	}
	out := make([]float64, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = row.Values[i]
	}
	return out, nil
}

// Rounded returns a copy with each value rounded to its column's display
// precision. No-data values stay no-data.
func (t *Table) Rounded() *Table {
	out := &Table{
		Position: t.Position,
		Season:   t.Season,
		Columns:  append([]model.Metric(nil), t.Columns...),
		Rows:     make([]Row, len(t.Rows)),
	}
	for r, row := range t.Rows {
		vals := make([]float64, len(row.Values))
		for i, v := range row.Values {
			vals[i] = Round(t.Columns[i], v)
		}
		row.Values = vals
		out.Rows[r] = row
	}
	return out
}

// Round applies m's display precision to v.
func Round(m model.Metric, v float64) float64 {
	if model.IsNoData(v) {
		return v
	}
	switch m.Precision() {
	case model.PrecisionHundredths:
		return math.Round(v*100) / 100
	default:
		return math.Round(v)
	}
}

// Format renders v for display under column m.
func Format(m model.Metric, v float64) string {
	if model.IsNoData(v) {
		return "—"
	}
	if m.Precision() == model.PrecisionHundredths {
		return fmt.Sprintf("%.2f", Round(m, v))
	}
	return fmt.Sprintf("%d", int64(Round(m, v)))
}

// Filename is the export name, e.g. epa_comparison_QB_2023.csv.
func (t *Table) Filename() string {
	return fmt.Sprintf("epa_comparison_%s_%d.csv", t.Position, t.Season)
}
