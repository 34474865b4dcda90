package compare

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pable/go-epa-compare/internal/model"
)

// WriteCSV writes a Player column followed by the metric columns. No-data
// values are written as empty cells.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := make([]string, 0, len(t.Columns)+1)
	header = append(header, PlayerColumn)
	for _, c := range t.Columns {
		header = append(header, string(c))
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range t.Rows {
		rec := make([]string, 0, len(row.Values)+1)
		rec = append(rec, row.Player)
		for _, v := range row.Values {
			if model.IsNoData(v) {
				rec = append(rec, "")
				continue
			}
			rec = append(rec, strconv.FormatFloat(v, 'f', -1, 64))
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %q: %w", row.Player, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads a table written by WriteCSV. The header must start with the
// Player column; every other column must be a metric of pos.
func ReadCSV(r io.Reader, pos model.Position, season int) (*Table, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) == 0 || header[0] != PlayerColumn {
		return nil, fmt.Errorf("first column must be %q", PlayerColumn)
	}

	t := &Table{Position: pos, Season: season}
	for _, h := range header[1:] {
		m, err := model.ParseMetric(pos.Category(), h)
		if err != nil {
			return nil, err
		}
		t.Columns = append(t.Columns, m)
	}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		row := Row{Player: rec[0], Values: make([]float64, len(t.Columns))}
		for i, cell := range rec[1:] {
			if strings.TrimSpace(cell) == "" {
				row.Values[i] = model.NoData()
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("row %q column %q: %w", rec[0], t.Columns[i], err)
			}
			row.Values[i] = v
		}
		t.Rows = append(t.Rows, row)
	}
	if len(t.Rows) > MaxPlayers {
		return nil, ErrTooManyPlayers
	}
	return t, nil
}

// ParseFilename recovers position and season from an export file name.
func ParseFilename(path string) (model.Position, int, error) {
	base := strings.TrimSuffix(filepath.Base(path), ".csv")
	parts := strings.Split(base, "_")
	if len(parts) != 4 || parts[0] != "epa" || parts[1] != "comparison" {
		return "", 0, fmt.Errorf("%q is not an epa_comparison_<POS>_<SEASON>.csv export", filepath.Base(path))
	}
	pos, err := model.ParsePosition(parts[2])
	if err != nil {
		return "", 0, err
	}
	season, err := strconv.Atoi(parts[3])
	if err != nil {
		return "", 0, fmt.Errorf("invalid season in %q: %w", filepath.Base(path), err)
	}
	return pos, season, nil
}
