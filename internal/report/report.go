// Package report renders comparison results as terminal tables and bar charts.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/go-epa-compare/internal/compare"
	"github.com/pable/go-epa-compare/internal/filter"
	"github.com/pable/go-epa-compare/internal/identity"
	"github.com/pable/go-epa-compare/internal/model"
	"github.com/pable/go-epa-compare/internal/storage"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// PrintSelection prints a one-line summary header for the comparison.
func PrintSelection(w io.Writer, season int, pos model.Position, weeks filter.Weeks, players int) {
	fmt.Fprintf(w, "\nSeason: %d  |  Position: %s  |  Window: %s  |  Players: %d\n\n",
		season, pos, weeks, players)
}

// PrintOverview lists the resolved players with their photo references.
func PrintOverview(w io.Writer, ids []identity.Identity, pos model.Position) {
	table := newTable(w)
	table.Header("PLAYER", "TEAM", "POS", "KEY", "PHOTO")
	for _, id := range ids {
		photo := id.PhotoURL
		if photo == identity.DefaultPhotoURL {
			photo = "(placeholder)"
		}
		table.Append(id.DisplayName, id.Team(), string(pos), id.Key.String(), photo)
	}
	table.Render()
}

// PrintComparisonTable writes one row per player with the table's metric
// columns at display precision.
func PrintComparisonTable(w io.Writer, t *compare.Table) {
	table := newTable(w)

	header := make([]any, 0, len(t.Columns)+1)
	header = append(header, strings.ToUpper(compare.PlayerColumn))
	for _, c := range t.Columns {
		header = append(header, strings.ToUpper(string(c)))
	}
	table.Header(header...)

	for _, row := range t.Rows {
		cells := make([]any, 0, len(row.Values)+1)
		cells = append(cells, row.Player)
		for i, v := range row.Values {
			cells = append(cells, compare.Format(t.Columns[i], v))
		}
		table.Append(cells...)
	}
	table.Render()
}

// PrintSkipped notes selected players that had no plays in the window.
func PrintSkipped(w io.Writer, keys []model.PlayerKey) {
	if len(keys) == 0 {
		return
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.Label()
	}
	fmt.Fprintf(w, "No plays in this window for: %s\n", strings.Join(names, ", "))
}

// PrintCandidates lists selectable player keys, numbered for the shell.
func PrintCandidates(w io.Writer, keys []model.PlayerKey) {
	table := newTable(w)
	table.Header("#", "PLAYER", "TEAM", "KEY")
	for i, k := range keys {
		table.Append(strconv.Itoa(i+1), k.Name, k.Team, k.String())
	}
	table.Render()
	fmt.Fprintf(w, "\n(%d players)\n", len(keys))
}

// PrintDatasets lists cached provider files.
func PrintDatasets(w io.Writer, ds []storage.Dataset, ttl time.Duration, now time.Time) {
	table := newTable(w)
	table.Header("SEASON", "DATASET", "ROWS", "FETCHED", "STATUS")
	for _, d := range ds {
		status := "fresh"
		if now.Sub(d.FetchedAt) >= ttl {
			status = "stale"
		}
		table.Append(strconv.Itoa(d.Season), string(d.Kind), strconv.Itoa(d.Rows),
			d.FetchedAt.Local().Format("2006-01-02 15:04"), status)
	}
	table.Render()
}

// PrintMetricDefinitions lists the metrics of pos with their descriptions.
func PrintMetricDefinitions(w io.Writer, pos model.Position) {
	table := tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignLeft},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
	table.Header("METRIC", "PRECISION", "DESCRIPTION")
	for _, m := range model.Schema(pos.Category()) {
		prec := "integer"
		if m.Precision() == model.PrecisionHundredths {
			prec = "0.01"
		}
		table.Append(string(m), prec, m.Describe())
	}
	table.Render()
}
