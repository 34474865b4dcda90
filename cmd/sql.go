package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run a raw SQL query against the season cache",
	Long: `Run an arbitrary SQL query against the SQLite season cache and print results as a table.

Schema overview:
  datasets(season, kind 'pbp'|'roster', fetched_at unix seconds, row_count)
  plays(season, row_idx, week, posteam, passer_name, passer_id, rusher_name, rusher_id,
    receiver_name, receiver_id, epa, success, complete_pass, yards_gained,
    yards_after_catch, air_yards, pass_touchdown, rush_touchdown, interception,
    sack, first_down, cpoe)
  rosters(season, row_idx, player_id, first_name, last_name, football_name, team,
    position, headshot_url)

Missing provider values are stored as NULL.

Example:
  epacompare sql "SELECT passer_name, posteam, COUNT(*) n, AVG(epa) FROM plays
    WHERE season = 2023 AND passer_name != '' GROUP BY 1, 2 ORDER BY 4 DESC LIMIT 10"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func runSQL(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	cols, rows, err := db.QueryRaw(query)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("(no rows)")
		return nil
	}

	table := tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))

	colsAny := make([]any, len(cols))
	for i, c := range cols {
		colsAny[i] = c
	}
	table.Header(colsAny...)

	for _, row := range rows {
		rowAny := make([]any, len(row))
		for i, v := range row {
			rowAny[i] = v
		}
		table.Append(rowAny...)
	}
	table.Render()
	fmt.Fprintf(os.Stdout, "\n(%d rows)\n", len(rows))
	return nil
}
