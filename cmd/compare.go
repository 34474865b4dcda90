package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/go-epa-compare/internal/compare"
	"github.com/pable/go-epa-compare/internal/dashboard"
	"github.com/pable/go-epa-compare/internal/report"
)

var cNotice = color.New(color.FgYellow)

// compare command flags.
var (
	compareSeason   int
	comparePosition string
	compareWeeks    string
	compareCSV      string
	compareNoCharts bool
	compareWidth    int
)

var compareCmd = &cobra.Command{
	Use:   "compare <NAME@TEAM> <NAME@TEAM> [...]",
	Short: "Compare 2-5 players of one position",
	Long: `Loads the season's play-by-play (cached for --ttl), aggregates each player's
plays for the selected week window and prints the comparison table and a bar
chart per key metric.

Players are given as the abbreviated play-by-play name and team, as listed by
'epacompare players'.

Examples:
  epacompare compare --season 2023 --position QB P.Mahomes@KC J.Allen@BUF
  epacompare compare --position WR --weeks 1-8 --csv . C.Lamb@DAL T.Hill@MIA`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().IntVar(&compareSeason, "season", 0, "season year (default: latest)")
	compareCmd.Flags().StringVarP(&comparePosition, "position", "p", "QB", "position: QB, RB, WR or TE")
	compareCmd.Flags().StringVarP(&compareWeeks, "weeks", "w", "", "week (7) or inclusive range (3-9); default all weeks")
	compareCmd.Flags().StringVar(&compareCSV, "csv", "", "write the table as CSV to this file or directory")
	compareCmd.Flags().BoolVar(&compareNoCharts, "no-charts", false, "skip the bar charts")
	compareCmd.Flags().IntVar(&compareWidth, "width", report.DefaultBarWidth, "bar chart width in cells")
}

func runCompare(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	season, pos, weeks, err := selection(e.svc, compareSeason, comparePosition, compareWeeks)
	if err != nil {
		return err
	}
	players, err := parsePlayerKeys(args)
	if err != nil {
		return err
	}

	res, err := e.svc.Run(cmd.Context(), dashboard.Request{
		Season:   season,
		Position: pos,
		Players:  players,
		Weeks:    weeks,
	})
	if dashboard.IsNotice(err) {
		cNotice.Fprintln(os.Stdout, err)
		return nil
	}
	if err != nil {
		return err
	}

	printResult(res, !compareNoCharts, compareWidth)

	if compareCSV != "" {
		path, err := writeCSV(res.Table, compareCSV)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Wrote %s\n", path)
	}
	return nil
}

func printResult(res *dashboard.Result, charts bool, width int) {
	req := res.Request
	report.PrintSelection(os.Stdout, req.Season, req.Position, req.Weeks, len(res.Players))
	report.PrintOverview(os.Stdout, res.Players, req.Position)
	fmt.Fprintln(os.Stdout)
	report.PrintComparisonTable(os.Stdout, res.Table)
	if len(res.Skipped) > 0 {
		fmt.Fprintln(os.Stdout)
		report.PrintSkipped(os.Stdout, res.Skipped)
	}
	if charts {
		fmt.Fprintln(os.Stdout)
		report.PrintCharts(os.Stdout, res.Charts, width)
	}
}

// writeCSV writes the rounded table to dest. A dest that is a directory, or
// does not end in .csv, receives the table's default file name.
func writeCSV(t *compare.Table, dest string) (string, error) {
	rounded := t.Rounded()
	path := dest
	if info, err := os.Stat(dest); (err == nil && info.IsDir()) || !strings.HasSuffix(strings.ToLower(dest), ".csv") {
		path = filepath.Join(dest, rounded.Filename())
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if err := rounded.WriteCSV(f); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, f.Close()
}
