package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-epa-compare/internal/chart"
	"github.com/pable/go-epa-compare/internal/compare"
	"github.com/pable/go-epa-compare/internal/report"
)

var viewWidth int

var viewCmd = &cobra.Command{
	Use:   "view <epa_comparison_POS_SEASON.csv>",
	Short: "Re-render an exported comparison CSV",
	Long: `Reads a table written by 'compare --csv' (or the HTTP export) and prints the
table and charts again without touching the season cache. Position and season
come from the file name.`,
	Args: cobra.ExactArgs(1),
	RunE: runView,
}

func init() {
	viewCmd.Flags().IntVar(&viewWidth, "width", report.DefaultBarWidth, "bar chart width in cells")
}

func runView(cmd *cobra.Command, args []string) error {
	pos, season, err := compare.ParseFilename(args[0])
	if err != nil {
		return err
	}
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open %s: %w", args[0], err)
	}
	defer f.Close()

	t, err := compare.ReadCSV(f, pos, season)
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	fmt.Fprintf(os.Stdout, "\nSeason: %d  |  Position: %s  |  Players: %d  |  File: %s\n\n",
		season, pos, len(t.Rows), args[0])
	report.PrintComparisonTable(os.Stdout, t)
	fmt.Fprintln(os.Stdout)
	report.PrintCharts(os.Stdout, chart.PrepareAll(t), viewWidth)
	return nil
}
