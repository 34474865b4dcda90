package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-epa-compare/internal/chart"
	"github.com/pable/go-epa-compare/internal/model"
	"github.com/pable/go-epa-compare/internal/report"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics [QB|RB|WR|TE]",
	Short: "Describe the metric columns of a position",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runMetrics,
}

func runMetrics(cmd *cobra.Command, args []string) error {
	positions := model.Positions
	if len(args) == 1 {
		pos, err := model.ParsePosition(args[0])
		if err != nil {
			return err
		}
		positions = []model.Position{pos}
	}
	for _, pos := range positions {
		fmt.Fprintf(os.Stdout, "\n%s (%s)\n", pos, pos.Category())
		report.PrintMetricDefinitions(os.Stdout, pos)
		fmt.Fprintf(os.Stdout, "Charted: ")
		for i, m := range chart.KeyMetrics(pos) {
			if i > 0 {
				fmt.Fprint(os.Stdout, ", ")
			}
			fmt.Fprint(os.Stdout, m)
			if v, ok := chart.ReferenceValue(pos, m); ok {
				fmt.Fprintf(os.Stdout, " (avg %.2f)", v)
			}
		}
		fmt.Fprintln(os.Stdout)
	}
	return nil
}
