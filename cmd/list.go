package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/go-epa-compare/internal/report"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached seasons",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	ds, err := db.ListDatasets()
	if err != nil {
		return fmt.Errorf("list datasets: %w", err)
	}
	if len(ds) == 0 {
		fmt.Fprintln(os.Stdout, "No seasons cached yet. Run 'epacompare fetch --season <year>' to add one.")
		return nil
	}
	report.PrintDatasets(os.Stdout, ds, cacheTTL, time.Now())
	return nil
}
