package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	dropForce  bool
	dropSeason int
)

// dropCmd deletes the season cache, or one season from it.
var dropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Delete the season cache",
	Long:  "Permanently delete the SQLite season cache, or with --season only that season. Data is downloaded again on the next comparison.",
	Args:  cobra.NoArgs,
	RunE:  runDrop,
}

func init() {
	dropCmd.Flags().BoolVarP(&dropForce, "force", "f", false, "skip confirmation prompt")
	dropCmd.Flags().IntVar(&dropSeason, "season", 0, "only drop this season")
}

func runDrop(cmd *cobra.Command, args []string) error {
	if dropSeason != 0 {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.DeleteSeason(dropSeason); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Dropped season %d from %s\n", dropSeason, dbPath)
		return nil
	}

	if !dropForce {
		fmt.Fprintf(os.Stderr, "This will permanently delete: %s\n", dbPath)
		fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
		return nil
	}
	if err := os.Remove(dbPath); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(os.Stdout, "Cache does not exist, nothing to drop.")
			return nil
		}
		return fmt.Errorf("remove cache: %w", err)
	}
	// WAL side files.
	os.Remove(dbPath + "-wal")
	os.Remove(dbPath + "-shm")
	fmt.Fprintf(os.Stdout, "Deleted: %s\n", dbPath)
	return nil
}
