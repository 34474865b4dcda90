package cmd

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

// fetch command flags.
var (
	// fetchForce re-downloads even when a fresh cached copy exists.
	fetchForce bool
	// fetchEvict drops expired datasets from the SQLite cache first.
	fetchEvict bool
)

// fetchCmd warms the season cache.
var fetchCmd = &cobra.Command{
	Use:   "fetch [season...]",
	Short: "Download and cache nflverse play-by-play and rosters",
	Long: `Downloads play-by-play and seasonal rosters for each season from nflverse
and stores them in the season cache, so later comparisons start instantly.

Examples:
  # The latest season
  epacompare fetch

  # Several seasons, ignoring cached copies
  epacompare fetch 2022 2023 --force`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().BoolVar(&fetchForce, "force", false, "download even if a fresh copy is cached")
	fetchCmd.Flags().BoolVar(&fetchEvict, "evict", false, "remove expired seasons from the SQLite cache first")
}

func runFetch(cmd *cobra.Command, args []string) error {
	if fetchEvict && redisURL == "" {
		db, err := openDB()
		if err != nil {
			return err
		}
		n, err := db.EvictOlderThan(time.Now().Add(-cacheTTL))
		db.Close()
		if err != nil {
			return fmt.Errorf("evict: %w", err)
		}
		fmt.Printf("Evicted %d expired dataset(s)\n", n)
	}

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	seasons := []int{e.svc.LatestSeason()}
	if len(args) > 0 {
		seasons = seasons[:0]
		for _, a := range args {
			s, err := strconv.Atoi(a)
			if err != nil {
				return fmt.Errorf("invalid season %q: %w", a, err)
			}
			if err := e.svc.ValidateSeason(s); err != nil {
				return err
			}
			seasons = append(seasons, s)
		}
	}

	failed := 0
	for i, s := range seasons {
		fmt.Printf("[%d/%d] season %d\n", i+1, len(seasons), s)
		start := time.Now()
		load := e.loader.Season
		if fetchForce {
			load = e.loader.Refresh
		}
		d, err := load(cmd.Context(), s)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  [error] %v\n", err)
			failed++
			continue
		}
		fmt.Printf("  %d plays, %d roster rows (fetched %s, %.1fs)\n",
			len(d.Plays), len(d.Rosters), d.FetchedAt.Local().Format("2006-01-02 15:04"), time.Since(start).Seconds())
	}

	fmt.Printf("\nDone: %d/%d seasons cached\n", len(seasons)-failed, len(seasons))
	if failed > 0 {
		return fmt.Errorf("%d season(s) failed", failed)
	}
	return nil
}
