package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/go-epa-compare/internal/config"
)

var (
	cfg = config.LoadConfig()

	dbPath   string
	cacheTTL time.Duration
	redisURL string
)

var rootCmd = &cobra.Command{
	Use:   "epacompare",
	Short: "NFL EPA player comparison tool",
	Long: `Compare NFL players side by side on EPA-based efficiency metrics, success
rates, completion rates and yardage, computed from nflverse play-by-play data.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", cfg.Cache.DBPath, "path to SQLite season cache")
	rootCmd.PersistentFlags().DurationVar(&cacheTTL, "ttl", cfg.Cache.TTL, "how long downloaded season data is reused")
	rootCmd.PersistentFlags().StringVar(&redisURL, "redis", cfg.Redis.URL, "Redis URL for a shared season cache (replaces SQLite)")

	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(dropCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(metricsCmd)
}
