package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-epa-compare/internal/dashboard"
	"github.com/pable/go-epa-compare/internal/report"
)

var (
	playersSeason   int
	playersPosition string
	playersWeeks    string
)

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "List the players selectable for a season, position and week window",
	Args:  cobra.NoArgs,
	RunE:  runPlayers,
}

func init() {
	playersCmd.Flags().IntVar(&playersSeason, "season", 0, "season year (default: latest)")
	playersCmd.Flags().StringVarP(&playersPosition, "position", "p", "QB", "position: QB, RB, WR or TE")
	playersCmd.Flags().StringVarP(&playersWeeks, "weeks", "w", "", "week (7) or inclusive range (3-9); default all weeks")
}

func runPlayers(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	season, pos, weeks, err := selection(e.svc, playersSeason, playersPosition, playersWeeks)
	if err != nil {
		return err
	}
	keys, err := e.svc.Candidates(cmd.Context(), season, pos, weeks)
	if dashboard.IsNotice(err) {
		cNotice.Fprintln(os.Stdout, err)
		return nil
	}
	if err != nil {
		return err
	}
	report.PrintSelection(os.Stdout, season, pos, weeks, len(keys))
	report.PrintCandidates(os.Stdout, keys)
	return nil
}
