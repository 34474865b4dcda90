package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/go-epa-compare/internal/compare"
	"github.com/pable/go-epa-compare/internal/dashboard"
	"github.com/pable/go-epa-compare/internal/filter"
	"github.com/pable/go-epa-compare/internal/model"
	"github.com/pable/go-epa-compare/internal/report"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cHeader   = color.New(color.FgCyan, color.Bold)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive comparison session",
	Long:  "Open a persistent session that keeps the season, position, week window and player selection between comparisons. Type 'help' for available commands.",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

// shellState is the selection the session edits.
type shellState struct {
	season   int
	position model.Position
	weeks    filter.Weeks
	players  []model.PlayerKey
	last     *dashboard.Result
}

func runShell(cmd *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	st := &shellState{
		season:   e.svc.LatestSeason(),
		position: model.PositionQB,
	}
	ctx := cmd.Context()

	cGreeting.Println("epacompare shell")
	cMuted.Println("type 'help' or 'exit'")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cPrompt.Printf("epacompare %d %s", st.season, st.position)
		cMuted.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		tokens := strings.Fields(line)
		name, args := tokens[0], tokens[1:]

		switch name {
		case "exit", "quit":
			return nil
		case "help":
			shellHelp()
		case "season":
			shellSeason(e.svc, st, args)
		case "position":
			shellPosition(st, args)
		case "weeks":
			shellWeeks(st, args)
		case "players":
			shellCandidates(ctx, e.svc, st)
		case "add":
			shellAdd(st, args)
		case "remove":
			shellRemove(st, args)
		case "clear":
			st.players = nil
			st.last = nil
			cMuted.Println("selection cleared")
		case "compare":
			shellCompare(ctx, e.svc, st)
		case "export":
			shellExport(st, args)
		case "list":
			shellList()
		case "metrics":
			report.PrintMetricDefinitions(os.Stdout, st.position)
		default:
			cWarn.Fprintf(os.Stderr, "unknown command %q, type 'help'\n", name)
		}
	}
	return nil
}

func shellHelp() {
	fmt.Println()
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"season [year]", "show (with cached seasons) or set the season"},
		{"position [QB|RB|WR|TE]", "show or set the position (clears players)"},
		{"weeks [N | A-B | all]", "show or set the week window"},
		{"players", "list selectable players for the selection"},
		{"add <NAME@TEAM> [...]", "add players to the comparison"},
		{"remove <NAME@TEAM> [...]", "remove players from the comparison"},
		{"clear", "remove all players"},
		{"compare", "compare the selected players"},
		{"export [file|dir]", "write the last comparison as CSV"},
		{"list", "list cached seasons"},
		{"metrics", "describe the position's metrics"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Print("  ")
		cCmd.Printf("%-28s", r.cmd)
		fmt.Println(r.desc)
	}
	fmt.Println()
}

func shellSeason(svc *dashboard.Service, st *shellState, args []string) {
	if len(args) == 0 {
		fmt.Printf("season %d (available %d-%d)\n", st.season, dashboard.FirstSeason, svc.LatestSeason())
		if cached := cachedSeasons(); len(cached) > 0 {
			cMuted.Printf("cached: %s\n", strings.Join(cached, ", "))
		}
		return
	}
	s, err := strconv.Atoi(args[0])
	if err != nil {
		cError.Fprintf(os.Stderr, "invalid season %q\n", args[0])
		return
	}
	if err := svc.ValidateSeason(s); err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	st.season = s
	st.last = nil
}

// cachedSeasons lists the seasons stored in the SQLite cache, newest first.
func cachedSeasons() []string {
	if redisURL != "" {
		return nil
	}
	db, err := openDB()
	if err != nil {
		return nil
	}
	defer db.Close()
	seasons, err := db.ListSeasons()
	if err != nil {
		return nil
	}
	out := make([]string, len(seasons))
	for i, s := range seasons {
		out[i] = strconv.Itoa(s)
	}
	return out
}

func shellPosition(st *shellState, args []string) {
	if len(args) == 0 {
		fmt.Printf("position %s\n", st.position)
		return
	}
	pos, err := model.ParsePosition(args[0])
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if pos != st.position {
		st.players = nil
		st.last = nil
	}
	st.position = pos
}

func shellWeeks(st *shellState, args []string) {
	if len(args) == 0 {
		fmt.Printf("weeks %s\n", st.weeks)
		return
	}
	arg := args[0]
	if arg == "all" {
		arg = ""
	}
	w, err := filter.ParseWeeks(arg)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	st.weeks = w
	st.last = nil
}

func shellCandidates(ctx context.Context, svc *dashboard.Service, st *shellState) {
	keys, err := svc.Candidates(ctx, st.season, st.position, st.weeks)
	if dashboard.IsNotice(err) {
		cNotice.Fprintln(os.Stdout, err)
		return
	}
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	report.PrintCandidates(os.Stdout, keys)
}

func shellAdd(st *shellState, args []string) {
	if len(args) == 0 {
		cError.Fprintln(os.Stderr, "usage: add <NAME@TEAM> [...]")
		return
	}
	for _, a := range args {
		k, err := model.ParsePlayerKey(a)
		if err != nil {
			cError.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		if indexOfKey(st.players, k) >= 0 {
			continue
		}
		if len(st.players) >= compare.MaxPlayers {
			cWarn.Fprintf(os.Stderr, "at most %d players can be compared\n", compare.MaxPlayers)
			break
		}
		st.players = append(st.players, k)
	}
	shellSelection(st)
}

func shellRemove(st *shellState, args []string) {
	for _, a := range args {
		k, err := model.ParsePlayerKey(a)
		if err != nil {
			cError.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		if i := indexOfKey(st.players, k); i >= 0 {
			st.players = append(st.players[:i], st.players[i+1:]...)
		}
	}
	shellSelection(st)
}

func shellSelection(st *shellState) {
	if len(st.players) == 0 {
		cMuted.Println("no players selected")
		return
	}
	labels := make([]string, len(st.players))
	for i, k := range st.players {
		labels[i] = k.Label()
	}
	fmt.Printf("selected: %s\n", strings.Join(labels, ", "))
}

func indexOfKey(keys []model.PlayerKey, k model.PlayerKey) int {
	for i, x := range keys {
		if x == k {
			return i
		}
	}
	return -1
}

func shellCompare(ctx context.Context, svc *dashboard.Service, st *shellState) {
	res, err := svc.Run(ctx, dashboard.Request{
		Season:   st.season,
		Position: st.position,
		Players:  st.players,
		Weeks:    st.weeks,
	})
	if dashboard.IsNotice(err) {
		cNotice.Fprintln(os.Stdout, err)
		return
	}
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	st.last = res
	fmt.Println()
	printResult(res, true, report.DefaultBarWidth)
}

func shellExport(st *shellState, args []string) {
	if st.last == nil {
		cWarn.Fprintln(os.Stderr, "nothing to export, run 'compare' first")
		return
	}
	dest := "."
	if len(args) > 0 {
		dest = args[0]
	}
	path, err := writeCSV(st.last.Table, dest)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	fmt.Printf("Wrote %s\n", path)
}

func shellList() {
	db, err := openDB()
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	defer db.Close()
	ds, err := db.ListDatasets()
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if len(ds) == 0 {
		cMuted.Println("No seasons cached yet.")
		return
	}
	cHeader.Fprintln(os.Stdout, "Cached seasons")
	report.PrintDatasets(os.Stdout, ds, cacheTTL, time.Now())
}
