package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/spf13/cobra"

	"github.com/pable/go-epa-compare/internal/chart"
	"github.com/pable/go-epa-compare/internal/dashboard"
	"github.com/pable/go-epa-compare/internal/model"
)

const analyzeSystemPrompt = `You are an NFL analytics assistant. You are given a comparison table computed
from nflverse play-by-play data for a few players of one position, and a question.

Rules:
- Answer ONLY from the data provided. Never invent or estimate statistics.
- Always cite specific numbers when making a claim.
- A null value means the player had no qualifying plays for that metric.
- Mind sample size: compare play, attempt or target counts before drawing conclusions.
- If the data is insufficient to answer confidently, say so explicitly.
- Be concise.

Metrics glossary:
- EPA: expected points added per play; 0 is league-neutral, positive is good.
- Success Rate: % of plays with positive EPA.
- CPOE: completion % over expected; 0 is average.
- Rates and percentages are on a 0-100 scale.
- "league_average" gives fixed reference values for some metrics.`

var (
	analyzeModel    string
	analyzeAPIKey   string
	analyzeSeason   int
	analyzePosition string
	analyzeWeeks    string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <question> <NAME@TEAM> <NAME@TEAM> [...]",
	Short: "AI-powered grounded analysis of a comparison (requires ANTHROPIC_API_KEY)",
	Long: `Runs the same comparison as 'compare' and asks Claude the question, grounded
only in the resulting table.

Example:
  epacompare analyze "Who was more efficient on early downs?" P.Mahomes@KC J.Allen@BUF --season 2023`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeModel, "model", "claude-haiku-4-5-20251001", "Anthropic model to use")
	analyzeCmd.Flags().StringVar(&analyzeAPIKey, "api-key", "", "Anthropic API key (falls back to $ANTHROPIC_API_KEY)")
	analyzeCmd.Flags().IntVar(&analyzeSeason, "season", 0, "season year (default: latest)")
	analyzeCmd.Flags().StringVarP(&analyzePosition, "position", "p", "QB", "position: QB, RB, WR or TE")
	analyzeCmd.Flags().StringVarP(&analyzeWeeks, "weeks", "w", "", "week (7) or inclusive range (3-9); default all weeks")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	question := args[0]

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	season, pos, weeks, err := selection(e.svc, analyzeSeason, analyzePosition, analyzeWeeks)
	if err != nil {
		return err
	}
	players, err := parsePlayerKeys(args[1:])
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
	return askAnalyst(cmd.Context(), os.Stdout, analyzeAPIKey, analyzeModel, res, question)
}

// positionNotes are appended to the system prompt for the compared position.
var positionNotes = map[model.Position]string{
	model.PositionQB: "Passer plays are the plays where the quarterback is credited as passer. Completion % is completions over those plays.",
	model.PositionRB: "Rushing and receiving are measured separately: rush metrics are per carry, receiving metrics per target. A side with no plays reports zeros.",
	model.PositionWR: "Receiver metrics are per target; Catch % is receptions over targets.",
	model.PositionTE: "Receiver metrics are per target; Catch % is receptions over targets. Tight ends see fewer targets, so mind sample size.",
}

// askAnalyst streams the model's answer to question, grounded in res, to w.
func askAnalyst(ctx context.Context, w io.Writer, apiKey, modelID string, res *dashboard.Result, question string) error {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("no API key: set ANTHROPIC_API_KEY or use --api-key")
	}

	data, err := buildComparisonContext(res)
	if err != nil {
		return fmt.Errorf("build context: %w", err)
	}
	req := res.Request
	userMsg := fmt.Sprintf("%s comparison, %d season, %s.\n\nDATA:\n%s\n\nQUESTION: %s",
		req.Position, req.Season, req.Weeks, data, question)

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	stream := client.Messages.NewStreaming(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(modelID),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: analyzeSystemPrompt},
			{Text: positionNotes[req.Position]},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userMsg)),
		},
	})

	fmt.Fprintf(w, "\n─── %s analysis: %s ───\n", req.Position, playerList(res))
	for stream.Next() {
		evt := stream.Current()
		if evt.Type != "content_block_delta" {
			continue
		}
		if delta := evt.AsContentBlockDelta(); delta.Delta.Type == "text_delta" {
			fmt.Fprint(w, delta.Delta.AsTextDelta().Text)
		}
	}
	fmt.Fprintln(w, "\n────────────────────────────────────────")

	if err := stream.Err(); err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("API authentication failed: check your API key")
		}
		return fmt.Errorf("analysis stream: %w", err)
	}
	return nil
}

func playerList(res *dashboard.Result) string {
	names := make([]string, len(res.Table.Rows))
	for i, row := range res.Table.Rows {
		names[i] = row.Player
	}
	return strings.Join(names, " vs ")
}

// buildComparisonContext renders the rounded table as JSON, with null for
// no-data values.
func buildComparisonContext(res *dashboard.Result) (string, error) {
	t := res.Table.Rounded()

	type playerCtx struct {
		Player  string              `json:"player"`
		Team    string              `json:"team"`
		Metrics map[string]*float64 `json:"metrics"`
	}
	ctx := struct {
		Season        int                `json:"season"`
		Position      model.Position     `json:"position"`
		Weeks         string             `json:"weeks"`
		Definitions   map[string]string  `json:"metric_definitions"`
		LeagueAverage map[string]float64 `json:"league_average,omitempty"`
		Players       []playerCtx        `json:"players"`
		NoPlays       []string           `json:"selected_without_plays,omitempty"`
	}{
		Season:        t.Season,
		Position:      t.Position,
		Weeks:         res.Request.Weeks.String(),
		Definitions:   make(map[string]string),
		LeagueAverage: make(map[string]float64),
	}
	for _, m := range t.Columns {
		ctx.Definitions[string(m)] = m.Describe()
		if v, ok := chart.ReferenceValue(t.Position, m); ok {
			ctx.LeagueAverage[string(m)] = v
		}
	}
	for _, row := range t.Rows {
		p := playerCtx{Player: row.Player, Team: row.Team, Metrics: make(map[string]*float64)}
		for i, v := range row.Values {
			if model.IsNoData(v) {
				p.Metrics[string(t.Columns[i])] = nil
				continue
			}
			p.Metrics[string(t.Columns[i])] = &v
		}
		ctx.Players = append(ctx.Players, p)
	}
	for _, k := range res.Skipped {
		ctx.NoPlays = append(ctx.NoPlays, k.Label())
	}

	b, err := json.MarshalIndent(ctx, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
