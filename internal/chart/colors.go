package chart

import (
	"sort"
	"strings"
)

// DefaultColor is used for players whose team has no entry.
const DefaultColor = "#1E88E5"

var teamColors = map[string]string{
	"ARI": "#97233F", "ATL": "#A71930", "BAL": "#241773", "BUF": "#00338D",
	"CAR": "#0085CA", "CHI": "#C83803", "CIN": "#FB4F14", "CLE": "#311D00",
	"DAL": "#041E42", "DEN": "#FB4F14", "DET": "#0076B6", "GB": "#203731",
	"HOU": "#03202F", "IND": "#002C5F", "JAX": "#006778", "KC": "#E31837",
	"LAC": "#0080C6", "LAR": "#003594", "LV": "#000000", "MIA": "#008E97",
	"MIN": "#4F2683", "NE": "#002244", "NO": "#D3BC8D", "NYG": "#0B2265",
	"NYJ": "#125740", "PHI": "#004C54", "PIT": "#FFB612", "SEA": "#002244",
	"SF": "#AA0000", "TB": "#D50A0A", "TEN": "#0C2340", "WAS": "#5A1414",
}

// TeamColor returns the hex color for team, or DefaultColor.
func TeamColor(team string) string {
	if c, ok := teamColors[strings.ToUpper(strings.TrimSpace(team))]; ok {
		return c
	}
	return DefaultColor
}

// Teams returns the team codes with a color entry, sorted.
func Teams() []string {
	out := make([]string, 0, len(teamColors))
	for t := range teamColors {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
