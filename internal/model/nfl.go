package model

import (
	"fmt"
	"math"
	"strings"
)

// Position is one of the four selectable position categories.
type Position string

const (
	PositionQB Position = "QB"
	PositionRB Position = "RB"
	PositionWR Position = "WR"
	PositionTE Position = "TE"
)

// Positions lists the selectable positions in display order.
var Positions = []Position{PositionQB, PositionRB, PositionWR, PositionTE}

// ParsePosition accepts a position code case-insensitively.
func ParsePosition(s string) (Position, error) {
	p := Position(strings.ToUpper(strings.TrimSpace(s)))
	switch p {
	case PositionQB, PositionRB, PositionWR, PositionTE:
		return p, nil
	}
	return "", fmt.Errorf("unknown position %q (want QB, RB, WR or TE)", s)
}

// Category is the aggregation variant a position uses.
type Category int

const (
	CategoryPasser Category = iota
	CategoryRushReceive
	CategoryReceiver
)

func (c Category) String() string {
	switch c {
	case CategoryPasser:
		return "passer"
	case CategoryRushReceive:
		return "rusher/receiver"
	case CategoryReceiver:
		return "receiver"
	default:
		return "?"
	}
}

// Category maps a position to its aggregation variant.
func (p Position) Category() Category {
	switch p {
	case PositionQB:
		return CategoryPasser
	case PositionRB:
		return CategoryRushReceive
	default:
		return CategoryReceiver
	}
}

// Role is the part a player takes in a single play.
type Role int

const (
	RolePasser Role = iota
	RoleRusher
	RoleReceiver
)

// PlayerKey identifies a player within one season of play-by-play data.
// The play-level data carries only an abbreviated name, so the team is
// needed to tell same-named players apart.
type PlayerKey struct {
	Name string
	Team string
}

func (k PlayerKey) String() string {
	return k.Name + "@" + k.Team
}

// Label is the fallback display form "Name (TEAM)".
func (k PlayerKey) Label() string {
	return fmt.Sprintf("%s (%s)", k.Name, k.Team)
}

// ParsePlayerKey parses "NAME@TEAM". The split happens at the last '@' and
// the team must be a 2–3 letter code, so names containing '@' survive.
func ParsePlayerKey(s string) (PlayerKey, error) {
	i := strings.LastIndex(s, "@")
	if i <= 0 || i == len(s)-1 {
		return PlayerKey{}, fmt.Errorf("invalid player %q: want NAME@TEAM (e.g. P.Mahomes@KC)", s)
	}
	name := strings.TrimSpace(s[:i])
	team := strings.ToUpper(strings.TrimSpace(s[i+1:]))
	if name == "" || !isTeamCode(team) {
		return PlayerKey{}, fmt.Errorf("invalid player %q: team must be a 2-3 letter code", s)
	}
	return PlayerKey{Name: name, Team: team}, nil
}

func isTeamCode(s string) bool {
	if len(s) < 2 || len(s) > 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// Play is one row of play-by-play data. Numeric fields the provider left
// blank are NaN; flag fields hold 0 or 1.
type Play struct {
	Season  int
	Week    int
	PosTeam string

	PasserName   string
	PasserID     string
	RusherName   string
	RusherID     string
	ReceiverName string
	ReceiverID   string

	EPA             float64
	Success         float64
	CompletePass    float64
	YardsGained     float64
	YardsAfterCatch float64
	AirYards        float64
	PassTouchdown   float64
	RushTouchdown   float64
	Interception    float64
	Sack            float64
	FirstDown       float64
	CPOE            float64
}

// Name returns the abbreviated player name recorded for role.
func (p *Play) Name(role Role) string {
	switch role {
	case RolePasser:
		return p.PasserName
	case RoleRusher:
		return p.RusherName
	default:
		return p.ReceiverName
	}
}

// PlayerID returns the player id recorded for role.
func (p *Play) PlayerID(role Role) string {
	switch role {
	case RolePasser:
		return p.PasserID
	case RoleRusher:
		return p.RusherID
	default:
		return p.ReceiverID
	}
}

// Involves reports whether key took the given role in this play.
func (p *Play) Involves(role Role, key PlayerKey) bool {
	return p.PosTeam == key.Team && p.Name(role) == key.Name
}

// RosterEntry is one row of a seasonal roster.
type RosterEntry struct {
	Season       int
	PlayerID     string
	FirstName    string
	LastName     string
	FootballName string
	Team         string
	Position     string
	HeadshotURL  string
}

// NoData is the sentinel stored for a metric whose inputs were empty.
func NoData() float64 { return math.NaN() }

// IsNoData reports whether v is the no-data sentinel.
func IsNoData(v float64) bool { return math.IsNaN(v) }

// StatLine holds the metrics computed for one player.
type StatLine struct {
	Key     PlayerKey
	Metrics map[Metric]float64
}

// Value returns the metric value, or NoData if it was not computed.
func (s StatLine) Value(m Metric) float64 {
	v, ok := s.Metrics[m]
	if !ok {
		return NoData()
	}
	return v
}
