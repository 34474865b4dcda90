package aggregator

import (
	"sort"

	"github.com/pable/go-epa-compare/internal/model"
)

// Candidates returns the players selectable for pos, sorted by name then team.
//
// QB: every passer. RB: every rusher, plus receivers whose id belongs to a
// roster RB. WR/TE: receivers whose id belongs to a roster player at pos.
func Candidates(plays []model.Play, rosters []model.RosterEntry, pos model.Position) []model.PlayerKey {
	rosterPos := make(map[string]string, len(rosters))
	for _, r := range rosters {
		if r.PlayerID == "" {
			continue
		}
		if _, seen := rosterPos[r.PlayerID]; !seen {
			rosterPos[r.PlayerID] = r.Position
		}
	}
	atPos := func(id string) bool {
		return id != "" && rosterPos[id] == string(pos)
	}

	seen := make(map[model.PlayerKey]struct{})
	add := func(name, team string) {
		if name == "" || team == "" {
			return
		}
		seen[model.PlayerKey{Name: name, Team: team}] = struct{}{}
	}

	for i := range plays {
		p := &plays[i]
		switch pos {
		case model.PositionQB:
			add(p.PasserName, p.PosTeam)
		case model.PositionRB:
			add(p.RusherName, p.PosTeam)
			if atPos(p.ReceiverID) {
				add(p.ReceiverName, p.PosTeam)
			}
		default:
			if atPos(p.ReceiverID) {
				add(p.ReceiverName, p.PosTeam)
			}
		}
	}

	out := make([]model.PlayerKey, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Team < out[j].Team
	})
	return out
}
