// Package identity resolves a play-level player key to a roster identity.
package identity

import (
	"fmt"
	"strings"

	"github.com/pable/go-epa-compare/internal/model"
)

// DefaultPhotoURL is shown when a player has no roster headshot.
const DefaultPhotoURL = "https://a.espncdn.com/combiner/i?img=/i/teamlogos/leagues/500/nfl.png&w=150&h=150"

// Identity is the resolved display data for one player key.
type Identity struct {
	Key         model.PlayerKey
	PlayerID    string // empty when unresolved
	DisplayName string
	PhotoURL    string
	// Resolved is true when a roster row was found for the player id.
	Resolved bool
}

// Team is the team the player is keyed under in the play data.
func (id Identity) Team() string { return id.Key.Team }

// Resolver joins play-level keys to roster rows by player id.
type Resolver struct {
	byID map[string]model.RosterEntry
}

// NewResolver indexes rosters by player id. When an id appears more than
// once the first row wins.
func NewResolver(rosters []model.RosterEntry) *Resolver {
	byID := make(map[string]model.RosterEntry, len(rosters))
	for _, r := range rosters {
		if r.PlayerID == "" {
			continue
		}
		if _, ok := byID[r.PlayerID]; !ok {
			byID[r.PlayerID] = r
		}
	}
	return &Resolver{byID: byID}
}

// Resolve never fails: a missing id or roster row degrades to the
// "Name (TEAM)" fallback and the placeholder photo.
//
// The id comes from the first play, in input order, where key took the
// role(s) of category c. For backs the rusher id is preferred and the
// receiver id is used when the rusher side is absent.
func (r *Resolver) Resolve(key model.PlayerKey, plays []model.Play, c model.Category) Identity {
	out := Identity{
		Key:         key,
		DisplayName: key.Label(),
		PhotoURL:    DefaultPhotoURL,
	}

	pid := PlayerID(key, plays, c)
	if pid == "" {
		return out
	}
	out.PlayerID = pid

	entry, ok := r.byID[pid]
	if !ok {
		return out
	}
	if name, ok := displayName(entry, key.Team); ok {
		out.DisplayName = name
		out.Resolved = true
	}
	if url := strings.TrimSpace(entry.HeadshotURL); url != "" {
		out.PhotoURL = url
	}
	return out
}

// PlayerID finds key's id in plays following the first-match policy.
func PlayerID(key model.PlayerKey, plays []model.Play, c model.Category) string {
	for i := range plays {
		p := &plays[i]
		switch c {
		case model.CategoryPasser:
			if p.Involves(model.RolePasser, key) {
				return p.PasserID
			}
		case model.CategoryRushReceive:
			rusher := p.Involves(model.RoleRusher, key)
			receiver := p.Involves(model.RoleReceiver, key)
			if !rusher && !receiver {
				continue
			}
			if rusher && p.RusherID != "" {
				return p.RusherID
			}
			if receiver {
				return p.ReceiverID
			}
			return ""
		default:
			if p.Involves(model.RoleReceiver, key) {
				return p.ReceiverID
			}
		}
	}
	return ""
}

// displayName formats "Last, Preferred (TEAM)". The preferred first name is
// the roster football name when set, otherwise the first name.
func displayName(e model.RosterEntry, team string) (string, bool) {
	last := strings.TrimSpace(e.LastName)
	first := strings.TrimSpace(e.FootballName)
	if first == "" {
		first = strings.TrimSpace(e.FirstName)
	}
	if last == "" || first == "" {
		return "", false
	}
	return fmt.Sprintf("%s, %s (%s)", last, first, team), true
}
