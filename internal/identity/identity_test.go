package identity

import (
	"testing"

	"github.com/pable/go-epa-compare/internal/model"
)

var (
	mahomes = model.PlayerKey{Name: "P.Mahomes", Team: "KC"}
	pacheco = model.PlayerKey{Name: "I.Pacheco", Team: "KC"}
	kelce   = model.PlayerKey{Name: "T.Kelce", Team: "KC"}
)

func rosters() []model.RosterEntry {
	return []model.RosterEntry{
		{PlayerID: "00-0033873", FirstName: "Patrick", LastName: "Mahomes", Team: "KC", Position: "QB",
			HeadshotURL: "https://static.www.nfl.com/mahomes.png"},
		{PlayerID: "00-0037197", FirstName: "Isiah", LastName: "Pacheco", FootballName: "Isiah", Team: "KC", Position: "RB"},
		{PlayerID: "00-0030506", FirstName: "Travis", LastName: "Kelce", FootballName: "  ", Team: "KC", Position: "TE",
			HeadshotURL: "https://static.www.nfl.com/kelce.png"},
		{PlayerID: "00-0036000", FirstName: "Gardner", LastName: "Minshew", FootballName: "Gardner", Team: "IND", Position: "QB"},
	}
}

func TestResolve_PasserWithHeadshot(t *testing.T) {
	plays := []model.Play{
		{PosTeam: "KC", PasserName: "P.Mahomes", PasserID: "00-0033873"},
	}
	r := NewResolver(rosters())
	got := r.Resolve(mahomes, plays, model.CategoryPasser)

	if got.DisplayName != "Mahomes, Patrick (KC)" {
		t.Errorf("display name: got %q", got.DisplayName)
	}
	if got.PhotoURL != "https://static.www.nfl.com/mahomes.png" {
		t.Errorf("photo: got %q", got.PhotoURL)
	}
	if !got.Resolved || got.PlayerID != "00-0033873" {
		t.Errorf("expected resolved id, got %+v", got)
	}
}

// TestResolve_FootballNamePreferred: a non-blank football name wins over the
// first name; a blank one falls back to it.
func TestResolve_FootballNamePreferred(t *testing.T) {
	entries := []model.RosterEntry{
		{PlayerID: "00-1", FirstName: "Gardner", LastName: "Minshew", FootballName: "Gard"},
		{PlayerID: "00-2", FirstName: "Travis", LastName: "Kelce", FootballName: " "},
	}
	r := NewResolver(entries)

	minshew := model.PlayerKey{Name: "G.Minshew", Team: "IND"}
	plays := []model.Play{
		{PosTeam: "IND", PasserName: "G.Minshew", PasserID: "00-1"},
		{PosTeam: "KC", ReceiverName: "T.Kelce", ReceiverID: "00-2"},
	}
	if got := r.Resolve(minshew, plays, model.CategoryPasser).DisplayName; got != "Minshew, Gard (IND)" {
		t.Errorf("football name: got %q", got)
	}
	if got := r.Resolve(kelce, plays, model.CategoryReceiver).DisplayName; got != "Kelce, Travis (KC)" {
		t.Errorf("blank football name: got %q", got)
	}
}

func TestResolve_NoPlayIDFallsBack(t *testing.T) {
	plays := []model.Play{
		{PosTeam: "KC", PasserName: "P.Mahomes", PasserID: ""},
	}
	got := NewResolver(rosters()).Resolve(mahomes, plays, model.CategoryPasser)
	if got.DisplayName != "P.Mahomes (KC)" {
		t.Errorf("fallback name: got %q", got.DisplayName)
	}
	if got.PhotoURL != DefaultPhotoURL {
		t.Errorf("fallback photo: got %q", got.PhotoURL)
	}
	if got.Resolved {
		t.Error("expected unresolved")
	}
}

func TestResolve_NoRosterRowFallsBack(t *testing.T) {
	plays := []model.Play{
		{PosTeam: "KC", PasserName: "P.Mahomes", PasserID: "00-9999999"},
	}
	got := NewResolver(nil).Resolve(mahomes, plays, model.CategoryPasser)
	if got.DisplayName != "P.Mahomes (KC)" || got.PhotoURL != DefaultPhotoURL {
		t.Errorf("expected fallback, got %+v", got)
	}
	if got.PlayerID != "00-9999999" {
		t.Errorf("expected the play id to be kept, got %q", got.PlayerID)
	}
}

func TestResolve_NoMatchingPlays(t *testing.T) {
	got := NewResolver(rosters()).Resolve(mahomes, nil, model.CategoryPasser)
	if got.DisplayName != mahomes.Label() || got.PhotoURL != DefaultPhotoURL {
		t.Errorf("expected fallback, got %+v", got)
	}
}

// TestResolve_TeamMustMatch: a same-named player on another team does not
// supply the id.
func TestResolve_TeamMustMatch(t *testing.T) {
	plays := []model.Play{
		{PosTeam: "BUF", PasserName: "P.Mahomes", PasserID: "00-0036000"},
		{PosTeam: "KC", PasserName: "P.Mahomes", PasserID: "00-0033873"},
	}
	got := NewResolver(rosters()).Resolve(mahomes, plays, model.CategoryPasser)
	if got.PlayerID != "00-0033873" {
		t.Errorf("expected KC id, got %q", got.PlayerID)
	}
}

// TestResolve_FirstMatchWins: with conflicting ids the first play in input
// order decides.
func TestResolve_FirstMatchWins(t *testing.T) {
	plays := []model.Play{
		{PosTeam: "KC", PasserName: "P.Mahomes", PasserID: "00-0033873"},
		{PosTeam: "KC", PasserName: "P.Mahomes", PasserID: "00-0036000"},
	}
	got := NewResolver(rosters()).Resolve(mahomes, plays, model.CategoryPasser)
	if got.DisplayName != "Mahomes, Patrick (KC)" {
		t.Errorf("got %q", got.DisplayName)
	}
}

func TestResolve_RushReceivePrefersRusherID(t *testing.T) {
	r := NewResolver(rosters())

	// First matching play is a target: the receiver id is used.
	target := []model.Play{
		{PosTeam: "KC", PasserName: "P.Mahomes", ReceiverName: "I.Pacheco", ReceiverID: "00-0037197"},
		{PosTeam: "KC", RusherName: "I.Pacheco", RusherID: "00-0036000"},
	}
	if got := r.Resolve(pacheco, target, model.CategoryRushReceive); got.PlayerID != "00-0037197" {
		t.Errorf("target first: got %q", got.PlayerID)
	}

	// Rusher id present: preferred.
	carry := []model.Play{
		{PosTeam: "KC", RusherName: "I.Pacheco", RusherID: "00-0037197"},
	}
	got := r.Resolve(pacheco, carry, model.CategoryRushReceive)
	if got.PlayerID != "00-0037197" || got.DisplayName != "Pacheco, Isiah (KC)" {
		t.Errorf("carry: got %+v", got)
	}

	// Rusher matched but id missing, and not the receiver: unresolved.
	noID := []model.Play{
		{PosTeam: "KC", RusherName: "I.Pacheco"},
	}
	if got := r.Resolve(pacheco, noID, model.CategoryRushReceive); got.Resolved || got.PlayerID != "" {
		t.Errorf("missing rusher id: got %+v", got)
	}
}

func TestResolve_Idempotent(t *testing.T) {
	plays := []model.Play{
		{PosTeam: "KC", ReceiverName: "T.Kelce", ReceiverID: "00-0030506"},
	}
	r := NewResolver(rosters())
	a := r.Resolve(kelce, plays, model.CategoryReceiver)
	b := r.Resolve(kelce, plays, model.CategoryReceiver)
	if a != b {
		t.Errorf("resolve not idempotent: %+v vs %+v", a, b)
	}
	if a.PhotoURL != "https://static.www.nfl.com/kelce.png" {
		t.Errorf("photo: got %q", a.PhotoURL)
	}
}

func TestNewResolver_FirstRowPerIDWins(t *testing.T) {
	entries := []model.RosterEntry{
		{PlayerID: "00-1", FirstName: "Josh", LastName: "Allen", Team: "BUF"},
		{PlayerID: "00-1", FirstName: "Joshua", LastName: "Allen", Team: "BUF"},
		{PlayerID: "", FirstName: "Nobody", LastName: "Here"},
	}
	r := NewResolver(entries)
	plays := []model.Play{{PosTeam: "BUF", PasserName: "J.Allen", PasserID: "00-1"}}
	got := r.Resolve(model.PlayerKey{Name: "J.Allen", Team: "BUF"}, plays, model.CategoryPasser)
	if got.DisplayName != "Allen, Josh (BUF)" {
		t.Errorf("got %q", got.DisplayName)
	}
}
