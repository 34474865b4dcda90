package dashboard

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/pable/go-epa-compare/internal/cache"
	"github.com/pable/go-epa-compare/internal/compare"
	"github.com/pable/go-epa-compare/internal/filter"
	"github.com/pable/go-epa-compare/internal/model"
)

type stubLoader struct {
	data *cache.SeasonData
	err  error
}

func (s *stubLoader) Season(_ context.Context, season int) (*cache.SeasonData, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.data, nil
}

// qbFixture builds a 2023 season with two quarterbacks throwing n passes
// each across weeks 1-17, and one running back.
func qbFixture(n int) *cache.SeasonData {
	var plays []model.Play
	for i := 0; i < n; i++ {
		week := i%17 + 1
		complete := float64(i % 2)
		plays = append(plays,
			model.Play{Season: 2023, Week: week, PosTeam: "KC", PasserName: "P.Mahomes", PasserID: "00-0033873",
				ReceiverName: "T.Kelce", ReceiverID: "00-0030506",
				EPA: 0.2, Success: complete, CompletePass: complete, YardsGained: 8 * complete,
				YardsAfterCatch: 4 * complete, AirYards: 7, PassTouchdown: 0, RushTouchdown: 0,
				Interception: 0, Sack: 0, FirstDown: complete, CPOE: 1.5},
			model.Play{Season: 2023, Week: week, PosTeam: "BUF", PasserName: "J.Allen", PasserID: "00-0034857",
				ReceiverName: "S.Diggs", ReceiverID: "00-0031588",
				EPA: 0.1, Success: 1, CompletePass: 1, YardsGained: 10,
				YardsAfterCatch: 5, AirYards: 9, PassTouchdown: float64(i % 10 / 9), RushTouchdown: 0,
				Interception: 0, Sack: 0, FirstDown: 1, CPOE: math.NaN()},
		)
	}
	plays = append(plays, model.Play{Season: 2023, Week: 3, PosTeam: "KC", RusherName: "I.Pacheco",
		RusherID: "00-0037197", EPA: -0.1, Success: 0, YardsGained: 3, RushTouchdown: 0,
		YardsAfterCatch: math.NaN(), AirYards: math.NaN(), CPOE: math.NaN()})

	return &cache.SeasonData{
		Season: 2023,
		Plays:  plays,
		Rosters: []model.RosterEntry{
			{Season: 2023, PlayerID: "00-0033873", FirstName: "Patrick", LastName: "Mahomes", Team: "KC", Position: "QB", HeadshotURL: "https://x/mahomes.png"},
			{Season: 2023, PlayerID: "00-0034857", FirstName: "Joshua", FootballName: "Josh", LastName: "Allen", Team: "BUF", Position: "QB"},
			{Season: 2023, PlayerID: "00-0030506", FirstName: "Travis", LastName: "Kelce", Team: "KC", Position: "TE"},
		},
	}
}

func newService(data *cache.SeasonData) *Service {
	s := New(&stubLoader{data: data})
	s.now = func() time.Time { return time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC) }
	return s
}

var (
	mahomes = model.PlayerKey{Name: "P.Mahomes", Team: "KC"}
	allen   = model.PlayerKey{Name: "J.Allen", Team: "BUF"}
)

func TestRun_EndToEndQB(t *testing.T) {
	s := newService(qbFixture(60))
	res, err := s.Run(context.Background(), Request{
		Season:   2023,
		Position: model.PositionQB,
		Players:  []model.PlayerKey{mahomes, allen},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Table.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(res.Table.Rows))
	}
	if len(res.Table.Columns) != 10 {
		t.Fatalf("expected 10 metric columns, got %d", len(res.Table.Columns))
	}
	if res.Table.Rows[0].Player != "Mahomes, Patrick (KC)" || res.Table.Rows[1].Player != "Allen, Josh (BUF)" {
		t.Errorf("unexpected display names: %q, %q", res.Table.Rows[0].Player, res.Table.Rows[1].Player)
	}
	if res.Players[1].PhotoURL == "" {
		t.Error("missing headshot must fall back to the placeholder")
	}

	plays, _ := res.Table.Column(model.MetricPlays)
	if plays[0] < 50 || plays[1] < 50 {
		t.Errorf("expected at least 50 plays each, got %v", plays)
	}
	cpoe, _ := res.Table.Column(model.MetricCPOE)
	if !model.IsNoData(cpoe[1]) {
		t.Errorf("all-NaN CPOE should be no data, got %v", cpoe[1])
	}
	if len(res.Charts) != 4 {
		t.Errorf("expected 4 QB charts, got %d", len(res.Charts))
	}

	var buf bytes.Buffer
	if err := res.Table.Rounded().WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	back, err := compare.ReadCSV(&buf, model.PositionQB, 2023)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(back.Rows) != 2 || len(back.Columns) != 10 {
		t.Errorf("CSV round trip: %d rows, %d columns", len(back.Rows), len(back.Columns))
	}
}

func TestRun_SkipsPlayersWithoutPlays(t *testing.T) {
	s := newService(qbFixture(60))
	w, _ := filter.SingleWeek(3)
	res, err := s.Run(context.Background(), Request{
		Season:   2023,
		Position: model.PositionQB,
		Players:  []model.PlayerKey{mahomes, {Name: "P.Mahomes", Team: "BUF"}},
		Weeks:    w,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Table.Rows) != 1 {
		t.Errorf("expected 1 row, got %d", len(res.Table.Rows))
	}
	if len(res.Skipped) != 1 || res.Skipped[0].Team != "BUF" {
		t.Errorf("unexpected skipped list %v", res.Skipped)
	}
}

func TestRun_Notices(t *testing.T) {
	s := newService(qbFixture(60))
	ctx := context.Background()

	_, err := s.Run(ctx, Request{Season: 2023, Position: model.PositionQB, Players: []model.PlayerKey{mahomes}})
	if !IsNotice(err) {
		t.Errorf("one player: expected a notice, got %v", err)
	}

	_, err = s.Run(ctx, Request{Season: 2023, Position: model.PositionQB,
		Players: []model.PlayerKey{{Name: "X", Team: "NYJ"}, {Name: "Y", Team: "NYJ"}}})
	if !IsNotice(err) {
		t.Errorf("no stats: expected a notice, got %v", err)
	}

	_, err = s.Run(ctx, Request{Season: 2023, Position: model.PositionWR, Players: []model.PlayerKey{mahomes, allen}})
	if !IsNotice(err) {
		t.Errorf("no WR candidates: expected a notice, got %v", err)
	}
}

func TestRun_InvalidInput(t *testing.T) {
	s := newService(qbFixture(10))
	ctx := context.Background()

	if _, err := s.Run(ctx, Request{Season: 2019, Position: model.PositionQB, Players: []model.PlayerKey{mahomes, allen}}); err == nil || IsNotice(err) {
		t.Errorf("2019: expected a validation error, got %v", err)
	}
	six := make([]model.PlayerKey, 6)
	if _, err := s.Run(ctx, Request{Season: 2023, Position: model.PositionQB, Players: six}); !errors.Is(err, compare.ErrTooManyPlayers) {
		t.Errorf("six players: got %v", err)
	}
}

func TestRun_ProviderFailure(t *testing.T) {
	boom := errors.New("HTTP 503")
	s := New(&stubLoader{err: boom})
	s.now = func() time.Time { return time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC) }
	_, err := s.Run(context.Background(), Request{Season: 2023, Position: model.PositionQB, Players: []model.PlayerKey{mahomes, allen}})
	if !errors.Is(err, boom) || IsNotice(err) {
		t.Errorf("expected the provider error, got %v", err)
	}
}

func TestCandidates(t *testing.T) {
	s := newService(qbFixture(5))
	keys, err := s.Candidates(context.Background(), 2023, model.PositionQB, filter.AllWeeks())
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	if len(keys) != 2 || keys[0] != allen || keys[1] != mahomes {
		t.Errorf("unexpected candidates %v", keys)
	}
	tes, err := s.Candidates(context.Background(), 2023, model.PositionTE, filter.AllWeeks())
	if err != nil || len(tes) != 1 || tes[0].Name != "T.Kelce" {
		t.Errorf("TE candidates: %v %v", tes, err)
	}
	if _, err := s.Candidates(context.Background(), 2023, model.PositionWR, filter.AllWeeks()); !IsNotice(err) {
		t.Errorf("expected a notice for no WRs, got %v", err)
	}
}

func TestSeasons(t *testing.T) {
	got := Seasons(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if len(got) != 7 || got[0] != 2020 || got[6] != 2026 {
		t.Errorf("unexpected seasons %v", got)
	}
}
