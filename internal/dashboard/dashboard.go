// Package dashboard runs one comparison pass: load the season, filter weeks,
// resolve identities, aggregate, build the table and prepare charts.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pable/go-epa-compare/internal/aggregator"
	"github.com/pable/go-epa-compare/internal/cache"
	"github.com/pable/go-epa-compare/internal/chart"
	"github.com/pable/go-epa-compare/internal/compare"
	"github.com/pable/go-epa-compare/internal/filter"
	"github.com/pable/go-epa-compare/internal/identity"
	"github.com/pable/go-epa-compare/internal/model"
)

const (
	// FirstSeason is the earliest selectable season.
	FirstSeason = 2020
	// MinPlayers is the smallest selection that is compared.
	MinPlayers = 2
)

// Notice is an informational outcome that ends a pass without failing it.
type Notice struct {
	Msg string
}

func (n *Notice) Error() string { return n.Msg }

// IsNotice reports whether err is, or wraps, a Notice.
func IsNotice(err error) bool {
	var n *Notice
	return errors.As(err, &n)
}

func notice(format string, args ...any) error {
	return &Notice{Msg: fmt.Sprintf(format, args...)}
}

// SeasonLoader returns cached season data.
type SeasonLoader interface {
	Season(ctx context.Context, season int) (*cache.SeasonData, error)
}

// Request is one selection.
type Request struct {
	Season   int
	Position model.Position
	Players  []model.PlayerKey
	Weeks    filter.Weeks
}

// Result is everything a presentation surface renders for one pass.
type Result struct {
	Request Request
	// Players are the resolved identities of the players that produced a
	// record, in table order.
	Players []identity.Identity
	// Skipped lists selected players with no plays in the window.
	Skipped []model.PlayerKey
	Table   *compare.Table
	Charts  []*chart.Chart
}

// Service runs comparison passes over a SeasonLoader.
type Service struct {
	loader SeasonLoader
	now    func() time.Time
}

// New creates a Service.
func New(loader SeasonLoader) *Service {
	return &Service{loader: loader, now: time.Now}
}

// Seasons returns the selectable seasons, oldest first.
func (s *Service) Seasons() []int {
	return Seasons(s.now())
}

// LatestSeason is the default selection.
func (s *Service) LatestSeason() int {
	return s.now().Year()
}

// Seasons returns FirstSeason through now's year.
func Seasons(now time.Time) []int {
	var out []int
	for y := FirstSeason; y <= now.Year(); y++ {
		out = append(out, y)
	}
	return out
}

// ValidateSeason rejects seasons outside FirstSeason..current year.
func (s *Service) ValidateSeason(season int) error {
	if last := s.now().Year(); season < FirstSeason || season > last {
		return fmt.Errorf("season %d out of range %d-%d", season, FirstSeason, last)
	}
	return nil
}

// Candidates lists the players selectable for the season, position and
// week window. An empty list is reported as a Notice.
func (s *Service) Candidates(ctx context.Context, season int, pos model.Position, weeks filter.Weeks) ([]model.PlayerKey, error) {
	if err := s.ValidateSeason(season); err != nil {
		return nil, err
	}
	data, err := s.loader.Season(ctx, season)
	if err != nil {
		return nil, err
	}
	plays := filter.Apply(data.Plays, season, weeks)
	keys := aggregator.Candidates(plays, data.Rosters, pos)
	if len(keys) == 0 {
		return nil, notice("No %s players found for %d (%s)", pos, season, weeks)
	}
	return keys, nil
}

// Run performs one comparison pass.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	if err := s.ValidateSeason(req.Season); err != nil {
		return nil, err
	}
	if _, err := model.ParsePosition(string(req.Position)); err != nil {
		return nil, err
	}
	if len(req.Players) > compare.MaxPlayers {
		return nil, compare.ErrTooManyPlayers
	}
	if len(req.Players) < MinPlayers {
		return nil, notice("Please select at least %d players to compare", MinPlayers)
	}

	data, err := s.loader.Season(ctx, req.Season)
	if err != nil {
		return nil, err
	}
	plays := filter.Apply(data.Plays, req.Season, req.Weeks)
	if len(aggregator.Candidates(plays, data.Rosters, req.Position)) == 0 {
		return nil, notice("No %s players found for %d (%s)", req.Position, req.Season, req.Weeks)
	}

	cat := req.Position.Category()
	resolver := identity.NewResolver(data.Rosters)
	res := &Result{Request: req}
	var entries []compare.Entry
	for _, key := range req.Players {
		line, ok := aggregator.ForCategory(cat, plays, key)
		if !ok {
			res.Skipped = append(res.Skipped, key)
			continue
		}
		id := resolver.Resolve(key, plays, cat)
		res.Players = append(res.Players, id)
		entries = append(entries, compare.Entry{Identity: id, Line: line})
	}
	if len(entries) == 0 {
		return nil, notice("No stats found for selected players")
	}

	table, err := compare.Build(req.Position, req.Season, entries)
	if err != nil {
		return nil, err
	}
	res.Table = table
	res.Charts = chart.PrepareAll(table)
	return res, nil
}
