// Package cache loads season data once and reuses it for a fixed lifetime.
// Lookups go in-process map, then the persistent Store, then the Source.
package cache

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pable/go-epa-compare/internal/model"
)

// DefaultTTL is how long a loaded season is reused.
const DefaultTTL = 24 * time.Hour

// Source downloads season data from the provider.
type Source interface {
	PlayByPlay(ctx context.Context, season int) ([]model.Play, error)
	Rosters(ctx context.Context, season int) ([]model.RosterEntry, error)
}

// Store persists season data between processes.
type Store interface {
	// Load returns the stored season if it was fetched after notBefore.
	Load(ctx context.Context, season int, notBefore time.Time) (*SeasonData, bool, error)
	Save(ctx context.Context, data *SeasonData) error
}

// SeasonData is one season's plays and rosters. It is never mutated after
// the loader publishes it.
type SeasonData struct {
	Season    int
	Plays     []model.Play
	Rosters   []model.RosterEntry
	FetchedAt time.Time
}

// Loader serves SeasonData with a TTL. It is safe for concurrent use. The
// mutex guards only the in-process map; store reads and downloads run
// outside it and are shared between concurrent callers of the same season.
type Loader struct {
	src   Source
	store Store
	ttl   time.Duration

	// now is replaceable in tests.
	now func() time.Time
	// logf reports store failures, which never fail a load.
	logf func(format string, args ...any)

	mu      sync.Mutex
	seasons map[int]*SeasonData

	group singleflight.Group
}

// NewLoader returns a loader over src. store may be nil. A non-positive ttl
// means DefaultTTL.
func NewLoader(src Source, store Store, ttl time.Duration) *Loader {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Loader{
		src:     src,
		store:   store,
		ttl:     ttl,
		now:     time.Now,
		logf:    log.Printf,
		seasons: make(map[int]*SeasonData),
	}
}

// TTL returns the configured lifetime.
func (l *Loader) TTL() time.Duration { return l.ttl }

// Season returns the data for season, loading it if it is absent or expired.
// A cancelled ctx releases the caller; a download already started keeps
// running for the other callers waiting on it.
func (l *Loader) Season(ctx context.Context, season int) (*SeasonData, error) {
	if d, ok := l.cached(season); ok {
		return d, nil
	}
	return l.load(ctx, "season:"+strconv.Itoa(season), func(ctx context.Context) (*SeasonData, error) {
		if d, ok := l.cached(season); ok {
			return d, nil
		}
		if l.store != nil {
			d, ok, err := l.store.Load(ctx, season, l.now().Add(-l.ttl))
			if err != nil {
				l.logf("cache: load season %d from store: %v", season, err)
			} else if ok {
				l.publish(d)
				return d, nil
			}
		}
		return l.fetch(ctx, season)
	})
}

// Refresh downloads season from the provider regardless of cached copies.
func (l *Loader) Refresh(ctx context.Context, season int) (*SeasonData, error) {
	return l.load(ctx, "refresh:"+strconv.Itoa(season), func(ctx context.Context) (*SeasonData, error) {
		return l.fetch(ctx, season)
	})
}

// Loaded returns the seasons currently held in memory and still fresh,
// newest first.
func (l *Loader) Loaded() []int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	var out []int
	for s, d := range l.seasons {
		if l.fresh(d, now) {
			out = append(out, s)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}

func (l *Loader) cached(season int) (*SeasonData, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	d, ok := l.seasons[season]
	if !ok {
		return nil, false
	}
	if !l.fresh(d, l.now()) {
		delete(l.seasons, season)
		return nil, false
	}
	return d, true
}

func (l *Loader) publish(d *SeasonData) {
	l.mu.Lock()
	l.seasons[d.Season] = d
	l.mu.Unlock()
}

// load runs fn once per key among concurrent callers. fn gets a context
// that outlives any single caller's cancellation.
func (l *Loader) load(ctx context.Context, key string, fn func(context.Context) (*SeasonData, error)) (*SeasonData, error) {
	ch := l.group.DoChan(key, func() (any, error) {
		return fn(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*SeasonData), nil
	}
}

func (l *Loader) fresh(d *SeasonData, now time.Time) bool {
	return now.Sub(d.FetchedAt) < l.ttl
}

func (l *Loader) fetch(ctx context.Context, season int) (*SeasonData, error) {
	plays, err := l.src.PlayByPlay(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("load play-by-play for %d: %w", season, err)
	}
	rosters, err := l.src.Rosters(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("load rosters for %d: %w", season, err)
	}
	d := &SeasonData{
		Season:    season,
		Plays:     plays,
		Rosters:   rosters,
		FetchedAt: l.now(),
	}
	if l.store != nil {
		if err := l.store.Save(ctx, d); err != nil {
			l.logf("cache: save season %d: %v", season, err)
		}
	}
	l.publish(d)
	return d, nil
}
