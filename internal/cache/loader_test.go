package cache

import (
	"context"
	"errors"
	"math"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/pable/go-epa-compare/internal/model"
	"github.com/pable/go-epa-compare/internal/storage"
)

type fakeSource struct {
	pbpCalls    int
	rosterCalls int
	err         error
}

func (f *fakeSource) PlayByPlay(_ context.Context, season int) ([]model.Play, error) {
	f.pbpCalls++
	if f.err != nil {
		return nil, f.err
	}
	return []model.Play{
		{Season: season, Week: 1, PosTeam: "KC", PasserName: "P.Mahomes", EPA: 0.4, CPOE: math.NaN()},
	}, nil
}

func (f *fakeSource) Rosters(_ context.Context, season int) ([]model.RosterEntry, error) {
	f.rosterCalls++
	return []model.RosterEntry{{Season: season, PlayerID: "00-0033873", Team: "KC", Position: "QB"}}, nil
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestLoader(src Source, store Store, c *clock) *Loader {
	l := NewLoader(src, store, DefaultTTL)
	l.now = c.now
	l.logf = func(string, ...any) {}
	return l
}

func TestLoader_ReusesWithinTTL(t *testing.T) {
	src := &fakeSource{}
	c := &clock{t: time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)}
	l := newTestLoader(src, nil, c)

	ctx := context.Background()
	d1, err := l.Season(ctx, 2023)
	if err != nil {
		t.Fatalf("Season: %v", err)
	}
	c.t = c.t.Add(23 * time.Hour)
	d2, err := l.Season(ctx, 2023)
	if err != nil {
		t.Fatalf("Season: %v", err)
	}
	if d1 != d2 {
		t.Error("expected the same snapshot within the TTL")
	}
	if src.pbpCalls != 1 || src.rosterCalls != 1 {
		t.Errorf("expected one download, got pbp=%d rosters=%d", src.pbpCalls, src.rosterCalls)
	}

	c.t = c.t.Add(2 * time.Hour)
	if _, err := l.Season(ctx, 2023); err != nil {
		t.Fatalf("Season: %v", err)
	}
	if src.pbpCalls != 2 {
		t.Errorf("expected a reload after expiry, got %d downloads", src.pbpCalls)
	}
}

func TestLoader_KeyedBySeason(t *testing.T) {
	src := &fakeSource{}
	c := &clock{t: time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)}
	l := newTestLoader(src, nil, c)
	ctx := context.Background()
	l.Season(ctx, 2022)
	c.t = c.t.Add(time.Hour)
	l.Season(ctx, 2023)
	l.Season(ctx, 2022)
	if src.pbpCalls != 2 {
		t.Errorf("expected 2 downloads, got %d", src.pbpCalls)
	}
	loaded := l.Loaded()
	if len(loaded) != 2 || loaded[0] != 2023 {
		t.Errorf("unexpected loaded seasons %v", loaded)
	}
	// 2022 expires an hour before 2023.
	c.t = c.t.Add(DefaultTTL - 30*time.Minute)
	if got := l.Loaded(); len(got) != 1 || got[0] != 2023 {
		t.Errorf("expected only 2023 after 2022 expired, got %v", got)
	}
}

// gatedSource blocks downloads of one season until release is closed.
type gatedSource struct {
	gated   int
	started chan struct{}
	release chan struct{}

	mu    sync.Mutex
	calls map[int]int
}

func newGatedSource(gated int) *gatedSource {
	return &gatedSource{
		gated:   gated,
		started: make(chan struct{}, 8),
		release: make(chan struct{}),
		calls:   make(map[int]int),
	}
}

func (g *gatedSource) PlayByPlay(ctx context.Context, season int) ([]model.Play, error) {
	g.mu.Lock()
	g.calls[season]++
	g.mu.Unlock()
	if season == g.gated {
		g.started <- struct{}{}
		<-g.release
	}
	return []model.Play{{Season: season, Week: 1, PosTeam: "KC", PasserName: "P.Mahomes"}}, nil
}

func (g *gatedSource) Rosters(_ context.Context, season int) ([]model.RosterEntry, error) {
	return nil, nil
}

func (g *gatedSource) count(season int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[season]
}

func TestLoader_ColdDownloadDoesNotBlockOtherSeasons(t *testing.T) {
	src := newGatedSource(2021)
	l := newTestLoader(src, nil, &clock{t: time.Now()})
	ctx := context.Background()
	if _, err := l.Season(ctx, 2023); err != nil {
		t.Fatalf("Season(2023): %v", err)
	}

	coldDone := make(chan error, 1)
	go func() {
		_, err := l.Season(ctx, 2021)
		coldDone <- err
	}()
	<-src.started

	done := make(chan error, 1)
	go func() {
		_, err := l.Season(ctx, 2023)
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Season(2023): %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("cached season waited for another season's download")
	}

	close(src.release)
	if err := <-coldDone; err != nil {
		t.Errorf("Season(2021): %v", err)
	}
}

func TestLoader_WaiterHonoursContext(t *testing.T) {
	src := newGatedSource(2021)
	l := newTestLoader(src, nil, &clock{t: time.Now()})

	first := make(chan error, 1)
	go func() {
		_, err := l.Season(context.Background(), 2021)
		first <- err
	}()
	<-src.started

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err := l.Season(ctx, 2021)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if waited := time.Since(start); waited > time.Second {
		t.Errorf("waiter returned after %v", waited)
	}

	close(src.release)
	if err := <-first; err != nil {
		t.Errorf("first caller: %v", err)
	}
	if n := src.count(2021); n != 1 {
		t.Errorf("expected one shared download, got %d", n)
	}
}

func TestLoader_ConcurrentCallersShareDownload(t *testing.T) {
	src := newGatedSource(2022)
	l := newTestLoader(src, nil, &clock{t: time.Now()})

	const callers = 5
	results := make(chan *SeasonData, callers)
	for i := 0; i < callers; i++ {
		go func() {
			d, err := l.Season(context.Background(), 2022)
			if err != nil {
				t.Errorf("Season: %v", err)
			}
			results <- d
		}()
	}
	<-src.started
	// Give the other callers time to join the in-flight download.
	time.Sleep(50 * time.Millisecond)
	close(src.release)

	var first *SeasonData
	for i := 0; i < callers; i++ {
		d := <-results
		if first == nil {
			first = d
		} else if d != first {
			t.Error("callers received different snapshots")
		}
	}
	if n := src.count(2022); n != 1 {
		t.Errorf("expected one download, got %d", n)
	}
}

func TestLoader_SourceErrorPropagates(t *testing.T) {
	boom := errors.New("provider down")
	l := newTestLoader(&fakeSource{err: boom}, nil, &clock{t: time.Now()})
	_, err := l.Season(context.Background(), 2023)
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped provider error, got %v", err)
	}
}

func TestLoader_SQLiteStoreSurvivesRestart(t *testing.T) {
	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	store := NewSQLiteStore(db)

	c := &clock{t: time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)}
	src := &fakeSource{}
	first := newTestLoader(src, store, c)
	if _, err := first.Season(context.Background(), 2023); err != nil {
		t.Fatalf("Season: %v", err)
	}

	// A new loader with an empty map is served from the store.
	c.t = c.t.Add(time.Hour)
	second := newTestLoader(src, store, c)
	d, err := second.Season(context.Background(), 2023)
	if err != nil {
		t.Fatalf("Season: %v", err)
	}
	if src.pbpCalls != 1 {
		t.Errorf("expected the store to avoid a second download, got %d", src.pbpCalls)
	}
	if len(d.Plays) != 1 || len(d.Rosters) != 1 || !math.IsNaN(d.Plays[0].CPOE) {
		t.Errorf("unexpected stored season: %+v", d)
	}

	// Past the TTL the stored copy is ignored.
	c.t = c.t.Add(DefaultTTL)
	third := newTestLoader(src, store, c)
	if _, err := third.Season(context.Background(), 2023); err != nil {
		t.Fatalf("Season: %v", err)
	}
	if src.pbpCalls != 2 {
		t.Errorf("expected a fresh download after expiry, got %d", src.pbpCalls)
	}
}

func TestLoader_Refresh(t *testing.T) {
	src := &fakeSource{}
	l := newTestLoader(src, nil, &clock{t: time.Now()})
	l.Season(context.Background(), 2023)
	if _, err := l.Refresh(context.Background(), 2023); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if src.pbpCalls != 2 {
		t.Errorf("Refresh must bypass the cache, got %d downloads", src.pbpCalls)
	}
}

func TestSeasonBlobRoundTrip(t *testing.T) {
	in := &SeasonData{
		Season:    2023,
		Plays:     []model.Play{{Season: 2023, PasserName: "J.Allen", EPA: math.NaN(), CPOE: 3.5}},
		Rosters:   []model.RosterEntry{{PlayerID: "00-0034857", Position: "QB"}},
		FetchedAt: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
	}
	raw, err := encodeSeason(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := decodeSeason(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !math.IsNaN(out.Plays[0].EPA) || out.Plays[0].CPOE != 3.5 || !out.FetchedAt.Equal(in.FetchedAt) {
		t.Errorf("unexpected decoded season: %+v", out)
	}
}

func TestDecodeSeason_Corrupt(t *testing.T) {
	if _, err := decodeSeason([]byte("not a season")); err == nil {
		t.Error("expected an error for a corrupt blob")
	}
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	client, err := NewRedisClient(url, "")
	if err != nil {
		t.Fatalf("NewRedisClient: %v", err)
	}
	defer client.Close()

	store := NewRedisStore(client, time.Minute)
	store.prefix = "epacompare-test"
	ctx := context.Background()
	defer client.Del(ctx, store.Key(1999))

	if _, ok, err := store.Load(ctx, 1999, time.Time{}); err != nil || ok {
		t.Fatalf("expected a miss, got ok=%v err=%v", ok, err)
	}
	now := time.Now().UTC()
	if err := store.Save(ctx, &SeasonData{Season: 1999, FetchedAt: now}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	d, ok, err := store.Load(ctx, 1999, now.Add(-time.Minute))
	if err != nil || !ok || d.Season != 1999 {
		t.Errorf("Load: d=%+v ok=%v err=%v", d, ok, err)
	}
	if ttl := client.TTL(ctx, store.Key(1999)).Val(); ttl <= 0 {
		t.Errorf("expected a TTL on the key, got %v", ttl)
	}
}
