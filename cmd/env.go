package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pable/go-epa-compare/internal/cache"
	"github.com/pable/go-epa-compare/internal/dashboard"
	"github.com/pable/go-epa-compare/internal/filter"
	"github.com/pable/go-epa-compare/internal/model"
	"github.com/pable/go-epa-compare/internal/nflverse"
	"github.com/pable/go-epa-compare/internal/storage"
)

// env is what a command needs to run comparison passes.
type env struct {
	loader *cache.Loader
	svc    *dashboard.Service
	close  []func() error
}

// openEnv wires provider, persistent store and loader from the root flags.
// With --redis the season cache lives in Redis; otherwise in the SQLite file.
func openEnv() (*env, error) {
	e := &env{}
	var store cache.Store
	if redisURL != "" {
		client, err := cache.NewRedisClient(redisURL, cfg.Redis.Password)
		if err != nil {
			return nil, err
		}
		e.close = append(e.close, client.Close)
		store = cache.NewRedisStore(client, cacheTTL)
	} else {
		db, err := openDB()
		if err != nil {
			return nil, err
		}
		e.close = append(e.close, db.Close)
		store = cache.NewSQLiteStore(db)
	}
	e.loader = cache.NewLoader(nflverse.NewClient(cfg.NflverseBaseURL), store, cacheTTL)
	e.svc = dashboard.New(e.loader)
	return e, nil
}

func (e *env) Close() {
	for _, c := range e.close {
		c()
	}
}

// openDB opens the SQLite cache, creating its directory.
func openDB() (*storage.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return db, nil
}

// selection resolves the shared --season/--position/--weeks flags. A zero
// season means the latest one.
func selection(svc *dashboard.Service, season int, position, weeks string) (int, model.Position, filter.Weeks, error) {
	if season == 0 {
		season = svc.LatestSeason()
	}
	if err := svc.ValidateSeason(season); err != nil {
		return 0, "", filter.Weeks{}, err
	}
	pos, err := model.ParsePosition(position)
	if err != nil {
		return 0, "", filter.Weeks{}, err
	}
	w, err := filter.ParseWeeks(weeks)
	if err != nil {
		return 0, "", filter.Weeks{}, err
	}
	return season, pos, w, nil
}

func parsePlayerKeys(args []string) ([]model.PlayerKey, error) {
	keys := make([]model.PlayerKey, 0, len(args))
	for _, a := range args {
		k, err := model.ParsePlayerKey(a)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}
