package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/pable/go-epa-compare/internal/storage"
)

// SQLiteStore keeps seasons in the local SQLite database.
type SQLiteStore struct {
	db *storage.DB
}

// NewSQLiteStore wraps an open database.
func NewSQLiteStore(db *storage.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Load returns the season when both its play-by-play and roster were stored
// after notBefore.
func (s *SQLiteStore) Load(_ context.Context, season int, notBefore time.Time) (*SeasonData, bool, error) {
	pbpAt, ok, err := s.db.DatasetFetchedAt(season, storage.KindPlayByPlay)
	if err != nil || !ok || pbpAt.Before(notBefore) {
		return nil, false, err
	}
	rosterAt, ok, err := s.db.DatasetFetchedAt(season, storage.KindRoster)
	if err != nil || !ok || rosterAt.Before(notBefore) {
		return nil, false, err
	}

	plays, err := s.db.GetPlays(season)
	if err != nil {
		return nil, false, fmt.Errorf("read plays: %w", err)
	}
	rosters, err := s.db.GetRosters(season)
	if err != nil {
		return nil, false, fmt.Errorf("read rosters: %w", err)
	}

	fetched := pbpAt
	if rosterAt.Before(fetched) {
		fetched = rosterAt
	}
	return &SeasonData{Season: season, Plays: plays, Rosters: rosters, FetchedAt: fetched}, true, nil
}

// Save replaces the stored copy of the season.
func (s *SQLiteStore) Save(_ context.Context, d *SeasonData) error {
	if err := s.db.ReplacePlays(d.Season, d.Plays, d.FetchedAt); err != nil {
		return fmt.Errorf("store plays: %w", err)
	}
	if err := s.db.ReplaceRosters(d.Season, d.Rosters, d.FetchedAt); err != nil {
		return fmt.Errorf("store rosters: %w", err)
	}
	return nil
}
