package storage

import (
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/pable/go-epa-compare/internal/model"
)

// Kind names a provider dataset.
type Kind string

const (
	KindPlayByPlay Kind = "pbp"
	KindRoster     Kind = "roster"
)

// Dataset describes one stored provider file.
type Dataset struct {
	Season    int
	Kind      Kind
	FetchedAt time.Time
	Rows      int
}

// ReplacePlays stores plays as the play-by-play for season, replacing any
// earlier copy, and stamps the dataset with fetchedAt.
func (db *DB) ReplacePlays(season int, plays []model.Play, fetchedAt time.Time) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM plays WHERE season = ?", season); err != nil {
		return fmt.Errorf("clear plays %d: %w", season, err)
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO plays(
			season, row_idx, week, posteam,
			passer_name, passer_id, rusher_name, rusher_id, receiver_name, receiver_id,
			epa, success, complete_pass, yards_gained, yards_after_catch, air_yards,
			pass_touchdown, rush_touchdown, interception, sack, first_down, cpoe
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, p := range plays {
		_, err = stmt.Exec(
			season, i, p.Week, p.PosTeam,
			p.PasserName, p.PasserID, p.RusherName, p.RusherID, p.ReceiverName, p.ReceiverID,
			nullFloat(p.EPA), nullFloat(p.Success), nullFloat(p.CompletePass),
			nullFloat(p.YardsGained), nullFloat(p.YardsAfterCatch), nullFloat(p.AirYards),
			nullFloat(p.PassTouchdown), nullFloat(p.RushTouchdown), nullFloat(p.Interception),
			nullFloat(p.Sack), nullFloat(p.FirstDown), nullFloat(p.CPOE),
		)
		if err != nil {
			return fmt.Errorf("insert play %d of %d: %w", i, season, err)
		}
	}
	if err := stampDataset(tx, season, KindPlayByPlay, fetchedAt, len(plays)); err != nil {
		return err
	}
	return tx.Commit()
}

// GetPlays returns the stored play-by-play for season in provider order.
func (db *DB) GetPlays(season int) ([]model.Play, error) {
	rows, err := db.conn.Query(`
		SELECT week, posteam,
			passer_name, passer_id, rusher_name, rusher_id, receiver_name, receiver_id,
			epa, success, complete_pass, yards_gained, yards_after_catch, air_yards,
			pass_touchdown, rush_touchdown, interception, sack, first_down, cpoe
		FROM plays WHERE season = ? ORDER BY row_idx`, season)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Play
	for rows.Next() {
		p := model.Play{Season: season}
		var f [12]sql.NullFloat64
		if err := rows.Scan(&p.Week, &p.PosTeam,
			&p.PasserName, &p.PasserID, &p.RusherName, &p.RusherID, &p.ReceiverName, &p.ReceiverID,
			&f[0], &f[1], &f[2], &f[3], &f[4], &f[5],
			&f[6], &f[7], &f[8], &f[9], &f[10], &f[11]); err != nil {
			return nil, err
		}
		p.EPA = floatOrNaN(f[0])
		p.Success = floatOrNaN(f[1])
		p.CompletePass = floatOrNaN(f[2])
		p.YardsGained = floatOrNaN(f[3])
		p.YardsAfterCatch = floatOrNaN(f[4])
		p.AirYards = floatOrNaN(f[5])
		p.PassTouchdown = floatOrNaN(f[6])
		p.RushTouchdown = floatOrNaN(f[7])
		p.Interception = floatOrNaN(f[8])
		p.Sack = floatOrNaN(f[9])
		p.FirstDown = floatOrNaN(f[10])
		p.CPOE = floatOrNaN(f[11])
		out = append(out, p)
	}
	return out, rows.Err()
}

// ReplaceRosters stores the seasonal roster for season, replacing any
// earlier copy.
func (db *DB) ReplaceRosters(season int, rosters []model.RosterEntry, fetchedAt time.Time) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM rosters WHERE season = ?", season); err != nil {
		return fmt.Errorf("clear rosters %d: %w", season, err)
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO rosters(
			season, row_idx, player_id, first_name, last_name, football_name,
			team, position, headshot_url
		) VALUES (?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range rosters {
		_, err = stmt.Exec(season, i, r.PlayerID, r.FirstName, r.LastName, r.FootballName,
			r.Team, r.Position, r.HeadshotURL)
		if err != nil {
			return fmt.Errorf("insert roster row for %s: %w", r.PlayerID, err)
		}
	}
	if err := stampDataset(tx, season, KindRoster, fetchedAt, len(rosters)); err != nil {
		return err
	}
	return tx.Commit()
}

// GetRosters returns the stored roster for season in provider order.
func (db *DB) GetRosters(season int) ([]model.RosterEntry, error) {
	rows, err := db.conn.Query(`
		SELECT player_id, first_name, last_name, football_name, team, position, headshot_url
		FROM rosters WHERE season = ? ORDER BY row_idx`, season)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.RosterEntry
	for rows.Next() {
		r := model.RosterEntry{Season: season}
		if err := rows.Scan(&r.PlayerID, &r.FirstName, &r.LastName, &r.FootballName,
			&r.Team, &r.Position, &r.HeadshotURL); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DatasetFetchedAt reports when (season, kind) was stored. ok is false when
// it has never been stored.
func (db *DB) DatasetFetchedAt(season int, kind Kind) (t time.Time, ok bool, err error) {
	var unix int64
	err = db.conn.QueryRow(
		"SELECT fetched_at FROM datasets WHERE season = ? AND kind = ?", season, string(kind),
	).Scan(&unix)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return time.Unix(unix, 0).UTC(), true, nil
}

// ListDatasets returns every stored dataset, newest season first.
func (db *DB) ListDatasets() ([]Dataset, error) {
	rows, err := db.conn.Query(`
		SELECT season, kind, fetched_at, row_count
		FROM datasets ORDER BY season DESC, kind`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Dataset
	for rows.Next() {
		var d Dataset
		var kind string
		var unix int64
		if err := rows.Scan(&d.Season, &kind, &unix, &d.Rows); err != nil {
			return nil, err
		}
		d.Kind = Kind(kind)
		d.FetchedAt = time.Unix(unix, 0).UTC()
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListSeasons returns the seasons with stored play-by-play, newest first.
func (db *DB) ListSeasons() ([]int, error) {
	rows, err := db.conn.Query(
		"SELECT season FROM datasets WHERE kind = ? ORDER BY season DESC", string(KindPlayByPlay))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var s int
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// DeleteSeason removes every dataset stored for season.
func (db *DB) DeleteSeason(season int) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, q := range []string{
		"DELETE FROM plays WHERE season = ?",
		"DELETE FROM rosters WHERE season = ?",
		"DELETE FROM datasets WHERE season = ?",
	} {
		if _, err := tx.Exec(q, season); err != nil {
			return fmt.Errorf("delete season %d: %w", season, err)
		}
	}
	return tx.Commit()
}

// EvictOlderThan removes datasets fetched before cutoff and returns how many
// were removed.
func (db *DB) EvictOlderThan(cutoff time.Time) (int, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	rows, err := tx.Query(
		"SELECT season, kind FROM datasets WHERE fetched_at < ?", cutoff.Unix())
	if err != nil {
		return 0, err
	}
	type key struct {
		season int
		kind   string
	}
	var stale []key
	for rows.Next() {
		var k key
		if err := rows.Scan(&k.season, &k.kind); err != nil {
			rows.Close()
			return 0, err
		}
		stale = append(stale, k)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, k := range stale {
		table := "plays"
		if Kind(k.kind) == KindRoster {
			table = "rosters"
		}
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE season = ?", k.season); err != nil {
			return 0, fmt.Errorf("evict %s %d: %w", k.kind, k.season, err)
		}
		if _, err := tx.Exec("DELETE FROM datasets WHERE season = ? AND kind = ?", k.season, k.kind); err != nil {
			return 0, fmt.Errorf("evict %s %d: %w", k.kind, k.season, err)
		}
	}
	return len(stale), tx.Commit()
}

// QueryRaw runs an arbitrary query and returns column names and stringified rows.
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var out [][]string
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		rec := make([]string, len(cols))
		for i, v := range vals {
			rec[i] = rawString(v)
		}
		out = append(out, rec)
	}
	return cols, out, rows.Err()
}

func stampDataset(tx *sql.Tx, season int, kind Kind, fetchedAt time.Time, n int) error {
	_, err := tx.Exec(`
		INSERT OR REPLACE INTO datasets(season, kind, fetched_at, row_count)
		VALUES (?, ?, ?, ?)`, season, string(kind), fetchedAt.Unix(), n)
	if err != nil {
		return fmt.Errorf("stamp %s %d: %w", kind, season, err)
	}
	return nil
}

func nullFloat(v float64) sql.NullFloat64 {
	if math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func floatOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

func rawString(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(x)
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "1"
		}
		return "0"
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}
