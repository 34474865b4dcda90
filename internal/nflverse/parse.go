package nflverse

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pable/go-epa-compare/internal/model"
)

// header maps lower-cased column names to their index.
type header map[string]int

func readHeader(r *csv.Reader) (header, error) {
	rec, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	h := make(header, len(rec))
	for i, name := range rec {
		h[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return h, nil
}

// index returns the position of the first name present, or -1.
func (h header) index(names ...string) int {
	for _, n := range names {
		if i, ok := h[n]; ok {
			return i
		}
	}
	return -1
}

func (h header) require(names ...string) error {
	var missing []string
	for _, n := range names {
		if _, ok := h[n]; !ok {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("required columns missing: %s", strings.Join(missing, ", "))
	}
	return nil
}

func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	s := strings.TrimSpace(rec[i])
	if s == "NA" {
		return ""
	}
	return s
}

// number parses a numeric cell; blanks and "NA" become NaN.
func number(rec []string, i int) float64 {
	s := cell(rec, i)
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func integer(rec []string, i int) int {
	v, _ := strconv.Atoi(cell(rec, i))
	return v
}

var playColumns = []string{"season", "week", "posteam", "epa"}

// ParsePlays reads nflverse play-by-play CSV. Rows whose season column
// differs from season are skipped; a season of 0 keeps every row.
func ParsePlays(r io.Reader, season int) ([]model.Play, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	h, err := readHeader(cr)
	if err != nil {
		return nil, err
	}
	if err := h.require(playColumns...); err != nil {
		return nil, err
	}

	var (
		iSeason   = h.index("season")
		iWeek     = h.index("week")
		iPosTeam  = h.index("posteam")
		iPasser   = h.index("passer_player_name", "passer")
		iPasserID = h.index("passer_player_id", "passer_id")
		iRusher   = h.index("rusher_player_name", "rusher")
		iRusherID = h.index("rusher_player_id", "rusher_id")
		iRecv     = h.index("receiver_player_name", "receiver")
		iRecvID   = h.index("receiver_player_id", "receiver_id")
		iEPA      = h.index("epa")
		iSuccess  = h.index("success")
		iComplete = h.index("complete_pass")
		iYards    = h.index("yards_gained")
		iYAC      = h.index("yards_after_catch")
		iAir      = h.index("air_yards")
		iPassTD   = h.index("pass_touchdown")
		iRushTD   = h.index("rush_touchdown")
		iInt      = h.index("interception")
		iSack     = h.index("sack")
		iFirst    = h.index("first_down")
		iCPOE     = h.index("cpoe")
	)

	plays := make([]model.Play, 0, 50000)
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		s := integer(rec, iSeason)
		if season != 0 && s != season {
			continue
		}
		plays = append(plays, model.Play{
			Season:          s,
			Week:            integer(rec, iWeek),
			PosTeam:         cell(rec, iPosTeam),
			PasserName:      cell(rec, iPasser),
			PasserID:        cell(rec, iPasserID),
			RusherName:      cell(rec, iRusher),
			RusherID:        cell(rec, iRusherID),
			ReceiverName:    cell(rec, iRecv),
			ReceiverID:      cell(rec, iRecvID),
			EPA:             number(rec, iEPA),
			Success:         number(rec, iSuccess),
			CompletePass:    number(rec, iComplete),
			YardsGained:     number(rec, iYards),
			YardsAfterCatch: number(rec, iYAC),
			AirYards:        number(rec, iAir),
			PassTouchdown:   number(rec, iPassTD),
			RushTouchdown:   number(rec, iRushTD),
			Interception:    number(rec, iInt),
			Sack:            number(rec, iSack),
			FirstDown:       number(rec, iFirst),
			CPOE:            number(rec, iCPOE),
		})
	}
	return plays, nil
}

// ParseRosters reads an nflverse seasonal roster CSV. The player id comes
// from gsis_id, falling back to player_id.
func ParseRosters(r io.Reader, season int) ([]model.RosterEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	h, err := readHeader(cr)
	if err != nil {
		return nil, err
	}
	iID := h.index("gsis_id", "player_id")
	if iID < 0 {
		return nil, fmt.Errorf("required columns missing: gsis_id or player_id")
	}
	if err := h.require("team", "position"); err != nil {
		return nil, err
	}

	var (
		iSeason   = h.index("season")
		iFirst    = h.index("first_name")
		iLast     = h.index("last_name")
		iFootball = h.index("football_name")
		iTeam     = h.index("team")
		iPos      = h.index("position")
		iHeadshot = h.index("headshot_url")
	)

	var out []model.RosterEntry
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		id := cell(rec, iID)
		if id == "" {
			continue
		}
		s := season
		if iSeason >= 0 {
			if v := integer(rec, iSeason); v != 0 {
				s = v
			}
		}
		if season != 0 && s != season {
			continue
		}
		out = append(out, model.RosterEntry{
			Season:       s,
			PlayerID:     id,
			FirstName:    cell(rec, iFirst),
			LastName:     cell(rec, iLast),
			FootballName: cell(rec, iFootball),
			Team:         strings.ToUpper(cell(rec, iTeam)),
			Position:     strings.ToUpper(cell(rec, iPos)),
			HeadshotURL:  cell(rec, iHeadshot),
		})
	}
	return out, nil
}
