// Package server exposes comparison passes over HTTP for a browser front end.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pable/go-epa-compare/internal/chart"
	"github.com/pable/go-epa-compare/internal/compare"
	"github.com/pable/go-epa-compare/internal/dashboard"
	"github.com/pable/go-epa-compare/internal/filter"
	"github.com/pable/go-epa-compare/internal/model"
)

// CacheStatus reports what the season cache holds.
type CacheStatus interface {
	Loaded() []int
	TTL() time.Duration
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	svc   *dashboard.Service
	cache CacheStatus
}

// NewHandler creates a new handler. cache may be nil.
func NewHandler(svc *dashboard.Service, cache CacheStatus) *Handler {
	return &Handler{svc: svc, cache: cache}
}

// HealthCheck returns service health and the seasons held in memory.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status":  "healthy",
		"service": "epacompare",
	}
	if h.cache != nil {
		loaded := h.cache.Loaded()
		if loaded == nil {
			loaded = []int{}
		}
		body["loaded_seasons"] = loaded
		body["cache_ttl"] = h.cache.TTL().String()
	}
	respondJSON(w, http.StatusOK, body)
}

// Teams lists the team chart colors.
func (h *Handler) Teams(w http.ResponseWriter, r *http.Request) {
	teams := chart.Teams()
	out := make([]teamDTO, len(teams))
	for i, t := range teams {
		out[i] = teamDTO{Team: t, Color: chart.TeamColor(t)}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"default_color": chart.DefaultColor,
		"teams":         out,
	})
}

// Seasons lists the selectable seasons and the default.
func (h *Handler) Seasons(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, seasonsResponse{
		Seasons: h.svc.Seasons(),
		Default: h.svc.LatestSeason(),
	})
}

// Metrics describes the metric columns of a position.
func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	pos, err := model.ParsePosition(chi.URLParam(r, "position"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	key := make(map[model.Metric]bool)
	for _, m := range chart.KeyMetrics(pos) {
		key[m] = true
	}
	var out []metricDTO
	for _, m := range model.Schema(pos.Category()) {
		info, _ := model.Info(m)
		d := metricDTO{
			Metric:      string(m),
			Description: info.Description,
			Decimals:    int(info.Precision),
			Key:         key[m],
		}
		if v, ok := chart.ReferenceValue(pos, m); ok {
			d.Reference = &v
		}
		out = append(out, d)
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"position": pos,
		"metrics":  out,
	})
}

// Players lists the candidates for a season, position and week window.
func (h *Handler) Players(w http.ResponseWriter, r *http.Request) {
	season, pos, weeks, err := h.parseSelection(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	keys, err := h.svc.Candidates(r.Context(), season, pos, weeks)
	if err != nil {
		h.respondRunError(w, err)
		return
	}
	out := make([]playerKeyDTO, len(keys))
	for i, k := range keys {
		out[i] = playerKeyDTO{Key: k.String(), Name: k.Name, Team: k.Team}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"season":   season,
		"position": pos,
		"weeks":    weeks.String(),
		"players":  out,
	})
}

// Compare runs one comparison pass and returns table and charts.
func (h *Handler) Compare(w http.ResponseWriter, r *http.Request) {
	res, ok := h.run(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, newCompareResponse(res))
}

// CompareCSV runs one comparison pass and returns the rounded table as a
// CSV attachment.
func (h *Handler) CompareCSV(w http.ResponseWriter, r *http.Request) {
	res, ok := h.run(w, r)
	if !ok {
		return
	}
	t := res.Table.Rounded()
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", t.Filename()))
	w.WriteHeader(http.StatusOK)
	if err := t.WriteCSV(w); err != nil {
		log.Printf("write %s: %v", t.Filename(), err)
	}
}

func (h *Handler) run(w http.ResponseWriter, r *http.Request) (*dashboard.Result, bool) {
	season, pos, weeks, err := h.parseSelection(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	players, err := parsePlayers(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	res, err := h.svc.Run(r.Context(), dashboard.Request{
		Season:   season,
		Position: pos,
		Players:  players,
		Weeks:    weeks,
	})
	if err != nil {
		h.respondRunError(w, err)
		return nil, false
	}
	return res, true
}

// parseSelection reads season (default latest), position (default QB) and
// weeks.
func (h *Handler) parseSelection(r *http.Request) (int, model.Position, filter.Weeks, error) {
	q := r.URL.Query()

	season := h.svc.LatestSeason()
	if s := q.Get("season"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, "", filter.Weeks{}, fmt.Errorf("invalid season %q", s)
		}
		season = v
	}
	if err := h.svc.ValidateSeason(season); err != nil {
		return 0, "", filter.Weeks{}, err
	}

	pos := model.PositionQB
	if p := q.Get("position"); p != "" {
		v, err := model.ParsePosition(p)
		if err != nil {
			return 0, "", filter.Weeks{}, err
		}
		pos = v
	}
	weeks, err := filter.ParseWeeks(q.Get("weeks"))
	if err != nil {
		return 0, "", filter.Weeks{}, err
	}
	return season, pos, weeks, nil
}

// parsePlayers accepts repeated or comma-separated players=NAME@TEAM.
func parsePlayers(r *http.Request) ([]model.PlayerKey, error) {
	var keys []model.PlayerKey
	for _, v := range r.URL.Query()["players"] {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s == "" {
				continue
			}
			k, err := model.ParsePlayerKey(s)
			if err != nil {
				return nil, err
			}
			keys = append(keys, k)
		}
	}
	if len(keys) > compare.MaxPlayers {
		return nil, compare.ErrTooManyPlayers
	}
	return keys, nil
}

func (h *Handler) respondRunError(w http.ResponseWriter, err error) {
	var n *dashboard.Notice
	switch {
	case errors.As(err, &n):
		respondJSON(w, http.StatusOK, map[string]string{"notice": n.Msg})
	case errors.Is(err, compare.ErrTooManyPlayers):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusBadGateway, fmt.Sprintf("load season data: %v", err))
	}
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}
