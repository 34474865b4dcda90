package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/pable/go-epa-compare/internal/cache"
	"github.com/pable/go-epa-compare/internal/dashboard"
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

func fixture() *cache.SeasonData {
	var plays []model.Play
	for i := 0; i < 20; i++ {
		plays = append(plays,
			model.Play{Season: 2023, Week: i%17 + 1, PosTeam: "KC", PasserName: "P.Mahomes", PasserID: "00-0033873",
				EPA: 0.2, Success: 1, CompletePass: 1, YardsGained: 9, YardsAfterCatch: 3, AirYards: 6, CPOE: 2},
			model.Play{Season: 2023, Week: i%17 + 1, PosTeam: "BUF", PasserName: "J.Allen", PasserID: "00-0034857",
				EPA: -0.1, Success: 0, CompletePass: 0, YardsGained: 0, YardsAfterCatch: 0, AirYards: 11, CPOE: -1},
		)
	}
	return &cache.SeasonData{
		Season: 2023,
		Plays:  plays,
		Rosters: []model.RosterEntry{
			{Season: 2023, PlayerID: "00-0033873", FirstName: "Patrick", LastName: "Mahomes", Team: "KC", Position: "QB"},
		},
	}
}

func newTestServer(t *testing.T, loader dashboard.SeasonLoader) *httptest.Server {
	t.Helper()
	h := NewHandler(dashboard.New(loader), nil)
	srv := httptest.NewServer(NewRouter(h, Options{AllowedOrigins: []string{"*"}}))
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &stubLoader{data: fixture()})
	var body map[string]string
	if code := getJSON(t, srv.URL+"/health", &body); code != http.StatusOK || body["status"] != "healthy" {
		t.Errorf("health: %d %v", code, body)
	}
}

func TestCompare(t *testing.T) {
	srv := newTestServer(t, &stubLoader{data: fixture()})
	var body compareResponse
	code := getJSON(t, srv.URL+"/api/v1/compare?season=2023&position=qb&players=P.Mahomes@KC,J.Allen@BUF", &body)
	if code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if len(body.Rows) != 2 || len(body.Columns) != 10 {
		t.Fatalf("unexpected table: %d rows, %d columns", len(body.Rows), len(body.Columns))
	}
	if body.Rows[0].Player != "Mahomes, Patrick (KC)" || body.Rows[1].Player != "J.Allen (BUF)" {
		t.Errorf("unexpected players %q %q", body.Rows[0].Player, body.Rows[1].Player)
	}
	if v := body.Rows[0].Values["EPA/Play"]; v == nil || *v != 0.2 {
		t.Errorf("EPA/Play: got %v", v)
	}
	// Allen never completes a pass.
	if v, ok := body.Rows[1].Values["YAC/Comp"]; !ok || v != nil {
		t.Errorf("YAC/Comp should be null, got %v (present=%v)", v, ok)
	}
	if len(body.Charts) != 4 || body.Charts[0].Bars[0].Player != "J.Allen (BUF)" {
		t.Errorf("unexpected charts %+v", body.Charts)
	}
	if body.Filename != "epa_comparison_QB_2023.csv" {
		t.Errorf("filename %q", body.Filename)
	}
}

func TestCompareCSV(t *testing.T) {
	srv := newTestServer(t, &stubLoader{data: fixture()})
	resp, err := http.Get(srv.URL + "/api/v1/compare.csv?season=2023&position=QB&players=P.Mahomes@KC&players=J.Allen@BUF")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "epa_comparison_QB_2023.csv") {
		t.Errorf("Content-Disposition %q", cd)
	}
}

func TestCompare_Notice(t *testing.T) {
	srv := newTestServer(t, &stubLoader{data: fixture()})
	var body map[string]string
	code := getJSON(t, srv.URL+"/api/v1/compare?season=2023&position=QB&players=P.Mahomes@KC", &body)
	if code != http.StatusOK || body["notice"] == "" {
		t.Errorf("expected a 200 notice, got %d %v", code, body)
	}
}

func TestCompare_BadInput(t *testing.T) {
	srv := newTestServer(t, &stubLoader{data: fixture()})
	for _, q := range []string{
		"season=2019&position=QB&players=A@KC,B@KC",
		"season=2023&position=K&players=A@KC,B@KC",
		"season=2023&position=QB&players=nope",
		"season=2023&position=QB&weeks=20&players=A@KC,B@KC",
		"season=2023&position=QB&players=A@KC,B@KC,C@KC,D@KC,E@KC,F@KC",
	} {
		var body map[string]string
		if code := getJSON(t, srv.URL+"/api/v1/compare?"+q, &body); code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d %v", q, code, body)
		}
	}
}

func TestCompare_ProviderFailure(t *testing.T) {
	srv := newTestServer(t, &stubLoader{err: errors.New("HTTP 503")})
	var body map[string]string
	code := getJSON(t, srv.URL+"/api/v1/compare?season=2023&position=QB&players=P.Mahomes@KC,J.Allen@BUF", &body)
	if code != http.StatusBadGateway || !strings.Contains(body["error"], "503") {
		t.Errorf("expected 502, got %d %v", code, body)
	}
}

func TestPlayers(t *testing.T) {
	srv := newTestServer(t, &stubLoader{data: fixture()})
	var body struct {
		Players []playerKeyDTO `json:"players"`
	}
	if code := getJSON(t, srv.URL+"/api/v1/players?season=2023&position=QB&weeks=1-4", &body); code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if len(body.Players) != 2 || body.Players[0].Key != "J.Allen@BUF" {
		t.Errorf("unexpected players %+v", body.Players)
	}
}

func TestMetrics(t *testing.T) {
	srv := newTestServer(t, &stubLoader{data: fixture()})
	var body struct {
		Metrics []metricDTO `json:"metrics"`
	}
	if code := getJSON(t, srv.URL+"/api/v1/metrics/WR", &body); code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if len(body.Metrics) != 11 {
		t.Fatalf("expected 11 receiver metrics, got %d", len(body.Metrics))
	}
	if body.Metrics[0].Metric != "Targets" || body.Metrics[0].Decimals != 0 {
		t.Errorf("unexpected first metric %+v", body.Metrics[0])
	}
	if code := getJSON(t, srv.URL+"/api/v1/metrics/K", nil); code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown position, got %d", code)
	}
}

func TestSeasons(t *testing.T) {
	srv := newTestServer(t, &stubLoader{data: fixture()})
	var body seasonsResponse
	getJSON(t, srv.URL+"/api/v1/seasons", &body)
	if len(body.Seasons) == 0 || body.Seasons[0] != dashboard.FirstSeason || body.Default != body.Seasons[len(body.Seasons)-1] {
		t.Errorf("unexpected seasons %+v", body)
	}
}

type stubCache struct{ loaded []int }

func (s stubCache) Loaded() []int      { return s.loaded }
func (s stubCache) TTL() time.Duration { return 24 * time.Hour }

func TestHealth_CacheStatus(t *testing.T) {
	h := NewHandler(dashboard.New(&stubLoader{data: fixture()}), stubCache{loaded: []int{2023, 2022}})
	srv := httptest.NewServer(NewRouter(h, Options{}))
	t.Cleanup(srv.Close)

	var body struct {
		Status   string `json:"status"`
		Loaded   []int  `json:"loaded_seasons"`
		CacheTTL string `json:"cache_ttl"`
	}
	if code := getJSON(t, srv.URL+"/health", &body); code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if len(body.Loaded) != 2 || body.Loaded[0] != 2023 || body.CacheTTL != "24h0m0s" {
		t.Errorf("unexpected cache status %+v", body)
	}
}

func TestTeams(t *testing.T) {
	srv := newTestServer(t, &stubLoader{data: fixture()})
	var body struct {
		Default string    `json:"default_color"`
		Teams   []teamDTO `json:"teams"`
	}
	if code := getJSON(t, srv.URL+"/api/v1/teams", &body); code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if len(body.Teams) != 32 || body.Default != "#1E88E5" {
		t.Fatalf("unexpected teams response: %d teams, default %q", len(body.Teams), body.Default)
	}
	for _, tm := range body.Teams {
		if tm.Team == "KC" && tm.Color != "#E31837" {
			t.Errorf("KC color %q", tm.Color)
		}
	}
}

// failingWriter accepts headers but fails every body write.
type failingWriter struct {
	header http.Header
	status int
}

func (f *failingWriter) Header() http.Header         { return f.header }
func (f *failingWriter) WriteHeader(status int)      { f.status = status }
func (f *failingWriter) Write(p []byte) (int, error) { return 0, errors.New("client went away") }

func TestCompareCSV_WriteErrorLogged(t *testing.T) {
	var logs bytes.Buffer
	log.SetOutput(&logs)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	h := NewHandler(dashboard.New(&stubLoader{data: fixture()}), nil)
	w := &failingWriter{header: make(http.Header)}
	r := httptest.NewRequest(http.MethodGet, "/api/v1/compare.csv?season=2023&position=QB&players=P.Mahomes@KC,J.Allen@BUF", nil)
	h.CompareCSV(w, r)

	if w.status != http.StatusOK {
		t.Errorf("status %d", w.status)
	}
	if !strings.Contains(logs.String(), "epa_comparison_QB_2023.csv") || !strings.Contains(logs.String(), "client went away") {
		t.Errorf("expected the write error to be logged, got %q", logs.String())
	}
}
