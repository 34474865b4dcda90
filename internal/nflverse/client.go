// Package nflverse provides a minimal client for the nflverse-data release
// files: play-by-play and seasonal rosters.
package nflverse

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/pable/go-epa-compare/internal/model"
)

// DefaultBaseURL is the root of the nflverse-data GitHub releases.
const DefaultBaseURL = "https://github.com/nflverse/nflverse-data/releases/download"

// userAgent identifies the client to the release CDN.
const userAgent = "epacompare/1.0 (+https://github.com/pable/go-epa-compare)"

// Client is a minimal nflverse-data client.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client rooted at baseURL. An empty baseURL means
// DefaultBaseURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		// Full-season play-by-play is tens of megabytes.
		http: &http.Client{Timeout: 5 * time.Minute},
	}
}

// PlayByPlayURL is the compressed play-by-play file for season.
func (c *Client) PlayByPlayURL(season int) string {
	return fmt.Sprintf("%s/pbp/play_by_play_%d.csv.gz", c.baseURL, season)
}

// RosterURL is the seasonal roster file for season.
func (c *Client) RosterURL(season int) string {
	return fmt.Sprintf("%s/rosters/roster_%d.csv", c.baseURL, season)
}

// PlayByPlay downloads and parses one season of play-by-play.
func (c *Client) PlayByPlay(ctx context.Context, season int) ([]model.Play, error) {
	var plays []model.Play
	err := c.get(ctx, c.PlayByPlayURL(season), func(r io.Reader) error {
		var err error
		plays, err = ParsePlays(r, season)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("play-by-play %d: %w", season, err)
	}
	return plays, nil
}

// Rosters downloads and parses one season of rosters.
func (c *Client) Rosters(ctx context.Context, season int) ([]model.RosterEntry, error) {
	var rosters []model.RosterEntry
	err := c.get(ctx, c.RosterURL(season), func(r io.Reader) error {
		var err error
		rosters, err = ParseRosters(r, season)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("rosters %d: %w", season, err)
	}
	return rosters, nil
}

// get performs a GET against url and hands the decompressed body to decode.
func (c *Client) get(ctx context.Context, url string, decode func(io.Reader) error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("GET %s: HTTP %d: %s", url, resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var src io.Reader = resp.Body
	if strings.HasSuffix(url, ".gz") || resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return fmt.Errorf("gzip: %w", err)
		}
		defer gz.Close()
		src = gz
	}
	return decode(src)
}
