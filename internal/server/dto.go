package server

import (
	"github.com/pable/go-epa-compare/internal/chart"
	"github.com/pable/go-epa-compare/internal/compare"
	"github.com/pable/go-epa-compare/internal/dashboard"
	"github.com/pable/go-epa-compare/internal/model"
)

// JSON has no NaN, so no-data values are sent as null.

type seasonsResponse struct {
	Seasons []int `json:"seasons"`
	Default int   `json:"default"`
}

type metricDTO struct {
	Metric      string   `json:"metric"`
	Description string   `json:"description"`
	Decimals    int      `json:"decimals"`
	Key         bool     `json:"key"`
	Reference   *float64 `json:"reference"`
}

type teamDTO struct {
	Team  string `json:"team"`
	Color string `json:"color"`
}

type playerKeyDTO struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Team string `json:"team"`
}

type playerDTO struct {
	Key         string `json:"key"`
	DisplayName string `json:"display_name"`
	Team        string `json:"team"`
	PlayerID    string `json:"player_id,omitempty"`
	PhotoURL    string `json:"photo_url"`
}

type rowDTO struct {
	Player   string              `json:"player"`
	Team     string              `json:"team"`
	PhotoURL string              `json:"photo_url"`
	Values   map[string]*float64 `json:"values"`
}

type barDTO struct {
	Player string   `json:"player"`
	Team   string   `json:"team"`
	Value  *float64 `json:"value"`
	Color  string   `json:"color"`
	Label  string   `json:"label"`
}

type chartDTO struct {
	Metric    string   `json:"metric"`
	Title     string   `json:"title"`
	Bars      []barDTO `json:"bars"`
	Reference *float64 `json:"reference"`
}

type compareResponse struct {
	Season   int            `json:"season"`
	Position model.Position `json:"position"`
	Weeks    string         `json:"weeks"`
	Players  []playerDTO    `json:"players"`
	Skipped  []string       `json:"skipped"`
	Columns  []string       `json:"columns"`
	Rows     []rowDTO       `json:"rows"`
	Charts   []chartDTO     `json:"charts"`
	Filename string         `json:"csv_filename"`
}

func newCompareResponse(res *dashboard.Result) compareResponse {
	t := res.Table.Rounded()
	out := compareResponse{
		Season:   res.Request.Season,
		Position: res.Request.Position,
		Weeks:    res.Request.Weeks.String(),
		Players:  make([]playerDTO, 0, len(res.Players)),
		Skipped:  make([]string, 0, len(res.Skipped)),
		Columns:  make([]string, len(t.Columns)),
		Rows:     make([]rowDTO, 0, len(t.Rows)),
		Charts:   make([]chartDTO, 0, len(res.Charts)),
		Filename: t.Filename(),
	}
	for _, id := range res.Players {
		out.Players = append(out.Players, playerDTO{
			Key:         id.Key.String(),
			DisplayName: id.DisplayName,
			Team:        id.Team(),
			PlayerID:    id.PlayerID,
			PhotoURL:    id.PhotoURL,
		})
	}
	for _, k := range res.Skipped {
		out.Skipped = append(out.Skipped, k.String())
	}
	for i, c := range t.Columns {
		out.Columns[i] = string(c)
	}
	for _, row := range t.Rows {
		vals := make(map[string]*float64, len(row.Values))
		for i, v := range row.Values {
			vals[string(t.Columns[i])] = nullable(v)
		}
		out.Rows = append(out.Rows, rowDTO{
			Player:   row.Player,
			Team:     row.Team,
			PhotoURL: row.PhotoURL,
			Values:   vals,
		})
	}
	for _, c := range res.Charts {
		out.Charts = append(out.Charts, newChartDTO(c))
	}
	return out
}

func newChartDTO(c *chart.Chart) chartDTO {
	d := chartDTO{
		Metric: string(c.Metric),
		Title:  c.Title,
		Bars:   make([]barDTO, len(c.Bars)),
	}
	for i, b := range c.Bars {
		d.Bars[i] = barDTO{
			Player: b.Player,
			Team:   b.Team,
			Value:  nullable(compare.Round(c.Metric, b.Value)),
			Color:  b.Color,
			Label:  b.Label,
		}
	}
	if c.HasReference {
		v := c.Reference
		d.Reference = &v
	}
	return d
}

func nullable(v float64) *float64 {
	if model.IsNoData(v) {
		return nil
	}
	return &v
}
