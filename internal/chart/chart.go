// Package chart prepares comparison tables for bar-chart rendering: sorted
// bars, team colors and a league-average reference marker.
package chart

import (
	"fmt"
	"math"
	"sort"

	"github.com/pable/go-epa-compare/internal/compare"
	"github.com/pable/go-epa-compare/internal/model"
)

// Bar is one player's bar.
type Bar struct {
	Player string  `json:"player"`
	Team   string  `json:"team"`
	Value  float64 `json:"-"`
	Color  string  `json:"color"`
	Label  string  `json:"label"`
}

// Chart is the render-ready data for one metric.
type Chart struct {
	Metric model.Metric `json:"metric"`
	Title  string       `json:"title"`
	// Bars are sorted ascending by value; no-data bars go last.
	Bars []Bar `json:"bars"`
	// Reference is the league-average marker, when one applies.
	Reference    float64 `json:"-"`
	HasReference bool    `json:"has_reference"`
}

var keyMetrics = map[model.Position][]model.Metric{
	model.PositionQB: {model.MetricEPAPerPlay, model.MetricSuccessRate, model.MetricCPOE, model.MetricCompPct},
	model.PositionRB: {model.MetricRushEPAPerPlay, model.MetricRushSuccessRate, model.MetricRecEPAPerTarget, model.MetricRushTDs},
	model.PositionWR: {model.MetricEPAPerTarget, model.MetricSuccessRate, model.MetricCatchPct, model.MetricYardsPerTarget},
	model.PositionTE: {model.MetricEPAPerTarget, model.MetricSuccessRate, model.MetricCatchPct, model.MetricYardsPerTarget},
}

// KeyMetrics lists the metrics charted for pos.
func KeyMetrics(pos model.Position) []model.Metric {
	return append([]model.Metric(nil), keyMetrics[pos]...)
}

// Prepare builds the chart for metric from t. Bars keep their table order
// among equal values.
func Prepare(t *compare.Table, metric model.Metric) (*Chart, error) {
	col := t.ColumnIndex(metric)
	if col < 0 {
		return nil, fmt.Errorf("metric %q not in %s table", metric, t.Position)
	}

	bars := make([]Bar, len(t.Rows))
	for i, row := range t.Rows {
		v := row.Values[col]
		label := "—"
		if !model.IsNoData(v) {
			label = fmt.Sprintf("%.2f", v)
		}
		bars[i] = Bar{
			Player: row.Player,
			Team:   row.Team,
			Value:  v,
			Color:  TeamColor(row.Team),
			Label:  label,
		}
	}
	sort.SliceStable(bars, func(i, j int) bool {
		a, b := bars[i].Value, bars[j].Value
		if math.IsNaN(a) || math.IsNaN(b) {
			return !math.IsNaN(a) && math.IsNaN(b)
		}
		return a < b
	})

	c := &Chart{
		Metric: metric,
		Title:  title(metric),
		Bars:   bars,
	}
	c.Reference, c.HasReference = ReferenceValue(t.Position, metric)
	return c, nil
}

// PrepareAll prepares a chart for every key metric of the table's position
// that the table carries.
func PrepareAll(t *compare.Table) []*Chart {
	var out []*Chart
	for _, m := range KeyMetrics(t.Position) {
		c, err := Prepare(t, m)
		if err != nil {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Colors returns the bar colors in bar order.
func (c *Chart) Colors() []string {
	out := make([]string, len(c.Bars))
	for i, b := range c.Bars {
		out[i] = b.Color
	}
	return out
}

func title(m model.Metric) string {
	if d := m.Describe(); d != "" {
		return fmt.Sprintf("%s - %s", m, d)
	}
	return string(m)
}
