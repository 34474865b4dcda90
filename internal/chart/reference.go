package chart

import "github.com/pable/go-epa-compare/internal/model"

// League-average markers. These are fixed annotation values, not derived
// from the loaded season.
var referenceLines = map[model.Position]map[model.Metric]float64{
	model.PositionQB: {
		model.MetricEPAPerPlay:  0.10,
		model.MetricSuccessRate: 46.0,
		model.MetricCompPct:     64.5,
		model.MetricCPOE:        0.0,
	},
	model.PositionRB: {
		model.MetricRushEPAPerPlay:  -0.05,
		model.MetricRushSuccessRate: 39.0,
		model.MetricRecEPAPerTarget: 0.05,
	},
	model.PositionWR: {
		model.MetricEPAPerTarget:   0.25,
		model.MetricSuccessRate:    51.0,
		model.MetricCatchPct:       63.0,
		model.MetricYardsPerTarget: 8.2,
	},
	model.PositionTE: {
		model.MetricEPAPerTarget:   0.20,
		model.MetricSuccessRate:    52.0,
		model.MetricCatchPct:       71.0,
		model.MetricYardsPerTarget: 7.3,
	},
}

// ReferenceValue returns the league-average marker for (pos, m). CPOE never
// gets one: its baseline is zero by construction.
func ReferenceValue(pos model.Position, m model.Metric) (float64, bool) {
	if m == model.MetricCPOE {
		return 0, false
	}
	v, ok := referenceLines[pos][m]
	return v, ok
}
