// Package aggregator turns one player's plays into a flat line of metrics.
package aggregator

import (
	"math"

	"github.com/pable/go-epa-compare/internal/model"
)

// ForCategory runs the aggregation variant for c. The bool is false when
// the player has no relevant plays, in which case no line is produced.
func ForCategory(c model.Category, plays []model.Play, key model.PlayerKey) (model.StatLine, bool) {
	switch c {
	case model.CategoryPasser:
		return Passer(plays, key)
	case model.CategoryRushReceive:
		return RushReceive(plays, key)
	default:
		return Receiver(plays, key)
	}
}

// Passer aggregates dropbacks where key is the passer.
func Passer(plays []model.Play, key model.PlayerKey) (model.StatLine, bool) {
	qb := selectRole(plays, model.RolePasser, key)
	n := len(qb)
	if n == 0 {
		return model.StatLine{}, false
	}

	var completions []model.Play
	for _, p := range qb {
		if p.CompletePass == 1 {
			completions = append(completions, p)
		}
	}

	return model.StatLine{
		Key: key,
		Metrics: map[model.Metric]float64{
			model.MetricPlays:       float64(n),
			model.MetricEPAPerPlay:  mean(qb, epa),
			model.MetricSuccessRate: rate(sum(qb, success), n),
			model.MetricCPOE:        mean(qb, cpoe),
			model.MetricAirYardsAtt: mean(qb, airYards),
			model.MetricYACPerComp:  mean(completions, yac),
			model.MetricPassTDs:     sum(qb, passTD),
			model.MetricINTs:        sum(qb, interception),
			model.MetricSacks:       sum(qb, sack),
			model.MetricCompPct:     rate(sum(qb, complete), n),
		},
	}, true
}

// RushReceive aggregates a back's carries and targets separately. A sub-role
// with no plays reports zeros rather than no data.
func RushReceive(plays []model.Play, key model.PlayerKey) (model.StatLine, bool) {
	rush := selectRole(plays, model.RoleRusher, key)
	rec := selectRole(plays, model.RoleReceiver, key)
	if len(rush) == 0 && len(rec) == 0 {
		return model.StatLine{}, false
	}

	return model.StatLine{
		Key: key,
		Metrics: map[model.Metric]float64{
			model.MetricRushAttempts:    float64(len(rush)),
			model.MetricRushEPAPerPlay:  zeroIfEmpty(rush, func() float64 { return mean(rush, epa) }),
			model.MetricRushSuccessRate: zeroIfEmpty(rush, func() float64 { return rate(sum(rush, success), len(rush)) }),
			model.MetricRushYards:       sum(rush, yardsGained),
			model.MetricRushTDs:         sum(rush, rushTD),
			model.MetricTargets:         float64(len(rec)),
			model.MetricRecEPAPerTarget: zeroIfEmpty(rec, func() float64 { return mean(rec, epa) }),
			model.MetricReceptions:      sum(rec, complete),
			model.MetricRecYards:        sum(rec, yardsGained),
			model.MetricRecTDs:          sum(rec, passTD),
		},
	}, true
}

// Receiver aggregates targets where key is the intended receiver.
func Receiver(plays []model.Play, key model.PlayerKey) (model.StatLine, bool) {
	rec := selectRole(plays, model.RoleReceiver, key)
	n := len(rec)
	if n == 0 {
		return model.StatLine{}, false
	}
	receptions := sum(rec, complete)

	return model.StatLine{
		Key: key,
		Metrics: map[model.Metric]float64{
			model.MetricTargets:        float64(n),
			model.MetricEPAPerTarget:   mean(rec, epa),
			model.MetricSuccessRate:    rate(sum(rec, success), n),
			model.MetricReceptions:     receptions,
			model.MetricCatchPct:       rate(receptions, n),
			model.MetricYards:          sum(rec, yardsGained),
			model.MetricYardsPerTarget: mean(rec, yardsGained),
			model.MetricAirYards:       sum(rec, airYards),
			model.MetricYAC:            sum(rec, yac),
			model.MetricTDs:            sum(rec, passTD),
			model.MetricFirstDowns:     sum(rec, firstDown),
		},
	}, true
}

// selectRole returns the plays where key took role, preserving input order.
func selectRole(plays []model.Play, role model.Role, key model.PlayerKey) []model.Play {
	var out []model.Play
	for i := range plays {
		if plays[i].Involves(role, key) {
			out = append(out, plays[i])
		}
	}
	return out
}

type field func(*model.Play) float64

func epa(p *model.Play) float64          { return p.EPA }
func success(p *model.Play) float64      { return p.Success }
func cpoe(p *model.Play) float64         { return p.CPOE }
func airYards(p *model.Play) float64     { return p.AirYards }
func yac(p *model.Play) float64          { return p.YardsAfterCatch }
func yardsGained(p *model.Play) float64  { return p.YardsGained }
func complete(p *model.Play) float64     { return p.CompletePass }
func passTD(p *model.Play) float64       { return p.PassTouchdown }
func rushTD(p *model.Play) float64       { return p.RushTouchdown }
func interception(p *model.Play) float64 { return p.Interception }
func sack(p *model.Play) float64         { return p.Sack }
func firstDown(p *model.Play) float64    { return p.FirstDown }

// sum adds f over plays, skipping missing values. An empty input sums to 0.
func sum(plays []model.Play, f field) float64 {
	total := 0.0
	for i := range plays {
		v := f(&plays[i])
		if math.IsNaN(v) {
			continue
		}
		total += v
	}
	return total
}

// mean averages f over plays, skipping missing values. With nothing to
// average the result is the no-data sentinel.
func mean(plays []model.Play, f field) float64 {
	total, n := 0.0, 0
	for i := range plays {
		v := f(&plays[i])
		if math.IsNaN(v) {
			continue
		}
		total += v
		n++
	}
	if n == 0 {
		return model.NoData()
	}
	return total / float64(n)
}

// rate expresses count/n as a percentage.
func rate(count float64, n int) float64 {
	if n == 0 {
		return model.NoData()
	}
	return count / float64(n) * 100
}

func zeroIfEmpty(plays []model.Play, compute func() float64) float64 {
	if len(plays) == 0 {
		return 0
	}
	return compute()
}
