package model

import (
	"fmt"
	"strings"
)

// Metric is a column name in a comparison table.
type Metric string

// Passer metrics.
const (
	MetricPlays       Metric = "Plays"
	MetricEPAPerPlay  Metric = "EPA/Play"
	MetricSuccessRate Metric = "Success Rate"
	MetricCPOE        Metric = "CPOE"
	MetricAirYardsAtt Metric = "Air Yards/Att"
	MetricYACPerComp  Metric = "YAC/Comp"
	MetricPassTDs     Metric = "Pass TDs"
	MetricINTs        Metric = "INTs"
	MetricSacks       Metric = "Sacks"
	MetricCompPct     Metric = "Comp %"
)

// Rusher/receiver metrics.
const (
	MetricRushAttempts    Metric = "Rush Attempts"
	MetricRushEPAPerPlay  Metric = "Rush EPA/Play"
	MetricRushSuccessRate Metric = "Rush Success Rate"
	MetricRushYards       Metric = "Rush Yards"
	MetricRushTDs         Metric = "Rush TDs"
	MetricTargets         Metric = "Targets"
	MetricRecEPAPerTarget Metric = "Rec EPA/Target"
	MetricReceptions      Metric = "Receptions"
	MetricRecYards        Metric = "Rec Yards"
	MetricRecTDs          Metric = "Rec TDs"
)

// Receiver-only metrics. Targets, Success Rate and Receptions are shared.
const (
	MetricEPAPerTarget   Metric = "EPA/Target"
	MetricCatchPct       Metric = "Catch %"
	MetricYards          Metric = "Yards"
	MetricYardsPerTarget Metric = "Yards/Target"
	MetricAirYards       Metric = "Air Yards"
	MetricYAC            Metric = "YAC"
	MetricTDs            Metric = "TDs"
	MetricFirstDowns     Metric = "First Downs"
)

// Precision is the number of decimals a metric is displayed with.
type Precision int

const (
	PrecisionInteger    Precision = 0
	PrecisionHundredths Precision = 2
)

// MetricInfo describes one metric.
type MetricInfo struct {
	Metric      Metric
	Description string
	Precision   Precision
}

var metricInfo = map[Metric]MetricInfo{
	MetricPlays:           {MetricPlays, "Total number of plays", PrecisionInteger},
	MetricEPAPerPlay:      {MetricEPAPerPlay, "Expected Points Added per play - measures how much value a player adds", PrecisionHundredths},
	MetricSuccessRate:     {MetricSuccessRate, "Percentage of plays with positive EPA", PrecisionHundredths},
	MetricCPOE:            {MetricCPOE, "Completion Percentage Over Expected - accuracy vs difficulty of throws", PrecisionHundredths},
	MetricAirYardsAtt:     {MetricAirYardsAtt, "Average depth of target downfield", PrecisionHundredths},
	MetricYACPerComp:      {MetricYACPerComp, "Yards After Catch per completion", PrecisionHundredths},
	MetricPassTDs:         {MetricPassTDs, "Passing touchdowns", PrecisionInteger},
	MetricINTs:            {MetricINTs, "Interceptions thrown", PrecisionInteger},
	MetricSacks:           {MetricSacks, "Times sacked", PrecisionInteger},
	MetricCompPct:         {MetricCompPct, "Completion percentage", PrecisionHundredths},
	MetricRushAttempts:    {MetricRushAttempts, "Number of rushing attempts", PrecisionInteger},
	MetricRushEPAPerPlay:  {MetricRushEPAPerPlay, "Expected Points Added per rushing attempt", PrecisionHundredths},
	MetricRushSuccessRate: {MetricRushSuccessRate, "Percentage of rushes with positive EPA", PrecisionHundredths},
	MetricRushYards:       {MetricRushYards, "Rushing yards gained", PrecisionHundredths},
	MetricRushTDs:         {MetricRushTDs, "Rushing touchdowns", PrecisionInteger},
	MetricTargets:         {MetricTargets, "Number of times targeted", PrecisionInteger},
	MetricRecEPAPerTarget: {MetricRecEPAPerTarget, "Expected Points Added per target as a receiver", PrecisionHundredths},
	MetricReceptions:      {MetricReceptions, "Number of catches", PrecisionInteger},
	MetricRecYards:        {MetricRecYards, "Receiving yards gained", PrecisionHundredths},
	MetricRecTDs:          {MetricRecTDs, "Receiving touchdowns", PrecisionInteger},
	MetricEPAPerTarget:    {MetricEPAPerTarget, "Expected Points Added per target", PrecisionHundredths},
	MetricCatchPct:        {MetricCatchPct, "Percentage of targets caught", PrecisionHundredths},
	MetricYards:           {MetricYards, "Total yards gained", PrecisionHundredths},
	MetricYardsPerTarget:  {MetricYardsPerTarget, "Average yards per target", PrecisionHundredths},
	MetricAirYards:        {MetricAirYards, "Total air yards (depth of targets)", PrecisionHundredths},
	MetricYAC:             {MetricYAC, "Total yards after catch", PrecisionHundredths},
	MetricTDs:             {MetricTDs, "Touchdowns scored", PrecisionInteger},
	MetricFirstDowns:      {MetricFirstDowns, "First downs gained", PrecisionInteger},
}

var schemas = map[Category][]Metric{
	CategoryPasser: {
		MetricPlays, MetricEPAPerPlay, MetricSuccessRate, MetricCPOE, MetricAirYardsAtt,
		MetricYACPerComp, MetricPassTDs, MetricINTs, MetricSacks, MetricCompPct,
	},
	CategoryRushReceive: {
		MetricRushAttempts, MetricRushEPAPerPlay, MetricRushSuccessRate, MetricRushYards,
		MetricRushTDs, MetricTargets, MetricRecEPAPerTarget, MetricReceptions,
		MetricRecYards, MetricRecTDs,
	},
	CategoryReceiver: {
		MetricTargets, MetricEPAPerTarget, MetricSuccessRate, MetricReceptions,
		MetricCatchPct, MetricYards, MetricYardsPerTarget, MetricAirYards, MetricYAC,
		MetricTDs, MetricFirstDowns,
	},
}

// Schema returns the ordered metric columns an aggregation variant produces.
// The returned slice is a copy.
func Schema(c Category) []Metric {
	return append([]Metric(nil), schemas[c]...)
}

// Info returns the catalogue entry for m.
func Info(m Metric) (MetricInfo, bool) {
	info, ok := metricInfo[m]
	return info, ok
}

// ParseMetric resolves a metric name within a category's schema.
func ParseMetric(c Category, name string) (Metric, error) {
	for _, m := range schemas[c] {
		if strings.EqualFold(string(m), strings.TrimSpace(name)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("metric %q is not reported for %s players", name, c)
}

// Describe returns the tooltip text for m, or "" if m is unknown.
func (m Metric) Describe() string {
	return metricInfo[m].Description
}

// Precision returns the display precision for m. Unknown metrics are
// displayed as integers.
func (m Metric) Precision() Precision {
	info, ok := metricInfo[m]
	if !ok {
		return PrecisionInteger
	}
	return info.Precision
}
