package analysis

import (
	"fmt"
	"math"

	"cycling-planner/internal/store"
)

// Phase is a detected training phase label.
type Phase string

const (
	PhaseUnknown       Phase = "Unknown"
	PhaseBuildPeak     Phase = "Build/Peak"
	PhaseGeneral       Phase = "General Training"
	PhaseRecoveryTrans Phase = "Recovery/Transition"
	PhaseBaseBuilding  Phase = "Base Building"
	PhaseOverload      Phase = "Overload (Risky)"
	PhaseIntensify     Phase = "Build/Intensification"
	PhaseTaperRecovery Phase = "Taper/Recovery"
	PhasePeakRacePrep  Phase = "Peak/Race Prep"
	PhaseTransitionOff Phase = "Transition/Off-Season"
	PhaseMaintenance   Phase = "Maintenance"
)

// PeriodLoad is the volume and intensity of one period, as produced by
// AggregateLoad and AggregateIntensity.
type PeriodLoad struct {
	Hours      float64
	IF         float64
	Activities int
}

// LoadOf summarizes activities for classification.
func LoadOf(activities []store.ActivitySummary) PeriodLoad {
	return PeriodLoad{
		Hours:      AggregateLoad(activities).TotalHours,
		IF:         AggregateIntensity(activities).AvgIntensityFactor,
		Activities: len(activities),
	}
}

// PhaseClassification is the detected phase with the evidence behind it.
type PhaseClassification struct {
	Phase          Phase
	Confidence     float64
	Description    string
	Warning        bool
	VolumeTrend    float64 // % change in hours vs previous period
	IntensityTrend float64 // % change in IF vs previous period
	Current        PeriodLoad
	Previous       *PeriodLoad
}

type phaseSignals struct {
	hours, intensity   float64
	volTrend, intTrend float64
}

type phaseRule struct {
	phase      Phase
	confidence float64
	warning    bool
	when       func(s phaseSignals) bool
	describe   func(s phaseSignals) string
}

func fixed(text string) func(phaseSignals) string {
	return func(phaseSignals) string { return text }
}

// absoluteRules classify a period on its own; the last rule always matches.
var absoluteRules = []phaseRule{
	{PhaseBuildPeak, 0.6, false, func(s phaseSignals) bool { return s.intensity > 0.80 }, fixed("High intensity training detected")},
	{PhaseBaseBuilding, 0.6, false, func(s phaseSignals) bool { return s.hours > 10 }, fixed("High volume training detected")},
	{PhaseRecoveryTrans, 0.6, false, func(s phaseSignals) bool { return s.hours < 5 }, fixed("Low volume period")},
	{PhaseGeneral, 0.5, false, func(phaseSignals) bool { return true }, fixed("Moderate volume and intensity")},
}

// trendRules classify a period against the previous one; first match wins.
var trendRules = []phaseRule{
	{
		PhaseBaseBuilding, 0.8, false,
		func(s phaseSignals) bool { return s.volTrend > 10 && math.Abs(s.intTrend) < 10 },
		func(s phaseSignals) string { return fmt.Sprintf("Volume up %.0f%%, intensity stable", s.volTrend) },
	},
	{
		PhaseOverload, 0.9, true,
		func(s phaseSignals) bool { return s.volTrend > 10 && s.intTrend > 10 },
		func(s phaseSignals) string {
			return fmt.Sprintf("Both volume (+%.0f%%) and intensity (+%.0f%%) increasing", s.volTrend, s.intTrend)
		},
	},
	{
		PhaseIntensify, 0.8, false,
		func(s phaseSignals) bool { return math.Abs(s.volTrend) < 10 && s.intTrend > 10 },
		func(s phaseSignals) string { return fmt.Sprintf("Volume stable, intensity up %.0f%%", s.intTrend) },
	},
	{
		PhaseTaperRecovery, 0.9, false,
		func(s phaseSignals) bool { return s.volTrend < -20 },
		func(s phaseSignals) string { return fmt.Sprintf("Volume down %.0f%%", math.Abs(s.volTrend)) },
	},
	{
		PhasePeakRacePrep, 0.7, false,
		func(s phaseSignals) bool { return s.intensity > 0.85 && s.hours > 8 },
		fixed("High intensity and volume maintained"),
	},
	{
		PhaseTransitionOff, 0.8, false,
		func(s phaseSignals) bool { return s.hours < 5 && s.intensity < 0.70 },
		fixed("Low volume and intensity"),
	},
	{PhaseMaintenance, 0.6, false, func(phaseSignals) bool { return true }, fixed("Stable training load")},
}

// ClassifyPhase labels the current period. Without a previous period (or
// with an empty one) absolute thresholds are used; otherwise the volume and
// intensity trends decide.
func ClassifyPhase(current PeriodLoad, previous *PeriodLoad) PhaseClassification {
	if current.Activities == 0 {
		return PhaseClassification{Phase: PhaseUnknown, Description: "No data available", Current: current}
	}

	s := phaseSignals{hours: current.Hours, intensity: current.IF}
	rules := absoluteRules
	if previous != nil && previous.Activities > 0 {
		s.volTrend = percentChange(current.Hours, previous.Hours)
		s.intTrend = percentChange(current.IF, previous.IF)
		rules = trendRules
	} else {
		previous = nil
	}

	for _, r := range rules {
		if !r.when(s) {
			continue
		}
		return PhaseClassification{
			Phase:          r.phase,
			Confidence:     r.confidence,
			Description:    r.describe(s),
			Warning:        r.warning,
			VolumeTrend:    s.volTrend,
			IntensityTrend: s.intTrend,
			Current:        current,
			Previous:       previous,
		}
	}
	panic("unreachable: phase rule tables end with a catch-all")
}

// ClassifyPeriods is ClassifyPhase over raw activity slices. A nil or
// empty previous slice means no comparison period.
func ClassifyPeriods(current, previous []store.ActivitySummary) PhaseClassification {
	var prev *PeriodLoad
	if len(previous) > 0 {
		p := LoadOf(previous)
		prev = &p
	}
	return ClassifyPhase(LoadOf(current), prev)
}

func percentChange(cur, prev float64) float64 {
	if prev <= 0 {
		return 0
	}
	return (cur - prev) / prev * 100
}
