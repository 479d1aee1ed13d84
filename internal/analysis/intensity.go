package analysis

import "cycling-planner/internal/store"

// SteadyStateMaxIF is the intensity factor below which a ride counts as steady aerobic work.
const SteadyStateMaxIF = 0.75

// IntensitySummary holds moving-time weighted intensity averages.
type IntensitySummary struct {
	AvgIntensityFactor float64
	AvgNormalizedPower float64
	AvgPower           float64
}

// TIDSummary is a 3-zone training intensity distribution in percent.
type TIDSummary struct {
	Z1 float64
	Z2 float64
	Z3 float64
}

// PhysiologySummary holds aerobic efficiency averages.
type PhysiologySummary struct {
	AvgEfficiencyFactor float64
	AvgDecoupling       float64
	FilteredCount       int
}

// weightedMean averages field over activities, weighting by moving time.
// Activities whose field is missing are left out of both sums.
func weightedMean(activities []store.ActivitySummary, field func(store.ActivitySummary) *float64) float64 {
	var sum, seconds float64
	for _, a := range activities {
		v := field(a)
		if v == nil {
			continue
		}
		sum += *v * float64(a.MovingTime)
		seconds += float64(a.MovingTime)
	}
	if seconds == 0 {
		return 0
	}
	return sum / seconds
}

// AggregateIntensity returns IF, NP and average power weighted by moving time.
func AggregateIntensity(activities []store.ActivitySummary) IntensitySummary {
	return IntensitySummary{
		AvgIntensityFactor: weightedMean(activities, func(a store.ActivitySummary) *float64 { return a.IntensityFactor }),
		AvgNormalizedPower: weightedMean(activities, func(a store.ActivitySummary) *float64 { return a.NormalizedPower }),
		AvgPower:           weightedMean(activities, func(a store.ActivitySummary) *float64 { return a.AverageWatts }),
	}
}

// AggregateTID rebuilds seconds per zone from each activity's percentages,
// sums them and renormalizes. Activities missing any zone are skipped.
func AggregateTID(activities []store.ActivitySummary) TIDSummary {
	var zone [store.NumTIDZones]float64
	for _, a := range activities {
		if a.TIDZonePct[0] == nil || a.TIDZonePct[1] == nil || a.TIDZonePct[2] == nil {
			continue
		}
		for i, pct := range a.TIDZonePct {
			zone[i] += *pct * float64(a.MovingTime) / 100
		}
	}

	total := zone[0] + zone[1] + zone[2]
	if total <= 0 {
		return TIDSummary{}
	}
	return TIDSummary{
		Z1: zone[0] / total * 100,
		Z2: zone[1] / total * 100,
		Z3: zone[2] / total * 100,
	}
}

// IsSteadyState reports whether an activity qualifies for efficiency trending:
// intensity below SteadyStateMaxIF, not a race, with EF and decoupling present.
func IsSteadyState(a store.ActivitySummary) bool {
	return a.IntensityFactor != nil && *a.IntensityFactor < SteadyStateMaxIF &&
		!a.IsRace() &&
		a.EfficiencyFactor != nil && a.PowerHRDecoupling != nil
}

// AggregatePhysiology averages efficiency factor and decoupling. With
// steadyOnly set, only steady-state rides contribute.
func AggregatePhysiology(activities []store.ActivitySummary, steadyOnly bool) PhysiologySummary {
	var s PhysiologySummary
	var efSum, decSum float64
	var efN, decN int

	for _, a := range activities {
		if steadyOnly && !IsSteadyState(a) {
			continue
		}
		s.FilteredCount++
		if a.EfficiencyFactor != nil {
			efSum += *a.EfficiencyFactor
			efN++
		}
		if a.PowerHRDecoupling != nil {
			decSum += *a.PowerHRDecoupling
			decN++
		}
	}

	if efN > 0 {
		s.AvgEfficiencyFactor = efSum / float64(efN)
	}
	if decN > 0 {
		s.AvgDecoupling = decSum / float64(decN)
	}
	return s
}
