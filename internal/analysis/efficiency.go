package analysis

import (
	"sort"
	"time"

	"cycling-planner/internal/store"
)

// EfficiencyPoint is one dated efficiency sample.
type EfficiencyPoint struct {
	Date             time.Time
	EfficiencyFactor float64
	Decoupling       *float64
}

// EfficiencyTrend returns dated EF samples, oldest first. Activities without
// a positive EF are always dropped; with steadyOnly set, so are rides at or
// above SteadyStateMaxIF and races.
func EfficiencyTrend(activities []store.ActivitySummary, steadyOnly bool) []EfficiencyPoint {
	var points []EfficiencyPoint
	for _, a := range activities {
		if a.EfficiencyFactor == nil || *a.EfficiencyFactor <= 0 {
			continue
		}
		if steadyOnly && (a.IntensityFactor == nil || *a.IntensityFactor >= SteadyStateMaxIF || a.IsRace()) {
			continue
		}
		points = append(points, EfficiencyPoint{
			Date:             a.StartDateLocal,
			EfficiencyFactor: *a.EfficiencyFactor,
			Decoupling:       a.PowerHRDecoupling,
		})
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points
}

// EfficiencyChange compares the mean EF of the last n samples with the n
// before them and returns the change in percent. ok is false when there
// are fewer than 2n samples.
func EfficiencyChange(points []EfficiencyPoint, n int) (pct float64, ok bool) {
	if n <= 0 || len(points) < 2*n {
		return 0, false
	}

	mean := func(ps []EfficiencyPoint) float64 {
		var sum float64
		for _, p := range ps {
			sum += p.EfficiencyFactor
		}
		return sum / float64(len(ps))
	}

	recent := mean(points[len(points)-n:])
	prior := mean(points[len(points)-2*n : len(points)-n])
	if prior == 0 {
		return 0, false
	}
	return (recent - prior) / prior * 100, true
}
