package analysis

import "cycling-planner/internal/store"

// PowerCurvePoint is the best average power for one duration.
type PowerCurvePoint struct {
	Label   string
	Seconds int
	Watts   float64
}

// PowerCurveMax takes, for every duration, the maximum best-power across
// activities. Durations with no data report 0.
func PowerCurveMax(activities []store.ActivitySummary) []PowerCurvePoint {
	curve := make([]PowerCurvePoint, store.NumPowerCurvePoints)
	for i := range curve {
		curve[i] = PowerCurvePoint{Label: store.PowerCurveLabels[i], Seconds: store.PowerCurveSeconds[i]}
	}

	for _, a := range activities {
		for i, w := range a.PowerCurve {
			if w != nil && *w > curve[i].Watts {
				curve[i].Watts = *w
			}
		}
	}
	return curve
}
