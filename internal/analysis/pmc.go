package analysis

import (
	"sort"
	"time"

	"cycling-planner/internal/store"
)

// PMCPoint is one Performance Management Chart sample.
type PMCPoint struct {
	Date time.Time
	CTL  float64 // fitness
	ATL  float64 // fatigue
	TSB  float64 // form
}

// PMCData extracts the upstream fitness/fatigue/form values, oldest first.
// Activities missing any of the three are dropped.
func PMCData(activities []store.ActivitySummary) []PMCPoint {
	var points []PMCPoint
	for _, a := range activities {
		if a.CTL == nil || a.ATL == nil || a.TSB == nil {
			continue
		}
		points = append(points, PMCPoint{Date: a.StartDateLocal, CTL: *a.CTL, ATL: *a.ATL, TSB: *a.TSB})
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points
}

// LatestCTL returns the chronic training load of the chronologically last
// activity that carries one.
func LatestCTL(activities []store.ActivitySummary) (float64, bool) {
	var latest *store.ActivitySummary
	for i := range activities {
		a := &activities[i]
		if a.CTL == nil {
			continue
		}
		if latest == nil || !a.StartDateLocal.Before(latest.StartDateLocal) {
			latest = a
		}
	}
	if latest == nil {
		return 0, false
	}
	return *latest.CTL, true
}
