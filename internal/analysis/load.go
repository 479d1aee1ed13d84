package analysis

import "cycling-planner/internal/store"

// LoadSummary holds summed training load over a set of activities.
type LoadSummary struct {
	TotalTSS            float64
	TotalHours          float64
	TotalKilojoules     float64
	TotalDistanceKM     float64
	TotalElevationM     float64
	ActivityCount       int
	AvgTSSPerActivity   float64
	AvgHoursPerActivity float64
}

// AggregateLoad sums TSS, moving time, work, distance and climbing.
// Missing TSS or kilojoules count as zero.
func AggregateLoad(activities []store.ActivitySummary) LoadSummary {
	var s LoadSummary
	if len(activities) == 0 {
		return s
	}

	var movingSeconds float64
	for _, a := range activities {
		s.TotalTSS += valueOr(a.TrainingStressScore, 0)
		s.TotalKilojoules += valueOr(a.Kilojoules, 0)
		movingSeconds += float64(a.MovingTime)
		s.TotalDistanceKM += a.Distance
		s.TotalElevationM += a.TotalElevationGain
	}

	s.ActivityCount = len(activities)
	s.TotalHours = movingSeconds / 3600
	s.TotalDistanceKM /= 1000
	s.AvgTSSPerActivity = s.TotalTSS / float64(s.ActivityCount)
	s.AvgHoursPerActivity = s.TotalHours / float64(s.ActivityCount)
	return s
}

func valueOr(p *float64, fallback float64) float64 {
	if p == nil {
		return fallback
	}
	return *p
}
