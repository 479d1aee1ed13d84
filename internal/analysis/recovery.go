package analysis

import (
	"math"
	"time"

	"cycling-planner/internal/store"
)

// RestDayMaxTSS is the daily TSS below which a day counts as rest.
const RestDayMaxTSS = 20

// DailyTSS is the summed training stress of one calendar day.
type DailyTSS struct {
	Date time.Time
	TSS  float64
}

// RecoveryMetrics describes how load was spread across days.
//
// Monotony is mean/stddev of daily TSS (population stddev). High values
// (above ~2.0) mean repetitive load; strain above ~6000 signals burnout risk.
type RecoveryMetrics struct {
	Monotony    float64
	Strain      float64
	RestDays    int
	TotalTSS    float64
	AvgDailyTSS float64
	MaxDailyTSS float64
	Daily       []DailyTSS
}

// Recovery builds a daily TSS series from the first to the last activity day
// inclusive, filling days without activities with 0, and derives monotony,
// strain and rest days from it.
func Recovery(activities []store.ActivitySummary) RecoveryMetrics {
	if len(activities) == 0 {
		return RecoveryMetrics{}
	}

	first, last := activities[0].Day(), activities[0].Day()
	for _, a := range activities[1:] {
		d := a.Day()
		if d.Before(first) {
			first = d
		}
		if d.After(last) {
			last = d
		}
	}
	days := int(last.Sub(first).Hours()/24) + 1
	return RecoveryInWindow(activities, first, days)
}

// RecoveryInWindow computes recovery metrics over a fixed calendar window of
// days starting at from. Activities outside the window are ignored.
func RecoveryInWindow(activities []store.ActivitySummary, from time.Time, days int) RecoveryMetrics {
	if days <= 0 {
		return RecoveryMetrics{}
	}
	from = store.DateOf(from)

	byDay := make(map[string]float64)
	for _, a := range activities {
		byDay[a.Day().Format("2006-01-02")] += valueOr(a.TrainingStressScore, 0)
	}

	m := RecoveryMetrics{Daily: make([]DailyTSS, 0, days)}
	for i := 0; i < days; i++ {
		d := from.AddDate(0, 0, i)
		tss := byDay[d.Format("2006-01-02")]
		m.Daily = append(m.Daily, DailyTSS{Date: d, TSS: tss})

		m.TotalTSS += tss
		if tss > m.MaxDailyTSS {
			m.MaxDailyTSS = tss
		}
		if tss < RestDayMaxTSS {
			m.RestDays++
		}
	}

	mean := m.TotalTSS / float64(days)
	m.AvgDailyTSS = mean

	var variance float64
	for _, d := range m.Daily {
		variance += (d.TSS - mean) * (d.TSS - mean)
	}
	std := math.Sqrt(variance / float64(days))

	if days > 1 && std > 0 {
		m.Monotony = mean / std
	}
	m.Strain = m.TotalTSS * m.Monotony
	return m
}
