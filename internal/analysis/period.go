package analysis

import (
	"time"

	"cycling-planner/internal/store"
)

// Window is a calendar-date range, inclusive on both ends.
type Window struct {
	Label string
	From  time.Time
	To    time.Time
}

// Days returns the number of calendar days the window spans.
func (w Window) Days() int {
	return int(store.DateOf(w.To).Sub(store.DateOf(w.From)).Hours()/24) + 1
}

// Contains reports whether t falls on a day inside the window.
func (w Window) Contains(t time.Time) bool {
	d := store.DateOf(t)
	return !d.Before(store.DateOf(w.From)) && !d.After(store.DateOf(w.To))
}

// Filter returns a new slice with the activities inside the window.
func (w Window) Filter(activities []store.ActivitySummary) []store.ActivitySummary {
	var out []store.ActivitySummary
	for _, a := range activities {
		if w.Contains(a.StartDateLocal) {
			out = append(out, a)
		}
	}
	return out
}

// PeriodAggregate bundles every aggregate for one window.
type PeriodAggregate struct {
	Window     Window
	Load       LoadSummary
	Intensity  IntensitySummary
	TID        TIDSummary
	Physiology PhysiologySummary
	PowerCurve []PowerCurvePoint
	Recovery   RecoveryMetrics
}

// AnalyzePeriod computes all aggregates for the activities of one window.
// Recovery metrics cover every day of the window, rest days included.
func AnalyzePeriod(w Window, activities []store.ActivitySummary) PeriodAggregate {
	in := w.Filter(activities)
	return PeriodAggregate{
		Window:     w,
		Load:       AggregateLoad(in),
		Intensity:  AggregateIntensity(in),
		TID:        AggregateTID(in),
		Physiology: AggregatePhysiology(in, true),
		PowerCurve: PowerCurveMax(in),
		Recovery:   RecoveryInWindow(in, w.From, w.Days()),
	}
}

// startOfWeek returns the Monday of t's week.
func startOfWeek(t time.Time) time.Time {
	d := store.DateOf(t)
	weekday := int(d.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	return d.AddDate(0, 0, -(weekday - 1))
}

// WeeklyWindows returns n Monday-to-Sunday windows ending with the week
// containing now, oldest first.
func WeeklyWindows(now time.Time, n int) []Window {
	monday := startOfWeek(now)
	windows := make([]Window, 0, n)
	for i := n - 1; i >= 0; i-- {
		from := monday.AddDate(0, 0, -7*i)
		windows = append(windows, Window{
			Label: from.Format("Jan 02"),
			From:  from,
			To:    from.AddDate(0, 0, 6),
		})
	}
	return windows
}

// MonthlyWindows returns n calendar-month windows ending with now's month,
// oldest first.
func MonthlyWindows(now time.Time, n int) []Window {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	windows := make([]Window, 0, n)
	for i := n - 1; i >= 0; i-- {
		from := first.AddDate(0, -i, 0)
		windows = append(windows, Window{
			Label: from.Format("Jan 2006"),
			From:  from,
			To:    from.AddDate(0, 1, -1),
		})
	}
	return windows
}

// TrailingWindow returns the days-long window ending on now.
func TrailingWindow(now time.Time, days int, label string) Window {
	to := store.DateOf(now)
	return Window{Label: label, From: to.AddDate(0, 0, -(days - 1)), To: to}
}
