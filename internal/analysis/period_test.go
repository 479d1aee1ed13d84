package analysis

import (
	"context"
	"testing"
	"time"

	"cycling-planner/internal/store"
)

func TestWeeklyWindows(t *testing.T) {
	// Thursday
	now := time.Date(2025, 1, 16, 15, 0, 0, 0, time.UTC)
	windows := WeeklyWindows(now, 3)

	if len(windows) != 3 {
		t.Fatalf("WeeklyWindows() returned %d windows, want 3", len(windows))
	}
	last := windows[2]
	if !last.From.Equal(time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("last window From = %v, want Monday 2025-01-13", last.From)
	}
	if !last.To.Equal(time.Date(2025, 1, 19, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("last window To = %v, want Sunday 2025-01-19", last.To)
	}
	if !windows[0].From.Equal(time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("first window From = %v, want 2024-12-30", windows[0].From)
	}
	if last.Days() != 7 {
		t.Errorf("Days() = %d, want 7", last.Days())
	}

	// Sunday belongs to the week that started the previous Monday
	sunday := WeeklyWindows(time.Date(2025, 1, 19, 9, 0, 0, 0, time.UTC), 1)
	if !sunday[0].From.Equal(time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Sunday window From = %v, want 2025-01-13", sunday[0].From)
	}
}

func TestMonthlyWindows(t *testing.T) {
	windows := MonthlyWindows(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), 3)
	if len(windows) != 3 {
		t.Fatalf("MonthlyWindows() returned %d windows, want 3", len(windows))
	}
	if windows[0].Label != "Jan 2025" || windows[2].Label != "Mar 2025" {
		t.Errorf("labels = %q..%q, want Jan 2025..Mar 2025", windows[0].Label, windows[2].Label)
	}
	if windows[1].Days() != 28 {
		t.Errorf("February Days() = %d, want 28", windows[1].Days())
	}
}

func TestAnalyzePeriod(t *testing.T) {
	w := Window{From: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), To: time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC)}
	activities := []store.ActivitySummary{
		{StartDateLocal: day(2025, 1, 5), MovingTime: 3600, TrainingStressScore: floatPtr(500)},
		{StartDateLocal: day(2025, 1, 6), MovingTime: 3600, TrainingStressScore: floatPtr(60), IntensityFactor: floatPtr(0.7)},
		{StartDateLocal: time.Date(2025, 1, 12, 23, 30, 0, 0, time.UTC), MovingTime: 7200, TrainingStressScore: floatPtr(90), IntensityFactor: floatPtr(0.7)},
	}

	got := AnalyzePeriod(w, activities)
	if got.Load.ActivityCount != 2 {
		t.Errorf("ActivityCount = %d, want 2", got.Load.ActivityCount)
	}
	if got.Load.TotalTSS != 150 {
		t.Errorf("TotalTSS = %v, want 150", got.Load.TotalTSS)
	}
	if len(got.Recovery.Daily) != 7 {
		t.Errorf("Recovery days = %d, want 7", len(got.Recovery.Daily))
	}
	if got.Recovery.RestDays != 5 {
		t.Errorf("RestDays = %d, want 5", got.Recovery.RestDays)
	}
	if !approx(got.Intensity.AvgIntensityFactor, 0.7, 1e-9) {
		t.Errorf("AvgIntensityFactor = %v, want 0.7", got.Intensity.AvgIntensityFactor)
	}
}

func TestAnalyzeWindows(t *testing.T) {
	now := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	var activities []store.ActivitySummary
	for d := 1; d <= 31; d++ {
		activities = append(activities, store.ActivitySummary{
			StartDateLocal:      day(2025, 1, d),
			MovingTime:          3600,
			TrainingStressScore: floatPtr(float64(d)),
		})
	}
	windows := WeeklyWindows(now, 5)

	got, err := AnalyzeWindows(context.Background(), activities, windows, 2)
	if err != nil {
		t.Fatalf("AnalyzeWindows() error = %v", err)
	}
	if len(got) != len(windows) {
		t.Fatalf("AnalyzeWindows() returned %d results, want %d", len(got), len(windows))
	}
	for i, agg := range got {
		want := AnalyzePeriod(windows[i], activities)
		if agg.Load != want.Load {
			t.Errorf("window %d load = %+v, want %+v", i, agg.Load, want.Load)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := AnalyzeWindows(ctx, activities, windows, 2); err == nil {
		t.Error("AnalyzeWindows() with cancelled context error = nil, want error")
	}
}
