package analysis

import (
	"math"
	"testing"
	"time"

	"cycling-planner/internal/store"
)

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 8, 0, 0, 0, time.UTC)
}

func approx(a, b, delta float64) bool {
	return math.Abs(a-b) <= delta
}

func TestAggregateLoad(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		got := AggregateLoad(nil)
		if got != (LoadSummary{}) {
			t.Errorf("AggregateLoad(nil) = %+v, want zero value", got)
		}
	})

	t.Run("sums with missing tss", func(t *testing.T) {
		activities := []store.ActivitySummary{
			{MovingTime: 3600, Distance: 30000, TotalElevationGain: 200, TrainingStressScore: floatPtr(60), Kilojoules: floatPtr(700)},
			{MovingTime: 7200, Distance: 60000, TotalElevationGain: 400},
		}
		got := AggregateLoad(activities)

		if got.TotalTSS != 60 {
			t.Errorf("TotalTSS = %v, want 60", got.TotalTSS)
		}
		if got.TotalHours != 3 {
			t.Errorf("TotalHours = %v, want 3", got.TotalHours)
		}
		if got.TotalKilojoules != 700 {
			t.Errorf("TotalKilojoules = %v, want 700", got.TotalKilojoules)
		}
		if got.TotalDistanceKM != 90 {
			t.Errorf("TotalDistanceKM = %v, want 90", got.TotalDistanceKM)
		}
		if got.TotalElevationM != 600 {
			t.Errorf("TotalElevationM = %v, want 600", got.TotalElevationM)
		}
		if got.ActivityCount != 2 {
			t.Errorf("ActivityCount = %v, want 2", got.ActivityCount)
		}
		if got.AvgTSSPerActivity != 30 {
			t.Errorf("AvgTSSPerActivity = %v, want 30", got.AvgTSSPerActivity)
		}
		if got.AvgHoursPerActivity != 1.5 {
			t.Errorf("AvgHoursPerActivity = %v, want 1.5", got.AvgHoursPerActivity)
		}
	})
}

func TestAggregateIntensity(t *testing.T) {
	tests := []struct {
		name       string
		activities []store.ActivitySummary
		wantIF     float64
		wantNP     float64
	}{
		{
			name:       "empty",
			activities: nil,
		},
		{
			name: "weighted by moving time",
			activities: []store.ActivitySummary{
				{MovingTime: 3600, IntensityFactor: floatPtr(0.60), NormalizedPower: floatPtr(180)},
				{MovingTime: 10800, IntensityFactor: floatPtr(0.80), NormalizedPower: floatPtr(240)},
			},
			// (0.6*1 + 0.8*3) / 4
			wantIF: 0.75,
			wantNP: 225,
		},
		{
			name: "missing IF excluded, NP still counted",
			activities: []store.ActivitySummary{
				{MovingTime: 3600, IntensityFactor: floatPtr(0.70), NormalizedPower: floatPtr(200)},
				{MovingTime: 3600, NormalizedPower: floatPtr(220)},
			},
			wantIF: 0.70,
			wantNP: 210,
		},
		{
			name: "no moving time",
			activities: []store.ActivitySummary{
				{MovingTime: 0, IntensityFactor: floatPtr(0.9)},
			},
			wantIF: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AggregateIntensity(tt.activities)
			if !approx(got.AvgIntensityFactor, tt.wantIF, 1e-9) {
				t.Errorf("AvgIntensityFactor = %v, want %v", got.AvgIntensityFactor, tt.wantIF)
			}
			if !approx(got.AvgNormalizedPower, tt.wantNP, 1e-9) {
				t.Errorf("AvgNormalizedPower = %v, want %v", got.AvgNormalizedPower, tt.wantNP)
			}
			if got.AvgPower != 0 {
				t.Errorf("AvgPower = %v, want 0 with no average_watts", got.AvgPower)
			}
		})
	}
}

func tid(z1, z2, z3 float64) [store.NumTIDZones]*float64 {
	return [store.NumTIDZones]*float64{floatPtr(z1), floatPtr(z2), floatPtr(z3)}
}

func TestAggregateTID(t *testing.T) {
	t.Run("equal durations average the percentages", func(t *testing.T) {
		got := AggregateTID([]store.ActivitySummary{
			{MovingTime: 3600, TIDZonePct: tid(80, 10, 10)},
			{MovingTime: 3600, TIDZonePct: tid(60, 20, 20)},
		})
		want := TIDSummary{Z1: 70, Z2: 15, Z3: 15}
		if !approx(got.Z1, want.Z1, 1e-9) || !approx(got.Z2, want.Z2, 1e-9) || !approx(got.Z3, want.Z3, 1e-9) {
			t.Errorf("AggregateTID() = %+v, want %+v", got, want)
		}
	})

	t.Run("long ride dominates", func(t *testing.T) {
		got := AggregateTID([]store.ActivitySummary{
			{MovingTime: 3600, TIDZonePct: tid(0, 0, 100)},
			{MovingTime: 10800, TIDZonePct: tid(100, 0, 0)},
		})
		if !approx(got.Z1, 75, 1e-9) || !approx(got.Z3, 25, 1e-9) {
			t.Errorf("AggregateTID() = %+v, want Z1=75 Z3=25", got)
		}
	})

	t.Run("sums to 100", func(t *testing.T) {
		got := AggregateTID([]store.ActivitySummary{
			{MovingTime: 5400, TIDZonePct: tid(70, 20, 9)},
			{MovingTime: 2000, TIDZonePct: tid(33, 33, 33)},
		})
		if !approx(got.Z1+got.Z2+got.Z3, 100, 1e-9) {
			t.Errorf("AggregateTID() sum = %v, want 100", got.Z1+got.Z2+got.Z3)
		}
	})

	t.Run("partial zones skipped", func(t *testing.T) {
		partial := store.ActivitySummary{MovingTime: 3600}
		partial.TIDZonePct[0] = floatPtr(100)
		got := AggregateTID([]store.ActivitySummary{partial})
		if got != (TIDSummary{}) {
			t.Errorf("AggregateTID() = %+v, want zero value", got)
		}
	})
}

func TestAggregatePhysiology(t *testing.T) {
	activities := []store.ActivitySummary{
		{IntensityFactor: floatPtr(0.65), EfficiencyFactor: floatPtr(1.5), PowerHRDecoupling: floatPtr(3)},
		{IntensityFactor: floatPtr(0.70), EfficiencyFactor: floatPtr(1.7), PowerHRDecoupling: floatPtr(5)},
		// too hard
		{IntensityFactor: floatPtr(0.90), EfficiencyFactor: floatPtr(2.0), PowerHRDecoupling: floatPtr(8)},
		// race
		{IntensityFactor: floatPtr(0.70), EfficiencyFactor: floatPtr(2.0), PowerHRDecoupling: floatPtr(8), WorkoutType: intPtr(store.WorkoutTypeRace)},
		// missing decoupling
		{IntensityFactor: floatPtr(0.60), EfficiencyFactor: floatPtr(2.0)},
	}

	got := AggregatePhysiology(activities, true)
	if got.FilteredCount != 2 {
		t.Errorf("FilteredCount = %d, want 2", got.FilteredCount)
	}
	if !approx(got.AvgEfficiencyFactor, 1.6, 1e-9) {
		t.Errorf("AvgEfficiencyFactor = %v, want 1.6", got.AvgEfficiencyFactor)
	}
	if !approx(got.AvgDecoupling, 4, 1e-9) {
		t.Errorf("AvgDecoupling = %v, want 4", got.AvgDecoupling)
	}

	all := AggregatePhysiology(activities, false)
	if all.FilteredCount != 5 {
		t.Errorf("unfiltered FilteredCount = %d, want 5", all.FilteredCount)
	}
	if !approx(all.AvgEfficiencyFactor, 1.84, 1e-9) {
		t.Errorf("unfiltered AvgEfficiencyFactor = %v, want 1.84", all.AvgEfficiencyFactor)
	}

	none := AggregatePhysiology(activities[2:4], true)
	if none != (PhysiologySummary{}) {
		t.Errorf("AggregatePhysiology() = %+v, want zero value", none)
	}
}

func TestPowerCurveMax(t *testing.T) {
	a := store.ActivitySummary{}
	a.PowerCurve[0] = floatPtr(900)
	a.PowerCurve[9] = floatPtr(300)
	b := store.ActivitySummary{}
	b.PowerCurve[0] = floatPtr(1000)
	b.PowerCurve[9] = floatPtr(280)

	curve := PowerCurveMax([]store.ActivitySummary{a, b})
	if len(curve) != store.NumPowerCurvePoints {
		t.Fatalf("PowerCurveMax() returned %d points, want %d", len(curve), store.NumPowerCurvePoints)
	}
	if curve[0].Watts != 1000 || curve[0].Label != "1sec" {
		t.Errorf("curve[0] = %+v, want 1sec at 1000W", curve[0])
	}
	if curve[9].Watts != 300 || curve[9].Seconds != 300 {
		t.Errorf("curve[9] = %+v, want 5min at 300W", curve[9])
	}
	if curve[14].Watts != 0 || curve[14].Label != "1hr" {
		t.Errorf("curve[14] = %+v, want 1hr at 0W", curve[14])
	}
}

func TestPMCData(t *testing.T) {
	activities := []store.ActivitySummary{
		{StartDateLocal: day(2025, 1, 3), CTL: floatPtr(52), ATL: floatPtr(60), TSB: floatPtr(-8)},
		{StartDateLocal: day(2025, 1, 1), CTL: floatPtr(50), ATL: floatPtr(55), TSB: floatPtr(-5)},
		{StartDateLocal: day(2025, 1, 2), CTL: floatPtr(51)},
	}

	points := PMCData(activities)
	if len(points) != 2 {
		t.Fatalf("PMCData() returned %d points, want 2", len(points))
	}
	if points[0].CTL != 50 || points[1].CTL != 52 {
		t.Errorf("PMCData() CTLs = %v, %v, want 50, 52", points[0].CTL, points[1].CTL)
	}

	ctl, ok := LatestCTL(activities)
	if !ok || ctl != 52 {
		t.Errorf("LatestCTL() = %v, %v, want 52, true", ctl, ok)
	}
	if _, ok := LatestCTL(nil); ok {
		t.Error("LatestCTL(nil) ok = true, want false")
	}
}
