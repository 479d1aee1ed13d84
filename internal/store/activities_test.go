package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

// setupTestDB creates an in-memory database for testing
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }

func TestUpsertAndGetActivity(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	a := &ActivitySummary{
		ID:                  42,
		Name:                "Sweet spot",
		SportType:           "Ride",
		StartDateLocal:      time.Date(2025, 3, 4, 7, 30, 0, 0, time.UTC),
		MovingTime:          5400,
		Distance:            45000,
		TotalElevationGain:  420,
		TrainingStressScore: floatPtr(95.5),
		IntensityFactor:     floatPtr(0.82),
		NormalizedPower:     floatPtr(230),
		WorkoutType:         intPtr(WorkoutTypeRace),
		CTL:                 floatPtr(61.2),
	}
	a.TIDZonePct = [NumTIDZones]*float64{floatPtr(70), floatPtr(20), floatPtr(10)}
	a.PowerCurve[NumPowerCurvePoints-1] = floatPtr(250)

	if err := db.UpsertActivity(ctx, a); err != nil {
		t.Fatalf("UpsertActivity() error = %v", err)
	}

	got, err := db.GetActivity(ctx, 42)
	if err != nil {
		t.Fatalf("GetActivity() error = %v", err)
	}

	if !got.StartDateLocal.Equal(a.StartDateLocal) {
		t.Errorf("StartDateLocal = %v, want %v", got.StartDateLocal, a.StartDateLocal)
	}
	if got.TrainingStressScore == nil || *got.TrainingStressScore != 95.5 {
		t.Errorf("TrainingStressScore = %v, want 95.5", got.TrainingStressScore)
	}
	if got.EfficiencyFactor != nil {
		t.Errorf("EfficiencyFactor = %v, want nil", *got.EfficiencyFactor)
	}
	if !got.IsRace() {
		t.Error("IsRace() = false, want true")
	}
	if got.TIDZonePct[2] == nil || *got.TIDZonePct[2] != 10 {
		t.Errorf("TIDZonePct[2] = %v, want 10", got.TIDZonePct[2])
	}
	if got.PowerCurve[0] != nil {
		t.Errorf("PowerCurve[0] = %v, want nil", *got.PowerCurve[0])
	}
	if got.PowerCurve[NumPowerCurvePoints-1] == nil || *got.PowerCurve[NumPowerCurvePoints-1] != 250 {
		t.Errorf("PowerCurve[1hr] = %v, want 250", got.PowerCurve[NumPowerCurvePoints-1])
	}

	// Update in place
	a.TrainingStressScore = nil
	a.Name = "Sweet spot (edited)"
	if err := db.UpsertActivity(ctx, a); err != nil {
		t.Fatalf("UpsertActivity() update error = %v", err)
	}
	got, err = db.GetActivity(ctx, 42)
	if err != nil {
		t.Fatalf("GetActivity() error = %v", err)
	}
	if got.Name != "Sweet spot (edited)" {
		t.Errorf("Name = %q, want edited name", got.Name)
	}
	if got.TrainingStressScore != nil {
		t.Errorf("TrainingStressScore = %v, want nil after update", *got.TrainingStressScore)
	}

	count, err := db.CountActivities(ctx)
	if err != nil {
		t.Fatalf("CountActivities() error = %v", err)
	}
	if count != 1 {
		t.Errorf("CountActivities() = %d, want 1", count)
	}
}

func TestGetActivityNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetActivity(context.Background(), 999)
	if !errors.Is(err, ErrActivityNotFound) {
		t.Errorf("GetActivity() error = %v, want ErrActivityNotFound", err)
	}

	_, err = db.LatestActivity(context.Background())
	if !errors.Is(err, ErrActivityNotFound) {
		t.Errorf("LatestActivity() error = %v, want ErrActivityNotFound", err)
	}
}

func TestListActivitiesDateRange(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	days := []time.Time{
		time.Date(2025, 1, 5, 23, 59, 0, 0, time.UTC),
		time.Date(2025, 1, 6, 6, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 12, 21, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 13, 0, 1, 0, 0, time.UTC),
	}
	var activities []ActivitySummary
	for i, d := range days {
		activities = append(activities, ActivitySummary{ID: int64(len(days) - i), StartDateLocal: d, MovingTime: 3600})
	}
	if err := db.UpsertActivities(ctx, activities); err != nil {
		t.Fatalf("UpsertActivities() error = %v", err)
	}

	tests := []struct {
		name     string
		from, to time.Time
		wantIDs  []int64
	}{
		{"whole week inclusive", time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC), []int64{3, 2}},
		{"open start", time.Time{}, time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), []int64{4, 3}},
		{"open end", time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC), time.Time{}, []int64{1}},
		{"unbounded", time.Time{}, time.Time{}, []int64{4, 3, 2, 1}},
		{"empty range", time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 2, 7, 0, 0, 0, 0, time.UTC), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.ListActivities(ctx, tt.from, tt.to)
			if err != nil {
				t.Fatalf("ListActivities() error = %v", err)
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("ListActivities() returned %d activities, want %d", len(got), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Errorf("activity[%d].ID = %d, want %d", i, got[i].ID, id)
				}
			}
		})
	}

	latest, err := db.LatestActivity(ctx)
	if err != nil {
		t.Fatalf("LatestActivity() error = %v", err)
	}
	if latest.ID != 1 {
		t.Errorf("LatestActivity().ID = %d, want 1", latest.ID)
	}
}

func TestSyncState(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if _, err := db.GetSyncState(ctx, StateLastImportFile); !errors.Is(err, ErrStateNotFound) {
		t.Errorf("GetSyncState() error = %v, want ErrStateNotFound", err)
	}

	if err := db.SetSyncState(ctx, StateLastImportFile, "a.csv"); err != nil {
		t.Fatalf("SetSyncState() error = %v", err)
	}
	if err := db.SetSyncState(ctx, StateLastImportFile, "b.csv"); err != nil {
		t.Fatalf("SetSyncState() error = %v", err)
	}

	got, err := db.GetSyncState(ctx, StateLastImportFile)
	if err != nil {
		t.Fatalf("GetSyncState() error = %v", err)
	}
	if got.Value != "b.csv" {
		t.Errorf("GetSyncState().Value = %q, want b.csv", got.Value)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("GetSyncState().UpdatedAt is zero")
	}
}
