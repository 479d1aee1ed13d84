package store

import "time"

const (
	NumPowerZones       = 7
	NumTIDZones         = 3
	NumPowerCurvePoints = 15
)

// WorkoutTypeRace is the workout_type value that marks a race.
const WorkoutTypeRace = 10

// PowerCurveLabels names the best-power durations, shortest first.
var PowerCurveLabels = [NumPowerCurvePoints]string{
	"1sec", "2sec", "5sec", "10sec", "15sec", "20sec", "30sec",
	"1min", "2min", "5min", "10min", "15min", "20min", "30min", "1hr",
}

// PowerCurveSeconds holds the duration in seconds for each PowerCurveLabels entry.
var PowerCurveSeconds = [NumPowerCurvePoints]int{
	1, 2, 5, 10, 15, 20, 30, 60, 120, 300, 600, 900, 1200, 1800, 3600,
}

// ActivitySummary is one completed activity with its precomputed metrics.
// Every pointer field is nullable: nil means the metric is missing, never zero.
type ActivitySummary struct {
	ID                 int64
	Name               string
	SportType          string
	StartDateLocal     time.Time // wall clock of the athlete, carried in UTC
	MovingTime         int       // seconds
	Distance           float64   // meters
	TotalElevationGain float64   // meters

	Kilojoules          *float64
	TrainingStressScore *float64
	IntensityFactor     *float64
	NormalizedPower     *float64
	AverageWatts        *float64
	AverageHeartrate    *float64
	EfficiencyFactor    *float64
	PowerHRDecoupling   *float64 // percent
	FatigueIndex        *float64
	WorkoutType         *int

	PowerZonePct [NumPowerZones]*float64       // % of moving time in power zones 1..7
	TIDZonePct   [NumTIDZones]*float64         // % of moving time in the 3-zone model
	PowerCurve   [NumPowerCurvePoints]*float64 // best average watts per duration

	CTL  *float64 // chronic_training_load
	ATL  *float64 // acute_training_load
	TSB  *float64 // training_stress_balance
	ACWR *float64
}

// Hours returns moving time in hours.
func (a ActivitySummary) Hours() float64 {
	return float64(a.MovingTime) / 3600
}

// IsRace reports whether the activity was tagged as a race.
func (a ActivitySummary) IsRace() bool {
	return a.WorkoutType != nil && *a.WorkoutType == WorkoutTypeRace
}

// Day returns the calendar date of the activity at midnight UTC.
func (a ActivitySummary) Day() time.Time {
	return DateOf(a.StartDateLocal)
}

// DateOf truncates t to its calendar date at midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SyncState is a key/value pair recording import bookkeeping.
type SyncState struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}
