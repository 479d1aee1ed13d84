package plan

import (
	"errors"
	"fmt"
	"math"
	"time"

	"cycling-planner/internal/store"
)

var (
	// ErrInvalidHours is returned when the weekly hour budget is not positive.
	ErrInvalidHours = errors.New("hours per week must be positive")
	// ErrInvalidDateRange is returned when the plan does not end after it starts.
	ErrInvalidDateRange = errors.New("end date must be after start date")
	// ErrInvalidGoal is returned for non-positive FTP or weight, or negative CTL.
	ErrInvalidGoal = errors.New("invalid goal")
	// ErrInvalidEvent is returned for an event with an unknown priority.
	ErrInvalidEvent = errors.New("invalid key event")
	// ErrInvalidPlan is returned when a loaded plan breaks its structure.
	ErrInvalidPlan = errors.New("invalid training plan")
	// ErrPlanNotFound is returned when no plan file exists.
	ErrPlanNotFound = errors.New("training plan not found")
)

// KeyEvent is a dated race or target event. Priority is A (peak), B or C.
type KeyEvent struct {
	Name      string    `json:"name"`
	Date      time.Time `json:"date"`
	Priority  string    `json:"priority"`
	EventType string    `json:"event_type"`
	Notes     string    `json:"notes"`
}

// TrainingPhase is a block of weeks with a shared intensity distribution.
type TrainingPhase struct {
	Name                  string  `json:"name"`
	Weeks                 int     `json:"weeks"`
	Description           string  `json:"description"`
	TIDZ1                 float64 `json:"tid_z1"`
	TIDZ2                 float64 `json:"tid_z2"`
	TIDZ3                 float64 `json:"tid_z3"`
	IntensityFactorTarget float64 `json:"intensity_factor_target"`
	TSSRampRate           float64 `json:"tss_ramp_rate"` // % per week, negative reduces
}

// WeeklyPlan is the prescription for one week plus what was actually done.
type WeeklyPlan struct {
	WeekNumber     int       `json:"week_number"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	Phase          string    `json:"phase"`
	PhaseWeek      int       `json:"phase_week"`
	TargetHours    float64   `json:"target_hours"`
	TargetTSS      int       `json:"target_tss"`
	TargetCTL      float64   `json:"target_ctl"`
	TIDZ1          float64   `json:"tid_z1"`
	TIDZ2          float64   `json:"tid_z2"`
	TIDZ3          float64   `json:"tid_z3"`
	KeyWorkouts    []string  `json:"key_workouts"`
	RecoveryNotes  string    `json:"recovery_notes"`
	Events         []string  `json:"events"`
	IsRecoveryWeek bool      `json:"is_recovery_week"`
	IsTaperWeek    bool      `json:"is_taper_week"`

	ActualHours  *float64 `json:"actual_hours"`
	ActualTSS    *int     `json:"actual_tss"`
	ActualCTL    *float64 `json:"actual_ctl"`
	AdherencePct *float64 `json:"adherence_pct"`
}

// Contains reports whether t falls on one of the week's calendar days.
func (w WeeklyPlan) Contains(t time.Time) bool {
	d := store.DateOf(t)
	return !d.Before(store.DateOf(w.StartDate)) && !d.After(store.DateOf(w.EndDate))
}

// TrainingPlan is a periodized multi-week plan.
type TrainingPlan struct {
	ID           string          `json:"id,omitempty"`
	Name         string          `json:"name"`
	Goal         string          `json:"goal"`
	CreatedAt    time.Time       `json:"created_at"`
	StartDate    time.Time       `json:"start_date"`
	EndDate      time.Time       `json:"end_date"`
	StartFTP     float64         `json:"start_ftp"`
	TargetFTP    float64         `json:"target_ftp"`
	WeightKG     float64         `json:"weight_kg"`
	HoursPerWeek float64         `json:"hours_per_week"`
	TotalWeeks   int             `json:"total_weeks"`
	StartCTL     *float64        `json:"start_ctl,omitempty"` // fitness before week 1
	Phases       []TrainingPhase `json:"phases"`
	Weeks        []WeeklyPlan    `json:"weeks"`
	KeyEvents    []KeyEvent      `json:"key_events"`
}

// CurrentWeek returns the 1-based week containing now, 0 before the plan
// starts and TotalWeeks after it ends.
func (p *TrainingPlan) CurrentWeek(now time.Time) int {
	today := store.DateOf(now)
	start := store.DateOf(p.StartDate)
	switch {
	case today.Before(start):
		return 0
	case today.After(store.DateOf(p.EndDate)):
		return p.TotalWeeks
	}
	days := int(today.Sub(start).Hours() / 24)
	return min(p.TotalWeeks, days/7+1)
}

// CurrentWeekPlan returns the week containing now, or nil outside the plan.
func (p *TrainingPlan) CurrentWeekPlan(now time.Time) *WeeklyPlan {
	n := p.CurrentWeek(now)
	if n < 1 || n > len(p.Weeks) {
		return nil
	}
	return &p.Weeks[n-1]
}

// ProgressPct is the share of plan weeks reached by now.
func (p *TrainingPlan) ProgressPct(now time.Time) float64 {
	if p.TotalWeeks <= 0 {
		return 0
	}
	return float64(p.CurrentWeek(now)) / float64(p.TotalWeeks) * 100
}

// FTPImprovementPct is the targeted FTP gain in percent.
func (p *TrainingPlan) FTPImprovementPct() float64 {
	if p.StartFTP <= 0 {
		return 0
	}
	return (p.TargetFTP - p.StartFTP) / p.StartFTP * 100
}

// Clone returns a deep copy of the plan.
func (p *TrainingPlan) Clone() *TrainingPlan {
	c := *p
	c.StartCTL = clonePtr(p.StartCTL)
	c.Phases = append([]TrainingPhase(nil), p.Phases...)
	c.KeyEvents = append([]KeyEvent(nil), p.KeyEvents...)
	if p.Weeks != nil {
		c.Weeks = make([]WeeklyPlan, len(p.Weeks))
		for i, w := range p.Weeks {
			w.KeyWorkouts = cloneStrings(w.KeyWorkouts)
			w.Events = cloneStrings(w.Events)
			w.ActualHours = clonePtr(w.ActualHours)
			w.ActualTSS = clonePtr(w.ActualTSS)
			w.ActualCTL = clonePtr(w.ActualCTL)
			w.AdherencePct = clonePtr(w.AdherencePct)
			c.Weeks[i] = w
		}
	}
	return &c
}

// Validate checks the structural invariants of a plan: one week per plan
// week, consecutive numbering, contiguous 7-day weeks and phase lengths
// that add up.
func (p *TrainingPlan) Validate() error {
	if p.TotalWeeks < 1 {
		return fmt.Errorf("%w: total_weeks %d", ErrInvalidPlan, p.TotalWeeks)
	}
	if len(p.Weeks) != p.TotalWeeks {
		return fmt.Errorf("%w: %d weeks for total_weeks %d", ErrInvalidPlan, len(p.Weeks), p.TotalWeeks)
	}

	phaseWeeks := 0
	for _, ph := range p.Phases {
		phaseWeeks += ph.Weeks
	}
	if phaseWeeks != p.TotalWeeks {
		return fmt.Errorf("%w: phases cover %d weeks, want %d", ErrInvalidPlan, phaseWeeks, p.TotalWeeks)
	}

	for i, w := range p.Weeks {
		if w.WeekNumber != i+1 {
			return fmt.Errorf("%w: week %d numbered %d", ErrInvalidPlan, i+1, w.WeekNumber)
		}
		if !store.DateOf(w.EndDate).Equal(store.DateOf(w.StartDate).AddDate(0, 0, 6)) {
			return fmt.Errorf("%w: week %d does not span 7 days", ErrInvalidPlan, w.WeekNumber)
		}
		if i > 0 && !store.DateOf(w.StartDate).Equal(store.DateOf(p.Weeks[i-1].EndDate).AddDate(0, 0, 1)) {
			return fmt.Errorf("%w: week %d does not follow week %d", ErrInvalidPlan, w.WeekNumber, i)
		}
	}
	return nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string{}, s...)
}
