package plan

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"cycling-planner/internal/store"
)

// Goal describes what a plan should achieve and with what budget.
type Goal struct {
	Name         string
	StartDate    time.Time
	EndDate      time.Time
	StartFTP     float64
	TargetFTP    float64
	WeightKG     float64
	HoursPerWeek float64
	KeyEvents    []KeyEvent
	CurrentCTL   *float64 // nil uses the scheme's DefaultCTL; 0 is a real, detrained value
}

// Validate checks the goal's preconditions.
func (g Goal) Validate() error {
	if g.HoursPerWeek <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidHours, g.HoursPerWeek)
	}
	if !store.DateOf(g.EndDate).After(store.DateOf(g.StartDate)) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidDateRange,
			g.StartDate.Format("2006-01-02"), g.EndDate.Format("2006-01-02"))
	}
	if g.StartFTP <= 0 || g.TargetFTP <= 0 {
		return fmt.Errorf("%w: FTP must be positive", ErrInvalidGoal)
	}
	if g.WeightKG <= 0 {
		return fmt.Errorf("%w: weight must be positive", ErrInvalidGoal)
	}
	if g.CurrentCTL != nil && *g.CurrentCTL < 0 {
		return fmt.Errorf("%w: CTL must not be negative", ErrInvalidGoal)
	}
	for _, e := range g.KeyEvents {
		if _, err := NormalizePriority(e.Priority); err != nil {
			return fmt.Errorf("event %q: %w", e.Name, err)
		}
	}
	return nil
}

// NormalizePriority upper-cases an event priority and checks it is A, B or C.
// An empty priority defaults to B.
func NormalizePriority(p string) (string, error) {
	p = strings.ToUpper(strings.TrimSpace(p))
	switch p {
	case "":
		return "B", nil
	case "A", "B", "C":
		return p, nil
	}
	return "", fmt.Errorf("%w: priority %q must be A, B or C", ErrInvalidEvent, p)
}

// Generator builds template plans from a Scheme.
type Generator struct {
	scheme Scheme
	now    func() time.Time
}

// NewGenerator creates a generator using scheme.
func NewGenerator(scheme Scheme) *Generator {
	return &Generator{scheme: scheme, now: time.Now}
}

// Generate builds a periodized plan for goal.
func (g *Generator) Generate(goal Goal) (*TrainingPlan, error) {
	if err := goal.Validate(); err != nil {
		return nil, err
	}

	start := store.DateOf(goal.StartDate)
	end := store.DateOf(goal.EndDate)
	totalDays := int(end.Sub(start).Hours() / 24)
	totalWeeks := max(1, totalDays/7)

	ctl := g.scheme.DefaultCTL
	if goal.CurrentCTL != nil {
		ctl = *goal.CurrentCTL
	}

	events := normalizeEvents(goal.KeyEvents)
	phases := g.scheme.Phases(totalWeeks)

	name := goal.Name
	if name == "" {
		name = "Training Plan"
	}
	startWkg := goal.StartFTP / goal.WeightKG
	targetWkg := goal.TargetFTP / goal.WeightKG

	return &TrainingPlan{
		ID:           uuid.NewString(),
		Name:         name,
		Goal:         fmt.Sprintf("Improve from %.2f to %.2f W/kg (+%.2f)", startWkg, targetWkg, targetWkg-startWkg),
		CreatedAt:    g.now().UTC().Truncate(time.Second),
		StartDate:    start,
		EndDate:      end,
		StartFTP:     goal.StartFTP,
		TargetFTP:    goal.TargetFTP,
		WeightKG:     goal.WeightKG,
		HoursPerWeek: goal.HoursPerWeek,
		TotalWeeks:   totalWeeks,
		StartCTL:     &ctl,
		Phases:       phases,
		Weeks:        g.weeks(start, phases, goal.HoursPerWeek, ctl, events),
		KeyEvents:    events,
	}, nil
}

func normalizeEvents(in []KeyEvent) []KeyEvent {
	if len(in) == 0 {
		return nil
	}
	events := make([]KeyEvent, len(in))
	for i, e := range in {
		e.Priority, _ = NormalizePriority(e.Priority)
		e.Date = store.DateOf(e.Date)
		if e.EventType == "" {
			e.EventType = "race"
		}
		events[i] = e
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})
	return events
}

func (g *Generator) weeks(start time.Time, phases []TrainingPhase, hoursPerWeek, ctl float64, events []KeyEvent) []WeeklyPlan {
	s := g.scheme
	var weeks []WeeklyPlan

	runningCTL := ctl
	runningTSS := int(ctl * 7)
	maxTSS := int(hoursPerWeek * s.MaxTSSPerHour)
	weekStart := start

	for _, phase := range phases {
		isTaper := strings.EqualFold(phase.Name, s.Taper.Name)
		library := s.workouts(phase.Name)

		for phaseWeek := 1; phaseWeek <= phase.Weeks; phaseWeek++ {
			isRecovery := s.RecoveryEvery > 0 && s.hasRecoveryWeeks(phase.Name) && phaseWeek%s.RecoveryEvery == 0

			var tss int
			var hours float64
			factor := 1 + phase.TSSRampRate/100
			switch {
			case isRecovery:
				tss = int(float64(runningTSS) * s.RecoveryFactor)
				hours = hoursPerWeek * s.RecoveryFactor
			case phase.TSSRampRate < 0:
				tss = int(float64(runningTSS) * factor)
				hours = hoursPerWeek * factor
			default:
				tss = int(float64(runningTSS) * factor)
				hours = hoursPerWeek
			}
			tss = min(tss, maxTSS)

			if !isRecovery {
				runningTSS = tss
			}
			runningCTL = NextCTL(runningCTL, tss)

			w := WeeklyPlan{
				WeekNumber:     len(weeks) + 1,
				StartDate:      weekStart,
				EndDate:        weekStart.AddDate(0, 0, 6),
				Phase:          phase.Name,
				PhaseWeek:      phaseWeek,
				TargetHours:    round1(hours),
				TargetTSS:      tss,
				TargetCTL:      round1(runningCTL),
				TIDZ1:          phase.TIDZ1,
				TIDZ2:          phase.TIDZ2,
				TIDZ3:          phase.TIDZ3,
				IsRecoveryWeek: isRecovery,
				IsTaperWeek:    isTaper,
			}

			switch {
			case isRecovery:
				w.KeyWorkouts = firstN(s.workouts("recovery"), s.RecoveryWorkouts)
				w.RecoveryNotes = s.RecoveryNote
			case isTaper:
				w.KeyWorkouts = rotate(library, phaseWeek-1, s.KeyWorkouts)
				w.RecoveryNotes = s.TaperNote
			default:
				w.KeyWorkouts = rotate(library, phaseWeek-1, s.KeyWorkouts)
				w.RecoveryNotes = s.DefaultNote
			}

			for _, e := range events {
				if w.Contains(e.Date) {
					w.Events = append(w.Events, e.Name)
				}
			}

			weeks = append(weeks, w)
			weekStart = w.EndDate.AddDate(0, 0, 1)
		}
	}
	return weeks
}

// rotate picks up to n templates starting at offset, wrapping around.
func rotate(library []string, offset, n int) []string {
	n = min(n, len(library))
	if n == 0 {
		return nil
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, library[(offset+i)%len(library)])
	}
	return out
}

func firstN(library []string, n int) []string {
	n = min(n, len(library))
	if n <= 0 {
		return nil
	}
	return append([]string(nil), library[:n]...)
}
