package plan

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var fixedNow = time.Date(2025, 1, 1, 9, 30, 0, 0, time.UTC)

func newTestGenerator() *Generator {
	g := NewGenerator(DefaultScheme())
	g.now = func() time.Time { return fixedNow }
	return g
}

func twelveWeekGoal() Goal {
	return Goal{
		Name:         "Spring build",
		StartDate:    date(2025, 1, 6),
		EndDate:      date(2025, 3, 31),
		StartFTP:     250,
		TargetFTP:    275,
		WeightKG:     70,
		HoursPerWeek: 10,
		CurrentCTL:   floatPtr(50),
		KeyEvents: []KeyEvent{
			{Name: "Gran Fondo", Date: date(2025, 3, 29), Priority: "a"},
			{Name: "Club TT", Date: date(2025, 2, 12), Priority: "C"},
		},
	}
}

func TestGenerateValidation(t *testing.T) {
	base := twelveWeekGoal()

	tests := []struct {
		name   string
		mutate func(g *Goal)
		want   error
	}{
		{"zero hours", func(g *Goal) { g.HoursPerWeek = 0 }, ErrInvalidHours},
		{"negative hours", func(g *Goal) { g.HoursPerWeek = -3 }, ErrInvalidHours},
		{"end before start", func(g *Goal) { g.EndDate = date(2025, 1, 1) }, ErrInvalidDateRange},
		{"end equals start", func(g *Goal) { g.EndDate = g.StartDate }, ErrInvalidDateRange},
		{"zero ftp", func(g *Goal) { g.StartFTP = 0 }, ErrInvalidGoal},
		{"zero weight", func(g *Goal) { g.WeightKG = 0 }, ErrInvalidGoal},
		{"negative ctl", func(g *Goal) { g.CurrentCTL = floatPtr(-1) }, ErrInvalidGoal},
		{"bad priority", func(g *Goal) { g.KeyEvents[0].Priority = "D" }, ErrInvalidEvent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := base
			g.KeyEvents = append([]KeyEvent(nil), base.KeyEvents...)
			tt.mutate(&g)
			p, err := newTestGenerator().Generate(g)
			if !errors.Is(err, tt.want) {
				t.Errorf("Generate() error = %v, want %v", err, tt.want)
			}
			if p != nil {
				t.Error("Generate() returned a plan on invalid input")
			}
		})
	}
}

func TestGenerateTwelveWeeks(t *testing.T) {
	p, err := newTestGenerator().Generate(twelveWeekGoal())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if p.TotalWeeks != 12 || len(p.Weeks) != 12 {
		t.Fatalf("TotalWeeks = %d, len(Weeks) = %d, want 12", p.TotalWeeks, len(p.Weeks))
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if p.ID == "" {
		t.Error("ID is empty")
	}
	if !p.CreatedAt.Equal(fixedNow) {
		t.Errorf("CreatedAt = %v, want %v", p.CreatedAt, fixedNow)
	}
	if p.Goal != "Improve from 3.57 to 3.93 W/kg (+0.36)" {
		t.Errorf("Goal = %q", p.Goal)
	}

	wantPhases := []struct {
		name  string
		weeks int
	}{{"Base", 6}, {"Build", 4}, {"Taper", 2}}
	if len(p.Phases) != len(wantPhases) {
		t.Fatalf("got %d phases, want %d", len(p.Phases), len(wantPhases))
	}
	for i, want := range wantPhases {
		if p.Phases[i].Name != want.name || p.Phases[i].Weeks != want.weeks {
			t.Errorf("phase %d = %s/%d, want %s/%d", i, p.Phases[i].Name, p.Phases[i].Weeks, want.name, want.weeks)
		}
	}

	wantTSS := []int{367, 385, 404, 242}
	wantCTL := []float64{50.4, 51.2, 52.3, 49.3}
	for i := range wantTSS {
		w := p.Weeks[i]
		if w.TargetTSS != wantTSS[i] {
			t.Errorf("week %d TargetTSS = %d, want %d", i+1, w.TargetTSS, wantTSS[i])
		}
		if w.TargetCTL != wantCTL[i] {
			t.Errorf("week %d TargetCTL = %v, want %v", i+1, w.TargetCTL, wantCTL[i])
		}
	}

	recovery := map[int]bool{4: true, 10: true}
	for _, w := range p.Weeks {
		if w.IsRecoveryWeek != recovery[w.WeekNumber] {
			t.Errorf("week %d IsRecoveryWeek = %v", w.WeekNumber, w.IsRecoveryWeek)
		}
		if w.IsTaperWeek != (w.Phase == "Taper") {
			t.Errorf("week %d IsTaperWeek = %v for phase %s", w.WeekNumber, w.IsTaperWeek, w.Phase)
		}
		if w.TargetTSS > 800 {
			t.Errorf("week %d TargetTSS = %d exceeds cap 800", w.WeekNumber, w.TargetTSS)
		}
		if n := len(w.KeyWorkouts); n < 2 || n > 3 {
			t.Errorf("week %d has %d key workouts, want 2-3", w.WeekNumber, n)
		}
		if sum := w.TIDZ1 + w.TIDZ2 + w.TIDZ3; sum != 100 {
			t.Errorf("week %d TID sums to %v", w.WeekNumber, sum)
		}
	}

	w4 := p.Weeks[3]
	if w4.TargetHours != 6 {
		t.Errorf("recovery TargetHours = %v, want 6", w4.TargetHours)
	}
	if w4.KeyWorkouts[0] != "Easy spin (Z1 only, 45-60min)" || len(w4.KeyWorkouts) != 2 {
		t.Errorf("recovery KeyWorkouts = %v", w4.KeyWorkouts)
	}
	if w4.RecoveryNotes != "Recovery week - prioritize rest, sleep, and easy spinning" {
		t.Errorf("recovery RecoveryNotes = %q", w4.RecoveryNotes)
	}
	// deload weeks do not lower the running TSS
	if p.Weeks[4].TargetTSS != 424 {
		t.Errorf("week 5 TargetTSS = %d, want 424", p.Weeks[4].TargetTSS)
	}
	if p.Weeks[1].KeyWorkouts[0] != "Sweet spot intervals (2x20min @ 88-93% FTP)" {
		t.Errorf("week 2 rotation starts with %q", p.Weeks[1].KeyWorkouts[0])
	}

	taper := p.Weeks[10]
	if taper.TargetHours != 7 {
		t.Errorf("taper TargetHours = %v, want 7", taper.TargetHours)
	}
	if taper.TargetTSS >= p.Weeks[8].TargetTSS {
		t.Errorf("taper TargetTSS %d not below last build week %d", taper.TargetTSS, p.Weeks[8].TargetTSS)
	}
	if taper.RecoveryNotes != "Taper week - reduce volume, keep legs fresh" {
		t.Errorf("taper RecoveryNotes = %q", taper.RecoveryNotes)
	}

	// consecutive regular weeks in Base and Build never lose fitness
	for i := 1; i < 9; i++ {
		prev, cur := p.Weeks[i-1], p.Weeks[i]
		if prev.IsRecoveryWeek || cur.IsRecoveryWeek {
			continue
		}
		if cur.TargetCTL < prev.TargetCTL {
			t.Errorf("week %d TargetCTL %v < week %d %v", cur.WeekNumber, cur.TargetCTL, prev.WeekNumber, prev.TargetCTL)
		}
	}

	// events
	if len(p.KeyEvents) != 2 || p.KeyEvents[0].Name != "Club TT" {
		t.Fatalf("KeyEvents not sorted by date: %+v", p.KeyEvents)
	}
	if p.KeyEvents[1].Priority != "A" {
		t.Errorf("Priority = %q, want A", p.KeyEvents[1].Priority)
	}
	if got := p.Weeks[11].Events; len(got) != 1 || got[0] != "Gran Fondo" {
		t.Errorf("week 12 Events = %v, want [Gran Fondo]", got)
	}
	if got := p.Weeks[5].Events; len(got) != 1 || got[0] != "Club TT" {
		t.Errorf("week 6 Events = %v, want [Club TT]", got)
	}
}

func TestGeneratePhaseSplits(t *testing.T) {
	tests := []struct {
		days   int
		phases []string
		weeks  []int
	}{
		{5, []string{"Maintenance"}, []int{1}},
		{21, []string{"Maintenance"}, []int{3}},
		{28, []string{"Maintenance"}, []int{4}},
		{35, []string{"Build", "Taper"}, []int{4, 1}},
		{56, []string{"Build", "Taper"}, []int{7, 1}},
		{63, []string{"Base", "Build", "Taper"}, []int{4, 3, 2}},
		{91, []string{"Base", "Build", "Specialty", "Taper"}, []int{5, 3, 2, 3}},
		{112, []string{"Base", "Build", "Specialty", "Taper"}, []int{6, 4, 3, 3}},
		{84, []string{"Base", "Build", "Taper"}, []int{6, 4, 2}},
		{140, []string{"Base", "Build", "Specialty", "Taper"}, []int{8, 6, 4, 2}},
		{182, []string{"Base", "Build", "Specialty", "Taper"}, []int{10, 7, 5, 4}},
		{364, []string{"Base", "Build", "Specialty", "Taper"}, []int{20, 15, 10, 7}},
	}

	for _, tt := range tests {
		goal := twelveWeekGoal()
		goal.KeyEvents = nil
		goal.EndDate = goal.StartDate.AddDate(0, 0, tt.days)

		p, err := newTestGenerator().Generate(goal)
		if err != nil {
			t.Fatalf("Generate(%d days) error = %v", tt.days, err)
		}
		if len(p.Phases) != len(tt.phases) {
			t.Fatalf("Generate(%d days) phases = %+v, want %v", tt.days, p.Phases, tt.phases)
		}
		total := 0
		for i, ph := range p.Phases {
			if ph.Name != tt.phases[i] || ph.Weeks != tt.weeks[i] {
				t.Errorf("Generate(%d days) phase %d = %s/%d, want %s/%d", tt.days, i, ph.Name, ph.Weeks, tt.phases[i], tt.weeks[i])
			}
			total += ph.Weeks
		}
		if total != p.TotalWeeks || len(p.Weeks) != p.TotalWeeks {
			t.Errorf("Generate(%d days) phases cover %d, weeks %d, total %d", tt.days, total, len(p.Weeks), p.TotalWeeks)
		}
		if last := p.Phases[len(p.Phases)-1]; p.TotalWeeks > 4 && (last.Name != "Taper" || last.Weeks < 1) {
			t.Errorf("Generate(%d days) does not end with a taper: %+v", tt.days, last)
		}

		// every 4th Base/Build week deloads against the last loading week
		lastLoad := 0
		for _, w := range p.Weeks {
			deload := (w.Phase == "Base" || w.Phase == "Build") && w.PhaseWeek%4 == 0
			if deload != w.IsRecoveryWeek {
				t.Errorf("Generate(%d days) week %d (%s week %d) IsRecoveryWeek = %v, want %v",
					tt.days, w.WeekNumber, w.Phase, w.PhaseWeek, w.IsRecoveryWeek, deload)
			}
			if !w.IsRecoveryWeek {
				lastLoad = w.TargetTSS
				continue
			}
			if float64(w.TargetTSS) > 0.61*float64(lastLoad) {
				t.Errorf("Generate(%d days) recovery week %d TSS %d > 0.61 x %d",
					tt.days, w.WeekNumber, w.TargetTSS, lastLoad)
			}
		}
	}
}

func TestGenerateMaintenance(t *testing.T) {
	goal := twelveWeekGoal()
	goal.KeyEvents = nil
	goal.EndDate = goal.StartDate.AddDate(0, 0, 21)

	p, err := newTestGenerator().Generate(goal)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	for _, w := range p.Weeks {
		if w.TargetTSS != 350 || w.TargetHours != 10 || w.TargetCTL != 50 {
			t.Errorf("week %d = TSS %d, hours %v, CTL %v; want 350, 10, 50", w.WeekNumber, w.TargetTSS, w.TargetHours, w.TargetCTL)
		}
		if w.IsRecoveryWeek {
			t.Errorf("week %d is a recovery week in a maintenance plan", w.WeekNumber)
		}
		if len(w.KeyWorkouts) != 3 {
			t.Errorf("week %d has %d key workouts, want 3", w.WeekNumber, len(w.KeyWorkouts))
		}
	}
}

func TestGenerateTSSCap(t *testing.T) {
	goal := twelveWeekGoal()
	goal.HoursPerWeek = 4
	goal.CurrentCTL = floatPtr(90)

	p, err := newTestGenerator().Generate(goal)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	for _, w := range p.Weeks {
		if w.TargetTSS > 320 {
			t.Errorf("week %d TargetTSS = %d, want <= 320", w.WeekNumber, w.TargetTSS)
		}
	}
	if p.Weeks[0].TargetTSS != 320 {
		t.Errorf("week 1 TargetTSS = %d, want capped 320", p.Weeks[0].TargetTSS)
	}
}

func TestGenerateStartCTL(t *testing.T) {
	tests := []struct {
		name string
		ctl  *float64
		want float64
	}{
		{"unknown uses default", nil, 50},
		{"detrained athlete", floatPtr(0), 0},
		{"explicit", floatPtr(72.5), 72.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			goal := twelveWeekGoal()
			goal.CurrentCTL = tt.ctl

			p, err := newTestGenerator().Generate(goal)
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			if p.StartCTL == nil || *p.StartCTL != tt.want {
				t.Errorf("StartCTL = %v, want %v", p.StartCTL, tt.want)
			}
			if got, want := p.Weeks[0].TargetCTL, round1(NextCTL(tt.want, p.Weeks[0].TargetTSS)); got != want {
				t.Errorf("week 1 TargetCTL = %v, want %v", got, want)
			}
		})
	}
}

func TestRecalculateCTL(t *testing.T) {
	p, err := newTestGenerator().Generate(twelveWeekGoal())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	template := p.Clone()

	p.RecalculateCTL()
	for i := range p.Weeks {
		if p.Weeks[i].TargetCTL != template.Weeks[i].TargetCTL {
			t.Errorf("week %d CTL changed on no-op recalculation: %v -> %v", i+1, template.Weeks[i].TargetCTL, p.Weeks[i].TargetCTL)
		}
	}

	p.Weeks[2].TargetTSS = 500
	p.RecalculateCTL()
	if p.Weeks[0].TargetCTL != template.Weeks[0].TargetCTL || p.Weeks[1].TargetCTL != template.Weeks[1].TargetCTL {
		t.Error("weeks before the edit changed CTL")
	}
	if p.Weeks[2].TargetCTL <= template.Weeks[2].TargetCTL {
		t.Errorf("week 3 CTL = %v, want above %v", p.Weeks[2].TargetCTL, template.Weeks[2].TargetCTL)
	}
}

func TestSeedCTLLegacyPlan(t *testing.T) {
	p, err := newTestGenerator().Generate(twelveWeekGoal())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	p.StartCTL = nil

	seed := p.SeedCTL()
	if seed < 49.9 || seed > 50.1 {
		t.Errorf("SeedCTL() = %v, want about 50", seed)
	}
}

func TestCurrentWeek(t *testing.T) {
	p, err := newTestGenerator().Generate(twelveWeekGoal())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	tests := []struct {
		now  time.Time
		want int
	}{
		{date(2025, 1, 5), 0},
		{date(2025, 1, 6), 1},
		{time.Date(2025, 1, 12, 22, 0, 0, 0, time.UTC), 1},
		{date(2025, 1, 13), 2},
		{date(2025, 3, 30), 12},
		{date(2025, 5, 1), 12},
	}
	for _, tt := range tests {
		if got := p.CurrentWeek(tt.now); got != tt.want {
			t.Errorf("CurrentWeek(%v) = %d, want %d", tt.now, got, tt.want)
		}
	}

	if got := p.ProgressPct(date(2025, 1, 13)); got < 16.6 || got > 16.7 {
		t.Errorf("ProgressPct() = %v, want 16.67", got)
	}
	if got := p.FTPImprovementPct(); got != 10 {
		t.Errorf("FTPImprovementPct() = %v, want 10", got)
	}
	if p.CurrentWeekPlan(date(2024, 12, 1)) != nil {
		t.Error("CurrentWeekPlan() before start is not nil")
	}
}
