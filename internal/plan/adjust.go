package plan

import (
	"fmt"
	"strings"
	"time"
)

// AdjustmentInput is the athlete's current state for a mid-plan review.
type AdjustmentInput struct {
	TSB     float64
	ACWR    float64
	EFTrend string // improving, stable or declining
}

// BuildAdjustmentPrompt asks the advisory service to review adherence and
// suggest changes to the current week.
func (p *TrainingPlan) BuildAdjustmentPrompt(in AdjustmentInput, now time.Time) string {
	week := p.CurrentWeekPlan(now)

	form := "(Fatigued)"
	if in.TSB > 0 {
		form = "(Fresh)"
	}
	load := "(Elevated)"
	switch {
	case in.ACWR > 1.5:
		load = "(HIGH RISK)"
	case in.ACWR < 1.3:
		load = "(Optimal)"
	}
	trend := in.EFTrend
	if trend == "" {
		trend = "stable"
	}

	phase, hours, tss, workouts := "N/A", "N/A", "N/A", "N/A"
	if week != nil {
		phase = week.Phase
		hours = fmt.Sprintf("%.1f", week.TargetHours)
		tss = fmt.Sprintf("%d", week.TargetTSS)
		workouts = strings.Join(week.KeyWorkouts, ", ")
	}

	var b strings.Builder
	b.WriteString("Analyze my training plan adherence and recommend adjustments:\n\n")
	b.WriteString("## Current Status\n")
	fmt.Fprintf(&b, "- Plan Week: %d of %d\n", p.CurrentWeek(now), p.TotalWeeks)
	fmt.Fprintf(&b, "- Current Phase: %s\n", phase)
	fmt.Fprintf(&b, "- TSB (Form): %.1f %s\n", in.TSB, form)
	fmt.Fprintf(&b, "- ACWR: %.2f %s\n", in.ACWR, load)
	fmt.Fprintf(&b, "- EF Trend: %s\n\n", trend)

	b.WriteString("## Plan Goals\n")
	fmt.Fprintf(&b, "- Start FTP: %.0fW\n", p.StartFTP)
	fmt.Fprintf(&b, "- Target FTP: %.0fW\n", p.TargetFTP)
	fmt.Fprintf(&b, "- Progress: %.0f%%\n\n", p.ProgressPct(now))

	b.WriteString("## This Week's Target\n")
	fmt.Fprintf(&b, "- Hours: %s\n", hours)
	fmt.Fprintf(&b, "- TSS: %s\n", tss)
	fmt.Fprintf(&b, "- Key Workouts: %s\n\n", workouts)

	b.WriteString("Please provide:\n")
	b.WriteString("1. Assessment of current fatigue level\n")
	b.WriteString("2. Recommended adjustments to this week's plan\n")
	b.WriteString("3. Specific workout modifications if needed\n")
	b.WriteString("4. Recovery recommendations\n")
	return b.String()
}
