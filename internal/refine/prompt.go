package refine

import (
	"fmt"
	"strings"

	"cycling-planner/internal/plan"
)

// Section headings of the advisory response.
const (
	headingAnalysis        = "## AI Coach Analysis"
	headingWeekly          = "## Weekly Refinements"
	headingRecommendations = "## Key Recommendations"
)

const instructions = `You are an experienced cycling coach tailoring a training plan to one athlete.

You receive:
1. The athlete's training history (load, fitness, efficiency and phase data).
2. A TEMPLATE plan built from standard periodization rules.

Refine the template so it fits THIS athlete:
- Scale weekly TSS to what the athlete has actually sustained
- Pick workouts that address the strengths and limiters visible in the history
- Favour VO2max variety in Build when FTP has plateaued
- Keep aerobic base work in front when efficiency is declining
- Grow long-ride duration gradually if long rides are rare
- Respect the athlete's usual ride frequency and ride length
- Keep FTP expectations in line with past progression

RESPONSE FORMAT (follow it exactly):

` + headingAnalysis + `
2-3 paragraphs on what the history shows and how it shapes the plan.

## Phase Adjustments
One line per phase: - **Phase Name** (X weeks): adjustment, or "No changes".

` + headingWeekly + `
For EVERY week, three lines in this exact format:
WEEK <number>: TSS=<integer>, HOURS=<number>, Z1=<pct>, Z2=<pct>, Z3=<pct>
WORKOUTS: <2-3 key workouts, comma-separated>
NOTES: <one-line recovery or focus note>

Rules:
- Include ALL weeks
- TSS is an integer, HOURS may have one decimal
- Z1+Z2+Z3 must equal 100
- Give workout targets relative to FTP

` + headingRecommendations + `
3-5 bullet points with the most important advice for this athlete.
`

// BuildPrompt assembles the refinement request: instructions, the
// athlete's history and the serialized template plan.
func BuildPrompt(p *plan.TrainingPlan, history string) string {
	return instructions + "\n\n## Athlete Training History\n" + history +
		"\n\n## Template Plan to Refine\n" + SerializePlan(p)
}

// SerializePlan renders a plan as prompt text, one line per week.
func SerializePlan(p *plan.TrainingPlan) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Plan: %s\n", p.Name)
	fmt.Fprintf(&b, "Goal: %s\n", p.Goal)
	fmt.Fprintf(&b, "Duration: %d weeks (%s to %s)\n", p.TotalWeeks,
		p.StartDate.Format("2006-01-02"), p.EndDate.Format("2006-01-02"))
	fmt.Fprintf(&b, "Start FTP: %.0fW → Target FTP: %.0fW\n", p.StartFTP, p.TargetFTP)
	fmt.Fprintf(&b, "Weight: %.1fkg\n", p.WeightKG)
	fmt.Fprintf(&b, "Available hours/week: %g\n\n", p.HoursPerWeek)

	b.WriteString("### Phases\n")
	for _, ph := range p.Phases {
		fmt.Fprintf(&b, "- %s (%d weeks): %s [TID: Z1=%.0f%% Z2=%.0f%% Z3=%.0f%%, IF target=%.2f]\n",
			ph.Name, ph.Weeks, ph.Description, ph.TIDZ1, ph.TIDZ2, ph.TIDZ3, ph.IntensityFactorTarget)
	}
	b.WriteString("\n")

	if len(p.KeyEvents) > 0 {
		b.WriteString("### Key Events\n")
		for _, e := range p.KeyEvents {
			fmt.Fprintf(&b, "- %s (%s) on %s\n", e.Name, e.Priority, e.Date.Format("2006-01-02"))
		}
		b.WriteString("\n")
	}

	b.WriteString("### Weekly Breakdown\n")
	for _, w := range p.Weeks {
		marker := ""
		switch {
		case w.IsRecoveryWeek:
			marker = " [RECOVERY]"
		case w.IsTaperWeek:
			marker = " [TAPER]"
		}
		fmt.Fprintf(&b, "Week %d (%s, wk %d)%s: TSS=%d, Hours=%g, CTL=%.0f, TID: Z1=%.0f/Z2=%.0f/Z3=%.0f\n",
			w.WeekNumber, w.Phase, w.PhaseWeek, marker, w.TargetTSS, w.TargetHours, w.TargetCTL,
			w.TIDZ1, w.TIDZ2, w.TIDZ3)
		if len(w.KeyWorkouts) > 0 {
			fmt.Fprintf(&b, "  Workouts: %s\n", strings.Join(w.KeyWorkouts, ", "))
		}
		if len(w.Events) > 0 {
			fmt.Fprintf(&b, "  Events: %s\n", strings.Join(w.Events, ", "))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// ExtractAnalysis returns the narrative part of a response: everything
// before the weekly refinements, plus the key recommendations.
func ExtractAnalysis(response string) string {
	before, _, found := strings.Cut(response, headingWeekly)
	if !found {
		return strings.TrimSpace(response)
	}
	analysis := strings.TrimSpace(before)

	if _, recs, ok := strings.Cut(response, headingRecommendations); ok {
		analysis += "\n\n" + headingRecommendations + "\n" + strings.TrimSpace(recs)
	}
	return analysis
}
