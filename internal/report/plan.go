package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"

	"cycling-planner/internal/plan"
	"cycling-planner/internal/refine"
)

// Plan renders a training plan: overview, phases, weekly table, CTL chart
func Plan(p *plan.TrainingPlan, now time.Time) string {
	sections := []string{
		Title(p.Name),
		planOverview(p, now),
		planPhases(p),
		planWeeks(p, now),
	}
	if chart := CTLChart(p); chart != "" {
		sections = append(sections, chart)
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func planOverview(p *plan.TrainingPlan, now time.Time) string {
	s := p.Summarize()
	week := p.CurrentWeek(now)

	lines := []string{
		RenderMetric("Goal", p.Goal, ""),
		RenderMetric("FTP", fmt.Sprintf("%.0fW → %.0fW", p.StartFTP, p.TargetFTP), fmt.Sprintf("+%.1f%%", p.FTPImprovementPct())),
		RenderMetric("Dates", fmt.Sprintf("%s to %s", p.StartDate.Format("Jan 02 2006"), p.EndDate.Format("Jan 02 2006")), ""),
		RenderMetric("Hours/week", fmt.Sprintf("%g", p.HoursPerWeek), ""),
		RenderMetric("Progress", fmt.Sprintf("%s week %d of %d", RenderProgressBar(p.ProgressPct(now)/100, 20), week, p.TotalWeeks), ""),
		RenderMetric("Adherence", fmt.Sprintf("%d complete, %d partial, %d missed", s.Complete, s.Partial, s.Missed),
			avgAdherence(s)),
	}
	if !p.CreatedAt.IsZero() {
		lines = append(lines, RenderMetric("Created", humanize.RelTime(p.CreatedAt, now, "ago", "from now"), ""))
	}
	if len(p.KeyEvents) > 0 {
		var events []string
		for _, e := range p.KeyEvents {
			events = append(events, fmt.Sprintf("%s (%s) %s", e.Name, e.Priority, e.Date.Format("Jan 02")))
		}
		lines = append(lines, RenderMetric("Key events", strings.Join(events, ", "), ""))
	}
	return Card("Overview", lines...)
}

func avgAdherence(s plan.Summary) string {
	if s.Complete+s.Partial+s.Missed == 0 {
		return ""
	}
	return fmt.Sprintf("avg %.0f%%", s.AvgAdherence)
}

func planPhases(p *plan.TrainingPlan) string {
	var lines []string
	for _, ph := range p.Phases {
		lines = append(lines, fmt.Sprintf("%-12s %2d wk  TID %2.0f/%2.0f/%2.0f  IF %.2f  %s",
			ph.Name, ph.Weeks, ph.TIDZ1, ph.TIDZ2, ph.TIDZ3, ph.IntensityFactorTarget, ph.Description))
	}
	return Card("Phases", lines...)
}

func planWeeks(p *plan.TrainingPlan, now time.Time) string {
	header := tableHeaderStyle.Render(fmt.Sprintf("%3s %-13s %-11s %6s %5s %5s %6s %5s %5s  %-11s %s",
		"Wk", "Dates", "Phase", "Hours", "TSS", "CTL", "Actual", "TSS", "Adh", "Status", "Notes"))
	rows := []string{header}

	current := p.CurrentWeek(now)
	for _, w := range p.Weeks {
		flag := ""
		switch {
		case w.IsRecoveryWeek:
			flag = "R"
		case w.IsTaperWeek:
			flag = "T"
		}

		actualHours, actualTSS, adherence := "-", "-", "-"
		if w.ActualHours != nil {
			actualHours = fmt.Sprintf("%.1f", *w.ActualHours)
		}
		if w.ActualTSS != nil {
			actualTSS = fmt.Sprintf("%d", *w.ActualTSS)
		}
		if w.AdherencePct != nil {
			adherence = fmt.Sprintf("%.0f%%", *w.AdherencePct)
		}

		notes := strings.Join(w.Events, ", ")
		if notes == "" && len(w.KeyWorkouts) > 0 {
			notes = w.KeyWorkouts[0]
		}

		line := fmt.Sprintf("%3d %-13s %-11s %6.1f %5d %5.1f %6s %5s %5s  %-11s %s",
			w.WeekNumber,
			w.StartDate.Format("Jan 02")+"-"+w.EndDate.Format("Jan 02"),
			truncate(w.Phase+" "+flag, 11),
			w.TargetHours, w.TargetTSS, w.TargetCTL,
			actualHours, actualTSS, adherence,
			w.Status(),
			truncate(notes, 40),
		)
		style := tableRowStyle
		if w.WeekNumber == current {
			style = currentRowStyle
		}
		rows = append(rows, style.Render(line))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// CTLChart plots target CTL, and actual CTL where known, per plan week
func CTLChart(p *plan.TrainingPlan) string {
	if len(p.Weeks) < 2 {
		return ""
	}

	target := make([]float64, len(p.Weeks))
	var actual []float64
	for i, w := range p.Weeks {
		target[i] = w.TargetCTL
		if w.ActualCTL != nil && len(actual) == i {
			actual = append(actual, *w.ActualCTL)
		}
	}

	series := [][]float64{target}
	legends := []string{"target CTL"}
	if len(actual) > 1 {
		series = append(series, actual)
		legends = append(legends, "actual CTL")
	}

	graph := asciigraph.PlotMany(series,
		asciigraph.Height(8),
		asciigraph.Width(min(max(len(target)*4, 30), 70)),
		asciigraph.Precision(0),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Green),
		asciigraph.SeriesLegends(legends...),
		asciigraph.Caption("CTL by week"),
	)
	return Card("Fitness Progression", graph)
}

// Refinement renders the outcome of a refinement attempt
func Refinement(res *refine.Result) string {
	var lines []string
	if !res.Refined {
		lines = append(lines, WarningStyle.Render("Refinement unavailable, showing template plan"))
		if res.Err != nil {
			lines = append(lines, ErrorStyle.Render("Reason: "+res.Err.Error()))
		}
	} else {
		weeks := make([]string, len(res.Applied))
		for i, n := range res.Applied {
			weeks[i] = fmt.Sprintf("%d", n)
		}
		lines = append(lines, SuccessStyle.Render(fmt.Sprintf("Refined %d of %d weeks: %s",
			len(res.Applied), len(res.Plan.Weeks), strings.Join(weeks, ", "))))
	}

	for _, r := range res.Rejected {
		lines = append(lines, WarningStyle.Render(fmt.Sprintf("Kept template for week %d (line %d): %s", r.Week, r.Line, r.Reason)))
	}
	if res.Analysis != "" {
		lines = append(lines, "", res.Analysis)
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
