package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"

	"cycling-planner/internal/analysis"
	"cycling-planner/internal/service"
)

// Period renders every aggregate of one period as cards
func Period(agg *analysis.PeriodAggregate) string {
	title := Title(fmt.Sprintf("%s to %s (%d days)",
		agg.Window.From.Format("Jan 02 2006"), agg.Window.To.Format("Jan 02 2006"), agg.Window.Days()))

	if agg.Load.ActivityCount == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, StatusStyle.Render("No activities in this period"))
	}

	load := Card("Load",
		RenderMetric("Activities", humanize.Comma(int64(agg.Load.ActivityCount)), ""),
		RenderMetric("Hours", fmt.Sprintf("%.1f", agg.Load.TotalHours), ""),
		RenderMetric("TSS", humanize.FormatFloat("#,###.", agg.Load.TotalTSS), ""),
		RenderMetric("Work", humanize.FormatFloat("#,###.", agg.Load.TotalKilojoules)+" kJ", ""),
		RenderMetric("Distance", humanize.FormatFloat("#,###.#", agg.Load.TotalDistanceKM)+" km", ""),
		RenderMetric("Climbing", humanize.FormatFloat("#,###.", agg.Load.TotalElevationM)+" m", ""),
	)

	intensity := Card("Intensity",
		RenderMetric("Avg IF", fmt.Sprintf("%.2f", agg.Intensity.AvgIntensityFactor), ""),
		RenderMetric("Avg NP", fmt.Sprintf("%.0f W", agg.Intensity.AvgNormalizedPower), ""),
		RenderMetric("Avg power", fmt.Sprintf("%.0f W", agg.Intensity.AvgPower), ""),
		"",
		TIDBars(agg.TID),
	)

	physiology := []string{StatusStyle.Render("No steady-state rides with EF data")}
	if agg.Physiology.FilteredCount > 0 {
		physiology = []string{
			RenderMetric("Avg EF", fmt.Sprintf("%.2f", agg.Physiology.AvgEfficiencyFactor), ""),
			RenderMetric("Avg decoupling", fmt.Sprintf("%.1f%%", agg.Physiology.AvgDecoupling), ""),
			RenderMetric("Steady rides", fmt.Sprintf("%d", agg.Physiology.FilteredCount), ""),
		}
	}

	r := agg.Recovery
	recovery := Card("Recovery",
		RenderMetric("Monotony", fmt.Sprintf("%.2f", r.Monotony), ""),
		RenderMetric("Strain", humanize.FormatFloat("#,###.", r.Strain), ""),
		RenderMetric("Rest days", fmt.Sprintf("%d of %d", r.RestDays, len(r.Daily)), ""),
		RenderMetric("Max day", fmt.Sprintf("%.0f TSS", r.MaxDailyTSS), ""),
	)

	top := lipgloss.JoinHorizontal(lipgloss.Top, load, " ", intensity)
	bottom := lipgloss.JoinHorizontal(lipgloss.Top, Card("Physiology", physiology...), " ", recovery)

	sections := []string{title, top, bottom, PowerCurve(agg.PowerCurve)}
	if chart := DailyTSSChart(r.Daily); chart != "" {
		sections = append(sections, chart)
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// TIDBars renders the three intensity zones as bars
func TIDBars(tid analysis.TIDSummary) string {
	lines := []string{
		fmt.Sprintf("Z1 %s %3.0f%%", RenderProgressBar(tid.Z1/100, 20), tid.Z1),
		fmt.Sprintf("Z2 %s %3.0f%%", RenderProgressBar(tid.Z2/100, 20), tid.Z2),
		fmt.Sprintf("Z3 %s %3.0f%%", RenderProgressBar(tid.Z3/100, 20), tid.Z3),
	}
	return strings.Join(lines, "\n")
}

// PowerCurve renders the best power per duration, skipping empty durations
func PowerCurve(curve []analysis.PowerCurvePoint) string {
	var labels, values []string
	for _, p := range curve {
		if p.Watts <= 0 {
			continue
		}
		w := max(len(p.Label), 5)
		labels = append(labels, fmt.Sprintf("%*s", w, p.Label))
		values = append(values, fmt.Sprintf("%*.0f", w, p.Watts))
	}
	if len(labels) == 0 {
		return Card("Power Curve", StatusStyle.Render("No power data"))
	}
	return Card("Power Curve",
		tableHeaderStyle.Render(strings.Join(labels, " ")),
		tableRowStyle.Render(strings.Join(values, " ")),
	)
}

// DailyTSSChart plots the daily TSS series; empty for fewer than two days
func DailyTSSChart(daily []analysis.DailyTSS) string {
	if len(daily) < 2 {
		return ""
	}
	data := make([]float64, len(daily))
	for i, d := range daily {
		data[i] = d.TSS
	}
	graph := asciigraph.Plot(data,
		asciigraph.Height(6),
		asciigraph.Width(min(max(len(data), 30), 70)),
		asciigraph.Precision(0),
	)
	return Card("Daily TSS", graph)
}

// Weeks renders one row per weekly aggregate plus a weekly TSS chart
func Weeks(weeks []analysis.PeriodAggregate) string {
	header := tableHeaderStyle.Render(fmt.Sprintf("%-8s %5s %6s %5s %5s %12s %8s %7s %4s",
		"Week", "Rides", "Hours", "TSS", "IF", "TID Z1/Z2/Z3", "Monotony", "Strain", "Rest"))

	rows := []string{header}
	tss := make([]float64, 0, len(weeks))
	for _, w := range weeks {
		tss = append(tss, w.Load.TotalTSS)
		rows = append(rows, tableRowStyle.Render(fmt.Sprintf("%-8s %5d %6.1f %5.0f %5.2f %12s %8.2f %7.0f %4d",
			w.Window.Label,
			w.Load.ActivityCount,
			w.Load.TotalHours,
			w.Load.TotalTSS,
			w.Intensity.AvgIntensityFactor,
			fmt.Sprintf("%.0f/%.0f/%.0f", w.TID.Z1, w.TID.Z2, w.TID.Z3),
			w.Recovery.Monotony,
			w.Recovery.Strain,
			w.Recovery.RestDays,
		)))
	}

	sections := []string{Title("Weekly Load"), lipgloss.JoinVertical(lipgloss.Left, rows...)}
	if len(tss) > 1 {
		graph := asciigraph.Plot(tss,
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.Precision(0),
			asciigraph.Caption("weekly TSS"),
		)
		sections = append(sections, "", graph)
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// Phase renders a phase classification
func Phase(c *analysis.PhaseClassification) string {
	lines := []string{
		RenderMetric("Phase", string(c.Phase), ""),
		RenderMetric("Confidence", fmt.Sprintf("%.0f%%", c.Confidence*100), ""),
		RenderMetric("Current", fmt.Sprintf("%.1fh, IF %.2f, %d rides", c.Current.Hours, c.Current.IF, c.Current.Activities), ""),
	}
	if c.Previous != nil {
		lines = append(lines,
			RenderMetric("Previous", fmt.Sprintf("%.1fh, IF %.2f, %d rides", c.Previous.Hours, c.Previous.IF, c.Previous.Activities), ""),
			RenderMetric("Volume trend", "", fmt.Sprintf("%+.0f%%", c.VolumeTrend)),
			RenderMetric("Intensity trend", "", fmt.Sprintf("%+.0f%%", c.IntensityTrend)),
		)
	}
	if c.Description != "" {
		lines = append(lines, "", c.Description)
	}
	if c.Warning {
		lines = append(lines, WarningStyle.Render("Warning: volume and intensity rising together"))
	}
	return Card("Training Phase", lines...)
}

// Status renders the latest fitness, fatigue and form
func Status(st *service.Status) string {
	value := func(v *float64, format string) string {
		if v == nil {
			return "-"
		}
		return fmt.Sprintf(format, *v)
	}

	lines := []string{
		RenderMetric("As of", st.Date.Format("Jan 02 2006"), ""),
		RenderMetric("Fitness (CTL)", value(st.CTL, "%.1f"), ""),
		RenderMetric("Fatigue (ATL)", value(st.ATL, "%.1f"), ""),
		RenderMetric("Form (TSB)", value(st.TSB, "%.1f"), st.FormDescription),
		RenderMetric("ACWR", value(st.ACWR, "%.2f"), st.ACWRDescription),
		RenderMetric("Activities", humanize.Comma(int64(st.Activities)), ""),
	}
	return Card("Current Status", lines...)
}

// PMC plots fitness and fatigue over time
func PMC(points []analysis.PMCPoint) string {
	if len(points) < 2 {
		return ""
	}
	ctl := make([]float64, len(points))
	atl := make([]float64, len(points))
	for i, p := range points {
		ctl[i], atl[i] = p.CTL, p.ATL
	}
	graph := asciigraph.PlotMany([][]float64{ctl, atl},
		asciigraph.Height(10),
		asciigraph.Width(70),
		asciigraph.Precision(0),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Red),
		asciigraph.SeriesLegends("CTL", "ATL"),
		asciigraph.Caption(fmt.Sprintf("%s to %s",
			points[0].Date.Format("Jan 02 2006"), points[len(points)-1].Date.Format("Jan 02 2006"))),
	)
	return Card("Performance Management", graph)
}

// Import renders the outcome of an import
func Import(res *service.ImportResult) string {
	lines := []string{
		SuccessStyle.Render(fmt.Sprintf("Imported %s activities", humanize.Comma(int64(res.Imported)))),
	}
	if res.Skipped > 0 {
		lines = append(lines, WarningStyle.Render(fmt.Sprintf("Skipped %s unusable rows", humanize.Comma(int64(res.Skipped)))))
	}
	lines = append(lines, StatusStyle.Render(fmt.Sprintf("%s activities stored, took %s",
		humanize.Comma(int64(res.Total)), res.Duration.Round(time.Millisecond))))
	return strings.Join(lines, "\n")
}
