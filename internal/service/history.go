package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cycling-planner/internal/analysis"
	"cycling-planner/internal/config"
	"cycling-planner/internal/plan"
	"cycling-planner/internal/store"
)

// HistoryBuilder renders the athlete's training history as prompt text
type HistoryBuilder struct {
	store    *store.DB
	analysis *AnalysisService
	athlete  config.AthleteConfig
	logger   *slog.Logger
	now      func() time.Time
}

// NewHistoryBuilder creates a history builder for one athlete
func NewHistoryBuilder(db *store.DB, athlete config.AthleteConfig, logger *slog.Logger) *HistoryBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	h := &HistoryBuilder{
		store:    db,
		analysis: NewAnalysisService(db, logger),
		athlete:  athlete,
		logger:   logger,
		now:      time.Now,
	}
	h.analysis.now = func() time.Time { return h.now() }
	return h
}

// Build returns the history text. p may be nil; when set its FTP targets
// are used for the goal gap.
func (h *HistoryBuilder) Build(ctx context.Context, p *plan.TrainingPlan) (string, error) {
	all, err := h.store.ListActivities(ctx, time.Time{}, time.Time{})
	if err != nil {
		return "", fmt.Errorf("listing activities: %w", err)
	}
	if len(all) == 0 {
		return "No historical activities found.\n", nil
	}

	var b strings.Builder

	b.WriteString("=== ATHLETE PROFILE & HISTORY ===\n")
	h.writeProfile(&b, all, p)

	b.WriteString("\n=== CURRENT TRAINING STATUS ===\n")
	if err := h.writeStatus(ctx, &b); err != nil {
		return "", err
	}

	b.WriteString("\n=== DETECTED TRAINING PHASE ===\n")
	phase, err := h.analysis.ClassifyRecentPhase(ctx, PhaseWindowDays)
	if err != nil {
		return "", err
	}
	writePhase(&b, phase)

	fmt.Fprintf(&b, "\n=== RECENT MONTHLY TRENDS (Last %d Months) ===\n", HistoryMonths)
	months, err := h.analysis.AnalyzeMonths(ctx, HistoryMonths)
	if err != nil {
		return "", err
	}
	writePeriods(&b, months, false)

	b.WriteString("\n=== EFFICIENCY FACTOR TRENDS (Aerobic Fitness) ===\n")
	if err := h.writeEfficiency(ctx, &b); err != nil {
		return "", err
	}

	fmt.Fprintf(&b, "\n=== LAST %d WEEKS SUMMARY ===\n", HistoryWeeks)
	weeks, err := h.analysis.AnalyzeWeeks(ctx, HistoryWeeks)
	if err != nil {
		return "", err
	}
	writePeriods(&b, weeks, true)

	b.WriteString("\n=== TRAINING LOAD PATTERNS ===\n")
	h.writeLoadPatterns(&b, all)

	return b.String(), nil
}

func (h *HistoryBuilder) writeProfile(b *strings.Builder, all []store.ActivitySummary, p *plan.TrainingPlan) {
	oldest, newest := all[0].StartDateLocal, all[len(all)-1].StartDateLocal
	years := newest.Sub(oldest).Hours() / 24 / 365.25

	fmt.Fprintf(b, "Data spans: %s to %s\n", oldest.Format(time.DateOnly), newest.Format(time.DateOnly))
	fmt.Fprintf(b, "Total history: %.1f years (%d activities)\n", years, len(all))

	ftp, weight := h.athlete.FTP, h.athlete.WeightKG
	if ftp > 0 && weight > 0 {
		fmt.Fprintf(b, "Current FTP: %.0fW, Weight: %.1fkg, W/kg: %.2f\n", ftp, weight, ftp/weight)
	}
	if p != nil && p.WeightKG > 0 {
		startWkg, targetWkg := p.StartFTP/p.WeightKG, p.TargetFTP/p.WeightKG
		fmt.Fprintf(b, "THIS PLAN'S GOAL: %.0fW (%.2f W/kg) → %.0fW (%.2f W/kg) by %s\n",
			p.StartFTP, startWkg, p.TargetFTP, targetWkg, p.EndDate.Format(time.DateOnly))
		if ftp > 0 && weight > 0 {
			gap := targetWkg - ftp/weight
			fmt.Fprintf(b, "Gap to Plan Goal: %.2f W/kg (%.0fW)\n", gap, gap*weight)
		}
	}
}

func (h *HistoryBuilder) writeStatus(ctx context.Context, b *strings.Builder) error {
	st, err := h.analysis.CurrentStatus(ctx)
	if errors.Is(err, ErrNoActivities) {
		b.WriteString("No status available.\n")
		return nil
	}
	if err != nil {
		return err
	}

	if st.CTL != nil {
		fmt.Fprintf(b, "CTL (Fitness): %.1f (%s)\n", *st.CTL, fitnessLevel(*st.CTL))
	}
	if st.ATL != nil {
		fmt.Fprintf(b, "ATL (Fatigue): %.1f\n", *st.ATL)
	}
	if st.TSB != nil {
		fmt.Fprintf(b, "TSB (Form): %.1f (%s)\n", *st.TSB, st.FormDescription)
	}
	if st.ACWR != nil {
		fmt.Fprintf(b, "ACWR: %.2f (%s)\n", *st.ACWR, st.ACWRDescription)
	}
	if st.CTL == nil && st.ATL == nil && st.TSB == nil && st.ACWR == nil {
		b.WriteString("No load model values on the latest activity.\n")
	}
	return nil
}

func fitnessLevel(ctl float64) string {
	switch {
	case ctl > 100:
		return "Elite"
	case ctl > 70:
		return "Strong"
	case ctl > 50:
		return "Good"
	default:
		return "Building"
	}
}

func writePhase(b *strings.Builder, c *analysis.PhaseClassification) {
	fmt.Fprintf(b, "Phase: %s (confidence %.0f%%)\n", c.Phase, c.Confidence*100)
	if c.Description != "" {
		fmt.Fprintf(b, "%s\n", c.Description)
	}
	if c.Previous != nil {
		fmt.Fprintf(b, "Volume trend: %+.0f%%, Intensity trend: %+.0f%%\n", c.VolumeTrend, c.IntensityTrend)
	}
	fmt.Fprintf(b, "Last %d days: %.1fh, IF %.2f, %d rides\n", PhaseWindowDays, c.Current.Hours, c.Current.IF, c.Current.Activities)
	if c.Warning {
		b.WriteString("WARNING: volume and intensity are rising together\n")
	}
}

func writePeriods(b *strings.Builder, periods []analysis.PeriodAggregate, recovery bool) {
	for _, p := range periods {
		if p.Load.ActivityCount == 0 {
			fmt.Fprintf(b, "%s: no rides\n", p.Window.Label)
			continue
		}
		fmt.Fprintf(b, "%s: %.1fh, TSS %.0f, %d rides, IF %.2f, TID Z1=%.0f%% Z2=%.0f%% Z3=%.0f%%",
			p.Window.Label, p.Load.TotalHours, p.Load.TotalTSS, p.Load.ActivityCount,
			p.Intensity.AvgIntensityFactor, p.TID.Z1, p.TID.Z2, p.TID.Z3)
		if w, ok := bestPower(p.PowerCurve, 1200); ok {
			fmt.Fprintf(b, ", best 20min %.0fW", w)
		}
		if recovery {
			fmt.Fprintf(b, ", monotony %.2f, strain %.0f, rest days %d",
				p.Recovery.Monotony, p.Recovery.Strain, p.Recovery.RestDays)
		}
		b.WriteString("\n")
	}
}

func bestPower(curve []analysis.PowerCurvePoint, seconds int) (float64, bool) {
	for _, pt := range curve {
		if pt.Seconds == seconds && pt.Watts > 0 {
			return pt.Watts, true
		}
	}
	return 0, false
}

func (h *HistoryBuilder) writeEfficiency(ctx context.Context, b *strings.Builder) error {
	points, trend, err := h.analysis.EfficiencyTrend(ctx, EFHistoryDays)
	if err != nil {
		return err
	}
	if len(points) == 0 {
		b.WriteString("No steady-state rides with efficiency data.\n")
		return nil
	}

	var sum float64
	for _, p := range points {
		sum += p.EfficiencyFactor
	}
	fmt.Fprintf(b, "Steady rides (last %d days): %d, average EF %.2f, latest EF %.2f\n",
		EFHistoryDays, len(points), sum/float64(len(points)), points[len(points)-1].EfficiencyFactor)
	if pct, ok := analysis.EfficiencyChange(points, EFCompareSamples); ok {
		fmt.Fprintf(b, "EF trend: %s (%+.1f%% over the last %d rides)\n", trend, pct, EFCompareSamples)
	}
	return nil
}

func (h *HistoryBuilder) writeLoadPatterns(b *strings.Builder, all []store.ActivitySummary) {
	w := analysis.TrailingWindow(h.now(), LoadPatternDays, "patterns")
	recent := w.Filter(all)
	if len(recent) == 0 {
		b.WriteString("Insufficient recent data for load patterns.\n")
		return
	}

	weeks := float64(w.Days()) / 7
	load := analysis.AggregateLoad(recent)
	fmt.Fprintf(b, "Recent 3-month average: %.1fh/week, %.1f rides/week\n",
		load.TotalHours/weeks, float64(load.ActivityCount)/weeks)

	var longest, longRides, easy, tempo, hard int
	for _, a := range recent {
		longest = max(longest, a.MovingTime)
		if a.MovingTime > LongRideSeconds {
			longRides++
		}
		if a.IntensityFactor == nil {
			continue
		}
		switch {
		case *a.IntensityFactor < EasyRideMaxIF:
			easy++
		case *a.IntensityFactor < TempoRideMaxIF:
			tempo++
		default:
			hard++
		}
	}

	fmt.Fprintf(b, "Typical ride: %.1fh, Longest recent: %.1fh\n", load.AvgHoursPerActivity, float64(longest)/3600)
	tid := analysis.AggregateTID(recent)
	if tid.Z1+tid.Z2+tid.Z3 > 0 {
		fmt.Fprintf(b, "3-month TID: Z1=%.0f%% Z2=%.0f%% Z3=%.0f%%\n", tid.Z1, tid.Z2, tid.Z3)
	}
	fmt.Fprintf(b, "Avg weekly TSS: %.0f\n", load.TotalTSS/weeks)
	if longRides > 0 {
		fmt.Fprintf(b, "Long rides (>2.5h): %.1f/week\n", float64(longRides)/weeks)
	}
	fmt.Fprintf(b, "Ride types: %d easy, %d tempo, %d hard (last 3 months)\n", easy, tempo, hard)
}
