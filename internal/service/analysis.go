package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cycling-planner/internal/analysis"
	"cycling-planner/internal/store"
)

// ErrNoActivities is returned when the store holds no activities at all.
var ErrNoActivities = errors.New("no activities imported")

// AnalysisService answers aggregate questions over the activity store
type AnalysisService struct {
	store   *store.DB
	logger  *slog.Logger
	workers int
	now     func() time.Time
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(db *store.DB, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{store: db, logger: logger, workers: analysis.DefaultWorkers, now: time.Now}
}

// AnalyzePeriod aggregates every activity between from and to inclusive
func (s *AnalysisService) AnalyzePeriod(ctx context.Context, from, to time.Time) (*analysis.PeriodAggregate, error) {
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return nil, fmt.Errorf("period ends %s before it starts %s", to.Format(time.DateOnly), from.Format(time.DateOnly))
	}

	activities, err := s.store.ListActivities(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("listing activities: %w", err)
	}

	// open bounds take the span of the data; with no data there is no
	// span and the aggregate stays all zero
	if len(activities) == 0 && (from.IsZero() || to.IsZero()) {
		w := analysis.Window{Label: "period", From: from, To: to}
		agg := analysis.AnalyzePeriod(w, nil)
		agg.Recovery = analysis.RecoveryMetrics{}
		return &agg, nil
	}
	if from.IsZero() {
		from = activities[0].StartDateLocal
	}
	if to.IsZero() {
		to = activities[len(activities)-1].StartDateLocal
	}

	agg := analysis.AnalyzePeriod(analysis.Window{Label: "period", From: from, To: to}, activities)
	return &agg, nil
}

// AnalyzeWeeks aggregates the last n Monday-to-Sunday weeks concurrently, oldest first
func (s *AnalysisService) AnalyzeWeeks(ctx context.Context, n int) ([]analysis.PeriodAggregate, error) {
	return s.analyzeWindows(ctx, analysis.WeeklyWindows(s.now(), n))
}

// AnalyzeMonths aggregates the last n calendar months concurrently, oldest first
func (s *AnalysisService) AnalyzeMonths(ctx context.Context, n int) ([]analysis.PeriodAggregate, error) {
	return s.analyzeWindows(ctx, analysis.MonthlyWindows(s.now(), n))
}

func (s *AnalysisService) analyzeWindows(ctx context.Context, windows []analysis.Window) ([]analysis.PeriodAggregate, error) {
	if len(windows) == 0 {
		return nil, nil
	}

	activities, err := s.store.ListActivities(ctx, windows[0].From, windows[len(windows)-1].To)
	if err != nil {
		return nil, fmt.Errorf("listing activities: %w", err)
	}

	start := time.Now()
	results, err := analysis.AnalyzeWindows(ctx, activities, windows, s.workers)
	if err != nil {
		return nil, fmt.Errorf("analyzing windows: %w", err)
	}
	s.logger.Debug("analyzed windows", "windows", len(windows), "activities", len(activities), "duration", time.Since(start))
	return results, nil
}

// ClassifyRecentPhase compares the last days with the days before them
func (s *AnalysisService) ClassifyRecentPhase(ctx context.Context, days int) (*analysis.PhaseClassification, error) {
	if days <= 0 {
		days = PhaseWindowDays
	}

	current := analysis.TrailingWindow(s.now(), days, "current")
	previous := analysis.TrailingWindow(current.From.AddDate(0, 0, -1), days, "previous")

	activities, err := s.store.ListActivities(ctx, previous.From, current.To)
	if err != nil {
		return nil, fmt.Errorf("listing activities: %w", err)
	}

	c := analysis.ClassifyPeriods(current.Filter(activities), previous.Filter(activities))
	return &c, nil
}

// Status is the athlete's most recent fitness, fatigue and form
type Status struct {
	Date            time.Time
	CTL             *float64
	ATL             *float64
	TSB             *float64
	ACWR            *float64
	FormDescription string
	ACWRDescription string
	Activities      int
}

// CurrentStatus reads training status from the most recent activity
func (s *AnalysisService) CurrentStatus(ctx context.Context) (*Status, error) {
	latest, err := s.store.LatestActivity(ctx)
	if errors.Is(err, store.ErrActivityNotFound) {
		return nil, ErrNoActivities
	}
	if err != nil {
		return nil, fmt.Errorf("getting latest activity: %w", err)
	}

	count, err := s.store.CountActivities(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting activities: %w", err)
	}

	st := &Status{
		Date:       latest.StartDateLocal,
		CTL:        latest.CTL,
		ATL:        latest.ATL,
		TSB:        latest.TSB,
		ACWR:       latest.ACWR,
		Activities: count,
	}
	if st.TSB != nil {
		st.FormDescription = analysis.FormDescription(*st.TSB)
	}
	if st.ACWR != nil {
		st.ACWRDescription = analysis.ACWRDescription(*st.ACWR)
	}
	return st, nil
}

// PMC returns the fitness/fatigue/form series between from and to
func (s *AnalysisService) PMC(ctx context.Context, from, to time.Time) ([]analysis.PMCPoint, error) {
	activities, err := s.store.ListActivities(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("listing activities: %w", err)
	}
	return analysis.PMCData(activities), nil
}

// CurrentCTL returns the latest known CTL within the lookback window
func (s *AnalysisService) CurrentCTL(ctx context.Context) (float64, bool, error) {
	from := s.now().AddDate(0, 0, -CTLLookbackDays)
	activities, err := s.store.ListActivities(ctx, from, time.Time{})
	if err != nil {
		return 0, false, fmt.Errorf("listing activities: %w", err)
	}
	ctl, ok := analysis.LatestCTL(activities)
	return ctl, ok, nil
}

// EfficiencyTrend returns steady-state EF samples of the last days and a
// label for their direction: improving, stable or declining ("" when
// there are too few samples).
func (s *AnalysisService) EfficiencyTrend(ctx context.Context, days int) ([]analysis.EfficiencyPoint, string, error) {
	if days <= 0 {
		days = EFHistoryDays
	}
	w := analysis.TrailingWindow(s.now(), days, "efficiency")
	activities, err := s.store.ListActivities(ctx, w.From, w.To)
	if err != nil {
		return nil, "", fmt.Errorf("listing activities: %w", err)
	}

	points := analysis.EfficiencyTrend(activities, true)
	pct, ok := analysis.EfficiencyChange(points, EFCompareSamples)
	if !ok {
		return points, "", nil
	}
	return points, trendLabel(pct), nil
}

func trendLabel(pct float64) string {
	switch {
	case pct > EFTrendThresholdPct:
		return "improving"
	case pct < -EFTrendThresholdPct:
		return "declining"
	default:
		return "stable"
	}
}
