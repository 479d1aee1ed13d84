package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cycling-planner/internal/plan"
	"cycling-planner/internal/refine"
	"cycling-planner/internal/store"
)

// PlanService generates, reconciles, refines and persists training plans
type PlanService struct {
	store     *store.DB
	analysis  *AnalysisService
	history   *HistoryBuilder
	generator *plan.Generator
	refiner   *refine.Refiner
	path      string
	logger    *slog.Logger
	now       func() time.Time
}

// NewPlanService creates a plan service storing its plan at path. refiner
// may be nil when no advisory service is configured.
func NewPlanService(db *store.DB, history *HistoryBuilder, scheme plan.Scheme, refiner *refine.Refiner, path string, logger *slog.Logger) *PlanService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlanService{
		store:     db,
		analysis:  NewAnalysisService(db, logger),
		history:   history,
		generator: plan.NewGenerator(scheme),
		refiner:   refiner,
		path:      path,
		logger:    logger,
		now:       time.Now,
	}
}

// Generate builds a template plan. When the goal carries no current CTL it
// is seeded from the latest imported activity.
func (s *PlanService) Generate(ctx context.Context, goal plan.Goal) (*plan.TrainingPlan, error) {
	if err := goal.Validate(); err != nil {
		return nil, err
	}

	if goal.CurrentCTL == nil {
		ctl, ok, err := s.analysis.CurrentCTL(ctx)
		if err != nil {
			return nil, err
		}
		if ok {
			goal.CurrentCTL = &ctl
			s.logger.Debug("seeded plan CTL from history", "ctl", ctl)
		}
	}

	p, err := s.generator.Generate(goal)
	if err != nil {
		return nil, err
	}
	s.logger.Info("generated plan", "id", p.ID, "weeks", p.TotalWeeks, "phases", len(p.Phases))
	return p, nil
}

// UpdateActuals reconciles the plan's weeks with imported activities and
// returns how many weeks have actuals.
func (s *PlanService) UpdateActuals(ctx context.Context, p *plan.TrainingPlan) (int, error) {
	activities, err := s.store.ListActivities(ctx, p.StartDate, p.EndDate)
	if err != nil {
		return 0, fmt.Errorf("listing activities: %w", err)
	}
	n := p.UpdateActuals(activities)
	s.logger.Debug("updated actuals", "weeks", n, "activities", len(activities))
	return n, nil
}

// Prompt returns the refinement prompt for p without sending it
func (s *PlanService) Prompt(ctx context.Context, p *plan.TrainingPlan) (string, error) {
	history, err := s.history.Build(ctx, p)
	if err != nil {
		return "", err
	}
	return refine.BuildPrompt(p, history), nil
}

// Refine asks the advisory service to tailor p. Only building the history
// can fail; advisory failures come back as a fallback result.
func (s *PlanService) Refine(ctx context.Context, p *plan.TrainingPlan) (*refine.Result, error) {
	if s.refiner == nil {
		return nil, fmt.Errorf("refining plan: no advisory service configured")
	}
	history, err := s.history.Build(ctx, p)
	if err != nil {
		return nil, err
	}
	return s.refiner.Refine(ctx, p, history), nil
}

// AdjustmentPrompt builds a mid-plan review prompt from the current
// training status and efficiency trend.
func (s *PlanService) AdjustmentPrompt(ctx context.Context, p *plan.TrainingPlan) (string, error) {
	var in plan.AdjustmentInput

	st, err := s.analysis.CurrentStatus(ctx)
	if err != nil && !errors.Is(err, ErrNoActivities) {
		return "", err
	}
	if st != nil {
		if st.TSB != nil {
			in.TSB = *st.TSB
		}
		if st.ACWR != nil {
			in.ACWR = *st.ACWR
		}
	}

	_, trend, err := s.analysis.EfficiencyTrend(ctx, EFHistoryDays)
	if err != nil {
		return "", err
	}
	if trend == "" {
		trend = "stable"
	}
	in.EFTrend = trend

	return p.BuildAdjustmentPrompt(in, s.now()), nil
}

// Save writes p to the plan file
func (s *PlanService) Save(p *plan.TrainingPlan) error {
	if err := plan.Save(s.path, p); err != nil {
		return err
	}
	s.logger.Debug("saved plan", "path", s.path)
	return nil
}

// Load reads the plan file
func (s *PlanService) Load() (*plan.TrainingPlan, error) {
	return plan.Load(s.path)
}

// Path returns the plan file location
func (s *PlanService) Path() string {
	return s.path
}
