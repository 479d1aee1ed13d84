package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"cycling-planner/internal/export"
	"cycling-planner/internal/plan"
)

// ExportService writes plans and load history as Parquet files
type ExportService struct {
	analysis *AnalysisService
	logger   *slog.Logger
}

// NewExportService creates a new export service
func NewExportService(analysis *AnalysisService, logger *slog.Logger) *ExportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportService{analysis: analysis, logger: logger}
}

// ExportResult lists the files written and their row counts
type ExportResult struct {
	Dir       string
	Files     []string
	PlanWeeks int
	PMCPoints int
	Days      int
}

// Export writes the fitness history and daily load into dir, plus the plan
// weeks when p is not nil. Files without rows are skipped.
func (s *ExportService) Export(ctx context.Context, dir string, p *plan.TrainingPlan) (*ExportResult, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating export directory: %w", err)
	}
	res := &ExportResult{Dir: dir}

	if p != nil && len(p.Weeks) > 0 {
		path := filepath.Join(dir, export.PlanWeeksFile)
		n, err := export.PlanWeeks(path, p)
		if err != nil {
			return nil, err
		}
		res.PlanWeeks = n
		res.Files = append(res.Files, path)
	}

	points, err := s.analysis.PMC(ctx, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	if len(points) > 0 {
		path := filepath.Join(dir, export.PMCFile)
		if res.PMCPoints, err = export.PMC(path, points); err != nil {
			return nil, err
		}
		res.Files = append(res.Files, path)
	}

	agg, err := s.analysis.AnalyzePeriod(ctx, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	if daily := agg.Recovery.Daily; len(daily) > 0 {
		path := filepath.Join(dir, export.DailyLoadFile)
		if res.Days, err = export.DailyLoad(path, daily); err != nil {
			return nil, err
		}
		res.Files = append(res.Files, path)
	}

	s.logger.Info("exported", "dir", dir, "files", len(res.Files),
		"plan_weeks", res.PlanWeeks, "pmc_points", res.PMCPoints, "days", res.Days)
	return res, nil
}
