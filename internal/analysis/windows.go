package analysis

import (
	"context"

	"golang.org/x/sync/errgroup"

	"cycling-planner/internal/store"
)

// DefaultWorkers bounds how many windows are aggregated concurrently.
const DefaultWorkers = 4

// AnalyzeWindows aggregates independent windows concurrently. Each worker
// filters its own copy of the activities; results keep window order.
func AnalyzeWindows(ctx context.Context, activities []store.ActivitySummary, windows []Window, workers int) ([]PeriodAggregate, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	results := make([]PeriodAggregate, len(windows))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, w := range windows {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = AnalyzePeriod(w, activities)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
