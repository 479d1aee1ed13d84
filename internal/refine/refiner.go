package refine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cycling-planner/internal/plan"
)

// DefaultTimeout bounds a single advisory call.
const DefaultTimeout = 2 * time.Minute

// ErrNoRefinements is reported when a response contains no usable week.
var ErrNoRefinements = errors.New("no valid week refinements in response")

// Advisor turns a prompt into free-text advice.
type Advisor interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Result is the outcome of one refinement attempt. When Refined is false
// Plan is the untouched template and Err says why.
type Result struct {
	Plan     *plan.TrainingPlan
	Refined  bool
	Applied  []int
	Rejected []Rejection
	Analysis string
	Err      error
}

// Refiner asks an Advisor to tailor a template plan.
type Refiner struct {
	advisor Advisor
	timeout time.Duration
	logger  *slog.Logger
}

// NewRefiner creates a refiner. A non-positive timeout uses DefaultTimeout.
func NewRefiner(advisor Advisor, timeout time.Duration, logger *slog.Logger) *Refiner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Refiner{advisor: advisor, timeout: timeout, logger: logger}
}

// Refine sends the template and history to the advisor and applies the
// response to a copy of the template. It never fails: any problem with
// the call or the response yields the template unchanged.
func (r *Refiner) Refine(ctx context.Context, template *plan.TrainingPlan, history string) *Result {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	response, err := r.advisor.Complete(ctx, BuildPrompt(template, history))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("advisor timed out after %s: %w", r.timeout, err)
		}
		r.logger.Warn("refinement unavailable, keeping template", "error", err)
		return &Result{Plan: template, Err: err}
	}
	r.logger.Debug("advisor responded", "duration", time.Since(start), "bytes", len(response))

	refined := template.Clone()
	outcome := Apply(refined, ParseResponse(response), r.logger)
	if len(outcome.Applied) == 0 {
		r.logger.Warn("refinement unavailable, keeping template", "error", ErrNoRefinements,
			"rejected", len(outcome.Rejected))
		return &Result{Plan: template, Rejected: outcome.Rejected, Err: ErrNoRefinements}
	}

	r.logger.Info("plan refined", "weeks", len(outcome.Applied), "rejected", len(outcome.Rejected))
	return &Result{
		Plan:     refined,
		Refined:  true,
		Applied:  outcome.Applied,
		Rejected: outcome.Rejected,
		Analysis: ExtractAnalysis(response),
	}
}
