package refine

import (
	"fmt"
	"log/slog"

	"cycling-planner/internal/plan"
)

// Rejection records a week line that was not applied.
type Rejection struct {
	Week   int
	Line   int
	Reason string
}

// Outcome lists which proposals changed the plan and which were discarded.
type Outcome struct {
	Applied  []int
	Rejected []Rejection
}

// Apply writes valid proposals into p's target fields and re-derives CTL.
// Invalid, duplicate or out-of-range weeks keep their existing values.
// The first proposal for a week wins.
func Apply(p *plan.TrainingPlan, proposals []Proposal, logger *slog.Logger) Outcome {
	if logger == nil {
		logger = slog.Default()
	}

	var out Outcome
	seen := make(map[int]bool, len(proposals))

	reject := func(prop Proposal, reason string) {
		out.Rejected = append(out.Rejected, Rejection{Week: prop.Week, Line: prop.Line, Reason: reason})
		logger.Warn("rejected week refinement", "week", prop.Week, "line", prop.Line, "reason", reason)
	}

	for _, prop := range proposals {
		if err := prop.Validate(); err != nil {
			reject(prop, err.Error())
			continue
		}
		if prop.Week < 1 || prop.Week > len(p.Weeks) {
			reject(prop, fmt.Sprintf("plan has no week %d", prop.Week))
			continue
		}
		if seen[prop.Week] {
			reject(prop, "duplicate week")
			continue
		}
		seen[prop.Week] = true

		w := &p.Weeks[prop.Week-1]
		w.TargetTSS = prop.TSS
		w.TargetHours = prop.Hours
		w.TIDZ1 = float64(prop.Z1)
		w.TIDZ2 = float64(prop.Z2)
		w.TIDZ3 = float64(prop.Z3)
		if prop.Workouts != nil {
			w.KeyWorkouts = prop.Workouts
		}
		if prop.Notes != "" {
			w.RecoveryNotes = prop.Notes
		}
		out.Applied = append(out.Applied, prop.Week)
	}

	if len(out.Applied) > 0 {
		p.RecalculateCTL()
	}
	logger.Debug("applied refinements", "applied", len(out.Applied), "rejected", len(out.Rejected))
	return out
}
