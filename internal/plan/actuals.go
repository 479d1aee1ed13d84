package plan

import (
	"cycling-planner/internal/store"
)

// UpdateActuals fills each week's actual hours, TSS, CTL and adherence from
// the activities that fall inside it. Weeks without activities are left
// untouched. Returns the number of weeks updated.
func (p *TrainingPlan) UpdateActuals(activities []store.ActivitySummary) int {
	updated := 0
	for i := range p.Weeks {
		w := &p.Weeks[i]

		var seconds, tss float64
		var last *store.ActivitySummary
		for j := range activities {
			a := &activities[j]
			if !w.Contains(a.StartDateLocal) {
				continue
			}
			seconds += float64(a.MovingTime)
			if a.TrainingStressScore != nil {
				tss += *a.TrainingStressScore
			}
			if last == nil || !a.StartDateLocal.Before(last.StartDateLocal) {
				last = a
			}
		}
		if last == nil {
			continue
		}

		hours := round1(seconds / 3600)
		actualTSS := int(tss)
		adherence := 100.0
		if w.TargetTSS > 0 {
			adherence = float64(actualTSS) / float64(w.TargetTSS) * 100
		}
		adherence = round1(adherence)

		w.ActualHours = &hours
		w.ActualTSS = &actualTSS
		w.ActualCTL = nil
		if last.CTL != nil {
			ctl := round1(*last.CTL)
			w.ActualCTL = &ctl
		}
		w.AdherencePct = &adherence
		updated++
	}
	return updated
}
