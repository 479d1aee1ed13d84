package plan

// WeekStatus labels how well a week's target was met.
type WeekStatus string

const (
	StatusNotStarted WeekStatus = "Not Started"
	StatusComplete   WeekStatus = "Complete"
	StatusPartial    WeekStatus = "Partial"
	StatusMissed     WeekStatus = "Missed"
)

// Status maps adherence to a label: at least 90% is complete, at least
// 70% partial, anything lower missed. Weeks without actuals are not started.
func (w WeeklyPlan) Status() WeekStatus {
	if w.ActualTSS == nil || w.AdherencePct == nil {
		return StatusNotStarted
	}
	switch {
	case *w.AdherencePct >= 90:
		return StatusComplete
	case *w.AdherencePct >= 70:
		return StatusPartial
	default:
		return StatusMissed
	}
}

// Summary counts weeks by status.
type Summary struct {
	Weeks        int
	Complete     int
	Partial      int
	Missed       int
	NotStarted   int
	AvgAdherence float64 // over weeks with actuals
}

// Summarize counts the plan's weeks by status.
func (p *TrainingPlan) Summarize() Summary {
	s := Summary{Weeks: len(p.Weeks)}
	var adherence float64
	var tracked int
	for _, w := range p.Weeks {
		switch w.Status() {
		case StatusComplete:
			s.Complete++
		case StatusPartial:
			s.Partial++
		case StatusMissed:
			s.Missed++
		default:
			s.NotStarted++
			continue
		}
		adherence += *w.AdherencePct
		tracked++
	}
	if tracked > 0 {
		s.AvgAdherence = adherence / float64(tracked)
	}
	return s
}
