package plan

// ctlDays is the time constant of the chronic training load.
const ctlDays = 42

// NextCTL advances fitness by one week of weeklyTSS.
func NextCTL(ctl float64, weeklyTSS int) float64 {
	return ctl + (float64(weeklyTSS)-ctl*7)/ctlDays
}

// SeedCTL returns the fitness the plan starts from. Plans written before
// start_ctl was recorded recover it by inverting week 1's CTL step.
func (p *TrainingPlan) SeedCTL() float64 {
	if p.StartCTL != nil {
		return *p.StartCTL
	}
	if len(p.Weeks) == 0 {
		return DefaultScheme().DefaultCTL
	}
	w := p.Weeks[0]
	// ctl1 = seed*5/6 + tss1/42
	return (ctlDays*w.TargetCTL - float64(w.TargetTSS)) / 35
}

// RecalculateCTL re-derives every week's target CTL from the seed fitness
// and the current weekly TSS targets. The walk starts before week 1, so a
// plan whose TSS targets are unchanged re-derives to identical CTL values.
func (p *TrainingPlan) RecalculateCTL() {
	ctl := p.SeedCTL()
	for i := range p.Weeks {
		ctl = NextCTL(ctl, p.Weeks[i].TargetTSS)
		p.Weeks[i].TargetCTL = round1(ctl)
	}
}
