package analysis

// FormDescription returns a human-readable description of TSB
func FormDescription(tsb float64) string {
	switch {
	case tsb > 25:
		return "Very fresh (possibly detrained)"
	case tsb > 10:
		return "Fresh and ready to race"
	case tsb > 0:
		return "Neutral - good for training"
	case tsb > -10:
		return "Slightly fatigued"
	case tsb > -25:
		return "Tired but building fitness"
	default:
		return "Very fatigued - rest needed"
	}
}

// ACWRDescription classifies the acute:chronic workload ratio.
func ACWRDescription(acwr float64) string {
	switch {
	case acwr > 1.5:
		return "High injury risk - spike in load"
	case acwr > 1.3:
		return "Elevated - monitor fatigue"
	case acwr >= 0.8:
		return "Optimal load progression"
	default:
		return "Detraining - load is dropping"
	}
}
