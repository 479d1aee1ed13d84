package plan

import "strings"

// Scheme holds every tunable of plan generation: the phase templates, the
// workout library and the recovery and load-cap rules.
type Scheme struct {
	Base        TrainingPhase
	Build       TrainingPhase
	Specialty   TrainingPhase
	Taper       TrainingPhase
	Recovery    TrainingPhase
	Maintenance TrainingPhase

	// Workouts maps a lower-cased phase name (and "recovery") to its key
	// workout templates.
	Workouts map[string][]string

	RecoveryEvery    int      // every Nth week of a recovery phase is a deload
	RecoveryFactor   float64  // share of running TSS and hours in a deload week
	RecoveryPhases   []string // lower-cased phase names that get deload weeks
	MaxTSSPerHour    float64  // weekly TSS cap per available hour
	DefaultCTL       float64  // seed fitness when none is known
	KeyWorkouts      int      // key workouts per regular week
	RecoveryWorkouts int      // key workouts per deload week

	RecoveryNote string
	TaperNote    string
	DefaultNote  string
}

// DefaultScheme returns classic Base/Build/Specialty/Taper periodization.
func DefaultScheme() Scheme {
	return Scheme{
		Base: TrainingPhase{
			Name: "Base", Weeks: 8,
			Description: "Build aerobic foundation with high volume, low intensity",
			TIDZ1:       80, TIDZ2: 12, TIDZ3: 8,
			IntensityFactorTarget: 0.65, TSSRampRate: 5,
		},
		Build: TrainingPhase{
			Name: "Build", Weeks: 6,
			Description: "Increase intensity, introduce threshold work",
			TIDZ1:       70, TIDZ2: 15, TIDZ3: 15,
			IntensityFactorTarget: 0.72, TSSRampRate: 7,
		},
		Specialty: TrainingPhase{
			Name: "Specialty", Weeks: 4,
			Description: "Event-specific preparation, peak intensity",
			TIDZ1:       60, TIDZ2: 15, TIDZ3: 25,
			IntensityFactorTarget: 0.78, TSSRampRate: 3,
		},
		Taper: TrainingPhase{
			Name: "Taper", Weeks: 2,
			Description: "Reduce volume, maintain intensity, peak freshness",
			TIDZ1:       65, TIDZ2: 15, TIDZ3: 20,
			IntensityFactorTarget: 0.70, TSSRampRate: -30,
		},
		Recovery: TrainingPhase{
			Name: "Recovery", Weeks: 1,
			Description: "Active recovery week with reduced load",
			TIDZ1:       90, TIDZ2: 8, TIDZ3: 2,
			IntensityFactorTarget: 0.55, TSSRampRate: -40,
		},
		Maintenance: TrainingPhase{
			Name:        "Maintenance",
			Description: "Maintain fitness with balanced training",
			TIDZ1:       70, TIDZ2: 15, TIDZ3: 15,
			IntensityFactorTarget: 0.70, TSSRampRate: 0,
		},
		Workouts: map[string][]string{
			"base": {
				"Long endurance ride (Z1-Z2, 3-4h)",
				"Sweet spot intervals (2x20min @ 88-93% FTP)",
				"Recovery spin (Z1, 1h)",
				"Endurance with cadence drills",
			},
			"build": {
				"Threshold intervals (4x10min @ FTP)",
				"VO2max intervals (5x4min @ 110-120% FTP)",
				"Long endurance ride with tempo blocks",
				"Sweet spot over/unders",
			},
			"specialty": {
				"Race simulation workout",
				"VO2max intervals (6x3min @ 115-125% FTP)",
				"Threshold + sprint combo",
				"Event-specific terrain practice",
			},
			"taper": {
				"Short opener workout (race pace efforts)",
				"Easy spin with 2-3 race pace openers",
				"Complete rest or very easy spin",
			},
			"recovery": {
				"Easy spin (Z1 only, 45-60min)",
				"Active recovery or complete rest",
				"Yoga/stretching session",
			},
			"maintenance": {
				"Endurance ride (Z2, 2-3h)",
				"Tempo intervals (3x15min @ 76-90% FTP)",
				"Threshold intervals (3x10min @ FTP)",
			},
		},
		RecoveryEvery:    4,
		RecoveryFactor:   0.6,
		RecoveryPhases:   []string{"base", "build"},
		MaxTSSPerHour:    80,
		DefaultCTL:       50,
		KeyWorkouts:      3,
		RecoveryWorkouts: 2,
		RecoveryNote:     "Recovery week - prioritize rest, sleep, and easy spinning",
		TaperNote:        "Taper week - reduce volume, keep legs fresh",
		DefaultNote:      "Focus on quality sleep and nutrition",
	}
}

// Phases splits totalWeeks into phases. Short plans get a single
// Maintenance block; longer plans get progressively fuller periodization
// and always end with at least one Taper week.
func (s Scheme) Phases(totalWeeks int) []TrainingPhase {
	withWeeks := func(p TrainingPhase, weeks int) TrainingPhase {
		p.Weeks = weeks
		return p
	}

	switch {
	case totalWeeks <= 4:
		return []TrainingPhase{withWeeks(s.Maintenance, totalWeeks)}
	case totalWeeks <= 8:
		return []TrainingPhase{
			withWeeks(s.Build, totalWeeks-1),
			withWeeks(s.Taper, 1),
		}
	case totalWeeks <= 12:
		base := totalWeeks / 2
		return []TrainingPhase{
			withWeeks(s.Base, base),
			withWeeks(s.Build, totalWeeks-base-2),
			withWeeks(s.Taper, 2),
		}
	}

	base := int(float64(totalWeeks) * 0.40)
	build := int(float64(totalWeeks) * 0.30)
	specialty := int(float64(totalWeeks) * 0.20)
	taper := totalWeeks - base - build - specialty
	if taper < 1 {
		taper = 1
		specialty--
	}
	return []TrainingPhase{
		withWeeks(s.Base, base),
		withWeeks(s.Build, build),
		withWeeks(s.Specialty, specialty),
		withWeeks(s.Taper, taper),
	}
}

func (s Scheme) hasRecoveryWeeks(phase string) bool {
	for _, p := range s.RecoveryPhases {
		if strings.EqualFold(p, phase) {
			return true
		}
	}
	return false
}

func (s Scheme) workouts(phase string) []string {
	return s.Workouts[strings.ToLower(phase)]
}
