package service

const (
	// Time windows
	PhaseWindowDays     = 28
	CTLLookbackDays     = 90
	EFHistoryDays       = 90
	EFCompareSamples    = 5
	HistoryMonths       = 6
	HistoryWeeks        = 4
	LoadPatternDays     = 90
	DefaultAnalyzeWeeks = 12

	// Long ride threshold (2.5h in seconds)
	LongRideSeconds = 9000

	// IF bands for ride types
	EasyRideMaxIF  = 0.70
	TempoRideMaxIF = 0.85

	// EF change (%) beyond which the trend counts as improving or declining
	EFTrendThresholdPct = 2.0
)
