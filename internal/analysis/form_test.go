package analysis

import "testing"

func TestFormDescription(t *testing.T) {
	tests := []struct {
		tsb      float64
		expected string
	}{
		{30, "Very fresh (possibly detrained)"},
		{15, "Fresh and ready to race"},
		{5, "Neutral - good for training"},
		{-5, "Slightly fatigued"},
		{-15, "Tired but building fitness"},
		{-30, "Very fatigued - rest needed"},
	}

	for _, tt := range tests {
		if got := FormDescription(tt.tsb); got != tt.expected {
			t.Errorf("FormDescription(%v) = %q, want %q", tt.tsb, got, tt.expected)
		}
	}
}

func TestACWRDescription(t *testing.T) {
	tests := []struct {
		acwr     float64
		expected string
	}{
		{1.6, "High injury risk - spike in load"},
		{1.4, "Elevated - monitor fatigue"},
		{1.0, "Optimal load progression"},
		{0.8, "Optimal load progression"},
		{0.6, "Detraining - load is dropping"},
	}

	for _, tt := range tests {
		if got := ACWRDescription(tt.acwr); got != tt.expected {
			t.Errorf("ACWRDescription(%v) = %q, want %q", tt.acwr, got, tt.expected)
		}
	}
}
