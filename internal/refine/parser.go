package refine

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidProposal is returned for a week line that fails validation.
var ErrInvalidProposal = errors.New("invalid week proposal")

var (
	weekPattern = regexp.MustCompile(`(?i)WEEK\s+(\d+)\s*:\s*` +
		`TSS\s*=\s*([-+]?[\d.]+)\s*,\s*` +
		`HOURS\s*=\s*([-+]?[\d.]+)\s*,\s*` +
		`Z1\s*=\s*([-+]?[\d.]+)\s*,\s*` +
		`Z2\s*=\s*([-+]?[\d.]+)\s*,\s*` +
		`Z3\s*=\s*([-+]?[\d.]+)`)
	workoutsPattern = regexp.MustCompile(`(?i)^[\s*_-]*WORKOUTS\s*:\s*(.*)$`)
	notesPattern    = regexp.MustCompile(`(?i)^[\s*_-]*NOTES\s*:\s*(.*)$`)
)

// Proposal is one week's refined values as read from a response.
type Proposal struct {
	Week     int
	TSS      int
	Hours    float64
	Z1       int
	Z2       int
	Z3       int
	Workouts []string
	Notes    string
	Line     int // 1-based line of the WEEK entry

	parseErr error
}

// Validate checks that the proposal can be applied as given: positive TSS
// and hours, and zones that add up to exactly 100.
func (p Proposal) Validate() error {
	switch {
	case p.parseErr != nil:
		return fmt.Errorf("%w: %v", ErrInvalidProposal, p.parseErr)
	case p.TSS <= 0:
		return fmt.Errorf("%w: TSS=%d must be positive", ErrInvalidProposal, p.TSS)
	case p.Hours <= 0:
		return fmt.Errorf("%w: HOURS=%g must be positive", ErrInvalidProposal, p.Hours)
	case p.Z1 < 0 || p.Z2 < 0 || p.Z3 < 0:
		return fmt.Errorf("%w: zones %d/%d/%d must not be negative", ErrInvalidProposal, p.Z1, p.Z2, p.Z3)
	case p.Z1+p.Z2+p.Z3 != 100:
		return fmt.Errorf("%w: zones %d+%d+%d sum to %d, not 100", ErrInvalidProposal, p.Z1, p.Z2, p.Z3, p.Z1+p.Z2+p.Z3)
	}
	return nil
}

// ParseResponse scans a free-text response for WEEK lines in any order and
// reads the WORKOUTS and NOTES lines that directly follow each one.
// Surrounding prose is ignored.
func ParseResponse(text string) []Proposal {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	var proposals []Proposal
	for i := 0; i < len(lines); i++ {
		m := weekPattern.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}
		p := parseValues(m)
		p.Line = i + 1

		// WORKOUTS then NOTES, either optional, blank lines allowed between
		for j := i + 1; j < len(lines); j++ {
			line := strings.TrimSpace(lines[j])
			if line == "" {
				continue
			}
			if wm := workoutsPattern.FindStringSubmatch(line); wm != nil && p.Workouts == nil && p.Notes == "" {
				p.Workouts = splitWorkouts(wm[1])
				if p.Workouts == nil {
					p.Workouts = []string{}
				}
				i = j
				continue
			}
			if nm := notesPattern.FindStringSubmatch(line); nm != nil && p.Notes == "" {
				p.Notes = strings.TrimSpace(nm[1])
				i = j
			}
			break
		}

		proposals = append(proposals, p)
	}
	return proposals
}

func parseValues(m []string) Proposal {
	var p Proposal
	var errs []error

	atoi := func(name, s string) int {
		v, err := strconv.Atoi(s)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s=%q is not an integer", name, s))
		}
		return v
	}

	p.Week = atoi("WEEK", m[1])
	p.TSS = atoi("TSS", m[2])
	hours, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		errs = append(errs, fmt.Errorf("HOURS=%q is not a number", m[3]))
	}
	p.Hours = hours
	p.Z1 = atoi("Z1", m[4])
	p.Z2 = atoi("Z2", m[5])
	p.Z3 = atoi("Z3", m[6])

	p.parseErr = errors.Join(errs...)
	return p
}

func splitWorkouts(s string) []string {
	var out []string
	for _, w := range strings.Split(s, ",") {
		if w = strings.TrimSpace(w); w != "" {
			out = append(out, w)
		}
	}
	return out
}
