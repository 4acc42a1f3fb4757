// Package refill detects bowl refill events in weight readings and computes
// the interval between consecutive refills.
package refill

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/chrissnell/feedercast/internal/readings"
)

var (
	// ErrInsufficientHistory means fewer than two refills precede the cutoff
	ErrInsufficientHistory = errors.New("not enough refill history")

	// ErrInvalidInterval means the last two refills are not strictly ordered
	ErrInvalidInterval = errors.New("invalid interval between last two refills")
)

// DefaultFullWeight is the full-bowl weight in grams
const DefaultFullWeight = 1000.0

// Policy selects how the full-bowl threshold is determined
type Policy string

const (
	// PolicyFixed uses a configured full-bowl weight
	PolicyFixed Policy = "fixed"

	// PolicyMax uses the heaviest observed reading
	PolicyMax Policy = "max"
)

// ParsePolicy converts a configuration value to a Policy
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case PolicyFixed, "":
		return PolicyFixed, nil
	case PolicyMax:
		return PolicyMax, nil
	default:
		return "", fmt.Errorf("unknown refill threshold policy %q, expected 'fixed' or 'max'", s)
	}
}

// Detector flags readings where the bowl goes from below full to exactly full
type Detector struct {
	Policy     Policy
	FullWeight float64
}

// NewDetector creates a detector. fullWeight is ignored by PolicyMax.
func NewDetector(policy Policy, fullWeight float64) *Detector {
	if fullWeight == 0 {
		fullWeight = DefaultFullWeight
	}
	return &Detector{Policy: policy, FullWeight: fullWeight}
}

// Threshold returns the full-bowl value used for rs
func (d *Detector) Threshold(rs []readings.Reading) float64 {
	if d.Policy != PolicyMax {
		return d.FullWeight
	}

	if len(rs) == 0 {
		return 0
	}
	return floats.Max(readings.Values(rs))
}

// Flags marks each index that is a refill event. Index 0 is never flagged.
func (d *Detector) Flags(rs []readings.Reading) []bool {
	flags := make([]bool, len(rs))
	if len(rs) < 2 {
		return flags
	}

	threshold := d.Threshold(rs)
	for i := 1; i < len(rs); i++ {
		flags[i] = rs[i].Value == threshold && rs[i-1].Value < threshold
	}
	return flags
}

// Events returns the timestamps of refill events in reading order
func (d *Detector) Events(rs []readings.Reading) []time.Time {
	var events []time.Time
	for i, flagged := range d.Flags(rs) {
		if flagged {
			events = append(events, rs[i].Time)
		}
	}
	return events
}

// Interval is the span between two consecutive refill events
type Interval struct {
	Previous time.Time
	Last     time.Time
	Hours    float64
}

// LastInterval returns the interval between the last two events at or before cutoff.
// events must be in ascending order.
func LastInterval(events []time.Time, cutoff time.Time) (Interval, error) {
	var qualifying []time.Time
	for _, e := range events {
		if !e.After(cutoff) {
			qualifying = append(qualifying, e)
		}
	}

	if len(qualifying) < 2 {
		return Interval{}, fmt.Errorf("%w: found %d refill(s) on or before %s, need 2",
			ErrInsufficientHistory, len(qualifying), cutoff.Format("2006-01-02 15:04:05"))
	}

	iv := Interval{
		Previous: qualifying[len(qualifying)-2],
		Last:     qualifying[len(qualifying)-1],
	}
	iv.Hours = iv.Last.Sub(iv.Previous).Hours()
	if iv.Hours <= 0 {
		return Interval{}, fmt.Errorf("%w: %.2f hours", ErrInvalidInterval, iv.Hours)
	}
	return iv, nil
}
