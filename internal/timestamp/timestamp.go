// Package timestamp normalizes the heterogeneous timestamp strings written by
// feeder firmware revisions into time.Time values.
package timestamp

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDate is returned when a user-supplied date is not YYYY-MM-DD
var ErrInvalidDate = errors.New("invalid date format, use YYYY-MM-DD")

// DateLayout is the layout accepted for user-supplied cutoff dates
const DateLayout = "2006-01-02"

// OutputLayout is the layout used when timestamps are reported back to users
const OutputLayout = "2006-01-02 15:04:05"

// Layout is a single named timestamp format
type Layout struct {
	Name     string
	Format   string
	DateOnly bool
}

// Known layouts, keyed by the name used in configuration files
var (
	DayMonthYearSlash = Layout{Name: "dmy-slash", Format: "2/1/06 15:04:05"}
	ISODateTime       = Layout{Name: "iso", Format: "2006-1-2 15:04:05"}
	YearMonthDayDot   = Layout{Name: "ymd-dot", Format: "06.1.2 15.04.05"}
	DayMonthYearDot   = Layout{Name: "dmy-dot", Format: "2.1.06 15.04.05"}
	ISOTDateTime      = Layout{Name: "iso-t", Format: "2006-01-02T15:04:05"}
	RFC3339           = Layout{Name: "rfc3339", Format: time.RFC3339}
	YearMonthDayDash  = Layout{Name: "ymd-dash", Format: "06-1-2", DateOnly: true}
	DayMonthYearDash  = Layout{Name: "dmy-dash", Format: "2-1-06", DateOnly: true}
	ISODate           = Layout{Name: "iso-date", Format: "2006-01-02", DateOnly: true}
)

// DefaultLayouts is the unified, ordered list tried when no explicit list is configured.
// Year-first dotted and dashed layouts win over their day-first twins when a
// string is ambiguous.
var DefaultLayouts = []Layout{
	DayMonthYearSlash,
	ISODateTime,
	YearMonthDayDot,
	DayMonthYearDot,
	ISOTDateTime,
	RFC3339,
	YearMonthDayDash,
	DayMonthYearDash,
	ISODate,
}

var knownLayouts = map[string]Layout{}

func init() {
	for _, l := range DefaultLayouts {
		knownLayouts[l.Name] = l
	}
}

// Normalizer tries an ordered list of layouts and returns the first successful parse
type Normalizer struct {
	layouts []Layout
}

// NewNormalizer builds a Normalizer from layout names in the order given.
// With no names, DefaultLayouts is used.
func NewNormalizer(names ...string) (*Normalizer, error) {
	if len(names) == 0 {
		return &Normalizer{layouts: DefaultLayouts}, nil
	}

	layouts := make([]Layout, 0, len(names))
	for _, name := range names {
		l, ok := knownLayouts[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("unknown timestamp layout %q", name)
		}
		layouts = append(layouts, l)
	}
	return &Normalizer{layouts: layouts}, nil
}

// Layouts returns the layouts in the order they are tried
func (n *Normalizer) Layouts() []Layout {
	return n.layouts
}

// Parse returns the first successful parse of s, or false when no layout matches.
// Date-only layouts yield midnight.
func (n *Normalizer) Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, l := range n.layouts {
		t, err := time.Parse(l.Format, s)
		if err != nil {
			continue
		}
		if l.DateOnly {
			t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}
		return t.UTC(), true
	}
	return time.Time{}, false
}

// ParseDate parses a user-supplied YYYY-MM-DD date at midnight UTC
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// SecondsOfDay returns the number of seconds elapsed since midnight
func SecondsOfDay(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}

// FormatClock renders a seconds-since-midnight value as HH:MM:SS, truncating fractions
func FormatClock(sec float64) string {
	total := int(sec)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
