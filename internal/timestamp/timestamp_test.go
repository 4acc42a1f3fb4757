package timestamp

import (
	"errors"
	"testing"
	"time"
)

func TestNormalizerParse(t *testing.T) {
	n, err := NewNormalizer()
	if err != nil {
		t.Fatalf("NewNormalizer() error = %v", err)
	}

	tests := []struct {
		name     string
		input    string
		expected time.Time
	}{
		{
			name:     "day month year with time",
			input:    "01/03/25 00:04:00",
			expected: time.Date(2025, 3, 1, 0, 4, 0, 0, time.UTC),
		},
		{
			name:     "unpadded day month year",
			input:    "1/3/25 7:05:09",
			expected: time.Date(2025, 3, 1, 7, 5, 9, 0, time.UTC),
		},
		{
			name:     "iso date time",
			input:    "2025-03-05 18:30:00",
			expected: time.Date(2025, 3, 5, 18, 30, 0, 0, time.UTC),
		},
		{
			name:     "year first dotted",
			input:    "25.03.01 00.00.00",
			expected: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "day first dotted when year first is impossible",
			input:    "01.02.31 12.15.00",
			expected: time.Date(2031, 2, 1, 12, 15, 0, 0, time.UTC),
		},
		{
			name:     "iso with T separator",
			input:    "2025-03-05T06:00:00",
			expected: time.Date(2025, 3, 5, 6, 0, 0, 0, time.UTC),
		},
		{
			name:     "year first date only defaults to midnight",
			input:    "25-03-01",
			expected: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "day first date only when year first is impossible",
			input:    "01-02-31",
			expected: time.Date(2031, 2, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "iso date only",
			input:    "2025-03-01",
			expected: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "surrounding whitespace",
			input:    "  2025-03-05 18:30:00 ",
			expected: time.Date(2025, 3, 5, 18, 30, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := n.Parse(tt.input)
			if !ok {
				t.Fatalf("Parse(%q) returned invalid", tt.input)
			}
			if !got.Equal(tt.expected) {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizerParseInvalid(t *testing.T) {
	n, _ := NewNormalizer()

	for _, input := range []string{"", "nan", "yesterday", "2025/13/45", "32/01/25 00:00:00", "12:00"} {
		if got, ok := n.Parse(input); ok {
			t.Errorf("Parse(%q) = %v, expected invalid", input, got)
		}
	}
}

func TestNewNormalizerOrder(t *testing.T) {
	n, err := NewNormalizer("dmy-dot", "ymd-dot")
	if err != nil {
		t.Fatalf("NewNormalizer() error = %v", err)
	}

	// With day-first tried first the ambiguous string resolves the other way.
	got, ok := n.Parse("25.03.01 00.00.00")
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	want := time.Date(2001, 3, 25, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Parse() = %v, want %v", got, want)
	}

	if _, ok := n.Parse("2025-03-01 00:00:00"); ok {
		t.Error("expected ISO timestamp to be rejected by a dotted-only normalizer")
	}
}

func TestNewNormalizerUnknownLayout(t *testing.T) {
	if _, err := NewNormalizer("iso", "julian"); err == nil {
		t.Fatal("expected error for unknown layout")
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2025-03-05")
	if err != nil {
		t.Fatalf("ParseDate() error = %v", err)
	}
	if !got.Equal(time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("ParseDate() = %v", got)
	}

	for _, input := range []string{"05/03/2025", "2025-3-5x", "", "2025-02-30"} {
		if _, err := ParseDate(input); !errors.Is(err, ErrInvalidDate) {
			t.Errorf("ParseDate(%q) error = %v, want ErrInvalidDate", input, err)
		}
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		sec      float64
		expected string
	}{
		{0, "00:00:00"},
		{3599.9, "00:59:59"},
		{7*3600 + 30*60 + 15.7, "07:30:15"},
		{86399, "23:59:59"},
	}

	for _, tt := range tests {
		if got := FormatClock(tt.sec); got != tt.expected {
			t.Errorf("FormatClock(%v) = %q, want %q", tt.sec, got, tt.expected)
		}
	}
}

func TestSecondsOfDay(t *testing.T) {
	ts := time.Date(2025, 3, 1, 7, 30, 15, 0, time.UTC)
	if got := SecondsOfDay(ts); got != 27015 {
		t.Errorf("SecondsOfDay() = %d, want 27015", got)
	}
}
