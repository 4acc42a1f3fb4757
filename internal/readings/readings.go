// Package readings loads feeder sensor logs into time-ordered Readings.
//
// Ingestion is lenient: rows whose timestamp cannot be normalized or whose
// measurement is not a finite number are dropped rather than reported.
package readings

import (
	"context"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/chrissnell/feedercast/internal/timestamp"
)

// Common measurement columns
const (
	TimestampColumn = "timestamp"
	WeightColumn    = "weight_g"
	DistanceColumn  = "distance_cm"
)

// Reading is a single timestamped sensor measurement
type Reading struct {
	Time  time.Time
	Value float64
}

// Source loads readings from some backing store
type Source interface {
	Load(ctx context.Context) ([]Reading, error)
}

// Stats summarizes a load
type Stats struct {
	Rows    int
	Kept    int
	Dropped int
}

// ParseValue parses a measurement, accepting a comma as decimal separator.
func ParseValue(raw string) (float64, bool) {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// builder accumulates raw rows into cleaned readings
type builder struct {
	normalizer *timestamp.Normalizer
	readings   []Reading
	stats      Stats
}

func (b *builder) add(rawTime, rawValue string) {
	b.stats.Rows++

	t, ok := b.normalizer.Parse(rawTime)
	if !ok {
		b.stats.Dropped++
		return
	}
	v, ok := ParseValue(rawValue)
	if !ok {
		b.stats.Dropped++
		return
	}

	b.readings = append(b.readings, Reading{Time: t, Value: v})
	b.stats.Kept++
}

func (b *builder) result() []Reading {
	Sort(b.readings)
	return b.readings
}

// Sort orders readings by timestamp ascending, keeping file order for ties
func Sort(rs []Reading) {
	sort.SliceStable(rs, func(i, j int) bool {
		return rs[i].Time.Before(rs[j].Time)
	})
}

// Values returns just the measurements
func Values(rs []Reading) []float64 {
	out := make([]float64, len(rs))
	for i, r := range rs {
		out[i] = r.Value
	}
	return out
}
