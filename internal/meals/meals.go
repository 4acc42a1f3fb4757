// Package meals groups feeder visits into the three daily meal windows learned
// by a clustering model and reports their typical times and visit durations.
package meals

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/chrissnell/feedercast/internal/model"
	"github.com/chrissnell/feedercast/internal/readings"
	"github.com/chrissnell/feedercast/internal/timestamp"
)

// Meal describes one of the fixed cluster labels
type Meal struct {
	Label int    `json:"label"`
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
}

// Meals lists the cluster labels in label order
var Meals = []Meal{
	{Label: 0, Name: "Night", Emoji: "🥐"},
	{Label: 1, Name: "Morning", Emoji: "🥗"},
	{Label: 2, Name: "Evening", Emoji: "🍽️"},
}

// Summary is the per-meal part of a report
type Summary struct {
	Meal
	CenterSeconds   float64  `json:"center_seconds"`
	CenterTime      string   `json:"center_time"`
	Visits          int      `json:"visits"`
	AvgVisitMinutes *float64 `json:"avg_visit_minutes"`
}

// Report holds the meal-time analysis
type Report struct {
	Meals                  []Summary `json:"meals"`
	OverallAvgVisitMinutes *float64  `json:"overall_avg_visit_minutes"`
}

type visitKey struct {
	label int
	date  string
}

type visitSpan struct {
	first, last time.Time
}

// Analyze assigns every reading to a meal and summarizes the visits.
// A visit is the span between the first and last reading sharing a label and calendar date.
func Analyze(rs []readings.Reading, clusterer model.Clusterer) (*Report, error) {
	centers := clusterer.Centers()
	if len(centers) != len(Meals) {
		return nil, fmt.Errorf("meal-time model must have %d clusters, got %d", len(Meals), len(centers))
	}

	visits := make(map[visitKey]*visitSpan)
	for _, r := range rs {
		label, err := clusterer.Predict(float64(timestamp.SecondsOfDay(r.Time)))
		if err != nil {
			return nil, fmt.Errorf("failed to cluster reading at %s: %w", r.Time.Format(timestamp.OutputLayout), err)
		}
		if label < 0 || label >= len(Meals) {
			return nil, fmt.Errorf("meal-time model returned unknown label %d", label)
		}

		key := visitKey{label: label, date: r.Time.Format(timestamp.DateLayout)}
		span, ok := visits[key]
		if !ok {
			visits[key] = &visitSpan{first: r.Time, last: r.Time}
			continue
		}
		if r.Time.Before(span.first) {
			span.first = r.Time
		}
		if r.Time.After(span.last) {
			span.last = r.Time
		}
	}

	// Deterministic order keeps the floating point means reproducible.
	keys := make([]visitKey, 0, len(visits))
	for k := range visits {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].label != keys[j].label {
			return keys[i].label < keys[j].label
		}
		return keys[i].date < keys[j].date
	})

	perMeal := make([][]float64, len(Meals))
	var all []float64
	for _, k := range keys {
		span := visits[k]
		minutes := span.last.Sub(span.first).Minutes()
		perMeal[k.label] = append(perMeal[k.label], minutes)
		all = append(all, minutes)
	}

	report := &Report{Meals: make([]Summary, len(Meals))}
	for i, m := range Meals {
		report.Meals[i] = Summary{
			Meal:          m,
			CenterSeconds: centers[i],
			CenterTime:    timestamp.FormatClock(centers[i]),
			Visits:        len(perMeal[i]),
		}
		if len(perMeal[i]) > 0 {
			avg := stat.Mean(perMeal[i], nil)
			report.Meals[i].AvgVisitMinutes = &avg
		}
	}
	if len(all) > 0 {
		overall := stat.Mean(all, nil)
		report.OverallAvgVisitMinutes = &overall
	}

	return report, nil
}

func formatMinutes(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f min", *v)
}

// Render writes the human readable report
func (r *Report) Render(w io.Writer) error {
	ew := &errWriter{w: w}

	ew.printf("\n🍽️  Your pet's average meal times  🍽️\n")
	ew.printf("======================================\n")
	for _, s := range r.Meals {
		ew.printf("%s  Average %s time: %s\n", s.Emoji, s.Name, s.CenterTime)
	}

	ew.printf("\n🐾  Your pet's average meal-visit durations  🐾\n")
	ew.printf("==============================================\n")
	for _, s := range r.Meals {
		ew.printf("%s  Avg %s visit: %s\n", s.Emoji, s.Name, formatMinutes(s.AvgVisitMinutes))
	}

	ew.printf("\n🐾  Overall avg visit length: %s\n\n", formatMinutes(r.OverallAvgVisitMinutes))
	return ew.err
}

// WriteJSON writes the report as indented JSON
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
