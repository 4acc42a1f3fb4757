// Package forecast predicts the next feeder refill from the interval between
// the two most recent refills.
package forecast

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/chrissnell/feedercast/internal/model"
	"github.com/chrissnell/feedercast/internal/readings"
	"github.com/chrissnell/feedercast/internal/refill"
)

// FeatureSet selects the feature vector layout the regressor was trained on
type FeatureSet string

const (
	// FeaturesInterval is [interval_hours]
	FeaturesInterval FeatureSet = "interval"

	// FeaturesCalendar is [interval_hours, hour, weekday, day, month] of the later refill
	FeaturesCalendar FeatureSet = "calendar"
)

// ParseFeatureSet converts a configuration value to a FeatureSet
func ParseFeatureSet(s string) (FeatureSet, error) {
	switch FeatureSet(strings.ToLower(strings.TrimSpace(s))) {
	case FeaturesInterval, "":
		return FeaturesInterval, nil
	case FeaturesCalendar:
		return FeaturesCalendar, nil
	default:
		return "", fmt.Errorf("unknown feature set %q, expected 'interval' or 'calendar'", s)
	}
}

// Len returns the number of features in the set
func (fs FeatureSet) Len() int {
	if fs == FeaturesCalendar {
		return 5
	}
	return 1
}

// Features builds the feature vector for an interval. Weekday counts from Monday = 0.
func (fs FeatureSet) Features(iv refill.Interval) []float64 {
	if fs != FeaturesCalendar {
		return []float64{iv.Hours}
	}

	last := iv.Last
	weekday := (int(last.Weekday()) + 6) % 7
	return []float64{
		iv.Hours,
		float64(last.Hour()),
		float64(weekday),
		float64(last.Day()),
		float64(last.Month()),
	}
}

// Result is a refill prediction
type Result struct {
	NextRefill    time.Time
	IntervalHours float64
	Reference     refill.Interval
}

// Forecaster turns readings into a refill prediction
type Forecaster struct {
	Source    readings.Source
	Detector  *refill.Detector
	Regressor model.Regressor
	Scaler    model.Transformer // optional
	Features  FeatureSet
}

// Predict forecasts the refill following cutoff
func (f *Forecaster) Predict(ctx context.Context, cutoff time.Time) (*Result, error) {
	rs, err := f.Source.Load(ctx)
	if err != nil {
		return nil, err
	}

	events := f.Detector.Events(rs)
	iv, err := refill.LastInterval(events, cutoff)
	if err != nil {
		return nil, err
	}

	return f.PredictFromInterval(cutoff, iv)
}

// PredictFromInterval applies the model to an already computed interval
func (f *Forecaster) PredictFromInterval(cutoff time.Time, iv refill.Interval) (*Result, error) {
	features := f.Features.Features(iv)
	if n := f.Regressor.NumFeatures(); n != len(features) {
		return nil, fmt.Errorf("model expects %d features but feature set %q provides %d", n, f.Features, len(features))
	}

	if f.Scaler != nil {
		scaled, err := f.Scaler.Transform(features)
		if err != nil {
			return nil, fmt.Errorf("failed to scale features: %w", err)
		}
		features = scaled
	}

	hours, err := f.Regressor.Predict(features)
	if err != nil {
		return nil, fmt.Errorf("prediction failed: %w", err)
	}
	if math.IsNaN(hours) || math.IsInf(hours, 0) {
		return nil, fmt.Errorf("prediction failed: model returned %v", hours)
	}

	return &Result{
		NextRefill:    cutoff.Add(time.Duration(hours * float64(time.Hour))),
		IntervalHours: hours,
		Reference:     iv,
	}, nil
}
