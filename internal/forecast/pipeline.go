package forecast

import (
	"context"
	"fmt"

	"github.com/chrissnell/feedercast/internal/log"
	"github.com/chrissnell/feedercast/internal/model"
	"github.com/chrissnell/feedercast/internal/readings"
	"github.com/chrissnell/feedercast/internal/refill"
	"github.com/chrissnell/feedercast/internal/timestamp"
	"github.com/chrissnell/feedercast/pkg/config"
)

// Pipeline builds a fresh Forecaster from configuration on every call, so that
// each CLI run or HTTP request sees the current data and model files.
type Pipeline struct {
	refill  config.RefillData
	layouts []string
}

// NewPipeline creates a pipeline for the given refill configuration
func NewPipeline(rc config.RefillData, ts config.TimestampData) *Pipeline {
	return &Pipeline{refill: rc, layouts: ts.Layouts}
}

// Build loads the readings source definition and model artifacts
func (p *Pipeline) Build() (*Forecaster, error) {
	normalizer, err := timestamp.NewNormalizer(p.layouts...)
	if err != nil {
		return nil, err
	}

	source, err := readings.FromConfig(p.refill.Source, normalizer)
	if err != nil {
		return nil, err
	}

	policy, err := refill.ParsePolicy(p.refill.Policy)
	if err != nil {
		return nil, err
	}

	features, err := ParseFeatureSet(p.refill.Features)
	if err != nil {
		return nil, err
	}

	regressor, err := model.LoadRegressor(p.refill.Model)
	if err != nil {
		return nil, err
	}

	f := &Forecaster{
		Source:    source,
		Detector:  refill.NewDetector(policy, p.refill.FullWeight),
		Regressor: regressor,
		Features:  features,
	}

	if p.refill.Scaler != "" {
		scaler, err := model.LoadScaler(p.refill.Scaler)
		if err != nil {
			return nil, err
		}
		f.Scaler = scaler
	}

	return f, nil
}

// Forecast parses the user-supplied YYYY-MM-DD date and predicts the next refill after it
func (p *Pipeline) Forecast(ctx context.Context, last string) (*Result, error) {
	cutoff, err := timestamp.ParseDate(last)
	if err != nil {
		return nil, err
	}

	f, err := p.Build()
	if err != nil {
		return nil, err
	}

	result, err := f.Predict(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	log.Debugw("refill forecast",
		"cutoff", cutoff.Format(timestamp.DateLayout),
		"previous_refill", result.Reference.Previous.Format(timestamp.OutputLayout),
		"last_refill", result.Reference.Last.Format(timestamp.OutputLayout),
		"last_interval_hours", result.Reference.Hours,
		"predicted_interval_hours", result.IntervalHours)
	return result, nil
}

// Describe returns a one-line summary of the pipeline configuration
func (p *Pipeline) Describe() string {
	return fmt.Sprintf("policy=%s features=%s model=%s scaler=%q",
		p.refill.Policy, p.refill.Features, p.refill.Model, p.refill.Scaler)
}
