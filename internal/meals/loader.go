package meals

import (
	"context"

	"github.com/chrissnell/feedercast/internal/model"
	"github.com/chrissnell/feedercast/internal/readings"
	"github.com/chrissnell/feedercast/internal/timestamp"
	"github.com/chrissnell/feedercast/pkg/config"
)

// Load reads the configured visit log and clustering model, then analyzes them.
// The model is loaded first so a missing artifact is reported before any data is read.
func Load(ctx context.Context, mc config.MealsData, ts config.TimestampData) (*Report, error) {
	clusterer, err := model.LoadClusterer(mc.Model)
	if err != nil {
		return nil, err
	}

	normalizer, err := timestamp.NewNormalizer(ts.Layouts...)
	if err != nil {
		return nil, err
	}

	source, err := readings.FromConfig(mc.Source, normalizer)
	if err != nil {
		return nil, err
	}

	rs, err := source.Load(ctx)
	if err != nil {
		return nil, err
	}

	return Analyze(rs, clusterer)
}
