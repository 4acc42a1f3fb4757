// Package model provides the pre-trained inference artifacts used by the
// forecasters: a linear regressor, a standard feature scaler and a
// one-dimensional k-means clusterer. Nothing in this package fits models.
package model

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrArtifactNotFound is returned when a model, scaler or clusterer file is missing
var ErrArtifactNotFound = errors.New("model artifact not found")

// Regressor predicts a single value from a feature vector
type Regressor interface {
	NumFeatures() int
	Predict(features []float64) (float64, error)
}

// Transformer rescales a feature vector before prediction
type Transformer interface {
	Transform(features []float64) ([]float64, error)
}

// Clusterer assigns a one-dimensional value to a cluster label
type Clusterer interface {
	Predict(x float64) (int, error)
	Centers() []float64
}

// LinearRegressor computes intercept + coefficients·features
type LinearRegressor struct {
	Coefficients []float64
	Intercept    float64
}

// NumFeatures returns the expected feature vector length
func (r *LinearRegressor) NumFeatures() int {
	return len(r.Coefficients)
}

// Predict applies the regression to features
func (r *LinearRegressor) Predict(features []float64) (float64, error) {
	if len(features) != len(r.Coefficients) {
		return 0, fmt.Errorf("regressor expects %d features, got %d", len(r.Coefficients), len(features))
	}
	if len(features) == 0 {
		return r.Intercept, nil
	}

	x := mat.NewVecDense(len(features), append([]float64(nil), features...))
	w := mat.NewVecDense(len(r.Coefficients), append([]float64(nil), r.Coefficients...))
	return r.Intercept + mat.Dot(w, x), nil
}

// StandardScaler standardizes features as (x - mean) / scale
type StandardScaler struct {
	Mean  []float64
	Scale []float64
}

// Transform returns a scaled copy of features
func (s *StandardScaler) Transform(features []float64) ([]float64, error) {
	if len(features) != len(s.Mean) {
		return nil, fmt.Errorf("scaler expects %d features, got %d", len(s.Mean), len(features))
	}

	out := make([]float64, len(features))
	for i, x := range features {
		scale := s.Scale[i]
		if scale == 0 {
			scale = 1
		}
		out[i] = (x - s.Mean[i]) / scale
	}
	return out, nil
}

// KMeans assigns values to the nearest of a fixed set of centers
type KMeans struct {
	centers []float64
}

// NewKMeans creates a clusterer; label i corresponds to centers[i]
func NewKMeans(centers []float64) (*KMeans, error) {
	if len(centers) == 0 {
		return nil, errors.New("k-means model has no centers")
	}
	for i, c := range centers {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, fmt.Errorf("k-means center %d is not finite", i)
		}
	}
	return &KMeans{centers: append([]float64(nil), centers...)}, nil
}

// Predict returns the label of the closest center, preferring the lowest label on ties
func (k *KMeans) Predict(x float64) (int, error) {
	if math.IsNaN(x) {
		return 0, errors.New("cannot cluster NaN")
	}

	best := 0
	bestDist := math.Abs(x - k.centers[0])
	for i := 1; i < len(k.centers); i++ {
		if d := math.Abs(x - k.centers[i]); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, nil
}

// Centers returns a copy of the centers in label order
func (k *KMeans) Centers() []float64 {
	return append([]float64(nil), k.centers...)
}
