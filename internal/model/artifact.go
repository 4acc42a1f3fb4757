package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v2"
)

// Artifact kinds
const (
	KindLinearRegression = "linear_regression"
	KindStandardScaler   = "standard_scaler"
	KindKMeans           = "kmeans"
)

// Artifact is the on-disk envelope shared by all model files. Centers follows
// the (k, 1) shape of a one-feature k-means model.
type Artifact struct {
	Kind         string      `json:"kind" yaml:"kind"`
	FeatureNames []string    `json:"feature_names,omitempty" yaml:"feature_names,omitempty"`
	Coefficients []float64   `json:"coefficients,omitempty" yaml:"coefficients,omitempty"`
	Intercept    float64     `json:"intercept,omitempty" yaml:"intercept,omitempty"`
	Mean         []float64   `json:"mean,omitempty" yaml:"mean,omitempty"`
	Scale        []float64   `json:"scale,omitempty" yaml:"scale,omitempty"`
	Centers      [][]float64 `json:"centers,omitempty" yaml:"centers,omitempty"`
}

type format int

const (
	formatJSON format = iota
	formatYAML
	formatMsgPack
)

func formatFor(path string) (format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return formatJSON, nil
	case ".yaml", ".yml":
		return formatYAML, nil
	case ".msgpack", ".mpk":
		return formatMsgPack, nil
	default:
		return 0, fmt.Errorf("unsupported artifact file extension %q (use .json, .yaml or .msgpack)", filepath.Ext(path))
	}
}

// ReadArtifact decodes an artifact file, choosing the codec by file extension
func ReadArtifact(path string) (*Artifact, error) {
	f, err := formatFor(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, path)
		}
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}

	var a Artifact
	switch f {
	case formatJSON:
		err = json.Unmarshal(data, &a)
	case formatYAML:
		err = yaml.Unmarshal(data, &a)
	case formatMsgPack:
		dec := msgpack.NewDecoder(bytes.NewReader(data))
		dec.SetCustomStructTag("json")
		err = dec.Decode(&a)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode artifact %s: %w", path, err)
	}
	return &a, nil
}

// WriteArtifact encodes an artifact file, choosing the codec by file extension
func WriteArtifact(path string, a *Artifact) error {
	f, err := formatFor(path)
	if err != nil {
		return err
	}

	var data []byte
	switch f {
	case formatJSON:
		data, err = json.MarshalIndent(a, "", "  ")
	case formatYAML:
		data, err = yaml.Marshal(a)
	case formatMsgPack:
		var buf bytes.Buffer
		enc := msgpack.NewEncoder(&buf)
		enc.SetCustomStructTag("json")
		err = enc.Encode(a)
		data = buf.Bytes()
	}
	if err != nil {
		return fmt.Errorf("failed to encode artifact: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func expectKind(a *Artifact, path, kind string) error {
	if a.Kind != kind {
		return fmt.Errorf("%s: expected a %s artifact, got %q", path, kind, a.Kind)
	}
	return nil
}

// LoadRegressor reads a linear regression artifact
func LoadRegressor(path string) (*LinearRegressor, error) {
	a, err := ReadArtifact(path)
	if err != nil {
		return nil, err
	}
	if err := expectKind(a, path, KindLinearRegression); err != nil {
		return nil, err
	}
	if len(a.Coefficients) == 0 {
		return nil, fmt.Errorf("%s: regression model has no coefficients", path)
	}
	return &LinearRegressor{Coefficients: a.Coefficients, Intercept: a.Intercept}, nil
}

// LoadScaler reads a standard scaler artifact
func LoadScaler(path string) (*StandardScaler, error) {
	a, err := ReadArtifact(path)
	if err != nil {
		return nil, err
	}
	if err := expectKind(a, path, KindStandardScaler); err != nil {
		return nil, err
	}
	if len(a.Mean) == 0 || len(a.Mean) != len(a.Scale) {
		return nil, fmt.Errorf("%s: scaler mean and scale must be non-empty and the same length", path)
	}
	return &StandardScaler{Mean: a.Mean, Scale: a.Scale}, nil
}

// LoadClusterer reads a one-feature k-means artifact
func LoadClusterer(path string) (*KMeans, error) {
	a, err := ReadArtifact(path)
	if err != nil {
		return nil, err
	}
	if err := expectKind(a, path, KindKMeans); err != nil {
		return nil, err
	}

	centers := make([]float64, len(a.Centers))
	for i, c := range a.Centers {
		if len(c) != 1 {
			return nil, fmt.Errorf("%s: center %d has %d features, expected 1", path, i, len(c))
		}
		centers[i] = c[0]
	}

	km, err := NewKMeans(centers)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return km, nil
}
