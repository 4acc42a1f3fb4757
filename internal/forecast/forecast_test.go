package forecast

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chrissnell/feedercast/internal/model"
	"github.com/chrissnell/feedercast/internal/readings"
	"github.com/chrissnell/feedercast/internal/refill"
	"github.com/chrissnell/feedercast/internal/timestamp"
	"github.com/chrissnell/feedercast/pkg/config"
)

// fakeRegressor records the features it was given and returns a fixed value
type fakeRegressor struct {
	n      int
	out    float64
	seen   []float64
	called int
}

func (f *fakeRegressor) NumFeatures() int { return f.n }

func (f *fakeRegressor) Predict(features []float64) (float64, error) {
	f.called++
	f.seen = append([]float64(nil), features...)
	return f.out, nil
}

type fakeScaler struct{ factor float64 }

func (s fakeScaler) Transform(features []float64) ([]float64, error) {
	out := make([]float64, len(features))
	for i, x := range features {
		out[i] = x * s.factor
	}
	return out, nil
}

type staticSource []readings.Reading

func (s staticSource) Load(ctx context.Context) ([]readings.Reading, error) {
	return s, nil
}

func at(s string) time.Time {
	t, err := time.Parse(timestamp.OutputLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

// Two refills four days apart, each preceded by a partially eaten bowl.
var history = staticSource{
	{Time: at("2025-02-28 18:00:00"), Value: 640},
	{Time: at("2025-03-01 00:00:00"), Value: 1000},
	{Time: at("2025-03-03 12:00:00"), Value: 710},
	{Time: at("2025-03-05 00:00:00"), Value: 1000},
	{Time: at("2025-03-06 08:00:00"), Value: 870},
}

func TestPredictIntervalFeatures(t *testing.T) {
	reg := &fakeRegressor{n: 1, out: 90}
	f := &Forecaster{
		Source:    history,
		Detector:  refill.NewDetector(refill.PolicyFixed, 1000),
		Regressor: reg,
		Features:  FeaturesInterval,
	}

	cutoff := at("2025-03-05 00:00:00")
	result, err := f.Predict(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}

	if reg.called != 1 {
		t.Errorf("regressor called %d times, want 1", reg.called)
	}
	if len(reg.seen) != 1 || reg.seen[0] != 96 {
		t.Errorf("features = %v, want [96]", reg.seen)
	}
	if result.Reference.Hours != 96 {
		t.Errorf("reference interval = %v, want 96", result.Reference.Hours)
	}
	if result.IntervalHours != 90 {
		t.Errorf("IntervalHours = %v, want 90", result.IntervalHours)
	}
	if want := at("2025-03-08 18:00:00"); !result.NextRefill.Equal(want) {
		t.Errorf("NextRefill = %v, want %v", result.NextRefill, want)
	}
}

func TestPredictCalendarFeaturesScaled(t *testing.T) {
	reg := &fakeRegressor{n: 5, out: 12.5}
	f := &Forecaster{
		Source:    history,
		Detector:  refill.NewDetector(refill.PolicyMax, 0),
		Regressor: reg,
		Scaler:    fakeScaler{factor: 2},
		Features:  FeaturesCalendar,
	}

	if _, err := f.Predict(context.Background(), at("2025-03-07 00:00:00")); err != nil {
		t.Fatalf("Predict() error = %v", err)
	}

	// 2025-03-05 is a Wednesday: weekday 2 counting from Monday.
	want := []float64{192, 0, 4, 10, 6}
	for i := range want {
		if reg.seen[i] != want[i] {
			t.Fatalf("scaled features = %v, want %v", reg.seen, want)
		}
	}
}

func TestPredictInsufficientHistory(t *testing.T) {
	reg := &fakeRegressor{n: 1, out: 90}
	f := &Forecaster{
		Source:    history,
		Detector:  refill.NewDetector(refill.PolicyFixed, 1000),
		Regressor: reg,
		Features:  FeaturesInterval,
	}

	_, err := f.Predict(context.Background(), at("2025-03-04 00:00:00"))
	if !errors.Is(err, refill.ErrInsufficientHistory) {
		t.Fatalf("error = %v, want ErrInsufficientHistory", err)
	}
	if reg.called != 0 {
		t.Error("regressor must not be called without enough history")
	}
}

func TestPredictFeatureCountMismatch(t *testing.T) {
	f := &Forecaster{
		Source:    history,
		Detector:  refill.NewDetector(refill.PolicyFixed, 1000),
		Regressor: &fakeRegressor{n: 5},
		Features:  FeaturesInterval,
	}
	if _, err := f.Predict(context.Background(), at("2025-03-05 00:00:00")); err == nil {
		t.Fatal("expected error when the model wants more features")
	}
}

func TestPredictRejectsNonFinite(t *testing.T) {
	f := &Forecaster{
		Detector:  refill.NewDetector(refill.PolicyFixed, 1000),
		Regressor: &fakeRegressor{n: 1, out: math.NaN()},
		Features:  FeaturesInterval,
	}
	iv := refill.Interval{Previous: at("2025-03-01 00:00:00"), Last: at("2025-03-05 00:00:00"), Hours: 96}
	if _, err := f.PredictFromInterval(iv.Last, iv); err == nil {
		t.Fatal("expected error for NaN prediction")
	}
}

func TestParseFeatureSet(t *testing.T) {
	for input, want := range map[string]FeatureSet{"": FeaturesInterval, "Calendar": FeaturesCalendar} {
		got, err := ParseFeatureSet(input)
		if err != nil || got != want {
			t.Errorf("ParseFeatureSet(%q) = (%v, %v), want %v", input, got, err, want)
		}
	}
	if _, err := ParseFeatureSet("weather"); err == nil {
		t.Error("expected error for unknown feature set")
	}
	if FeaturesCalendar.Len() != 5 || FeaturesInterval.Len() != 1 {
		t.Error("unexpected feature set lengths")
	}
}

func writePipelineFixtures(t *testing.T) (dir string, rc config.RefillData) {
	t.Helper()
	dir = t.TempDir()

	csvData := "timestamp,weight_g\n" +
		"28/02/25 20:00:00,700\n" +
		"2025-03-01 00:00:00,1000\n" +
		"25.03.04 09.00.00,\"655,5\"\n" +
		"2025-03-05 00:00:00,1000\n" +
		"bogus,1000\n"
	csvPath := filepath.Join(dir, "pet_feeder.csv")
	if err := os.WriteFile(csvPath, []byte(csvData), 0644); err != nil {
		t.Fatalf("failed to write CSV: %v", err)
	}

	modelPath := filepath.Join(dir, "interval_regressor.json")
	if err := model.WriteArtifact(modelPath, &model.Artifact{
		Kind:         model.KindLinearRegression,
		Coefficients: []float64{0.5},
		Intercept:    24,
	}); err != nil {
		t.Fatalf("failed to write model: %v", err)
	}

	rc = config.RefillData{
		Source:     config.SourceData{CSV: csvPath, Column: config.DefaultWeightColumn},
		Policy:     "fixed",
		FullWeight: 1000,
		Features:   "interval",
		Model:      modelPath,
	}
	return dir, rc
}

func TestPipelineForecast(t *testing.T) {
	_, rc := writePipelineFixtures(t)

	result, err := NewPipeline(rc, config.TimestampData{}).Forecast(context.Background(), "2025-03-05")
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}

	if result.Reference.Hours != 96 {
		t.Errorf("reference interval = %v, want 96", result.Reference.Hours)
	}
	// 24 + 0.5*96
	if result.IntervalHours != 72 {
		t.Errorf("IntervalHours = %v, want 72", result.IntervalHours)
	}
	if want := at("2025-03-08 00:00:00"); !result.NextRefill.Equal(want) {
		t.Errorf("NextRefill = %v, want %v", result.NextRefill, want)
	}
}

func TestPipelineForecastErrors(t *testing.T) {
	dir, rc := writePipelineFixtures(t)

	if _, err := NewPipeline(rc, config.TimestampData{}).Forecast(context.Background(), "05/03/2025"); !errors.Is(err, timestamp.ErrInvalidDate) {
		t.Errorf("bad date error = %v, want ErrInvalidDate", err)
	}

	if _, err := NewPipeline(rc, config.TimestampData{}).Forecast(context.Background(), "2025-03-02"); !errors.Is(err, refill.ErrInsufficientHistory) {
		t.Errorf("early cutoff error = %v, want ErrInsufficientHistory", err)
	}

	missing := rc
	missing.Scaler = filepath.Join(dir, "interval_scaler.json")
	if _, err := NewPipeline(missing, config.TimestampData{}).Forecast(context.Background(), "2025-03-05"); !errors.Is(err, model.ErrArtifactNotFound) {
		t.Errorf("missing scaler error = %v, want ErrArtifactNotFound", err)
	}

	if _, err := NewPipeline(rc, config.TimestampData{Layouts: []string{"nope"}}).Build(); err == nil {
		t.Error("expected error for unknown layout")
	}
}
