// Package regression fits and evaluates a one-feature ordinary least squares
// model and persists it to a local file.
package regression

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"featuredrop/internal/common"
	"featuredrop/pkg/errors"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"
)

// LinearRegression is y = Intercept + Slope*x
type LinearRegression struct {
	Slope       float64   `yaml:"slope"`
	Intercept   float64   `yaml:"intercept"`
	FeatureName string    `yaml:"feature,omitempty"`
	TargetName  string    `yaml:"target,omitempty"`
	TrainRows   int       `yaml:"train_rows"`
	TrainedAt   time.Time `yaml:"trained_at"`

	fitted bool
}

// NewLinearRegression creates an unfitted model for the named columns
func NewLinearRegression(feature, target string) *LinearRegression {
	return &LinearRegression{FeatureName: feature, TargetName: target}
}

// Fit learns the least-squares line through (x, y). A constant feature has
// no unique solution; the minimum-norm one is used: slope 0 and the mean
// of y as intercept.
func (m *LinearRegression) Fit(x, y []float64) error {
	if len(x) != len(y) {
		return errors.New(errors.ErrCodeFitFailed, fmt.Sprintf("feature has %d values, target has %d", len(x), len(y)))
	}
	if len(x) == 0 {
		return errors.New(errors.ErrCodeInsufficientData, "cannot fit a model on zero rows")
	}
	if floats.HasNaN(x) || floats.HasNaN(y) {
		return errors.New(errors.ErrCodeFitFailed, "training data contains missing values")
	}

	if stat.Variance(x, nil) == 0 || len(x) == 1 {
		m.Slope = 0
		m.Intercept = stat.Mean(y, nil)
	} else {
		m.Intercept, m.Slope = stat.LinearRegression(x, y, nil, false)
	}

	if math.IsNaN(m.Slope) || math.IsNaN(m.Intercept) || math.IsInf(m.Slope, 0) || math.IsInf(m.Intercept, 0) {
		return errors.New(errors.ErrCodeFitFailed, "least squares produced a non-finite solution")
	}

	m.TrainRows = len(x)
	m.TrainedAt = time.Now().UTC()
	m.fitted = true
	return nil
}

// Fitted reports whether Fit succeeded or the model was loaded from disk
func (m *LinearRegression) Fitted() bool {
	return m.fitted
}

// Predict returns the model output for every value of x
func (m *LinearRegression) Predict(x []float64) ([]float64, error) {
	if !m.fitted {
		return nil, errors.New(errors.ErrCodeFitFailed, "model is not fitted")
	}
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = m.Intercept + m.Slope*v
	}
	return out, nil
}

// Save writes the model to path, replacing any previous file
func (m *LinearRegression) Save(path string) error {
	if !m.fitted {
		return errors.SerializationError(path, fmt.Errorf("model is not fitted"))
	}

	data, err := yaml.Marshal(m)
	if err != nil {
		return errors.SerializationError(path, err)
	}

	// Write to a sibling temp file first so a failed write leaves the old model intact
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".model-*.tmp")
	if err != nil {
		return errors.SerializationError(path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.SerializationError(path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.SerializationError(path, err)
	}
	if err := os.Chmod(tmpName, common.FilePermissionNormal); err != nil {
		os.Remove(tmpName)
		return errors.SerializationError(path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.SerializationError(path, err)
	}
	return nil
}

// Load reads a model previously written by Save
func Load(path string) (*LinearRegression, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path comes from configuration
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, fmt.Sprintf("Failed to read model from %s", path))
	}

	var m LinearRegression
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, fmt.Sprintf("Failed to decode model from %s", path))
	}
	m.fitted = true
	return &m, nil
}
