package crop

// Feature Scaling
//
// The classifier was fit on measurements that went through two scalers in a
// fixed order: min-max scaling first, then z-score standardisation. The two
// transforms do not commute, so the handler must apply them in exactly that
// order. Both scalers here only apply pre-fit parameters; fitting happens
// offline and the parameters are exported as JSON using scikit-learn's
// attribute names.

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// zeroScaleEpsilon mirrors how scikit-learn guards constant features.
const zeroScaleEpsilon = 1e-10

// MinMaxScaler maps each feature into FeatureRange using the fitted data range.
type MinMaxScaler struct {
	DataMin      []float64  `json:"data_min"`
	DataRange    []float64  `json:"data_range"`
	FeatureRange [2]float64 `json:"feature_range"`
	Clip         bool       `json:"clip"`
}

// LoadMinMaxScaler reads fitted min-max parameters from a JSON file.
func LoadMinMaxScaler(path string) (*MinMaxScaler, error) {
	var scaler MinMaxScaler
	if err := readJSONFile(path, &scaler); err != nil {
		return nil, fmt.Errorf("unable to load min-max scaler: %w", err)
	}
	if len(scaler.DataMin) == 0 {
		return nil, fmt.Errorf("min-max scaler %s has no features", path)
	}
	if len(scaler.DataMin) != len(scaler.DataRange) {
		return nil, fmt.Errorf("min-max scaler %s: data_min has %d values, data_range has %d",
			path, len(scaler.DataMin), len(scaler.DataRange))
	}
	if scaler.FeatureRange == [2]float64{} {
		scaler.FeatureRange = [2]float64{0, 1}
	}
	if scaler.FeatureRange[0] >= scaler.FeatureRange[1] {
		return nil, fmt.Errorf("min-max scaler %s: invalid feature_range %v", path, scaler.FeatureRange)
	}
	return &scaler, nil
}

// Transform applies min-max scaling to every row.
func (mms *MinMaxScaler) Transform(x Matrix) (Matrix, error) {
	if err := checkWidth(x, len(mms.DataMin), "MinMaxScaler"); err != nil {
		return nil, err
	}

	lo, hi := mms.FeatureRange[0], mms.FeatureRange[1]
	if lo == 0 && hi == 0 {
		hi = 1
	}

	scaled := make(Matrix, len(x))
	for r, row := range x {
		out := make([]float64, len(row))
		for i, val := range row {
			featureRange := mms.DataRange[i]
			// Prevent division by zero for constant features
			if featureRange < zeroScaleEpsilon {
				featureRange = 1.0
			}
			out[i] = (val-mms.DataMin[i])/featureRange*(hi-lo) + lo
			if mms.Clip {
				out[i] = clamp(out[i], lo, hi)
			}
		}
		scaled[r] = out
	}
	return scaled, nil
}

// StandardScaler standardises features to zero mean and unit variance.
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// LoadStandardScaler reads fitted standardisation parameters from a JSON file.
func LoadStandardScaler(path string) (*StandardScaler, error) {
	var scaler StandardScaler
	if err := readJSONFile(path, &scaler); err != nil {
		return nil, fmt.Errorf("unable to load standard scaler: %w", err)
	}
	if len(scaler.Mean) == 0 {
		return nil, fmt.Errorf("standard scaler %s has no features", path)
	}
	if len(scaler.Mean) != len(scaler.Scale) {
		return nil, fmt.Errorf("standard scaler %s: mean has %d values, scale has %d",
			path, len(scaler.Mean), len(scaler.Scale))
	}
	return &scaler, nil
}

// Transform applies z-score standardisation to every row.
func (ss *StandardScaler) Transform(x Matrix) (Matrix, error) {
	if err := checkWidth(x, len(ss.Mean), "StandardScaler"); err != nil {
		return nil, err
	}

	scaled := make(Matrix, len(x))
	for r, row := range x {
		out := make([]float64, len(row))
		for i, val := range row {
			scale := ss.Scale[i]
			if scale < zeroScaleEpsilon {
				scale = 1.0
			}
			out[i] = (val - ss.Mean[i]) / scale
		}
		scaled[r] = out
	}
	return scaled, nil
}

func checkWidth(x Matrix, expected int, name string) error {
	if len(x) == 0 {
		return fmt.Errorf("%s received an empty matrix", name)
	}
	for _, row := range x {
		if len(row) != expected {
			return fmt.Errorf("X has %d features, but %s is expecting %d features as input", len(row), name, expected)
		}
	}
	return nil
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func readJSONFile(path string, target interface{}) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("unable to parse %s: %w", path, err)
	}
	return nil
}
