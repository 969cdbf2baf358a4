package crop

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMinMaxScalerTransform(t *testing.T) {
	t.Parallel()

	scaler := &MinMaxScaler{
		DataMin:      []float64{0, 10, 5},
		DataRange:    []float64{100, 20, 0},
		FeatureRange: [2]float64{0, 1},
	}

	out, err := scaler.Transform(Matrix{{50, 40, 7}})
	if err != nil {
		t.Fatalf("Transform returned error: %v", err)
	}
	want := []float64{0.5, 1.5, 2}
	for i, v := range want {
		if math.Abs(out[0][i]-v) > 1e-12 {
			t.Fatalf("column %d: expected %v, got %v", i, v, out[0][i])
		}
	}
}

func TestMinMaxScalerClipAndCustomRange(t *testing.T) {
	t.Parallel()

	scaler := &MinMaxScaler{
		DataMin:      []float64{0, 0},
		DataRange:    []float64{10, 10},
		FeatureRange: [2]float64{-1, 1},
		Clip:         true,
	}

	out, err := scaler.Transform(Matrix{{5, 20}})
	if err != nil {
		t.Fatalf("Transform returned error: %v", err)
	}
	if out[0][0] != 0 || out[0][1] != 1 {
		t.Fatalf("expected [0 1], got %v", out[0])
	}
}

func TestStandardScalerTransform(t *testing.T) {
	t.Parallel()

	scaler := &StandardScaler{Mean: []float64{1, 2}, Scale: []float64{2, 0}}
	out, err := scaler.Transform(Matrix{{5, 3}, {1, 2}})
	if err != nil {
		t.Fatalf("Transform returned error: %v", err)
	}
	if out[0][0] != 2 || out[0][1] != 1 || out[1][0] != 0 || out[1][1] != 0 {
		t.Fatalf("unexpected output %v", out)
	}
}

func TestScalersRejectWrongWidth(t *testing.T) {
	t.Parallel()

	standard := &StandardScaler{Mean: make([]float64, FeatureCount), Scale: make([]float64, FeatureCount)}
	_, err := standard.Transform(Matrix{{1, 2, 3}})
	if err == nil || !strings.Contains(err.Error(), "X has 3 features, but StandardScaler is expecting 7") {
		t.Fatalf("unexpected error: %v", err)
	}

	minMax := &MinMaxScaler{DataMin: make([]float64, 2), DataRange: make([]float64, 2)}
	if _, err := minMax.Transform(Matrix{}); err == nil {
		t.Fatal("expected error for empty matrix")
	}
}

func TestScalersDoNotMutateInput(t *testing.T) {
	t.Parallel()

	input := Matrix{{4, 8}}
	scaler := &StandardScaler{Mean: []float64{2, 2}, Scale: []float64{2, 2}}
	if _, err := scaler.Transform(input); err != nil {
		t.Fatalf("Transform returned error: %v", err)
	}
	if input[0][0] != 4 || input[0][1] != 8 {
		t.Fatalf("input was mutated: %v", input)
	}
}

func TestLoadScalersFromJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	minMaxPath := filepath.Join(dir, MinMaxScalerFile)
	standardPath := filepath.Join(dir, StandardScalerFile)
	writeFile(t, minMaxPath, `{"data_min": [1, 2], "data_range": [3, 4]}`)
	writeFile(t, standardPath, `{"mean": [0.5, 0.5], "scale": [1, 2]}`)

	minMax, err := LoadMinMaxScaler(minMaxPath)
	if err != nil {
		t.Fatalf("LoadMinMaxScaler returned error: %v", err)
	}
	if minMax.FeatureRange != [2]float64{0, 1} {
		t.Fatalf("expected default feature range, got %v", minMax.FeatureRange)
	}

	standard, err := LoadStandardScaler(standardPath)
	if err != nil {
		t.Fatalf("LoadStandardScaler returned error: %v", err)
	}
	if len(standard.Mean) != 2 || standard.Scale[1] != 2 {
		t.Fatalf("unexpected scaler %+v", standard)
	}
}

func TestLoadScalersRejectInconsistentParameters(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	writeFile(t, bad, `{"data_min": [1, 2], "data_range": [3], "mean": [1], "scale": []}`)

	if _, err := LoadMinMaxScaler(bad); err == nil {
		t.Fatal("expected min-max length mismatch error")
	}
	if _, err := LoadStandardScaler(bad); err == nil {
		t.Fatal("expected standard length mismatch error")
	}
	if _, err := LoadStandardScaler(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}
