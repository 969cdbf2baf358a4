package crop

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

const testMinMax = `{"data_min": [0, 5, 5, 8.8, 14.3, 3.5, 20.2],
	"data_range": [140, 140, 200, 34.9, 85.7, 6.4, 278.6], "feature_range": [0, 1]}`

const testStandard = `{"mean": [0.36, 0.32, 0.23, 0.48, 0.67, 0.46, 0.31],
	"scale": [0.26, 0.23, 0.25, 0.15, 0.26, 0.12, 0.2]}`

func TestLoadArtifactsWithKNNModel(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, MinMaxScalerFile), testMinMax)
	writeFile(t, filepath.Join(dir, StandardScalerFile), testStandard)
	writeFile(t, filepath.Join(dir, ModelFile), `{"type": "knn", "k": 1, "prototypes": [
		{"id": "rice", "class": 1, "features": [0, 0, 0, 0, 0, 0, 0]},
		{"id": "coffee", "class": 22, "features": [9, 9, 9, 9, 9, 9, 9]}
	]}`)

	artifacts, err := LoadArtifacts(dir, nil)
	if err != nil {
		t.Fatalf("LoadArtifacts returned error: %v", err)
	}

	store := &memoryStore{}
	h := NewHandler(artifacts.MinMax, artifacts.Standard, artifacts.Model, DefaultLabels(), store, nil)
	resp := h.Handle(context.Background(), strings.NewReader(validBody))
	if !resp.Success || resp.PredictedCrop != "Rice" {
		t.Fatalf("expected Rice, got %+v", resp)
	}
}

func TestLoadArtifactsUsesSuppliedModel(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, MinMaxScalerFile), testMinMax)
	writeFile(t, filepath.Join(dir, StandardScalerFile), testStandard)

	artifacts, err := LoadArtifacts(dir, fixedModel{class: 13})
	if err != nil {
		t.Fatalf("LoadArtifacts returned error: %v", err)
	}
	if _, ok := artifacts.Model.(fixedModel); !ok {
		t.Fatalf("expected supplied model to be kept, got %T", artifacts.Model)
	}
}

func TestLoadArtifactsRejectsWrongScalerWidth(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, MinMaxScalerFile), `{"data_min": [0], "data_range": [1]}`)
	writeFile(t, filepath.Join(dir, StandardScalerFile), testStandard)

	if _, err := LoadArtifacts(dir, fixedModel{}); err == nil {
		t.Fatal("expected width mismatch error")
	}
}

func TestLoadModelForestAndUnknownType(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	forestPath := filepath.Join(dir, "forest.json")
	writeFile(t, forestPath, `{"type": "forest", "n_features": 7, "trees": [{
		"feature": [6, -2, -2], "threshold": [100, -2, -2],
		"left": [1, -1, -1], "right": [2, -1, -1], "class": [0, 17, 1]
	}]}`)

	model, err := LoadModel(forestPath)
	if err != nil {
		t.Fatalf("LoadModel returned error: %v", err)
	}
	classes, err := model.Predict(Matrix{{0, 0, 0, 0, 0, 0, 250}})
	if err != nil || classes[0] != 1 {
		t.Fatalf("expected class 1, got %v (err=%v)", classes, err)
	}

	unknownPath := filepath.Join(dir, "svm.json")
	writeFile(t, unknownPath, `{"type": "svm"}`)
	if _, err := LoadModel(unknownPath); err == nil || !strings.Contains(err.Error(), "unsupported model type") {
		t.Fatalf("expected unsupported type error, got %v", err)
	}
}

func TestBundledArtifacts(t *testing.T) {
	t.Parallel()

	artifacts, err := LoadArtifacts(filepath.Join("..", "artifacts"), nil)
	if err != nil {
		t.Fatalf("LoadArtifacts returned error: %v", err)
	}

	h := NewHandler(artifacts.MinMax, artifacts.Standard, artifacts.Model, DefaultLabels(), &memoryStore{}, nil)
	cases := []struct {
		req  PredictionRequest
		want string
	}{
		{PredictionRequest{Nitrogen: 79.9, Phosphorus: 47.6, Potassium: 39.9, Temperature: 23.7, Humidity: 82.3, Ph: 6.4, Rainfall: 236.2}, "Rice"},
		{PredictionRequest{Nitrogen: 101.2, Phosphorus: 28.7, Potassium: 29.9, Temperature: 25.5, Humidity: 58.9, Ph: 6.8, Rainfall: 158.1}, "Coffee"},
		{PredictionRequest{Nitrogen: 40.1, Phosphorus: 67.8, Potassium: 79.9, Temperature: 18.9, Humidity: 16.9, Ph: 7.3, Rainfall: 80.1}, "Chickpea"},
	}
	for _, tc := range cases {
		resp, err := h.Predict(context.Background(), tc.req)
		if err != nil {
			t.Fatalf("Predict returned error: %v", err)
		}
		if resp.PredictedCrop != tc.want {
			t.Fatalf("expected %s, got %+v", tc.want, resp)
		}
	}
}
