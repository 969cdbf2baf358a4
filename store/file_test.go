package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"crop-recommendation/crop"
)

func TestFileStoreAppendsRecords(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "predictions.json")
	s, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}

	for _, id := range []string{"first", "second"} {
		if err := s.InsertOne(context.Background(), sampleRecord(id)); err != nil {
			t.Fatalf("InsertOne returned error: %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	var records []crop.PredictionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("failed to parse %s: %v", path, err)
	}
	if len(records) != 2 || records[0].ID != "first" || records[1].ID != "second" {
		t.Fatalf("unexpected records %+v", records)
	}
	if records[1].Input.Rainfall != 202.93 || records[1].Prediction != "Rice" {
		t.Fatalf("record content was not preserved: %+v", records[1])
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temporary file left behind (err=%v)", err)
	}
}

func TestFileStoreConcurrentInserts(t *testing.T) {
	t.Parallel()

	s, err := NewFileStore(filepath.Join(t.TempDir(), "predictions.json"))
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}
	exerciseConcurrentInserts(t, s)
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "predictions.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("failed to seed file: %v", err)
	}
	s, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}
	if err := s.InsertOne(context.Background(), sampleRecord("x")); err == nil {
		t.Fatal("expected error for corrupt predictions file")
	}
}
