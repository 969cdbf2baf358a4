package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"crop-recommendation/crop"
	"crop-recommendation/utils"
)

// FileStore keeps predictions as a JSON array on disk. Writes go through a
// temporary file and a rename so a crash never leaves a truncated array.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) (*FileStore, error) {
	path = filepath.Clean(path)
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := utils.CreateFolder(dir); err != nil {
			return nil, fmt.Errorf("error creating directory: %w", err)
		}
	}
	return &FileStore{path: path}, nil
}

// load reads all records; callers must hold mu.
func (s *FileStore) load() ([]crop.PredictionRecord, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return []crop.PredictionRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading predictions file: %w", err)
	}
	if len(data) == 0 {
		return []crop.PredictionRecord{}, nil
	}

	var records []crop.PredictionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("error unmarshaling predictions: %w", err)
	}
	return records, nil
}

func (s *FileStore) InsertOne(_ context.Context, record crop.PredictionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}
	records = append(records, record)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling predictions: %w", err)
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("error writing predictions file: %w", err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("error replacing predictions file: %w", err)
	}
	return nil
}

// Count returns the number of stored predictions.
func (s *FileStore) Count(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

func (s *FileStore) Close(context.Context) error { return nil }
