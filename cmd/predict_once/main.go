package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"crop-recommendation/crop"
	"crop-recommendation/store"
)

// Config holds the measurements and artifact locations for one prediction.
type Config struct {
	ModelDir   string
	ModelURL   string
	OutputPath string
	Request    crop.PredictionRequest
}

func main() {
	config := parseFlags()

	log.SetFlags(log.Ldate | log.Ltime)
	log.Printf("Artifacts: %s\n", config.ModelDir)

	var model crop.Model
	if config.ModelURL != "" {
		log.Printf("Model service: %s\n", config.ModelURL)
		model = crop.NewRemoteModel(config.ModelURL)
	}

	artifacts, err := crop.LoadArtifacts(config.ModelDir, model)
	if err != nil {
		log.Fatalf("ERROR: Failed to load artifacts: %v", err)
	}

	var sink crop.Store = discardStore{}
	if config.OutputPath != "" {
		fileStore, err := store.NewFileStore(config.OutputPath)
		if err != nil {
			log.Fatalf("ERROR: Failed to open output file: %v", err)
		}
		defer fileStore.Close(context.Background())
		sink = fileStore
	}

	handler := crop.NewHandler(artifacts.MinMax, artifacts.Standard, artifacts.Model, crop.DefaultLabels(), sink, nil)
	resp, err := handler.Predict(context.Background(), config.Request)
	if err != nil {
		resp = crop.PredictionResponse{Success: false, Message: err.Error()}
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(resp); err != nil {
		log.Fatalf("ERROR: Failed to encode response: %v", err)
	}
	if !resp.Success {
		os.Exit(1)
	}
}

func parseFlags() Config {
	config := Config{}

	flag.StringVar(&config.ModelDir, "model-dir", "artifacts", "Directory holding the scaler and model JSON files")
	flag.StringVar(&config.ModelURL, "model-url", "", "Optional model service URL used instead of model.json")
	flag.StringVar(&config.OutputPath, "out", "", "Optional JSON file the prediction record is appended to")
	flag.Float64Var(&config.Request.Nitrogen, "nitrogen", 0, "Nitrogen content of the soil")
	flag.Float64Var(&config.Request.Phosphorus, "phosphorus", 0, "Phosphorus content of the soil")
	flag.Float64Var(&config.Request.Potassium, "potassium", 0, "Potassium content of the soil")
	flag.Float64Var(&config.Request.Temperature, "temperature", 0, "Temperature in degrees Celsius")
	flag.Float64Var(&config.Request.Humidity, "humidity", 0, "Relative humidity in percent")
	flag.Float64Var(&config.Request.Ph, "ph", 0, "Soil pH")
	flag.Float64Var(&config.Request.Rainfall, "rainfall", 0, "Rainfall in millimetres")

	flag.Parse()
	return config
}

// discardStore satisfies crop.Store without persisting anything.
type discardStore struct{}

func (discardStore) InsertOne(context.Context, crop.PredictionRecord) error { return nil }
