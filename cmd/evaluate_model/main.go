package main

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"crop-recommendation/crop"
)

// EvaluationConfig holds evaluation parameters
type EvaluationConfig struct {
	ModelDir   string
	DataPath   string
	ReportPath string
	Verbose    bool
}

// ClassMetrics tracks per-crop performance
type ClassMetrics struct {
	CropName      string
	TotalSamples  int
	CorrectCount  int
	Accuracy      float64
	Misclassified []MisclassificationInfo
}

// MisclassificationInfo stores details of incorrect predictions
type MisclassificationInfo struct {
	Line           int
	TrueLabel      string
	PredictedLabel string
}

// EvaluationReport contains comprehensive evaluation results
type EvaluationReport struct {
	Timestamp       time.Time
	ModelDir        string
	DataPath        string
	TotalSamples    int
	CorrectCount    int
	OverallAccuracy float64
	ClassMetrics    []ClassMetrics
	ConfusionMatrix map[string]map[string]int
	ProcessingTime  time.Duration
}

type labelledSample struct {
	line    int
	request crop.PredictionRequest
	label   string
}

func main() {
	config := parseFlags()

	log.SetFlags(log.Ldate | log.Ltime)
	log.Println("=== Model Evaluation Pipeline ===")
	log.Printf("Artifacts: %s\n", config.ModelDir)
	log.Printf("Dataset: %s\n", config.DataPath)
	log.Println()

	artifacts, err := crop.LoadArtifacts(config.ModelDir, nil)
	if err != nil {
		log.Fatalf("ERROR: Failed to load artifacts: %v", err)
	}

	samples, err := readSamples(config.DataPath)
	if err != nil {
		log.Fatalf("ERROR: Failed to read dataset: %v", err)
	}
	log.Printf("Loaded %d labelled samples\n", len(samples))

	report, err := evaluateModel(artifacts, samples, config)
	if err != nil {
		log.Fatalf("ERROR: Evaluation failed: %v", err)
	}

	printEvaluationReport(report, config.Verbose)

	if config.ReportPath != "" {
		if err := saveReport(report, config.ReportPath); err != nil {
			log.Printf("WARNING: Failed to save report: %v\n", err)
		} else {
			log.Printf("\nReport saved to: %s\n", config.ReportPath)
		}
	}
}

func parseFlags() EvaluationConfig {
	config := EvaluationConfig{}

	flag.StringVar(&config.ModelDir, "model-dir", "artifacts",
		"Directory holding the scaler and model JSON files")
	flag.StringVar(&config.DataPath, "data", "Crop_recommendation.csv",
		"CSV with N,P,K,temperature,humidity,ph,rainfall,label columns")
	flag.StringVar(&config.ReportPath, "report", "evaluation_report.json",
		"Path to save evaluation report (empty to skip)")
	flag.BoolVar(&config.Verbose, "verbose", false,
		"List every misclassified row")

	flag.Parse()

	return config
}

// readSamples expects a header row followed by seven numeric columns in
// feature order and the crop label last.
func readSamples(path string) ([]labelledSample, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = crop.FeatureCount + 1

	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var samples []labelledSample
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, err
		}

		var values [crop.FeatureCount]float64
		for i := 0; i < crop.FeatureCount; i++ {
			values[i], err = strconv.ParseFloat(strings.TrimSpace(record[i]), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d column %s: %w", line, crop.FeatureNames[i], err)
			}
		}

		samples = append(samples, labelledSample{
			line: line,
			request: crop.PredictionRequest{
				Nitrogen:    values[0],
				Phosphorus:  values[1],
				Potassium:   values[2],
				Temperature: values[3],
				Humidity:    values[4],
				Ph:          values[5],
				Rainfall:    values[6],
			},
			label: strings.TrimSpace(record[crop.FeatureCount]),
		})
	}

	return samples, nil
}

// predictAll runs the scalers and the model on the whole dataset at once.
func predictAll(artifacts *crop.Artifacts, samples []labelledSample) ([]string, error) {
	x := make(crop.Matrix, len(samples))
	for i, sample := range samples {
		x[i] = sample.request.Features().Row()[0]
	}

	scaled, err := artifacts.MinMax.Transform(x)
	if err != nil {
		return nil, err
	}
	scaled, err = artifacts.Standard.Transform(scaled)
	if err != nil {
		return nil, err
	}
	classes, err := artifacts.Model.Predict(scaled)
	if err != nil {
		return nil, err
	}
	if len(classes) != len(samples) {
		return nil, fmt.Errorf("model returned %d predictions for %d rows", len(classes), len(samples))
	}

	labels := crop.DefaultLabels()
	names := make([]string, len(classes))
	for i, class := range classes {
		names[i] = labels.Name(class)
	}
	return names, nil
}

func evaluateModel(artifacts *crop.Artifacts, samples []labelledSample, config EvaluationConfig) (EvaluationReport, error) {
	report := EvaluationReport{
		Timestamp:       time.Now(),
		ModelDir:        config.ModelDir,
		DataPath:        config.DataPath,
		ConfusionMatrix: make(map[string]map[string]int),
	}
	if len(samples) == 0 {
		return report, errors.New("dataset has no rows")
	}

	predicted, err := predictAll(artifacts, samples)
	if err != nil {
		return report, err
	}

	perCrop := make(map[string]*ClassMetrics)
	for i, sample := range samples {
		trueLabel := strings.ToLower(sample.label)
		predictedLabel := strings.ToLower(predicted[i])

		metrics, ok := perCrop[trueLabel]
		if !ok {
			metrics = &ClassMetrics{CropName: trueLabel}
			perCrop[trueLabel] = metrics
		}
		metrics.TotalSamples++

		if report.ConfusionMatrix[trueLabel] == nil {
			report.ConfusionMatrix[trueLabel] = make(map[string]int)
		}
		report.ConfusionMatrix[trueLabel][predictedLabel]++

		if trueLabel == predictedLabel {
			metrics.CorrectCount++
			report.CorrectCount++
		} else {
			metrics.Misclassified = append(metrics.Misclassified, MisclassificationInfo{
				Line:           sample.line,
				TrueLabel:      trueLabel,
				PredictedLabel: predictedLabel,
			})
		}
	}

	for _, metrics := range perCrop {
		metrics.Accuracy = float64(metrics.CorrectCount) / float64(metrics.TotalSamples) * 100
		report.ClassMetrics = append(report.ClassMetrics, *metrics)
	}
	sort.Slice(report.ClassMetrics, func(i, j int) bool {
		return report.ClassMetrics[i].CropName < report.ClassMetrics[j].CropName
	})

	report.TotalSamples = len(samples)
	report.OverallAccuracy = float64(report.CorrectCount) / float64(report.TotalSamples) * 100
	report.ProcessingTime = time.Since(report.Timestamp)

	return report, nil
}

func printEvaluationReport(report EvaluationReport, verbose bool) {
	log.Println()
	log.Println("=== Evaluation Results ===")
	log.Printf("Samples: %d, correct: %d\n", report.TotalSamples, report.CorrectCount)
	log.Printf("Overall accuracy: %.2f%%\n", report.OverallAccuracy)
	log.Printf("Processing time: %v\n", report.ProcessingTime)
	log.Println()

	log.Println("Per-crop accuracy:")
	for _, metrics := range report.ClassMetrics {
		log.Printf("  %-12s %6.2f%% (%d/%d)\n", metrics.CropName, metrics.Accuracy,
			metrics.CorrectCount, metrics.TotalSamples)
		if verbose {
			for _, miss := range metrics.Misclassified {
				log.Printf("    line %d predicted as %s\n", miss.Line, miss.PredictedLabel)
			}
		}
	}
}

func saveReport(report EvaluationReport, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
