package crop

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mdobak/go-xerrors"
)

// Store persists prediction records. Implementations must be safe for
// concurrent use.
type Store interface {
	InsertOne(ctx context.Context, record PredictionRecord) error
}

// Stage names the pipeline step a failure came from.
type Stage string

const (
	StageDecode   Stage = "decode"
	StageMinMax   Stage = "minmax"
	StageStandard Stage = "standard"
	StageModel    Stage = "model"
	StageStore    Stage = "store"
)

// StageError tags a pipeline failure with its stage. Its message is the
// underlying error's message unchanged.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string { return e.Err.Error() }
func (e *StageError) Unwrap() error { return e.Err }

func stageError(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}

// Handler runs one request through scaling, inference, label lookup and
// persistence. All of its collaborators are fixed at construction and only
// read afterwards, so one Handler serves any number of concurrent requests.
type Handler struct {
	minMax   Transformer
	standard Transformer
	model    Model
	labels   LabelMap
	store    Store
	logger   *slog.Logger
}

func NewHandler(minMax, standard Transformer, model Model, labels LabelMap, store Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{
		minMax:   minMax,
		standard: standard,
		model:    model,
		labels:   labels,
		store:    store,
		logger:   logger,
	}
}

// Handle decodes a JSON request body and predicts. Every failure is reported
// as an unsuccessful response with status 500 carrying the error text.
func (h *Handler) Handle(ctx context.Context, body io.Reader) PredictionResponse {
	var req PredictionRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("request body is empty")
		}
		return h.fail(ctx, stageError(StageDecode, err))
	}

	resp, err := h.Predict(ctx, req)
	if err != nil {
		return h.fail(ctx, err)
	}
	return resp
}

// Predict runs the pipeline for an already decoded request. The record is
// inserted before the response is built, and a failed insert fails the call.
func (h *Handler) Predict(ctx context.Context, req PredictionRequest) (PredictionResponse, error) {
	started := time.Now()

	intermediate, err := h.minMax.Transform(req.Features().Row())
	if err != nil {
		return PredictionResponse{}, stageError(StageMinMax, err)
	}

	final, err := h.standard.Transform(intermediate)
	if err != nil {
		return PredictionResponse{}, stageError(StageStandard, err)
	}

	classes, err := h.model.Predict(final)
	if err != nil {
		return PredictionResponse{}, stageError(StageModel, err)
	}
	if len(classes) == 0 {
		return PredictionResponse{}, stageError(StageModel, errors.New("model returned no prediction"))
	}
	inferenceDuration.Observe(time.Since(started).Seconds())

	classID := classes[0]
	cropName := h.labels.Name(classID)

	record := PredictionRecord{
		ID:         uuid.NewString(),
		Input:      req,
		Prediction: cropName,
		CreatedAt:  time.Now().UTC(),
	}
	if err := h.store.InsertOne(ctx, record); err != nil {
		return PredictionResponse{}, stageError(StageStore, fmt.Errorf("failed to store prediction: %w", err))
	}

	predictionsTotal.WithLabelValues(cropName).Inc()
	h.logger.InfoContext(ctx, "prediction served",
		slog.Int("classId", classID),
		slog.String("crop", cropName),
		slog.String("recordId", record.ID),
		slog.Float64("latencyMs", float64(time.Since(started).Microseconds())/1000),
	)

	return successResponse(cropName), nil
}

func (h *Handler) fail(ctx context.Context, err error) PredictionResponse {
	stage := Stage("unknown")
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		stage = stageErr.Stage
	}
	predictionFailures.WithLabelValues(string(stage)).Inc()

	h.logger.ErrorContext(ctx, "prediction failed",
		slog.String("stage", string(stage)),
		slog.Any("error", xerrors.New(err)),
	)
	return failureResponse(err)
}
