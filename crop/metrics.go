package crop

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	predictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crop_predictions_total",
			Help: "Total number of successful predictions by crop",
		},
		[]string{"crop"},
	)

	predictionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crop_prediction_failures_total",
			Help: "Total number of failed predictions by pipeline stage",
		},
		[]string{"stage"},
	)

	inferenceDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "crop_inference_duration_seconds",
			Help:    "Time spent scaling and running the model",
			Buckets: prometheus.DefBuckets,
		},
	)
)
