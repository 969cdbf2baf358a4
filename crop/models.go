package crop

import (
	"net/http"
	"time"
)

// FeatureNames lists the request fields in the column order the scalers and
// model were fit on.
var FeatureNames = [FeatureCount]string{
	"Nitrogen",
	"Phosphorus",
	"Potassium",
	"Temperature",
	"Humidity",
	"Ph",
	"Rainfall",
}

const FeatureCount = 7

// Matrix is a row-major batch of feature rows.
type Matrix [][]float64

// PredictionRequest carries one set of soil and weather measurements.
type PredictionRequest struct {
	Nitrogen    float64 `json:"Nitrogen" bson:"Nitrogen"`
	Phosphorus  float64 `json:"Phosphorus" bson:"Phosphorus"`
	Potassium   float64 `json:"Potassium" bson:"Potassium"`
	Temperature float64 `json:"Temperature" bson:"Temperature"`
	Humidity    float64 `json:"Humidity" bson:"Humidity"`
	Ph          float64 `json:"Ph" bson:"Ph"`
	Rainfall    float64 `json:"Rainfall" bson:"Rainfall"`
}

// FeatureVector is a PredictionRequest flattened into FeatureNames order.
type FeatureVector [FeatureCount]float64

// Features extracts the measurements in model column order.
func (r PredictionRequest) Features() FeatureVector {
	return FeatureVector{
		r.Nitrogen,
		r.Phosphorus,
		r.Potassium,
		r.Temperature,
		r.Humidity,
		r.Ph,
		r.Rainfall,
	}
}

// Row shapes the vector as a single-row matrix.
func (v FeatureVector) Row() Matrix {
	row := make([]float64, FeatureCount)
	copy(row, v[:])
	return Matrix{row}
}

// PredictionRecord is the document persisted for every successful inference.
type PredictionRecord struct {
	ID         string            `json:"id" bson:"_id"`
	Input      PredictionRequest `json:"input" bson:"input"`
	Prediction string            `json:"prediction" bson:"prediction"`
	CreatedAt  time.Time         `json:"createdAt" bson:"createdAt"`
}

// PredictionResponse is the body returned to callers. Status is the HTTP
// status that accompanies it and is not serialised.
type PredictionResponse struct {
	Success       bool   `json:"success"`
	PredictedCrop string `json:"predicted_crop,omitempty"`
	Message       string `json:"message"`
	Status        int    `json:"-"`
}

func successResponse(cropName string) PredictionResponse {
	return PredictionResponse{
		Success:       true,
		PredictedCrop: cropName,
		Message:       cropName + " is the best crop to be cultivated right there.",
		Status:        http.StatusOK,
	}
}

func failureResponse(err error) PredictionResponse {
	return PredictionResponse{
		Success: false,
		Message: err.Error(),
		Status:  http.StatusInternalServerError,
	}
}
