package crop

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// RemoteModel delegates inference to an external model service, for
// deployments that keep the original pickled estimator behind an HTTP API.
type RemoteModel struct {
	serviceURL string
	client     *http.Client
}

type remotePredictRequest struct {
	Instances Matrix `json:"instances"`
}

type remotePredictResponse struct {
	Predictions []int `json:"predictions"`
}

// NewRemoteModel creates a client for the model service at serviceURL.
func NewRemoteModel(serviceURL string) *RemoteModel {
	if serviceURL == "" {
		serviceURL = "http://localhost:5001"
	}

	return &RemoteModel{
		serviceURL: strings.TrimRight(serviceURL, "/"),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// HealthCheck verifies the model service is running
func (rm *RemoteModel) HealthCheck() error {
	resp, err := rm.client.Get(rm.serviceURL + "/health")
	if err != nil {
		return fmt.Errorf("model service not reachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("model service unhealthy: status %d", resp.StatusCode)
	}

	return nil
}

// Predict posts the rows to the service and returns one class id per row.
func (rm *RemoteModel) Predict(x Matrix) ([]int, error) {
	body, err := json.Marshal(remotePredictRequest{Instances: x})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, rm.serviceURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := rm.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("prediction request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("model service returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var predResp remotePredictResponse
	if err := json.NewDecoder(resp.Body).Decode(&predResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(predResp.Predictions) != len(x) {
		return nil, fmt.Errorf("model service returned %d predictions for %d rows", len(predResp.Predictions), len(x))
	}

	return predResp.Predictions, nil
}
