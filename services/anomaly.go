package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"vitalsim/models"

	"go.uber.org/zap"
)

// AnomalyClient calls the external ML anomaly-detection service.
type AnomalyClient struct {
	logger     *zap.Logger
	apiURL     string
	httpClient *http.Client
}

// NewAnomalyClient creates a client for the anomaly-detection API.
func NewAnomalyClient(apiURL string, logger *zap.Logger) *AnomalyClient {
	return &AnomalyClient{
		logger: logger,
		apiURL: apiURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Check asks the detection service whether the device's recent readings look
// anomalous. The service reads the stored history itself, so the request
// carries only the device id.
func (a *AnomalyClient) Check(ctx context.Context, deviceID string) (*models.AnomalyResult, error) {
	endpoint := fmt.Sprintf("%s/anomalies/detect/%s", a.apiURL, deviceID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call anomaly API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("anomaly API error: %s", resp.Status)
	}

	var result models.AnomalyResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode anomaly response: %w", err)
	}

	a.logger.Debug("Anomaly check completed",
		zap.String("device_id", deviceID),
		zap.Bool("is_anomaly", result.IsAnomaly),
		zap.Float64("score", result.AnomalyScore))

	return &result, nil
}
