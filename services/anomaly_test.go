package services_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"vitalsim/services"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAnomalyClientCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/anomalies/detect/monitor-001", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"device_id": "monitor-001",
			"is_anomaly": true,
			"anomaly_score": 0.87,
			"severity_level": "warning",
			"severity_score": 0.6,
			"anomaly_type": ["heart_rate_spike"],
			"confidence": 0.91
		}`))
	}))
	defer server.Close()

	client := services.NewAnomalyClient(server.URL, zap.NewNop())
	result, err := client.Check(context.Background(), "monitor-001")

	require.NoError(t, err)
	require.True(t, result.IsAnomaly)
	require.Equal(t, "warning", result.SeverityLevel)
	require.InDelta(t, 0.87, result.AnomalyScore, 1e-9)
	require.Equal(t, []string{"heart_rate_spike"}, result.AnomalyType)
}

func TestAnomalyClientCheckServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := services.NewAnomalyClient(server.URL, zap.NewNop())
	_, err := client.Check(context.Background(), "monitor-001")

	require.Error(t, err)
	require.Contains(t, err.Error(), "anomaly API error")
}

func TestAnomalyClientCheckUnreachable(t *testing.T) {
	client := services.NewAnomalyClient("http://127.0.0.1:1", zap.NewNop())
	_, err := client.Check(context.Background(), "monitor-001")
	require.Error(t, err)
}
