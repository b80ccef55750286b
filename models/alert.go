package models

// Alert is persisted under alerts/{timestamp} and fanned out to the alert
// queue and Telegram when a scenario, hazard or anomaly-detector hit occurs.
type Alert struct {
	Message             string                `json:"message"`
	MonitorID           string                `json:"monitorId"`
	PatientID           string                `json:"patientId"`
	Resolved            bool                  `json:"resolved"`
	Timestamp           string                `json:"timestamp"`
	Type                string                `json:"type"` // "info", "warning", "critical"
	Vitals              *VitalReading         `json:"vitals,omitempty"`
	EnvironmentalValues *EnvironmentalReading `json:"environmentalValues,omitempty"`
	Recommendations     []string              `json:"recommendations,omitempty"`
}

// AnomalyResult is the response of the external anomaly-detection service.
type AnomalyResult struct {
	DeviceID      string   `json:"device_id"`
	Timestamp     string   `json:"timestamp"`
	IsAnomaly     bool     `json:"is_anomaly"`
	AnomalyScore  float64  `json:"anomaly_score"`
	SeverityLevel string   `json:"severity_level"`
	SeverityScore float64  `json:"severity_score"`
	AnomalyType   []string `json:"anomaly_type"`
	Confidence    float64  `json:"confidence"`
}
