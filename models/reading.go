package models

// BloodPressure is stored as a nested object under each vitals record,
// matching the dashboard schema.
type BloodPressure struct {
	Systolic  int `json:"systolic"`
	Diastolic int `json:"diastolic"`
}

// VitalReading is one immutable vitals record emitted per tick per monitor.
// Field names match the iotData/{device}/vitals/{patient}/{timestamp} schema.
type VitalReading struct {
	HeartRate       int           `json:"heartRate"`
	OxygenLevel     float64       `json:"oxygenLevel"`
	Temperature     float64       `json:"temperature"`
	BloodPressure   BloodPressure `json:"bloodPressure"`
	RespiratoryRate int           `json:"respiratoryRate"`
	Glucose         int           `json:"glucose"`
	BedOccupancy    bool          `json:"bedOccupancy"`
	PatientID       string        `json:"patientId"`
	DeviceStatus    string        `json:"deviceStatus"`
	BatteryLevel    int           `json:"batteryLevel"`
	SignalStrength  int           `json:"signalStrength"`
	Timestamp       string        `json:"timestamp"`
}

// EnvironmentalReading is one immutable room-conditions record, stored under
// iotData/{device}/environmentalData/{timestamp}.
type EnvironmentalReading struct {
	Temperature    float64 `json:"temperature"`
	Humidity       int     `json:"humidity"`
	AirQuality     int     `json:"airQuality"`
	NoiseLevel     int     `json:"noiseLevel"`
	CO2Level       int     `json:"co2Level"`
	LightLevel     int     `json:"lightLevel"`
	Pressure       float64 `json:"pressure"`
	DeviceStatus   string  `json:"deviceStatus"`
	BatteryLevel   int     `json:"batteryLevel"`
	SignalStrength int     `json:"signalStrength"`
	Timestamp      string  `json:"timestamp"`
}
