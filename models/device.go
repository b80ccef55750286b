package models

// Device types recognized by the simulation engine. Other device types in
// iotData (infusion pumps, badge readers) are ignored.
const (
	DeviceTypeVitalsMonitor       = "vitals_monitor"
	DeviceTypeEnvironmentalSensor = "environmental_sensor"
)

// DeviceInfo mirrors iotData/{device}/deviceInfo.
type DeviceInfo struct {
	Type             string `json:"type"`
	CurrentPatientID string `json:"currentPatientId,omitempty"`
	RoomID           string `json:"roomId,omitempty"`
	RoomType         string `json:"roomType,omitempty"`
	BedID            string `json:"bedId,omitempty"`
}

// Medication is one entry of a patient's medication list.
type Medication struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage,omitempty"`
	StartDate string `json:"startDate,omitempty"`
}

// PatientRecord is the subset of patients/{id} the engine reads. The full
// patient document carries far more (contacts, admissions, notes); only the
// simulation-relevant fields are decoded here.
type PatientRecord struct {
	PersonalInfo struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
	} `json:"personalInfo"`
	MedicalHistory struct {
		Conditions  []string     `json:"conditions"`
		Medications []Medication `json:"medications"`
	} `json:"medicalHistory"`
	CurrentStatus struct {
		Status string `json:"status"`
	} `json:"currentStatus"`
}

// RoomRecord is the subset of rooms/{id} the engine reads.
type RoomRecord struct {
	RoomType string `json:"roomType"`
}
