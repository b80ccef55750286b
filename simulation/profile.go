package simulation

import (
	"strings"
	"sync"
	"time"
)

// PatientState classifies the clinical trajectory a patient is on. It drives
// trend seeding, noise volatility and scenario likelihood.
type PatientState string

const (
	StateStable        PatientState = "stable"
	StateDeteriorating PatientState = "deteriorating"
	StateCritical      PatientState = "critical"
	StateRecovering    PatientState = "recovering"
	StateAtRisk        PatientState = "at_risk"
)

// ParsePatientState maps the free-form status string stored on the patient
// record to a closed state. "improving" is historical data for recovering.
func ParsePatientState(s string) PatientState {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return StateCritical
	case "deteriorating":
		return StateDeteriorating
	case "recovering", "improving":
		return StateRecovering
	case "at_risk", "at risk":
		return StateAtRisk
	default:
		return StateStable
	}
}

// VitalField identifies one generated vital sign.
type VitalField string

const (
	FieldHeartRate       VitalField = "heartRate"
	FieldOxygenLevel     VitalField = "oxygenLevel"
	FieldTemperature     VitalField = "temperature"
	FieldSystolicBP      VitalField = "systolicBP"
	FieldDiastolicBP     VitalField = "diastolicBP"
	FieldRespiratoryRate VitalField = "respiratoryRate"
	FieldGlucose         VitalField = "glucose"
)

// VitalFields lists every vital field in generation order.
var VitalFields = []VitalField{
	FieldHeartRate,
	FieldOxygenLevel,
	FieldTemperature,
	FieldSystolicBP,
	FieldDiastolicBP,
	FieldRespiratoryRate,
	FieldGlucose,
}

// Vitals holds the continuous (pre-rounding) vital values carried from tick
// to tick. Serialization happens only at the persistence boundary.
type Vitals struct {
	HeartRate       float64
	OxygenLevel     float64
	Temperature     float64
	SystolicBP      float64
	DiastolicBP     float64
	RespiratoryRate float64
	Glucose         float64
}

// Field returns the value of the named field.
func (v *Vitals) Field(f VitalField) float64 {
	switch f {
	case FieldHeartRate:
		return v.HeartRate
	case FieldOxygenLevel:
		return v.OxygenLevel
	case FieldTemperature:
		return v.Temperature
	case FieldSystolicBP:
		return v.SystolicBP
	case FieldDiastolicBP:
		return v.DiastolicBP
	case FieldRespiratoryRate:
		return v.RespiratoryRate
	case FieldGlucose:
		return v.Glucose
	}
	return 0
}

// SetField sets the value of the named field.
func (v *Vitals) SetField(f VitalField, val float64) {
	switch f {
	case FieldHeartRate:
		v.HeartRate = val
	case FieldOxygenLevel:
		v.OxygenLevel = val
	case FieldTemperature:
		v.Temperature = val
	case FieldSystolicBP:
		v.SystolicBP = val
	case FieldDiastolicBP:
		v.DiastolicBP = val
	case FieldRespiratoryRate:
		v.RespiratoryRate = val
	case FieldGlucose:
		v.Glucose = val
	}
}

// EnvField identifies one generated environmental value.
type EnvField string

const (
	EnvTemperature EnvField = "temperature"
	EnvHumidity    EnvField = "humidity"
	EnvAirQuality  EnvField = "airQuality"
	EnvNoiseLevel  EnvField = "noiseLevel"
	EnvCO2Level    EnvField = "co2Level"
	EnvLightLevel  EnvField = "lightLevel"
	EnvPressure    EnvField = "pressure"
)

// EnvFields lists every environmental field in generation order.
var EnvFields = []EnvField{
	EnvTemperature,
	EnvHumidity,
	EnvAirQuality,
	EnvNoiseLevel,
	EnvCO2Level,
	EnvLightLevel,
	EnvPressure,
}

// EnvValues holds the continuous environmental values carried from tick to tick.
type EnvValues struct {
	Temperature float64
	Humidity    float64
	AirQuality  float64
	NoiseLevel  float64
	CO2Level    float64
	LightLevel  float64
	Pressure    float64
}

// Field returns the value of the named field.
func (v *EnvValues) Field(f EnvField) float64 {
	switch f {
	case EnvTemperature:
		return v.Temperature
	case EnvHumidity:
		return v.Humidity
	case EnvAirQuality:
		return v.AirQuality
	case EnvNoiseLevel:
		return v.NoiseLevel
	case EnvCO2Level:
		return v.CO2Level
	case EnvLightLevel:
		return v.LightLevel
	case EnvPressure:
		return v.Pressure
	}
	return 0
}

// SetField sets the value of the named field.
func (v *EnvValues) SetField(f EnvField, val float64) {
	switch f {
	case EnvTemperature:
		v.Temperature = val
	case EnvHumidity:
		v.Humidity = val
	case EnvAirQuality:
		v.AirQuality = val
	case EnvNoiseLevel:
		v.NoiseLevel = val
	case EnvCO2Level:
		v.CO2Level = val
	case EnvLightLevel:
		v.LightLevel = val
	case EnvPressure:
		v.Pressure = val
	}
}

// TrendState is the carried momentum of one field: a direction, a magnitude
// per tick, and how many ticks remain before the trend decays to neutral.
type TrendState struct {
	Direction int
	Magnitude float64
	Remaining int
}

// PatientProfile is the simulation state for one monitored bed. The mutable
// fields are owned by the device worker; the mutex is held by the worker for
// the duration of a tick and briefly by the registry during a reload merge.
type PatientProfile struct {
	mu sync.Mutex

	DeviceID    string
	PatientID   string
	Name        string
	Age         int
	Conditions  []string
	RiskFactors []string

	Medications    []string
	LastMedication time.Time

	Baseline     Vitals
	Current      Vitals
	CurrentState PatientState

	ActiveScenario      ScenarioKind
	ScenarioStart       time.Time
	ScenarioProgression float64

	Trends map[VitalField]*TrendState
}

// HasCondition reports whether the patient has the named condition.
func (p *PatientProfile) HasCondition(name string) bool {
	for _, c := range p.Conditions {
		if strings.EqualFold(c, name) {
			return true
		}
	}
	return false
}

// HasRiskFactor reports whether the patient carries the named risk factor.
func (p *PatientProfile) HasRiskFactor(name string) bool {
	for _, r := range p.RiskFactors {
		if r == name {
			return true
		}
	}
	return false
}

// EnvironmentalProfile is the simulation state for one room sensor.
type EnvironmentalProfile struct {
	mu sync.Mutex

	DeviceID string
	RoomID   string
	RoomType string

	Baseline EnvValues
	Current  EnvValues

	ActiveHazard      HazardKind
	HazardStart       time.Time
	HazardProgression float64

	Trends map[EnvField]*TrendState
}
