package simulation

import "math/rand"

// Hard physiological bounds. Clamping to these is a normal generation step,
// not an error path.
var vitalBounds = map[VitalField][2]float64{
	FieldHeartRate:       {30, 200},
	FieldOxygenLevel:     {70, 100},
	FieldTemperature:     {32, 42},
	FieldSystolicBP:      {60, 250},
	FieldDiastolicBP:     {40, 150},
	FieldRespiratoryRate: {8, 50},
	FieldGlucose:         {40, 600},
}

var envBounds = map[EnvField][2]float64{
	EnvTemperature: {18, 28},
	EnvHumidity:    {30, 70},
	EnvAirQuality:  {40, 100},
	EnvNoiseLevel:  {20, 80},
	EnvCO2Level:    {300, 800},
	EnvLightLevel:  {0, 100},
	EnvPressure:    {1010, 1020},
}

// Correlate applies cross-vital physiological coupling in a fixed order:
// fever drives heart rate, oxygen deficit drives compensatory tachycardia,
// heart-rate deviation scales blood pressure, and arrhythmic patients get
// occasional beat irregularity.
func Correlate(v *Vitals, p *PatientProfile, rng *rand.Rand) {
	tempDeviation := v.Temperature - 37.0
	v.HeartRate += tempDeviation * 8

	if v.OxygenLevel < 95 {
		v.HeartRate += (95 - v.OxygenLevel) * 2
	}

	if p.Baseline.HeartRate > 0 {
		hrDeviation := (v.HeartRate - p.Baseline.HeartRate) / p.Baseline.HeartRate
		v.SystolicBP += hrDeviation * 20
		v.DiastolicBP += hrDeviation * 10
	}

	if p.HasCondition("cardiac_arrhythmia") || p.HasCondition("arrhythmia") {
		if rng.Float64() < 0.3 {
			v.HeartRate += (rng.Float64() - 0.5) * 40
		}
	}
}

func clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

// ClampVitals forces every vital inside its hard physiological bound.
func ClampVitals(v *Vitals) {
	for _, f := range VitalFields {
		b := vitalBounds[f]
		v.SetField(f, clamp(v.Field(f), b[0], b[1]))
	}
}

// ClampEnv forces every environmental value inside its hard bound.
func ClampEnv(v *EnvValues) {
	for _, f := range EnvFields {
		b := envBounds[f]
		v.SetField(f, clamp(v.Field(f), b[0], b[1]))
	}
}
