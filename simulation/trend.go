package simulation

import "math/rand"

type stateParams struct {
	volatility    float64
	trendStrength float64
}

var stateParamsByState = map[PatientState]stateParams{
	StateStable:        {volatility: 0.02, trendStrength: 0.1},
	StateRecovering:    {volatility: 0.05, trendStrength: 0.3},
	StateCritical:      {volatility: 0.1, trendStrength: 0.5},
	StateDeteriorating: {volatility: 0.08, trendStrength: 0.4},
	StateAtRisk:        {volatility: 0.04, trendStrength: 0.2},
}

// envTrendParams is the fixed walk profile for environmental fields; rooms
// have no clinical state driving their volatility.
var envTrendParams = stateParams{volatility: 0.02, trendStrength: 0.2}

// trendMagnitudes is the per-tick step size of a directional trend, roughly
// proportional to each vital's natural scale.
var trendMagnitudes = map[VitalField]float64{
	FieldHeartRate:       2,
	FieldOxygenLevel:     1,
	FieldTemperature:     0.2,
	FieldSystolicBP:      5,
	FieldDiastolicBP:     3,
	FieldRespiratoryRate: 1,
	FieldGlucose:         10,
}

var envTrendMagnitudes = map[EnvField]float64{
	EnvTemperature: 0.3,
	EnvHumidity:    1.5,
	EnvAirQuality:  1,
	EnvNoiseLevel:  2,
	EnvCO2Level:    15,
	EnvLightLevel:  4,
	EnvPressure:    0.1,
}

// SeedVitalTrends builds the initial trend map for a patient. A nonzero
// direction and duration is seeded where the clinical state implies momentum.
func SeedVitalTrends(state PatientState) map[VitalField]*TrendState {
	trends := make(map[VitalField]*TrendState, len(VitalFields))
	for _, f := range VitalFields {
		trends[f] = &TrendState{Magnitude: trendMagnitudes[f]}
	}
	switch state {
	case StateCritical:
		trends[FieldHeartRate].Direction = 1
		trends[FieldHeartRate].Remaining = 10
		trends[FieldOxygenLevel].Direction = -1
		trends[FieldOxygenLevel].Remaining = 8
		trends[FieldRespiratoryRate].Direction = 1
		trends[FieldRespiratoryRate].Remaining = 12
	case StateRecovering:
		trends[FieldOxygenLevel].Direction = 1
		trends[FieldOxygenLevel].Remaining = 5
		trends[FieldRespiratoryRate].Direction = -1
		trends[FieldRespiratoryRate].Remaining = 3
	case StateDeteriorating:
		trends[FieldTemperature].Direction = 1
		trends[FieldTemperature].Remaining = 8
		trends[FieldHeartRate].Direction = 1
		trends[FieldHeartRate].Remaining = 6
	}
	return trends
}

// SeedEnvTrends builds the neutral trend map for a room sensor.
func SeedEnvTrends() map[EnvField]*TrendState {
	trends := make(map[EnvField]*TrendState, len(EnvFields))
	for _, f := range EnvFields {
		trends[f] = &TrendState{Magnitude: envTrendMagnitudes[f]}
	}
	return trends
}

// stepTrend advances one field by one tick: directional trend while it has
// remaining duration, symmetric noise scaled by volatility and baseline, and
// mean reversion pulling 5% of the gap back toward baseline per tick.
func stepTrend(value, baseline float64, ts *TrendState, params stateParams, rng *rand.Rand) float64 {
	if ts.Remaining > 0 {
		value += float64(ts.Direction) * ts.Magnitude * params.trendStrength
		ts.Remaining--
		if ts.Remaining == 0 {
			ts.Direction = 0
		}
	}
	noise := (rng.Float64() - 0.5) * 2 * params.volatility * baseline
	value += noise
	value += (baseline - value) * 0.05
	return value
}

// StepVitalTrends advances every vital field of the profile by one tick.
// The baseline passed in is the reversion target, typically the patient
// baseline with the circadian modifier already applied. The caller must hold
// the profile lock.
func StepVitalTrends(p *PatientProfile, v *Vitals, baseline Vitals, rng *rand.Rand) {
	params, ok := stateParamsByState[p.CurrentState]
	if !ok {
		params = stateParamsByState[StateStable]
	}
	for _, f := range VitalFields {
		ts := p.Trends[f]
		if ts == nil {
			continue
		}
		v.SetField(f, stepTrend(v.Field(f), baseline.Field(f), ts, params, rng))
	}
}

// StepEnvTrends advances every environmental field of the profile by one tick.
// The target passed in is the reversion point, typically the room baseline
// shifted by hour of day (EnvDailyTarget). The caller must hold the profile
// lock.
func StepEnvTrends(p *EnvironmentalProfile, v *EnvValues, target EnvValues, rng *rand.Rand) {
	for _, f := range EnvFields {
		ts := p.Trends[f]
		if ts == nil {
			continue
		}
		v.SetField(f, stepTrend(v.Field(f), target.Field(f), ts, envTrendParams, rng))
	}
}
