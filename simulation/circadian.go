package simulation

import "math"

type circadianPattern struct {
	amplitude float64
	phase     float64 // hour of the daily peak
	baseline  float64
}

var circadianPatterns = map[VitalField]circadianPattern{
	FieldHeartRate:   {amplitude: 8, phase: 14, baseline: 1.0},
	FieldTemperature: {amplitude: 0.4, phase: 18, baseline: 1.0},
	FieldSystolicBP:  {amplitude: 12, phase: 10, baseline: 1.0},
	FieldDiastolicBP: {amplitude: 12, phase: 10, baseline: 1.0},
}

// CircadianModifier returns the time-of-day multiplier for a vital field.
// Fields without a defined daily pattern return 1.0.
func CircadianModifier(hour int, field VitalField) float64 {
	pattern, ok := circadianPatterns[field]
	if !ok {
		return 1.0
	}
	radians := (float64(hour) - pattern.phase) * math.Pi / 12
	return pattern.baseline + pattern.amplitude*math.Cos(radians)/100
}

// EnvDailyTarget shifts a room's reversion targets by hour of day: lights
// dimmed overnight, temperature peaking in the evening, noise and CO2
// rising with ward activity, air quality dipping with it, humidity moving
// inversely with temperature.
func EnvDailyTarget(baseline EnvValues, hour int) EnvValues {
	target := baseline

	// Evening temperature peak (17h), ~1.5°C swing
	tempShift := 1.5 * math.Cos((float64(hour)-17)*math.Pi/12)
	target.Temperature += tempShift
	target.Humidity -= tempShift * 2

	switch {
	case hour >= 22 || hour < 6:
		// Night shift: lights dimmed, ward quiet
		target.LightLevel = 20
		target.NoiseLevel -= 15
		target.CO2Level -= 30
		target.AirQuality += 3
	case hour < 8 || hour >= 20:
		// Shoulder hours around shift change
		target.LightLevel = 55
		target.NoiseLevel -= 5
	default:
		// Active hours: full lighting, more people in the room
		target.NoiseLevel += 5
		target.CO2Level += 40
		target.AirQuality -= 5
	}

	ClampEnv(&target)
	return target
}
