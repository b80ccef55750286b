package simulation_test

import (
	"testing"

	"vitalsim/simulation"

	"github.com/stretchr/testify/require"
)

func TestCircadianModifierPeaksAtPhaseHour(t *testing.T) {
	// Heart rate pattern peaks at hour 14
	peak := simulation.CircadianModifier(14, simulation.FieldHeartRate)
	for hour := 0; hour < 24; hour++ {
		require.LessOrEqual(t, simulation.CircadianModifier(hour, simulation.FieldHeartRate), peak,
			"hour %d should not exceed peak", hour)
	}
	require.InDelta(t, 1.08, peak, 1e-9)

	// Trough 12 hours opposite the peak
	trough := simulation.CircadianModifier(2, simulation.FieldHeartRate)
	require.InDelta(t, 0.92, trough, 1e-9)
}

func TestCircadianModifierUndefinedFieldsAreNeutral(t *testing.T) {
	for hour := 0; hour < 24; hour++ {
		require.Equal(t, 1.0, simulation.CircadianModifier(hour, simulation.FieldOxygenLevel))
		require.Equal(t, 1.0, simulation.CircadianModifier(hour, simulation.FieldGlucose))
		require.Equal(t, 1.0, simulation.CircadianModifier(hour, simulation.FieldRespiratoryRate))
	}
}

func TestEnvDailyTargetLightCycle(t *testing.T) {
	baseline := simulation.RoomBaselineFor("icu")

	night := simulation.EnvDailyTarget(baseline, 3)
	day := simulation.EnvDailyTarget(baseline, 14)
	evening := simulation.EnvDailyTarget(baseline, 21)

	// Full lighting during the day, dimmed through shift change, near-dark
	// overnight
	require.Equal(t, baseline.LightLevel, day.LightLevel)
	require.Less(t, evening.LightLevel, day.LightLevel)
	require.Less(t, night.LightLevel, evening.LightLevel)
	require.LessOrEqual(t, night.LightLevel, 20.0)
}

func TestEnvDailyTargetActivityAndClimate(t *testing.T) {
	baseline := simulation.RoomBaselineFor("general_ward")

	night := simulation.EnvDailyTarget(baseline, 2)
	day := simulation.EnvDailyTarget(baseline, 14)

	// A quiet ward at night: less noise, less exhaled CO2, cleaner air
	require.Less(t, night.NoiseLevel, day.NoiseLevel)
	require.Less(t, night.CO2Level, day.CO2Level)
	require.Greater(t, night.AirQuality, day.AirQuality)

	// Temperature peaks in the evening; humidity moves against it
	evening := simulation.EnvDailyTarget(baseline, 17)
	morning := simulation.EnvDailyTarget(baseline, 5)
	require.Greater(t, evening.Temperature, morning.Temperature)
	require.Less(t, evening.Humidity, morning.Humidity)
}

func TestEnvDailyTargetStaysWithinBounds(t *testing.T) {
	for _, roomType := range []string{"icu", "emergency", "general_ward", "isolation"} {
		baseline := simulation.RoomBaselineFor(roomType)
		for hour := 0; hour < 24; hour++ {
			target := simulation.EnvDailyTarget(baseline, hour)
			clamped := target
			simulation.ClampEnv(&clamped)
			require.Equal(t, clamped, target, "room %s hour %d", roomType, hour)
		}
	}
}

func TestCircadianModifierStaysNearUnity(t *testing.T) {
	fields := []simulation.VitalField{
		simulation.FieldHeartRate,
		simulation.FieldTemperature,
		simulation.FieldSystolicBP,
		simulation.FieldDiastolicBP,
	}
	for _, f := range fields {
		for hour := 0; hour < 24; hour++ {
			mod := simulation.CircadianModifier(hour, f)
			require.Greater(t, mod, 0.85)
			require.Less(t, mod, 1.15)
		}
	}
}
