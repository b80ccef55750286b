package simulation_test

import (
	"math/rand"
	"testing"

	"vitalsim/simulation"

	"github.com/stretchr/testify/require"
)

func TestSeedVitalTrendsCoversEveryField(t *testing.T) {
	trends := simulation.SeedVitalTrends(simulation.StateStable)
	for _, f := range simulation.VitalFields {
		require.NotNil(t, trends[f], "missing trend for %s", f)
		require.Equal(t, 0, trends[f].Direction, "stable patients start without momentum")
	}
}

func TestSeedVitalTrendsCriticalMomentum(t *testing.T) {
	trends := simulation.SeedVitalTrends(simulation.StateCritical)
	require.Equal(t, 1, trends[simulation.FieldHeartRate].Direction)
	require.Equal(t, -1, trends[simulation.FieldOxygenLevel].Direction)
	require.Equal(t, 1, trends[simulation.FieldRespiratoryRate].Direction)
	require.Positive(t, trends[simulation.FieldHeartRate].Remaining)
}

func TestSeedVitalTrendsRecoveringMomentum(t *testing.T) {
	trends := simulation.SeedVitalTrends(simulation.StateRecovering)
	require.Equal(t, 1, trends[simulation.FieldOxygenLevel].Direction)
	require.Equal(t, -1, trends[simulation.FieldRespiratoryRate].Direction)
}

func TestStepVitalTrendsDirectionalTrendDecays(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	baseline := simulation.VitalBaselineFor(40, nil)
	p := &simulation.PatientProfile{
		Baseline:     baseline,
		CurrentState: simulation.StateCritical,
		Trends:       simulation.SeedVitalTrends(simulation.StateCritical),
	}

	remaining := p.Trends[simulation.FieldHeartRate].Remaining
	v := baseline
	for i := 0; i < remaining; i++ {
		simulation.StepVitalTrends(p, &v, baseline, rng)
	}

	// Momentum is spent: direction reset, remaining exhausted
	require.Equal(t, 0, p.Trends[simulation.FieldHeartRate].Remaining)
	require.Equal(t, 0, p.Trends[simulation.FieldHeartRate].Direction)
}

func TestStepVitalTrendsMeanReversion(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	baseline := simulation.VitalBaselineFor(40, nil)
	p := &simulation.PatientProfile{
		Baseline:     baseline,
		CurrentState: simulation.StateStable,
		Trends:       simulation.SeedVitalTrends(simulation.StateStable),
	}

	// Start far above baseline; with stable-state volatility the reversion
	// term dominates and the value walks back toward baseline.
	v := baseline
	v.HeartRate = baseline.HeartRate + 60
	start := v.HeartRate
	for i := 0; i < 100; i++ {
		simulation.StepVitalTrends(p, &v, baseline, rng)
	}

	require.Less(t, v.HeartRate, start)
	require.InDelta(t, baseline.HeartRate, v.HeartRate, 15)
}

func TestSeedEnvTrendsNeutral(t *testing.T) {
	trends := simulation.SeedEnvTrends()
	for _, f := range simulation.EnvFields {
		require.NotNil(t, trends[f], "missing trend for %s", f)
		require.Equal(t, 0, trends[f].Direction)
		require.Positive(t, trends[f].Magnitude)
	}
}

func TestStepEnvTrendsStaysNearBaseline(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	baseline := simulation.RoomBaselineFor("icu")
	p := &simulation.EnvironmentalProfile{
		RoomType: "icu",
		Baseline: baseline,
		Trends:   simulation.SeedEnvTrends(),
	}

	v := baseline
	for i := 0; i < 500; i++ {
		simulation.StepEnvTrends(p, &v, baseline, rng)
	}

	// The random walk is tightly bound by reversion; a quiet ICU room
	// should never drift into a different climate.
	require.InDelta(t, baseline.Temperature, v.Temperature, 3)
	require.InDelta(t, baseline.CO2Level, v.CO2Level, 100)
}

func TestStepEnvTrendsDayNightLightSeparation(t *testing.T) {
	run := func(hour int, seed int64) float64 {
		rng := rand.New(rand.NewSource(seed))
		baseline := simulation.RoomBaselineFor("icu")
		p := &simulation.EnvironmentalProfile{
			RoomType: "icu",
			Baseline: baseline,
			Trends:   simulation.SeedEnvTrends(),
		}
		target := simulation.EnvDailyTarget(baseline, hour)

		v := baseline
		sum, n := 0.0, 0
		for i := 0; i < 300; i++ {
			simulation.StepEnvTrends(p, &v, target, rng)
			if i >= 100 { // skip the reversion ramp
				sum += v.LightLevel
				n++
			}
		}
		return sum / float64(n)
	}

	night := run(3, 19)
	day := run(14, 19)

	// Lights are dimmed overnight: a 3am ICU reads far darker than 2pm.
	require.Less(t, night, 30.0)
	require.Greater(t, day, 60.0)
	require.Less(t, night, day-30)
}
