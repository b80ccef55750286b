package simulation_test

import (
	"math/rand"
	"testing"

	"vitalsim/simulation"

	"github.com/stretchr/testify/require"
)

func baselineProfile(age int, conditions ...string) *simulation.PatientProfile {
	return &simulation.PatientProfile{
		Age:        age,
		Conditions: conditions,
		Baseline:   simulation.VitalBaselineFor(age, conditions),
	}
}

func TestCorrelateFeverRaisesHeartRate(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	p := baselineProfile(40)

	v := p.Baseline
	v.Temperature = 39.0 // +2 above normothermic
	hrBefore := v.HeartRate
	simulation.Correlate(&v, p, rng)

	// +8 bpm per degree of fever
	require.InDelta(t, hrBefore+16, v.HeartRate, 1e-9)
}

func TestCorrelateHypoxiaCompensation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	p := baselineProfile(40)

	v := p.Baseline
	v.OxygenLevel = 90.0
	hrBefore := v.HeartRate
	simulation.Correlate(&v, p, rng)

	// +2 bpm per point of SpO2 below 95
	require.InDelta(t, hrBefore+10, v.HeartRate, 1e-9)
}

func TestCorrelateHeartRateDrivesBloodPressure(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	p := baselineProfile(40)

	v := p.Baseline
	v.HeartRate = p.Baseline.HeartRate * 1.5 // 50% above resting
	sysBefore, diaBefore := v.SystolicBP, v.DiastolicBP
	simulation.Correlate(&v, p, rng)

	require.InDelta(t, sysBefore+10, v.SystolicBP, 1e-9) // 0.5 * 20
	require.InDelta(t, diaBefore+5, v.DiastolicBP, 1e-9) // 0.5 * 10
}

func TestCorrelateWithoutArrhythmiaIsDeterministic(t *testing.T) {
	p := baselineProfile(40, "hypertension")

	v1 := p.Baseline
	v2 := p.Baseline
	simulation.Correlate(&v1, p, rand.New(rand.NewSource(1)))
	simulation.Correlate(&v2, p, rand.New(rand.NewSource(999)))

	// Without an arrhythmia condition the correlation step draws no
	// random numbers, so any seed produces identical output.
	require.Equal(t, v1, v2)
}

func TestCorrelateArrhythmiaJitter(t *testing.T) {
	p := baselineProfile(60, "cardiac_arrhythmia")

	jittered := 0
	for seed := int64(0); seed < 200; seed++ {
		v := p.Baseline
		simulation.Correlate(&v, p, rand.New(rand.NewSource(seed)))
		if v.HeartRate != p.Baseline.HeartRate {
			jittered++
		}
	}

	// Beat irregularity fires on roughly 30% of ticks
	require.Greater(t, jittered, 30)
	require.Less(t, jittered, 120)
}

func TestClampVitalsEnforcesBounds(t *testing.T) {
	v := simulation.Vitals{
		HeartRate:       500,
		OxygenLevel:     120,
		Temperature:     20,
		SystolicBP:      300,
		DiastolicBP:     10,
		RespiratoryRate: 2,
		Glucose:         1000,
	}
	simulation.ClampVitals(&v)

	require.Equal(t, 200.0, v.HeartRate)
	require.Equal(t, 100.0, v.OxygenLevel)
	require.Equal(t, 32.0, v.Temperature)
	require.Equal(t, 250.0, v.SystolicBP)
	require.Equal(t, 40.0, v.DiastolicBP)
	require.Equal(t, 8.0, v.RespiratoryRate)
	require.Equal(t, 600.0, v.Glucose)
}

func TestClampEnvEnforcesBounds(t *testing.T) {
	v := simulation.EnvValues{
		Temperature: 40,
		Humidity:    5,
		AirQuality:  150,
		NoiseLevel:  200,
		CO2Level:    10000,
		LightLevel:  -50,
		Pressure:    900,
	}
	simulation.ClampEnv(&v)

	require.Equal(t, 28.0, v.Temperature)
	require.Equal(t, 30.0, v.Humidity)
	require.Equal(t, 100.0, v.AirQuality)
	require.Equal(t, 80.0, v.NoiseLevel)
	require.Equal(t, 800.0, v.CO2Level)
	require.Equal(t, 0.0, v.LightLevel)
	require.Equal(t, 1010.0, v.Pressure)
}
