package simulation_test

import (
	"testing"

	"vitalsim/simulation"

	"github.com/stretchr/testify/require"
)

func TestVitalBaselineForAgeBands(t *testing.T) {
	child := simulation.VitalBaselineFor(10, nil)
	require.Equal(t, 90.0, child.HeartRate)
	require.Equal(t, 105.0, child.SystolicBP)
	require.Equal(t, 20.0, child.RespiratoryRate)

	adult := simulation.VitalBaselineFor(40, nil)
	require.Equal(t, 70.0, adult.HeartRate)
	require.Equal(t, 120.0, adult.SystolicBP)
	require.Equal(t, 16.0, adult.RespiratoryRate)

	elderly := simulation.VitalBaselineFor(72, nil)
	require.Equal(t, 75.0, elderly.HeartRate)
	require.Equal(t, 130.0, elderly.SystolicBP)
	require.Equal(t, 18.0, elderly.RespiratoryRate)

	// Shared defaults regardless of age
	for _, b := range []simulation.Vitals{child, adult, elderly} {
		require.Equal(t, 98.0, b.OxygenLevel)
		require.Equal(t, 37.0, b.Temperature)
		require.Equal(t, 100.0, b.Glucose)
	}
}

func TestVitalBaselineForConditionAdjustments(t *testing.T) {
	plain := simulation.VitalBaselineFor(40, nil)

	hyp := simulation.VitalBaselineFor(40, []string{"hypertension"})
	require.Equal(t, plain.SystolicBP+15, hyp.SystolicBP)
	require.Equal(t, plain.DiastolicBP+10, hyp.DiastolicBP)

	dia := simulation.VitalBaselineFor(40, []string{"diabetes"})
	require.Equal(t, plain.Glucose+30, dia.Glucose)

	copd := simulation.VitalBaselineFor(40, []string{"copd"})
	require.Equal(t, plain.OxygenLevel-6, copd.OxygenLevel)
	require.Equal(t, plain.RespiratoryRate+6, copd.RespiratoryRate)

	arr := simulation.VitalBaselineFor(40, []string{"cardiac_arrhythmia"})
	require.Equal(t, plain.HeartRate+15, arr.HeartRate)

	// Adjustments compose additively
	both := simulation.VitalBaselineFor(40, []string{"hypertension", "diabetes"})
	require.Equal(t, plain.SystolicBP+15, both.SystolicBP)
	require.Equal(t, plain.Glucose+30, both.Glucose)
}

func TestVitalBaselineForIsPure(t *testing.T) {
	a := simulation.VitalBaselineFor(55, []string{"asthma", "diabetes"})
	b := simulation.VitalBaselineFor(55, []string{"asthma", "diabetes"})
	require.Equal(t, a, b)
}

func TestRoomBaselineFor(t *testing.T) {
	icu := simulation.RoomBaselineFor("icu")
	er := simulation.RoomBaselineFor("emergency")
	require.Equal(t, icu, er)
	require.Equal(t, 22.0, icu.Temperature)

	iso := simulation.RoomBaselineFor("isolation")
	require.Equal(t, 98.0, iso.AirQuality)

	ward := simulation.RoomBaselineFor("general_ward")
	unknown := simulation.RoomBaselineFor("broom_closet")
	require.Equal(t, ward, unknown)
	require.Greater(t, ward.NoiseLevel, icu.NoiseLevel)
}

func TestRiskFactorsFor(t *testing.T) {
	factors := simulation.RiskFactorsFor(80, []string{"heart_disease", "diabetes"}, []string{"warfarin", "insulin glargine"})
	require.Contains(t, factors, simulation.RiskElderly)
	require.Contains(t, factors, simulation.RiskCardiac)
	require.Contains(t, factors, simulation.RiskDiabetic)
	require.Contains(t, factors, simulation.RiskBleeding)
	require.Contains(t, factors, simulation.RiskHypoglycemia)
	require.NotContains(t, factors, simulation.RiskPediatric)

	child := simulation.RiskFactorsFor(9, []string{"asthma"}, nil)
	require.Contains(t, child, simulation.RiskPediatric)
	require.Contains(t, child, simulation.RiskRespiratory)

	none := simulation.RiskFactorsFor(40, nil, nil)
	require.Empty(t, none)
}
