package simulation

import (
	"math"
	"math/rand"
	"strings"
	"time"
)

// ScenarioKind names a time-bounded physiological deviation pattern.
type ScenarioKind string

const (
	ScenarioNone                  ScenarioKind = ""
	ScenarioCardiacStress         ScenarioKind = "cardiac_stress"
	ScenarioHypertensivePattern   ScenarioKind = "hypertensive_pattern"
	ScenarioHypotensiveEpisode    ScenarioKind = "hypotensive_episode"
	ScenarioRespiratoryCompromise ScenarioKind = "respiratory_compromise"
	ScenarioHypoxemia             ScenarioKind = "hypoxemia"
	ScenarioFeverProgression      ScenarioKind = "fever_progression"
	ScenarioHypoglycemicDip       ScenarioKind = "hypoglycemic_dip"
	ScenarioHyperglycemicRise     ScenarioKind = "hyperglycemic_rise"
	ScenarioArrhythmiaBurst       ScenarioKind = "arrhythmia_burst"
)

// HazardKind names the environmental analogue of a scenario.
type HazardKind string

const (
	HazardNone                  HazardKind = ""
	HazardTemperatureDrift      HazardKind = "temperature_drift"
	HazardHumidityExtreme       HazardKind = "humidity_extreme"
	HazardAirQualityDegradation HazardKind = "air_quality_degradation"
	HazardNoiseExcursion        HazardKind = "noise_excursion"
	HazardCO2Buildup            HazardKind = "co2_buildup"
	HazardLightingFailure       HazardKind = "lighting_failure"
)

// progressionWindow is how long a scenario takes to reach full effect.
const progressionWindow = 15 * time.Minute

// resolveChance is the per-tick probability that a fully progressed scenario
// or hazard resolves. Together with the 15-minute window it bounds the
// expected scenario duration without a hard timeout.
const resolveChance = 0.2

type scenarioSpec struct {
	kind      ScenarioKind
	baseProb  float64
	severity  string // alert type used when the scenario activates
	deltas    map[VitalField]float64
	label     string
	recommend []string
}

// scenarioSpecs is the closed scenario table. Onset sampling walks it in
// declaration order; the first kind whose Bernoulli sample succeeds wins,
// so the tie-break is this stable order rather than map iteration order.
var scenarioSpecs = []scenarioSpec{
	{
		kind:     ScenarioCardiacStress,
		baseProb: 0.02,
		severity: "critical",
		deltas: map[VitalField]float64{
			FieldHeartRate:  45,
			FieldSystolicBP: 25,
			FieldDiastolicBP: 12,
		},
		label:     "Cardiac stress pattern",
		recommend: []string{"Obtain 12-lead ECG", "Check electrolytes", "Consider cardiology consult", "Monitor continuously"},
	},
	{
		kind:     ScenarioHypertensivePattern,
		baseProb: 0.015,
		severity: "critical",
		deltas: map[VitalField]float64{
			FieldSystolicBP:  60,
			FieldDiastolicBP: 30,
			FieldHeartRate:   15,
		},
		label:     "Hypertensive pattern",
		recommend: []string{"Administer antihypertensive medication", "Neurological assessment", "Consider ICU transfer"},
	},
	{
		kind:     ScenarioHypotensiveEpisode,
		baseProb: 0.01,
		severity: "critical",
		deltas: map[VitalField]float64{
			FieldSystolicBP:  -45,
			FieldDiastolicBP: -22,
			FieldHeartRate:   30,
			FieldTemperature: -1.0,
		},
		label:     "Hypotensive episode",
		recommend: []string{"IV fluid resuscitation", "Vasopressor support", "Identify underlying cause"},
	},
	{
		kind:     ScenarioRespiratoryCompromise,
		baseProb: 0.025,
		severity: "warning",
		deltas: map[VitalField]float64{
			FieldRespiratoryRate: 14,
			FieldOxygenLevel:     -12,
			FieldHeartRate:       18,
		},
		label:     "Respiratory compromise",
		recommend: []string{"Administer oxygen", "Arterial blood gas analysis", "Chest X-ray"},
	},
	{
		kind:     ScenarioHypoxemia,
		baseProb: 0.02,
		severity: "critical",
		deltas: map[VitalField]float64{
			FieldOxygenLevel:     -15,
			FieldRespiratoryRate: 10,
			FieldHeartRate:       15,
		},
		label:     "Hypoxemia",
		recommend: []string{"High-flow oxygen therapy", "Arterial blood gas", "Identify underlying cause"},
	},
	{
		kind:     ScenarioFeverProgression,
		baseProb: 0.03,
		severity: "warning",
		deltas: map[VitalField]float64{
			FieldTemperature:     2.8,
			FieldHeartRate:       22,
			FieldRespiratoryRate: 5,
		},
		label:     "Fever progression",
		recommend: []string{"Antipyretic medication", "Blood cultures", "Infection workup", "Cooling measures"},
	},
	{
		kind:     ScenarioHypoglycemicDip,
		baseProb: 0.015,
		severity: "critical",
		deltas: map[VitalField]float64{
			FieldGlucose:     -55,
			FieldHeartRate:   18,
			FieldTemperature: -0.5,
		},
		label:     "Hypoglycemic dip",
		recommend: []string{"Immediate glucose administration", "Monitor closely", "Adjust medications"},
	},
	{
		kind:     ScenarioHyperglycemicRise,
		baseProb: 0.025,
		severity: "warning",
		deltas: map[VitalField]float64{
			FieldGlucose:         200,
			FieldHeartRate:       10,
			FieldRespiratoryRate: 4,
		},
		label:     "Hyperglycemic rise",
		recommend: []string{"Insulin therapy", "Check ketones", "IV fluids", "Monitor electrolytes"},
	},
	{
		kind:     ScenarioArrhythmiaBurst,
		baseProb: 0.02,
		severity: "warning",
		deltas: map[VitalField]float64{
			FieldHeartRate: 35,
		},
		label:     "Arrhythmia burst",
		recommend: []string{"12-lead ECG", "Check hemodynamic stability", "Consider rate control"},
	},
}

var cardiacScenarios = map[ScenarioKind]bool{
	ScenarioCardiacStress:       true,
	ScenarioHypertensivePattern: true,
	ScenarioArrhythmiaBurst:     true,
	ScenarioHypotensiveEpisode:  true,
}

var respiratoryScenarios = map[ScenarioKind]bool{
	ScenarioRespiratoryCompromise: true,
	ScenarioHypoxemia:             true,
}

// onsetProbability applies the patient's condition, risk-factor, age and
// state amplifiers to a scenario's base per-tick probability.
func onsetProbability(spec scenarioSpec, p *PatientProfile) float64 {
	prob := spec.baseProb

	if cardiacScenarios[spec.kind] {
		if p.HasCondition("heart_disease") || p.HasRiskFactor(RiskCardiac) {
			prob *= 3
		}
	}
	if spec.kind == ScenarioHypertensivePattern && p.HasCondition("hypertension") {
		prob *= 4
	}
	if p.HasCondition("diabetes") || p.HasRiskFactor(RiskDiabetic) {
		switch spec.kind {
		case ScenarioHyperglycemicRise:
			prob *= 5
		case ScenarioHypoglycemicDip:
			prob *= 3
		}
	}
	if p.HasCondition("copd") || p.HasCondition("asthma") || p.HasRiskFactor(RiskRespiratory) {
		switch spec.kind {
		case ScenarioRespiratoryCompromise:
			prob *= 4
		case ScenarioHypoxemia:
			prob *= 3
		}
	}
	if p.Age > 70 {
		prob *= 1.5
	}
	if p.Age < 18 {
		// Pediatric patients skew toward febrile and respiratory episodes.
		switch {
		case spec.kind == ScenarioFeverProgression || respiratoryScenarios[spec.kind]:
			prob *= 1.5
		case cardiacScenarios[spec.kind]:
			prob *= 0.3
		}
	}
	if p.CurrentState == StateCritical {
		prob *= 2
	}
	return prob
}

// hazardSpec mirrors scenarioSpec for room hazards.
type hazardSpec struct {
	kind     HazardKind
	baseProb float64
	severity string
	deltas   map[EnvField]float64
	label    string
}

var hazardSpecs = []hazardSpec{
	{
		kind:     HazardTemperatureDrift,
		baseProb: 0.01,
		severity: "warning",
		deltas:   map[EnvField]float64{EnvTemperature: 5},
		label:    "Room temperature drift",
	},
	{
		kind:     HazardHumidityExtreme,
		baseProb: 0.015,
		severity: "warning",
		deltas:   map[EnvField]float64{EnvHumidity: 20},
		label:    "Humidity excursion",
	},
	{
		kind:     HazardAirQualityDegradation,
		baseProb: 0.02,
		severity: "critical",
		deltas:   map[EnvField]float64{EnvAirQuality: -30, EnvCO2Level: 300},
		label:    "Air quality degradation",
	},
	{
		kind:     HazardNoiseExcursion,
		baseProb: 0.008,
		severity: "info",
		deltas:   map[EnvField]float64{EnvNoiseLevel: 25},
		label:    "Excessive noise",
	},
	{
		kind:     HazardCO2Buildup,
		baseProb: 0.01,
		severity: "warning",
		deltas:   map[EnvField]float64{EnvCO2Level: 350},
		label:    "CO2 buildup",
	},
	{
		kind:     HazardLightingFailure,
		baseProb: 0.005,
		severity: "warning",
		deltas:   map[EnvField]float64{EnvLightLevel: -60},
		label:    "Lighting failure",
	},
}

// hazardRoomMultiplier scales hazard likelihood by room type: ICU and ER are
// better monitored, general wards slightly worse.
func hazardRoomMultiplier(roomType string) float64 {
	switch strings.ToLower(roomType) {
	case "icu", "emergency":
		return 0.5
	case "general_ward", "general":
		return 1.2
	default:
		return 1.0
	}
}

// StepResult reports what the scenario engine did on one tick.
type StepResult struct {
	Vitals     Vitals
	Overridden bool
	Onset      ScenarioKind
	Resolved   ScenarioKind
}

// EnvStepResult is the room-hazard analogue of StepResult.
type EnvStepResult struct {
	Values     EnvValues
	Overridden bool
	Onset      HazardKind
	Resolved   HazardKind
}

// StepScenario advances the patient's scenario state machine by one tick.
// Without an active scenario it Bernoulli-samples each kind's amplified
// probability; while one is active it synthesizes scenario vitals from the
// baseline with progression-scaled, sine-modulated deltas; once fully
// progressed it rolls the per-tick resolution chance. At most one scenario
// is active per patient. The caller must hold the profile lock.
func StepScenario(p *PatientProfile, now time.Time, rng *rand.Rand) StepResult {
	var res StepResult

	if p.ActiveScenario == ScenarioNone {
		for _, spec := range scenarioSpecs {
			if rng.Float64() < onsetProbability(spec, p) {
				p.ActiveScenario = spec.kind
				p.ScenarioStart = now
				p.ScenarioProgression = 0
				res.Onset = spec.kind
				break
			}
		}
		if p.ActiveScenario == ScenarioNone {
			return res
		}
	}

	elapsed := now.Sub(p.ScenarioStart)
	progression := math.Min(1.0, elapsed.Minutes()/progressionWindow.Minutes())
	if progression > p.ScenarioProgression {
		p.ScenarioProgression = progression
	}

	if p.ScenarioProgression >= 1.0 && rng.Float64() < resolveChance {
		res.Resolved = p.ActiveScenario
		p.ActiveScenario = ScenarioNone
		p.ScenarioStart = time.Time{}
		p.ScenarioProgression = 0
		return res
	}

	spec := findScenarioSpec(p.ActiveScenario)
	res.Vitals = scenarioVitals(spec, p.Baseline, p.ScenarioProgression, elapsed)
	res.Overridden = true
	return res
}

func findScenarioSpec(kind ScenarioKind) scenarioSpec {
	for _, s := range scenarioSpecs {
		if s.kind == kind {
			return s
		}
	}
	return scenarioSpec{kind: kind}
}

// scenarioVitals builds the override vitals: baseline plus per-kind deltas
// scaled by progression and modulated by a slow sine wave, so the ramp is
// never a clean synthetic-looking monotone.
func scenarioVitals(spec scenarioSpec, baseline Vitals, progression float64, elapsed time.Duration) Vitals {
	v := baseline
	wave := math.Sin(elapsed.Seconds() * 0.2)
	for _, f := range VitalFields {
		delta, ok := spec.deltas[f]
		if !ok {
			continue
		}
		if spec.kind == ScenarioArrhythmiaBurst {
			// Arrhythmia swings in both directions instead of ramping.
			v.SetField(f, v.Field(f)+delta*progression*wave)
			continue
		}
		v.SetField(f, v.Field(f)+delta*progression*(0.8+0.2*wave))
	}
	return v
}

// StepHazard advances the room's hazard state machine by one tick, with the
// same onset/progression/resolution shape as patient scenarios at lower
// probability, scaled by room type.
func StepHazard(p *EnvironmentalProfile, now time.Time, rng *rand.Rand) EnvStepResult {
	var res EnvStepResult

	if p.ActiveHazard == HazardNone {
		mult := hazardRoomMultiplier(p.RoomType)
		for _, spec := range hazardSpecs {
			if rng.Float64() < spec.baseProb*mult {
				p.ActiveHazard = spec.kind
				p.HazardStart = now
				p.HazardProgression = 0
				res.Onset = spec.kind
				break
			}
		}
		if p.ActiveHazard == HazardNone {
			return res
		}
	}

	elapsed := now.Sub(p.HazardStart)
	progression := math.Min(1.0, elapsed.Minutes()/progressionWindow.Minutes())
	if progression > p.HazardProgression {
		p.HazardProgression = progression
	}

	if p.HazardProgression >= 1.0 && rng.Float64() < resolveChance {
		res.Resolved = p.ActiveHazard
		p.ActiveHazard = HazardNone
		p.HazardStart = time.Time{}
		p.HazardProgression = 0
		return res
	}

	spec := findHazardSpec(p.ActiveHazard)
	wave := math.Sin(elapsed.Seconds() * 0.2)
	v := p.Baseline
	for _, f := range EnvFields {
		delta, ok := spec.deltas[f]
		if !ok {
			continue
		}
		v.SetField(f, v.Field(f)+delta*p.HazardProgression*(0.8+0.2*wave))
	}
	res.Values = v
	res.Overridden = true
	return res
}

func findHazardSpec(kind HazardKind) hazardSpec {
	for _, s := range hazardSpecs {
		if s.kind == kind {
			return s
		}
	}
	return hazardSpec{kind: kind}
}

// ScenarioLabel returns the human-readable name used in alert messages.
func ScenarioLabel(kind ScenarioKind) string {
	return findScenarioSpec(kind).label
}

// ScenarioSeverity returns the alert type for a scenario kind.
func ScenarioSeverity(kind ScenarioKind) string {
	s := findScenarioSpec(kind).severity
	if s == "" {
		s = "warning"
	}
	return s
}

// ScenarioRecommendations returns the care recommendations attached to
// alerts for a scenario kind.
func ScenarioRecommendations(kind ScenarioKind) []string {
	rec := findScenarioSpec(kind).recommend
	if len(rec) == 0 {
		return []string{"Assess patient immediately", "Notify physician"}
	}
	return rec
}

// HazardLabel returns the human-readable name used in alert messages.
func HazardLabel(kind HazardKind) string {
	return findHazardSpec(kind).label
}

// HazardSeverity returns the alert type for a hazard kind.
func HazardSeverity(kind HazardKind) string {
	s := findHazardSpec(kind).severity
	if s == "" {
		s = "warning"
	}
	return s
}
