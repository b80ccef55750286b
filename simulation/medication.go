package simulation

import (
	"strings"
	"time"
)

type medicationEffect struct {
	duration    time.Duration
	multipliers map[VitalField]float64
}

// medicationEffects maps known drugs to their effect window and per-vital
// multipliers. Unknown medications are no-ops.
var medicationEffects = map[string]medicationEffect{
	"lisinopril": {
		duration: 480 * time.Minute,
		multipliers: map[VitalField]float64{
			FieldSystolicBP:  0.9,
			FieldDiastolicBP: 0.85,
		},
	},
	"metformin": {
		duration: 360 * time.Minute,
		multipliers: map[VitalField]float64{
			FieldGlucose: 0.8,
		},
	},
	"albuterol": {
		duration: 240 * time.Minute,
		multipliers: map[VitalField]float64{
			FieldOxygenLevel: 1.03,
			FieldHeartRate:   1.1,
		},
	},
	"digoxin": {
		duration: 1440 * time.Minute,
		multipliers: map[VitalField]float64{
			FieldHeartRate: 0.9,
		},
	},
}

// MedicationAdjustment returns the decayed multiplier for one medication and
// field at the given elapsed time since administration. The effect floors at
// 30% strength inside the window and is exactly neutral once elapsed reaches
// the drug's duration.
func MedicationAdjustment(medication string, field VitalField, elapsed time.Duration) float64 {
	effect, ok := medicationEffects[strings.ToLower(medication)]
	if !ok {
		return 1.0
	}
	if elapsed < 0 || elapsed >= effect.duration {
		return 1.0
	}
	multiplier, ok := effect.multipliers[field]
	if !ok {
		return 1.0
	}
	strength := 1 - elapsed.Minutes()/effect.duration.Minutes()
	if strength < 0.3 {
		strength = 0.3
	}
	return 1 + (multiplier-1)*strength
}

// ApplyMedications applies every active medication's decayed effect to the
// candidate vitals. Administration time is the patient's most recent
// medication start, matching how the record store tracks dosing.
func ApplyMedications(v *Vitals, p *PatientProfile, now time.Time) {
	elapsed := now.Sub(p.LastMedication)
	for _, med := range p.Medications {
		for _, f := range VitalFields {
			adj := MedicationAdjustment(med, f, elapsed)
			if adj != 1.0 {
				v.SetField(f, v.Field(f)*adj)
			}
		}
	}
}
