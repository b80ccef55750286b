package simulation

import "strings"

// VitalBaselineFor derives age- and condition-adjusted resting vitals.
// Pure: the same inputs always yield the same baseline.
func VitalBaselineFor(age int, conditions []string) Vitals {
	var b Vitals
	switch {
	case age < 18:
		b = Vitals{HeartRate: 90, SystolicBP: 105, DiastolicBP: 65, RespiratoryRate: 20}
	case age < 65:
		b = Vitals{HeartRate: 70, SystolicBP: 120, DiastolicBP: 80, RespiratoryRate: 16}
	default:
		b = Vitals{HeartRate: 75, SystolicBP: 130, DiastolicBP: 85, RespiratoryRate: 18}
	}
	b.OxygenLevel = 98
	b.Temperature = 37.0
	b.Glucose = 100

	// Condition adjustments compose additively.
	for _, raw := range conditions {
		switch strings.ToLower(raw) {
		case "hypertension":
			b.SystolicBP += 15
			b.DiastolicBP += 10
		case "diabetes":
			b.Glucose += 30
		case "copd":
			b.OxygenLevel -= 6
			b.RespiratoryRate += 6
		case "asthma":
			b.OxygenLevel -= 2
			b.RespiratoryRate += 2
		case "cardiac_arrhythmia":
			b.HeartRate += 15
		}
	}
	return b
}

// RoomBaselineFor derives resting room conditions per room type. Unknown
// room types fall back to general-ward conditions.
func RoomBaselineFor(roomType string) EnvValues {
	switch strings.ToLower(roomType) {
	case "icu", "emergency":
		return EnvValues{
			Temperature: 22.0,
			Humidity:    45,
			AirQuality:  95,
			NoiseLevel:  40,
			CO2Level:    400,
			LightLevel:  75,
			Pressure:    1013.25,
		}
	case "isolation":
		return EnvValues{
			Temperature: 23.0,
			Humidity:    50,
			AirQuality:  98,
			NoiseLevel:  30,
			CO2Level:    380,
			LightLevel:  70,
			Pressure:    1013.30,
		}
	default:
		return EnvValues{
			Temperature: 21.5,
			Humidity:    55,
			AirQuality:  92,
			NoiseLevel:  45,
			CO2Level:    420,
			LightLevel:  85,
			Pressure:    1013.15,
		}
	}
}

// Risk factor names derived from the patient record.
const (
	RiskElderly      = "elderly"
	RiskPediatric    = "pediatric"
	RiskCardiac      = "cardiac_risk"
	RiskDiabetic     = "diabetic_risk"
	RiskRespiratory  = "respiratory_risk"
	RiskRenal        = "renal_risk"
	RiskBleeding     = "bleeding_risk"
	RiskHypoglycemia = "hypoglycemia_risk"
)

// RiskFactorsFor derives risk factors from age, conditions and medications.
func RiskFactorsFor(age int, conditions []string, medications []string) []string {
	var factors []string
	if age > 65 {
		factors = append(factors, RiskElderly)
	}
	if age < 18 {
		factors = append(factors, RiskPediatric)
	}

	hasAny := func(names ...string) bool {
		for _, c := range conditions {
			lc := strings.ToLower(c)
			for _, n := range names {
				if strings.Contains(lc, n) {
					return true
				}
			}
		}
		return false
	}
	if hasAny("heart_disease", "cardiac", "hypertension") {
		factors = append(factors, RiskCardiac)
	}
	if hasAny("diabetes", "diabetic") {
		factors = append(factors, RiskDiabetic)
	}
	if hasAny("copd", "asthma", "respiratory") {
		factors = append(factors, RiskRespiratory)
	}
	if hasAny("kidney", "renal") {
		factors = append(factors, RiskRenal)
	}

	for _, m := range medications {
		lm := strings.ToLower(m)
		if strings.Contains(lm, "warfarin") || strings.Contains(lm, "heparin") {
			factors = append(factors, RiskBleeding)
			break
		}
	}
	for _, m := range medications {
		if strings.Contains(strings.ToLower(m), "insulin") {
			factors = append(factors, RiskHypoglycemia)
			break
		}
	}
	return factors
}
