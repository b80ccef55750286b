package simulation

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"vitalsim/models"

	"go.uber.org/zap"
)

// ProfileSource is the read side of the external record store.
type ProfileSource interface {
	Devices(ctx context.Context) (map[string]models.DeviceInfo, error)
	Patient(ctx context.Context, patientID string) (*models.PatientRecord, error)
	Room(ctx context.Context, roomID string) (*models.RoomRecord, error)
}

// ProfileRegistry holds the simulation profile for every monitored device.
// The maps are read by every worker each tick and swapped wholesale by the
// periodic reload, so they are guarded by a readers-writer lock.
type ProfileRegistry struct {
	mu     sync.RWMutex
	source ProfileSource
	logger *zap.Logger
	rng    *rand.Rand

	patients map[string]*PatientProfile
	rooms    map[string]*EnvironmentalProfile
}

// NewProfileRegistry creates an empty registry backed by the given source.
func NewProfileRegistry(source ProfileSource, rng *rand.Rand, logger *zap.Logger) *ProfileRegistry {
	return &ProfileRegistry{
		source:   source,
		logger:   logger,
		rng:      rng,
		patients: make(map[string]*PatientProfile),
		rooms:    make(map[string]*EnvironmentalProfile),
	}
}

// Load fetches the device list and builds one profile per vitals monitor
// with an assigned patient and one per environmental sensor with a resolvable
// room. Reload semantics: a device whose patient assignment is unchanged
// keeps its live profile (scenario, progression and trend state survive);
// a changed assignment replaces the profile wholesale; a device with no
// resolvable patient or room is skipped and logged, never fatal.
func (r *ProfileRegistry) Load(ctx context.Context) error {
	devices, err := r.source.Devices(ctx)
	if err != nil {
		return fmt.Errorf("failed to list devices: %w", err)
	}

	patients := make(map[string]*PatientProfile)
	rooms := make(map[string]*EnvironmentalProfile)

	for deviceID, info := range devices {
		switch info.Type {
		case models.DeviceTypeVitalsMonitor:
			if info.CurrentPatientID == "" {
				r.logger.Debug("Monitor has no assigned patient, skipping",
					zap.String("device_id", deviceID))
				continue
			}
			profile, err := r.buildPatientProfile(ctx, deviceID, info)
			if err != nil {
				r.logger.Warn("Skipping monitor for this reload cycle",
					zap.String("device_id", deviceID),
					zap.String("patient_id", info.CurrentPatientID),
					zap.Error(err))
				continue
			}
			patients[deviceID] = profile

		case models.DeviceTypeEnvironmentalSensor:
			if info.RoomID == "" {
				r.logger.Warn("Environmental sensor has no room, skipping",
					zap.String("device_id", deviceID))
				continue
			}
			profile, err := r.buildEnvironmentalProfile(ctx, deviceID, info)
			if err != nil {
				r.logger.Warn("Skipping sensor for this reload cycle",
					zap.String("device_id", deviceID),
					zap.String("room_id", info.RoomID),
					zap.Error(err))
				continue
			}
			rooms[deviceID] = profile
		}
	}

	r.mu.Lock()
	r.patients = patients
	r.rooms = rooms
	r.mu.Unlock()

	r.logger.Info("Profile registry loaded",
		zap.Int("monitors", len(patients)),
		zap.Int("sensors", len(rooms)))
	return nil
}

// Reload refreshes the registry from the source with the merge semantics
// described on Load. It is what the engine's periodic reload calls; the two
// operations share one implementation so a reload can never diverge from the
// initial load.
func (r *ProfileRegistry) Reload(ctx context.Context) error {
	return r.Load(ctx)
}

func (r *ProfileRegistry) buildPatientProfile(ctx context.Context, deviceID string, info models.DeviceInfo) (*PatientProfile, error) {
	record, err := r.source.Patient(ctx, info.CurrentPatientID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve patient: %w", err)
	}

	age := record.PersonalInfo.Age
	conditions := record.MedicalHistory.Conditions
	medications := make([]string, 0, len(record.MedicalHistory.Medications))
	for _, m := range record.MedicalHistory.Medications {
		medications = append(medications, m.Name)
	}
	state := ParsePatientState(record.CurrentStatus.Status)
	baseline := VitalBaselineFor(age, conditions)

	// Unchanged assignment: keep the live profile so in-flight scenario and
	// trend state survive the reload; only the static fields are refreshed.
	r.mu.RLock()
	existing := r.patients[deviceID]
	r.mu.RUnlock()
	if existing != nil && existing.PatientID == info.CurrentPatientID {
		existing.mu.Lock()
		stateChanged := existing.CurrentState != state
		existing.Name = record.PersonalInfo.Name
		existing.Age = age
		existing.Conditions = conditions
		existing.Medications = medications
		existing.LastMedication = lastMedicationTime(record.MedicalHistory.Medications)
		existing.RiskFactors = RiskFactorsFor(age, conditions, medications)
		existing.Baseline = baseline
		existing.CurrentState = state
		if stateChanged {
			existing.Trends = SeedVitalTrends(state)
		}
		existing.mu.Unlock()
		return existing, nil
	}

	profile := &PatientProfile{
		DeviceID:       deviceID,
		PatientID:      info.CurrentPatientID,
		Name:           record.PersonalInfo.Name,
		Age:            age,
		Conditions:     conditions,
		Medications:    medications,
		LastMedication: lastMedicationTime(record.MedicalHistory.Medications),
		RiskFactors:    RiskFactorsFor(age, conditions, medications),
		Baseline:       baseline,
		Current:        r.jitterVitals(baseline),
		CurrentState:   state,
		Trends:         SeedVitalTrends(state),
	}
	return profile, nil
}

func (r *ProfileRegistry) buildEnvironmentalProfile(ctx context.Context, deviceID string, info models.DeviceInfo) (*EnvironmentalProfile, error) {
	roomType := info.RoomType
	if roomType == "" {
		record, err := r.source.Room(ctx, info.RoomID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve room: %w", err)
		}
		roomType = record.RoomType
	}
	baseline := RoomBaselineFor(roomType)

	r.mu.RLock()
	existing := r.rooms[deviceID]
	r.mu.RUnlock()
	if existing != nil && existing.RoomID == info.RoomID {
		existing.mu.Lock()
		existing.RoomType = roomType
		existing.Baseline = baseline
		existing.mu.Unlock()
		return existing, nil
	}

	profile := &EnvironmentalProfile{
		DeviceID: deviceID,
		RoomID:   info.RoomID,
		RoomType: roomType,
		Baseline: baseline,
		Current:  r.jitterEnv(baseline),
		Trends:   SeedEnvTrends(),
	}
	return profile, nil
}

// jitterVitals offsets a fresh profile's starting point so new devices do
// not all begin exactly at baseline.
func (r *ProfileRegistry) jitterVitals(b Vitals) Vitals {
	b.HeartRate += (r.rng.Float64() - 0.5) * 10
	b.OxygenLevel += (r.rng.Float64() - 0.5) * 2
	b.Temperature += (r.rng.Float64() - 0.5) * 0.6
	b.SystolicBP += (r.rng.Float64() - 0.5) * 20
	b.DiastolicBP += (r.rng.Float64() - 0.5) * 10
	b.RespiratoryRate += (r.rng.Float64() - 0.5) * 4
	b.Glucose += (r.rng.Float64() - 0.5) * 30
	ClampVitals(&b)
	return b
}

func (r *ProfileRegistry) jitterEnv(b EnvValues) EnvValues {
	b.Temperature += (r.rng.Float64() - 0.5) * 2
	b.Humidity += (r.rng.Float64() - 0.5) * 10
	b.AirQuality += (r.rng.Float64() - 0.5) * 6
	b.NoiseLevel += (r.rng.Float64() - 0.5) * 10
	b.CO2Level += (r.rng.Float64() - 0.5) * 40
	b.LightLevel += (r.rng.Float64() - 0.5) * 20
	b.Pressure += (r.rng.Float64() - 0.5) * 1
	ClampEnv(&b)
	return b
}

// lastMedicationTime picks the most recent medication start date, defaulting
// to six hours ago when the record carries none.
func lastMedicationTime(meds []models.Medication) time.Time {
	latest := time.Now().Add(-6 * time.Hour)
	for _, m := range meds {
		if m.StartDate == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, m.StartDate)
		if err != nil {
			continue
		}
		if t.After(latest) {
			latest = t
		}
	}
	return latest
}

// Patient returns the profile owned by the given monitor, if any.
func (r *ProfileRegistry) Patient(deviceID string) (*PatientProfile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.patients[deviceID]
	return p, ok
}

// Environmental returns the profile owned by the given sensor, if any.
func (r *ProfileRegistry) Environmental(deviceID string) (*EnvironmentalProfile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.rooms[deviceID]
	return p, ok
}

// DeviceIDs returns the known monitor and sensor device ids.
func (r *ProfileRegistry) DeviceIDs() (monitors, sensors []string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id := range r.patients {
		monitors = append(monitors, id)
	}
	for id := range r.rooms {
		sensors = append(sensors, id)
	}
	return monitors, sensors
}
