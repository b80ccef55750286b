package simulation_test

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"vitalsim/models"
	"vitalsim/simulation"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSource struct {
	devices    map[string]models.DeviceInfo
	patients   map[string]*models.PatientRecord
	rooms      map[string]*models.RoomRecord
	devicesErr error
}

func (f *fakeSource) Devices(ctx context.Context) (map[string]models.DeviceInfo, error) {
	if f.devicesErr != nil {
		return nil, f.devicesErr
	}
	return f.devices, nil
}

func (f *fakeSource) Patient(ctx context.Context, patientID string) (*models.PatientRecord, error) {
	p, ok := f.patients[patientID]
	if !ok {
		return nil, fmt.Errorf("patient %s not found", patientID)
	}
	return p, nil
}

func (f *fakeSource) Room(ctx context.Context, roomID string) (*models.RoomRecord, error) {
	r, ok := f.rooms[roomID]
	if !ok {
		return nil, fmt.Errorf("room %s not found", roomID)
	}
	return r, nil
}

func patientRecord(name string, age int, status string, conditions ...string) *models.PatientRecord {
	var rec models.PatientRecord
	rec.PersonalInfo.Name = name
	rec.PersonalInfo.Age = age
	rec.MedicalHistory.Conditions = conditions
	rec.CurrentStatus.Status = status
	return &rec
}

func newTestRegistry(src *fakeSource) *simulation.ProfileRegistry {
	return simulation.NewProfileRegistry(src, rand.New(rand.NewSource(1)), zap.NewNop())
}

func TestRegistryLoadBuildsProfiles(t *testing.T) {
	src := &fakeSource{
		devices: map[string]models.DeviceInfo{
			"monitor-1": {Type: models.DeviceTypeVitalsMonitor, CurrentPatientID: "p1", RoomID: "r1"},
			"sensor-1":  {Type: models.DeviceTypeEnvironmentalSensor, RoomID: "r1"},
		},
		patients: map[string]*models.PatientRecord{
			"p1": patientRecord("Ada", 70, "stable", "hypertension"),
		},
		rooms: map[string]*models.RoomRecord{
			"r1": {RoomType: "icu"},
		},
	}
	reg := newTestRegistry(src)

	require.NoError(t, reg.Load(context.Background()))

	p, ok := reg.Patient("monitor-1")
	require.True(t, ok)
	require.Equal(t, "p1", p.PatientID)
	require.Equal(t, "Ada", p.Name)
	require.Equal(t, simulation.StateStable, p.CurrentState)
	require.Equal(t, simulation.VitalBaselineFor(70, []string{"hypertension"}), p.Baseline)
	require.NotNil(t, p.Trends[simulation.FieldHeartRate])

	e, ok := reg.Environmental("sensor-1")
	require.True(t, ok)
	require.Equal(t, "icu", e.RoomType)
	require.Equal(t, simulation.RoomBaselineFor("icu"), e.Baseline)

	monitors, sensors := reg.DeviceIDs()
	require.Len(t, monitors, 1)
	require.Len(t, sensors, 1)
}

func TestRegistryLoadSkipsUnresolvableDevices(t *testing.T) {
	src := &fakeSource{
		devices: map[string]models.DeviceInfo{
			"monitor-unassigned": {Type: models.DeviceTypeVitalsMonitor},                            // no patient
			"monitor-missing":    {Type: models.DeviceTypeVitalsMonitor, CurrentPatientID: "ghost"}, // record missing
			"sensor-noroom":      {Type: models.DeviceTypeEnvironmentalSensor},                      // no room
			"pump-1":             {Type: "infusion_pump"},                                           // unknown type
			"monitor-ok":         {Type: models.DeviceTypeVitalsMonitor, CurrentPatientID: "p1"},
		},
		patients: map[string]*models.PatientRecord{
			"p1": patientRecord("Bo", 40, "stable"),
		},
	}
	reg := newTestRegistry(src)

	require.NoError(t, reg.Load(context.Background()))

	monitors, sensors := reg.DeviceIDs()
	require.Equal(t, []string{"monitor-ok"}, monitors)
	require.Empty(t, sensors)
}

func TestRegistryReloadKeepsLiveProfileForUnchangedAssignment(t *testing.T) {
	src := &fakeSource{
		devices: map[string]models.DeviceInfo{
			"monitor-1": {Type: models.DeviceTypeVitalsMonitor, CurrentPatientID: "p1"},
		},
		patients: map[string]*models.PatientRecord{
			"p1": patientRecord("Ada", 70, "stable"),
		},
	}
	reg := newTestRegistry(src)
	require.NoError(t, reg.Load(context.Background()))

	before, _ := reg.Patient("monitor-1")
	before.ActiveScenario = simulation.ScenarioFeverProgression
	before.ScenarioStart = time.Now()
	before.ScenarioProgression = 0.5

	// Same assignment, record fields changed
	src.patients["p1"] = patientRecord("Ada Lovelace", 71, "stable", "diabetes")
	require.NoError(t, reg.Reload(context.Background()))

	after, _ := reg.Patient("monitor-1")
	require.Same(t, before, after, "unchanged assignment keeps the live profile")
	require.Equal(t, simulation.ScenarioFeverProgression, after.ActiveScenario)
	require.Equal(t, 0.5, after.ScenarioProgression)
	// Static fields refreshed from the record
	require.Equal(t, "Ada Lovelace", after.Name)
	require.Equal(t, 71, after.Age)
	require.Contains(t, after.Conditions, "diabetes")
}

func TestRegistryReloadReseedsTrendsOnStateChange(t *testing.T) {
	src := &fakeSource{
		devices: map[string]models.DeviceInfo{
			"monitor-1": {Type: models.DeviceTypeVitalsMonitor, CurrentPatientID: "p1"},
		},
		patients: map[string]*models.PatientRecord{
			"p1": patientRecord("Ada", 70, "stable"),
		},
	}
	reg := newTestRegistry(src)
	require.NoError(t, reg.Load(context.Background()))

	src.patients["p1"] = patientRecord("Ada", 70, "critical")
	require.NoError(t, reg.Reload(context.Background()))

	p, _ := reg.Patient("monitor-1")
	require.Equal(t, simulation.StateCritical, p.CurrentState)
	require.Equal(t, 1, p.Trends[simulation.FieldHeartRate].Direction)
}

func TestRegistryReloadReplacesProfileOnReassignment(t *testing.T) {
	src := &fakeSource{
		devices: map[string]models.DeviceInfo{
			"monitor-1": {Type: models.DeviceTypeVitalsMonitor, CurrentPatientID: "p1"},
		},
		patients: map[string]*models.PatientRecord{
			"p1": patientRecord("Ada", 70, "stable"),
			"p2": patientRecord("Bo", 30, "recovering"),
		},
	}
	reg := newTestRegistry(src)
	require.NoError(t, reg.Load(context.Background()))

	before, _ := reg.Patient("monitor-1")
	before.ActiveScenario = simulation.ScenarioHypoxemia

	src.devices["monitor-1"] = models.DeviceInfo{Type: models.DeviceTypeVitalsMonitor, CurrentPatientID: "p2"}
	require.NoError(t, reg.Reload(context.Background()))

	after, _ := reg.Patient("monitor-1")
	require.NotSame(t, before, after, "reassignment builds a fresh profile")
	require.Equal(t, "p2", after.PatientID)
	require.Equal(t, simulation.ScenarioNone, after.ActiveScenario)
	require.Equal(t, simulation.StateRecovering, after.CurrentState)
}

func TestRegistryLoadErrorIsFatalForTheCycle(t *testing.T) {
	src := &fakeSource{devicesErr: fmt.Errorf("connection refused")}
	reg := newTestRegistry(src)

	err := reg.Load(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to list devices")
}
