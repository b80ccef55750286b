package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"vitalsim/config"
	"vitalsim/models"
	"vitalsim/services"

	"go.uber.org/zap"
)

var (
	patientCount = flag.Int("patients", 6, "Number of demo patients to seed")
	wipeAlerts   = flag.Bool("wipe-alerts", false, "Clear the alerts node before seeding")
)

type demoPatient struct {
	id         string
	name       string
	age        int
	conditions []string
	meds       []models.Medication
	status     string
	roomType   string
}

// demoPatients is a fixed demo roster covering every clinical state and the
// condition mix the scenario engine reacts to.
var demoPatients = []demoPatient{
	{
		id: "patient-001", name: "Margaret Chen", age: 74,
		conditions: []string{"hypertension", "diabetes"},
		meds: []models.Medication{
			{Name: "lisinopril", Dosage: "10mg"},
			{Name: "metformin", Dosage: "500mg"},
		},
		status: "stable", roomType: "general_ward",
	},
	{
		id: "patient-002", name: "James Okafor", age: 58,
		conditions: []string{"heart_disease", "cardiac_arrhythmia"},
		meds: []models.Medication{
			{Name: "digoxin", Dosage: "0.25mg"},
		},
		status: "at_risk", roomType: "icu",
	},
	{
		id: "patient-003", name: "Sofia Martinez", age: 12,
		conditions: []string{"asthma"},
		meds: []models.Medication{
			{Name: "albuterol", Dosage: "90mcg"},
		},
		status: "recovering", roomType: "general_ward",
	},
	{
		id: "patient-004", name: "Robert Kowalski", age: 81,
		conditions: []string{"copd", "hypertension"},
		meds: []models.Medication{
			{Name: "albuterol", Dosage: "90mcg"},
			{Name: "lisinopril", Dosage: "20mg"},
		},
		status: "deteriorating", roomType: "icu",
	},
	{
		id: "patient-005", name: "Aisha Rahman", age: 45,
		conditions: []string{"diabetes"},
		meds: []models.Medication{
			{Name: "metformin", Dosage: "850mg"},
		},
		status: "stable", roomType: "general_ward",
	},
	{
		id: "patient-006", name: "David Lindqvist", age: 67,
		conditions: []string{"heart_disease"},
		meds:       []models.Medication{},
		status:     "critical", roomType: "emergency",
	},
}

func main() {
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	firebaseService, err := services.NewFirebaseService(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize Firebase service", zap.Error(err))
	}
	defer firebaseService.Close()

	ctx := context.Background()
	now := time.Now()

	if *wipeAlerts {
		if err := firebaseService.SeedRecord(ctx, "alerts", map[string]interface{}{}); err != nil {
			logger.Fatal("Failed to clear alerts", zap.Error(err))
		}
		logger.Info("Cleared alerts node")
	}

	count := *patientCount
	if count > len(demoPatients) {
		count = len(demoPatients)
	}

	for i := 0; i < count; i++ {
		p := demoPatients[i]
		roomID := fmt.Sprintf("room-%03d", i+1)
		monitorID := fmt.Sprintf("monitor-%03d", i+1)
		sensorID := fmt.Sprintf("envsensor-%03d", i+1)

		var record models.PatientRecord
		record.PersonalInfo.Name = p.name
		record.PersonalInfo.Age = p.age
		record.MedicalHistory.Conditions = p.conditions
		record.MedicalHistory.Medications = p.meds
		for j := range record.MedicalHistory.Medications {
			record.MedicalHistory.Medications[j].StartDate = now.Add(-2 * time.Hour).Format(time.RFC3339)
		}
		record.CurrentStatus.Status = p.status

		if err := firebaseService.SeedRecord(ctx, fmt.Sprintf("patients/%s", p.id), record); err != nil {
			logger.Fatal("Failed to seed patient", zap.String("patient_id", p.id), zap.Error(err))
		}

		room := models.RoomRecord{RoomType: p.roomType}
		if err := firebaseService.SeedRecord(ctx, fmt.Sprintf("rooms/%s", roomID), room); err != nil {
			logger.Fatal("Failed to seed room", zap.String("room_id", roomID), zap.Error(err))
		}

		monitor := models.DeviceInfo{
			Type:             models.DeviceTypeVitalsMonitor,
			CurrentPatientID: p.id,
			RoomID:           roomID,
			RoomType:         p.roomType,
			BedID:            fmt.Sprintf("bed-%03d", i+1),
		}
		if err := firebaseService.SeedRecord(ctx, fmt.Sprintf("iotData/%s/deviceInfo", monitorID), monitor); err != nil {
			logger.Fatal("Failed to seed monitor", zap.String("device_id", monitorID), zap.Error(err))
		}

		sensor := models.DeviceInfo{
			Type:     models.DeviceTypeEnvironmentalSensor,
			RoomID:   roomID,
			RoomType: p.roomType,
		}
		if err := firebaseService.SeedRecord(ctx, fmt.Sprintf("iotData/%s/deviceInfo", sensorID), sensor); err != nil {
			logger.Fatal("Failed to seed sensor", zap.String("device_id", sensorID), zap.Error(err))
		}

		logger.Info("Seeded patient",
			zap.String("patient_id", p.id),
			zap.String("name", p.name),
			zap.String("status", p.status),
			zap.String("room_id", roomID),
			zap.String("monitor_id", monitorID))
	}

	logger.Info("Seeding complete", zap.Int("patients", count))
}
