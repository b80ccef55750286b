package services

import (
	"context"
	"fmt"
	"time"

	"vitalsim/config"
	"vitalsim/models"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/db"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// FirebaseService is the record store: device registry, patient and room
// records on the read side, vitals, environmental readings and alerts on
// the write side.
type FirebaseService struct {
	client *db.Client
	config *config.Config
	logger *zap.Logger
}

func NewFirebaseService(cfg *config.Config, logger *zap.Logger) (*FirebaseService, error) {
	ctx := context.Background()

	serviceAccountJSON := []byte(cfg.FirebaseServiceAccountJSON)

	conf := &firebase.Config{
		DatabaseURL: cfg.FirebaseDbUrl,
	}

	opt := option.WithCredentialsJSON(serviceAccountJSON)
	app, err := firebase.NewApp(ctx, conf, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %v", err)
	}

	client, err := app.Database(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting database client: %v", err)
	}

	fs := &FirebaseService{
		client: client,
		config: cfg,
		logger: logger,
	}

	// Test Firebase connection with retry
	if err := fs.testConnection(); err != nil {
		logger.Error("Firebase connection test failed", zap.Error(err))
		return nil, fmt.Errorf("firebase connection test failed: %v", err)
	}

	return fs, nil
}

// testConnection tests Firebase connection with retry logic
func (fs *FirebaseService) testConnection() error {
	ctx := context.Background()
	maxRetries := 3

	for attempt := 1; attempt <= maxRetries; attempt++ {
		fs.logger.Info("Testing Firebase connection", zap.Int("attempt", attempt), zap.Int("max_retries", maxRetries))

		// Shallow read of the device tree root to test connection
		ref := fs.client.NewRef("iotData")
		var data map[string]interface{}
		err := ref.GetShallow(ctx, &data)

		if err == nil {
			fs.logger.Info("Firebase connection successful")
			return nil
		}

		fs.logger.Warn("Firebase connection failed",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", maxRetries),
			zap.Error(err))

		if attempt < maxRetries {
			time.Sleep(time.Duration(attempt) * time.Second)
		}
	}

	return fmt.Errorf("failed to connect to Firebase after %d attempts", maxRetries)
}

// TimestampKey formats a record key with millisecond precision. Firebase
// path segments cannot contain ".", "#", "$", "[" or "]", so the key uses
// dashes throughout; millisecond precision keeps concurrent writers from
// colliding on a key.
func TimestampKey(t time.Time) string {
	return fmt.Sprintf("%s-%03d", t.Format("2006-01-02_15-04-05"), t.Nanosecond()/1e6)
}

// Devices lists every registered device id via a shallow read, then fetches
// each device's deviceInfo node. A device with no deviceInfo is skipped.
func (fs *FirebaseService) Devices(ctx context.Context) (map[string]models.DeviceInfo, error) {
	var ids map[string]interface{}
	if err := fs.client.NewRef("iotData").GetShallow(ctx, &ids); err != nil {
		return nil, fmt.Errorf("error listing devices: %v", err)
	}

	devices := make(map[string]models.DeviceInfo, len(ids))
	for deviceID := range ids {
		var info models.DeviceInfo
		ref := fs.client.NewRef(fmt.Sprintf("iotData/%s/deviceInfo", deviceID))
		if err := ref.Get(ctx, &info); err != nil {
			fs.logger.Warn("Failed to read device info",
				zap.String("device_id", deviceID),
				zap.Error(err))
			continue
		}
		if info.Type == "" {
			fs.logger.Debug("Device has no deviceInfo, skipping", zap.String("device_id", deviceID))
			continue
		}
		devices[deviceID] = info
	}
	return devices, nil
}

// Patient fetches one patient record.
func (fs *FirebaseService) Patient(ctx context.Context, patientID string) (*models.PatientRecord, error) {
	var record models.PatientRecord
	ref := fs.client.NewRef(fmt.Sprintf("patients/%s", patientID))
	if err := ref.Get(ctx, &record); err != nil {
		return nil, fmt.Errorf("error getting patient %s: %v", patientID, err)
	}
	if record.PersonalInfo.Name == "" && record.PersonalInfo.Age == 0 {
		return nil, fmt.Errorf("patient %s not found", patientID)
	}
	return &record, nil
}

// Room fetches one room record.
func (fs *FirebaseService) Room(ctx context.Context, roomID string) (*models.RoomRecord, error) {
	var record models.RoomRecord
	ref := fs.client.NewRef(fmt.Sprintf("rooms/%s", roomID))
	if err := ref.Get(ctx, &record); err != nil {
		return nil, fmt.Errorf("error getting room %s: %v", roomID, err)
	}
	if record.RoomType == "" {
		return nil, fmt.Errorf("room %s not found", roomID)
	}
	return &record, nil
}

// WriteVitals stores one vitals reading under
// iotData/{device}/vitals/{patient}/{timestamp}.
func (fs *FirebaseService) WriteVitals(ctx context.Context, deviceID, patientID string, at time.Time, reading *models.VitalReading) error {
	path := fmt.Sprintf("iotData/%s/vitals/%s/%s", deviceID, patientID, TimestampKey(at))
	if err := fs.client.NewRef(path).Set(ctx, reading); err != nil {
		return fmt.Errorf("error writing vitals for %s: %v", deviceID, err)
	}
	return nil
}

// WriteEnvironmental stores one room reading under
// iotData/{device}/environmentalData/{timestamp}.
func (fs *FirebaseService) WriteEnvironmental(ctx context.Context, deviceID string, at time.Time, reading *models.EnvironmentalReading) error {
	path := fmt.Sprintf("iotData/%s/environmentalData/%s", deviceID, TimestampKey(at))
	if err := fs.client.NewRef(path).Set(ctx, reading); err != nil {
		return fmt.Errorf("error writing environmental data for %s: %v", deviceID, err)
	}
	return nil
}

// SaveAlert stores one alert under alerts/{timestamp}.
func (fs *FirebaseService) SaveAlert(ctx context.Context, at time.Time, alert *models.Alert) error {
	path := fmt.Sprintf("alerts/%s", TimestampKey(at))
	if err := fs.client.NewRef(path).Set(ctx, alert); err != nil {
		return fmt.Errorf("error saving alert: %v", err)
	}
	return nil
}

// SeedRecord writes an arbitrary record at the given path. Used by the
// seeding tool to provision demo patients, rooms and devices.
func (fs *FirebaseService) SeedRecord(ctx context.Context, path string, value interface{}) error {
	if err := fs.client.NewRef(path).Set(ctx, value); err != nil {
		return fmt.Errorf("error seeding %s: %v", path, err)
	}
	return nil
}

// Close closes the Firebase connection
func (fs *FirebaseService) Close() error {
	fs.logger.Info("Closing Firebase service")
	// Firebase client doesn't require explicit closing but we log it
	return nil
}
