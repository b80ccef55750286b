package simulation

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"sync"
	"time"

	"vitalsim/models"

	"go.uber.org/zap"
)

// ReadingSink is the write side of the record store.
type ReadingSink interface {
	WriteVitals(ctx context.Context, deviceID, patientID string, at time.Time, reading *models.VitalReading) error
	WriteEnvironmental(ctx context.Context, deviceID string, at time.Time, reading *models.EnvironmentalReading) error
	SaveAlert(ctx context.Context, at time.Time, alert *models.Alert) error
}

// AnomalyChecker queries the external anomaly-detection service for one device.
type AnomalyChecker interface {
	Check(ctx context.Context, deviceID string) (*models.AnomalyResult, error)
}

// LivePublisher pushes readings to the realtime feed as they are generated.
type LivePublisher interface {
	PublishVitals(deviceID string, reading *models.VitalReading) error
	PublishEnvironmental(deviceID string, reading *models.EnvironmentalReading) error
}

// Options tune the engine's tick and reload cadence. Zero values fall back
// to the defaults the dashboard expects.
type Options struct {
	VitalsInterval        time.Duration
	EnvIntervalMultiplier int
	ReloadInterval        time.Duration
	AnomalyCheckInterval  time.Duration
	Seed                  int64
}

func (o Options) withDefaults() Options {
	if o.VitalsInterval <= 0 {
		o.VitalsInterval = 5 * time.Second
	}
	if o.EnvIntervalMultiplier <= 0 {
		o.EnvIntervalMultiplier = 3
	}
	if o.ReloadInterval <= 0 {
		o.ReloadInterval = 100 * time.Second
	}
	if o.AnomalyCheckInterval <= 0 {
		o.AnomalyCheckInterval = 30 * time.Second
	}
	if o.Seed == 0 {
		o.Seed = time.Now().UnixNano()
	}
	return o
}

// Engine drives the whole simulation: it loads profiles, runs one worker
// goroutine per device, reloads assignments periodically and fans alerts out
// to the configured handlers.
type Engine struct {
	registry  *ProfileRegistry
	sink      ReadingSink
	anomaly   AnomalyChecker
	publisher LivePublisher
	onAlert   func(ctx context.Context, alert *models.Alert)
	logger    *zap.Logger
	opts      Options

	mu      sync.Mutex
	wg      sync.WaitGroup
	running map[string]bool
}

// NewEngine wires a simulation engine. The anomaly checker, live publisher
// and alert handler are optional and attached with the Set methods.
func NewEngine(registry *ProfileRegistry, sink ReadingSink, opts Options, logger *zap.Logger) *Engine {
	return &Engine{
		registry: registry,
		sink:     sink,
		logger:   logger,
		opts:     opts.withDefaults(),
		running:  make(map[string]bool),
	}
}

// SetAnomalyChecker enables periodic anomaly polling for vitals monitors.
func (e *Engine) SetAnomalyChecker(c AnomalyChecker) { e.anomaly = c }

// SetLivePublisher enables realtime publication of every generated reading.
func (e *Engine) SetLivePublisher(p LivePublisher) { e.publisher = p }

// SetAlertHandler registers the fan-out callback invoked for every alert
// after it has been persisted.
func (e *Engine) SetAlertHandler(fn func(ctx context.Context, alert *models.Alert)) { e.onAlert = fn }

// Run loads the registry, starts a worker per device and blocks until the
// context is cancelled and every worker has drained.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.registry.Load(ctx); err != nil {
		return fmt.Errorf("initial profile load failed: %w", err)
	}
	e.startWorkers(ctx)

	reloadTicker := time.NewTicker(e.opts.ReloadInterval)
	defer reloadTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("Simulation engine shutting down, waiting for workers")
			e.wg.Wait()
			return nil
		case <-reloadTicker.C:
			if err := e.registry.Reload(ctx); err != nil {
				e.logger.Error("Profile reload failed, keeping previous assignments", zap.Error(err))
				continue
			}
			e.startWorkers(ctx)
		}
	}
}

// startWorkers launches workers for any device that does not have one yet.
// Workers for devices that disappeared exit on their own at the next tick.
func (e *Engine) startWorkers(ctx context.Context) {
	monitors, sensors := e.registry.DeviceIDs()

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, id := range monitors {
		if e.running[id] {
			continue
		}
		e.running[id] = true
		e.wg.Add(1)
		go e.runVitalsWorker(ctx, id)
	}
	for _, id := range sensors {
		if e.running[id] {
			continue
		}
		e.running[id] = true
		e.wg.Add(1)
		go e.runEnvWorker(ctx, id)
	}
}

func (e *Engine) releaseWorker(deviceID string) {
	e.mu.Lock()
	delete(e.running, deviceID)
	e.mu.Unlock()
	e.wg.Done()
}

// workerRand derives a per-device random source so devices do not walk in
// lockstep while the whole run stays reproducible from a single seed.
func (e *Engine) workerRand(deviceID string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(deviceID))
	return rand.New(rand.NewSource(e.opts.Seed ^ int64(h.Sum64())))
}

func (e *Engine) runVitalsWorker(ctx context.Context, deviceID string) {
	defer e.releaseWorker(deviceID)

	rng := e.workerRand(deviceID)
	ticker := time.NewTicker(e.opts.VitalsInterval)
	defer ticker.Stop()

	var lastAnomalyCheck time.Time
	e.logger.Info("Vitals worker started", zap.String("device_id", deviceID))

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("Vitals worker stopped", zap.String("device_id", deviceID))
			return
		case <-ticker.C:
		}

		profile, ok := e.registry.Patient(deviceID)
		if !ok {
			e.logger.Info("Monitor unassigned, stopping worker", zap.String("device_id", deviceID))
			return
		}

		now := time.Now()
		reading, step := e.GenerateVitals(profile, now, rng)

		if err := e.sink.WriteVitals(ctx, deviceID, profile.PatientID, now, reading); err != nil {
			e.logger.Error("Failed to persist vitals reading",
				zap.String("device_id", deviceID),
				zap.Error(err))
			continue
		}

		if e.publisher != nil {
			if err := e.publisher.PublishVitals(deviceID, reading); err != nil {
				e.logger.Warn("Failed to publish vitals to live feed",
					zap.String("device_id", deviceID),
					zap.Error(err))
			}
		}

		if step.Onset != ScenarioNone {
			e.dispatchScenarioAlert(ctx, profile, step.Onset, reading, now)
		}
		if step.Resolved != ScenarioNone {
			e.logger.Info("Scenario resolved",
				zap.String("device_id", deviceID),
				zap.String("patient_id", profile.PatientID),
				zap.String("scenario", string(step.Resolved)))
		}

		if e.anomaly != nil && now.Sub(lastAnomalyCheck) >= e.opts.AnomalyCheckInterval {
			lastAnomalyCheck = now
			e.checkAnomaly(ctx, deviceID, profile, reading, now)
		}
	}
}

func (e *Engine) runEnvWorker(ctx context.Context, deviceID string) {
	defer e.releaseWorker(deviceID)

	rng := e.workerRand(deviceID)
	interval := e.opts.VitalsInterval * time.Duration(e.opts.EnvIntervalMultiplier)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	e.logger.Info("Environmental worker started", zap.String("device_id", deviceID))

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("Environmental worker stopped", zap.String("device_id", deviceID))
			return
		case <-ticker.C:
		}

		profile, ok := e.registry.Environmental(deviceID)
		if !ok {
			e.logger.Info("Sensor unassigned, stopping worker", zap.String("device_id", deviceID))
			return
		}

		now := time.Now()
		reading, step := e.GenerateEnvironmental(profile, now, rng)

		if err := e.sink.WriteEnvironmental(ctx, deviceID, now, reading); err != nil {
			e.logger.Error("Failed to persist environmental reading",
				zap.String("device_id", deviceID),
				zap.Error(err))
			continue
		}

		if e.publisher != nil {
			if err := e.publisher.PublishEnvironmental(deviceID, reading); err != nil {
				e.logger.Warn("Failed to publish environmental reading to live feed",
					zap.String("device_id", deviceID),
					zap.Error(err))
			}
		}

		if step.Onset != HazardNone {
			e.dispatchHazardAlert(ctx, profile, step.Onset, reading, now)
		}
		if step.Resolved != HazardNone {
			e.logger.Info("Hazard resolved",
				zap.String("device_id", deviceID),
				zap.String("room_id", profile.RoomID),
				zap.String("hazard", string(step.Resolved)))
		}
	}
}

// GenerateVitals runs the full per-tick pipeline for one monitor: scenario
// override when one is active, otherwise circadian-adjusted trend walking,
// then medication effects, cross-vital correlation and hard clamping. The
// continuous values are cached on the profile; the returned reading carries
// the rounded, schema-shaped snapshot.
func (e *Engine) GenerateVitals(p *PatientProfile, now time.Time, rng *rand.Rand) (*models.VitalReading, StepResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	step := StepScenario(p, now, rng)

	var v Vitals
	if step.Overridden {
		v = step.Vitals
	} else {
		v = p.Current
		target := p.Baseline
		for _, f := range VitalFields {
			target.SetField(f, target.Field(f)*CircadianModifier(now.Hour(), f))
		}
		StepVitalTrends(p, &v, target, rng)
	}

	ApplyMedications(&v, p, now)
	Correlate(&v, p, rng)
	ClampVitals(&v)
	p.Current = v

	reading := &models.VitalReading{
		HeartRate:   int(math.Round(v.HeartRate)),
		OxygenLevel: roundTo(v.OxygenLevel, 1),
		Temperature: roundTo(v.Temperature, 1),
		BloodPressure: models.BloodPressure{
			Systolic:  int(math.Round(v.SystolicBP)),
			Diastolic: int(math.Round(v.DiastolicBP)),
		},
		RespiratoryRate: int(math.Round(v.RespiratoryRate)),
		Glucose:         int(math.Round(v.Glucose)),
		BedOccupancy:    true,
		PatientID:       p.PatientID,
		DeviceStatus:    "online",
		BatteryLevel:    85 + rng.Intn(15),
		SignalStrength:  70 + rng.Intn(30),
		Timestamp:       now.Format(time.RFC3339),
	}
	return reading, step
}

// GenerateEnvironmental is the room-sensor analogue of GenerateVitals.
func (e *Engine) GenerateEnvironmental(p *EnvironmentalProfile, now time.Time, rng *rand.Rand) (*models.EnvironmentalReading, EnvStepResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	step := StepHazard(p, now, rng)

	var v EnvValues
	if step.Overridden {
		v = step.Values
	} else {
		v = p.Current
		StepEnvTrends(p, &v, EnvDailyTarget(p.Baseline, now.Hour()), rng)
	}
	ClampEnv(&v)
	p.Current = v

	reading := &models.EnvironmentalReading{
		Temperature:    roundTo(v.Temperature, 1),
		Humidity:       int(math.Round(v.Humidity)),
		AirQuality:     int(math.Round(v.AirQuality)),
		NoiseLevel:     int(math.Round(v.NoiseLevel)),
		CO2Level:       int(math.Round(v.CO2Level)),
		LightLevel:     int(math.Round(v.LightLevel)),
		Pressure:       roundTo(v.Pressure, 1),
		DeviceStatus:   "online",
		BatteryLevel:   85 + rng.Intn(15),
		SignalStrength: 70 + rng.Intn(30),
		Timestamp:      now.Format(time.RFC3339),
	}
	return reading, step
}

func (e *Engine) dispatchScenarioAlert(ctx context.Context, p *PatientProfile, kind ScenarioKind, reading *models.VitalReading, now time.Time) {
	alert := &models.Alert{
		Message:         fmt.Sprintf("%s detected for patient %s", ScenarioLabel(kind), p.Name),
		MonitorID:       p.DeviceID,
		PatientID:       p.PatientID,
		Resolved:        false,
		Timestamp:       now.Format(time.RFC3339),
		Type:            ScenarioSeverity(kind),
		Vitals:          reading,
		Recommendations: ScenarioRecommendations(kind),
	}
	e.deliverAlert(ctx, alert, now)
	e.logger.Warn("Scenario onset",
		zap.String("device_id", p.DeviceID),
		zap.String("patient_id", p.PatientID),
		zap.String("scenario", string(kind)),
		zap.String("severity", alert.Type))
}

func (e *Engine) dispatchHazardAlert(ctx context.Context, p *EnvironmentalProfile, kind HazardKind, reading *models.EnvironmentalReading, now time.Time) {
	alert := &models.Alert{
		Message:             fmt.Sprintf("%s in room %s", HazardLabel(kind), p.RoomID),
		MonitorID:           p.DeviceID,
		Resolved:            false,
		Timestamp:           now.Format(time.RFC3339),
		Type:                HazardSeverity(kind),
		EnvironmentalValues: reading,
	}
	e.deliverAlert(ctx, alert, now)
	e.logger.Warn("Hazard onset",
		zap.String("device_id", p.DeviceID),
		zap.String("room_id", p.RoomID),
		zap.String("hazard", string(kind)),
		zap.String("severity", alert.Type))
}

func (e *Engine) checkAnomaly(ctx context.Context, deviceID string, p *PatientProfile, reading *models.VitalReading, now time.Time) {
	result, err := e.anomaly.Check(ctx, deviceID)
	if err != nil {
		e.logger.Warn("Anomaly check failed",
			zap.String("device_id", deviceID),
			zap.Error(err))
		return
	}
	if result == nil || !result.IsAnomaly {
		return
	}

	severity := result.SeverityLevel
	if severity == "" {
		severity = "warning"
	}
	alert := &models.Alert{
		Message: fmt.Sprintf("Anomaly detected for patient %s (score %.2f, confidence %.2f)",
			p.Name, result.AnomalyScore, result.Confidence),
		MonitorID:       deviceID,
		PatientID:       p.PatientID,
		Resolved:        false,
		Timestamp:       now.Format(time.RFC3339),
		Type:            severity,
		Vitals:          reading,
		Recommendations: []string{"Review recent vitals trend", "Assess patient at bedside"},
	}
	e.deliverAlert(ctx, alert, now)
	e.logger.Warn("Anomaly alert raised",
		zap.String("device_id", deviceID),
		zap.String("severity", severity),
		zap.Float64("score", result.AnomalyScore))
}

// deliverAlert persists the alert first, then hands it to the fan-out
// handler. A persistence failure is logged but does not suppress fan-out.
func (e *Engine) deliverAlert(ctx context.Context, alert *models.Alert, now time.Time) {
	if err := e.sink.SaveAlert(ctx, now, alert); err != nil {
		e.logger.Error("Failed to persist alert",
			zap.String("monitor_id", alert.MonitorID),
			zap.Error(err))
	}
	if e.onAlert != nil {
		e.onAlert(ctx, alert)
	}
}

func roundTo(value float64, decimals int) float64 {
	shift := math.Pow(10, float64(decimals))
	return math.Round(value*shift) / shift
}
