package services

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"vitalsim/config"
	"vitalsim/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// TelegramService pushes alert notifications to the care-team chat.
// Non-critical alerts are throttled per device; critical alerts always
// go through.
type TelegramService struct {
	bot            *tgbotapi.BotAPI
	chatID         int64
	throttle       time.Duration
	mu             sync.Mutex
	lastAlertTimes map[string]time.Time
	logger         *zap.Logger
}

func NewTelegramService(cfg *config.Config, logger *zap.Logger) (*TelegramService, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("error creating telegram bot: %v", err)
	}

	chatID, err := strconv.ParseInt(cfg.TelegramChatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("error parsing chat ID: %v", err)
	}

	logger.Info("Telegram bot authorized", zap.String("username", bot.Self.UserName))

	ts := &TelegramService{
		bot:            bot,
		chatID:         chatID,
		throttle:       cfg.AlertThrottle,
		lastAlertTimes: make(map[string]time.Time),
		logger:         logger,
	}

	// Test Telegram connection with retry
	if err := ts.testConnection(); err != nil {
		logger.Error("Telegram connection test failed", zap.Error(err))
		return nil, fmt.Errorf("telegram connection test failed: %v", err)
	}

	return ts, nil
}

// testConnection tests Telegram connection with retry logic
func (ts *TelegramService) testConnection() error {
	maxRetries := 3

	for attempt := 1; attempt <= maxRetries; attempt++ {
		ts.logger.Info("Testing Telegram connection", zap.Int("attempt", attempt), zap.Int("max_retries", maxRetries))

		_, err := ts.bot.GetMe()

		if err == nil {
			ts.logger.Info("Telegram connection successful")
			return nil
		}

		ts.logger.Warn("Telegram connection failed",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", maxRetries),
			zap.Error(err))

		if attempt < maxRetries {
			time.Sleep(time.Duration(attempt) * time.Second)
		}
	}

	return fmt.Errorf("failed to connect to Telegram after %d attempts", maxRetries)
}

// SendAlert sends one formatted alert. Critical alerts bypass the per-device
// throttle window.
func (ts *TelegramService) SendAlert(alert *models.Alert) error {
	if alert.Type != "critical" && ts.shouldThrottleAlert(alert.MonitorID) {
		ts.logger.Debug("Throttling alert", zap.String("device_id", alert.MonitorID))
		return nil
	}

	message := ts.formatAlertMessage(alert)

	msg := tgbotapi.NewMessage(ts.chatID, message)
	msg.ParseMode = "HTML"
	msg.DisableWebPagePreview = true

	_, err := ts.bot.Send(msg)
	if err != nil {
		return fmt.Errorf("error sending telegram message: %v", err)
	}

	ts.mu.Lock()
	ts.lastAlertTimes[alert.MonitorID] = time.Now()
	ts.mu.Unlock()

	ts.logger.Info("Sent alert notification",
		zap.String("device_id", alert.MonitorID),
		zap.String("type", alert.Type))
	return nil
}

// shouldThrottleAlert checks if we should throttle alerts for a device
func (ts *TelegramService) shouldThrottleAlert(deviceID string) bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	lastAlertTime, exists := ts.lastAlertTimes[deviceID]
	if !exists {
		return false
	}
	return time.Since(lastAlertTime) < ts.throttle
}

// formatAlertMessage creates a mobile-friendly, formatted alert message
func (ts *TelegramService) formatAlertMessage(alert *models.Alert) string {
	var sb strings.Builder

	switch alert.Type {
	case "critical":
		sb.WriteString("🚨 <b>CRITICAL PATIENT ALERT</b> 🚨\n\n")
	case "warning":
		sb.WriteString("⚠️ <b>PATIENT WARNING</b> ⚠️\n\n")
	default:
		sb.WriteString("ℹ️ <b>MONITORING NOTICE</b>\n\n")
	}

	sb.WriteString(fmt.Sprintf("📱 <b>Monitor:</b> %s\n", alert.MonitorID))
	if alert.PatientID != "" {
		sb.WriteString(fmt.Sprintf("🧑‍⚕️ <b>Patient:</b> %s\n", alert.PatientID))
	}
	sb.WriteString(fmt.Sprintf("🕐 <b>Time:</b> %s\n\n", alert.Timestamp))

	sb.WriteString(fmt.Sprintf("📋 %s\n\n", alert.Message))

	if alert.Vitals != nil {
		sb.WriteString("📊 <b>Current Vitals:</b>\n")
		sb.WriteString(fmt.Sprintf("❤️ Heart Rate: %d bpm\n", alert.Vitals.HeartRate))
		sb.WriteString(fmt.Sprintf("🫁 SpO2: %.1f%%\n", alert.Vitals.OxygenLevel))
		sb.WriteString(fmt.Sprintf("🌡️ Temperature: %.1f°C\n", alert.Vitals.Temperature))
		sb.WriteString(fmt.Sprintf("🩸 BP: %d/%d mmHg\n", alert.Vitals.BloodPressure.Systolic, alert.Vitals.BloodPressure.Diastolic))
		sb.WriteString(fmt.Sprintf("💨 Respiratory Rate: %d /min\n", alert.Vitals.RespiratoryRate))
		sb.WriteString(fmt.Sprintf("🍬 Glucose: %d mg/dL\n\n", alert.Vitals.Glucose))
	}

	if alert.EnvironmentalValues != nil {
		sb.WriteString("🏥 <b>Room Conditions:</b>\n")
		sb.WriteString(fmt.Sprintf("🌡️ Temperature: %.1f°C\n", alert.EnvironmentalValues.Temperature))
		sb.WriteString(fmt.Sprintf("💧 Humidity: %d%%\n", alert.EnvironmentalValues.Humidity))
		sb.WriteString(fmt.Sprintf("💨 Air Quality: %d\n", alert.EnvironmentalValues.AirQuality))
		sb.WriteString(fmt.Sprintf("🔊 Noise: %d dB\n", alert.EnvironmentalValues.NoiseLevel))
		sb.WriteString(fmt.Sprintf("🫧 CO2: %d ppm\n\n", alert.EnvironmentalValues.CO2Level))
	}

	if len(alert.Recommendations) > 0 {
		sb.WriteString("💡 <b>Recommended Actions:</b>\n")
		for _, rec := range alert.Recommendations {
			sb.WriteString(fmt.Sprintf("  • %s\n", rec))
		}
		sb.WriteString("\n")
	}

	if alert.Type == "critical" {
		sb.WriteString("🔴 <b>Status:</b> IMMEDIATE ATTENTION REQUIRED")
	} else {
		sb.WriteString("🟡 <b>Status:</b> REVIEW REQUIRED")
	}

	return sb.String()
}

// SendStatusMessage sends a general status message
func (ts *TelegramService) SendStatusMessage(message string) error {
	msg := tgbotapi.NewMessage(ts.chatID, message)
	msg.ParseMode = "HTML"

	_, err := ts.bot.Send(msg)
	return err
}

// SendStartupMessage sends a message when the service starts
func (ts *TelegramService) SendStartupMessage() error {
	message := "🟢 <b>Vitals Simulation Service Started</b>\n\n" +
		"📡 Connected to Firebase Realtime Database\n" +
		"🤖 Telegram notifications active\n" +
		"🛏️ Generating vitals and room readings for all registered devices...\n\n" +
		"✅ System is ready and operational!"

	return ts.SendStatusMessage(message)
}
