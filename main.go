package main

import (
	"context"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vitalsim/config"
	"vitalsim/log"
	"vitalsim/models"
	"vitalsim/services"
	"vitalsim/simulation"

	"go.uber.org/zap"
)

func main() {
	// Initialize structured logger
	logger := log.GetInstance()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Initialize services
	firebaseService, err := services.NewFirebaseService(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize Firebase service", zap.Error(err))
	}
	defer firebaseService.Close()

	var telegramService *services.TelegramService
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != "" {
		telegramService, err = services.NewTelegramService(cfg, logger)
		if err != nil {
			logger.Fatal("Failed to initialize Telegram service", zap.Error(err))
		}
	}

	var rabbitService *services.RabbitMQService
	if cfg.RabbitMQURL != "" {
		rabbitService, err = services.NewRabbitMQService(cfg, logger)
		if err != nil {
			logger.Fatal("Failed to initialize RabbitMQ service", zap.Error(err))
		}
		defer rabbitService.Close()
	}

	var mqttService *services.MQTTService
	if cfg.MQTTBroker != "" {
		mqttService, err = services.NewMQTTService(cfg, logger)
		if err != nil {
			logger.Fatal("Failed to initialize MQTT service", zap.Error(err))
		}
		defer mqttService.Close()
	}

	// Build the simulation engine
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	registry := simulation.NewProfileRegistry(firebaseService, rand.New(rand.NewSource(seed)), logger)

	engine := simulation.NewEngine(registry, firebaseService, simulation.Options{
		VitalsInterval:        cfg.VitalsInterval,
		EnvIntervalMultiplier: cfg.EnvIntervalMultiplier,
		ReloadInterval:        cfg.ReloadInterval,
		AnomalyCheckInterval:  cfg.AnomalyCheckInterval,
		Seed:                  seed,
	}, logger)

	if cfg.AnomalyAPIURL != "" {
		engine.SetAnomalyChecker(services.NewAnomalyClient(cfg.AnomalyAPIURL, logger))
		logger.Info("Anomaly detection enabled", zap.String("url", cfg.AnomalyAPIURL))
	}
	if mqttService != nil {
		engine.SetLivePublisher(mqttService)
	}

	engine.SetAlertHandler(func(ctx context.Context, alert *models.Alert) {
		if telegramService != nil {
			if err := telegramService.SendAlert(alert); err != nil {
				logger.Error("Failed to send Telegram alert",
					zap.String("monitor_id", alert.MonitorID),
					zap.Error(err))
			}
		}
		if rabbitService != nil {
			if err := rabbitService.PublishAlert(alert); err != nil {
				logger.Error("Failed to publish alert to queue",
					zap.String("monitor_id", alert.MonitorID),
					zap.Error(err))
			}
		}
	})

	// Send startup notification
	if telegramService != nil {
		if err := telegramService.SendStartupMessage(); err != nil {
			logger.Warn("Failed to send startup message", zap.Error(err))
		}
	}

	logger.Info("Vitals simulation service started",
		zap.Duration("vitals_interval", cfg.VitalsInterval),
		zap.Int("env_interval_multiplier", cfg.EnvIntervalMultiplier),
		zap.Duration("reload_interval", cfg.ReloadInterval),
		zap.Duration("anomaly_check_interval", cfg.AnomalyCheckInterval),
		zap.Int64("seed", seed),
	)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Channel to signal when cleanup is complete
	cleanupDone := make(chan bool, 1)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, stopping services")

		// Cancel context to stop all workers
		cancel()

		// Wait for cleanup to complete or timeout
		select {
		case <-cleanupDone:
			logger.Info("Cleanup completed successfully")
		case <-time.After(10 * time.Second):
			logger.Warn("Cleanup timeout, forcing exit")
		}

		logger.Info("Vitals simulation service stopped")
		os.Exit(0)
	}()

	// Run the engine; blocks until the context is cancelled and all
	// device workers have drained.
	if err := engine.Run(ctx); err != nil {
		logger.Fatal("Simulation engine failed", zap.Error(err))
	}

	// Perform cleanup
	logger.Info("Starting cleanup")

	if err := firebaseService.Close(); err != nil {
		logger.Error("Error closing Firebase service", zap.Error(err))
	} else {
		logger.Info("Firebase service closed")
	}

	// Signal cleanup completion
	cleanupDone <- true
}
