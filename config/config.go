package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	FirebaseDbUrl              string
	FirebaseServiceAccountJSON string

	TelegramBotToken string
	TelegramChatID   string

	RabbitMQURL      string
	RabbitMQExchange string
	RabbitMQQueue    string

	MQTTBroker      string
	MQTTUsername    string
	MQTTPassword    string
	MQTTTopicPrefix string

	AnomalyAPIURL string

	// Simulation cadence
	VitalsInterval        time.Duration
	EnvIntervalMultiplier int
	ReloadInterval        time.Duration
	AnomalyCheckInterval  time.Duration
	AlertThrottle         time.Duration
	Seed                  int64
}

func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	config := &Config{
		FirebaseDbUrl:              getEnv("FIREBASE_DB_URL", ""),
		FirebaseServiceAccountJSON: getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),
		TelegramBotToken:           getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:             getEnv("TELEGRAM_CHAT_ID", ""),
		RabbitMQURL:                getEnv("RABBITMQ_URL", ""),
		RabbitMQExchange:           getEnv("RABBITMQ_EXCHANGE", "vitalsim.alerts"),
		RabbitMQQueue:              getEnv("RABBITMQ_QUEUE", "alert_queue"),
		MQTTBroker:                 getEnv("MQTT_BROKER", ""),
		MQTTUsername:               getEnv("MQTT_USERNAME", ""),
		MQTTPassword:               getEnv("MQTT_PASSWORD", ""),
		MQTTTopicPrefix:            getEnv("MQTT_TOPIC_PREFIX", "hospital"),
		AnomalyAPIURL:              getEnv("ANOMALY_API_URL", ""),
		VitalsInterval:             getEnvDuration("VITALS_INTERVAL", 5*time.Second),
		EnvIntervalMultiplier:      getEnvInt("ENV_INTERVAL_MULTIPLIER", 3),
		ReloadInterval:             getEnvDuration("RELOAD_INTERVAL", 100*time.Second),
		AnomalyCheckInterval:       getEnvDuration("ANOMALY_CHECK_INTERVAL", 30*time.Second),
		AlertThrottle:              getEnvDuration("ALERT_THROTTLE", 60*time.Second),
		Seed:                       int64(getEnvInt("SIMULATION_SEED", 0)),
	}

	if config.FirebaseDbUrl == "" {
		return nil, fmt.Errorf("FIREBASE_DB_URL is required")
	}
	if config.FirebaseServiceAccountJSON == "" {
		return nil, fmt.Errorf("FIREBASE_SERVICE_ACCOUNT_JSON is required")
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var i int
		if _, err := fmt.Sscanf(value, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
