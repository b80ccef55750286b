package services

import (
	"encoding/json"
	"fmt"
	"time"

	"vitalsim/config"
	"vitalsim/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// MQTTService publishes every generated reading to the live dashboard feed:
// {prefix}/vitals/{deviceID} and {prefix}/environmental/{deviceID}.
type MQTTService struct {
	client      mqtt.Client
	topicPrefix string
	logger      *zap.Logger
}

func NewMQTTService(cfg *config.Config, logger *zap.Logger) (*MQTTService, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", cfg.MQTTBroker))
	opts.SetClientID("vitalsim-engine")
	opts.SetUsername(cfg.MQTTUsername)
	opts.SetPassword(cfg.MQTTPassword)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetAutoReconnect(true)

	opts.OnConnect = func(client mqtt.Client) {
		logger.Info("Connected to MQTT broker", zap.String("broker", cfg.MQTTBroker))
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		logger.Error("MQTT connection lost", zap.Error(err))
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return &MQTTService{
		client:      client,
		topicPrefix: cfg.MQTTTopicPrefix,
		logger:      logger,
	}, nil
}

// PublishVitals pushes one vitals reading to the live feed.
func (m *MQTTService) PublishVitals(deviceID string, reading *models.VitalReading) error {
	topic := fmt.Sprintf("%s/vitals/%s", m.topicPrefix, deviceID)
	return m.publish(topic, reading)
}

// PublishEnvironmental pushes one room reading to the live feed.
func (m *MQTTService) PublishEnvironmental(deviceID string, reading *models.EnvironmentalReading) error {
	topic := fmt.Sprintf("%s/environmental/%s", m.topicPrefix, deviceID)
	return m.publish(topic, reading)
}

func (m *MQTTService) publish(topic string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	token := m.client.Publish(topic, 0, false, data)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, token.Error())
	}

	m.logger.Debug("Published reading", zap.String("topic", topic))
	return nil
}

// Close disconnects from the MQTT broker.
func (m *MQTTService) Close() {
	m.logger.Info("Disconnecting from MQTT broker")
	m.client.Disconnect(250)
}
