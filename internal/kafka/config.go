package kafka

import (
	"fmt"
	"os"
	"strings"
)

// Config holds Kafka configuration
type Config struct {
	Brokers            string
	ConfirmationsTopic string
	ConfirmationsDLQ   string
	ConsumerGroup      string
	EnableIdempotence  bool
	Acks               string
}

// LoadConfig loads Kafka configuration from environment variables
func LoadConfig() (*Config, error) {
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		return nil, fmt.Errorf("KAFKA_BROKERS environment variable is required")
	}

	topic := os.Getenv("KAFKA_TOPIC_CONFIRMATIONS")
	if topic == "" {
		topic = "reservation-confirmations"
	}

	dlqTopic := os.Getenv("KAFKA_TOPIC_CONFIRMATIONS_DLQ")
	if dlqTopic == "" {
		dlqTopic = "reservation-confirmations-dlq"
	}

	consumerGroup := os.Getenv("KAFKA_CONSUMER_GROUP")
	if consumerGroup == "" {
		consumerGroup = "notifier-service-group"
	}

	return &Config{
		Brokers:            brokers,
		ConfirmationsTopic: topic,
		ConfirmationsDLQ:   dlqTopic,
		ConsumerGroup:      consumerGroup,
		EnableIdempotence:  true,
		Acks:               "all",
	}, nil
}

// GetBrokersList returns brokers as a slice
func (c *Config) GetBrokersList() []string {
	return strings.Split(c.Brokers, ",")
}
