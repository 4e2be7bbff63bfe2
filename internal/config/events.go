package config

import (
	"log/slog"

	"github.com/SAP-F-2025/examprep-service/internal/events"
)

type EventConfig struct {
	Enabled bool
	// Backend is "kafka" or "log". Anything else logs.
	Backend string
	Brokers []string
	Topic   string
	// TopicPerType publishes to "<Topic>.<event type>" instead of one topic.
	TopicPerType bool
}

func (c EventConfig) router() events.TopicRouter {
	if c.TopicPerType {
		return events.TopicPerType(c.Topic)
	}
	return events.SingleTopic(c.Topic)
}

// NewPublisher builds the publisher selected by the config. Only the kafka
// backend can fail.
func (c EventConfig) NewPublisher(logger *slog.Logger) (events.EventPublisher, error) {
	if !c.Enabled {
		logger.Info("Event publishing disabled, logging events instead")
		return events.NewLogPublisher(logger), nil
	}
	if c.Backend != "kafka" {
		if c.Backend != "log" {
			logger.Warn("Unknown event backend, logging events instead", "backend", c.Backend)
		}
		return events.NewLogPublisher(logger), nil
	}

	logger.Info("Publishing events to kafka",
		"brokers", c.Brokers,
		"topic", c.Topic,
		"topic_per_type", c.TopicPerType)
	return events.NewKafkaPublisher(c.Brokers, c.router(), logger)
}
