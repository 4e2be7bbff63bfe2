package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
)

// EventPublisher delivers domain events. Callers treat failures as
// non-fatal and only log them.
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

// TopicRouter picks the destination topic for an event.
type TopicRouter func(event *Event) string

func SingleTopic(topic string) TopicRouter {
	return func(*Event) string { return topic }
}

// TopicPerType routes to "<prefix>.<event type>", e.g. examprep.attempt.submitted.
func TopicPerType(prefix string) TopicRouter {
	return func(event *Event) string { return prefix + "." + string(event.Type) }
}

// WatermillPublisher sends events through any watermill publisher.
type WatermillPublisher struct {
	pub    message.Publisher
	route  TopicRouter
	logger *slog.Logger
}

func NewWatermillPublisher(pub message.Publisher, route TopicRouter, logger *slog.Logger) *WatermillPublisher {
	return &WatermillPublisher{pub: pub, route: route, logger: logger}
}

func NewKafkaPublisher(brokers []string, route TopicRouter, logger *slog.Logger) (*WatermillPublisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("no kafka brokers configured")
	}
	pub, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   brokers,
		Marshaler: kafka.DefaultMarshaler{},
	}, watermill.NewSlogLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}
	return NewWatermillPublisher(pub, route, logger), nil
}

// toMessage keys the message by event ID and mirrors the envelope header
// into metadata so consumers can filter without decoding the payload.
func toMessage(ctx context.Context, event *Event) (*message.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	msg := message.NewMessage(event.ID, payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("event_type", string(event.Type))
	msg.Metadata.Set("source", event.Source)
	msg.Metadata.Set("version", event.Version)
	msg.Metadata.Set("timestamp", event.Timestamp.Format(time.RFC3339))
	return msg, nil
}

func (p *WatermillPublisher) Publish(ctx context.Context, event *Event) error {
	msg, err := toMessage(ctx, event)
	if err != nil {
		return err
	}
	topic := p.route(event)

	if err := p.pub.Publish(topic, msg); err != nil {
		p.logger.Error("Failed to publish event",
			"event_id", event.ID,
			"event_type", event.Type,
			"topic", topic,
			"error", err)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Debug("Published event",
		"event_id", event.ID,
		"event_type", event.Type,
		"topic", topic)
	return nil
}

func (p *WatermillPublisher) Close() error {
	return p.pub.Close()
}

// LogPublisher writes each event to the log and keeps nothing. It stands in
// for a broker when events are disabled or kafka is unavailable.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, event *Event) error {
	p.logger.Info("Event not forwarded to a broker",
		"event_id", event.ID,
		"event_type", event.Type)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
