package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Producer publishes CloudEvents to Kafka topics.
type Producer struct {
	writer *kafkago.Writer
	logger *zap.Logger
}

// NewProducer creates a new Producer for the given brokers.
func NewProducer(brokers []string, logger *zap.Logger) *Producer {
	return &Producer{
		writer: &kafkago.Writer{
			Addr:                   kafkago.TCP(brokers...),
			Balancer:               &kafkago.Hash{},
			RequiredAcks:           kafkago.RequireOne,
			BatchTimeout:           10 * time.Millisecond,
			AllowAutoTopicCreation: true,
		},
		logger: logger,
	}
}

// PublishEvent writes the event to topic, keyed by its subject so events for
// the same entity keep their order.
func (p *Producer) PublishEvent(ctx context.Context, topic string, event CloudEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal cloud event: %w", err)
	}

	msg := kafkago.Message{
		Topic: topic,
		Key:   []byte(event.Subject),
		Value: value,
		Headers: []kafkago.Header{
			{Key: "ce_type", Value: []byte(event.Type)},
			{Key: "ce_id", Value: []byte(event.ID)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to %s: %w", topic, err)
	}

	p.logger.Debug("event published",
		zap.String("topic", topic),
		zap.String("type", event.Type),
		zap.String("subject", event.Subject),
	)
	return nil
}

// Close flushes pending writes and releases connections.
func (p *Producer) Close() error {
	return p.writer.Close()
}

// DiscardPublisher drops every event. It stands in for the producer when no
// brokers are configured.
type DiscardPublisher struct {
	logger *zap.Logger
}

// NewDiscardPublisher creates a new DiscardPublisher.
func NewDiscardPublisher(logger *zap.Logger) *DiscardPublisher {
	return &DiscardPublisher{logger: logger}
}

// PublishEvent logs and drops the event.
func (d *DiscardPublisher) PublishEvent(_ context.Context, topic string, event CloudEvent) error {
	d.logger.Debug("event discarded, kafka disabled", zap.String("topic", topic), zap.String("type", event.Type))
	return nil
}
