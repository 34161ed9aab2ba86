package events

import (
	"context"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/staynest/service-booking/internal/application"
	"github.com/staynest/service-booking/pkg/domain"
	"github.com/staynest/service-booking/pkg/events"
	"github.com/staynest/service-booking/pkg/kafka"
)

// PropertyEventConsumer keeps the property projection in step with the
// property service's events.
type PropertyEventConsumer struct {
	consumer *kafka.Consumer
	service  *application.PropertyService
	logger   *zap.Logger
}

// NewPropertyEventConsumer creates a new PropertyEventConsumer.
func NewPropertyEventConsumer(
	brokers []string,
	groupID string,
	service *application.PropertyService,
	logger *zap.Logger,
) *PropertyEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, events.TopicPropertyEvents, logger)
	return &PropertyEventConsumer{
		consumer: consumer,
		service:  service,
		logger:   logger,
	}
}

// Start begins consuming property events. This blocks until the context is cancelled.
func (c *PropertyEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *PropertyEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *PropertyEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from property topic",
			zap.Error(err),
			zap.Int64("offset", msg.Offset),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case events.PropertyUpserted:
		return c.handlePropertyUpserted(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled property event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *PropertyEventConsumer) handlePropertyUpserted(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt events.PropertyUpsertedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse PropertyUpsertedEvent data", zap.Error(err))
		return nil
	}

	_, err := c.service.UpsertProperty(ctx, evt.PropertyID, application.UpsertPropertyRequest{
		OwnerID:  evt.OwnerID,
		Name:     evt.Name,
		City:     evt.City,
		Country:  evt.Country,
		Bedrooms: evt.Bedrooms,
		Capacity: evt.Capacity,
	})
	if err != nil {
		if domain.IsKind(err, domain.KindInvalidArgument) {
			c.logger.Warn("skipping invalid property event",
				zap.Int64("property_id", evt.PropertyID),
				zap.Error(err),
			)
			return nil
		}
		c.logger.Error("failed to project property",
			zap.Int64("property_id", evt.PropertyID),
			zap.Error(err),
		)
		return err
	}
	return nil
}
