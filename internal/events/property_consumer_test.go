package events

import (
	"context"
	"encoding/json"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/staynest/service-booking/internal/application"
	"github.com/staynest/service-booking/internal/repository"
	"github.com/staynest/service-booking/internal/repository/sqlitetest"
	"github.com/staynest/service-booking/pkg/domain"
	"github.com/staynest/service-booking/pkg/events"
	"github.com/staynest/service-booking/pkg/kafka"
)

func newTestConsumer(t *testing.T) (*PropertyEventConsumer, *application.PropertyService) {
	t.Helper()
	db := sqlitetest.Open(t)
	require.NoError(t, repository.AutoMigrate(db))
	svc := application.NewPropertyService(repository.NewGormPropertyRepository(db), zap.NewNop())
	return &PropertyEventConsumer{service: svc, logger: zap.NewNop()}, svc
}

func message(t *testing.T, eventType string, data any) kafkago.Message {
	t.Helper()
	ce, err := kafka.NewCloudEvent("service-property", eventType, data)
	require.NoError(t, err)
	raw, err := json.Marshal(ce)
	require.NoError(t, err)
	return kafkago.Message{Topic: events.TopicPropertyEvents, Value: raw}
}

func TestHandleMessage_UpsertsProperty(t *testing.T) {
	c, svc := newTestConsumer(t)
	ctx := context.Background()

	require.NoError(t, c.handleMessage(ctx, message(t, events.PropertyUpserted, events.PropertyUpsertedEvent{
		PropertyID: 4, OwnerID: 8, Name: "Alpine Chalet", City: "Zermatt", Country: "CH", Bedrooms: 3, Capacity: 100,
	})))

	got, err := svc.GetProperty(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(8), got.OwnerID)
	assert.Equal(t, 9, got.EffectiveCapacity)

	require.NoError(t, c.handleMessage(ctx, message(t, events.PropertyUpserted, events.PropertyUpsertedEvent{
		PropertyID: 4, OwnerID: 8, Name: "Alpine Chalet", City: "Zermatt", Country: "CH", Bedrooms: 1,
	})))
	got, err = svc.GetProperty(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, 2, got.EffectiveCapacity)
}

func TestHandleMessage_SkipsBadInput(t *testing.T) {
	c, svc := newTestConsumer(t)
	ctx := context.Background()

	assert.NoError(t, c.handleMessage(ctx, kafkago.Message{Value: []byte("{garbage")}))
	assert.NoError(t, c.handleMessage(ctx, message(t, "property.deleted", map[string]int{"property_id": 4})))
	assert.NoError(t, c.handleMessage(ctx, message(t, events.PropertyUpserted, events.PropertyUpsertedEvent{PropertyID: 0, OwnerID: 8})))

	_, err := svc.GetProperty(ctx, 4)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestHandleMessage_ReturnsStoreErrorsForRetry(t *testing.T) {
	db := sqlitetest.Open(t)
	require.NoError(t, repository.AutoMigrate(db))
	svc := application.NewPropertyService(repository.NewGormPropertyRepository(db), zap.NewNop())
	c := &PropertyEventConsumer{service: svc, logger: zap.NewNop()}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	err = c.handleMessage(context.Background(), message(t, events.PropertyUpserted, events.PropertyUpsertedEvent{
		PropertyID: 4, OwnerID: 8, Name: "Alpine Chalet", Bedrooms: 2,
	}))
	assert.Error(t, err)
}
