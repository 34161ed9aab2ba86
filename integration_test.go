//go:build integration

package main_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staynest/service-booking/internal/application"
	"github.com/staynest/service-booking/pkg/domain"
	"github.com/staynest/service-booking/pkg/events"
)

// TestPropertyUpserted_ThenAcceptPublishesEvent verifies that a property
// announced on property.events becomes bookable, and that accepting a stay
// on it publishes booking.accepted.
func TestPropertyUpserted_ThenAcceptPublishesEvent(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupBookingStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stack.Consumer.Start(ctx) }()
	time.Sleep(3 * time.Second) // Wait for consumer group join.

	publishTestEvent(t, infra.KafkaBrokers, events.TopicPropertyEvents, "service-property", events.PropertyUpserted,
		events.PropertyUpsertedEvent{
			PropertyID: 42,
			OwnerID:    100,
			Name:       "Harbour Loft",
			City:       "Lisbon",
			Country:    "PT",
			Bedrooms:   2,
			OccurredAt: time.Now().UTC(),
		})

	model := waitForProperty(t, infra.DB, 42, 15*time.Second)
	assert.Equal(t, int64(100), model.OwnerID)

	guests := 4
	created, err := stack.Bookings.CreateBooking(ctx, 1, application.CreateBookingRequest{
		PropertyID: 42, StartDate: "2025-03-01", EndDate: "2025-03-05", Guests: &guests,
	})
	require.NoError(t, err)
	assert.Equal(t, "PENDING", created.Status)

	_, err = stack.Bookings.CreateBooking(ctx, 2, application.CreateBookingRequest{
		PropertyID: 42, StartDate: "2025-03-04", EndDate: "2025-03-06",
	})
	assert.True(t, domain.IsKind(err, domain.KindConflict))

	accepted, err := stack.Bookings.UpdateBookingStatus(ctx, created.ID, 100, "ACCEPTED")
	require.NoError(t, err)
	assert.Equal(t, "ACCEPTED", accepted.Status)
	assert.Equal(t, int64(2), accepted.Version)

	ce := consumeOneEvent(t, infra.KafkaBrokers, events.TopicBookingEvents, events.BookingAccepted, created.ID, 15*time.Second)

	var changed events.BookingStatusChangedEvent
	require.NoError(t, ce.ParseData(&changed))
	assert.Equal(t, created.ID, changed.BookingID)
	assert.Equal(t, "PENDING", changed.PreviousStatus)
	assert.Equal(t, "ACCEPTED", changed.Status)
	assert.Equal(t, "2025-03-01", changed.StartDate)
	assert.Equal(t, "2025-03-05", changed.EndDate)
}

// TestConcurrentAccepts_OnlyOneWins races owners accepting overlapping
// PENDING holds against real row locks.
func TestConcurrentAccepts_OnlyOneWins(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupBookingStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	ctx := context.Background()
	_, err := stack.Properties.UpsertProperty(ctx, 7, application.UpsertPropertyRequest{
		OwnerID: 100, Name: "Cabin", City: "Bergen", Country: "NO", Bedrooms: 1,
	})
	require.NoError(t, err)

	const n = 5
	ids := make([]int64, n)
	for i := range ids {
		ids[i] = seedPendingBooking(t, infra.DB, int64(i+1), 7, "2025-07-01", "2025-07-08")
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := stack.Bookings.UpdateBookingStatus(ctx, id, 100, "ACCEPTED")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case domain.IsKind(err, domain.KindConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, n-1, conflicts)

	stays, err := stack.Bookings.ListPropertyCalendar(ctx, 7)
	require.NoError(t, err)
	require.Len(t, stays, 1)
	assert.Equal(t, "2025-07-01", stays[0].StartDate)

	var accepted int64
	require.NoError(t, infra.DB.Table("bookings").Where("property_id = ? AND status = ?", 7, "ACCEPTED").Count(&accepted).Error)
	assert.Equal(t, int64(1), accepted)
}
