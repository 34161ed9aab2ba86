// Package events holds the topic names and payloads exchanged with other
// marketplace services.
package events

import "time"

const (
	TopicBookingEvents  = "booking.events"
	TopicPropertyEvents = "property.events"
)

// Booking event types.
const (
	BookingRequested = "booking.requested"
	BookingAccepted  = "booking.accepted"
	BookingCancelled = "booking.cancelled"
)

// Property event types.
const (
	PropertyUpserted = "property.upserted"
)

// BookingRequestedEvent is published when a traveler places a hold.
type BookingRequestedEvent struct {
	BookingID  int64     `json:"booking_id"`
	PropertyID int64     `json:"property_id"`
	TravelerID int64     `json:"traveler_id"`
	OwnerID    int64     `json:"owner_id"`
	StartDate  string    `json:"start_date"`
	EndDate    string    `json:"end_date"`
	Guests     int       `json:"guests"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BookingStatusChangedEvent is published when an owner accepts or cancels.
type BookingStatusChangedEvent struct {
	BookingID      int64     `json:"booking_id"`
	PropertyID     int64     `json:"property_id"`
	TravelerID     int64     `json:"traveler_id"`
	OwnerID        int64     `json:"owner_id"`
	PreviousStatus string    `json:"previous_status"`
	Status         string    `json:"status"`
	StartDate      string    `json:"start_date"`
	EndDate        string    `json:"end_date"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// PropertyUpsertedEvent carries the property basics this service projects.
type PropertyUpsertedEvent struct {
	PropertyID int64     `json:"property_id"`
	OwnerID    int64     `json:"owner_id"`
	Name       string    `json:"name"`
	City       string    `json:"city"`
	Country    string    `json:"country"`
	Bedrooms   int       `json:"bedrooms"`
	Capacity   int       `json:"capacity"`
	OccurredAt time.Time `json:"occurred_at"`
}
