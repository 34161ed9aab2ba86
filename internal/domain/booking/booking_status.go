package booking

import (
	"fmt"

	"github.com/staynest/service-booking/pkg/domain"
)

// BookingStatus represents the current state of a booking in its lifecycle.
type BookingStatus string

const (
	StatusPending   BookingStatus = "PENDING"
	StatusAccepted  BookingStatus = "ACCEPTED"
	StatusCancelled BookingStatus = "CANCELLED"
)

// validTransitions defines the state machine for booking status transitions.
var validTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusAccepted, StatusCancelled},
	StatusAccepted:  {StatusCancelled},
	StatusCancelled: {},
}

// BlockingStatuses are the statuses that make a stay unavailable to new requests.
var BlockingStatuses = []BookingStatus{StatusPending, StatusAccepted}

// IsValid returns true if the status is a recognized booking status.
func (s BookingStatus) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// String returns the string representation of the status.
func (s BookingStatus) String() string {
	return string(s)
}

// ParseBookingStatus converts a string to a BookingStatus, returning an error if invalid.
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}

// ParseOwnerDecision parses the status an owner may request: ACCEPTED or CANCELLED.
func ParseOwnerDecision(s string) (BookingStatus, error) {
	switch status := BookingStatus(s); status {
	case StatusAccepted, StatusCancelled:
		return status, nil
	default:
		return "", domain.NewValidationError("status must be ACCEPTED or CANCELLED")
	}
}

// StatusStrings converts statuses to their stored representation.
func StatusStrings(statuses ...BookingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
