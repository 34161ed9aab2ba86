package booking

import (
	"time"

	"github.com/staynest/service-booking/pkg/domain"
)

// Error messages returned by status transitions.
const (
	MsgOnlyPendingCanBeAccepted = "Only PENDING bookings can be ACCEPTED"
	MsgAcceptConflict           = "Cannot ACCEPT: dates conflict with another ACCEPTED booking"
	MsgDatesOverlap             = "Dates overlap with an existing booking"
)

// Booking is the aggregate root for the booking domain.
type Booking struct {
	id         int64
	travelerID int64
	propertyID int64
	stay       Stay
	guests     int
	status     BookingStatus

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates a new Booking aggregate with status=PENDING. The id is
// assigned when the booking is first saved.
func NewBooking(travelerID, propertyID int64, stay Stay, guests int) (*Booking, error) {
	if travelerID <= 0 {
		return nil, domain.NewValidationError("traveler ID is required")
	}
	if propertyID <= 0 {
		return nil, domain.NewValidationError("property_id must be a positive integer")
	}
	if stay.start.IsZero() || stay.end.IsZero() {
		return nil, domain.NewValidationError("start_date and end_date are required")
	}
	if guests < 1 {
		return nil, domain.NewValidationError("guests must be at least 1")
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	return &Booking{
		travelerID: travelerID,
		propertyID: propertyID,
		stay:       stay,
		guests:     guests,
		status:     StatusPending,
		version:    1,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id, travelerID, propertyID int64,
	stay Stay,
	guests int,
	status BookingStatus,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:         id,
		travelerID: travelerID,
		propertyID: propertyID,
		stay:       stay,
		guests:     guests,
		status:     status,
		version:    version,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

// ReconstructStay rebuilds a Stay from stored dates (no validation).
func ReconstructStay(start, end time.Time) Stay {
	return Stay{start: truncateToDate(start), end: truncateToDate(end)}
}

// --- Getters ---

// ID returns the booking's identifier, or zero before it is saved.
func (b *Booking) ID() int64 { return b.id }

// TravelerID returns the id of the traveler who requested the stay.
func (b *Booking) TravelerID() int64 { return b.travelerID }

// PropertyID returns the booked property's id.
func (b *Booking) PropertyID() int64 { return b.propertyID }

// Stay returns the booked date range.
func (b *Booking) Stay() Stay { return b.stay }

// Guests returns the number of guests.
func (b *Booking) Guests() int { return b.guests }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// AssignID records the identity given by the store on first save.
func (b *Booking) AssignID(id int64) { b.id = id }

// Accept transitions the booking from PENDING to ACCEPTED. Checking the
// calendar against other accepted stays is the caller's job.
func (b *Booking) Accept() error {
	if b.status != StatusPending {
		return domain.NewConflictError(MsgOnlyPendingCanBeAccepted)
	}
	b.status = StatusAccepted
	b.updatedAt = time.Now().UTC()
	return nil
}

// Cancel transitions a PENDING or ACCEPTED booking to CANCELLED.
func (b *Booking) Cancel() error {
	if !b.status.CanTransitionTo(StatusCancelled) {
		return domain.NewInvalidStateError(string(b.status), string(StatusCancelled))
	}
	b.status = StatusCancelled
	b.updatedAt = time.Now().UTC()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}

// PropertySummary is the slice of property data shown alongside a booking.
type PropertySummary struct {
	ID      int64
	OwnerID int64
	Name    string
	City    string
	Country string
}

// Details is a booking together with the property it belongs to.
type Details struct {
	Booking  *Booking
	Property PropertySummary
}

// VisibleTo reports whether the user may read the booking: the traveler who
// made it or the owner of the property.
func (d *Details) VisibleTo(userID int64) bool {
	return d.Booking.travelerID == userID || d.Property.OwnerID == userID
}
