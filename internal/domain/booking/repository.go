package booking

import (
	"context"
)

// BookingRepository defines the persistence contract for booking aggregates.
// Methods run inside the caller's transaction when ctx carries one.
type BookingRepository interface {
	// Save persists a new booking and assigns its id.
	Save(ctx context.Context, booking *Booking) error

	// UpdateStatus persists a status change with optimistic locking on version.
	UpdateStatus(ctx context.Context, booking *Booking) error

	// FindByID retrieves a booking with its property summary.
	FindByID(ctx context.Context, id int64) (*Details, error)

	// FindByIDForUpdate is FindByID that also locks the booking row until the
	// surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id int64) (*Details, error)

	// HasOverlap reports whether any booking of the property in one of the
	// given statuses overlaps stay. excludeID, when positive, is ignored.
	HasOverlap(ctx context.Context, propertyID int64, stay Stay, statuses []BookingStatus, excludeID int64) (bool, error)

	// ListAcceptedStays returns the property's ACCEPTED stays ordered by start date.
	ListAcceptedStays(ctx context.Context, propertyID int64) ([]Stay, error)

	// FindByTravelerID returns the traveler's bookings, latest start date first.
	FindByTravelerID(ctx context.Context, travelerID int64) ([]*Details, error)

	// FindByPropertyOwnerID returns bookings on the owner's properties, latest start date first.
	FindByPropertyOwnerID(ctx context.Context, ownerID int64) ([]*Details, error)

	// ListAll retrieves all bookings with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Details, int64, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// Transactor runs fn inside a database transaction carried on the context.
// fn's error rolls the transaction back.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
