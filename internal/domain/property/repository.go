package property

import "context"

// PropertyRepository defines persistence operations for the property projection.
type PropertyRepository interface {
	FindByID(ctx context.Context, id int64) (*Property, error)
	Upsert(ctx context.Context, property *Property) error
	// LockForUpdate takes a row lock on the property for the rest of the
	// surrounding transaction.
	LockForUpdate(ctx context.Context, id int64) error
}
