package property

import (
	"time"

	"github.com/staynest/service-booking/pkg/domain"
)

// Messages for requests a property cannot take.
const (
	MsgSelfBooking      = "Owners cannot book their own property"
	MsgCapacityExceeded = "Guest count exceeds property capacity"
)

// Property is the local projection of a listing's basics. The listing
// itself is owned by the property service; this copy is kept current from
// its events.
type Property struct {
	id        int64
	ownerID   int64
	name      string
	city      string
	country   string
	bedrooms  int
	capacity  int
	updatedAt time.Time
}

// NewProperty validates and builds a projection row.
func NewProperty(id, ownerID int64, name, city, country string, bedrooms, capacity int) (*Property, error) {
	if id <= 0 {
		return nil, domain.NewValidationError("property id must be a positive integer")
	}
	if ownerID <= 0 {
		return nil, domain.NewValidationError("owner id must be a positive integer")
	}
	if bedrooms < 0 {
		return nil, domain.NewValidationError("bedrooms must not be negative")
	}
	if capacity < 0 {
		return nil, domain.NewValidationError("capacity must not be negative")
	}
	return &Property{
		id:        id,
		ownerID:   ownerID,
		name:      name,
		city:      city,
		country:   country,
		bedrooms:  bedrooms,
		capacity:  capacity,
		updatedAt: time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds a Property from persistence data (no validation).
func Reconstruct(id, ownerID int64, name, city, country string, bedrooms, capacity int, updatedAt time.Time) *Property {
	return &Property{
		id:        id,
		ownerID:   ownerID,
		name:      name,
		city:      city,
		country:   country,
		bedrooms:  bedrooms,
		capacity:  capacity,
		updatedAt: updatedAt,
	}
}

// ID returns the property id.
func (p *Property) ID() int64 { return p.id }

// OwnerID returns the owning user's id.
func (p *Property) OwnerID() int64 { return p.ownerID }

// Name returns the listing title.
func (p *Property) Name() string { return p.name }

// City returns the city.
func (p *Property) City() string { return p.city }

// Country returns the country.
func (p *Property) Country() string { return p.country }

// Bedrooms returns the bedroom count.
func (p *Property) Bedrooms() int { return p.bedrooms }

// Capacity returns the owner-declared capacity; zero means undeclared.
func (p *Property) Capacity() int { return p.capacity }

// UpdatedAt returns when the projection last changed.
func (p *Property) UpdatedAt() time.Time { return p.updatedAt }

// IsOwnedBy reports whether userID owns the property.
func (p *Property) IsOwnedBy(userID int64) bool { return p.ownerID == userID }

// EffectiveCapacity returns the guest limit enforced at booking time.
func (p *Property) EffectiveCapacity() int {
	return EffectiveCapacity(p.bedrooms, p.capacity)
}

// CheckBookable rejects requests from the owner and parties larger than the
// effective capacity.
func (p *Property) CheckBookable(travelerID int64, guests int) error {
	if p.IsOwnedBy(travelerID) {
		return domain.NewValidationError(MsgSelfBooking)
	}
	if guests > p.EffectiveCapacity() {
		return domain.NewValidationError(MsgCapacityExceeded)
	}
	return nil
}

// EffectiveCapacity derives the guest limit from bedrooms and the declared
// capacity. Declared values are raised to two guests per bedroom and capped
// at three per bedroom; a property without bedrooms always sleeps two.
func EffectiveCapacity(bedrooms, declared int) int {
	hardMax := 2
	if bedrooms > 0 {
		hardMax = bedrooms * 3
	}
	logical := 2
	if bedrooms > 1 {
		logical = bedrooms * 2
	}
	capacity := declared
	if capacity <= 0 {
		capacity = logical
	}
	return min(max(capacity, logical), hardMax)
}
