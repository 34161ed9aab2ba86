package cache

import (
	"context"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"

	bookingDomain "github.com/staynest/service-booking/internal/domain/booking"
)

func calendarKey(propertyID int64) string {
	return "calendar:" + strconv.FormatInt(propertyID, 10)
}

// MemoryCalendarCache keeps property calendars in process memory.
type MemoryCalendarCache struct {
	store *gocache.Cache
}

// NewMemoryCalendarCache creates a new MemoryCalendarCache whose entries
// expire after ttl.
func NewMemoryCalendarCache(ttl time.Duration) *MemoryCalendarCache {
	return &MemoryCalendarCache{store: gocache.New(ttl, 2*ttl)}
}

// Get returns the cached calendar for the property.
func (c *MemoryCalendarCache) Get(_ context.Context, propertyID int64) ([]bookingDomain.Stay, bool) {
	v, ok := c.store.Get(calendarKey(propertyID))
	if !ok {
		return nil, false
	}
	stays, ok := v.([]bookingDomain.Stay)
	return stays, ok
}

// Set stores the calendar for the property.
func (c *MemoryCalendarCache) Set(_ context.Context, propertyID int64, stays []bookingDomain.Stay) {
	c.store.SetDefault(calendarKey(propertyID), stays)
}

// Invalidate drops the property's calendar.
func (c *MemoryCalendarCache) Invalidate(_ context.Context, propertyID int64) {
	c.store.Delete(calendarKey(propertyID))
}
