package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingDomain "github.com/staynest/service-booking/internal/domain/booking"
)

func TestMemoryCalendarCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCalendarCache(time.Minute)

	_, ok := c.Get(ctx, 1)
	assert.False(t, ok)

	stay, err := bookingDomain.ParseStay("2025-01-01", "2025-01-04")
	require.NoError(t, err)
	c.Set(ctx, 1, []bookingDomain.Stay{stay})

	got, ok := c.Get(ctx, 1)
	require.True(t, ok)
	assert.Equal(t, []bookingDomain.Stay{stay}, got)

	_, ok = c.Get(ctx, 2)
	assert.False(t, ok)

	c.Invalidate(ctx, 1)
	_, ok = c.Get(ctx, 1)
	assert.False(t, ok)
}

func TestMemoryCalendarCache_CachesEmptyCalendars(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCalendarCache(time.Minute)

	c.Set(ctx, 3, []bookingDomain.Stay{})
	got, ok := c.Get(ctx, 3)
	assert.True(t, ok)
	assert.Empty(t, got)
}

func TestMemoryCalendarCache_Expires(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCalendarCache(20 * time.Millisecond)
	c.Set(ctx, 1, nil)

	assert.Eventually(t, func() bool {
		_, ok := c.Get(ctx, 1)
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestNewRedisCalendarCache_BadURL(t *testing.T) {
	_, err := NewRedisCalendarCache(context.Background(), "not a url", time.Minute, nil)
	assert.Error(t, err)
}
