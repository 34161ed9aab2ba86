package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/staynest/service-booking/pkg/domain"
)

func TestBookingStatus_CanTransitionTo(t *testing.T) {
	all := []BookingStatus{StatusPending, StatusAccepted, StatusCancelled}
	allowed := map[[2]BookingStatus]bool{
		{StatusPending, StatusAccepted}:   true,
		{StatusPending, StatusCancelled}:  true,
		{StatusAccepted, StatusCancelled}: true,
	}

	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, allowed[[2]BookingStatus{from, to}], from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestParseOwnerDecision(t *testing.T) {
	for _, s := range []string{"ACCEPTED", "CANCELLED"} {
		got, err := ParseOwnerDecision(s)
		assert.NoError(t, err)
		assert.Equal(t, BookingStatus(s), got)
	}
	for _, s := range []string{"PENDING", "accepted", "", "REJECTED"} {
		_, err := ParseOwnerDecision(s)
		assert.True(t, domain.IsKind(err, domain.KindInvalidArgument), s)
	}
}

func TestParseBookingStatus(t *testing.T) {
	got, err := ParseBookingStatus("PENDING")
	assert.NoError(t, err)
	assert.Equal(t, StatusPending, got)

	_, err = ParseBookingStatus("requested")
	assert.Error(t, err)
}
