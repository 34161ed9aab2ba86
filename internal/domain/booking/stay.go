package booking

import (
	"time"

	"github.com/staynest/service-booking/pkg/domain"
)

// DateLayout is the wire format of stay dates.
const DateLayout = "2006-01-02"

// Stay is a half-open range of nights [start, end): the guest arrives on
// start and leaves on end, so back-to-back stays share a boundary day.
type Stay struct {
	start time.Time
	end   time.Time
}

// ParseDate parses a YYYY-MM-DD calendar date as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, domain.NewValidationError("Invalid date format (use YYYY-MM-DD)")
	}
	return t, nil
}

// NewStay builds a stay from two dates. Times of day are discarded.
func NewStay(start, end time.Time) (Stay, error) {
	s, e := truncateToDate(start), truncateToDate(end)
	if !s.Before(e) {
		return Stay{}, domain.NewValidationError("start_date must be before end_date")
	}
	return Stay{start: s, end: e}, nil
}

// ParseStay parses and validates a pair of YYYY-MM-DD dates.
func ParseStay(start, end string) (Stay, error) {
	if start == "" || end == "" {
		return Stay{}, domain.NewValidationError("start_date and end_date are required")
	}
	s, err := ParseDate(start)
	if err != nil {
		return Stay{}, err
	}
	e, err := ParseDate(end)
	if err != nil {
		return Stay{}, err
	}
	return NewStay(s, e)
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Start returns the check-in date.
func (s Stay) Start() time.Time { return s.start }

// End returns the check-out date.
func (s Stay) End() time.Time { return s.end }

// Nights returns the number of nights in the stay.
func (s Stay) Nights() int {
	return int(s.end.Sub(s.start).Hours() / 24)
}

// Overlaps reports whether two stays share at least one night.
func (s Stay) Overlaps(other Stay) bool {
	return s.start.Before(other.end) && s.end.After(other.start)
}

// String formats the stay as start/end.
func (s Stay) String() string {
	return s.start.Format(DateLayout) + "/" + s.end.Format(DateLayout)
}
