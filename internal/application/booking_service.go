package application

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	bookingDomain "github.com/staynest/service-booking/internal/domain/booking"
	propertyDomain "github.com/staynest/service-booking/internal/domain/property"
	"github.com/staynest/service-booking/pkg/auth"
	"github.com/staynest/service-booking/pkg/domain"
	"github.com/staynest/service-booking/pkg/events"
	"github.com/staynest/service-booking/pkg/kafka"
)

const (
	eventSource    = "service-booking"
	publishTimeout = 5 * time.Second
)

// AvailabilityQuery is the query for checking whether a stay is free.
type AvailabilityQuery struct {
	PropertyID int64  `form:"property_id" binding:"required,gt=0"`
	StartDate  string `form:"start_date" binding:"required"`
	EndDate    string `form:"end_date" binding:"required"`
}

// CreateBookingRequest holds the data needed to request a stay. Guests
// defaults to 1 when omitted.
type CreateBookingRequest struct {
	PropertyID int64  `json:"property_id" binding:"required,gt=0"`
	StartDate  string `json:"start_date" binding:"required"`
	EndDate    string `json:"end_date" binding:"required"`
	Guests     *int   `json:"guests" binding:"omitempty,gte=1"`
}

// UpdateBookingStatusRequest is an owner's decision on a booking.
type UpdateBookingStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID           int64     `json:"id"`
	TravelerID   int64     `json:"traveler_id"`
	PropertyID   int64     `json:"property_id"`
	StartDate    string    `json:"start_date"`
	EndDate      string    `json:"end_date"`
	Nights       int       `json:"nights"`
	Guests       int       `json:"guests"`
	Status       string    `json:"status"`
	PropertyName string    `json:"property_name,omitempty"`
	City         string    `json:"city,omitempty"`
	Country      string    `json:"country,omitempty"`
	Version      int64     `json:"version"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CalendarEntryDTO is an accepted stay on a property's public calendar.
type CalendarEntryDTO struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// AvailabilityDTO is the answer to an availability check.
type AvailabilityDTO struct {
	Available bool `json:"available"`
}

// BookingStatsDTO summarises bookings by status (admin).
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// Actor is the authenticated caller of a use case.
type Actor struct {
	UserID int64
	Role   auth.Role
}

// EventPublisher publishes domain events to the message bus.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// CalendarCache caches the accepted stays of a property. Entries may be
// stale until invalidated or expired.
type CalendarCache interface {
	Get(ctx context.Context, propertyID int64) ([]bookingDomain.Stay, bool)
	Set(ctx context.Context, propertyID int64, stays []bookingDomain.Stay)
	Invalidate(ctx context.Context, propertyID int64)
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	tx         bookingDomain.Transactor
	bookings   bookingDomain.BookingRepository
	properties propertyDomain.PropertyRepository
	calendar   CalendarCache
	producer   EventPublisher
	logger     *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	tx bookingDomain.Transactor,
	bookings bookingDomain.BookingRepository,
	properties propertyDomain.PropertyRepository,
	calendar CalendarCache,
	producer EventPublisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		tx:         tx,
		bookings:   bookings,
		properties: properties,
		calendar:   calendar,
		producer:   producer,
		logger:     logger,
	}
}

// CheckOverlap reports whether the stay collides with a PENDING or ACCEPTED
// booking of the property.
func (s *BookingService) CheckOverlap(ctx context.Context, propertyID int64, stay bookingDomain.Stay) (bool, error) {
	if propertyID <= 0 {
		return false, domain.NewValidationError("property_id must be a positive integer")
	}
	return s.bookings.HasOverlap(ctx, propertyID, stay, bookingDomain.BlockingStatuses, 0)
}

// CheckAvailability answers whether a stay could currently be requested.
func (s *BookingService) CheckAvailability(ctx context.Context, q AvailabilityQuery) (*AvailabilityDTO, error) {
	if q.PropertyID <= 0 {
		return nil, domain.NewValidationError("property_id must be a positive integer")
	}
	stay, err := bookingDomain.ParseStay(q.StartDate, q.EndDate)
	if err != nil {
		return nil, err
	}
	overlap, err := s.CheckOverlap(ctx, q.PropertyID, stay)
	if err != nil {
		return nil, err
	}
	return &AvailabilityDTO{Available: !overlap}, nil
}

// CreateBooking places a PENDING hold for the traveler. The overlap check
// and the insert are not atomic: two racing requests can both succeed, and
// the accept path decides between them.
func (s *BookingService) CreateBooking(ctx context.Context, travelerID int64, req CreateBookingRequest) (*BookingDTO, error) {
	if req.PropertyID <= 0 {
		return nil, domain.NewValidationError("property_id must be a positive integer")
	}
	stay, err := bookingDomain.ParseStay(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	guests := 1
	if req.Guests != nil {
		guests = *req.Guests
	}
	if guests < 1 {
		return nil, domain.NewValidationError("guests must be at least 1")
	}

	prop, err := s.properties.FindByID(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}
	if err := prop.CheckBookable(travelerID, guests); err != nil {
		return nil, err
	}

	overlap, err := s.CheckOverlap(ctx, prop.ID(), stay)
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, domain.NewConflictError(bookingDomain.MsgDatesOverlap)
	}

	bk, err := bookingDomain.NewBooking(travelerID, prop.ID(), stay, guests)
	if err != nil {
		return nil, err
	}
	if err := s.bookings.Save(ctx, bk); err != nil {
		return nil, domain.NewInternalError(err, "failed to create booking")
	}

	s.logger.Info("booking requested",
		zap.Int64("booking_id", bk.ID()),
		zap.Int64("property_id", prop.ID()),
		zap.Int64("traveler_id", travelerID),
		zap.String("stay", stay.String()),
	)

	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingRequested, bk.ID(), events.BookingRequestedEvent{
		BookingID:  bk.ID(),
		PropertyID: prop.ID(),
		TravelerID: travelerID,
		OwnerID:    prop.OwnerID(),
		StartDate:  stay.Start().Format(bookingDomain.DateLayout),
		EndDate:    stay.End().Format(bookingDomain.DateLayout),
		Guests:     guests,
		OccurredAt: bk.CreatedAt(),
	})

	result := toBookingDTO(&bookingDomain.Details{Booking: bk, Property: summaryOf(prop)})
	return &result, nil
}

// UpdateBookingStatus applies an owner's decision. The booking row and then
// the property row are locked for the whole transaction, so two accepts on
// the same property run one after the other and the second sees the first.
// Requesting the current status returns the booking unchanged.
func (s *BookingService) UpdateBookingStatus(ctx context.Context, bookingID, ownerID int64, status string) (*BookingDTO, error) {
	if bookingID <= 0 {
		return nil, domain.NewValidationError("booking id must be a positive integer")
	}
	target, err := bookingDomain.ParseOwnerDecision(status)
	if err != nil {
		return nil, err
	}

	var (
		result   *bookingDomain.Details
		previous bookingDomain.BookingStatus
		changed  bool
	)
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.bookings.FindByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if current.Property.OwnerID != ownerID {
			return domain.NewForbiddenError("Forbidden")
		}

		bk := current.Booking
		previous = bk.Status()
		if previous == target {
			result = current
			return nil
		}

		switch target {
		case bookingDomain.StatusAccepted:
			if err := bk.Accept(); err != nil {
				return err
			}
			if err := s.properties.LockForUpdate(ctx, bk.PropertyID()); err != nil {
				return err
			}
			conflict, err := s.bookings.HasOverlap(ctx, bk.PropertyID(), bk.Stay(),
				[]bookingDomain.BookingStatus{bookingDomain.StatusAccepted}, bk.ID())
			if err != nil {
				return err
			}
			if conflict {
				return domain.NewConflictError(bookingDomain.MsgAcceptConflict)
			}
		case bookingDomain.StatusCancelled:
			if err := bk.Cancel(); err != nil {
				return err
			}
		}

		bk.IncrementVersion()
		if err := s.bookings.UpdateStatus(ctx, bk); err != nil {
			return err
		}
		result, err = s.bookings.FindByID(ctx, bk.ID())
		if err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	bk := result.Booking
	if changed {
		s.calendar.Invalidate(ctx, bk.PropertyID())

		s.logger.Info("booking status changed",
			zap.Int64("booking_id", bk.ID()),
			zap.String("from", previous.String()),
			zap.String("to", bk.Status().String()),
		)

		eventType := events.BookingAccepted
		if bk.Status() == bookingDomain.StatusCancelled {
			eventType = events.BookingCancelled
		}
		s.publishEvent(ctx, events.TopicBookingEvents, eventType, bk.ID(), events.BookingStatusChangedEvent{
			BookingID:      bk.ID(),
			PropertyID:     bk.PropertyID(),
			TravelerID:     bk.TravelerID(),
			OwnerID:        result.Property.OwnerID,
			PreviousStatus: previous.String(),
			Status:         bk.Status().String(),
			StartDate:      bk.Stay().Start().Format(bookingDomain.DateLayout),
			EndDate:        bk.Stay().End().Format(bookingDomain.DateLayout),
			OccurredAt:     bk.UpdatedAt(),
		})
	}

	dto := toBookingDTO(result)
	return &dto, nil
}

// GetBooking returns a booking visible to the actor: its traveler, the
// property owner, or an admin.
func (s *BookingService) GetBooking(ctx context.Context, bookingID int64, actor Actor) (*BookingDTO, error) {
	if bookingID <= 0 {
		return nil, domain.NewValidationError("booking id must be a positive integer")
	}
	d, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if actor.Role != auth.RoleAdmin && !d.VisibleTo(actor.UserID) {
		return nil, domain.NewForbiddenError("Forbidden")
	}
	result := toBookingDTO(d)
	return &result, nil
}

// ListPropertyCalendar returns the accepted stays of a property, earliest first.
func (s *BookingService) ListPropertyCalendar(ctx context.Context, propertyID int64) ([]CalendarEntryDTO, error) {
	if propertyID <= 0 {
		return nil, domain.NewValidationError("property_id must be a positive integer")
	}

	stays, ok := s.calendar.Get(ctx, propertyID)
	if !ok {
		var err error
		stays, err = s.bookings.ListAcceptedStays(ctx, propertyID)
		if err != nil {
			return nil, err
		}
		s.calendar.Set(ctx, propertyID, stays)
	}

	entries := make([]CalendarEntryDTO, len(stays))
	for i, stay := range stays {
		entries[i] = CalendarEntryDTO{
			StartDate: stay.Start().Format(bookingDomain.DateLayout),
			EndDate:   stay.End().Format(bookingDomain.DateLayout),
		}
	}
	return entries, nil
}

// ListTravelerBookings returns the traveler's bookings, latest stay first.
func (s *BookingService) ListTravelerBookings(ctx context.Context, travelerID int64) ([]BookingDTO, error) {
	details, err := s.bookings.FindByTravelerID(ctx, travelerID)
	if err != nil {
		return nil, err
	}
	return toBookingDTOs(details), nil
}

// ListOwnerBookings returns bookings across the owner's properties, latest stay first.
func (s *BookingService) ListOwnerBookings(ctx context.Context, ownerID int64) ([]BookingDTO, error) {
	details, err := s.bookings.FindByPropertyOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return toBookingDTOs(details), nil
}

// ListAllBookings returns all bookings with pagination (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	details, total, err := s.bookings.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	return toBookingDTOs(details), total, nil
}

// GetBookingStats returns booking counts by status (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.bookings.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	stats := &BookingStatsDTO{ByStatus: make(map[string]int64, len(counts))}
	for _, status := range []bookingDomain.BookingStatus{
		bookingDomain.StatusPending, bookingDomain.StatusAccepted, bookingDomain.StatusCancelled,
	} {
		stats.ByStatus[status.String()] = 0
	}
	for status, n := range counts {
		stats.ByStatus[status] = n
		stats.TotalBookings += n
	}
	return stats, nil
}

// --- Helpers ---

// publishEvent sends an event after the state change is durable. Failures
// are logged; the request has already succeeded.
func (s *BookingService) publishEvent(ctx context.Context, topic, eventType string, bookingID int64, data any) {
	cloudEvent, err := kafka.NewCloudEvent(eventSource, eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}
	cloudEvent.Subject = strconv.FormatInt(bookingID, 10)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.producer.PublishEvent(ctx, topic, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Int64("booking_id", bookingID),
			zap.Error(err),
		)
	}
}

func summaryOf(p *propertyDomain.Property) bookingDomain.PropertySummary {
	return bookingDomain.PropertySummary{
		ID:      p.ID(),
		OwnerID: p.OwnerID(),
		Name:    p.Name(),
		City:    p.City(),
		Country: p.Country(),
	}
}

func toBookingDTO(d *bookingDomain.Details) BookingDTO {
	bk := d.Booking
	return BookingDTO{
		ID:           bk.ID(),
		TravelerID:   bk.TravelerID(),
		PropertyID:   bk.PropertyID(),
		StartDate:    bk.Stay().Start().Format(bookingDomain.DateLayout),
		EndDate:      bk.Stay().End().Format(bookingDomain.DateLayout),
		Nights:       bk.Stay().Nights(),
		Guests:       bk.Guests(),
		Status:       bk.Status().String(),
		PropertyName: d.Property.Name,
		City:         d.Property.City,
		Country:      d.Property.Country,
		Version:      bk.Version(),
		CreatedAt:    bk.CreatedAt(),
		UpdatedAt:    bk.UpdatedAt(),
	}
}

func toBookingDTOs(details []*bookingDomain.Details) []BookingDTO {
	out := make([]BookingDTO, len(details))
	for i, d := range details {
		out[i] = toBookingDTO(d)
	}
	return out
}
