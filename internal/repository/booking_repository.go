package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	bookingDomain "github.com/staynest/service-booking/internal/domain/booking"
	"github.com/staynest/service-booking/pkg/domain"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID         int64          `gorm:"primaryKey;autoIncrement"`
	TravelerID int64          `gorm:"not null;index"`
	PropertyID int64          `gorm:"not null;index:idx_bookings_property_status,priority:1"`
	StartDate  datatypes.Date `gorm:"not null"`
	EndDate    datatypes.Date `gorm:"not null"`
	Guests     int            `gorm:"not null"`
	Status     string         `gorm:"not null;size:20;index:idx_bookings_property_status,priority:2"`
	Version    int64          `gorm:"not null"`
	CreatedAt  time.Time      `gorm:"not null"`
	UpdatedAt  time.Time      `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// bookingDetailsRow is a booking joined with its property's summary columns.
type bookingDetailsRow struct {
	BookingModel
	PropertyOwnerID int64
	PropertyName    string
	PropertyCity    string
	PropertyCountry string
}

const bookingDetailsColumns = "b.*, p.owner_id AS property_owner_id, p.name AS property_name, " +
	"p.city AS property_city, p.country AS property_country"

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

func (r *GormBookingRepository) details(ctx context.Context) *gorm.DB {
	return conn(ctx, r.db).
		Table("bookings AS b").
		Select(bookingDetailsColumns).
		Joins("JOIN properties p ON p.id = b.property_id")
}

// Save persists a new booking and assigns its id.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)
	if err := conn(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	bk.AssignID(model.ID)
	return nil
}

// UpdateStatus persists a status change. The row must still be at the
// version the booking was loaded with.
func (r *GormBookingRepository) UpdateStatus(ctx context.Context, bk *bookingDomain.Booking) error {
	expectedVersion := bk.Version() - 1
	result := conn(ctx, r.db).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", bk.ID(), expectedVersion).
		Updates(map[string]any{
			"status":     string(bk.Status()),
			"version":    bk.Version(),
			"updated_at": bk.UpdatedAt(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update booking status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another request")
	}
	return nil
}

// FindByID retrieves a booking with its property summary.
func (r *GormBookingRepository) FindByID(ctx context.Context, id int64) (*bookingDomain.Details, error) {
	return r.findOne(r.details(ctx).Where("b.id = ?", id), id)
}

// FindByIDForUpdate retrieves a booking and locks its row (FOR UPDATE OF b).
// The property row is not locked here.
func (r *GormBookingRepository) FindByIDForUpdate(ctx context.Context, id int64) (*bookingDomain.Details, error) {
	q := r.details(ctx).
		Where("b.id = ?", id).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate, Table: clause.Table{Name: "b"}})
	return r.findOne(q, id)
}

func (r *GormBookingRepository) findOne(q *gorm.DB, id int64) (*bookingDomain.Details, error) {
	var row bookingDetailsRow
	if err := q.Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id)
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return toDomainDetails(&row)
}

// HasOverlap reports whether another booking blocks the stay. Ranges are
// half-open: a stay ending on another's start date does not overlap it.
func (r *GormBookingRepository) HasOverlap(
	ctx context.Context,
	propertyID int64,
	stay bookingDomain.Stay,
	statuses []bookingDomain.BookingStatus,
	excludeID int64,
) (bool, error) {
	q := conn(ctx, r.db).
		Model(&BookingModel{}).
		Where("property_id = ?", propertyID).
		Where("status IN ?", bookingDomain.StatusStrings(statuses...)).
		Where("NOT (end_date <= ? OR start_date >= ?)", datatypes.Date(stay.Start()), datatypes.Date(stay.End()))
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var ids []int64
	if err := q.Limit(1).Pluck("id", &ids).Error; err != nil {
		return false, fmt.Errorf("failed to check booking overlap: %w", err)
	}
	return len(ids) > 0, nil
}

// ListAcceptedStays returns the property's ACCEPTED stays ordered by start date.
func (r *GormBookingRepository) ListAcceptedStays(ctx context.Context, propertyID int64) ([]bookingDomain.Stay, error) {
	var rows []struct {
		StartDate datatypes.Date
		EndDate   datatypes.Date
	}
	err := conn(ctx, r.db).
		Model(&BookingModel{}).
		Select("start_date, end_date").
		Where("property_id = ? AND status = ?", propertyID, string(bookingDomain.StatusAccepted)).
		Order("start_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list accepted stays: %w", err)
	}

	stays := make([]bookingDomain.Stay, len(rows))
	for i, row := range rows {
		stays[i] = bookingDomain.ReconstructStay(time.Time(row.StartDate), time.Time(row.EndDate))
	}
	return stays, nil
}

// FindByTravelerID returns the traveler's bookings, latest start date first.
func (r *GormBookingRepository) FindByTravelerID(ctx context.Context, travelerID int64) ([]*bookingDomain.Details, error) {
	return r.findMany(r.details(ctx).
		Where("b.traveler_id = ?", travelerID).
		Order("b.start_date DESC, b.id DESC"))
}

// FindByPropertyOwnerID returns bookings on the owner's properties, latest start date first.
func (r *GormBookingRepository) FindByPropertyOwnerID(ctx context.Context, ownerID int64) ([]*bookingDomain.Details, error) {
	return r.findMany(r.details(ctx).
		Where("p.owner_id = ?", ownerID).
		Order("b.start_date DESC, b.id DESC"))
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Details, int64, error) {
	var total int64
	if err := conn(ctx, r.db).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	offset := (page - 1) * limit
	bookings, err := r.findMany(r.details(ctx).
		Order("b.created_at DESC, b.id DESC").
		Offset(offset).
		Limit(limit))
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := conn(ctx, r.db).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

func (r *GormBookingRepository) findMany(q *gorm.DB) ([]*bookingDomain.Details, error) {
	var rows []bookingDetailsRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	out := make([]*bookingDomain.Details, len(rows))
	for i := range rows {
		d, err := toDomainDetails(&rows[i])
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:         bk.ID(),
		TravelerID: bk.TravelerID(),
		PropertyID: bk.PropertyID(),
		StartDate:  datatypes.Date(bk.Stay().Start()),
		EndDate:    datatypes.Date(bk.Stay().End()),
		Guests:     bk.Guests(),
		Status:     string(bk.Status()),
		Version:    bk.Version(),
		CreatedAt:  bk.CreatedAt(),
		UpdatedAt:  bk.UpdatedAt(),
	}
}

// toDomainBooking rebuilds the aggregate from a stored row. A status outside
// the state machine is reported instead of being loaded.
func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, fmt.Errorf("booking %d: %w", m.ID, err)
	}
	return bookingDomain.ReconstructBooking(
		m.ID,
		m.TravelerID,
		m.PropertyID,
		bookingDomain.ReconstructStay(time.Time(m.StartDate), time.Time(m.EndDate)),
		m.Guests,
		status,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainDetails(row *bookingDetailsRow) (*bookingDomain.Details, error) {
	bk, err := toDomainBooking(&row.BookingModel)
	if err != nil {
		return nil, err
	}
	return &bookingDomain.Details{
		Booking: bk,
		Property: bookingDomain.PropertySummary{
			ID:      row.PropertyID,
			OwnerID: row.PropertyOwnerID,
			Name:    row.PropertyName,
			City:    row.PropertyCity,
			Country: row.PropertyCountry,
		},
	}, nil
}
