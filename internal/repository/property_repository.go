package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	propertyDomain "github.com/staynest/service-booking/internal/domain/property"
	"github.com/staynest/service-booking/pkg/domain"
)

// PropertyModel is the GORM model for the properties projection table.
type PropertyModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false"`
	OwnerID   int64     `gorm:"not null;index"`
	Name      string    `gorm:"size:255;not null"`
	City      string    `gorm:"size:120;not null"`
	Country   string    `gorm:"size:120;not null"`
	Bedrooms  int       `gorm:"not null"`
	Capacity  int       `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (PropertyModel) TableName() string {
	return "properties"
}

// GormPropertyRepository is the GORM-based implementation of PropertyRepository.
type GormPropertyRepository struct {
	db *gorm.DB
}

// NewGormPropertyRepository creates a new GormPropertyRepository.
func NewGormPropertyRepository(db *gorm.DB) *GormPropertyRepository {
	return &GormPropertyRepository{db: db}
}

// FindByID retrieves a property by id.
func (r *GormPropertyRepository) FindByID(ctx context.Context, id int64) (*propertyDomain.Property, error) {
	var model PropertyModel
	if err := conn(ctx, r.db).Where("id = ?", id).Take(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Property", id)
		}
		return nil, fmt.Errorf("failed to find property: %w", err)
	}
	return toDomainProperty(&model), nil
}

// Upsert inserts the property or overwrites its basics.
func (r *GormPropertyRepository) Upsert(ctx context.Context, p *propertyDomain.Property) error {
	model := toPropertyModel(p)
	err := conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"owner_id", "name", "city", "country", "bedrooms", "capacity", "updated_at"}),
	}).Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to upsert property: %w", err)
	}
	return nil
}

// lockingStrengthNoKeyUpdate conflicts with itself but not with the KEY SHARE
// lock that inserting a referencing booking takes.
const lockingStrengthNoKeyUpdate = "NO KEY UPDATE"

// LockForUpdate takes a row lock on the property. Accepts for the same
// property queue behind it; new bookings can still be inserted.
func (r *GormPropertyRepository) LockForUpdate(ctx context.Context, id int64) error {
	var model PropertyModel
	err := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: lockingStrengthNoKeyUpdate}).
		Select("id").
		Where("id = ?", id).
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NewNotFoundError("Property", id)
		}
		return fmt.Errorf("failed to lock property: %w", err)
	}
	return nil
}

func toPropertyModel(p *propertyDomain.Property) *PropertyModel {
	return &PropertyModel{
		ID:        p.ID(),
		OwnerID:   p.OwnerID(),
		Name:      p.Name(),
		City:      p.City(),
		Country:   p.Country(),
		Bedrooms:  p.Bedrooms(),
		Capacity:  p.Capacity(),
		UpdatedAt: p.UpdatedAt(),
	}
}

func toDomainProperty(m *PropertyModel) *propertyDomain.Property {
	return propertyDomain.Reconstruct(m.ID, m.OwnerID, m.Name, m.City, m.Country, m.Bedrooms, m.Capacity, m.UpdatedAt)
}
