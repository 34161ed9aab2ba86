package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	propertyDomain "github.com/staynest/service-booking/internal/domain/property"
)

// UpsertPropertyRequest carries the property basics this service projects.
type UpsertPropertyRequest struct {
	OwnerID  int64  `json:"owner_id" binding:"required,gt=0"`
	Name     string `json:"name" binding:"max=255"`
	City     string `json:"city" binding:"max=120"`
	Country  string `json:"country" binding:"max=120"`
	Bedrooms int    `json:"bedrooms" binding:"gte=0"`
	Capacity int    `json:"capacity" binding:"gte=0"`
}

// PropertyDTO is the API response representation of a projected property.
type PropertyDTO struct {
	ID                int64     `json:"id"`
	OwnerID           int64     `json:"owner_id"`
	Name              string    `json:"name"`
	City              string    `json:"city"`
	Country           string    `json:"country"`
	Bedrooms          int       `json:"bedrooms"`
	Capacity          int       `json:"capacity"`
	EffectiveCapacity int       `json:"effective_capacity"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// PropertyService maintains the local projection of property basics.
type PropertyService struct {
	repo   propertyDomain.PropertyRepository
	logger *zap.Logger
}

// NewPropertyService creates a new PropertyService.
func NewPropertyService(repo propertyDomain.PropertyRepository, logger *zap.Logger) *PropertyService {
	return &PropertyService{repo: repo, logger: logger}
}

// UpsertProperty inserts or overwrites the basics of property id.
func (s *PropertyService) UpsertProperty(ctx context.Context, id int64, req UpsertPropertyRequest) (*PropertyDTO, error) {
	p, err := propertyDomain.NewProperty(id, req.OwnerID, req.Name, req.City, req.Country, req.Bedrooms, req.Capacity)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Upsert(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("property projection updated",
		zap.Int64("property_id", p.ID()),
		zap.Int64("owner_id", p.OwnerID()),
		zap.Int("effective_capacity", p.EffectiveCapacity()),
	)

	result := toPropertyDTO(p)
	return &result, nil
}

// GetProperty returns the projected property.
func (s *PropertyService) GetProperty(ctx context.Context, id int64) (*PropertyDTO, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result := toPropertyDTO(p)
	return &result, nil
}

func toPropertyDTO(p *propertyDomain.Property) PropertyDTO {
	return PropertyDTO{
		ID:                p.ID(),
		OwnerID:           p.OwnerID(),
		Name:              p.Name(),
		City:              p.City(),
		Country:           p.Country(),
		Bedrooms:          p.Bedrooms(),
		Capacity:          p.Capacity(),
		EffectiveCapacity: p.EffectiveCapacity(),
		UpdatedAt:         p.UpdatedAt(),
	}
}
