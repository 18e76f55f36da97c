package ports

import (
	"context"

	"location-distance-service/internal/domain"
)

// Port: a boundary for reading and writing Location entities.
type LocationRepository interface {
	Get(ctx context.Context, id int64) (*domain.Location, error)
	GetByShortCode(ctx context.Context, code string) (*domain.Location, error)
	List(ctx context.Context) ([]*domain.Location, error)
	ListByType(ctx context.Context, t domain.LocationType) ([]*domain.Location, error)
	// ListPairedDistributionCenters returns every distribution center whose
	// recycling pairing points at the given recycling location.
	ListPairedDistributionCenters(ctx context.Context, recyclingID int64) ([]*domain.Location, error)
	Create(ctx context.Context, loc *domain.Location) error
	Update(ctx context.Context, loc *domain.Location) error
	Delete(ctx context.Context, id int64) error
}
