package services

import (
	"context"
	"fmt"
	"log"

	"location-distance-service/internal/domain"
	"location-distance-service/internal/ports"
)

// LocationService is the write path for locations. It validates, persists,
// and emits LocationChanged events to the recalculator so cached distances
// follow address and pairing edits.
type LocationService struct {
	repo   ports.LocationRepository
	recalc *Recalculator
}

func NewLocationService(repo ports.LocationRepository, recalc *Recalculator) *LocationService {
	return &LocationService{repo: repo, recalc: recalc}
}

func (s *LocationService) Get(ctx context.Context, id int64) (*domain.Location, error) {
	return s.repo.Get(ctx, id)
}

func (s *LocationService) List(ctx context.Context) ([]*domain.Location, error) {
	return s.repo.List(ctx)
}

func (s *LocationService) Create(ctx context.Context, loc *domain.Location) error {
	if err := s.repo.Create(ctx, loc); err != nil {
		return fmt.Errorf("create location: %w", err)
	}
	return nil
}

// Update persists the edit, then runs the recalculation trigger when the
// address or recycling pairing changed. The trigger runs after the write and
// cannot roll it back; its failures are logged, not returned, because the
// distance table is recomputable at any time.
func (s *LocationService) Update(ctx context.Context, loc *domain.Location) error {
	current, err := s.repo.Get(ctx, loc.ID)
	if err != nil {
		return fmt.Errorf("update location: %w", err)
	}

	addressChanged := current.Address != loc.Address ||
		current.City != loc.City ||
		current.State != loc.State ||
		current.Zip != loc.Zip ||
		current.Country != loc.Country

	recyclingChanged := !equalID(current.RecyclingLocationID, loc.RecyclingLocationID)

	if err := s.repo.Update(ctx, loc); err != nil {
		return fmt.Errorf("update location: %w", err)
	}

	if addressChanged || recyclingChanged {
		ev := LocationChanged{
			Location:         loc,
			AddressChanged:   addressChanged,
			RecyclingChanged: recyclingChanged,
			OldRecyclingID:   current.RecyclingLocationID,
		}
		if err := s.recalc.HandleLocationChanged(ctx, ev); err != nil {
			log.Printf("post-update recalc failed: location=%s err=%v", loc.ShortCode, err)
		}
	}

	return nil
}

func (s *LocationService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete location: %w", err)
	}
	return nil
}

func equalID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
