package services

import (
	"context"
	"fmt"
	"log"

	"location-distance-service/internal/domain"
	"location-distance-service/internal/ports"
)

// LocationChanged is emitted by the location write path after a successful
// update. It replaces an implicit save-hook: the producer states exactly what
// changed so the handler does not re-diff the entity.
type LocationChanged struct {
	Location         *domain.Location
	AddressChanged   bool
	RecyclingChanged bool
	// OldRecyclingID is the pairing before the update, needed to clean up
	// the old pair's record when a pairing is cleared.
	OldRecyclingID   *int64
}

// Recalculator reacts to location changes by force-recomputing the affected
// cached distances. It runs inline with the triggering write; per-pair
// failures are logged and skipped, never escalated, because distance data is
// a cache.
type Recalculator struct {
	repo      ports.LocationRepository
	distances *DistanceService
}

func NewRecalculator(repo ports.LocationRepository, distances *DistanceService) *Recalculator {
	return &Recalculator{repo: repo, distances: distances}
}

// HandleLocationChanged applies the recalculation rules for one change event.
func (r *Recalculator) HandleLocationChanged(ctx context.Context, ev LocationChanged) error {
	loc := ev.Location
	if loc == nil {
		return nil
	}

	switch {
	case loc.IsDistributionCenter() && (ev.RecyclingChanged || ev.AddressChanged):
		return r.recalcForDistributionCenter(ctx, loc, ev.OldRecyclingID)
	case loc.IsRecycling() && ev.AddressChanged:
		return r.recalcForRecycling(ctx, loc)
	}

	return nil
}

// RecalcForLocation force-recomputes everything derivable from one location,
// treating both its address and pairing as changed. This is the public entry
// point for callers outside the update path (admin actions, batch commands).
func (r *Recalculator) RecalcForLocation(ctx context.Context, loc *domain.Location) error {
	return r.HandleLocationChanged(ctx, LocationChanged{
		Location:         loc,
		AddressChanged:   true,
		RecyclingChanged: true,
		OldRecyclingID:   loc.RecyclingLocationID,
	})
}

func (r *Recalculator) recalcForDistributionCenter(
	ctx context.Context,
	dc *domain.Location,
	oldRecyclingID *int64,
) error {
	if dc.RecyclingLocationID == nil {
		// Pairing cleared: the derived record is orphaned, remove it.
		if oldRecyclingID != nil {
			if err := r.distances.Delete(ctx, dc.ID, *oldRecyclingID); err != nil {
				return fmt.Errorf("recalc DC %q: %w", dc.ShortCode, err)
			}
		}
		return nil
	}

	rec, err := r.repo.Get(ctx, *dc.RecyclingLocationID)
	if err != nil {
		return fmt.Errorf("recalc DC %q: load recycling location: %w", dc.ShortCode, err)
	}

	if _, err := r.distances.Between(ctx, dc, rec, true); err != nil {
		return fmt.Errorf("recalc DC %q -> %q: %w", dc.ShortCode, rec.ShortCode, err)
	}

	return nil
}

func (r *Recalculator) recalcForRecycling(ctx context.Context, recycling *domain.Location) error {
	dcs, err := r.repo.ListPairedDistributionCenters(ctx, recycling.ID)
	if err != nil {
		return fmt.Errorf("recalc recycling %q: list paired DCs: %w", recycling.ShortCode, err)
	}

	// Log-and-continue: one DC's failed recompute must not block the rest.
	failed := 0
	for _, dc := range dcs {
		if _, err := r.distances.Between(ctx, dc, recycling, true); err != nil {
			failed++
			log.Printf("recalc failed: dc=%s recycling=%s err=%v", dc.ShortCode, recycling.ShortCode, err)
		}
	}

	if failed > 0 {
		log.Printf("recalc recycling=%s done: total=%d failed=%d", recycling.ShortCode, len(dcs), failed)
	}

	return nil
}
