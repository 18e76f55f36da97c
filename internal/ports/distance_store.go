package ports

import (
	"context"

	"location-distance-service/internal/domain"
)

// DistanceStore persists one DistanceRecord per normalized location pair.
// Records are a cache, not a source of truth: concurrent writers to the same
// pair race on upsert and the last writer wins; the uniqueness constraint on
// the normalized pair prevents duplicate rows.
type DistanceStore interface {
	// Get returns the stored record for a normalized pair, with ok=false
	// when no record exists.
	Get(ctx context.Context, from, to int64) (*domain.DistanceRecord, bool, error)
	// Upsert creates or overwrites the record for its normalized pair.
	Upsert(ctx context.Context, rec *domain.DistanceRecord) error
	// Delete removes the record for a normalized pair, if present.
	Delete(ctx context.Context, from, to int64) error
	// ListOutdated returns records calculated more than thresholdDays ago.
	// Staleness is a reporting capability; reads never apply it.
	ListOutdated(ctx context.Context, thresholdDays int) ([]*domain.DistanceRecord, error)
}
