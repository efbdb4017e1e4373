package repository

import (
	"context"

	"gopay/internal/domain"
)

// StatsRepository defines the persistence operations for the platform
// stats rollup.
type StatsRepository interface {
	// Get retrieves the current stats rollup. ActiveDrivers is not
	// populated here; it is derived from the driver set.
	Get(ctx context.Context) (*domain.AdminStats, error)

	// Increment atomically adds the deltas to the rollup.
	Increment(ctx context.Context, countDelta int64, revenueDelta, feeDelta float64) error
}
