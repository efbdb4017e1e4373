package repository

import (
	"context"

	"gopay/internal/domain"
)

// DriverRepository defines the persistence operations for drivers.
type DriverRepository interface {
	// Create adds a new driver.
	Create(ctx context.Context, driver *domain.Driver) error

	// GetByID retrieves a driver by ID.
	GetByID(ctx context.Context, id string) (*domain.Driver, error)

	// GetByPhone retrieves a driver by phone number.
	GetByPhone(ctx context.Context, phone string) (*domain.Driver, error)

	// GetAll retrieves all drivers.
	GetAll(ctx context.Context) ([]*domain.Driver, error)

	// Count returns the number of registered drivers.
	Count(ctx context.Context) (int64, error)

	// Credit atomically adds amount to the driver's balance and total
	// earnings. Safe under concurrent credits to the same driver.
	Credit(ctx context.Context, id string, amount float64) error
}
