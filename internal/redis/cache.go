package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheStore handles entity caching in Redis.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// Cache TTL constants
const (
	DriverCacheTTL = 30 * time.Second // Balance moves on every completed payment
	StatsCacheTTL  = 10 * time.Second // Dashboard rollup, cheap to rebuild
)

// Key prefixes
const (
	driverCachePrefix = "cache:driver:"
	statsCacheKey     = "cache:admin_stats"
)

// CachedDriver represents a cached driver entity.
type CachedDriver struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Phone         string  `json:"phone"`
	Email         string  `json:"email"`
	VehicleType   string  `json:"vehicle_type"`
	VehicleNumber string  `json:"vehicle_number"`
	PaymentURL    string  `json:"payment_url"`
	Balance       float64 `json:"balance"`
	TotalEarnings float64 `json:"total_earnings"`
}

// CachedStats represents the cached stats rollup.
type CachedStats struct {
	TotalTransactions int64   `json:"total_transactions"`
	TotalRevenue      float64 `json:"total_revenue"`
	TotalPlatformFees float64 `json:"total_platform_fees"`
	ActiveDrivers     int64   `json:"active_drivers"`
}

// GetDriver retrieves a driver from cache.
func (s *CacheStore) GetDriver(ctx context.Context, driverID string) (*CachedDriver, error) {
	data, err := s.client.Get(ctx, driverCachePrefix+driverID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var driver CachedDriver
	if err := json.Unmarshal(data, &driver); err != nil {
		return nil, err
	}
	return &driver, nil
}

// SetDriver stores a driver in cache.
func (s *CacheStore) SetDriver(ctx context.Context, driver *CachedDriver) error {
	data, err := json.Marshal(driver)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, driverCachePrefix+driver.ID, data, DriverCacheTTL).Err()
}

// InvalidateDriver removes a driver from cache.
func (s *CacheStore) InvalidateDriver(ctx context.Context, driverID string) error {
	return s.client.Del(ctx, driverCachePrefix+driverID).Err()
}

// GetStats retrieves the stats rollup from cache.
func (s *CacheStore) GetStats(ctx context.Context) (*CachedStats, error) {
	data, err := s.client.Get(ctx, statsCacheKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var stats CachedStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// SetStats stores the stats rollup in cache.
func (s *CacheStore) SetStats(ctx context.Context, stats *CachedStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, statsCacheKey, data, StatsCacheTTL).Err()
}

// InvalidateStats removes the stats rollup from cache.
func (s *CacheStore) InvalidateStats(ctx context.Context) error {
	return s.client.Del(ctx, statsCacheKey).Err()
}
