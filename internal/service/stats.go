package service

import (
	"context"

	"gopay/internal/domain"
	"gopay/internal/redis"
	"gopay/internal/repository"
)

// StatsService serves the platform-wide rollup. The stats row only moves
// when a transaction completes; the active driver count is derived live
// from the driver set so registration never writes the rollup.
type StatsService struct {
	statsRepo  repository.StatsRepository
	driverRepo repository.DriverRepository
	cacheStore redis.CacheStoreInterface
}

// NewStatsService creates a new StatsService. cacheStore may be nil.
func NewStatsService(statsRepo repository.StatsRepository, driverRepo repository.DriverRepository, cacheStore redis.CacheStoreInterface) *StatsService {
	return &StatsService{
		statsRepo:  statsRepo,
		driverRepo: driverRepo,
		cacheStore: cacheStore,
	}
}

// Get retrieves the current stats, consulting the cache first.
func (s *StatsService) Get(ctx context.Context) (*domain.AdminStats, error) {
	if s.cacheStore != nil {
		cached, err := s.cacheStore.GetStats(ctx)
		if err == nil && cached != nil {
			return &domain.AdminStats{
				TotalTransactions: cached.TotalTransactions,
				TotalRevenue:      cached.TotalRevenue,
				TotalPlatformFees: cached.TotalPlatformFees,
				ActiveDrivers:     cached.ActiveDrivers,
			}, nil
		}
	}

	stats, err := s.statsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	drivers, err := s.driverRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	stats.ActiveDrivers = drivers

	if s.cacheStore != nil {
		_ = s.cacheStore.SetStats(ctx, &redis.CachedStats{
			TotalTransactions: stats.TotalTransactions,
			TotalRevenue:      stats.TotalRevenue,
			TotalPlatformFees: stats.TotalPlatformFees,
			ActiveDrivers:     stats.ActiveDrivers,
		})
	}

	return stats, nil
}
