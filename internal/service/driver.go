package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"gopay/internal/domain"
	"gopay/internal/redis"
	"gopay/internal/repository"
)

// DriverService handles driver registration and lookup.
type DriverService struct {
	driverRepo    repository.DriverRepository
	cacheStore    redis.CacheStoreInterface
	basePublicURL string
}

// NewDriverService creates a new DriverService. cacheStore may be nil.
func NewDriverService(driverRepo repository.DriverRepository, cacheStore redis.CacheStoreInterface, basePublicURL string) *DriverService {
	return &DriverService{
		driverRepo:    driverRepo,
		cacheStore:    cacheStore,
		basePublicURL: basePublicURL,
	}
}

// RegisterDriverRequest contains the parameters for registering a driver.
type RegisterDriverRequest struct {
	Name          string
	Phone         string
	Email         string
	VehicleType   domain.VehicleType
	VehicleNumber string
}

// Register creates a new driver with a zero balance and a payment URL
// pointing at the QR landing page.
func (s *DriverService) Register(ctx context.Context, req RegisterDriverRequest) (*domain.Driver, error) {
	if req.Name == "" || req.Phone == "" || req.VehicleNumber == "" {
		return nil, ErrInvalidDriverDetails
	}

	existing, err := s.driverRepo.GetByPhone(ctx, req.Phone)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDriverAlreadyRegistered
	}

	vehicleType := req.VehicleType
	if vehicleType == "" {
		vehicleType = domain.VehicleTypeBoda
	}

	driver := &domain.Driver{
		ID:            uuid.New().String(),
		Name:          req.Name,
		Phone:         req.Phone,
		Email:         req.Email,
		VehicleType:   vehicleType,
		VehicleNumber: req.VehicleNumber,
	}
	driver.PaymentURL = s.basePublicURL + "/pay/" + driver.ID

	if err := s.driverRepo.Create(ctx, driver); err != nil {
		return nil, err
	}

	return driver, nil
}

// Get retrieves a driver by ID, consulting the cache first.
func (s *DriverService) Get(ctx context.Context, driverID string) (*domain.Driver, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	if s.cacheStore != nil {
		cached, err := s.cacheStore.GetDriver(ctx, driverID)
		if err == nil && cached != nil {
			return &domain.Driver{
				ID:            cached.ID,
				Name:          cached.Name,
				Phone:         cached.Phone,
				Email:         cached.Email,
				VehicleType:   domain.VehicleType(cached.VehicleType),
				VehicleNumber: cached.VehicleNumber,
				PaymentURL:    cached.PaymentURL,
				Balance:       cached.Balance,
				TotalEarnings: cached.TotalEarnings,
			}, nil
		}
	}

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDriverNotFound
		}
		return nil, err
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.SetDriver(ctx, &redis.CachedDriver{
			ID:            driver.ID,
			Name:          driver.Name,
			Phone:         driver.Phone,
			Email:         driver.Email,
			VehicleType:   string(driver.VehicleType),
			VehicleNumber: driver.VehicleNumber,
			PaymentURL:    driver.PaymentURL,
			Balance:       driver.Balance,
			TotalEarnings: driver.TotalEarnings,
		})
	}

	return driver, nil
}

// List retrieves all drivers.
func (s *DriverService) List(ctx context.Context) ([]*domain.Driver, error) {
	return s.driverRepo.GetAll(ctx)
}
