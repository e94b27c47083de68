package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"entregas/pkg/logger"
	"entregas/pkg/models"
	"entregas/storage"
)

// MaxDistanceKm bounds quotes to intercity range.
const MaxDistanceKm = 500

type TariffService interface {
	List(ctx context.Context, onlyActive bool) ([]*models.Tariff, error)
	Get(ctx context.Context, id int64) (*models.Tariff, error)
	Create(ctx context.Context, t *models.Tariff) (*models.Tariff, error)
	Update(ctx context.Context, t *models.Tariff) (*models.Tariff, error)
	Delete(ctx context.Context, id int64) error
	// Quote prices a trip of km kilometres on an active tariff.
	Quote(ctx context.Context, tariffID int64, km float64) (int64, error)
}

type tariffService struct {
	stg storage.ITariffStorage
	log logger.ILogger
}

func NewTariffService(stg storage.IStorage, log logger.ILogger) TariffService {
	return &tariffService{
		stg: stg.Tariff(),
		log: log,
	}
}

// QuotePrice is base + perKm * ceil(km), in cents.
func QuotePrice(t *models.Tariff, km float64) int64 {
	if km <= 0 {
		return t.BaseFee
	}
	return t.BaseFee + t.PerKmFee*int64(math.Ceil(km))
}

func (s *tariffService) List(ctx context.Context, onlyActive bool) ([]*models.Tariff, error) {
	return s.stg.GetAll(ctx, onlyActive)
}

func (s *tariffService) Get(ctx context.Context, id int64) (*models.Tariff, error) {
	t, err := s.stg.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get tariff: %w", err)
	}
	if t == nil {
		return nil, fmt.Errorf("tariff %d: %w", id, ErrNotFound)
	}
	return t, nil
}

func validateTariff(t *models.Tariff) error {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return invalid("name", "required")
	}
	switch t.VehicleType {
	case models.VehicleMoto, models.VehicleCarro, models.VehicleVan:
	default:
		return invalid("vehicle_type", "must be moto, carro or van")
	}
	if t.BaseFee < 0 {
		return invalid("base_fee", "must not be negative")
	}
	if t.PerKmFee < 0 {
		return invalid("per_km_fee", "must not be negative")
	}
	if t.DriverShare < 0 || t.DriverShare > 100 {
		return invalid("driver_share", "must be between 0 and 100")
	}
	return nil
}

func (s *tariffService) Create(ctx context.Context, t *models.Tariff) (*models.Tariff, error) {
	if err := validateTariff(t); err != nil {
		return nil, err
	}
	created, err := s.stg.Create(ctx, t)
	if err != nil {
		return nil, mapStorageErr("create tariff", err)
	}
	s.log.Info("tariff created", logger.Int64("tariff_id", created.ID), logger.String("name", created.Name))
	return created, nil
}

func (s *tariffService) Update(ctx context.Context, t *models.Tariff) (*models.Tariff, error) {
	if err := validateTariff(t); err != nil {
		return nil, err
	}
	if err := s.stg.Update(ctx, t); err != nil {
		return nil, mapStorageErr("update tariff", err)
	}
	return s.Get(ctx, t.ID)
}

func (s *tariffService) Delete(ctx context.Context, id int64) error {
	if err := s.stg.Delete(ctx, id); err != nil {
		return mapStorageErr("delete tariff", err)
	}
	s.log.Info("tariff deleted", logger.Int64("tariff_id", id))
	return nil
}

func (s *tariffService) Quote(ctx context.Context, tariffID int64, km float64) (int64, error) {
	if km <= 0 || km > MaxDistanceKm || math.IsNaN(km) {
		return 0, invalid("distance_km", fmt.Sprintf("must be between 0 and %d", MaxDistanceKm))
	}
	t, err := s.Get(ctx, tariffID)
	if err != nil {
		return 0, err
	}
	if !t.IsActive {
		return 0, invalid("tariff_id", "tariff is not active")
	}
	return QuotePrice(t, km), nil
}
