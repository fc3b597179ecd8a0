package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"inventory-system/internal/dto"
	"inventory-system/internal/entities"
	"inventory-system/internal/repositories"
	apperrors "inventory-system/pkg/errors"
)

type LocationServiceInterface interface {
	CreateLocation(ctx context.Context, payload dto.CreateLocationDTO) (*entities.Location, error)
	GetLocations(ctx context.Context, warehousesOnly bool) ([]entities.Location, error)
}

type LocationService struct {
	locationRepository repositories.LocationRepositoryInterface
	logger             *zap.Logger
}

func NewLocationService(locationRepository repositories.LocationRepositoryInterface, logger *zap.Logger) *LocationService {
	return &LocationService{
		locationRepository: locationRepository,
		logger:             logger,
	}
}

func (s *LocationService) CreateLocation(ctx context.Context, payload dto.CreateLocationDTO) (*entities.Location, error) {
	name := strings.TrimSpace(payload.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name", "название обязательно")
	}
	location := &entities.Location{Name: name, IsWarehouse: payload.IsWarehouse}
	if err := s.locationRepository.CreateLocation(ctx, location); err != nil {
		return nil, err
	}
	return location, nil
}

func (s *LocationService) GetLocations(ctx context.Context, warehousesOnly bool) ([]entities.Location, error) {
	return s.locationRepository.GetLocations(ctx, warehousesOnly)
}
