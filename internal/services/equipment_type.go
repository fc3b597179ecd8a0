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

type EquipmentTypeServiceInterface interface {
	GetEquipmentTypes(ctx context.Context) ([]dto.ShortEquipmentTypeDTO, error)
	FindEquipmentType(ctx context.Context, id uint64) (*dto.ShortEquipmentTypeDTO, error)
	CreateEquipmentType(ctx context.Context, payload dto.CreateEquipmentTypeDTO) (*dto.ShortEquipmentTypeDTO, error)
}

type EquipmentTypeService struct {
	etRepository repositories.EquipmentTypeRepositoryInterface
	logger       *zap.Logger
}

func NewEquipmentTypeService(etRepo repositories.EquipmentTypeRepositoryInterface, logger *zap.Logger) EquipmentTypeServiceInterface {
	return &EquipmentTypeService{
		etRepository: etRepo,
		logger:       logger,
	}
}

func equipmentTypeToDTO(t entities.EquipmentType) dto.ShortEquipmentTypeDTO {
	return dto.ShortEquipmentTypeDTO{ID: t.ID, Name: t.Name, RenewalEligible: t.RenewalEligible}
}

func (s *EquipmentTypeService) GetEquipmentTypes(ctx context.Context) ([]dto.ShortEquipmentTypeDTO, error) {
	list, err := s.etRepository.GetEquipmentTypes(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]dto.ShortEquipmentTypeDTO, 0, len(list))
	for _, t := range list {
		result = append(result, equipmentTypeToDTO(t))
	}
	return result, nil
}

func (s *EquipmentTypeService) FindEquipmentType(ctx context.Context, id uint64) (*dto.ShortEquipmentTypeDTO, error) {
	t, err := s.etRepository.FindEquipmentType(ctx, id)
	if err != nil {
		return nil, err
	}
	result := equipmentTypeToDTO(*t)
	return &result, nil
}

// CreateEquipmentType - признак участия в плане замены задается явно при создании типа.
func (s *EquipmentTypeService) CreateEquipmentType(ctx context.Context, payload dto.CreateEquipmentTypeDTO) (*dto.ShortEquipmentTypeDTO, error) {
	name := strings.TrimSpace(payload.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name", "название обязательно")
	}
	equipmentType := &entities.EquipmentType{Name: name, RenewalEligible: payload.RenewalEligible}
	if err := s.etRepository.CreateEquipmentType(ctx, equipmentType); err != nil {
		return nil, err
	}
	s.logger.Info("Создан тип оборудования",
		zap.Uint64("id", equipmentType.ID),
		zap.String("name", name),
		zap.Bool("renewal_eligible", payload.RenewalEligible),
	)
	result := equipmentTypeToDTO(*equipmentType)
	return &result, nil
}
