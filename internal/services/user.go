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

type UserServiceInterface interface {
	CreateUser(ctx context.Context, payload dto.CreateUserDTO) (*dto.ShortUserDTO, error)
	FindUser(ctx context.Context, id uint64) (*dto.ShortUserDTO, error)
	GetUsers(ctx context.Context) ([]dto.ShortUserDTO, error)
}

type UserService struct {
	userRepository repositories.UserRepositoryInterface
	logger         *zap.Logger
}

func NewUserService(userRepository repositories.UserRepositoryInterface, logger *zap.Logger) *UserService {
	return &UserService{
		userRepository: userRepository,
		logger:         logger,
	}
}

func userEntityToDTO(entity *entities.User) *dto.ShortUserDTO {
	if entity == nil {
		return nil
	}
	return &dto.ShortUserDTO{
		ID:       entity.ID,
		Fio:      entity.Fio,
		IsActive: entity.IsActive,
	}
}

func (s *UserService) CreateUser(ctx context.Context, payload dto.CreateUserDTO) (*dto.ShortUserDTO, error) {
	fio := strings.TrimSpace(payload.Fio)
	if fio == "" {
		return nil, apperrors.NewValidationError("fio", "ФИО обязательно")
	}
	user := &entities.User{
		Fio:      fio,
		Email:    strings.ToLower(strings.TrimSpace(payload.Email)),
		IsActive: true,
	}
	if err := s.userRepository.CreateUser(ctx, user); err != nil {
		s.logger.Error("Ошибка при создании пользователя", zap.Error(err))
		return nil, err
	}
	return userEntityToDTO(user), nil
}

func (s *UserService) FindUser(ctx context.Context, id uint64) (*dto.ShortUserDTO, error) {
	user, err := s.userRepository.FindUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return userEntityToDTO(user), nil
}

func (s *UserService) GetUsers(ctx context.Context) ([]dto.ShortUserDTO, error) {
	users, err := s.userRepository.GetUsers(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]dto.ShortUserDTO, 0, len(users))
	for i := range users {
		result = append(result, *userEntityToDTO(&users[i]))
	}
	return result, nil
}
