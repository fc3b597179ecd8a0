package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"inventory-system/internal/entities"
	apperrors "inventory-system/pkg/errors"
)

type UserRepositoryInterface interface {
	CreateUser(ctx context.Context, user *entities.User) error
	FindUserByID(ctx context.Context, id uint64) (*entities.User, error)
	UpdateUser(ctx context.Context, user entities.User) error
	GetUsers(ctx context.Context) ([]entities.User, error)
}

type UserRepository struct {
	mu     sync.RWMutex
	byID   map[uint64]entities.User
	nextID uint64
}

func NewUserRepository() UserRepositoryInterface {
	return &UserRepository{byID: make(map[uint64]entities.User)}
}

func (r *UserRepository) CreateUser(ctx context.Context, user *entities.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	user.ID = r.nextID
	user.Touch(time.Now())
	r.byID[user.ID] = *user
	return nil
}

func (r *UserRepository) FindUserByID(ctx context.Context, id uint64) (*entities.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("пользователь", id)
	}
	return &u, nil
}

func (r *UserRepository) UpdateUser(ctx context.Context, user entities.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[user.ID]
	if !ok {
		return apperrors.NewNotFoundError("пользователь", user.ID)
	}
	user.CreatedAt = current.CreatedAt
	user.UpdatedAt = time.Now()
	r.byID[user.ID] = user
	return nil
}

func (r *UserRepository) GetUsers(ctx context.Context) ([]entities.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]entities.User, 0, len(r.byID))
	for _, u := range r.byID {
		list = append(list, u)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}
