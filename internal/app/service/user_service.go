package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/cache"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound = apperrors.NotFoundError(apperrors.UserNotFound, "user not found")
	ErrUserInactive = apperrors.Authentication(apperrors.AuthUnauthorized, "user is inactive")
	ErrInvalidRole  = apperrors.Validation(apperrors.ValidationInvalidInput, "unknown role")
)

type UserService interface {
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*model.User, error)
	SetRole(ctx context.Context, id uuid.UUID, role model.Role) (*model.User, error)
	// ResolveIdentity returns the identity of an active user.
	ResolveIdentity(ctx context.Context, id uuid.UUID) (model.Identity, error)
}

type userService struct {
	userRepo repository.UserRepository
	loader   *cache.Loader
}

func NewUserService(userRepo repository.UserRepository, loader *cache.Loader) UserService {
	if loader == nil {
		loader = cache.NewLoader(nil, 0)
	}
	return &userService{userRepo: userRepo, loader: loader}
}

// GetUser reads through the cache. Cached copies never carry the password
// hash, so this must not feed credential checks.
func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := cache.Fetch(ctx, s.loader, cache.UserKey(id), func(ctx context.Context) (*model.User, error) {
		return s.userRepo.FindByID(ctx, id)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		logger.Error("Failed to fetch user", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, err
	}
	return user, nil
}

func (s *userService) SetActive(ctx context.Context, id uuid.UUID, active bool) (*model.User, error) {
	logger.Info("Changing user active flag", map[string]interface{}{
		"user_id": id,
		"active":  active,
	})

	if err := s.userRepo.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		logger.Error("Failed to change user active flag", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, err
	}
	s.loader.Invalidate(ctx, cache.UserKey(id))
	return s.GetUser(ctx, id)
}

func (s *userService) SetRole(ctx context.Context, id uuid.UUID, role model.Role) (*model.User, error) {
	if role != model.RoleCustomer && role != model.RoleAdmin {
		return nil, ErrInvalidRole.WithMessage("unknown role %q", role)
	}
	logger.Info("Changing user role", map[string]interface{}{
		"user_id": id,
		"role":    role,
	})

	if err := s.userRepo.UpdateRole(ctx, id, role); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		logger.Error("Failed to change user role", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, err
	}
	s.loader.Invalidate(ctx, cache.UserKey(id))
	return s.GetUser(ctx, id)
}

func (s *userService) ResolveIdentity(ctx context.Context, id uuid.UUID) (model.Identity, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return model.Identity{}, err
	}
	if !user.Active {
		return model.Identity{}, ErrUserInactive
	}
	return model.Identity{UserID: user.ID, Role: user.EffectiveRole()}, nil
}
