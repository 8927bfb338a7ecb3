package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/ikkim/storefront-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	// ErrInvalidCredentials covers unknown email, inactive account, missing
	// hash and wrong password alike.
	ErrInvalidCredentials = apperrors.Authentication(apperrors.AuthInvalidCredentials, "invalid email or password")
	ErrEmailAlreadyExists = apperrors.Duplicate(apperrors.AuthEmailAlreadyExists, "email is already registered")
	ErrInvalidEmail       = apperrors.Validation(apperrors.ValidationInvalidInput, "email is not a valid address").
				WithField("email", "must be a valid email address")
	ErrPasswordTooShort = apperrors.Validation(apperrors.ValidationInvalidInput, "password is too short").
				WithField("password", "must be at least 8 characters")
)

// AuthResult is what a successful sign-in or registration hands back.
type AuthResult struct {
	model.Identity
	AccessToken string    `json:"accessToken,omitempty"`
	ExpiresAt   time.Time `json:"expiresAt,omitempty"`
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

type AuthService interface {
	Authenticate(ctx context.Context, email, password string) (*AuthResult, error)
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	// ResolveToken maps a bearer token onto the identity of an active user.
	ResolveToken(ctx context.Context, token string) (model.Identity, error)
}

type authService struct {
	userRepo     repository.UserRepository
	users        UserService
	jwtSecret    string
	accessExpiry time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	users UserService,
	jwtSecret string,
	accessExpiry time.Duration,
) AuthService {
	return &authService{
		userRepo:     userRepo,
		users:        users,
		jwtSecret:    jwtSecret,
		accessExpiry: accessExpiry,
	}
}

func (s *authService) Authenticate(ctx context.Context, email, password string) (*AuthResult, error) {
	email = model.NormalizeEmail(email)
	logger.Info("Authentication attempt", map[string]interface{}{
		"email": email,
	})

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Authentication failed: unknown email", map[string]interface{}{
				"email": email,
			})
			return nil, ErrInvalidCredentials
		}
		logger.Error("Failed to look up user for authentication", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}

	if !user.Active || !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Authentication failed: rejected credentials", map[string]interface{}{
			"user_id": user.ID,
			"active":  user.Active,
		})
		return nil, ErrInvalidCredentials
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	logger.Info("User authenticated", map[string]interface{}{
		"user_id": user.ID,
		"role":    result.Role,
	})
	return result, nil
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email := model.NormalizeEmail(input.Email)
	logger.Info("Attempting user registration", map[string]interface{}{
		"email": email,
	})

	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}
	if len(input.Password) < util.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		logger.Error("Failed to check existing user", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}
	if exists {
		logger.Warn("Registration failed: email already exists", map[string]interface{}{
			"email": email,
		})
		return nil, ErrEmailAlreadyExists
	}

	hash, err := util.HashPassword(input.Password)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}

	user := &model.User{
		Entity:       model.NewEntity(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Phone:        strings.TrimSpace(input.Phone),
		Role:         model.RoleCustomer,
		Active:       true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, ErrEmailAlreadyExists
		}
		logger.Error("Failed to create user", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}

	logger.Info("User registered", map[string]interface{}{
		"user_id": user.ID,
		"email":   email,
	})
	return s.issue(user)
}

func (s *authService) ResolveToken(ctx context.Context, token string) (model.Identity, error) {
	claims, err := util.ValidateToken(token, s.jwtSecret)
	if err != nil {
		if errors.Is(err, util.ErrExpiredToken) {
			return model.Identity{}, apperrors.Authentication(apperrors.AuthTokenExpired, "token has expired")
		}
		return model.Identity{}, apperrors.Authentication(apperrors.AuthTokenInvalid, "token is invalid")
	}
	userID, err := claims.UserID()
	if err != nil {
		return model.Identity{}, apperrors.Authentication(apperrors.AuthTokenInvalid, "token is invalid")
	}
	return s.users.ResolveIdentity(ctx, userID)
}

func (s *authService) issue(user *model.User) (*AuthResult, error) {
	identity := model.Identity{UserID: user.ID, Role: user.EffectiveRole()}
	result := &AuthResult{Identity: identity}
	if s.jwtSecret == "" {
		return result, nil
	}
	token, expiresAt, err := util.GenerateAccessToken(user.ID, string(identity.Role), s.jwtSecret, s.accessExpiry)
	if err != nil {
		logger.Error("Failed to issue access token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}
	result.AccessToken = token
	result.ExpiresAt = expiresAt
	return result, nil
}
