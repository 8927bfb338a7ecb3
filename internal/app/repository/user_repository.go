package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type UserRepository interface {
	WithTx(tx *gorm.DB) UserRepository
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) WithTx(tx *gorm.DB) UserRepository {
	return &userRepository{db: tx}
}

const userColumns = `id, email, COALESCE(password_hash, '') AS password_hash, first_name, last_name,
	phone, COALESCE(role, '') AS role, active, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	logger.Debug("Creating user in database", map[string]interface{}{
		"email": user.Email,
	})

	_, err := exec(ctx, r.db, `INSERT INTO users
		(id, email, password_hash, first_name, last_name, phone, role, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, nullableString(user.PasswordHash), user.FirstName, user.LastName,
		user.Phone, nullableString(string(user.Role)), user.Active, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"email": user.Email,
		})
		return err
	}

	logger.Debug("User created in database", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	logger.Debug("Finding user by ID in database", map[string]interface{}{
		"user_id": id,
	})

	var user model.User
	if err := queryOne(ctx, r.db, &user, "SELECT "+userColumns+" FROM users WHERE id = ?", id); err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find user by ID in database", err, map[string]interface{}{
				"user_id": id,
			})
		}
		return nil, err
	}
	return &user, nil
}

// FindByEmail expects an already normalised address.
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	logger.Debug("Finding user by email in database", map[string]interface{}{
		"email": email,
	})

	var user model.User
	if err := queryOne(ctx, r.db, &user, "SELECT "+userColumns+" FROM users WHERE email = ?", email); err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find user by email in database", err, map[string]interface{}{
				"email": email,
			})
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := query(ctx, r.db, &count, "SELECT COUNT(*) FROM users WHERE email = ?", email); err != nil {
		logger.Error("Failed to check email existence", err, map[string]interface{}{
			"email": email,
		})
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	logger.Debug("Updating user active flag in database", map[string]interface{}{
		"user_id": id,
		"active":  active,
	})

	err := execOne(ctx, r.db, "UPDATE users SET active = ?, updated_at = ? WHERE id = ?", active, now(), id)
	if err != nil && err != gorm.ErrRecordNotFound {
		logger.Error("Failed to update user active flag", err, map[string]interface{}{
			"user_id": id,
		})
	}
	return err
}

func (r *userRepository) UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) error {
	err := execOne(ctx, r.db, "UPDATE users SET role = ?, updated_at = ? WHERE id = ?", string(role), now(), id)
	if err != nil && err != gorm.ErrRecordNotFound {
		logger.Error("Failed to update user role", err, map[string]interface{}{
			"user_id": id,
			"role":    role,
		})
	}
	return err
}
