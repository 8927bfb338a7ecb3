package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type WishlistRepository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]model.WishlistEntry, error)
	Exists(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	Add(ctx context.Context, item *model.WishlistItem) error
	Remove(ctx context.Context, userID, productID uuid.UUID) error
}

type wishlistRepository struct {
	db *gorm.DB
}

func NewWishlistRepository(db *gorm.DB) WishlistRepository {
	return &wishlistRepository{db: db}
}

func (r *wishlistRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]model.WishlistEntry, error) {
	logger.Debug("Finding wishlist items by user ID", map[string]interface{}{
		"user_id": userID,
	})

	entries := []model.WishlistEntry{}
	err := query(ctx, r.db, &entries, `SELECT w.id, w.user_id, w.product_id, w.created_at, w.updated_at,
			p.name AS product_name, p.sku AS product_sku, p.price, p.active AS product_active
		FROM wishlist_items w
		JOIN products p ON p.id = w.product_id
		WHERE w.user_id = ?
		ORDER BY w.created_at DESC, w.id`, userID)
	if err != nil {
		logger.Error("Failed to find wishlist items", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Debug("Wishlist items found", map[string]interface{}{
		"user_id": userID,
		"count":   len(entries),
	})
	return entries, nil
}

func (r *wishlistRepository) Exists(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var count int64
	err := query(ctx, r.db, &count,
		"SELECT COUNT(*) FROM wishlist_items WHERE user_id = ? AND product_id = ?", userID, productID)
	if err != nil {
		logger.Error("Failed to check wishlist item", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return false, err
	}
	return count > 0, nil
}

func (r *wishlistRepository) Add(ctx context.Context, item *model.WishlistItem) error {
	logger.Debug("Adding wishlist item", map[string]interface{}{
		"user_id":    item.UserID,
		"product_id": item.ProductID,
	})

	_, err := exec(ctx, r.db,
		"INSERT INTO wishlist_items (id, user_id, product_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		item.ID, item.UserID, item.ProductID, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		logger.Error("Failed to add wishlist item", err, map[string]interface{}{
			"user_id":    item.UserID,
			"product_id": item.ProductID,
		})
		return err
	}
	return nil
}

func (r *wishlistRepository) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	logger.Debug("Removing wishlist item", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
	})

	err := execOne(ctx, r.db, "DELETE FROM wishlist_items WHERE user_id = ? AND product_id = ?", userID, productID)
	if err != nil && err != gorm.ErrRecordNotFound {
		logger.Error("Failed to remove wishlist item", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
	}
	return err
}
