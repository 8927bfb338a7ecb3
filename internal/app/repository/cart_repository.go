package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	GetOrCreateCart(ctx context.Context, userID uuid.UUID) (*model.ShoppingCart, error)
	FindCartByUserID(ctx context.Context, userID uuid.UUID) (*model.ShoppingCart, error)
	FindLines(ctx context.Context, cartID uuid.UUID) ([]model.CartLine, error)
	FindItem(ctx context.Context, cartID, itemID uuid.UUID) (*model.CartItem, error)
	FindItemByProduct(ctx context.Context, cartID, productID uuid.UUID) (*model.CartItem, error)
	AddItem(ctx context.Context, item *model.CartItem) error
	UpdateItemQuantity(ctx context.Context, cartID, itemID uuid.UUID, quantity int) error
	DeleteItem(ctx context.Context, cartID, itemID uuid.UUID) error
	Clear(ctx context.Context, cartID uuid.UUID) error
	CountItems(ctx context.Context, userID uuid.UUID) (int64, error)
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) WithTx(tx *gorm.DB) CartRepository {
	return &cartRepository{db: tx}
}

const cartItemColumns = "id, cart_id, product_id, quantity, created_at, updated_at"

// GetOrCreateCart returns the user's single cart, inserting it on first
// access. ON CONFLICT keeps two racing first requests from both inserting.
func (r *cartRepository) GetOrCreateCart(ctx context.Context, userID uuid.UUID) (*model.ShoppingCart, error) {
	logger.Debug("Getting or creating cart", map[string]interface{}{
		"user_id": userID,
	})

	cart := model.ShoppingCart{Entity: model.NewEntity(), UserID: userID}
	_, err := exec(ctx, r.db, `INSERT INTO shopping_carts (id, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?) ON CONFLICT (user_id) DO NOTHING`,
		cart.ID, cart.UserID, cart.CreatedAt, cart.UpdatedAt,
	)
	if err != nil {
		logger.Error("Failed to create cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return r.FindCartByUserID(ctx, userID)
}

func (r *cartRepository) FindCartByUserID(ctx context.Context, userID uuid.UUID) (*model.ShoppingCart, error) {
	var cart model.ShoppingCart
	err := queryOne(ctx, r.db, &cart,
		"SELECT id, user_id, created_at, updated_at FROM shopping_carts WHERE user_id = ?", userID)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find cart by user ID", err, map[string]interface{}{
				"user_id": userID,
			})
		}
		return nil, err
	}
	return &cart, nil
}

// FindLines returns the cart's items LEFT JOINed with their products,
// oldest first.
func (r *cartRepository) FindLines(ctx context.Context, cartID uuid.UUID) ([]model.CartLine, error) {
	logger.Debug("Finding cart lines in database", map[string]interface{}{
		"cart_id": cartID,
	})

	lines := []model.CartLine{}
	err := query(ctx, r.db, &lines, `SELECT ci.id AS item_id, ci.product_id, ci.quantity,
			p.name AS product_name, p.sku AS product_sku, p.price,
			p.stock_quantity, p.active
		FROM cart_items ci
		LEFT JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = ?
		ORDER BY ci.created_at, ci.id`, cartID)
	if err != nil {
		logger.Error("Failed to find cart lines", err, map[string]interface{}{
			"cart_id": cartID,
		})
		return nil, err
	}

	logger.Debug("Cart lines found in database", map[string]interface{}{
		"cart_id": cartID,
		"count":   len(lines),
	})
	return lines, nil
}

func (r *cartRepository) FindItem(ctx context.Context, cartID, itemID uuid.UUID) (*model.CartItem, error) {
	var item model.CartItem
	err := queryOne(ctx, r.db, &item,
		"SELECT "+cartItemColumns+" FROM cart_items WHERE id = ? AND cart_id = ?", itemID, cartID)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find cart item", err, map[string]interface{}{
				"cart_item_id": itemID,
			})
		}
		return nil, err
	}
	return &item, nil
}

func (r *cartRepository) FindItemByProduct(ctx context.Context, cartID, productID uuid.UUID) (*model.CartItem, error) {
	var item model.CartItem
	err := queryOne(ctx, r.db, &item,
		"SELECT "+cartItemColumns+" FROM cart_items WHERE cart_id = ? AND product_id = ?", cartID, productID)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find cart item by product", err, map[string]interface{}{
				"cart_id":    cartID,
				"product_id": productID,
			})
		}
		return nil, err
	}
	return &item, nil
}

// AddItem inserts the line or, when the (cart, product) pair already
// exists, adds to its quantity. The row is never duplicated.
func (r *cartRepository) AddItem(ctx context.Context, item *model.CartItem) error {
	logger.Debug("Adding cart item in database", map[string]interface{}{
		"cart_id":    item.CartID,
		"product_id": item.ProductID,
		"quantity":   item.Quantity,
	})

	_, err := exec(ctx, r.db, `INSERT INTO cart_items (id, cart_id, product_id, quantity, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + excluded.quantity, updated_at = excluded.updated_at`,
		item.ID, item.CartID, item.ProductID, item.Quantity, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		logger.Error("Failed to add cart item in database", err, map[string]interface{}{
			"cart_id":    item.CartID,
			"product_id": item.ProductID,
		})
		return err
	}
	return nil
}

func (r *cartRepository) UpdateItemQuantity(ctx context.Context, cartID, itemID uuid.UUID, quantity int) error {
	logger.Debug("Updating cart item quantity", map[string]interface{}{
		"cart_item_id": itemID,
		"quantity":     quantity,
	})

	err := execOne(ctx, r.db, "UPDATE cart_items SET quantity = ?, updated_at = ? WHERE id = ? AND cart_id = ?",
		quantity, now(), itemID, cartID)
	if err != nil && err != gorm.ErrRecordNotFound {
		logger.Error("Failed to update cart item quantity", err, map[string]interface{}{
			"cart_item_id": itemID,
		})
	}
	return err
}

func (r *cartRepository) DeleteItem(ctx context.Context, cartID, itemID uuid.UUID) error {
	logger.Debug("Deleting cart item", map[string]interface{}{
		"cart_item_id": itemID,
	})

	err := execOne(ctx, r.db, "DELETE FROM cart_items WHERE id = ? AND cart_id = ?", itemID, cartID)
	if err != nil && err != gorm.ErrRecordNotFound {
		logger.Error("Failed to delete cart item", err, map[string]interface{}{
			"cart_item_id": itemID,
		})
	}
	return err
}

// Clear empties the cart but keeps the cart row.
func (r *cartRepository) Clear(ctx context.Context, cartID uuid.UUID) error {
	logger.Debug("Clearing cart", map[string]interface{}{
		"cart_id": cartID,
	})

	if _, err := exec(ctx, r.db, "DELETE FROM cart_items WHERE cart_id = ?", cartID); err != nil {
		logger.Error("Failed to clear cart", err, map[string]interface{}{
			"cart_id": cartID,
		})
		return err
	}
	return nil
}

// CountItems sums quantities over the user's cart, 0 when there is none.
// It reads the same rows FindLines does.
func (r *cartRepository) CountItems(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := query(ctx, r.db, &count, `SELECT COALESCE(SUM(ci.quantity), 0)
		FROM cart_items ci
		JOIN shopping_carts sc ON sc.id = ci.cart_id
		WHERE sc.user_id = ?`, userID)
	if err != nil {
		logger.Error("Failed to count cart items", err, map[string]interface{}{
			"user_id": userID,
		})
		return 0, err
	}
	return count, nil
}
