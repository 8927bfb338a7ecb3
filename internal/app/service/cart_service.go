package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrCartItemNotFound = apperrors.NotFoundError(apperrors.CartItemNotFound, "cart item not found")
	ErrInvalidQuantity  = apperrors.Validation(apperrors.CartInvalidQuantity, "quantity must be at least 1").
				WithField("quantity", "must be at least 1")
)

type CartService interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*model.CartView, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*model.CartView, error)
	UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*model.CartView, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*model.CartView, error)
	ClearCart(ctx context.Context, userID uuid.UUID) (*model.CartView, error)
	CountItems(ctx context.Context, userID uuid.UUID) (int64, error)
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	db          *gorm.DB
}

func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	db *gorm.DB,
) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		db:          db,
	}
}

// GetCart returns the user's cart, creating an empty one on first access.
func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (*model.CartView, error) {
	logger.Debug("Fetching user cart", map[string]interface{}{
		"user_id": userID,
	})
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

	cart, err := s.cartRepo.GetOrCreateCart(ctx, userID)
	if err != nil {
		logger.Error("Failed to get or create cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return s.view(ctx, s.cartRepo, cart)
}

func (s *cartService) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*model.CartView, error) {
	logger.Info("Adding item to cart", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"quantity":   quantity,
	})
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

	var view *model.CartView
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		carts := s.cartRepo.WithTx(tx)
		product, err := s.productRepo.WithTx(tx).FindByID(ctx, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}
		if !product.Active {
			return ErrProductInactive
		}

		cart, err := carts.GetOrCreateCart(ctx, userID)
		if err != nil {
			return err
		}

		requested := quantity
		existing, err := carts.FindItemByProduct(ctx, cart.ID, productID)
		switch {
		case err == nil:
			requested += existing.Quantity
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
		if !product.HasStock(requested) {
			logger.Warn("Cannot add to cart: insufficient product stock", map[string]interface{}{
				"user_id":    userID,
				"product_id": productID,
				"requested":  requested,
				"available":  product.StockQuantity,
			})
			return ErrInsufficientStock
		}

		item := &model.CartItem{Entity: model.NewEntity(), CartID: cart.ID, ProductID: productID, Quantity: quantity}
		if err := carts.AddItem(ctx, item); err != nil {
			return err
		}
		view, err = s.view(ctx, carts, cart)
		return err
	})
	if err != nil {
		if _, ok := apperrors.As(err); !ok {
			logger.Error("Failed to add item to cart", err, map[string]interface{}{
				"user_id":    userID,
				"product_id": productID,
			})
		}
		return nil, err
	}
	return view, nil
}

func (s *cartService) UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*model.CartView, error) {
	logger.Info("Updating cart item", map[string]interface{}{
		"user_id":      userID,
		"cart_item_id": itemID,
		"quantity":     quantity,
	})
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	cart, err := s.findCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	item, err := s.cartRepo.FindItem(ctx, cart.ID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}

	product, err := s.productRepo.FindByID(ctx, item.ProductID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if product != nil && !product.HasStock(quantity) {
		return nil, ErrInsufficientStock
	}

	if err := s.cartRepo.UpdateItemQuantity(ctx, cart.ID, itemID, quantity); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartItemNotFound
		}
		logger.Error("Failed to update cart item", err, map[string]interface{}{
			"cart_item_id": itemID,
		})
		return nil, err
	}
	return s.view(ctx, s.cartRepo, cart)
}

func (s *cartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*model.CartView, error) {
	logger.Info("Removing item from cart", map[string]interface{}{
		"user_id":      userID,
		"cart_item_id": itemID,
	})

	cart, err := s.findCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.cartRepo.DeleteItem(ctx, cart.ID, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartItemNotFound
		}
		logger.Error("Failed to remove cart item", err, map[string]interface{}{
			"cart_item_id": itemID,
		})
		return nil, err
	}
	return s.view(ctx, s.cartRepo, cart)
}

// ClearCart empties the cart but keeps the cart row.
func (s *cartService) ClearCart(ctx context.Context, userID uuid.UUID) (*model.CartView, error) {
	logger.Info("Clearing cart", map[string]interface{}{
		"user_id": userID,
	})
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

	cart, err := s.cartRepo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.cartRepo.Clear(ctx, cart.ID); err != nil {
		logger.Error("Failed to clear cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return model.NewCartView(cart, nil), nil
}

// CountItems sums quantities. A user without a cart has zero items.
func (s *cartService) CountItems(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.cartRepo.CountItems(ctx, userID)
	if err != nil {
		logger.Error("Failed to count cart items", err, map[string]interface{}{
			"user_id": userID,
		})
		return 0, err
	}
	return count, nil
}

func (s *cartService) view(ctx context.Context, carts repository.CartRepository, cart *model.ShoppingCart) (*model.CartView, error) {
	lines, err := carts.FindLines(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	return model.NewCartView(cart, lines), nil
}

// findCart resolves the user's cart for item-level operations. A user
// with no cart yet has no items either.
func (s *cartService) findCart(ctx context.Context, userID uuid.UUID) (*model.ShoppingCart, error) {
	cart, err := s.cartRepo.FindCartByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}
	return cart, nil
}

func (s *cartService) ensureUser(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}
