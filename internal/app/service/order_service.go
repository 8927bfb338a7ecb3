package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/auth"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/ikkim/storefront-backend/pkg/util"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound          = apperrors.NotFoundError(apperrors.OrderNotFound, "order not found")
	ErrEmptyCart              = apperrors.Validation(apperrors.CartEmpty, "cart is empty")
	ErrInvalidOrderTransition = apperrors.ConflictError(apperrors.OrderInvalidTransition, "order status change is not allowed")
	ErrInvalidOrderStatus     = apperrors.Validation(apperrors.OrderInvalidStatus, "unknown order status")
	ErrInvalidPaymentStatus   = apperrors.Validation(apperrors.OrderInvalidStatus, "unknown payment status")
	ErrForbidden              = apperrors.ForbiddenError(apperrors.AuthzForbidden, "not allowed to access this resource")
)

const (
	DefaultOrderLimit = 20
	MaxOrderLimit     = 100
)

// PlaceOrderInput carries the order header fields a caller may choose.
type PlaceOrderInput struct {
	ShippingAddress  string
	ShippingCost     decimal.Decimal
	ShippingMethodID *uuid.UUID
	PaymentMethodID  *uuid.UUID
}

type OrderService interface {
	PlaceFromCart(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*model.OrderDetail, error)
	PlaceDirect(ctx context.Context, userID uuid.UUID, lines []model.OrderLine, input PlaceOrderInput) (*model.OrderDetail, error)
	ListUserOrders(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.CustomerOrder, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*model.OrderDetail, error)
	Cancel(ctx context.Context, orderID uuid.UUID, restock bool) (*model.OrderDetail, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus) (*model.OrderDetail, error)
	UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, status model.PaymentStatus) (*model.OrderDetail, error)
	ExportRows(ctx context.Context, from, to *time.Time) ([]model.OrderExportRow, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	products    ProductService
	db          *gorm.DB
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	products ProductService,
	db *gorm.DB,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		products:    products,
		db:          db,
	}
}

// PlaceFromCart turns the user's cart into an order and empties the cart
// in the same transaction.
func (s *orderService) PlaceFromCart(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*model.OrderDetail, error) {
	logger.Info("Placing order from cart", map[string]interface{}{
		"user_id": userID,
	})
	if err := validatePlaceOrderInput(input); err != nil {
		return nil, err
	}
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

	var detail *model.OrderDetail
	var touched []uuid.UUID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		carts := s.cartRepo.WithTx(tx)
		cart, err := carts.FindCartByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEmptyCart
			}
			return err
		}
		cartLines, err := carts.FindLines(ctx, cart.ID)
		if err != nil {
			return err
		}
		if len(cartLines) == 0 {
			return ErrEmptyCart
		}

		lines := make([]model.OrderLine, 0, len(cartLines))
		for _, line := range cartLines {
			lines = append(lines, model.OrderLine{ProductID: line.ProductID, Quantity: line.Quantity})
		}

		detail, touched, err = s.place(ctx, tx, userID, model.MergeOrderLines(lines), input)
		if err != nil {
			return err
		}
		return carts.Clear(ctx, cart.ID)
	})
	if err != nil {
		s.logPlacementFailure(err, userID)
		return nil, err
	}

	s.products.Invalidate(ctx, touched...)
	logger.Info("Order placed from cart", map[string]interface{}{
		"user_id":      userID,
		"order_id":     detail.ID,
		"order_number": detail.OrderNumber,
		"total":        detail.Total.String(),
	})
	return detail, nil
}

// PlaceDirect orders an explicit list of lines. Repeated products are
// merged before stock is checked.
func (s *orderService) PlaceDirect(ctx context.Context, userID uuid.UUID, lines []model.OrderLine, input PlaceOrderInput) (*model.OrderDetail, error) {
	logger.Info("Placing direct order", map[string]interface{}{
		"user_id": userID,
		"lines":   len(lines),
	})
	if err := validatePlaceOrderInput(input); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, fieldErrors{"items": "must contain at least one item"}.err()
	}
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
	}
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

	var detail *model.OrderDetail
	var touched []uuid.UUID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		detail, touched, err = s.place(ctx, tx, userID, model.MergeOrderLines(lines), input)
		return err
	})
	if err != nil {
		s.logPlacementFailure(err, userID)
		return nil, err
	}

	s.products.Invalidate(ctx, touched...)
	logger.Info("Direct order placed", map[string]interface{}{
		"user_id":      userID,
		"order_id":     detail.ID,
		"order_number": detail.OrderNumber,
	})
	return detail, nil
}

// place snapshots every line, takes its stock with a guarded decrement and
// writes the order. Any failing line aborts the surrounding transaction.
func (s *orderService) place(ctx context.Context, tx *gorm.DB, userID uuid.UUID, lines []model.OrderLine, input PlaceOrderInput) (*model.OrderDetail, []uuid.UUID, error) {
	products := s.productRepo.WithTx(tx)
	order := &model.CustomerOrder{
		Entity:           model.NewEntity(),
		UserID:           userID,
		Status:           model.OrderStatusPending,
		PaymentStatus:    model.PaymentStatusPending,
		ShippingMethodID: input.ShippingMethodID,
		PaymentMethodID:  input.PaymentMethodID,
		ShippingAddress:  strings.TrimSpace(input.ShippingAddress),
		ShippingCost:     input.ShippingCost.Round(2),
	}
	order.OrderNumber = util.GenerateOrderNumber(order.CreatedAt)

	items := make([]model.OrderItem, 0, len(lines))
	touched := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		product, err := products.FindByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, ErrProductNotFound.WithMessage("product %s not found", line.ProductID)
			}
			return nil, nil, err
		}
		if !product.Active {
			return nil, nil, ErrProductInactive.WithMessage("product %s is not available", product.SKU)
		}
		if !product.HasStock(line.Quantity) {
			return nil, nil, ErrInsufficientStock.WithMessage("insufficient stock for %s", product.SKU)
		}
		if err := products.DecrementStock(ctx, product.ID, line.Quantity); err != nil {
			if errors.Is(err, repository.ErrConditionNotMet) {
				return nil, nil, ErrInsufficientStock.WithMessage("insufficient stock for %s", product.SKU)
			}
			return nil, nil, err
		}
		items = append(items, model.NewOrderItem(order.ID, product, line.Quantity))
		touched = append(touched, product.ID)
	}

	order.Subtotal, order.Total = model.ComputeOrderTotals(items, order.ShippingCost)
	if err := s.orderRepo.WithTx(tx).Create(ctx, order, items); err != nil {
		return nil, nil, err
	}
	return &model.OrderDetail{CustomerOrder: *order, Items: items}, touched, nil
}

func (s *orderService) ListUserOrders(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.CustomerOrder, error) {
	if limit <= 0 {
		limit = DefaultOrderLimit
	}
	if limit > MaxOrderLimit {
		limit = MaxOrderLimit
	}
	if offset < 0 {
		offset = 0
	}
	orders, err := s.orderRepo.FindByUserID(ctx, userID, limit, offset)
	if err != nil {
		logger.Error("Failed to list user orders", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return orders, nil
}

// GetOrder returns the order with its items when the caller may see it.
func (s *orderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*model.OrderDetail, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		logger.Error("Failed to fetch order", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}
	if !auth.CanActFor(ctx, order.UserID) {
		return nil, ErrForbidden
	}
	return s.detail(ctx, s.orderRepo, order)
}

// Cancel moves a pending or confirmed order to cancelled. Stock goes back
// only when restock is set.
func (s *orderService) Cancel(ctx context.Context, orderID uuid.UUID, restock bool) (*model.OrderDetail, error) {
	logger.Info("Cancelling order", map[string]interface{}{
		"order_id": orderID,
		"restock":  restock,
	})
	return s.cancel(ctx, orderID, restock, true)
}

func (s *orderService) cancel(ctx context.Context, orderID uuid.UUID, restock, checkOwner bool) (*model.OrderDetail, error) {
	var detail *model.OrderDetail
	var touched []uuid.UUID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := s.orderRepo.WithTx(tx)
		order, err := orders.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if checkOwner && !auth.CanActFor(ctx, order.UserID) {
			return ErrForbidden
		}
		if !order.Status.CanTransitionTo(model.OrderStatusCancelled) {
			return ErrInvalidOrderTransition.WithMessage("cannot cancel an order that is %s", order.Status)
		}

		cancelledAt := time.Now().UTC()
		if err := orders.UpdateStatus(ctx, orderID, order.Status, model.OrderStatusCancelled, &cancelledAt); err != nil {
			if errors.Is(err, repository.ErrConditionNotMet) {
				return ErrInvalidOrderTransition.WithMessage("order changed concurrently")
			}
			return err
		}

		items, err := orders.FindItems(ctx, orderID)
		if err != nil {
			return err
		}
		if restock {
			products := s.productRepo.WithTx(tx)
			for _, item := range items {
				err := products.IncrementStock(ctx, item.ProductID, item.Quantity)
				switch {
				case err == nil:
					touched = append(touched, item.ProductID)
				case errors.Is(err, gorm.ErrRecordNotFound):
					// product deleted since the order was placed
				default:
					return err
				}
			}
		}

		order.Status = model.OrderStatusCancelled
		order.CancelledAt = &cancelledAt
		detail = &model.OrderDetail{CustomerOrder: *order, Items: items}
		return nil
	})
	if err != nil {
		if _, ok := apperrors.As(err); !ok {
			logger.Error("Failed to cancel order", err, map[string]interface{}{
				"order_id": orderID,
			})
		}
		return nil, err
	}

	s.products.Invalidate(ctx, touched...)
	logger.Info("Order cancelled", map[string]interface{}{
		"order_id":  orderID,
		"restocked": len(touched),
	})
	return detail, nil
}

// UpdateStatus applies an administrative workflow step. Moving to
// cancelled behaves like Cancel without restocking.
func (s *orderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus) (*model.OrderDetail, error) {
	logger.Info("Updating order status", map[string]interface{}{
		"order_id": orderID,
		"status":   status,
	})
	if !status.Valid() {
		return nil, ErrInvalidOrderStatus.WithMessage("unknown order status %q", status)
	}
	if status == model.OrderStatusCancelled {
		return s.cancel(ctx, orderID, false, false)
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if !order.Status.CanTransitionTo(status) {
		logger.Warn("Rejected order status transition", map[string]interface{}{
			"order_id": orderID,
			"from":     order.Status,
			"to":       status,
		})
		return nil, ErrInvalidOrderTransition.WithMessage("cannot move order from %s to %s", order.Status, status)
	}
	if err := s.orderRepo.UpdateStatus(ctx, orderID, order.Status, status, nil); err != nil {
		if errors.Is(err, repository.ErrConditionNotMet) {
			return nil, ErrInvalidOrderTransition.WithMessage("order changed concurrently")
		}
		logger.Error("Failed to update order status", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}
	order.Status = status
	return s.detail(ctx, s.orderRepo, order)
}

func (s *orderService) UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, status model.PaymentStatus) (*model.OrderDetail, error) {
	logger.Info("Updating payment status", map[string]interface{}{
		"order_id": orderID,
		"status":   status,
	})
	if !status.Valid() {
		return nil, ErrInvalidPaymentStatus.WithMessage("unknown payment status %q", status)
	}
	if err := s.orderRepo.UpdatePaymentStatus(ctx, orderID, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		logger.Error("Failed to update payment status", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, s.orderRepo, order)
}

func (s *orderService) ExportRows(ctx context.Context, from, to *time.Time) ([]model.OrderExportRow, error) {
	if from != nil && to != nil && !from.Before(*to) {
		return nil, apperrors.Validation(apperrors.ValidationInvalidRange, "from must be before to")
	}
	rows, err := s.orderRepo.FindExportRows(ctx, from, to)
	if err != nil {
		logger.Error("Failed to load order export rows", err)
		return nil, err
	}
	return rows, nil
}

func (s *orderService) detail(ctx context.Context, orders repository.OrderRepository, order *model.CustomerOrder) (*model.OrderDetail, error) {
	items, err := orders.FindItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return &model.OrderDetail{CustomerOrder: *order, Items: items}, nil
}

func (s *orderService) ensureUser(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *orderService) logPlacementFailure(err error, userID uuid.UUID) {
	if appErr, ok := apperrors.As(err); ok {
		logger.Warn("Order placement rejected", map[string]interface{}{
			"user_id": userID,
			"code":    appErr.Code,
			"reason":  appErr.Message,
		})
		return
	}
	logger.Error("Order placement failed", err, map[string]interface{}{
		"user_id": userID,
	})
}

func validatePlaceOrderInput(input PlaceOrderInput) error {
	if input.ShippingCost.IsNegative() {
		return fieldErrors{"shippingCost": "must be at least 0"}.err()
	}
	return nil
}
