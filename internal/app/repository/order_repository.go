package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type OrderRepository interface {
	WithTx(tx *gorm.DB) OrderRepository
	Create(ctx context.Context, order *model.CustomerOrder, items []model.OrderItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.CustomerOrder, error)
	FindItems(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.CustomerOrder, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.OrderStatus, cancelledAt *time.Time) error
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) error
	HasDeliveredPurchase(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	FindExportRows(ctx context.Context, from, to *time.Time) ([]model.OrderExportRow, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) WithTx(tx *gorm.DB) OrderRepository {
	return &orderRepository{db: tx}
}

const orderColumns = `id, user_id, order_number, status, payment_status, shipping_method_id,
	payment_method_id, shipping_address, subtotal, shipping_cost, total, created_at, updated_at, cancelled_at`

const orderItemColumns = `id, order_id, product_id, product_name, product_sku, unit_price, quantity,
	total_price, created_at, updated_at`

// Create inserts the order header and its item snapshot. Callers run it in
// the transaction that also decrements stock.
func (r *orderRepository) Create(ctx context.Context, order *model.CustomerOrder, items []model.OrderItem) error {
	logger.Debug("Creating order in database", map[string]interface{}{
		"user_id":      order.UserID,
		"order_number": order.OrderNumber,
		"items_count":  len(items),
	})

	_, err := exec(ctx, r.db, `INSERT INTO customer_orders
		(id, user_id, order_number, status, payment_status, shipping_method_id, payment_method_id,
		 shipping_address, subtotal, shipping_cost, total, created_at, updated_at, cancelled_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID, order.UserID, order.OrderNumber, string(order.Status), string(order.PaymentStatus),
		nullableUUID(order.ShippingMethodID), nullableUUID(order.PaymentMethodID), order.ShippingAddress,
		order.Subtotal, order.ShippingCost, order.Total, order.CreatedAt, order.UpdatedAt,
		nullableTime(order.CancelledAt),
	)
	if err != nil {
		logger.Error("Failed to create order in database", err, map[string]interface{}{
			"user_id": order.UserID,
		})
		return err
	}

	for _, item := range items {
		_, err := exec(ctx, r.db, `INSERT INTO order_items
			(id, order_id, product_id, product_name, product_sku, unit_price, quantity, total_price, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ID, item.OrderID, item.ProductID, item.ProductName, item.ProductSKU,
			item.UnitPrice, item.Quantity, item.TotalPrice, item.CreatedAt, item.UpdatedAt,
		)
		if err != nil {
			logger.Error("Failed to create order item in database", err, map[string]interface{}{
				"order_id":   order.ID,
				"product_id": item.ProductID,
			})
			return err
		}
	}

	logger.Debug("Order created in database", map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
	})
	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.CustomerOrder, error) {
	logger.Debug("Finding order by ID in database", map[string]interface{}{
		"order_id": id,
	})

	var order model.CustomerOrder
	if err := queryOne(ctx, r.db, &order, "SELECT "+orderColumns+" FROM customer_orders WHERE id = ?", id); err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find order by ID in database", err, map[string]interface{}{
				"order_id": id,
			})
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindItems(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error) {
	items := []model.OrderItem{}
	err := query(ctx, r.db, &items,
		"SELECT "+orderItemColumns+" FROM order_items WHERE order_id = ? ORDER BY created_at, id", orderID)
	if err != nil {
		logger.Error("Failed to find order items", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}
	return items, nil
}

// FindByUserID lists the user's orders newest first.
func (r *orderRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.CustomerOrder, error) {
	logger.Debug("Finding orders by user ID in database", map[string]interface{}{
		"user_id": userID,
		"limit":   limit,
		"offset":  offset,
	})

	orders := []model.CustomerOrder{}
	err := query(ctx, r.db, &orders,
		"SELECT "+orderColumns+" FROM customer_orders WHERE user_id = ? ORDER BY created_at DESC, id LIMIT ? OFFSET ?",
		userID, limit, offset)
	if err != nil {
		logger.Error("Failed to find orders by user ID", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Debug("Orders found by user ID", map[string]interface{}{
		"user_id": userID,
		"count":   len(orders),
	})
	return orders, nil
}

// UpdateStatus moves the order from one status to another. The current
// status is part of the WHERE clause so a concurrent change is detected
// as ErrConditionNotMet instead of being overwritten.
func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.OrderStatus, cancelledAt *time.Time) error {
	logger.Debug("Updating order status", map[string]interface{}{
		"order_id": id,
		"from":     from,
		"to":       to,
	})

	n, err := exec(ctx, r.db, `UPDATE customer_orders
		SET status = ?, cancelled_at = COALESCE(?, cancelled_at), updated_at = ?
		WHERE id = ? AND status = ?`,
		string(to), nullableTime(cancelledAt), now(), id, string(from),
	)
	if err != nil {
		logger.Error("Failed to update order status", err, map[string]interface{}{
			"order_id": id,
		})
		return err
	}
	if n == 0 {
		return ErrConditionNotMet
	}
	return nil
}

func (r *orderRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) error {
	logger.Debug("Updating order payment status", map[string]interface{}{
		"order_id": id,
		"status":   status,
	})

	err := execOne(ctx, r.db, "UPDATE customer_orders SET payment_status = ?, updated_at = ? WHERE id = ?",
		string(status), now(), id)
	if err != nil && err != gorm.ErrRecordNotFound {
		logger.Error("Failed to update order payment status", err, map[string]interface{}{
			"order_id": id,
		})
	}
	return err
}

// HasDeliveredPurchase reports whether the user received an order that
// contained the product.
func (r *orderRepository) HasDeliveredPurchase(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var count int64
	err := query(ctx, r.db, &count, `SELECT COUNT(*)
		FROM order_items oi
		JOIN customer_orders o ON o.id = oi.order_id
		WHERE o.user_id = ? AND oi.product_id = ? AND o.status = ?`,
		userID, productID, string(model.OrderStatusDelivered))
	if err != nil {
		logger.Error("Failed to check delivered purchase", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return false, err
	}
	return count > 0, nil
}

// FindExportRows flattens orders placed in [from, to) into one row per item.
func (r *orderRepository) FindExportRows(ctx context.Context, from, to *time.Time) ([]model.OrderExportRow, error) {
	logger.Debug("Finding order export rows", map[string]interface{}{
		"from": from,
		"to":   to,
	})

	stmt := `SELECT o.order_number, u.email AS user_email, o.status, o.payment_status,
			oi.product_sku, oi.product_name, oi.unit_price, oi.quantity, oi.total_price,
			o.total AS order_total, o.created_at
		FROM customer_orders o
		JOIN users u ON u.id = o.user_id
		JOIN order_items oi ON oi.order_id = o.id
		WHERE 1 = 1`
	var args []interface{}
	if from != nil {
		stmt += " AND o.created_at >= ?"
		args = append(args, from.UTC())
	}
	if to != nil {
		stmt += " AND o.created_at < ?"
		args = append(args, to.UTC())
	}
	stmt += " ORDER BY o.created_at, o.order_number, oi.created_at, oi.id"

	rows := []model.OrderExportRow{}
	if err := query(ctx, r.db, &rows, stmt, args...); err != nil {
		logger.Error("Failed to find order export rows", err)
		return nil, err
	}
	return rows, nil
}
