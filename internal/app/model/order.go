package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string   // customer_orders.status
type PaymentStatus string // customer_orders.payment_status

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"

	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:   {OrderStatusDelivered},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the workflow allows s -> next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

type CustomerOrder struct {
	Entity
	UserID           uuid.UUID       `json:"userId"`
	OrderNumber      string          `json:"orderNumber"`
	Status           OrderStatus     `json:"status"`
	PaymentStatus    PaymentStatus   `json:"paymentStatus"`
	ShippingMethodID *uuid.UUID      `json:"shippingMethodId,omitempty"`
	PaymentMethodID  *uuid.UUID      `json:"paymentMethodId,omitempty"`
	ShippingAddress  string          `json:"shippingAddress"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	ShippingCost     decimal.Decimal `json:"shippingCost"`
	Total            decimal.Decimal `json:"total"`
	CancelledAt      *time.Time      `json:"cancelledAt,omitempty"`
}

func (CustomerOrder) TableName() string {
	return "customer_orders"
}

// OrderItem is a point-in-time copy of a product line. It is never updated.
type OrderItem struct {
	Entity
	OrderID     uuid.UUID       `json:"orderId"`
	ProductID   uuid.UUID       `json:"productId"`
	ProductName string          `json:"productName"`
	ProductSKU  string          `json:"productSku"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// NewOrderItem snapshots product's name, sku and price for orderID.
func NewOrderItem(orderID uuid.UUID, product *Product, quantity int) OrderItem {
	return OrderItem{
		Entity:      NewEntity(),
		OrderID:     orderID,
		ProductID:   product.ID,
		ProductName: product.Name,
		ProductSKU:  product.SKU,
		UnitPrice:   product.Price,
		Quantity:    quantity,
		TotalPrice:  product.Price.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

// ComputeOrderTotals returns subtotal = sum(unitPrice*quantity) and
// total = subtotal + shippingCost.
func ComputeOrderTotals(items []OrderItem, shippingCost decimal.Decimal) (subtotal, total decimal.Decimal) {
	subtotal = decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	subtotal = subtotal.Round(2)
	return subtotal, subtotal.Add(shippingCost).Round(2)
}

// OrderDetail is an order joined with its item snapshot.
type OrderDetail struct {
	CustomerOrder
	Items []OrderItem `gorm:"-" json:"items"`
}

// OrderLine is one requested (product, quantity) pair before placement.
type OrderLine struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

// MergeOrderLines sums quantities of repeated products, keeping first-seen order.
func MergeOrderLines(lines []OrderLine) []OrderLine {
	index := make(map[uuid.UUID]int, len(lines))
	merged := make([]OrderLine, 0, len(lines))
	for _, line := range lines {
		if i, ok := index[line.ProductID]; ok {
			merged[i].Quantity += line.Quantity
			continue
		}
		index[line.ProductID] = len(merged)
		merged = append(merged, line)
	}
	return merged
}

// OrderExportRow is one order item flattened with its order header.
type OrderExportRow struct {
	OrderNumber   string          `json:"orderNumber"`
	UserEmail     string          `json:"userEmail"`
	Status        OrderStatus     `json:"status"`
	PaymentStatus PaymentStatus   `json:"paymentStatus"`
	ProductSKU    string          `json:"productSku"`
	ProductName   string          `json:"productName"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	Quantity      int             `json:"quantity"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	OrderTotal    decimal.Decimal `json:"orderTotal"`
	CreatedAt     time.Time       `json:"createdAt"`
}
