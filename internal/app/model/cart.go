package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ShoppingCart struct {
	Entity
	UserID uuid.UUID `json:"userId"`
}

func (ShoppingCart) TableName() string {
	return "shopping_carts"
}

type CartItem struct {
	Entity
	CartID    uuid.UUID `json:"cartId"`
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// CartLine is one cart item LEFT JOINed with its product. Product columns
// are absent when the product row is gone.
type CartLine struct {
	ItemID        uuid.UUID           `json:"itemId"`
	ProductID     uuid.UUID           `json:"productId"`
	ProductName   string              `json:"productName"`
	ProductSKU    string              `json:"productSku"`
	Price         decimal.NullDecimal `json:"price"`
	Quantity      int                 `json:"quantity"`
	StockQuantity int                 `json:"stockQuantity"`
	Active        bool                `json:"active"`
}

// LineTotal is price times quantity, zero when either is absent.
func (l CartLine) LineTotal() decimal.Decimal {
	if !l.Price.Valid || l.Quantity <= 0 {
		return decimal.Zero
	}
	return l.Price.Decimal.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartView is the response shape for a user's cart.
type CartView struct {
	CartID     uuid.UUID       `json:"cartId"`
	UserID     uuid.UUID       `json:"userId"`
	Items      []CartLine      `json:"items"`
	TotalItems int             `json:"totalItems"`
	TotalValue decimal.Decimal `json:"totalValue"`
}

// ComputeCartTotals sums quantities and price*quantity over lines.
// Absent prices or quantities count as zero, so an empty cart is (0, 0.00).
func ComputeCartTotals(lines []CartLine) (int, decimal.Decimal) {
	totalItems := 0
	totalValue := decimal.Zero
	for _, line := range lines {
		if line.Quantity > 0 {
			totalItems += line.Quantity
		}
		totalValue = totalValue.Add(line.LineTotal())
	}
	return totalItems, totalValue.Round(2)
}

// NewCartView assembles the view and its totals.
func NewCartView(cart *ShoppingCart, lines []CartLine) *CartView {
	if lines == nil {
		lines = []CartLine{}
	}
	totalItems, totalValue := ComputeCartTotals(lines)
	return &CartView{
		CartID:     cart.ID,
		UserID:     cart.UserID,
		Items:      lines,
		TotalItems: totalItems,
		TotalValue: totalValue,
	}
}
