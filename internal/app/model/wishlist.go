package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type WishlistItem struct {
	Entity
	UserID    uuid.UUID `json:"userId"`
	ProductID uuid.UUID `json:"productId"`
}

func (WishlistItem) TableName() string {
	return "wishlist_items"
}

// WishlistEntry is a wishlist row joined with current product data.
type WishlistEntry struct {
	WishlistItem
	ProductName   string          `json:"productName"`
	ProductSKU    string          `json:"productSku"`
	Price         decimal.Decimal `json:"price"`
	ProductActive bool            `json:"productActive"`
}
