package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	Entity
	CategoryID    *uuid.UUID      `json:"categoryId,omitempty"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stockQuantity"`
	Active        bool            `json:"active"`
}

func (Product) TableName() string {
	return "products"
}

// HasStock reports whether quantity units can be taken right now.
func (p *Product) HasStock(quantity int) bool {
	return quantity > 0 && p.StockQuantity >= quantity
}

type ProductImage struct {
	Entity
	ProductID uuid.UUID `json:"productId"`
	URL       string    `json:"url"`
	SortOrder int       `json:"sortOrder"`
}

func (ProductImage) TableName() string {
	return "product_images"
}

// ProductDetail is a product joined with its ordered image URLs.
type ProductDetail struct {
	Product
	Images []string `gorm:"-" json:"images"`
}
