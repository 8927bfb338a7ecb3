package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	return testDB
}

func seedUser(t *testing.T, conn *gorm.DB, email string) *model.User {
	t.Helper()
	user := &model.User{
		Entity:       model.NewEntity(),
		Email:        email,
		PasswordHash: "hash",
		FirstName:    "Test",
		LastName:     "User",
		Active:       true,
	}
	require.NoError(t, NewUserRepository(conn).Create(context.Background(), user))
	return user
}

func seedProduct(t *testing.T, conn *gorm.DB, sku, price string, stock int) *model.Product {
	t.Helper()
	product := &model.Product{
		Entity:        model.NewEntity(),
		SKU:           sku,
		Name:          "Product " + sku,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		Active:        true,
	}
	require.NoError(t, NewProductRepository(conn).Create(context.Background(), product))
	return product
}

func newCartItem(cartID, productID uuid.UUID, quantity int) *model.CartItem {
	return &model.CartItem{Entity: model.NewEntity(), CartID: cartID, ProductID: productID, Quantity: quantity}
}
