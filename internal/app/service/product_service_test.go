package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductService_CreateWithImages(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	category, err := e.categories.CreateCategory(ctx, CategoryInput{Name: "Kitchen"})
	require.NoError(t, err)

	detail, err := e.products.CreateProduct(ctx, ProductInput{
		CategoryID:    &category.ID,
		SKU:           " KETTLE-1 ",
		Name:          "Kettle",
		Price:         dec("24.99"),
		StockQuantity: 5,
		Images:        []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, "KETTLE-1", detail.SKU)
	assert.True(t, detail.Active)
	assert.Equal(t, []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"}, detail.Images)

	fetched, err := e.products.GetProduct(ctx, detail.ID)
	require.NoError(t, err)
	assert.Equal(t, detail.Images, fetched.Images)
	assert.True(t, dec("24.99").Equal(fetched.Price))
}

func TestProductService_CreateValidation(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	missing := uuid.New()

	tests := []struct {
		name  string
		input ProductInput
		field string
	}{
		{name: "Missing SKU", input: ProductInput{Name: "x", Price: dec("1")}, field: "sku"},
		{name: "Missing name", input: ProductInput{SKU: "x", Price: dec("1")}, field: "name"},
		{name: "Negative price", input: ProductInput{SKU: "x", Name: "x", Price: dec("-0.01")}, field: "price"},
		{name: "Negative stock", input: ProductInput{SKU: "x", Name: "x", Price: dec("1"), StockQuantity: -1}, field: "stockQuantity"},
		{name: "Unknown category", input: ProductInput{SKU: "x", Name: "x", Price: dec("1"), CategoryID: &missing}, field: "categoryId"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.products.CreateProduct(ctx, tt.input)
			appErr, ok := apperrors.As(err)
			require.True(t, ok)
			assert.Equal(t, apperrors.KindValidation, appErr.Kind)
			assert.Contains(t, appErr.Fields, tt.field)
		})
	}
}

func TestProductService_DuplicateSKU(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.seedProduct(t, "DUP", "1.00", 1)

	_, err := e.products.CreateProduct(ctx, ProductInput{SKU: "DUP", Name: "Again", Price: dec("2")})
	assert.ErrorIs(t, err, ErrProductSKUExists)
}

func TestProductService_UpdateInvalidatesCache(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	product := e.seedProduct(t, "CACHED", "5.00", 5)

	cached, err := e.products.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Product CACHED", cached.Name)

	_, err = e.products.UpdateProduct(ctx, product.ID, ProductInput{
		SKU: "CACHED", Name: "Fresh name", Price: dec("6.00"), StockQuantity: 5,
		Images: []string{"https://cdn.example.com/new.jpg"},
	})
	require.NoError(t, err)

	fresh, err := e.products.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fresh name", fresh.Name)
	assert.Equal(t, []string{"https://cdn.example.com/new.jpg"}, fresh.Images)

	_, err = e.products.UpdateProduct(ctx, uuid.New(), ProductInput{SKU: "X", Name: "X", Price: dec("1")})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductService_OrderInvalidatesCachedStock(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	user := e.seedUser(t, "stock@example.com", "")
	product := e.seedProduct(t, "STOCK", "1.00", 5)

	before, err := e.products.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, before.StockQuantity)

	_, err = e.orders.PlaceDirect(ctx, user.ID, []model.OrderLine{{ProductID: product.ID, Quantity: 2}}, PlaceOrderInput{})
	require.NoError(t, err)

	after, err := e.products.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, after.StockQuantity)
}

func TestProductService_SetStockAndDelete(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	product := e.seedProduct(t, "ADJ", "1.00", 5)

	updated, err := e.products.SetStock(ctx, product.ID, 42)
	require.NoError(t, err)
	assert.Equal(t, 42, updated.StockQuantity)

	_, err = e.products.SetStock(ctx, product.ID, -1)
	assert.Error(t, err)

	require.NoError(t, e.products.DeleteProduct(ctx, product.ID))
	_, err = e.products.GetProduct(ctx, product.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.ErrorIs(t, e.products.DeleteProduct(ctx, product.ID), ErrProductNotFound)
}

func TestProductService_ListClampsLimit(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.seedProduct(t, "L1", "1.00", 1)
	e.seedProduct(t, "L2", "2.00", 1)

	page, err := e.products.ListProducts(ctx, repository.ProductFilter{Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, repository.MaxProductLimit, page.Limit)
	assert.Equal(t, int64(2), page.Total)
	assert.Len(t, page.Items, 2)

	page, err = e.products.ListProducts(ctx, repository.ProductFilter{Limit: 1, Offset: 1, SortBy: repository.ProductSortPrice, SortAscending: true})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "L2", page.Items[0].SKU)
}
