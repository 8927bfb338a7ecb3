package service

import (
	"context"
	"testing"

	"github.com/ikkim/storefront-backend/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogImportService_Upserts(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	importer := NewCatalogImportService(e.productRepo, e.categoryRepo, e.products, e.categories)
	existing := e.seedProduct(t, "OLD-1", "5.00", 1)

	rows := []report.ProductRow{
		{Line: 2, SKU: "NEW-1", Name: "Teapot", Category: "Kitchen", Price: dec("19.99"), StockQuantity: 4, Active: true,
			Images: []string{"https://cdn.example.com/teapot.jpg"}},
		{Line: 3, SKU: "NEW-2", Name: "Kettle", Category: "Kitchen", Price: dec("29.00"), StockQuantity: 2, Active: true},
		{Line: 4, SKU: "OLD-1", Name: "Renamed", Price: dec("6.50"), StockQuantity: 9, Active: false},
		{Line: 5, SKU: "BAD-1", Name: "Broken", Price: dec("-1"), StockQuantity: 1, Active: true},
	}

	result, err := importer.ImportProducts(ctx, rows)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 1, result.CategoriesCreated)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, 5, result.Skipped[0].Line)

	kitchen, err := e.categoryRepo.FindByName(ctx, "Kitchen")
	require.NoError(t, err)

	teapot, err := e.productRepo.FindBySKU(ctx, "NEW-1")
	require.NoError(t, err)
	require.NotNil(t, teapot.CategoryID)
	assert.Equal(t, kitchen.ID, *teapot.CategoryID)
	images, err := e.productRepo.FindImages(ctx, teapot.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://cdn.example.com/teapot.jpg"}, images)

	renamed, err := e.productRepo.FindByID(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", renamed.Name)
	assert.True(t, dec("6.50").Equal(renamed.Price))
	assert.Equal(t, 9, renamed.StockQuantity)
	assert.False(t, renamed.Active)

	// A second run only updates.
	result, err = importer.ImportProducts(ctx, rows[:2])
	require.NoError(t, err)
	assert.Zero(t, result.Created)
	assert.Equal(t, 2, result.Updated)
	assert.Zero(t, result.CategoriesCreated)
}
