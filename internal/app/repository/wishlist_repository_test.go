package repository

import (
	"context"
	"testing"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestWishlistRepository(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewWishlistRepository(conn)
	user := seedUser(t, conn, "wish@example.com")
	product := seedProduct(t, conn, "SKU-W", "7.00", 1)
	ctx := context.Background()

	item := &model.WishlistItem{Entity: model.NewEntity(), UserID: user.ID, ProductID: product.ID}
	require.NoError(t, repo.Add(ctx, item))

	exists, err := repo.Exists(ctx, user.ID, product.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	dup := &model.WishlistItem{Entity: model.NewEntity(), UserID: user.ID, ProductID: product.ID}
	err = repo.Add(ctx, dup)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wishlist_items")

	entries, err := repo.FindByUserID(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "SKU-W", entries[0].ProductSKU)
	assert.True(t, entries[0].ProductActive)

	require.NoError(t, repo.Remove(ctx, user.ID, product.ID))
	assert.ErrorIs(t, repo.Remove(ctx, user.ID, product.ID), gorm.ErrRecordNotFound)
}
