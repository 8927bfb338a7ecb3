package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWishlistService(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	user := e.seedUser(t, "wish@example.com", "")
	product := e.seedProduct(t, "WISH", "3.00", 1)

	item, err := e.wishlist.AddToWishlist(ctx, user.ID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.ID, item.ProductID)

	_, err = e.wishlist.AddToWishlist(ctx, user.ID, product.ID)
	assert.ErrorIs(t, err, ErrWishlistItemExists)

	_, err = e.wishlist.AddToWishlist(ctx, user.ID, uuid.New())
	assert.ErrorIs(t, err, ErrProductNotFound)

	entries, err := e.wishlist.GetWishlist(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Product WISH", entries[0].ProductName)
	assert.True(t, dec("3").Equal(entries[0].Price))

	require.NoError(t, e.wishlist.RemoveFromWishlist(ctx, user.ID, product.ID))
	assert.ErrorIs(t, e.wishlist.RemoveFromWishlist(ctx, user.ID, product.ID), ErrWishlistItemNotFound)
}
