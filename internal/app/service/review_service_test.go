package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewService_CreateAndSummary(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	user := e.seedUser(t, "reviewer@example.com", "")
	product := e.seedProduct(t, "REV", "1.00", 5)

	summary, err := e.reviews.GetRatingSummary(ctx, product.ID)
	require.NoError(t, err)
	assert.Nil(t, summary.Average)
	assert.Zero(t, summary.Count)

	review, err := e.reviews.CreateReview(ctx, user.ID, product.ID, ReviewInput{Rating: 4, Title: "Nice"})
	require.NoError(t, err)
	assert.True(t, review.Approved)
	assert.False(t, review.Verified)

	summary, err = e.reviews.GetRatingSummary(ctx, product.ID)
	require.NoError(t, err)
	require.NotNil(t, summary.Average)
	assert.InDelta(t, 4.0, *summary.Average, 1e-9)
	assert.Equal(t, int64(1), summary.Count)

	_, err = e.reviews.CreateReview(ctx, user.ID, product.ID, ReviewInput{Rating: 5})
	assert.ErrorIs(t, err, ErrReviewAlreadyExists)
}

func TestReviewService_RatingBounds(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	user := e.seedUser(t, "bounds@example.com", "")
	product := e.seedProduct(t, "BND", "1.00", 5)

	for _, rating := range []int{0, 6, -3} {
		_, err := e.reviews.CreateReview(ctx, user.ID, product.ID, ReviewInput{Rating: rating})
		assert.ErrorIs(t, err, ErrInvalidRating)
	}
	_, err := e.reviews.CreateReview(ctx, user.ID, uuid.New(), ReviewInput{Rating: 3})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestReviewService_VerifiedPurchase(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	user := e.seedUser(t, "verified@example.com", "")
	product := e.seedProduct(t, "VER", "1.00", 5)

	order, err := e.orders.PlaceDirect(ctx, user.ID, []model.OrderLine{{ProductID: product.ID, Quantity: 1}}, PlaceOrderInput{})
	require.NoError(t, err)
	for _, next := range []model.OrderStatus{model.OrderStatusConfirmed, model.OrderStatusShipped, model.OrderStatusDelivered} {
		_, err = e.orders.UpdateStatus(ctx, order.ID, next)
		require.NoError(t, err)
	}

	review, err := e.reviews.CreateReview(ctx, user.ID, product.ID, ReviewInput{Rating: 5})
	require.NoError(t, err)
	assert.True(t, review.Verified)
}

func TestReviewService_ApprovalAndOwnership(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	author := e.seedUser(t, "author@example.com", "")
	other := e.seedUser(t, "other@example.com", "")
	product := e.seedProduct(t, "OWNR", "1.00", 5)

	e.reviews = NewReviewService(e.reviewRepo, e.orderRepo, e.productRepo, false)
	review, err := e.reviews.CreateReview(ctx, author.ID, product.ID, ReviewInput{Rating: 2})
	require.NoError(t, err)
	assert.False(t, review.Approved)

	visible, err := e.reviews.ListProductReviews(ctx, product.ID, false)
	require.NoError(t, err)
	assert.Empty(t, visible)
	summary, err := e.reviews.GetRatingSummary(ctx, product.ID)
	require.NoError(t, err)
	assert.Nil(t, summary.Average, "unapproved reviews do not count")

	approved, err := e.reviews.SetApproved(ctx, review.ID, true)
	require.NoError(t, err)
	assert.True(t, approved.Approved)

	_, err = e.reviews.UpdateReview(asUser(other), review.ID, ReviewInput{Rating: 1})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, e.reviews.DeleteReview(asUser(other), review.ID), ErrForbidden)

	updated, err := e.reviews.UpdateReview(asUser(author), review.ID, ReviewInput{Rating: 5, Comment: "Grew on me"})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Rating)

	require.NoError(t, e.reviews.DeleteReview(asUser(author), review.ID))
	_, err = e.reviews.SetApproved(ctx, review.ID, true)
	assert.ErrorIs(t, err, ErrReviewNotFound)
}
