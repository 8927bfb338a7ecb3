package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newReview(userID, productID uuid.UUID, rating int, approved bool) *model.ProductReview {
	return &model.ProductReview{
		Entity:    model.NewEntity(),
		UserID:    userID,
		ProductID: productID,
		Rating:    rating,
		Title:     "title",
		Comment:   "comment",
		Approved:  approved,
	}
}

func TestReviewRepository_SummaryWithoutReviewsIsAbsent(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewReviewRepository(conn)
	product := seedProduct(t, conn, "SKU-R0", "1.00", 1)

	summary, err := repo.Summary(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Nil(t, summary.Average)
	assert.Zero(t, summary.Count)
}

func TestReviewRepository_SummaryAveragesApprovedOnly(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewReviewRepository(conn)
	product := seedProduct(t, conn, "SKU-R1", "1.00", 1)
	u1 := seedUser(t, conn, "r1@example.com")
	u2 := seedUser(t, conn, "r2@example.com")
	u3 := seedUser(t, conn, "r3@example.com")
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newReview(u1.ID, product.ID, 4, true)))

	summary, err := repo.Summary(ctx, product.ID)
	require.NoError(t, err)
	require.NotNil(t, summary.Average)
	assert.InDelta(t, 4.0, *summary.Average, 1e-9)
	assert.Equal(t, int64(1), summary.Count)

	require.NoError(t, repo.Create(ctx, newReview(u2.ID, product.ID, 5, true)))
	require.NoError(t, repo.Create(ctx, newReview(u3.ID, product.ID, 1, false)))

	summary, err = repo.Summary(ctx, product.ID)
	require.NoError(t, err)
	require.NotNil(t, summary.Average)
	assert.InDelta(t, 4.5, *summary.Average, 1e-9)
	assert.Equal(t, int64(2), summary.Count)

	approved, err := repo.FindByProduct(ctx, product.ID, true)
	require.NoError(t, err)
	assert.Len(t, approved, 2)
	all, err := repo.FindByProduct(ctx, product.ID, false)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestReviewRepository_UniquePerUserAndProduct(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewReviewRepository(conn)
	product := seedProduct(t, conn, "SKU-R2", "1.00", 1)
	user := seedUser(t, conn, "dup@example.com")
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newReview(user.ID, product.ID, 3, true)))
	err := repo.Create(ctx, newReview(user.ID, product.ID, 5, true))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "product_reviews")
}

func TestReviewRepository_UpdateApproveDelete(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewReviewRepository(conn)
	product := seedProduct(t, conn, "SKU-R3", "1.00", 1)
	user := seedUser(t, conn, "upd@example.com")
	ctx := context.Background()

	review := newReview(user.ID, product.ID, 2, false)
	require.NoError(t, repo.Create(ctx, review))

	review.Rating = 5
	review.Comment = "changed my mind"
	require.NoError(t, repo.Update(ctx, review))
	require.NoError(t, repo.SetApproved(ctx, review.ID, true))

	found, err := repo.FindByUserAndProduct(ctx, user.ID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, found.Rating)
	assert.Equal(t, "changed my mind", found.Comment)
	assert.True(t, found.Approved)

	require.NoError(t, repo.Delete(ctx, review.ID))
	_, err = repo.FindByID(ctx, review.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
