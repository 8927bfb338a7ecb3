package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *model.ProductReview) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ProductReview, error)
	FindByUserAndProduct(ctx context.Context, userID, productID uuid.UUID) (*model.ProductReview, error)
	FindByProduct(ctx context.Context, productID uuid.UUID, approvedOnly bool) ([]model.ProductReview, error)
	Update(ctx context.Context, review *model.ProductReview) error
	SetApproved(ctx context.Context, id uuid.UUID, approved bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	Summary(ctx context.Context, productID uuid.UUID) (*model.RatingSummary, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

const reviewColumns = `id, user_id, product_id, rating, title, comment, verified, approved,
	created_at, updated_at`

func (r *reviewRepository) Create(ctx context.Context, review *model.ProductReview) error {
	logger.Debug("Creating review in database", map[string]interface{}{
		"user_id":    review.UserID,
		"product_id": review.ProductID,
		"rating":     review.Rating,
	})

	_, err := exec(ctx, r.db, `INSERT INTO product_reviews
		(id, user_id, product_id, rating, title, comment, verified, approved, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		review.ID, review.UserID, review.ProductID, review.Rating, review.Title, review.Comment,
		review.Verified, review.Approved, review.CreatedAt, review.UpdatedAt,
	)
	if err != nil {
		logger.Error("Failed to create review in database", err, map[string]interface{}{
			"user_id":    review.UserID,
			"product_id": review.ProductID,
		})
		return err
	}

	logger.Debug("Review created in database", map[string]interface{}{
		"review_id": review.ID,
	})
	return nil
}

func (r *reviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ProductReview, error) {
	var review model.ProductReview
	err := queryOne(ctx, r.db, &review, "SELECT "+reviewColumns+" FROM product_reviews WHERE id = ?", id)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find review by ID", err, map[string]interface{}{
				"review_id": id,
			})
		}
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) FindByUserAndProduct(ctx context.Context, userID, productID uuid.UUID) (*model.ProductReview, error) {
	var review model.ProductReview
	err := queryOne(ctx, r.db, &review,
		"SELECT "+reviewColumns+" FROM product_reviews WHERE user_id = ? AND product_id = ?", userID, productID)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find review by user and product", err, map[string]interface{}{
				"user_id":    userID,
				"product_id": productID,
			})
		}
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) FindByProduct(ctx context.Context, productID uuid.UUID, approvedOnly bool) ([]model.ProductReview, error) {
	logger.Debug("Finding reviews by product", map[string]interface{}{
		"product_id":    productID,
		"approved_only": approvedOnly,
	})

	stmt := "SELECT " + reviewColumns + " FROM product_reviews WHERE product_id = ?"
	args := []interface{}{productID}
	if approvedOnly {
		stmt += " AND approved = ?"
		args = append(args, true)
	}
	stmt += " ORDER BY created_at DESC, id"

	reviews := []model.ProductReview{}
	if err := query(ctx, r.db, &reviews, stmt, args...); err != nil {
		logger.Error("Failed to find reviews by product", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}
	return reviews, nil
}

func (r *reviewRepository) Update(ctx context.Context, review *model.ProductReview) error {
	logger.Debug("Updating review in database", map[string]interface{}{
		"review_id": review.ID,
	})

	err := execOne(ctx, r.db,
		"UPDATE product_reviews SET rating = ?, title = ?, comment = ?, updated_at = ? WHERE id = ?",
		review.Rating, review.Title, review.Comment, review.UpdatedAt, review.ID)
	if err != nil && err != gorm.ErrRecordNotFound {
		logger.Error("Failed to update review", err, map[string]interface{}{
			"review_id": review.ID,
		})
	}
	return err
}

func (r *reviewRepository) SetApproved(ctx context.Context, id uuid.UUID, approved bool) error {
	err := execOne(ctx, r.db, "UPDATE product_reviews SET approved = ?, updated_at = ? WHERE id = ?",
		approved, now(), id)
	if err != nil && err != gorm.ErrRecordNotFound {
		logger.Error("Failed to update review approval", err, map[string]interface{}{
			"review_id": id,
		})
	}
	return err
}

func (r *reviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	logger.Debug("Deleting review from database", map[string]interface{}{
		"review_id": id,
	})

	err := execOne(ctx, r.db, "DELETE FROM product_reviews WHERE id = ?", id)
	if err != nil && err != gorm.ErrRecordNotFound {
		logger.Error("Failed to delete review", err, map[string]interface{}{
			"review_id": id,
		})
	}
	return err
}

// Summary averages approved ratings. AVG over no rows is NULL, which
// leaves Average nil.
func (r *reviewRepository) Summary(ctx context.Context, productID uuid.UUID) (*model.RatingSummary, error) {
	var row struct {
		Average sql.NullFloat64
		Count   int64
	}
	err := query(ctx, r.db, &row, `SELECT AVG(rating * 1.0) AS average, COUNT(*) AS count
		FROM product_reviews
		WHERE product_id = ? AND approved = ?`, productID, true)
	if err != nil {
		logger.Error("Failed to compute rating summary", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}
	summary := &model.RatingSummary{ProductID: productID, Count: row.Count}
	if row.Average.Valid {
		avg := row.Average.Float64
		summary.Average = &avg
	}
	return summary, nil
}
