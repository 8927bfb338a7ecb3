package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/auth"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrReviewNotFound      = apperrors.NotFoundError(apperrors.ReviewNotFound, "review not found")
	ErrReviewAlreadyExists = apperrors.Duplicate(apperrors.ReviewAlreadyExists, "user has already reviewed this product")
	ErrInvalidRating       = apperrors.Validation(apperrors.ReviewInvalidRating, "rating must be between 1 and 5").
				WithField("rating", "must be between 1 and 5")
)

type ReviewInput struct {
	Rating  int
	Title   string
	Comment string
}

type ReviewService interface {
	CreateReview(ctx context.Context, userID, productID uuid.UUID, input ReviewInput) (*model.ProductReview, error)
	ListProductReviews(ctx context.Context, productID uuid.UUID, includeUnapproved bool) ([]model.ProductReview, error)
	GetRatingSummary(ctx context.Context, productID uuid.UUID) (*model.RatingSummary, error)
	UpdateReview(ctx context.Context, reviewID uuid.UUID, input ReviewInput) (*model.ProductReview, error)
	DeleteReview(ctx context.Context, reviewID uuid.UUID) error
	SetApproved(ctx context.Context, reviewID uuid.UUID, approved bool) (*model.ProductReview, error)
}

type reviewService struct {
	reviewRepo  repository.ReviewRepository
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	autoApprove bool
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	autoApprove bool,
) ReviewService {
	return &reviewService{
		reviewRepo:  reviewRepo,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		autoApprove: autoApprove,
	}
}

// CreateReview stores one review per (user, product). Verified is set when
// the user has a delivered order containing the product.
func (s *reviewService) CreateReview(ctx context.Context, userID, productID uuid.UUID, input ReviewInput) (*model.ProductReview, error) {
	logger.Info("Creating product review", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"rating":     input.Rating,
	})
	if !model.ValidRating(input.Rating) {
		return nil, ErrInvalidRating
	}
	if err := s.ensureProduct(ctx, productID); err != nil {
		return nil, err
	}

	_, err := s.reviewRepo.FindByUserAndProduct(ctx, userID, productID)
	if err == nil {
		logger.Warn("Duplicate review rejected", map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return nil, ErrReviewAlreadyExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	verified, err := s.orderRepo.HasDeliveredPurchase(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	review := &model.ProductReview{
		Entity:    model.NewEntity(),
		UserID:    userID,
		ProductID: productID,
		Rating:    input.Rating,
		Title:     strings.TrimSpace(input.Title),
		Comment:   strings.TrimSpace(input.Comment),
		Verified:  verified,
		Approved:  s.autoApprove,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		// The unique index catches a concurrent duplicate the pre-check missed.
		if apperrors.IsUniqueViolation(err) {
			return nil, ErrReviewAlreadyExists
		}
		if apperrors.IsForeignKeyViolation(err) {
			return nil, ErrUserNotFound
		}
		logger.Error("Failed to create review", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return nil, err
	}
	return review, nil
}

// ListProductReviews returns approved reviews, or all of them for admins.
func (s *reviewService) ListProductReviews(ctx context.Context, productID uuid.UUID, includeUnapproved bool) ([]model.ProductReview, error) {
	if err := s.ensureProduct(ctx, productID); err != nil {
		return nil, err
	}
	reviews, err := s.reviewRepo.FindByProduct(ctx, productID, !includeUnapproved)
	if err != nil {
		logger.Error("Failed to list reviews", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}
	return reviews, nil
}

func (s *reviewService) GetRatingSummary(ctx context.Context, productID uuid.UUID) (*model.RatingSummary, error) {
	if err := s.ensureProduct(ctx, productID); err != nil {
		return nil, err
	}
	summary, err := s.reviewRepo.Summary(ctx, productID)
	if err != nil {
		logger.Error("Failed to compute rating summary", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}
	return summary, nil
}

func (s *reviewService) UpdateReview(ctx context.Context, reviewID uuid.UUID, input ReviewInput) (*model.ProductReview, error) {
	if !model.ValidRating(input.Rating) {
		return nil, ErrInvalidRating
	}
	review, err := s.ownedReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	review.Rating = input.Rating
	review.Title = strings.TrimSpace(input.Title)
	review.Comment = strings.TrimSpace(input.Comment)
	review.Touch()
	if err := s.reviewRepo.Update(ctx, review); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		logger.Error("Failed to update review", err, map[string]interface{}{
			"review_id": reviewID,
		})
		return nil, err
	}
	logger.Info("Review updated", map[string]interface{}{
		"review_id": reviewID,
	})
	return review, nil
}

func (s *reviewService) DeleteReview(ctx context.Context, reviewID uuid.UUID) error {
	if _, err := s.ownedReview(ctx, reviewID); err != nil {
		return err
	}
	if err := s.reviewRepo.Delete(ctx, reviewID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReviewNotFound
		}
		return err
	}
	logger.Info("Review deleted", map[string]interface{}{
		"review_id": reviewID,
	})
	return nil
}

func (s *reviewService) SetApproved(ctx context.Context, reviewID uuid.UUID, approved bool) (*model.ProductReview, error) {
	if err := s.reviewRepo.SetApproved(ctx, reviewID, approved); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	logger.Info("Review approval changed", map[string]interface{}{
		"review_id": reviewID,
		"approved":  approved,
	})
	return s.findReview(ctx, reviewID)
}

// ownedReview loads a review the caller is allowed to modify.
func (s *reviewService) ownedReview(ctx context.Context, reviewID uuid.UUID) (*model.ProductReview, error) {
	review, err := s.findReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if !auth.CanActFor(ctx, review.UserID) {
		return nil, ErrForbidden
	}
	return review, nil
}

func (s *reviewService) findReview(ctx context.Context, reviewID uuid.UUID) (*model.ProductReview, error) {
	review, err := s.reviewRepo.FindByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return review, nil
}

func (s *reviewService) ensureProduct(ctx context.Context, productID uuid.UUID) error {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	return nil
}
