package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/service"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/middleware"
)

type ReviewController struct {
	reviewService service.ReviewService
}

func NewReviewController(reviewService service.ReviewService) *ReviewController {
	return &ReviewController{
		reviewService: reviewService,
	}
}

// Rating bounds are enforced by the service so the error code matches.
type ReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Title   string `json:"title" binding:"max=255"`
	Comment string `json:"comment" binding:"max=5000"`
}

func (r ReviewRequest) input() service.ReviewInput {
	return service.ReviewInput{Rating: r.Rating, Title: r.Title, Comment: r.Comment}
}

type ApprovalRequest struct {
	Approved *bool `json:"approved" binding:"required"`
}

// ListProductReviews returns approved reviews; admins may add
// includeUnapproved=true to see the moderation queue too.
// GET /api/products/:id/reviews
func (ctrl *ReviewController) ListProductReviews(c *gin.Context) {
	productID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	includeUnapproved, ok := queryBool(c, "includeUnapproved")
	if !ok {
		return
	}
	all := false
	if includeUnapproved != nil && *includeUnapproved {
		identity, ok := middleware.GetIdentity(c)
		if !ok || !identity.IsAdmin() {
			apperrors.Forbidden(c, "only admins can list unapproved reviews")
			return
		}
		all = true
	}

	reviews, err := ctrl.reviewService.ListProductReviews(c.Request.Context(), productID, all)
	if err != nil {
		respondError(c, err, "list reviews")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reviews": reviews,
		"count":   len(reviews),
	})
}

// GetRatingSummary
// GET /api/products/:id/rating
func (ctrl *ReviewController) GetRatingSummary(c *gin.Context) {
	productID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	summary, err := ctrl.reviewService.GetRatingSummary(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err, "fetch rating")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// CreateReview submits the caller's review of a product.
// POST /api/products/:id/reviews
func (ctrl *ReviewController) CreateReview(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	identity, ok := middleware.GetIdentity(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	productID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req ReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	review, err := ctrl.reviewService.CreateReview(c.Request.Context(), identity.UserID, productID, req.input())
	if err != nil {
		respondError(c, err, "create review")
		return
	}

	log.Info("Review created", map[string]interface{}{
		"review_id":  review.ID,
		"product_id": productID,
		"verified":   review.Verified,
	})
	c.JSON(http.StatusCreated, review)
}

// UpdateReview
// PUT /api/reviews/:id
func (ctrl *ReviewController) UpdateReview(c *gin.Context) {
	reviewID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req ReviewRequest
	if !bindJSON(c, &req) {
		return
	}
	review, err := ctrl.reviewService.UpdateReview(c.Request.Context(), reviewID, req.input())
	if err != nil {
		respondError(c, err, "update review")
		return
	}
	c.JSON(http.StatusOK, review)
}

// DeleteReview
// DELETE /api/reviews/:id
func (ctrl *ReviewController) DeleteReview(c *gin.Context) {
	reviewID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := ctrl.reviewService.DeleteReview(c.Request.Context(), reviewID); err != nil {
		respondError(c, err, "delete review")
		return
	}
	c.Status(http.StatusNoContent)
}

// SetApproval
// PUT /api/reviews/:id/approval
func (ctrl *ReviewController) SetApproval(c *gin.Context) {
	reviewID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req ApprovalRequest
	if !bindJSON(c, &req) {
		return
	}
	review, err := ctrl.reviewService.SetApproved(c.Request.Context(), reviewID, *req.Approved)
	if err != nil {
		respondError(c, err, "update review")
		return
	}
	c.JSON(http.StatusOK, review)
}
