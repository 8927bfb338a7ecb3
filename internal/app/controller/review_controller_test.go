package controller

import (
	"net/http"
	"testing"

	"github.com/ikkim/storefront-backend/internal/app/model"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewController_CreateAndSummarize(t *testing.T) {
	e := setupControllerTest(t)
	alice := e.seedUser(t, "alice@example.com", "")
	bob := e.seedUser(t, "bob@example.com", "")
	product := e.seedProduct(t, "PEN", "2.00", 10)
	reviewsURL := "/api/products/" + product.ID.String() + "/reviews"
	ratingURL := "/api/products/" + product.ID.String() + "/rating"

	w := e.do(t, http.MethodGet, ratingURL, nil, nil)
	requireStatus(t, w, http.StatusOK)
	var summary model.RatingSummary
	decodeBody(t, w, &summary)
	assert.Nil(t, summary.Average)
	assert.Zero(t, summary.Count)

	w = e.do(t, http.MethodPost, reviewsURL, map[string]interface{}{"rating": 5}, nil)
	requireStatus(t, w, http.StatusUnauthorized)

	w = e.do(t, http.MethodPost, reviewsURL, map[string]interface{}{
		"rating": 5, "title": "Great", "comment": "Writes well",
	}, alice)
	requireStatus(t, w, http.StatusCreated)
	var review model.ProductReview
	decodeBody(t, w, &review)
	assert.Equal(t, alice.ID, review.UserID)
	assert.True(t, review.Approved)
	assert.False(t, review.Verified)

	w = e.do(t, http.MethodPost, reviewsURL, map[string]interface{}{"rating": 4}, alice)
	requireStatus(t, w, http.StatusConflict)
	assert.Equal(t, apperrors.ReviewAlreadyExists, decodeError(t, w).Error)

	w = e.do(t, http.MethodPost, reviewsURL, map[string]interface{}{"rating": 6}, bob)
	requireStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, apperrors.ReviewInvalidRating, decodeError(t, w).Error)

	w = e.do(t, http.MethodPost, reviewsURL, map[string]interface{}{"rating": 3}, bob)
	requireStatus(t, w, http.StatusCreated)

	w = e.do(t, http.MethodGet, ratingURL, nil, nil)
	requireStatus(t, w, http.StatusOK)
	decodeBody(t, w, &summary)
	require.NotNil(t, summary.Average)
	assert.InDelta(t, 4.0, *summary.Average, 1e-9)
	assert.Equal(t, int64(2), summary.Count)

	w = e.do(t, http.MethodGet, reviewsURL, nil, nil)
	requireStatus(t, w, http.StatusOK)
	var list struct {
		Reviews []model.ProductReview `json:"reviews"`
		Count   int                   `json:"count"`
	}
	decodeBody(t, w, &list)
	assert.Equal(t, 2, list.Count)

	w = e.do(t, http.MethodPost, "/api/products/"+product.ID.String()+"x/reviews",
		map[string]interface{}{"rating": 3}, bob)
	requireStatus(t, w, http.StatusBadRequest)
}

func TestReviewController_OwnershipAndModeration(t *testing.T) {
	e := setupControllerTest(t)
	admin := e.seedUser(t, "mod@example.com", model.RoleAdmin)
	author := e.seedUser(t, "author@example.com", "")
	stranger := e.seedUser(t, "stranger@example.com", "")
	product := e.seedProduct(t, "MUG", "9.00", 10)
	reviewsURL := "/api/products/" + product.ID.String() + "/reviews"

	w := e.do(t, http.MethodPost, reviewsURL, map[string]interface{}{"rating": 2}, author)
	requireStatus(t, w, http.StatusCreated)
	var review model.ProductReview
	decodeBody(t, w, &review)
	reviewURL := "/api/reviews/" + review.ID.String()

	w = e.do(t, http.MethodPut, reviewURL, map[string]interface{}{"rating": 5}, stranger)
	requireStatus(t, w, http.StatusForbidden)
	w = e.do(t, http.MethodDelete, reviewURL, nil, stranger)
	requireStatus(t, w, http.StatusForbidden)

	w = e.do(t, http.MethodPut, reviewURL, map[string]interface{}{"rating": 4, "comment": "Grew on me"}, author)
	requireStatus(t, w, http.StatusOK)
	decodeBody(t, w, &review)
	assert.Equal(t, 4, review.Rating)
	assert.Equal(t, "Grew on me", review.Comment)

	w = e.do(t, http.MethodPut, reviewURL+"/approval", map[string]interface{}{"approved": false}, author)
	requireStatus(t, w, http.StatusForbidden)

	w = e.do(t, http.MethodPut, reviewURL+"/approval", map[string]interface{}{"approved": false}, admin)
	requireStatus(t, w, http.StatusOK)
	decodeBody(t, w, &review)
	assert.False(t, review.Approved)

	w = e.do(t, http.MethodGet, reviewsURL, nil, nil)
	requireStatus(t, w, http.StatusOK)
	var list struct {
		Count int `json:"count"`
	}
	decodeBody(t, w, &list)
	assert.Zero(t, list.Count)

	w = e.do(t, http.MethodGet, reviewsURL+"?includeUnapproved=true", nil, author)
	requireStatus(t, w, http.StatusForbidden)

	w = e.do(t, http.MethodGet, reviewsURL+"?includeUnapproved=true", nil, admin)
	requireStatus(t, w, http.StatusOK)
	decodeBody(t, w, &list)
	assert.Equal(t, 1, list.Count)

	w = e.do(t, http.MethodDelete, reviewURL, nil, author)
	requireStatus(t, w, http.StatusNoContent)
	w = e.do(t, http.MethodDelete, reviewURL, nil, author)
	requireStatus(t, w, http.StatusNotFound)
	assert.Equal(t, apperrors.ReviewNotFound, decodeError(t, w).Error)
}
