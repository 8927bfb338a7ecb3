package model

import "github.com/google/uuid"

const (
	MinRating = 1
	MaxRating = 5
)

type ProductReview struct {
	Entity
	UserID    uuid.UUID `json:"userId"`
	ProductID uuid.UUID `json:"productId"`
	Rating    int       `json:"rating"`
	Title     string    `json:"title"`
	Comment   string    `json:"comment"`
	Verified  bool      `json:"verified"`
	Approved  bool      `json:"approved"`
}

func (ProductReview) TableName() string {
	return "product_reviews"
}

func ValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}

// RatingSummary aggregates approved reviews. Average is nil when the
// product has none, which keeps "unrated" apart from a real score.
type RatingSummary struct {
	ProductID uuid.UUID `json:"productId"`
	Average   *float64  `json:"average"`
	Count     int64     `json:"count"`
}
