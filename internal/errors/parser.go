package errors

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// PostgreSQL SQLSTATE codes we translate.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgCheckViolation      = "23514"
)

// ErrorInfo is the client-facing code and message for a storage error.
type ErrorInfo struct {
	Kind    Kind
	Code    string
	Message string
}

// IsUniqueViolation reports whether err came from a unique index, either
// lib/pq's 23505 or SQLite's "UNIQUE constraint failed".
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgUniqueViolation
	}
	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "unique constraint") || strings.Contains(lower, "duplicate key")
}

// IsForeignKeyViolation reports whether err came from a foreign key check.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgForeignKeyViolation
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key constraint")
}

// ParseError turns a raw storage error into something safe to show a client.
// context is a short phrase such as "create product" used to pick messages.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Kind: KindInternal, Code: InternalServerError, Message: "internal server error"}
	}

	if appErr, ok := As(err); ok {
		return ErrorInfo{Kind: appErr.Kind, Code: appErr.Code, Message: appErr.Message}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Kind: KindNotFound, Code: ResourceNotFound, Message: notFoundMessage(context)}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pgUniqueViolation:
			return parseDuplicateKeyError(pqErr.Constraint + " " + pqErr.Message)
		case pgForeignKeyViolation:
			return parseForeignKeyError(pqErr.Constraint + " " + pqErr.Detail)
		case pgNotNullViolation:
			return ErrorInfo{Kind: KindValidation, Code: ValidationRequired, Message: pqErr.Column + " is required"}
		case pgCheckViolation:
			return parseCheckConstraintError(pqErr.Constraint + " " + pqErr.Message)
		}
	}

	errLower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errLower, "duplicate key") || strings.Contains(errLower, "unique constraint"):
		return parseDuplicateKeyError(errLower)
	case strings.Contains(errLower, "foreign key constraint"):
		return parseForeignKeyError(errLower)
	case strings.Contains(errLower, "not null constraint") || strings.Contains(errLower, "violates not-null"):
		return ErrorInfo{Kind: KindValidation, Code: ValidationRequired, Message: "a required field is missing"}
	case strings.Contains(errLower, "check constraint"):
		return parseCheckConstraintError(errLower)
	case strings.Contains(errLower, "connection refused") ||
		strings.Contains(errLower, "no such host") ||
		strings.Contains(errLower, "timeout"):
		return ErrorInfo{Kind: KindInternal, Code: InternalDatabaseError, Message: "storage is unavailable, please retry later"}
	}

	return ErrorInfo{Kind: KindInternal, Code: InternalServerError, Message: defaultErrorMessage(context)}
}

func parseDuplicateKeyError(detail string) ErrorInfo {
	d := strings.ToLower(detail)
	switch {
	case strings.Contains(d, "users.email") || strings.Contains(d, "idx_users_email"):
		return ErrorInfo{Kind: KindDuplicate, Code: AuthEmailAlreadyExists, Message: "email is already registered"}
	case strings.Contains(d, "categories.name") || strings.Contains(d, "idx_categories_name"):
		return ErrorInfo{Kind: KindDuplicate, Code: CategoryNameExists, Message: "category name already exists"}
	case strings.Contains(d, "products.sku") || strings.Contains(d, "idx_products_sku"):
		return ErrorInfo{Kind: KindDuplicate, Code: ProductSKUExists, Message: "product sku already exists"}
	case strings.Contains(d, "product_reviews") || strings.Contains(d, "idx_reviews_user_product"):
		return ErrorInfo{Kind: KindDuplicate, Code: ReviewAlreadyExists, Message: "you have already reviewed this product"}
	case strings.Contains(d, "wishlist_items") || strings.Contains(d, "idx_wishlist_user_product"):
		return ErrorInfo{Kind: KindDuplicate, Code: WishlistAlreadyExists, Message: "product is already in the wishlist"}
	}
	return ErrorInfo{Kind: KindDuplicate, Code: ResourceAlreadyExists, Message: "resource already exists"}
}

func parseForeignKeyError(detail string) ErrorInfo {
	d := strings.ToLower(detail)
	switch {
	case strings.Contains(d, "still referenced"):
		return ErrorInfo{Kind: KindConflict, Code: ResourceConflict, Message: "resource is still referenced by other data"}
	case strings.Contains(d, "category_id") || strings.Contains(d, "parent_id"):
		return ErrorInfo{Kind: KindValidation, Code: CategoryNotFound, Message: "referenced category does not exist"}
	case strings.Contains(d, "product_id"):
		return ErrorInfo{Kind: KindNotFound, Code: ProductNotFound, Message: "referenced product does not exist"}
	case strings.Contains(d, "user_id"):
		return ErrorInfo{Kind: KindNotFound, Code: UserNotFound, Message: "referenced user does not exist"}
	}
	return ErrorInfo{Kind: KindNotFound, Code: ResourceNotFound, Message: "referenced resource does not exist"}
}

func parseCheckConstraintError(detail string) ErrorInfo {
	d := strings.ToLower(detail)
	switch {
	case strings.Contains(d, "rating"):
		return ErrorInfo{Kind: KindValidation, Code: ReviewInvalidRating, Message: "rating must be between 1 and 5"}
	case strings.Contains(d, "stock"):
		return ErrorInfo{Kind: KindValidation, Code: InsufficientStock, Message: "stock quantity cannot be negative"}
	case strings.Contains(d, "price"):
		return ErrorInfo{Kind: KindValidation, Code: ValidationInvalidRange, Message: "price cannot be negative"}
	case strings.Contains(d, "quantity"):
		return ErrorInfo{Kind: KindValidation, Code: CartInvalidQuantity, Message: "quantity must be at least 1"}
	}
	return ErrorInfo{Kind: KindValidation, Code: ValidationInvalidInput, Message: "invalid input"}
}

func notFoundMessage(context string) string {
	c := strings.ToLower(context)
	for _, noun := range []string{"user", "category", "product", "cart", "order", "review", "wishlist"} {
		if strings.Contains(c, noun) {
			return noun + " not found"
		}
	}
	return "requested resource not found"
}

func defaultErrorMessage(context string) string {
	if context == "" {
		return "internal server error, please retry later"
	}
	return "failed to " + context + ", please retry later"
}

// ToAppError normalises any error into an AppError.
func ToAppError(err error, context string) *AppError {
	if appErr, ok := As(err); ok {
		return appErr
	}
	info := ParseError(err, context)
	return &AppError{Kind: info.Kind, Code: info.Code, Message: info.Message, Err: err}
}
