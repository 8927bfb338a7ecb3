package errors

// Error codes returned in the "error" field of every failure response.
// Format: CATEGORY_SPECIFIC_DETAIL. Clients key their messages off these.

const (
	// ==================== auth (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"

	// ==================== authorization (AUTHZ_) ====================
	AuthzForbidden = "AUTHZ_FORBIDDEN"
	AuthzAdminOnly = "AUTHZ_ADMIN_ONLY"

	// ==================== validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID    = "VALIDATION_INVALID_ID"
	ValidationInvalidRange = "VALIDATION_INVALID_RANGE"
	ValidationRequired     = "VALIDATION_REQUIRED"

	// ==================== resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== catalog ====================
	UserNotFound          = "USER_NOT_FOUND"
	CategoryNotFound      = "CATEGORY_NOT_FOUND"
	CategoryNameExists    = "CATEGORY_NAME_EXISTS"
	CategoryInvalidParent = "CATEGORY_INVALID_PARENT"
	ProductNotFound       = "PRODUCT_NOT_FOUND"
	ProductSKUExists      = "PRODUCT_SKU_EXISTS"
	ProductInactive       = "PRODUCT_INACTIVE"

	// ==================== cart / order ====================
	CartItemNotFound       = "CART_ITEM_NOT_FOUND"
	CartEmpty              = "CART_EMPTY"
	CartInvalidQuantity    = "CART_INVALID_QUANTITY"
	InsufficientStock      = "INSUFFICIENT_STOCK"
	OrderNotFound          = "ORDER_NOT_FOUND"
	OrderInvalidTransition = "ORDER_INVALID_TRANSITION"
	OrderInvalidStatus     = "ORDER_INVALID_STATUS"

	// ==================== review / wishlist ====================
	ReviewNotFound        = "REVIEW_NOT_FOUND"
	ReviewInvalidRating   = "REVIEW_INVALID_RATING"
	ReviewAlreadyExists   = "REVIEW_ALREADY_EXISTS"
	WishlistItemNotFound  = "WISHLIST_ITEM_NOT_FOUND"
	WishlistAlreadyExists = "WISHLIST_ALREADY_EXISTS"

	// ==================== upload (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFileTooLarge    = "UPLOAD_FILE_TOO_LARGE"
	UploadFailed          = "UPLOAD_FAILED"

	// ==================== internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
)
