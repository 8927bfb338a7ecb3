package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/auth"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/middleware"
)

// CartController serves /api/cart. Routes under /cart/user/:userId are
// guarded by middleware.RequireSelfOrAdmin.
type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

type AddToCartRequest struct {
	ProductID uuid.UUID `json:"productId" binding:"required"`
	Quantity  int       `json:"quantity"`
}

// GetCart returns the user's cart, creating it on first access.
// GET /api/cart/user/:userId
func (ctrl *CartController) GetCart(c *gin.Context) {
	userID, ok := parseUUIDParam(c, "userId")
	if !ok {
		return
	}
	cart, err := ctrl.cartService.GetCart(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "fetch cart")
		return
	}
	c.JSON(http.StatusOK, cart)
}

// AddItem adds a product or increments its quantity.
// POST /api/cart/user/:userId/items
func (ctrl *CartController) AddItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := parseUUIDParam(c, "userId")
	if !ok {
		return
	}
	var req AddToCartRequest
	if !bindJSON(c, &req) {
		return
	}

	log.Debug("Adding item to cart", map[string]interface{}{
		"user_id":    userID,
		"product_id": req.ProductID,
		"quantity":   req.Quantity,
	})

	cart, err := ctrl.cartService.AddItem(c.Request.Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, err, "add cart item")
		return
	}
	c.JSON(http.StatusOK, cart)
}

// UpdateItem sets an item's quantity.
// PUT /api/cart/user/:userId/items/:itemId?quantity=
func (ctrl *CartController) UpdateItem(c *gin.Context) {
	userID, ok := parseUUIDParam(c, "userId")
	if !ok {
		return
	}
	itemID, ok := parseUUIDParam(c, "itemId")
	if !ok {
		return
	}
	if c.Query("quantity") == "" {
		apperrors.RespondWithValidationError(c, map[string]string{"quantity": "is required"})
		return
	}
	quantity, ok := queryInt(c, "quantity", 0)
	if !ok {
		return
	}

	cart, err := ctrl.cartService.UpdateItemQuantity(c.Request.Context(), userID, itemID, quantity)
	if err != nil {
		respondError(c, err, "update cart item")
		return
	}
	c.JSON(http.StatusOK, cart)
}

// RemoveItem
// DELETE /api/cart/user/:userId/items/:itemId
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	userID, ok := parseUUIDParam(c, "userId")
	if !ok {
		return
	}
	itemID, ok := parseUUIDParam(c, "itemId")
	if !ok {
		return
	}
	cart, err := ctrl.cartService.RemoveItem(c.Request.Context(), userID, itemID)
	if err != nil {
		respondError(c, err, "remove cart item")
		return
	}
	c.JSON(http.StatusOK, cart)
}

// ClearCart empties the cart but keeps it.
// DELETE /api/cart/user/:userId
func (ctrl *CartController) ClearCart(c *gin.Context) {
	userID, ok := parseUUIDParam(c, "userId")
	if !ok {
		return
	}
	cart, err := ctrl.cartService.ClearCart(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "clear cart")
		return
	}
	c.JSON(http.StatusOK, cart)
}

// CountItems
// GET /api/cart/user/:userId/count
func (ctrl *CartController) CountItems(c *gin.Context) {
	userID, ok := parseUUIDParam(c, "userId")
	if !ok {
		return
	}
	ctrl.respondCount(c, userID)
}

// CountItemsByQuery is the query-string form of CountItems.
// GET /api/cart/count?userId=
func (ctrl *CartController) CountItemsByQuery(c *gin.Context) {
	userID, err := uuid.Parse(c.Query("userId"))
	if err != nil {
		apperrors.RespondWithValidationError(c, map[string]string{"userId": "must be a valid UUID"})
		return
	}
	if !auth.CanActFor(c.Request.Context(), userID) {
		apperrors.Forbidden(c, "")
		return
	}
	ctrl.respondCount(c, userID)
}

func (ctrl *CartController) respondCount(c *gin.Context, userID uuid.UUID) {
	count, err := ctrl.cartService.CountItems(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "count cart items")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"userId":     userID,
		"totalItems": count,
	})
}
