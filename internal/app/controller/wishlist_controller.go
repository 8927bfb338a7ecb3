package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ikkim/storefront-backend/internal/app/service"
)

type WishlistController struct {
	wishlistService service.WishlistService
}

func NewWishlistController(wishlistService service.WishlistService) *WishlistController {
	return &WishlistController{
		wishlistService: wishlistService,
	}
}

type AddToWishlistRequest struct {
	ProductID uuid.UUID `json:"productId" binding:"required"`
}

// GetWishlist
// GET /api/wishlist/user/:userId
func (ctrl *WishlistController) GetWishlist(c *gin.Context) {
	userID, ok := parseUUIDParam(c, "userId")
	if !ok {
		return
	}
	items, err := ctrl.wishlistService.GetWishlist(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "fetch wishlist")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

// AddItem
// POST /api/wishlist/user/:userId/items
func (ctrl *WishlistController) AddItem(c *gin.Context) {
	userID, ok := parseUUIDParam(c, "userId")
	if !ok {
		return
	}
	var req AddToWishlistRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := ctrl.wishlistService.AddToWishlist(c.Request.Context(), userID, req.ProductID)
	if err != nil {
		respondError(c, err, "add wishlist item")
		return
	}
	c.JSON(http.StatusCreated, item)
}

// RemoveItem
// DELETE /api/wishlist/user/:userId/items/:productId
func (ctrl *WishlistController) RemoveItem(c *gin.Context) {
	userID, ok := parseUUIDParam(c, "userId")
	if !ok {
		return
	}
	productID, ok := parseUUIDParam(c, "productId")
	if !ok {
		return
	}
	if err := ctrl.wishlistService.RemoveFromWishlist(c.Request.Context(), userID, productID); err != nil {
		respondError(c, err, "remove wishlist item")
		return
	}
	c.Status(http.StatusNoContent)
}
