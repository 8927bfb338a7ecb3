package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/auth"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/middleware"
)

type UserController struct {
	userService service.UserService
}

func NewUserController(userService service.UserService) *UserController {
	return &UserController{
		userService: userService,
	}
}

type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// GetUser returns a user's profile to that user or an admin.
// GET /api/users/:id
func (ctrl *UserController) GetUser(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if !auth.CanActFor(c.Request.Context(), id) {
		apperrors.Forbidden(c, "")
		return
	}

	user, err := ctrl.userService.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "fetch user")
		return
	}
	c.JSON(http.StatusOK, user)
}

// SetActive enables or disables an account.
// PUT /api/users/:id/active
func (ctrl *UserController) SetActive(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req SetActiveRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := ctrl.userService.SetActive(c.Request.Context(), id, *req.Active)
	if err != nil {
		respondError(c, err, "update user")
		return
	}

	log.Info("User active flag changed", map[string]interface{}{
		"target_user_id": id,
		"active":         user.Active,
	})
	c.JSON(http.StatusOK, user)
}
