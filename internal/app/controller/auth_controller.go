package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/service"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/middleware"
)

type AuthController struct {
	authService service.AuthService
	userService service.UserService
}

func NewAuthController(authService service.AuthService, userService service.UserService) *AuthController {
	return &AuthController{
		authService: authService,
		userService: userService,
	}
}

// Email format and password length are checked by the service so every
// entry point shares the same rules and messages.
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,max=255"`
	Password  string `json:"password" binding:"required,max=72"`
	FirstName string `json:"firstName" binding:"max=100"`
	LastName  string `json:"lastName" binding:"max=100"`
	Phone     string `json:"phone" binding:"max=30"`
}

type AuthenticateRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register handles user registration
// POST /api/auth/register
func (ctrl *AuthController) Register(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := ctrl.authService.Register(c.Request.Context(), service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		respondError(c, err, "register user")
		return
	}

	log.Info("User registered successfully", map[string]interface{}{
		"user_id": result.UserID,
	})
	c.JSON(http.StatusCreated, result)
}

// Authenticate checks credentials and returns the caller's identity and
// an access token.
// POST /api/auth/authenticate
func (ctrl *AuthController) Authenticate(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req AuthenticateRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := ctrl.authService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err, "authenticate")
		return
	}

	log.Info("User authenticated", map[string]interface{}{
		"user_id": result.UserID,
	})
	c.JSON(http.StatusOK, result)
}

// GetMe returns the caller's own profile.
// GET /api/auth/me
func (ctrl *AuthController) GetMe(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	user, err := ctrl.userService.GetUser(c.Request.Context(), identity.UserID)
	if err != nil {
		respondError(c, err, "fetch user")
		return
	}
	c.JSON(http.StatusOK, user)
}
