package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/middleware"
)

// parseUUIDParam reads a path parameter as a UUID, answering 400 when it
// is not one.
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		middleware.GetLoggerFromContext(c).Warn("Invalid id parameter", map[string]interface{}{
			"param": name,
			"value": c.Param(name),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// queryInt reads an optional integer query parameter. A present but
// malformed value answers 400.
func queryInt(c *gin.Context, name string, fallback int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		apperrors.RespondWithValidationError(c, map[string]string{name: "must be an integer"})
		return 0, false
	}
	return n, true
}

// queryBool reads an optional boolean query parameter.
func queryBool(c *gin.Context, name string) (*bool, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		apperrors.RespondWithValidationError(c, map[string]string{name: "must be true or false"})
		return nil, false
	}
	return &b, true
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.GetLoggerFromContext(c).Warn("Invalid request body", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.RespondBindingError(c, err)
		return false
	}
	return true
}

// respondError logs err at a level matching its HTTP status and renders it.
func respondError(c *gin.Context, err error, action string) {
	log := middleware.GetLoggerFromContext(c)
	appErr := apperrors.ToAppError(err, action)
	if appErr.Kind.HTTPStatus() >= http.StatusInternalServerError {
		log.Error("Failed to "+action, err)
	} else {
		log.Warn("Rejected "+action, map[string]interface{}{
			"code":  appErr.Code,
			"error": err.Error(),
		})
	}
	apperrors.Respond(c, err, action)
}
