package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/auth"
	"github.com/ikkim/storefront-backend/internal/errors"
)

const UserIDHeader = "X-User-Id"

// TokenResolver turns a bearer token into the identity it was issued for.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (model.Identity, error)
}

// UserResolver looks up the identity of an active user by id.
type UserResolver interface {
	ResolveIdentity(ctx context.Context, id uuid.UUID) (model.Identity, error)
}

type IdentityMiddleware struct {
	tokens TokenResolver
	users  UserResolver
}

func NewIdentityMiddleware(tokens TokenResolver, users UserResolver) *IdentityMiddleware {
	return &IdentityMiddleware{
		tokens: tokens,
		users:  users,
	}
}

// Resolve attaches the caller's identity to the request context when the
// request carries a valid bearer token or X-User-Id header. Anything absent
// or invalid leaves the request anonymous.
func (m *IdentityMiddleware) Resolve() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)
		ctx := c.Request.Context()

		identity, ok := m.fromBearer(c)
		if !ok {
			identity, ok = m.fromHeader(c)
		}
		if !ok {
			c.Next()
			return
		}

		c.Request = c.Request.WithContext(auth.WithIdentity(ctx, identity))
		log = log.WithContext(map[string]interface{}{
			"user_id": identity.UserID,
		})
		c.Set(loggerKey, log)
		log.Debug("Identity resolved", map[string]interface{}{
			"role": identity.Role,
		})

		c.Next()
	}
}

func (m *IdentityMiddleware) fromBearer(c *gin.Context) (model.Identity, bool) {
	header := c.GetHeader("Authorization")
	if header == "" || m.tokens == nil {
		return model.Identity{}, false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		GetLoggerFromContext(c).Debug("Ignoring malformed authorization header")
		return model.Identity{}, false
	}
	identity, err := m.tokens.ResolveToken(c.Request.Context(), parts[1])
	if err != nil {
		GetLoggerFromContext(c).Debug("Ignoring unusable bearer token", map[string]interface{}{
			"error": err.Error(),
		})
		return model.Identity{}, false
	}
	return identity, true
}

func (m *IdentityMiddleware) fromHeader(c *gin.Context) (model.Identity, bool) {
	raw := strings.TrimSpace(c.GetHeader(UserIDHeader))
	if raw == "" || m.users == nil {
		return model.Identity{}, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		GetLoggerFromContext(c).Debug("Ignoring malformed user id header", map[string]interface{}{
			"value": raw,
		})
		return model.Identity{}, false
	}
	identity, err := m.users.ResolveIdentity(c.Request.Context(), id)
	if err != nil {
		GetLoggerFromContext(c).Debug("Ignoring user id header", map[string]interface{}{
			"user_id": id,
			"error":   err.Error(),
		})
		return model.Identity{}, false
	}
	return identity, true
}

// RequireIdentity rejects anonymous requests with 401.
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := auth.FromContext(c.Request.Context()); !ok {
			GetLoggerFromContext(c).Warn("Missing identity", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.Unauthorized(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRole rejects anonymous requests with 401 and callers holding none
// of the given roles with 403.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		identity, ok := auth.FromContext(c.Request.Context())
		if !ok {
			log.Warn("Missing identity for role check", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.Unauthorized(c, "")
			c.Abort()
			return
		}

		for _, r := range roles {
			if identity.Role == r {
				c.Next()
				return
			}
		}

		log.Warn("Insufficient permissions", map[string]interface{}{
			"user_role":      identity.Role,
			"required_roles": roles,
			"path":           c.Request.URL.Path,
		})
		errors.Forbidden(c, "")
		c.Abort()
	}
}

// RequireSelfOrAdmin guards /.../user/:param routes: a resolved identity
// must be that user or an admin. Anonymous requests pass through.
func RequireSelfOrAdmin(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := uuid.Parse(c.Param(param))
		if err != nil {
			errors.BadRequest(c, errors.ValidationInvalidID, "invalid user id")
			c.Abort()
			return
		}
		if !auth.CanActFor(c.Request.Context(), userID) {
			GetLoggerFromContext(c).Warn("Caller may not act for user", map[string]interface{}{
				"target_user_id": userID,
				"path":           c.Request.URL.Path,
			})
			errors.Forbidden(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetIdentity returns the identity resolved for this request, if any.
func GetIdentity(c *gin.Context) (model.Identity, bool) {
	return auth.FromContext(c.Request.Context())
}
