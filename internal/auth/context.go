// Package auth carries the authenticated identity through a request's
// context.Context.
package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/ikkim/storefront-backend/internal/app/model"
)

type identityKey struct{}

func WithIdentity(ctx context.Context, id model.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the identity stored by WithIdentity.
func FromContext(ctx context.Context) (model.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(model.Identity)
	return id, ok
}

// CanActFor reports whether the caller may touch resources owned by
// userID. Anonymous callers are let through; ownership is only enforced
// once an identity is present.
func CanActFor(ctx context.Context, userID uuid.UUID) bool {
	id, ok := FromContext(ctx)
	if !ok {
		return true
	}
	return id.IsAdmin() || id.UserID == userID
}
