package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
)

func TestIdentityRoundTrip(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	want := model.Identity{UserID: uuid.New(), Role: model.RoleAdmin}
	got, ok := FromContext(WithIdentity(context.Background(), want))
	assert.True(t, ok)
	assert.Equal(t, want, got)
}

func TestCanActFor(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()

	tests := []struct {
		name string
		ctx  context.Context
		want bool
	}{
		{name: "anonymous", ctx: context.Background(), want: true},
		{name: "owner", ctx: WithIdentity(context.Background(), model.Identity{UserID: owner, Role: model.RoleCustomer}), want: true},
		{name: "other customer", ctx: WithIdentity(context.Background(), model.Identity{UserID: other, Role: model.RoleCustomer}), want: false},
		{name: "admin", ctx: WithIdentity(context.Background(), model.Identity{UserID: other, Role: model.RoleAdmin}), want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanActFor(tt.ctx, owner))
		})
	}
}
