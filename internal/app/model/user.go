package model

import (
	"strings"

	"github.com/google/uuid"
)

type Role string // stored in users.role, NULL means customer

const (
	RoleCustomer Role = "CUSTOMER"
	RoleAdmin    Role = "ADMIN"
)

// ParseRole accepts any casing and falls back to RoleCustomer.
func ParseRole(s string) Role {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleCustomer
	}
}

type User struct {
	Entity
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // empty when the column is NULL
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Phone        string `json:"phone"`
	Role         Role   `json:"role"`
	Active       bool   `json:"active"`
}

func (User) TableName() string {
	return "users"
}

// EffectiveRole returns the stored role or RoleCustomer when unset.
func (u *User) EffectiveRole() Role {
	if u.Role == "" {
		return RoleCustomer
	}
	return u.Role
}

func (u *User) IsAdmin() bool {
	return u.EffectiveRole() == RoleAdmin
}

// NormalizeEmail trims and lower-cases an address for lookup and storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Identity is the authenticated caller resolved from a request.
type Identity struct {
	UserID uuid.UUID `json:"userId"`
	Role   Role      `json:"role"`
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
