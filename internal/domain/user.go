package domain

import (
	"context"
	"errors"
)

// Role represents an authenticated caller's access level.
type Role string

const (
	// RoleAdmin can adjust balances, verify gift cards and mark service
	// cards used.
	RoleAdmin Role = "admin"

	// RoleStaff can inspect gift cards but cannot adjust balances.
	RoleStaff Role = "staff"

	// RoleCustomer can view their own balance and redeem gift cards.
	RoleCustomer Role = "customer"
)

var validRoles = map[Role]bool{
	RoleAdmin:    true,
	RoleStaff:    true,
	RoleCustomer: true,
}

// IsValid checks if the role is a valid role.
func (r Role) IsValid() bool {
	return validRoles[r]
}

// CanAdjustBalance checks if the role may perform admin balance adjustments.
func (r Role) CanAdjustBalance() bool {
	return r == RoleAdmin
}

// CanVerifyGiftCards checks if the role may use the staff verification path.
func (r Role) CanVerifyGiftCards() bool {
	return r == RoleAdmin || r == RoleStaff
}

// Authentication errors
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInsufficientRole = errors.New("insufficient role for this operation")
)

// AuthUser is the authenticated principal attached to a request context.
type AuthUser struct {
	ID    string
	Email string
	Role  Role
}

type contextKey string

const authUserKey contextKey = "auth_user"

// ContextWithUser returns a context carrying the authenticated user.
func ContextWithUser(ctx context.Context, user AuthUser) context.Context {
	return context.WithValue(ctx, authUserKey, user)
}

// UserFromContext extracts the authenticated user from the context.
func UserFromContext(ctx context.Context) (AuthUser, bool) {
	user, ok := ctx.Value(authUserKey).(AuthUser)
	return user, ok
}
