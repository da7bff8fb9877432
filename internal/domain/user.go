package domain

import (
	"context"
	"errors"
	"strings"
)

// User is the authenticated caller as issued by the identity provider.
// The ledger only relies on ID; Name is used for display when known.
type User struct {
	ID   string
	Name string
}

// Authentication errors
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

type userContextKey struct{}

// WithUser binds the caller identity to ctx.
func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext returns the caller bound to ctx, or false when there is none
// or its id is blank.
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userContextKey{}).(*User)
	if !ok || user == nil || strings.TrimSpace(user.ID) == "" {
		return nil, false
	}
	return user, true
}
