package api

import (
	"context"
	"time"
)

// QueryTimeout is the default timeout for database queries
const QueryTimeout = 10 * time.Second

// WithQueryTimeout creates a context with query timeout
func WithQueryTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, QueryTimeout)
}

type contextKey int

const (
	userKey contextKey = iota
	adminKey
)

// AuthUser is the signed in member making the request
type AuthUser struct {
	ID    string
	Email string
}

// AuthAdmin is the admin identified by a verified JWT
type AuthAdmin struct {
	ID    string
	Email string
	Roles []string
}

// WithUser stores the authenticated member on ctx
func WithUser(ctx context.Context, u AuthUser) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromContext returns the member stored by WithUser
func UserFromContext(ctx context.Context) (AuthUser, bool) {
	u, ok := ctx.Value(userKey).(AuthUser)
	return u, ok
}

// WithAdmin stores the authenticated admin on ctx
func WithAdmin(ctx context.Context, a AuthAdmin) context.Context {
	return context.WithValue(ctx, adminKey, a)
}

// AdminFromContext returns the admin stored by WithAdmin
func AdminFromContext(ctx context.Context) (AuthAdmin, bool) {
	a, ok := ctx.Value(adminKey).(AuthAdmin)
	return a, ok
}
