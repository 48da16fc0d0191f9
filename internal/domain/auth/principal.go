// Package auth defines the authenticated principal attached to every
// request by the HTTP middleware.
package auth

import (
	"context"

	"github.com/google/uuid"
)

// Principal is the authenticated identity (customer or admin) making a
// request. The zero value means "not authenticated".
type Principal struct {
	UserID uuid.UUID
	Admin  bool
}

// IsZero reports whether no principal is present.
func (p Principal) IsZero() bool {
	return p.UserID == uuid.Nil
}

type contextKey struct{}

// WithPrincipal returns a new context carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext extracts the principal from ctx.
// Returns a zero Principal if not present.
func FromContext(ctx context.Context) Principal {
	if p, ok := ctx.Value(contextKey{}).(Principal); ok {
		return p
	}
	return Principal{}
}
