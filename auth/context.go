// Package auth verifies Supabase-issued JWTs and exposes the resulting
// identity to request handlers.
package auth

import (
	"context"
)

type ctxKey int

const identityKey ctxKey = iota

// Identity is the verified caller attached to every authenticated request.
type Identity struct {
	ID    string
	Email string
}

func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityKey).(*Identity)
	return identity, ok
}
