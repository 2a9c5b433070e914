// Package identity verifies bearer credentials and carries the resulting
// caller identity through the request context.
package identity

import (
	"context"

	"github.com/docgate/docgate/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// identityContextKey is the context key for storing the verified Identity.
const identityContextKey contextKey = "identity"

// ContextWithIdentity returns a context carrying the verified identity.
// The identity value is immutable; downstream code only ever reads it.
func ContextWithIdentity(ctx context.Context, id *model.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// FromContext retrieves the verified Identity from the context.
// Returns nil for anonymous requests.
func FromContext(ctx context.Context) *model.Identity {
	id, ok := ctx.Value(identityContextKey).(*model.Identity)
	if !ok {
		return nil
	}
	return id
}

// UIDFromContext is a convenience accessor for the caller's uid.
// Returns empty string if not authenticated.
func UIDFromContext(ctx context.Context) string {
	id := FromContext(ctx)
	if id == nil {
		return ""
	}
	return id.UID
}
