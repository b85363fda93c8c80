package auth

import (
	"context"

	"github.com/google/uuid"
)

type userIDContextKey struct{}

// SetUserIDToContext stores the authenticated account ID for the middleware chain.
func SetUserIDToContext(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDContextKey{}, id)
}

// UserIDFromContext returns the authenticated account ID, if any.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDContextKey{}).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// LookupUserID reports the authenticated account ID as a string, for audit
// and log extractors.
func LookupUserID(ctx context.Context) (string, bool) {
	id, ok := UserIDFromContext(ctx)
	if !ok {
		return "", false
	}
	return id.String(), true
}
