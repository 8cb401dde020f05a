package domain

import "context"

// UserID identifies the tenant that owns documents and chunks. Every index read
// and write takes it explicitly; there is no ambient current-user state.
type UserID string

type userKey struct{}

// ContextWithUser stores the authenticated user in the context. Only the
// transport layer writes it; usecases receive the value as an argument.
func ContextWithUser(ctx context.Context, id UserID) context.Context {
	return context.WithValue(ctx, userKey{}, id)
}

// UserFromContext extracts the authenticated user, or "" if unauthenticated.
func UserFromContext(ctx context.Context) UserID {
	if id, ok := ctx.Value(userKey{}).(UserID); ok {
		return id
	}
	return ""
}
