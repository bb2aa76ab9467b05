// Package identity carries the authenticated requester through contexts.
package identity

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
)

type contextKey string

const (
	identityKey  contextKey = "identity"
	requestIDKey contextKey = "identity_request_id"
)

// Identity is the verified account behind a request. Email is the address
// the platform verified for the account; license authorization compares it
// against the purchase email.
type Identity struct {
	UserID snowflake.ID
	Email  string
}

// Valid reports whether the identity carries both an account and an email.
func (i Identity) Valid() bool {
	return i.UserID != 0 && strings.TrimSpace(i.Email) != ""
}

func WithIdentity(ctx context.Context, ident Identity) context.Context {
	if !ident.Valid() {
		return ctx
	}
	return context.WithValue(ctx, identityKey, ident)
}

func FromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	ident, ok := ctx.Value(identityKey).(Identity)
	if !ok || !ident.Valid() {
		return Identity{}, false
	}
	return ident, true
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(requestIDKey).(string)
	return value
}
