// Package identity resolves bearer credentials into user identifiers and
// carries the resolved caller through a request context.
package identity

import (
	"context"
	"errors"
	"strings"
)

// ErrUnauthorized indicates an invalid or unknown credential.
var ErrUnauthorized = errors.New("unauthorized")

// Resolver resolves a user ID from a bearer token.
type Resolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, token string) (string, error)

func (f ResolverFunc) Resolve(ctx context.Context, token string) (string, error) {
	return f(ctx, token)
}

type userKey struct{}

// WithUser returns a context carrying the resolved user ID.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

// FromContext returns the user ID from context, if present.
func FromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userKey{}).(string)
	return userID, ok && userID != ""
}

// ContextProvider reads the caller from the request context on every call.
type ContextProvider struct{}

// CurrentUser implements todo.IdentityProvider.
func (ContextProvider) CurrentUser(ctx context.Context) (string, bool) {
	return FromContext(ctx)
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) >= 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// ResolveHeader resolves an Authorization header to a user ID. Any failure
// yields an empty ID so the caller is treated as anonymous.
func ResolveHeader(ctx context.Context, resolver Resolver, header string) (string, error) {
	token := BearerToken(header)
	if token == "" || resolver == nil {
		return "", ErrUnauthorized
	}
	userID, err := resolver.Resolve(ctx, token)
	if err != nil {
		return "", err
	}
	if userID == "" {
		return "", ErrUnauthorized
	}
	return userID, nil
}
