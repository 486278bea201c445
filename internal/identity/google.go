package identity

import (
	"context"
	"fmt"

	"google.golang.org/api/idtoken"
)

// TokenValidator validates Google ID tokens. *idtoken.Validator satisfies it.
type TokenValidator interface {
	Validate(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)
}

// GoogleResolver accepts Google ID tokens issued for audience.
type GoogleResolver struct {
	validator TokenValidator
	audience  string
}

// NewGoogleResolver creates a resolver backed by Google's public keys.
func NewGoogleResolver(ctx context.Context, audience string) (*GoogleResolver, error) {
	v, err := idtoken.NewValidator(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating id token validator: %w", err)
	}
	return NewGoogleResolverWithValidator(v, audience), nil
}

// NewGoogleResolverWithValidator creates a resolver with a custom validator.
func NewGoogleResolverWithValidator(v TokenValidator, audience string) *GoogleResolver {
	return &GoogleResolver{validator: v, audience: audience}
}

// Resolve implements Resolver. The stable Google account subject is the user ID.
func (r *GoogleResolver) Resolve(ctx context.Context, token string) (string, error) {
	payload, err := r.validator.Validate(ctx, token, r.audience)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	if payload == nil || payload.Subject == "" {
		return "", ErrUnauthorized
	}
	return "google:" + payload.Subject, nil
}
