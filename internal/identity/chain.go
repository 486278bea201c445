package identity

import (
	"context"
	"errors"
)

// Chain tries each resolver in order and returns the first user ID found.
type Chain []Resolver

// Resolve implements Resolver.
func (c Chain) Resolve(ctx context.Context, token string) (string, error) {
	var errs []error
	for _, r := range c {
		if r == nil {
			continue
		}
		userID, err := r.Resolve(ctx, token)
		if err == nil && userID != "" {
			return userID, nil
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return "", ErrUnauthorized
	}
	return "", errors.Join(append([]error{ErrUnauthorized}, errs...)...)
}
