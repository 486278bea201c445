package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ganot/todos/internal/identity"
	"github.com/stretchr/testify/require"
)

type testResolver struct {
	tokenToUser map[string]string
	err         error
	calls       int
}

func (r *testResolver) Resolve(_ context.Context, token string) (string, error) {
	r.calls++
	if r.err != nil {
		return "", r.err
	}
	user, ok := r.tokenToUser[token]
	if !ok {
		return "", identity.ErrUnauthorized
	}
	return user, nil
}

func serveIdentity(t *testing.T, resolver identity.Resolver, header string) (string, bool, int) {
	t.Helper()

	var (
		userID string
		found  bool
	)
	handler := IdentityMiddleware(resolver, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, found = identity.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return userID, found, rec.Code
}

func TestIdentityMiddleware(t *testing.T) {
	resolver := &testResolver{tokenToUser: map[string]string{"token": "alice"}}

	userID, found, code := serveIdentity(t, resolver, "Bearer token")
	require.Equal(t, http.StatusOK, code)
	require.True(t, found)
	require.Equal(t, "alice", userID)
}

func TestIdentityMiddleware_InvalidIsAnonymous(t *testing.T) {
	resolver := &testResolver{err: errors.New("invalid")}

	_, found, code := serveIdentity(t, resolver, "Bearer token")
	require.Equal(t, http.StatusOK, code)
	require.False(t, found)
}

func TestIdentityMiddleware_MissingIsAnonymous(t *testing.T) {
	resolver := &testResolver{}

	_, found, code := serveIdentity(t, resolver, "")
	require.Equal(t, http.StatusOK, code)
	require.False(t, found)
	require.Zero(t, resolver.calls)
}

func TestIdentityMiddleware_ResolvesEveryRequest(t *testing.T) {
	resolver := &testResolver{tokenToUser: map[string]string{"token": "alice"}}

	serveIdentity(t, resolver, "Bearer token")
	serveIdentity(t, resolver, "Bearer token")
	require.Equal(t, 2, resolver.calls)
}
