package mcp

import (
	"context"
	"log/slog"

	"github.com/ganot/todos/internal/identity"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// authMiddleware resolves the bearer token of every request. Unknown or
// missing tokens leave the request anonymous rather than failing it.
func authMiddleware(resolver identity.Resolver, logger *slog.Logger) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			// Skip auth for protocol methods
			if method == "initialize" || method == "ping" {
				return next(ctx, method, req)
			}

			extra := req.GetExtra()
			if extra == nil || extra.Header == nil {
				return next(ctx, method, req)
			}

			userID, err := identity.ResolveHeader(ctx, resolver, extra.Header.Get("Authorization"))
			if err != nil {
				if logger != nil {
					logger.DebugContext(ctx, "anonymous mcp request", "method", method, "error", err)
				}
				return next(ctx, method, req)
			}

			return next(identity.WithUser(ctx, userID), method, req)
		}
	}
}

// staticUserMiddleware injects a fixed caller. An empty userID keeps every
// request anonymous.
func staticUserMiddleware(userID string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if userID != "" {
				ctx = identity.WithUser(ctx, userID)
			}
			return next(ctx, method, req)
		}
	}
}
