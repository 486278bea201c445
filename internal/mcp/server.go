package mcp

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ganot/todos/internal/domain/todo"
	"github.com/ganot/todos/internal/identity"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// TodoService defines todo operations needed by MCP.
type TodoService interface {
	Create(ctx context.Context, form todo.Form) todo.Outcome
	Update(ctx context.Context, form todo.Form) todo.Outcome
	Delete(ctx context.Context, form todo.Form) todo.Outcome
	Snapshot(ctx context.Context) todo.Snapshot
}

// Config contains server configuration.
type Config struct {
	Todos    TodoService
	Resolver identity.Resolver
	// StaticUser, when set, is the caller for every request instead of the
	// bearer token. Used for stdio, which carries no headers.
	StaticUser    string
	TransportMode string // "stdio" or "http"
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "todos",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	// Middleware added later runs first, so identity is resolved before
	// traffic is logged.
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	// Stdio has no headers, so it always runs as the configured user.
	if cfg.TransportMode == "stdio" || cfg.StaticUser != "" {
		server.AddReceivingMiddleware(staticUserMiddleware(cfg.StaticUser))
	} else {
		server.AddReceivingMiddleware(authMiddleware(cfg.Resolver, cfg.Logger))
	}

	registerTools(server, cfg.Todos)

	return server
}

// NewHTTPHandler serves server over the streamable HTTP transport.
func NewHTTPHandler(server *sdkmcp.Server, sessionTimeout time.Duration) http.Handler {
	return sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return server },
		&sdkmcp.StreamableHTTPOptions{SessionTimeout: sessionTimeout},
	)
}
