package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ganot/todos/internal/config"
	"github.com/ganot/todos/internal/domain/todo"
	"github.com/ganot/todos/internal/identity"
	"github.com/ganot/todos/internal/mcp"
	"github.com/ganot/todos/internal/refresh"
	"github.com/ganot/todos/internal/sqlite"
	"github.com/ganot/todos/internal/transport"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Use stderr for logs in stdio mode to keep stdout clean for JSON-RPC.
	logWriter := io.Writer(os.Stdout)
	if cfg.Transport.Mode == "stdio" {
		logWriter = os.Stderr
	}
	if cfg.Log.Path != "" {
		fileWriter, err := newLogFileWriter(cfg.Log.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			defer fileWriter.Close()
			logWriter = fileWriter
		}
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		logger.Error("failed to prepare database path", "error", err)
		os.Exit(1)
	}

	// One handle for the life of the process; every request shares it.
	store := sqlite.NewHandle(cfg.DB.Path)
	db, err := store.DB()
	if err != nil {
		logger.Error("failed to open database", "path", cfg.DB.Path, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	resolver, err := buildResolver(ctx, cfg.Auth, sqlite.NewAPIKeyRepository(db), logger)
	if err != nil {
		logger.Error("failed to configure authentication", "error", err)
		os.Exit(1)
	}

	listChanged := refresh.New()
	todoSvc := todo.NewService(
		sqlite.NewTodoRepository(db),
		identity.ContextProvider{},
		listChanged,
		logger,
		todo.WithStoreTimeout(cfg.Store.Timeout.Duration),
	)

	mcpServer := mcp.NewServer(mcp.Config{
		Todos:         todoSvc,
		Resolver:      resolver,
		StaticUser:    stdioUser(cfg),
		TransportMode: cfg.Transport.Mode,
		Logger:        logger,
	})

	if cfg.Transport.Mode == "stdio" {
		runStdioMode(ctx, logger, mcpServer, cfg.Auth.StdioUser)
		return
	}

	router := transport.NewServer(todoSvc, transport.IdentityMiddleware(resolver, logger), transport.Options{
		Logger:         logger,
		RequestTimeout: cfg.Request.Timeout.Duration,
		MCP:            mcp.NewHTTPHandler(mcpServer, 30*time.Minute),
	})
	runHTTPMode(ctx, logger, router, cfg.Server.Host, cfg.Server.Port)
}

// buildResolver chains API keys with the optional JWT and Google verifiers.
func buildResolver(ctx context.Context, auth config.AuthConfig, keys identity.Resolver, logger *slog.Logger) (identity.Resolver, error) {
	chain := identity.Chain{keys}
	methods := []string{"api_key"}

	if auth.JWTSecret != "" {
		chain = append(chain, identity.NewJWTResolver(auth.JWTSecret, auth.JWTIssuer))
		methods = append(methods, "jwt")
	}
	if auth.GoogleAudience != "" {
		google, err := identity.NewGoogleResolver(ctx, auth.GoogleAudience)
		if err != nil {
			return nil, err
		}
		chain = append(chain, google)
		methods = append(methods, "google")
	}

	logger.Info("authentication configured", "methods", methods)
	return chain, nil
}

func stdioUser(cfg config.Config) string {
	if cfg.Transport.Mode != "stdio" {
		return ""
	}
	return cfg.Auth.StdioUser
}

func runStdioMode(ctx context.Context, logger *slog.Logger, mcpServer *sdkmcp.Server, userID string) {
	if userID == "" {
		logger.Warn("auth.stdio_user is empty; every stdio call is anonymous")
	}
	logger.Info("starting stdio transport", "user_id", userID)

	// Run blocks until stdin closes or context is canceled
	if err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		logger.Error("stdio server error", "error", err)
		os.Exit(1)
	}
	logger.Info("shutting down")
}

func runHTTPMode(ctx context.Context, logger *slog.Logger, handler http.Handler, host string, port int) {
	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	waitForShutdown(ctx, logger, httpServer)
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func waitForShutdown(ctx context.Context, logger *slog.Logger, server *http.Server) {
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
