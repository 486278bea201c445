// Package testserver runs the full HTTP stack against an in-memory database.
package testserver

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ganot/todos/internal/domain/todo"
	"github.com/ganot/todos/internal/identity"
	"github.com/ganot/todos/internal/mcp"
	"github.com/ganot/todos/internal/refresh"
	"github.com/ganot/todos/internal/sqlite"
	"github.com/ganot/todos/internal/transport"
	"github.com/stretchr/testify/require"
)

type TestServer struct {
	Server  *httptest.Server
	DB      *sqlite.DB
	Keys    *sqlite.APIKeyRepository
	Todos   *todo.Service
	Refresh *refresh.Signal

	router atomic.Pointer[http.Handler]
}

// New starts a server with the given token → user bindings.
func New(t *testing.T, keys map[string]string) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	handle := sqlite.NewHandle(dsn)
	db, err := handle.DB()
	require.NoError(t, err)

	ts := &TestServer{
		DB:   db,
		Keys: sqlite.NewAPIKeyRepository(db),
	}
	ts.Restart()
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		(*ts.router.Load()).ServeHTTP(w, r)
	}))

	for token, userID := range keys {
		require.NoError(t, ts.AddAPIKey(token, userID))
	}

	t.Cleanup(func() {
		ts.Server.Close()
		_ = handle.Close()
	})

	return ts
}

// Restart swaps in a new service stack over the same database, as a server
// process restart would: the refresh signal starts a new epoch at version
// zero. The listening URL stays the same.
func (ts *TestServer) Restart() {
	signal := refresh.New()
	todoSvc := todo.NewService(sqlite.NewTodoRepository(ts.DB), identity.ContextProvider{}, signal, nil)

	mcpServer := mcp.NewServer(mcp.Config{
		Todos:         todoSvc,
		Resolver:      ts.Keys,
		TransportMode: "http",
	})

	var router http.Handler = transport.NewServer(todoSvc, transport.IdentityMiddleware(ts.Keys, nil), transport.Options{
		RequestTimeout: 10 * time.Second,
		MCP:            mcp.NewHTTPHandler(mcpServer, time.Minute),
	})

	ts.Todos = todoSvc
	ts.Refresh = signal
	ts.router.Store(&router)
}

// URL returns the base URL of the running server.
func (ts *TestServer) URL() string {
	return ts.Server.URL
}

func (ts *TestServer) AddAPIKey(token, userID string) error {
	return ts.Keys.Add(context.Background(), token, userID, "test")
}
