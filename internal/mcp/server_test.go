package mcp

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/ganot/todos/internal/domain/todo"
	"github.com/ganot/todos/internal/identity"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

type call struct {
	op     string
	userID string
	form   todo.Form
}

type todoStub struct {
	mu    sync.Mutex
	calls []call
	snap  todo.Snapshot
}

func (s *todoStub) record(ctx context.Context, op string, form todo.Form) todo.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, _ := identity.FromContext(ctx)
	s.calls = append(s.calls, call{op: op, userID: userID, form: form})
	return todo.NotApplicable
}

func (s *todoStub) Create(ctx context.Context, form todo.Form) todo.Outcome {
	return s.record(ctx, "create", form)
}
func (s *todoStub) Update(ctx context.Context, form todo.Form) todo.Outcome {
	return s.record(ctx, "update", form)
}
func (s *todoStub) Delete(ctx context.Context, form todo.Form) todo.Outcome {
	return s.record(ctx, "delete", form)
}
func (s *todoStub) Snapshot(ctx context.Context) todo.Snapshot {
	s.record(ctx, "list", nil)
	return s.snap
}

func connect(t *testing.T, cfg Config) *sdkmcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	server := NewServer(cfg)
	clientTransport, serverTransport := sdkmcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test", Version: "0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func TestTools_Registered(t *testing.T) {
	session := connect(t, Config{Todos: &todoStub{}, TransportMode: "stdio", StaticUser: "alice"})

	res, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	require.ElementsMatch(t, []string{"list_todos", "create_todo", "update_todo", "delete_todo"}, names)
}

func TestTools_MutationsAreSilent(t *testing.T) {
	stub := &todoStub{}
	session := connect(t, Config{Todos: stub, TransportMode: "stdio", StaticUser: "alice"})
	ctx := context.Background()

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "update_todo",
		Arguments: map[string]any{"id": 7, "newTitle": "Buy milk and eggs"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Equal(t, map[string]any{"ok": true}, res.StructuredContent)

	res, err = session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "delete_todo",
		Arguments: map[string]any{"id": "3"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	res, err = session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "create_todo",
		Arguments: map[string]any{},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	stub.mu.Lock()
	defer stub.mu.Unlock()
	require.Equal(t, []call{
		{op: "update", userID: "alice", form: todo.Form{"id": "7", "newTitle": "Buy milk and eggs"}},
		{op: "delete", userID: "alice", form: todo.Form{"id": "3"}},
		{op: "create", userID: "alice", form: todo.Form{}},
	}, stub.calls)
}

func TestTools_List(t *testing.T) {
	stub := &todoStub{snap: todo.Snapshot{Version: 3, Todos: []todo.Todo{{ID: 2, Title: "Walk dog"}}}}
	session := connect(t, Config{Todos: stub, TransportMode: "stdio", StaticUser: "alice"})

	res, err := session.CallTool(context.Background(), &sdkmcp.CallToolParams{
		Name:      "list_todos",
		Arguments: map[string]any{},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Equal(t, map[string]any{
		"version": float64(3),
		"todos":   []any{map[string]any{"id": float64(2), "title": "Walk dog"}},
	}, res.StructuredContent)
}

func TestTools_StdioWithoutUserIsAnonymous(t *testing.T) {
	stub := &todoStub{}
	session := connect(t, Config{Todos: stub, TransportMode: "stdio"})

	_, err := session.CallTool(context.Background(), &sdkmcp.CallToolParams{
		Name:      "create_todo",
		Arguments: map[string]any{"title": "test"},
	})
	require.NoError(t, err)

	stub.mu.Lock()
	defer stub.mu.Unlock()
	require.Len(t, stub.calls, 1)
	require.Equal(t, "", stub.calls[0].userID)
}

func TestAuthMiddleware(t *testing.T) {
	resolver := identity.ResolverFunc(func(_ context.Context, token string) (string, error) {
		if token == "good" {
			return "alice", nil
		}
		return "", identity.ErrUnauthorized
	})

	var seen string
	handler := authMiddleware(resolver, nil)(func(ctx context.Context, _ string, _ sdkmcp.Request) (sdkmcp.Result, error) {
		seen, _ = identity.FromContext(ctx)
		return nil, nil
	})

	for token, want := range map[string]string{"good": "alice", "bad": ""} {
		seen = ""
		header := http.Header{}
		header.Set("Authorization", "Bearer "+token)
		req := &sdkmcp.CallToolRequest{Extra: &sdkmcp.RequestExtra{Header: header}}

		_, err := handler(context.Background(), "tools/call", req)
		require.NoError(t, err)
		require.Equal(t, want, seen, "token %s", token)
	}
}
