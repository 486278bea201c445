package transport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/ganot/todos/internal/domain/todo"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// TodoService defines the operations exposed over HTTP.
type TodoService interface {
	Create(ctx context.Context, form todo.Form) todo.Outcome
	Update(ctx context.Context, form todo.Form) todo.Outcome
	Delete(ctx context.Context, form todo.Form) todo.Outcome
	Snapshot(ctx context.Context) todo.Snapshot
}

// Options configures the HTTP server.
type Options struct {
	Logger         *slog.Logger
	RequestTimeout time.Duration
	// MCP, when set, is mounted at /mcp.
	MCP http.Handler
}

// Server wires HTTP handlers.
type Server struct {
	todos  TodoService
	logger *slog.Logger
}

// TodoResponse is the wire form of a todo. The owner is implied by the caller.
type TodoResponse struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// ListResponse is the body of GET /todos and the todos.list result.
type ListResponse struct {
	Epoch   string         `json:"epoch"`
	Version uint64         `json:"version"`
	Todos   []TodoResponse `json:"todos"`
}

// NewServer creates an HTTP server router with middleware.
func NewServer(todos TodoService, identify func(http.Handler) http.Handler, opts Options) *chi.Mux {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if identify != nil {
		r.Use(identify)
	}
	r.Use(RequestLogger(logger))

	srv := &Server{todos: todos, logger: logger}

	r.Group(func(r chi.Router) {
		if opts.RequestTimeout > 0 {
			r.Use(middleware.Timeout(opts.RequestTimeout))
		}
		r.Get("/health", srv.handleHealth)
		r.Get("/todos", srv.handleList)
		r.Post("/actions/{action}", srv.handleAction)
		r.Post("/rpc", srv.handleRPC)
	})

	// MCP streams outlive the request timeout.
	if opts.MCP != nil {
		r.Handle("/mcp", opts.MCP)
		r.Handle("/mcp/*", opts.MCP)
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(NewListResponse(s.todos.Snapshot(r.Context())))
}

// handleAction accepts form-encoded mutations. The response is identical for
// every outcome.
func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	mutate, ok := s.mutation(chi.URLParam(r, "action"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	form := todo.Form{}
	if err := r.ParseForm(); err == nil {
		form = todo.FormFromValues(r.PostForm)
	}

	mutate(r.Context(), form)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) mutation(action string) (func(context.Context, todo.Form) todo.Outcome, bool) {
	switch action {
	case "create":
		return s.todos.Create, true
	case "update":
		return s.todos.Update, true
	case "delete":
		return s.todos.Delete, true
	default:
		return nil, false
	}
}

// NewListResponse converts a snapshot to its wire form.
func NewListResponse(snap todo.Snapshot) ListResponse {
	resp := ListResponse{Epoch: snap.Epoch, Version: snap.Version, Todos: make([]TodoResponse, 0, len(snap.Todos))}
	for _, t := range snap.Todos {
		resp.Todos = append(resp.Todos, TodoResponse{ID: t.ID, Title: t.Title})
	}
	return resp
}
