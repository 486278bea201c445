package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/ganot/todos/internal/domain/todo"
)

// JSON-RPC 2.0 error codes.
const (
	ErrParseCode      = -32700
	ErrInvalidReq     = -32600
	ErrMethodNotFound = -32601
	ErrInvalidParams  = -32602
	ErrInternal       = -32603
)

// RPC method names.
const (
	MethodList   = "todos.list"
	MethodCreate = "todos.create"
	MethodUpdate = "todos.update"
	MethodDelete = "todos.delete"
)

// Request represents a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      any             `json:"id,omitempty"`
}

// Response represents a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string `json:"jsonrpc"`
	Result  any    `json:"result,omitempty"`
	Error   *Error `json:"error,omitempty"`
	ID      any    `json:"id,omitempty"`
}

// Error represents a JSON-RPC 2.0 error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

// MutationResult is returned by every mutation method regardless of outcome.
type MutationResult struct {
	OK bool `json:"ok"`
}

// ParseRequest parses and validates a JSON-RPC request payload.
func ParseRequest(body io.Reader) (Request, error) {
	var req Request
	dec := json.NewDecoder(body)
	if err := dec.Decode(&req); err != nil {
		return Request{}, fmt.Errorf("parse error: %w", err)
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		return Request{}, fmt.Errorf("invalid request")
	}
	return req, nil
}

// DecodeForm flattens JSON-RPC params into a form. Scalars are stringified,
// numbers with their literal text; nested values and unparsable params are
// dropped.
func DecodeForm(params json.RawMessage) todo.Form {
	form := todo.Form{}
	if len(params) == 0 {
		return form
	}
	var raw map[string]any
	dec := json.NewDecoder(bytes.NewReader(params))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return form
	}
	for key, val := range raw {
		switch v := val.(type) {
		case string:
			form[key] = v
		case json.Number:
			form[key] = v.String()
		case bool:
			form[key] = strconv.FormatBool(v)
		}
	}
	return form
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	req, err := ParseRequest(r.Body)
	if err != nil {
		WriteError(w, nil, ErrInvalidReq, "invalid request", nil)
		return
	}

	if req.Method == MethodList {
		WriteResult(w, req.ID, NewListResponse(s.todos.Snapshot(r.Context())))
		return
	}

	var mutate func() todo.Outcome
	form := DecodeForm(req.Params)
	switch req.Method {
	case MethodCreate:
		mutate = func() todo.Outcome { return s.todos.Create(r.Context(), form) }
	case MethodUpdate:
		mutate = func() todo.Outcome { return s.todos.Update(r.Context(), form) }
	case MethodDelete:
		mutate = func() todo.Outcome { return s.todos.Delete(r.Context(), form) }
	default:
		WriteError(w, req.ID, ErrMethodNotFound, "method not found", nil)
		return
	}

	mutate()
	WriteResult(w, req.ID, MutationResult{OK: true})
}

// WriteResult writes a JSON-RPC success response.
func WriteResult(w http.ResponseWriter, id any, result any) {
	writeJSON(w, http.StatusOK, Response{
		JSONRPC: "2.0",
		Result:  result,
		ID:      id,
	})
}

// WriteError writes a JSON-RPC error response.
func WriteError(w http.ResponseWriter, id any, code int, message string, data any) {
	writeJSON(w, http.StatusOK, Response{
		JSONRPC: "2.0",
		Error: &Error{
			Code:    code,
			Message: message,
			Data:    data,
		},
		ID: id,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
