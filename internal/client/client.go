// Package client talks to the todo server's JSON-RPC endpoint.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ganot/todos/internal/domain/todo"
	"github.com/ganot/todos/internal/listview"
	"github.com/ganot/todos/internal/transport"
	"golang.org/x/oauth2"
)

const defaultTimeout = 15 * time.Second

// Client implements listview.Backend over HTTP.
type Client struct {
	endpoint string
	http     *http.Client
	nextID   atomic.Int64
}

var _ listview.Backend = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. The token, if any, is
// layered on top of its transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New returns a client for the server at baseURL. An empty token makes
// anonymous calls.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		endpoint: strings.TrimRight(baseURL, "/") + "/rpc",
		http:     &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	if token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, c.http)
		authed := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: token,
			TokenType:   "Bearer",
		}))
		authed.Timeout = c.http.Timeout
		c.http = authed
	}
	return c
}

// List returns the caller's todos.
func (c *Client) List(ctx context.Context) (listview.Snapshot, error) {
	var resp transport.ListResponse
	if err := c.call(ctx, transport.MethodList, nil, &resp); err != nil {
		return listview.Snapshot{}, err
	}
	snap := listview.Snapshot{Epoch: resp.Epoch, Version: resp.Version, Items: make([]listview.Item, 0, len(resp.Todos))}
	for _, t := range resp.Todos {
		snap.Items = append(snap.Items, listview.Item{ID: t.ID, Title: t.Title})
	}
	return snap, nil
}

// Create submits a create form.
func (c *Client) Create(ctx context.Context, form todo.Form) error {
	return c.mutate(ctx, transport.MethodCreate, form)
}

// Update submits an update form.
func (c *Client) Update(ctx context.Context, form todo.Form) error {
	return c.mutate(ctx, transport.MethodUpdate, form)
}

// Delete submits a delete form.
func (c *Client) Delete(ctx context.Context, form todo.Form) error {
	return c.mutate(ctx, transport.MethodDelete, form)
}

func (c *Client) mutate(ctx context.Context, method string, form todo.Form) error {
	var result transport.MutationResult
	return c.call(ctx, method, form, &result)
}

type rpcResponse struct {
	JSONRPC string           `json:"jsonrpc"`
	Result  json.RawMessage  `json:"result,omitempty"`
	Error   *transport.Error `json:"error,omitempty"`
	ID      any              `json:"id,omitempty"`
}

func (c *Client) call(ctx context.Context, method string, params todo.Form, out any) error {
	req := transport.Request{
		JSONRPC: "2.0",
		Method:  method,
		ID:      c.nextID.Add(1),
	}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("encode params: %w", err)
		}
		req.Params = raw
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(httpResp.Body, 512))
		return fmt.Errorf("%s: unexpected status %d: %s", method, httpResp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var resp rpcResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return fmt.Errorf("%s: decode response: %w", method, err)
	}
	if resp.Error != nil {
		return fmt.Errorf("%s: %w", method, resp.Error)
	}
	if out == nil || len(resp.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("%s: decode result: %w", method, err)
	}
	return nil
}
