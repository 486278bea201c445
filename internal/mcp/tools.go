package mcp

import (
	"context"
	"encoding/json"

	"github.com/ganot/todos/internal/domain/todo"
	"github.com/ganot/todos/internal/transport"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ListTodosInput takes no arguments; the caller is implied.
type ListTodosInput struct{}

// CreateTodoInput holds create_todo arguments.
type CreateTodoInput struct {
	Title string `json:"title,omitempty" jsonschema:"text of the new todo"`
}

// UpdateTodoInput holds update_todo arguments. ID accepts a number or a
// numeric string.
type UpdateTodoInput struct {
	ID       any    `json:"id,omitempty" jsonschema:"id of the todo to rename"`
	NewTitle string `json:"newTitle,omitempty" jsonschema:"replacement title"`
}

// DeleteTodoInput holds delete_todo arguments.
type DeleteTodoInput struct {
	ID any `json:"id,omitempty" jsonschema:"id of the todo to delete"`
}

// AckOutput is returned by every mutation tool regardless of outcome.
type AckOutput struct {
	OK bool `json:"ok"`
}

func registerTools(server *sdkmcp.Server, todos TodoService) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_todos",
		Description: "List your todos, newest first",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ ListTodosInput) (*sdkmcp.CallToolResult, transport.ListResponse, error) {
		return nil, transport.NewListResponse(todos.Snapshot(ctx)), nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "create_todo",
		Description: "Create a todo. Empty titles are ignored.",
	}, mutationTool[CreateTodoInput](todos.Create))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "update_todo",
		Description: "Rename one of your todos. Unknown ids are ignored; call list_todos to see the result.",
	}, mutationTool[UpdateTodoInput](todos.Update))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "delete_todo",
		Description: "Delete one of your todos. Unknown ids are ignored.",
	}, mutationTool[DeleteTodoInput](todos.Delete))
}

func mutationTool[In any](mutate func(context.Context, todo.Form) todo.Outcome) sdkmcp.ToolHandlerFor[In, AckOutput] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, in In) (*sdkmcp.CallToolResult, AckOutput, error) {
		mutate(ctx, toForm(in))
		return nil, AckOutput{OK: true}, nil
	}
}

func toForm(in any) todo.Form {
	raw, err := json.Marshal(in)
	if err != nil {
		return todo.Form{}
	}
	return transport.DecodeForm(raw)
}
