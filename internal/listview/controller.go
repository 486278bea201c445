package listview

import (
	"context"
	"fmt"

	"github.com/ganot/todos/internal/domain/todo"
)

// Backend is the server side of the list. Mutations report only transport
// failures; a mutation the server declined is indistinguishable from one it
// applied.
type Backend interface {
	List(ctx context.Context) (Snapshot, error)
	Create(ctx context.Context, form todo.Form) error
	Update(ctx context.Context, form todo.Form) error
	Delete(ctx context.Context, form todo.Form) error
}

// Controller drives a View against a Backend one call at a time.
type Controller struct {
	view    *View
	backend Backend
}

// NewController binds view to backend.
func NewController(view *View, backend Backend) *Controller {
	return &Controller{view: view, backend: backend}
}

// View returns the underlying view.
func (c *Controller) View() *View {
	return c.view
}

// Refresh refetches the list and applies it.
func (c *Controller) Refresh(ctx context.Context) error {
	snap, err := c.backend.List(ctx)
	if err != nil {
		return fmt.Errorf("listing todos: %w", err)
	}
	c.view.Apply(snap)
	return nil
}

// Submit sends the draft for id. Non-Dirty rows are not sent. The draft is
// settled whatever the server did with it, then the list is refetched.
func (c *Controller) Submit(ctx context.Context, id int64) (bool, error) {
	form, ok := c.view.UpdateForm(id)
	if !ok {
		return false, nil
	}
	err := c.backend.Update(ctx, form)
	c.view.Settle(id)
	if err != nil {
		return true, fmt.Errorf("updating todo %d: %w", id, err)
	}
	return true, c.Refresh(ctx)
}

// Add creates a todo. Blank titles are not sent.
func (c *Controller) Add(ctx context.Context, title string) (bool, error) {
	form, ok := CreateForm(title)
	if !ok {
		return false, nil
	}
	if err := c.backend.Create(ctx, form); err != nil {
		return true, fmt.Errorf("creating todo: %w", err)
	}
	return true, c.Refresh(ctx)
}

// Remove deletes a todo.
func (c *Controller) Remove(ctx context.Context, id int64) error {
	if err := c.backend.Delete(ctx, DeleteForm(id)); err != nil {
		return fmt.Errorf("deleting todo %d: %w", id, err)
	}
	return c.Refresh(ctx)
}
