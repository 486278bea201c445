package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/ganot/todos/internal/domain/todo"
	"github.com/ganot/todos/internal/repository"
)

// TodoRepository implements todo.Repository for SQLite
type TodoRepository struct {
	db *DB
}

// NewTodoRepository creates a new TodoRepository
func NewTodoRepository(db *DB) *TodoRepository {
	return &TodoRepository{db: db}
}

// FindAllByOwner returns every todo owned by ownerID, newest first
func (r *TodoRepository) FindAllByOwner(ctx context.Context, ownerID string) ([]todo.Todo, error) {
	query := `
		SELECT id, title, owner_id, created_at, updated_at
		FROM todos
		WHERE owner_id = ?
		ORDER BY id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	todos := []todo.Todo{}
	for rows.Next() {
		var t todo.Todo
		if err := rows.Scan(&t.ID, &t.Title, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		todos = append(todos, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating todo rows: %w", err)
	}

	return todos, nil
}

// Insert creates a todo and returns it with its assigned id
func (r *TodoRepository) Insert(ctx context.Context, title, ownerID string) (*todo.Todo, error) {
	query := `
		INSERT INTO todos (title, owner_id, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`

	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx, query, title, ownerID, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get todo id: %w", err)
	}

	return &todo.Todo{
		ID:        id,
		Title:     title,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// UpdateIfOwned replaces the title of a todo only when ownerID owns it
func (r *TodoRepository) UpdateIfOwned(ctx context.Context, id int64, ownerID, title string) error {
	query := `
		UPDATE todos
		SET title = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?
	`

	result, err := r.db.ExecContext(ctx, query, title, time.Now().UTC(), id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to update todo: %w", err)
	}

	return requireOneRow(result.RowsAffected())
}

// DeleteIfOwned removes a todo only when ownerID owns it
func (r *TodoRepository) DeleteIfOwned(ctx context.Context, id int64, ownerID string) error {
	query := `
		DELETE FROM todos
		WHERE id = ? AND owner_id = ?
	`

	result, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}

	return requireOneRow(result.RowsAffected())
}

func requireOneRow(rowsAffected int64, err error) error {
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
