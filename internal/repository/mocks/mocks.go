package mocks

import (
	"context"

	"github.com/ganot/todos/internal/domain/todo"
	"github.com/stretchr/testify/mock"
)

// TodoRepository is a mock for todo.Repository.
type TodoRepository struct {
	mock.Mock
}

func (m *TodoRepository) FindAllByOwner(ctx context.Context, ownerID string) ([]todo.Todo, error) {
	args := m.Called(ctx, ownerID)
	if list, ok := args.Get(0).([]todo.Todo); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TodoRepository) Insert(ctx context.Context, title, ownerID string) (*todo.Todo, error) {
	args := m.Called(ctx, title, ownerID)
	if t, ok := args.Get(0).(*todo.Todo); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TodoRepository) UpdateIfOwned(ctx context.Context, id int64, ownerID, title string) error {
	args := m.Called(ctx, id, ownerID, title)
	return args.Error(0)
}

func (m *TodoRepository) DeleteIfOwned(ctx context.Context, id int64, ownerID string) error {
	args := m.Called(ctx, id, ownerID)
	return args.Error(0)
}

// Refresher is a mock for todo.Refresher.
type Refresher struct {
	mock.Mock
}

func (m *Refresher) Invalidate() {
	m.Called()
}

func (m *Refresher) Version() uint64 {
	args := m.Called()
	return args.Get(0).(uint64)
}

func (m *Refresher) Epoch() string {
	args := m.Called()
	return args.String(0)
}
