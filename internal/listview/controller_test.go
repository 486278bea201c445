package listview_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ganot/todos/internal/domain/todo"
	"github.com/ganot/todos/internal/listview"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type backendMock struct {
	mock.Mock
}

func (m *backendMock) List(ctx context.Context) (listview.Snapshot, error) {
	args := m.Called(ctx)
	return args.Get(0).(listview.Snapshot), args.Error(1)
}

func (m *backendMock) Create(ctx context.Context, form todo.Form) error {
	return m.Called(ctx, form).Error(0)
}

func (m *backendMock) Update(ctx context.Context, form todo.Form) error {
	return m.Called(ctx, form).Error(0)
}

func (m *backendMock) Delete(ctx context.Context, form todo.Form) error {
	return m.Called(ctx, form).Error(0)
}

func TestController_SubmitDirty(t *testing.T) {
	backend := &backendMock{}
	view := listview.New()
	view.Apply(snapshot(1, listview.Item{ID: 1, Title: "Buy milk"}))
	ctrl := listview.NewController(view, backend)

	backend.On("Update", mock.Anything, todo.Form{"id": "1", "newTitle": "Buy milk and eggs"}).Return(nil)
	backend.On("List", mock.Anything).Return(snapshot(2, listview.Item{ID: 1, Title: "Buy milk and eggs"}), nil)

	view.Edit(1, "Buy milk and eggs")
	sent, err := ctrl.Submit(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, sent)

	row, _ := view.Row(1)
	require.Equal(t, listview.Clean, row.State)
	require.Equal(t, "Buy milk and eggs", row.Display)
	backend.AssertExpectations(t)
}

func TestController_SubmitNotDirtySendsNothing(t *testing.T) {
	backend := &backendMock{}
	view := listview.New()
	view.Apply(snapshot(1, listview.Item{ID: 1, Title: "Buy milk"}))
	ctrl := listview.NewController(view, backend)

	view.Edit(1, "Buy milk")
	sent, err := ctrl.Submit(context.Background(), 1)
	require.NoError(t, err)
	require.False(t, sent)

	backend.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestController_SubmitDeclinedByServer(t *testing.T) {
	// The server silently refused the update: the refetch shows the old
	// title and the row is clean again.
	backend := &backendMock{}
	view := listview.New()
	view.Apply(snapshot(1, listview.Item{ID: 1, Title: "Buy milk"}))
	ctrl := listview.NewController(view, backend)

	backend.On("Update", mock.Anything, mock.Anything).Return(nil)
	backend.On("List", mock.Anything).Return(snapshot(1, listview.Item{ID: 1, Title: "Buy milk"}), nil)

	view.Edit(1, "Buy bread")
	_, err := ctrl.Submit(context.Background(), 1)
	require.NoError(t, err)

	row, _ := view.Row(1)
	require.Equal(t, listview.Clean, row.State)
	require.Equal(t, "Buy milk", row.Display)
}

func TestController_SubmitTransportFailureStillSettles(t *testing.T) {
	backend := &backendMock{}
	view := listview.New()
	view.Apply(snapshot(1, listview.Item{ID: 1, Title: "Buy milk"}))
	ctrl := listview.NewController(view, backend)

	backend.On("Update", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	view.Edit(1, "Buy bread")
	sent, err := ctrl.Submit(context.Background(), 1)
	require.Error(t, err)
	require.True(t, sent)

	_, ok := view.Draft(1)
	require.False(t, ok)
	backend.AssertNotCalled(t, "List", mock.Anything)
}

func TestController_AddAndRemove(t *testing.T) {
	backend := &backendMock{}
	view := listview.New()
	ctrl := listview.NewController(view, backend)

	backend.On("Create", mock.Anything, todo.Form{"title": "Walk dog"}).Return(nil)
	backend.On("List", mock.Anything).Return(snapshot(1, listview.Item{ID: 1, Title: "Walk dog"}), nil).Once()
	backend.On("Delete", mock.Anything, todo.Form{"id": "1"}).Return(nil)
	backend.On("List", mock.Anything).Return(snapshot(2), nil).Once()

	sent, err := ctrl.Add(context.Background(), "Walk dog")
	require.NoError(t, err)
	require.True(t, sent)
	require.Equal(t, 1, view.Len())

	require.NoError(t, ctrl.Remove(context.Background(), 1))
	require.Equal(t, 0, view.Len())
	backend.AssertExpectations(t)
}

func TestController_AddBlankSendsNothing(t *testing.T) {
	backend := &backendMock{}
	ctrl := listview.NewController(listview.New(), backend)

	sent, err := ctrl.Add(context.Background(), " ")
	require.NoError(t, err)
	require.False(t, sent)
	backend.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestController_RefreshError(t *testing.T) {
	backend := &backendMock{}
	ctrl := listview.NewController(listview.New(), backend)
	backend.On("List", mock.Anything).Return(listview.Snapshot{}, errors.New("timeout"))

	require.ErrorContains(t, ctrl.Refresh(context.Background()), "timeout")
}
