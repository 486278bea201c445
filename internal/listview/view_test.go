package listview_test

import (
	"testing"

	"github.com/ganot/todos/internal/domain/todo"
	"github.com/ganot/todos/internal/listview"
	"github.com/stretchr/testify/require"
)

func snapshot(version uint64, items ...listview.Item) listview.Snapshot {
	return listview.Snapshot{Version: version, Items: items}
}

func TestView_RowStates(t *testing.T) {
	v := listview.New()
	v.Apply(snapshot(1, listview.Item{ID: 1, Title: "Buy milk"}))

	row, ok := v.Row(1)
	require.True(t, ok)
	require.Equal(t, listview.Clean, row.State)
	require.Equal(t, "Buy milk", row.Display)
	require.False(t, row.CanSubmit)

	v.Edit(1, "Buy milk and eggs")
	row, _ = v.Row(1)
	require.Equal(t, listview.Dirty, row.State)
	require.Equal(t, "Buy milk and eggs", row.Display)
	require.Equal(t, "Buy milk", row.Stored)
	require.True(t, row.CanSubmit)

	// Editing back to the stored title keeps the draft but disables submit.
	v.Edit(1, "Buy milk")
	row, _ = v.Row(1)
	require.Equal(t, listview.CleanEdited, row.State)
	require.False(t, row.CanSubmit)
	_, hasDraft := v.Draft(1)
	require.True(t, hasDraft)
}

func TestView_BlankDraftIsNotSubmittable(t *testing.T) {
	v := listview.New()
	v.Apply(snapshot(1, listview.Item{ID: 1, Title: "Buy milk"}))

	for _, draft := range []string{"", "   ", "\t\n"} {
		v.Edit(1, draft)
		row, _ := v.Row(1)
		require.Equal(t, listview.CleanEdited, row.State, "draft %q", draft)
		require.Equal(t, draft, row.Display)

		_, ok := v.UpdateForm(1)
		require.False(t, ok, "draft %q", draft)
	}
}

func TestView_UpdateForm(t *testing.T) {
	v := listview.New()
	v.Apply(snapshot(1, listview.Item{ID: 42, Title: "Buy milk"}))

	_, ok := v.UpdateForm(42)
	require.False(t, ok)

	v.Edit(42, " Buy oat milk ")
	form, ok := v.UpdateForm(42)
	require.True(t, ok)
	require.Equal(t, todo.Form{"id": "42", "newTitle": " Buy oat milk "}, form)

	_, ok = v.UpdateForm(99)
	require.False(t, ok)
}

func TestView_SettleRestoresStoredTitle(t *testing.T) {
	v := listview.New()
	v.Apply(snapshot(1, listview.Item{ID: 1, Title: "Buy milk"}))
	v.Edit(1, "Buy bread")

	v.Settle(1)

	row, _ := v.Row(1)
	require.Equal(t, listview.Clean, row.State)
	require.Equal(t, "Buy milk", row.Display)
}

func TestView_ApplyDropsOrphanedDrafts(t *testing.T) {
	v := listview.New()
	v.Apply(snapshot(1, listview.Item{ID: 2, Title: "Walk dog"}, listview.Item{ID: 1, Title: "Buy milk"}))
	v.Edit(1, "Buy bread")
	v.Edit(2, "Walk cat")

	require.True(t, v.Apply(snapshot(2, listview.Item{ID: 2, Title: "Walk dog"})))

	_, ok := v.Draft(1)
	require.False(t, ok)
	draft, ok := v.Draft(2)
	require.True(t, ok)
	require.Equal(t, "Walk cat", draft)
	require.Equal(t, 1, v.Len())
}

func TestView_ApplyIgnoresOlderSnapshots(t *testing.T) {
	v := listview.New()
	require.True(t, v.Apply(snapshot(0)))
	require.True(t, v.Apply(snapshot(3, listview.Item{ID: 5, Title: "new"})))

	require.False(t, v.Apply(snapshot(2)))
	require.Equal(t, uint64(3), v.Version())
	require.Equal(t, 1, v.Len())

	// Same version is a plain refetch.
	require.True(t, v.Apply(snapshot(3, listview.Item{ID: 5, Title: "new"})))
}

func TestView_ApplyAcceptsNewEpoch(t *testing.T) {
	v := listview.New()
	before := listview.Snapshot{Epoch: "boot-1", Version: 3, Items: []listview.Item{{ID: 1, Title: "A"}}}
	require.True(t, v.Apply(before))

	after := listview.Snapshot{Epoch: "boot-2", Version: 1, Items: []listview.Item{
		{ID: 2, Title: "B"},
		{ID: 1, Title: "A"},
	}}
	require.True(t, v.Apply(after))
	require.Equal(t, uint64(1), v.Version())
	require.Equal(t, 2, v.Len())

	stale := listview.Snapshot{Epoch: "boot-2", Version: 0}
	require.False(t, v.Apply(stale))
	require.Equal(t, 2, v.Len())
}

func TestView_RowsKeepSnapshotOrder(t *testing.T) {
	v := listview.New()
	v.Apply(snapshot(1,
		listview.Item{ID: 3, Title: "c"},
		listview.Item{ID: 2, Title: "b"},
		listview.Item{ID: 1, Title: "a"},
	))

	rows := v.Rows()
	require.Len(t, rows, 3)
	require.Equal(t, []int64{3, 2, 1}, []int64{rows[0].ID, rows[1].ID, rows[2].ID})

	row, ok := v.RowAt(2)
	require.True(t, ok)
	require.Equal(t, int64(1), row.ID)
	_, ok = v.RowAt(3)
	require.False(t, ok)
}

func TestCreateForm(t *testing.T) {
	form, ok := listview.CreateForm("Buy milk")
	require.True(t, ok)
	require.Equal(t, todo.Form{"title": "Buy milk"}, form)

	_, ok = listview.CreateForm("  ")
	require.False(t, ok)
}

func TestDeleteForm(t *testing.T) {
	require.Equal(t, todo.Form{"id": "7"}, listview.DeleteForm(7))
}
