// Package listview holds the client-side state of the todo list: the last
// authoritative snapshot from the server and the unsaved per-row drafts
// layered on top of it.
package listview

import (
	"strconv"
	"strings"

	"github.com/ganot/todos/internal/domain/todo"
)

// Item is one authoritative row.
type Item struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// Snapshot is the full owned list at a server version. Epoch changes when the
// server's version sequence restarts.
type Snapshot struct {
	Epoch   string `json:"-"`
	Version uint64 `json:"version"`
	Items   []Item `json:"todos"`
}

// RowState describes a row relative to its draft.
type RowState int

const (
	// Clean rows have no draft and show the stored title.
	Clean RowState = iota
	// Dirty rows have a non-blank draft that differs from the stored title.
	Dirty
	// CleanEdited rows have a draft equal to the stored title, or a blank
	// one. They cannot be submitted but keep the draft.
	CleanEdited
)

func (s RowState) String() string {
	switch s {
	case Clean:
		return "clean"
	case Dirty:
		return "dirty"
	case CleanEdited:
		return "clean_edited"
	default:
		return "unknown"
	}
}

// Row is the rendered form of an Item.
type Row struct {
	ID        int64
	Stored    string
	Display   string
	State     RowState
	CanSubmit bool
}

// View is the list presentation state. It is not safe for concurrent use;
// drive it from a single goroutine such as a Bubble Tea update loop.
type View struct {
	epoch   string
	version uint64
	applied bool
	items   []Item
	drafts  map[int64]string
}

// New returns an empty view.
func New() *View {
	return &View{drafts: make(map[int64]string)}
}

// Apply replaces the authoritative items. A snapshot from the same epoch as
// the last one applied but with an older version is ignored; a snapshot from
// another epoch always replaces the list. It reports whether the snapshot was
// applied.
func (v *View) Apply(snap Snapshot) bool {
	if v.applied && snap.Epoch == v.epoch && snap.Version < v.version {
		return false
	}
	v.epoch = snap.Epoch
	v.version = snap.Version
	v.applied = true
	v.items = append(v.items[:0:0], snap.Items...)

	present := make(map[int64]struct{}, len(v.items))
	for _, it := range v.items {
		present[it.ID] = struct{}{}
	}
	for id := range v.drafts {
		if _, ok := present[id]; !ok {
			delete(v.drafts, id)
		}
	}
	return true
}

// Version returns the version of the applied snapshot.
func (v *View) Version() uint64 {
	return v.version
}

// Len returns the number of rows.
func (v *View) Len() int {
	return len(v.items)
}

// Edit records a keystroke for row id.
func (v *View) Edit(id int64, text string) {
	v.drafts[id] = text
}

// Draft returns the unsaved text for id, if any.
func (v *View) Draft(id int64) (string, bool) {
	text, ok := v.drafts[id]
	return text, ok
}

// Settle drops the draft for id once its update has round-tripped.
func (v *View) Settle(id int64) {
	delete(v.drafts, id)
}

// Rows returns every row in snapshot order.
func (v *View) Rows() []Row {
	rows := make([]Row, 0, len(v.items))
	for _, it := range v.items {
		rows = append(rows, v.row(it))
	}
	return rows
}

// Row returns the row for id.
func (v *View) Row(id int64) (Row, bool) {
	for _, it := range v.items {
		if it.ID == id {
			return v.row(it), true
		}
	}
	return Row{}, false
}

// RowAt returns the row at index i.
func (v *View) RowAt(i int) (Row, bool) {
	if i < 0 || i >= len(v.items) {
		return Row{}, false
	}
	return v.row(v.items[i]), true
}

func (v *View) row(it Item) Row {
	r := Row{ID: it.ID, Stored: it.Title, Display: it.Title, State: Clean}
	draft, ok := v.drafts[it.ID]
	if !ok {
		return r
	}
	r.Display = draft
	if draft != it.Title && strings.TrimSpace(draft) != "" {
		r.State = Dirty
		r.CanSubmit = true
	} else {
		r.State = CleanEdited
	}
	return r
}

// UpdateForm returns the update submission for id. Only Dirty rows submit.
func (v *View) UpdateForm(id int64) (todo.Form, bool) {
	r, ok := v.Row(id)
	if !ok || !r.CanSubmit {
		return nil, false
	}
	return todo.Form{
		todo.FieldID:       strconv.FormatInt(id, 10),
		todo.FieldNewTitle: r.Display,
	}, true
}

// DeleteForm returns the delete submission for id.
func DeleteForm(id int64) todo.Form {
	return todo.Form{todo.FieldID: strconv.FormatInt(id, 10)}
}

// CreateForm returns the create submission for title. Blank titles are not
// submitted.
func CreateForm(title string) (todo.Form, bool) {
	if strings.TrimSpace(title) == "" {
		return nil, false
	}
	return todo.Form{todo.FieldTitle: title}, true
}
