// Package tui is the interactive todo list.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ganot/todos/internal/listview"
)

const defaultCallTimeout = 15 * time.Second

type mode int

const (
	modeBrowse mode = iota
	modeEdit
	modeAdd
)

type snapshotMsg struct {
	snap listview.Snapshot
	err  error
}

type mutatedMsg struct {
	op  string
	id  int64
	err error
}

// Model is the Bubble Tea model for the list.
type Model struct {
	view    *listview.View
	backend listview.Backend
	keys    keyMap
	timeout time.Duration

	mode   mode
	cursor int
	editID int64
	input  textinput.Model

	// busy is set while a mutation or refetch is in flight; further
	// submissions wait for it to clear.
	busy   bool
	status string
	err    error
	width  int
}

// New returns a model that loads its list from backend on start.
func New(backend listview.Backend) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 500

	return Model{
		view:    listview.New(),
		backend: backend,
		keys:    defaultKeyMap(),
		timeout: defaultCallTimeout,
		input:   ti,
	}
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, backend listview.Backend) error {
	p := tea.NewProgram(New(backend), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// ListView exposes the list state.
func (m Model) ListView() *listview.View {
	return m.view
}

// Busy reports whether a call is in flight.
func (m Model) Busy() bool {
	return m.busy
}

func (m Model) Init() tea.Cmd {
	return m.refresh()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if msg.Width > 8 {
			m.input.Width = msg.Width - 8
		}
		return m, nil

	case snapshotMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.view.Apply(msg.snap)
		m.clampCursor()
		if m.mode == modeEdit {
			if _, ok := m.view.Row(m.editID); !ok {
				m.leaveInput()
			}
		}
		return m, nil

	case mutatedMsg:
		if msg.op == "update" {
			m.view.Settle(msg.id)
		}
		if msg.err != nil {
			m.busy = false
			m.err = msg.err
			return m, nil
		}
		return m, m.refresh()

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) && (m.mode == modeBrowse || msg.Type == tea.KeyCtrlC) {
			return m, tea.Quit
		}
		switch m.mode {
		case modeEdit:
			return m.updateEdit(msg)
		case modeAdd:
			return m.updateAdd(msg)
		default:
			return m.updateBrowse(msg)
		}
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < m.view.Len()-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Add):
		m.mode = modeAdd
		m.input.SetValue("")
		m.input.Placeholder = "New todo..."
		m.status = ""
		cmd := m.input.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Edit):
		row, ok := m.view.RowAt(m.cursor)
		if !ok {
			return m, nil
		}
		m.mode = modeEdit
		m.editID = row.ID
		m.input.SetValue(row.Display)
		m.input.CursorEnd()
		m.input.Placeholder = row.Stored
		m.status = ""
		cmd := m.input.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Submit):
		row, ok := m.view.RowAt(m.cursor)
		if !ok {
			return m, nil
		}
		return m.submit(row.ID)
	case key.Matches(msg, m.keys.Delete):
		row, ok := m.view.RowAt(m.cursor)
		if !ok || m.busy {
			return m, nil
		}
		m.busy = true
		return m, m.mutate("delete", row.ID, func(ctx context.Context) error {
			return m.backend.Delete(ctx, listview.DeleteForm(row.ID))
		})
	case key.Matches(msg, m.keys.Refresh):
		if m.busy {
			return m, nil
		}
		m.busy = true
		return m, m.refresh()
	}
	return m, nil
}

func (m Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.leaveInput()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		id := m.editID
		next, cmd := m.submit(id)
		if nm := next.(Model); nm.busy && cmd != nil {
			nm.leaveInput()
			return nm, cmd
		}
		return next, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.view.Edit(m.editID, m.input.Value())
	return m, cmd
}

func (m Model) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.leaveInput()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		if m.busy {
			m.status = "busy"
			return m, nil
		}
		form, ok := listview.CreateForm(m.input.Value())
		if !ok {
			m.status = "title cannot be empty"
			return m, nil
		}
		m.leaveInput()
		m.busy = true
		m.cursor = 0
		return m, m.mutate("create", 0, func(ctx context.Context) error {
			return m.backend.Create(ctx, form)
		})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit(id int64) (tea.Model, tea.Cmd) {
	if m.busy {
		m.status = "busy"
		return m, nil
	}
	form, ok := m.view.UpdateForm(id)
	if !ok {
		m.status = "nothing to save"
		return m, nil
	}
	m.busy = true
	m.status = ""
	return m, m.mutate("update", id, func(ctx context.Context) error {
		return m.backend.Update(ctx, form)
	})
}

func (m *Model) leaveInput() {
	m.mode = modeBrowse
	m.input.SetValue("")
	m.input.Blur()
}

func (m *Model) clampCursor() {
	if m.cursor >= m.view.Len() {
		m.cursor = m.view.Len() - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) refresh() tea.Cmd {
	backend, timeout := m.backend, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		snap, err := backend.List(ctx)
		return snapshotMsg{snap: snap, err: err}
	}
}

func (m Model) mutate(op string, id int64, call func(context.Context) error) tea.Cmd {
	timeout := m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return mutatedMsg{op: op, id: id, err: call(ctx)}
	}
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Todos"))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  %d", m.view.Len())))
	if m.busy {
		b.WriteString("  " + busyStyle.Render("saving…"))
	}
	b.WriteString("\n\n")

	rows := m.view.Rows()
	if len(rows) == 0 {
		b.WriteString(mutedStyle.Render("No todos yet. Press a to add one."))
		b.WriteString("\n")
	}
	for i, row := range rows {
		prefix := "  "
		if i == m.cursor {
			prefix = selectedStyle.Render(">") + " "
		}
		if m.mode == modeEdit && row.ID == m.editID {
			b.WriteString(prefix + m.input.View() + "\n")
			continue
		}
		b.WriteString(prefix + renderRow(row) + "\n")
	}

	if m.mode == modeAdd {
		b.WriteString("\n" + panelStyle.Render("Add todo\n"+m.input.View()) + "\n")
	}

	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render("✖ "+m.err.Error()) + "\n")
	} else if m.status != "" {
		b.WriteString("\n" + mutedStyle.Render(m.status) + "\n")
	}

	help := m.keys.browseHelp()
	if m.mode != modeBrowse {
		help = m.keys.inputHelp()
	}
	b.WriteString("\n" + helpStyle.Render(helpLine(help)))

	return panelStyle.Render(b.String())
}

func renderRow(row listview.Row) string {
	switch row.State {
	case listview.Dirty:
		return dirtyStyle.Render(markDirty) + " " + row.Display
	case listview.CleanEdited:
		return mutedStyle.Render(markEdited) + " " + row.Display
	default:
		return "  " + row.Display
	}
}

func helpLine(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}
