package browser

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/joshharrison/critpath/internal/planner"
	"github.com/joshharrison/critpath/internal/task"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	plan, err := planner.Generate("Diamond", []task.Task{
		task.New("A", 1, 1, 1),
		task.New("B", 2, 2, 2, "A"),
		task.New("C", 5, 5, 5, "A"),
		task.New("D", 1, 1, 1, "B", "C"),
	}, planner.Config{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	return New(plan)
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestToggleCriticalOnly(t *testing.T) {
	m := newTestModel(t)
	if m.Visible() != 4 {
		t.Fatalf("expected 4 visible tasks, got %d", m.Visible())
	}

	m.Update(key("c"))
	if m.Visible() != 3 {
		t.Errorf("expected 3 critical tasks, got %d", m.Visible())
	}
	if !strings.Contains(m.View(), "critical only") {
		t.Error("view should show the active filter")
	}

	m.Update(key("c"))
	if m.Visible() != 4 {
		t.Errorf("expected all tasks after second toggle, got %d", m.Visible())
	}
}

func TestSelectionMovesWithCursor(t *testing.T) {
	m := newTestModel(t)

	e, ok := m.Selected()
	if !ok || e.TaskName != "A" {
		t.Fatalf("expected A selected first, got %+v", e)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	e, _ = m.Selected()
	if e.TaskName != "B" {
		t.Errorf("expected B after moving down, got %s", e.TaskName)
	}
	if !strings.Contains(m.View(), "after:  A") {
		t.Errorf("detail panel should list predecessors:\n%s", m.View())
	}
}

func TestQuit(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestWindowResize(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 10})
	if m.table.Height() != minTableHeight {
		t.Errorf("expected table height clamped to %d, got %d", minTableHeight, m.table.Height())
	}
}
