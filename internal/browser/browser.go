// Package browser is an interactive terminal view of a scheduled plan.
package browser

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/joshharrison/critpath/internal/cpm"
	"github.com/joshharrison/critpath/internal/planner"
	"github.com/joshharrison/critpath/internal/ui"
)

const minTableHeight = 5

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	criticalText = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	detailStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444444")).Padding(0, 1)
)

// Model is the bubbletea model for browsing one plan.
type Model struct {
	plan         *planner.Plan
	table        table.Model
	entries      []cpm.Entry
	criticalOnly bool
}

// New builds a browser for plan with every task shown.
func New(plan *planner.Plan) *Model {
	columns := []table.Column{
		{Title: "Task", Width: 24},
		{Title: "Dur", Width: 7},
		{Title: "ES", Width: 7},
		{Title: "EF", Width: 7},
		{Title: "LS", Width: 7},
		{Title: "LF", Width: 7},
		{Title: "Slack", Width: 7},
		{Title: "⚡", Width: 2},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#5B8DEF")).
		Bold(false)
	t.SetStyles(styles)

	m := &Model{plan: plan, table: t}
	m.refreshRows()
	return m
}

// Run starts the browser in the alternate screen and blocks until the user
// quits.
func Run(plan *planner.Plan) error {
	_, err := tea.NewProgram(New(plan), tea.WithAltScreen()).Run()
	return err
}

func (m *Model) refreshRows() {
	m.entries = m.entries[:0]
	rows := make([]table.Row, 0, len(m.plan.Report.Entries))
	for _, e := range m.plan.Report.Entries {
		if m.criticalOnly && !e.Critical {
			continue
		}
		marker := ""
		if e.Critical {
			marker = "⚡"
		}
		m.entries = append(m.entries, e)
		rows = append(rows, table.Row{
			e.TaskName,
			ui.Num(e.Duration),
			ui.Num(e.ES),
			ui.Num(e.EF),
			ui.Num(e.LS),
			ui.Num(e.LF),
			ui.Num(e.Slack),
			marker,
		})
	}
	m.table.SetRows(rows)
	m.table.SetCursor(0)
}

// Visible returns the number of tasks currently listed.
func (m *Model) Visible() int {
	return len(m.entries)
}

// Selected returns the entry under the cursor.
func (m *Model) Selected() (cpm.Entry, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.entries) {
		return cpm.Entry{}, false
	}
	return m.entries[i], true
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// Leave room for the header, detail panel and footer.
		m.table.SetHeight(max(minTableHeight, msg.Height-12))
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "c":
			m.criticalOnly = !m.criticalOnly
			m.refreshRows()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) View() string {
	report := m.plan.Report

	filter := "all tasks"
	if m.criticalOnly {
		filter = "critical only"
	}
	header := fmt.Sprintf("%s  duration %s · %d tasks · %s",
		titleStyle.Render("🧮 "+m.plan.Title),
		ui.Num(report.ProjectDuration),
		m.plan.TotalTasks,
		filter)

	footer := footerStyle.Render("↑/↓ move · c toggle critical only · q quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		m.table.View(),
		m.renderDetail(),
		footer,
	)
}

func (m *Model) renderDetail() string {
	e, ok := m.Selected()
	if !ok {
		return detailStyle.Render("no tasks to show")
	}

	name := e.TaskName
	if e.Critical {
		name = criticalText.Render(name + " ⚡ critical")
	}

	g := m.plan.Graph()
	var preds, succs []string
	if g != nil {
		preds = g.Predecessors(e.TaskName)
		succs = g.Successors(e.TaskName)
	}

	lines := []string{
		name,
		fmt.Sprintf("start %s–%s  finish %s–%s  slack %s",
			ui.Num(e.ES), ui.Num(e.LS), ui.Num(e.EF), ui.Num(e.LF), ui.Num(e.Slack)),
		"after:  " + listOrDash(preds),
		"before: " + listOrDash(succs),
	}
	return detailStyle.Render(strings.Join(lines, "\n"))
}

func listOrDash(names []string) string {
	if len(names) == 0 {
		return "—"
	}
	return strings.Join(names, ", ")
}
