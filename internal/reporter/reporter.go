package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/joshharrison/critpath/internal/planner"
	"github.com/joshharrison/critpath/internal/ui"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	criticalStyle = cellStyle.Foreground(lipgloss.Color("#FF6B6B"))
	borderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))
)

// Reporter renders a scheduled plan for terminals and machines.
type Reporter struct {
	Plan *planner.Plan
}

// New creates a new Reporter.
func New(plan *planner.Plan) *Reporter {
	return &Reporter{Plan: plan}
}

// PrintTable writes the per-task schedule as a bordered table, one row per
// task in input order.
func (r *Reporter) PrintTable(w io.Writer) {
	report := r.Plan.Report

	fmt.Fprintf(w, "%s %s %s %d tasks, %d waves, duration %s\n\n",
		ui.BoldCyan("🧮 critpath"),
		ui.Bold(r.Plan.Title),
		ui.Dim("·"),
		r.Plan.TotalTasks,
		r.Plan.TotalWaves,
		ui.BoldWhite(ui.Num(report.ProjectDuration)))

	rows := make([][]string, 0, len(report.Entries))
	for _, e := range report.Entries {
		rows = append(rows, []string{
			e.TaskName,
			ui.Num(e.Duration),
			ui.Num(e.ES),
			ui.Num(e.EF),
			ui.Num(e.LS),
			ui.Num(e.LF),
			ui.SlackIcon(e.Slack, e.Critical) + " " + ui.Num(e.Slack),
			ui.CriticalMarker(e.Critical),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("TASK", "DURATION", "ES", "EF", "LS", "LF", "SLACK", "CRIT").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row >= 0 && row < len(report.Entries) && report.Entries[row].Critical:
				return criticalStyle
			default:
				return cellStyle
			}
		})

	fmt.Fprintln(w, t.Render())
}

// Summary returns a short human-readable overview of the schedule.
func (r *Reporter) Summary() string {
	var b strings.Builder
	report := r.Plan.Report

	fmt.Fprintf(&b, "\n%s %s\n", "✅", ui.BoldCyan("Schedule Complete"))
	fmt.Fprintf(&b, "%s\n", ui.Cyan("═════════════════════"))
	fmt.Fprintf(&b, "Plan:      %s\n", ui.Dim(r.Plan.ID))
	fmt.Fprintf(&b, "Project:   %s\n", r.Plan.Title)
	fmt.Fprintf(&b, "Duration:  %s %s\n", ui.Bold(ui.Num(report.ProjectDuration)),
		ui.Dim(fmt.Sprintf("(σ %s)", ui.Num(r.Plan.CriticalStdDev))))
	fmt.Fprintf(&b, "Tasks:     %d total, %s\n", r.Plan.TotalTasks,
		ui.Yellow(fmt.Sprintf("%d critical", len(report.CriticalPath))))

	if len(report.CriticalPath) > 0 {
		fmt.Fprintf(&b, "Critical:  %s\n", ui.BoldYellow("⚡ "+strings.Join(report.CriticalPath, " → ")))
	}

	if d := r.Plan.Deadline; d != nil {
		odds := fmt.Sprintf("%.1f%%", d.Probability*100)
		switch {
		case d.Probability >= 0.8:
			odds = ui.BoldGreen(odds)
		case d.Probability >= 0.5:
			odds = ui.Yellow(odds)
		default:
			odds = ui.BoldRed(odds)
		}
		fmt.Fprintf(&b, "Deadline:  %s chance to finish by %s\n", odds, ui.Num(d.Deadline))
	}

	return b.String()
}

// JSON returns the machine-readable plan.
func (r *Reporter) JSON() ([]byte, error) {
	return json.MarshalIndent(r.Plan, "", "  ")
}

// WriteCSV writes one row per task with full-precision numbers.
func (r *Reporter) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"task", "duration", "es", "ef", "ls", "lf", "slack", "critical"}); err != nil {
		return err
	}
	for _, e := range r.Plan.Report.Entries {
		if err := cw.Write([]string{
			e.TaskName,
			formatFloat(e.Duration),
			formatFloat(e.ES),
			formatFloat(e.EF),
			formatFloat(e.LS),
			formatFloat(e.LF),
			formatFloat(e.Slack),
			strconv.FormatBool(e.Critical),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
