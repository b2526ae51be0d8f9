package reporter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/joshharrison/critpath/internal/planner"
	"github.com/joshharrison/critpath/internal/task"
	"github.com/joshharrison/critpath/internal/ui"
)

func makePlan(t *testing.T, config planner.Config) *planner.Plan {
	t.Helper()
	ui.DisableColor()
	plan, err := planner.Generate("Test plan", []task.Task{
		task.New("a", 1, 1, 1),
		task.New("b", 2, 2, 2),
		task.New("c", 3, 3, 3, "a"),
	}, config)
	if err != nil {
		t.Fatalf("generate plan: %v", err)
	}
	return plan
}

func TestPrintTable(t *testing.T) {
	rpt := New(makePlan(t, planner.Config{}))

	var buf bytes.Buffer
	rpt.PrintTable(&buf)
	output := buf.String()

	for _, want := range []string{"critpath", "Test plan", "TASK", "SLACK", "⚡"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q:\n%s", want, output)
		}
	}

	// Rows follow input order.
	ia := strings.Index(output, " a ")
	ib := strings.Index(output, " b ")
	ic := strings.Index(output, " c ")
	if ia < 0 || ib < 0 || ic < 0 || !(ia < ib && ib < ic) {
		t.Errorf("expected rows a, b, c in order:\n%s", output)
	}
}

func TestJSON(t *testing.T) {
	plan := makePlan(t, planner.Config{})
	data, err := New(plan).JSON()
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var decoded struct {
		ID     string `json:"id"`
		Report struct {
			ProjectDuration float64  `json:"project_duration"`
			CriticalPath    []string `json:"critical_path"`
		} `json:"report"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.ID != plan.ID {
		t.Errorf("expected plan ID %s, got %s", plan.ID, decoded.ID)
	}
	if decoded.Report.ProjectDuration != 4 {
		t.Errorf("expected duration 4, got %v", decoded.Report.ProjectDuration)
	}
	if strings.Join(decoded.Report.CriticalPath, ",") != "a,c" {
		t.Errorf("expected critical path a,c, got %v", decoded.Report.CriticalPath)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := New(makePlan(t, planner.Config{})).WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 rows, got %d:\n%s", len(lines), buf.String())
	}
	if lines[0] != "task,duration,es,ef,ls,lf,slack,critical" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if lines[2] != "b,2,0,2,2,4,2,false" {
		t.Errorf("unexpected row for b: %q", lines[2])
	}
}

func TestSummary(t *testing.T) {
	summary := New(makePlan(t, planner.Config{})).Summary()
	if !strings.Contains(summary, "Schedule Complete") {
		t.Error("summary should contain header")
	}
	if !strings.Contains(summary, "a → c") {
		t.Error("summary should show the critical path")
	}
	if strings.Contains(summary, "Deadline") {
		t.Error("summary should omit deadline line without a deadline")
	}
}

func TestSummary_WithDeadline(t *testing.T) {
	summary := New(makePlan(t, planner.Config{Deadline: 4})).Summary()
	if !strings.Contains(summary, "100.0% chance to finish by 4") {
		t.Errorf("expected certain completion for zero-spread tasks:\n%s", summary)
	}
}
