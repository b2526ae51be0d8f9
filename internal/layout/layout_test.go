package layout

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/joshharrison/critpath/internal/cpm"
	"github.com/joshharrison/critpath/internal/graph"
	"github.com/joshharrison/critpath/internal/task"
	"github.com/joshharrison/critpath/internal/ui"
)

func diamond(t *testing.T) (*graph.Graph, *cpm.Report) {
	t.Helper()
	g, err := graph.Build([]task.Task{
		task.New("A", 1, 1, 1),
		task.New("B", 2, 2, 2, "A"),
		task.New("C", 5, 5, 5, "A"),
		task.New("D", 1, 1, 1, "B", "C"),
	})
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}
	report, err := cpm.Analyze(g)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	return g, report
}

func TestFromGraph_NodesAndEdges(t *testing.T) {
	g, report := diamond(t)
	v := FromGraph(g, report)

	if len(v.Nodes) != 4 || len(v.Edges) != 4 {
		t.Fatalf("expected 4 nodes and 4 edges, got %d and %d", len(v.Nodes), len(v.Edges))
	}

	coords := map[string][2]float64{}
	for _, n := range v.Nodes {
		coords[n.ID] = [2]float64{n.X, n.Y}
	}
	want := map[string][2]float64{
		"A": {0, 0},
		"B": {1, 0},
		"C": {1, 1},
		"D": {2, 0},
	}
	if !reflect.DeepEqual(coords, want) {
		t.Errorf("expected coordinates %v, got %v", want, coords)
	}

	critical := map[string]bool{}
	for _, e := range v.Edges {
		critical[e.From+"->"+e.To] = e.Critical
	}
	if !critical["A->C"] || !critical["C->D"] {
		t.Errorf("expected A->C and C->D critical, got %v", critical)
	}
	if critical["A->B"] || critical["B->D"] {
		t.Errorf("expected A->B and B->D non-critical, got %v", critical)
	}
	if v.ProjectDuration != 7 {
		t.Errorf("expected project duration 7, got %v", v.ProjectDuration)
	}
}

func TestFromGraph_Deterministic(t *testing.T) {
	g, report := diamond(t)
	if !reflect.DeepEqual(FromGraph(g, report), FromGraph(g, report)) {
		t.Error("expected identical views for the same graph")
	}
}

func TestFromGraph_WithoutReport(t *testing.T) {
	g, _ := diamond(t)
	v := FromGraph(g, nil)
	if v.Nodes[2].Duration != 5 {
		t.Errorf("expected C duration from task estimate, got %v", v.Nodes[2].Duration)
	}
	for _, e := range v.Edges {
		if e.Critical {
			t.Errorf("no edge should be critical without a report: %+v", e)
		}
	}
}

func TestWriteDOT(t *testing.T) {
	g, report := diamond(t)
	var buf bytes.Buffer
	if err := WriteDOT(&buf, g, report); err != nil {
		t.Fatalf("WriteDOT: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "digraph critpath {") {
		t.Errorf("unexpected DOT header: %q", out)
	}
	if !strings.Contains(out, `"C" -> "D" [color=red, penwidth=2];`) {
		t.Errorf("expected critical edge C -> D in DOT output:\n%s", out)
	}
	if !strings.Contains(out, `"A" -> "B";`) {
		t.Errorf("expected plain edge A -> B in DOT output:\n%s", out)
	}
	if !strings.Contains(out, `"A" [label="A\nd=1\nES 0  EF 1\nLS 0  LF 1", style="rounded,bold", color=red];`) {
		t.Errorf("expected multi-line label for A in DOT output:\n%s", out)
	}
	if strings.Contains(out, `\\n`) {
		t.Errorf("label line breaks must not be double escaped:\n%s", out)
	}
}

func TestWriteDOT_EscapesNames(t *testing.T) {
	g, err := graph.Build([]task.Task{
		task.New(`Say "hi"`, 1, 1, 1),
		task.New(`C:\build`, 2, 2, 2, `Say "hi"`),
	})
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteDOT(&buf, g, nil); err != nil {
		t.Fatalf("WriteDOT: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`"Say \"hi\"" [label="Say \"hi\"\nd=1"];`,
		`"C:\\build" [label="C:\\build\nd=2"];`,
		`"Say \"hi\"" -> "C:\\build";`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in DOT output:\n%s", want, out)
		}
	}
}

func TestWriteASCII(t *testing.T) {
	ui.DisableColor()
	g, report := diamond(t)
	var buf bytes.Buffer
	WriteASCII(&buf, g, report)
	out := buf.String()
	for _, want := range []string{"[A]", "[D]", "└──→ C", "t=6"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in ASCII output:\n%s", want, out)
		}
	}
}
