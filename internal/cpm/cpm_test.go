package cpm

import (
	"errors"
	"reflect"
	"testing"

	"github.com/joshharrison/critpath/internal/graph"
	"github.com/joshharrison/critpath/internal/task"
)

func buildTestGraph(t *testing.T, tasks ...task.Task) *graph.Graph {
	t.Helper()
	g, err := graph.Build(tasks)
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}
	return g
}

// fixed returns a task whose three estimates are all d, so its expected
// duration is exactly d.
func fixed(name string, d float64, preds ...string) task.Task {
	return task.New(name, d, d, d, preds...)
}

func TestAnalyze_LinearChain(t *testing.T) {
	// A(2) -> B(3) -> C(4)
	g := buildTestGraph(t, fixed("A", 2), fixed("B", 3, "A"), fixed("C", 4, "B"))

	result, err := Analyze(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.ProjectDuration != 9 {
		t.Errorf("expected project duration 9, got %v", result.ProjectDuration)
	}
	if !reflect.DeepEqual(result.CriticalPath, []string{"A", "B", "C"}) {
		t.Errorf("expected every task on the critical path, got %v", result.CriticalPath)
	}
	if len(result.Waves) != 3 {
		t.Errorf("expected 3 waves, got %d", len(result.Waves))
	}

	assertEntry(t, result, "A", 0, 2, 0, 2, 0, true)
	assertEntry(t, result, "B", 2, 5, 2, 5, 0, true)
	assertEntry(t, result, "C", 5, 9, 5, 9, 0, true)
}

func TestAnalyze_DiamondDAG(t *testing.T) {
	// A(1) -> B(2) -> D(1)
	// A(1) -> C(5) -> D(1)
	g := buildTestGraph(t,
		fixed("A", 1),
		fixed("B", 2, "A"),
		fixed("C", 5, "A"),
		fixed("D", 1, "B", "C"),
	)

	result, err := Analyze(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.ProjectDuration != 7 {
		t.Errorf("expected project duration 7, got %v", result.ProjectDuration)
	}
	if !reflect.DeepEqual(result.CriticalPath, []string{"A", "C", "D"}) {
		t.Errorf("expected critical path [A C D], got %v", result.CriticalPath)
	}

	assertEntry(t, result, "A", 0, 1, 0, 1, 0, true)
	assertEntry(t, result, "B", 1, 3, 4, 6, 3, false)
	assertEntry(t, result, "C", 1, 6, 1, 6, 0, true)
	assertEntry(t, result, "D", 6, 7, 6, 7, 0, true)

	// 3 waves: [A], [C, B] (critical first), [D]
	if len(result.Waves) != 3 {
		t.Fatalf("expected 3 waves, got %d", len(result.Waves))
	}
	if !reflect.DeepEqual(result.Waves[1].TaskNames, []string{"C", "B"}) {
		t.Errorf("expected wave 1 = [C B], got %v", result.Waves[1].TaskNames)
	}
}

func TestAnalyze_ParallelIndependent(t *testing.T) {
	g := buildTestGraph(t, fixed("a", 3), fixed("b", 7), fixed("c", 7), fixed("d", 1))

	result, err := Analyze(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.ProjectDuration != 7 {
		t.Errorf("expected project duration 7, got %v", result.ProjectDuration)
	}
	if len(result.Waves) != 1 || len(result.Waves[0].TaskNames) != 4 {
		t.Errorf("expected a single wave of 4 tasks, got %+v", result.Waves)
	}

	for _, e := range result.Entries {
		if e.ES != 0 || e.EF != e.Duration {
			t.Errorf("task %s: expected ES=0 EF=duration, got ES=%v EF=%v", e.TaskName, e.ES, e.EF)
		}
		if e.LF != 7 {
			t.Errorf("task %s: expected LF=7, got %v", e.TaskName, e.LF)
		}
		if want := 7 - e.Duration; e.Slack != want {
			t.Errorf("task %s: expected slack %v, got %v", e.TaskName, want, e.Slack)
		}
	}
	if !reflect.DeepEqual(result.CriticalPath, []string{"b", "c"}) {
		t.Errorf("expected longest tasks to be critical, got %v", result.CriticalPath)
	}
}

func TestAnalyze_SingleTask(t *testing.T) {
	g := buildTestGraph(t, fixed("solo", 5))

	result, err := Analyze(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.ProjectDuration != 5 {
		t.Errorf("expected project duration 5, got %v", result.ProjectDuration)
	}
	assertEntry(t, result, "solo", 0, 5, 0, 5, 0, true)
}

func TestAnalyze_IsolatedTaskAlongsideChain(t *testing.T) {
	// A(4) -> B(4), lone(1) has neither predecessors nor successors.
	g := buildTestGraph(t, fixed("A", 4), fixed("lone", 1), fixed("B", 4, "A"))

	result, err := Analyze(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertEntry(t, result, "lone", 0, 1, 7, 8, 7, false)
}

func TestSchedule_OutOfOrderInputMatchesSortedInput(t *testing.T) {
	sorted := buildTestGraph(t, fixed("A", 2), fixed("B", 3, "A"), fixed("C", 4, "B"))
	shuffled := buildTestGraph(t, fixed("C", 4, "B"), fixed("A", 2), fixed("B", 3, "A"))

	a, err := Analyze(sorted)
	if err != nil {
		t.Fatalf("sorted: %v", err)
	}
	b, err := Analyze(shuffled)
	if err != nil {
		t.Fatalf("shuffled: %v", err)
	}

	for _, name := range []string{"A", "B", "C"} {
		ea, _ := a.Entry(name)
		eb, _ := b.Entry(name)
		ea.Wave, eb.Wave = 0, 0
		if ea != eb {
			t.Errorf("task %s: results differ by input order: %+v vs %+v", name, ea, eb)
		}
	}

	// Entries keep the input order of their own graph.
	if b.Entries[0].TaskName != "C" {
		t.Errorf("expected entries in input order, got first=%s", b.Entries[0].TaskName)
	}
}

func TestSchedule_Idempotent(t *testing.T) {
	g := buildTestGraph(t,
		task.New("A", 1, 2.5, 7),
		task.New("B", 0.3, 1.1, 2.9, "A"),
		task.New("C", 2, 2, 8, "A"),
		task.New("D", 0.1, 0.2, 0.7, "B", "C"),
	)
	durations := g.Durations()

	first, err := Schedule(g, durations)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := Schedule(g, durations)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("expected identical reports:\n%+v\n%+v", first, second)
	}
}

func TestSchedule_FractionalDurationsAreNotRounded(t *testing.T) {
	g := buildTestGraph(t, task.New("A", 1, 2, 4), task.New("B", 0, 1, 1, "A"))

	result, err := Analyze(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantA := task.Estimate(1, 2, 4)
	wantB := task.Estimate(0, 1, 1)
	if result.ProjectDuration != wantA+wantB {
		t.Errorf("expected project duration %v, got %v", wantA+wantB, result.ProjectDuration)
	}
	if len(result.CriticalPath) != 2 {
		t.Errorf("expected both tasks critical, got %v", result.CriticalPath)
	}
}

func TestSchedule_WavesTolerateRoundingNoise(t *testing.T) {
	// X starts at 0.1+0.2 and Y at 0.3; the two differ only in the last bit.
	g := buildTestGraph(t,
		fixed("A", 0), fixed("B", 0, "A"), fixed("X", 0, "B"),
		fixed("C", 0), fixed("Y", 0, "C"),
	)
	result, err := Schedule(g, map[string]float64{"A": 0.1, "B": 0.2, "X": 1, "C": 0.3, "Y": 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	x, _ := result.Entry("X")
	y, _ := result.Entry("Y")
	if x.ES == y.ES {
		t.Fatalf("test needs distinct float start times, both are %v", x.ES)
	}
	if len(result.Waves) != 3 {
		t.Fatalf("expected 3 waves, got %d: %+v", len(result.Waves), result.Waves)
	}
	if !reflect.DeepEqual(result.Waves[2].TaskNames, []string{"X", "Y"}) {
		t.Errorf("expected X and Y in the same wave, got %v", result.Waves[2].TaskNames)
	}
	if result.Waves[2].Start != 0.3 {
		t.Errorf("expected wave start 0.3, got %v", result.Waves[2].Start)
	}
	if x.Wave != 2 || y.Wave != 2 {
		t.Errorf("expected both entries in wave 2, got %d and %d", x.Wave, y.Wave)
	}
}

func TestSchedule_CustomDurationsOverrideTasks(t *testing.T) {
	g := buildTestGraph(t, fixed("A", 1), fixed("B", 1, "A"))

	result, err := Schedule(g, map[string]float64{"A": 10, "B": 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ProjectDuration != 15 {
		t.Errorf("expected project duration 15, got %v", result.ProjectDuration)
	}
}

func TestSchedule_MissingDuration(t *testing.T) {
	g := buildTestGraph(t, fixed("A", 1), fixed("B", 1, "A"))

	_, err := Schedule(g, map[string]float64{"A": 1})
	if !errors.Is(err, ErrMissingDuration) {
		t.Fatalf("expected ErrMissingDuration, got %v", err)
	}
}

func TestSchedule_NilGraph(t *testing.T) {
	if _, err := Schedule(nil, nil); err == nil {
		t.Fatal("expected error for nil graph")
	}
}

func TestSchedule_EmptyGraph(t *testing.T) {
	g := buildTestGraph(t)
	result, err := Analyze(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ProjectDuration != 0 || len(result.Entries) != 0 {
		t.Errorf("expected empty report, got %+v", result)
	}
}

func TestAssemble_DerivesSlackAndCriticality(t *testing.T) {
	g := buildTestGraph(t, fixed("A", 2), fixed("B", 1))
	report := Assemble(g,
		map[string]float64{"A": 0, "B": 0},
		map[string]float64{"A": 2, "B": 1},
		map[string]float64{"A": 0, "B": 1},
		map[string]float64{"A": 2, "B": 2},
	)

	if report.ProjectDuration != 2 {
		t.Errorf("expected project duration 2, got %v", report.ProjectDuration)
	}
	assertEntry(t, report, "B", 0, 1, 1, 2, 1, false)
	if !report.IsCritical("A") || report.IsCritical("B") {
		t.Errorf("expected only A critical, got %v", report.CriticalPath)
	}
}

func assertEntry(t *testing.T, r *Report, name string, es, ef, ls, lf, slack float64, critical bool) {
	t.Helper()
	e, ok := r.Entry(name)
	if !ok {
		t.Fatalf("no entry for task %s", name)
	}
	if e.ES != es {
		t.Errorf("task %s: expected ES=%v, got %v", name, es, e.ES)
	}
	if e.EF != ef {
		t.Errorf("task %s: expected EF=%v, got %v", name, ef, e.EF)
	}
	if e.LS != ls {
		t.Errorf("task %s: expected LS=%v, got %v", name, ls, e.LS)
	}
	if e.LF != lf {
		t.Errorf("task %s: expected LF=%v, got %v", name, lf, e.LF)
	}
	if e.Slack != slack {
		t.Errorf("task %s: expected slack=%v, got %v", name, slack, e.Slack)
	}
	if e.Critical != critical {
		t.Errorf("task %s: expected critical=%v, got %v", name, critical, e.Critical)
	}
}
