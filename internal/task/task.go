package task

import "math"

// Estimate returns the PERT expected duration for a three-point estimate.
// Inputs are assumed to be valid non-negative numbers.
func Estimate(optimistic, mostLikely, pessimistic float64) float64 {
	return (optimistic + 4*mostLikely + pessimistic) / 6
}

// StdDev returns the PERT standard deviation (P - O) / 6.
func StdDev(optimistic, pessimistic float64) float64 {
	return math.Abs(pessimistic-optimistic) / 6
}

// Task is one activity of a project. It is immutable once built by New.
type Task struct {
	name         string
	optimistic   float64
	mostLikely   float64
	pessimistic  float64
	expected     float64
	predecessors []string
}

// New builds a Task and derives its expected duration.
// The predecessor slice is copied.
func New(name string, optimistic, mostLikely, pessimistic float64, predecessors ...string) Task {
	var preds []string
	if len(predecessors) > 0 {
		preds = make([]string, len(predecessors))
		copy(preds, predecessors)
	}
	return Task{
		name:         name,
		optimistic:   optimistic,
		mostLikely:   mostLikely,
		pessimistic:  pessimistic,
		expected:     Estimate(optimistic, mostLikely, pessimistic),
		predecessors: preds,
	}
}

func (t Task) Name() string          { return t.name }
func (t Task) Optimistic() float64   { return t.optimistic }
func (t Task) MostLikely() float64   { return t.mostLikely }
func (t Task) Pessimistic() float64  { return t.pessimistic }
func (t Task) Expected() float64     { return t.expected }
func (t Task) StdDev() float64       { return StdDev(t.optimistic, t.pessimistic) }
func (t Task) Variance() float64     { s := t.StdDev(); return s * s }
func (t Task) HasPredecessors() bool { return len(t.predecessors) > 0 }

// Predecessors returns a copy of the predecessor names in declared order.
func (t Task) Predecessors() []string {
	if len(t.predecessors) == 0 {
		return nil
	}
	out := make([]string, len(t.predecessors))
	copy(out, t.predecessors)
	return out
}

// Record is the serialisable form of a Task, used when writing task files
// and in plan output.
type Record struct {
	Name         string   `json:"name" yaml:"name"`
	Optimistic   float64  `json:"optimistic" yaml:"optimistic"`
	MostLikely   float64  `json:"most_likely" yaml:"most_likely"`
	Pessimistic  float64  `json:"pessimistic" yaml:"pessimistic"`
	Expected     float64  `json:"expected_duration" yaml:"-"`
	Predecessors []string `json:"predecessors" yaml:"predecessors,omitempty"`
}

// Record converts the task to its serialisable form.
func (t Task) Record() Record {
	preds := t.Predecessors()
	if preds == nil {
		preds = []string{}
	}
	return Record{
		Name:         t.name,
		Optimistic:   t.optimistic,
		MostLikely:   t.mostLikely,
		Pessimistic:  t.pessimistic,
		Expected:     t.expected,
		Predecessors: preds,
	}
}

// Durations maps each task name to its expected duration.
func Durations(tasks []Task) map[string]float64 {
	out := make(map[string]float64, len(tasks))
	for _, t := range tasks {
		out[t.name] = t.expected
	}
	return out
}
