package claude

import (
	"github.com/joshharrison/critpath/internal/graph"
	"github.com/joshharrison/critpath/internal/task"
)

// SkippedEdge is a proposed edge that was not accepted.
type SkippedEdge struct {
	Edge   DepEdge `json:"edge"`
	Reason string  `json:"reason"`
}

// Summaries converts tasks to the form sent to Claude.
func Summaries(tasks []task.Task) []TaskSummary {
	out := make([]TaskSummary, len(tasks))
	for i, t := range tasks {
		out[i] = TaskSummary{
			Name:         t.Name(),
			Expected:     t.Expected(),
			Predecessors: t.Predecessors(),
		}
	}
	return out
}

// Filter checks proposed edges against tasks in order. Edges naming
// unknown tasks, self-dependencies, duplicates of declared dependencies and
// edges that would close a cycle are skipped. Accepted edges accumulate, so
// each later edge is checked against the earlier ones too.
func Filter(tasks []task.Task, edges []DepEdge) (accepted []DepEdge, skipped []SkippedEdge) {
	known := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		known[t.Name()] = true
	}

	current := tasks
	for _, e := range edges {
		var reason string
		switch {
		case !known[e.Task]:
			reason = "unknown task " + e.Task
		case !known[e.Predecessor]:
			reason = "unknown predecessor " + e.Predecessor
		case e.Task == e.Predecessor:
			reason = "self-dependency"
		case hasPredecessor(current, e.Task, e.Predecessor):
			reason = "already declared"
		}
		if reason != "" {
			skipped = append(skipped, SkippedEdge{Edge: e, Reason: reason})
			continue
		}

		next := Apply(current, []DepEdge{e})
		if _, err := graph.Build(next); err != nil {
			skipped = append(skipped, SkippedEdge{Edge: e, Reason: err.Error()})
			continue
		}
		current = next
		accepted = append(accepted, e)
	}
	return accepted, skipped
}

// Apply returns a copy of tasks with each edge's predecessor appended to
// its task. Tasks and edges are not validated.
func Apply(tasks []task.Task, edges []DepEdge) []task.Task {
	extra := make(map[string][]string)
	for _, e := range edges {
		extra[e.Task] = append(extra[e.Task], e.Predecessor)
	}

	out := make([]task.Task, len(tasks))
	for i, t := range tasks {
		add, ok := extra[t.Name()]
		if !ok {
			out[i] = t
			continue
		}
		preds := append(t.Predecessors(), add...)
		out[i] = task.New(t.Name(), t.Optimistic(), t.MostLikely(), t.Pessimistic(), preds...)
	}
	return out
}

func hasPredecessor(tasks []task.Task, name, pred string) bool {
	for _, t := range tasks {
		if t.Name() != name {
			continue
		}
		for _, p := range t.Predecessors() {
			if p == pred {
				return true
			}
		}
	}
	return false
}
