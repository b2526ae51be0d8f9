// Package layout maps a task graph and its schedule onto node/edge lists
// with 2D coordinates for visualisation.
//
// Coordinates come from a layered layout: x is the task's depth (longest
// edge count from a root) and y its position within that layer, following
// topological order. The same graph always yields the same coordinates.
package layout

import (
	"github.com/joshharrison/critpath/internal/cpm"
	"github.com/joshharrison/critpath/internal/graph"
)

type Node struct {
	ID       string  `json:"id"`
	Label    string  `json:"label"`
	Duration float64 `json:"duration"`
	ES       float64 `json:"es"`
	EF       float64 `json:"ef"`
	LS       float64 `json:"ls"`
	LF       float64 `json:"lf"`
	Slack    float64 `json:"slack"`
	Critical bool    `json:"critical"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

type Edge struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Critical bool   `json:"critical"`
}

// View is the normalised graph the presentation layer renders.
type View struct {
	Nodes           []Node   `json:"nodes"`
	Edges           []Edge   `json:"edges"`
	CriticalPath    []string `json:"critical_path"`
	ProjectDuration float64  `json:"project_duration"`
}

// FromGraph builds a View of g annotated with the schedule in report.
// report may be nil, in which case only structure and coordinates are set.
func FromGraph(g *graph.Graph, report *cpm.Report) *View {
	order := g.TopologicalOrder()
	depths := g.Depths()

	layerFill := make(map[int]int)
	position := make(map[string][2]float64, len(order))
	for _, name := range order {
		d := depths[name]
		position[name] = [2]float64{float64(d), float64(layerFill[d])}
		layerFill[d]++
	}

	v := &View{
		Nodes: make([]Node, 0, g.Len()),
		Edges: []Edge{},
	}
	for _, name := range g.Names() {
		n := Node{
			ID:    name,
			Label: name,
			X:     position[name][0],
			Y:     position[name][1],
		}
		if t, ok := g.Task(name); ok {
			n.Duration = t.Expected()
		}
		if report != nil {
			if e, ok := report.Entry(name); ok {
				n.Duration = e.Duration
				n.ES, n.EF, n.LS, n.LF = e.ES, e.EF, e.LS, e.LF
				n.Slack = e.Slack
				n.Critical = e.Critical
			}
		}
		v.Nodes = append(v.Nodes, n)
	}

	for _, e := range g.Edges() {
		v.Edges = append(v.Edges, Edge{
			From:     e.From,
			To:       e.To,
			Critical: report != nil && isCriticalEdge(report, e.From, e.To),
		})
	}

	if report != nil {
		v.CriticalPath = report.CriticalPath
		v.ProjectDuration = report.ProjectDuration
	}
	return v
}

// isCriticalEdge reports whether the edge carries the critical path: both
// ends are critical and the successor starts exactly when the predecessor
// finishes.
func isCriticalEdge(report *cpm.Report, from, to string) bool {
	a, okA := report.Entry(from)
	b, okB := report.Entry(to)
	return okA && okB && a.Critical && b.Critical && a.EF == b.ES
}
