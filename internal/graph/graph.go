package graph

import (
	"container/heap"
	"fmt"

	"github.com/joshharrison/critpath/internal/task"
)

// Build validates tasks and constructs their dependency graph.
//
// It rejects, in order of detection:
//   - a task with an empty name
//   - two tasks with the same name (DuplicateTaskNameError)
//   - a predecessor that names no task in the set (InvalidReferenceError)
//   - any cycle, including a task listing itself (CycleError)
func Build(tasks []task.Task) (*Graph, error) {
	g := &Graph{
		tasks:  make([]task.Task, len(tasks)),
		index:  make(map[string]int, len(tasks)),
		adj:    make([][]int, len(tasks)),
		revAdj: make([][]int, len(tasks)),
	}
	copy(g.tasks, tasks)

	for i, t := range g.tasks {
		if t.Name() == "" {
			return nil, fmt.Errorf("%w: task %d has no name", ErrInvalidGraph, i+1)
		}
		if _, exists := g.index[t.Name()]; exists {
			return nil, &DuplicateTaskNameError{Name: t.Name()}
		}
		g.index[t.Name()] = i
	}

	// A predecessor listed twice yields a single edge.
	for to, t := range g.tasks {
		seen := make(map[int]bool)
		for _, pred := range t.Predecessors() {
			from, ok := g.index[pred]
			if !ok {
				return nil, &InvalidReferenceError{Task: t.Name(), Reference: pred}
			}
			if seen[from] {
				continue
			}
			seen[from] = true
			g.revAdj[to] = append(g.revAdj[to], from)
		}
	}
	// Successor lists are filled by walking tasks in input order so they
	// come out sorted by input position.
	for to := range g.tasks {
		for _, from := range g.revAdj[to] {
			g.adj[from] = append(g.adj[from], to)
		}
	}

	order := g.topoSort()
	if len(order) != len(g.tasks) {
		return nil, &CycleError{Members: g.detectCycle()}
	}
	g.order = order

	return g, nil
}

// topoSort runs Kahn's algorithm. Among ready tasks the one declared first
// is always taken next, so the order is reproducible.
func (g *Graph) topoSort() []int {
	inDegree := make([]int, len(g.tasks))
	for i := range g.tasks {
		inDegree[i] = len(g.revAdj[i])
	}

	ready := &positionHeap{}
	for i, d := range inDegree {
		if d == 0 {
			heap.Push(ready, i)
		}
	}

	order := make([]int, 0, len(g.tasks))
	for ready.Len() > 0 {
		node := heap.Pop(ready).(int)
		order = append(order, node)
		for _, succ := range g.adj[node] {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				heap.Push(ready, succ)
			}
		}
	}
	return order
}

// detectCycle returns one cycle path, or nil if the graph is acyclic.
// Uses DFS with coloring: white (unvisited), gray (in progress), black (done).
func (g *Graph) detectCycle() []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make([]int, len(g.tasks))
	parent := make([]int, len(g.tasks))

	var dfs func(node int) []int
	dfs = func(node int) []int {
		color[node] = gray
		for _, next := range g.adj[node] {
			if color[next] == gray {
				// Walk parents back from node to next, then reverse.
				cycle := []int{next, node}
				cur := node
				for cur != next {
					cur = parent[cur]
					cycle = append(cycle, cur)
				}
				for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
					cycle[i], cycle[j] = cycle[j], cycle[i]
				}
				return cycle
			}
			if color[next] == white {
				parent[next] = node
				if cycle := dfs(next); cycle != nil {
					return cycle
				}
			}
		}
		color[node] = black
		return nil
	}

	for i := range g.tasks {
		if color[i] != white {
			continue
		}
		if cycle := dfs(i); cycle != nil {
			return g.names(cycle)
		}
	}
	return nil
}

func (g *Graph) names(positions []int) []string {
	out := make([]string, len(positions))
	for i, p := range positions {
		out[i] = g.tasks[p].Name()
	}
	return out
}

// Len returns the number of tasks in the graph.
func (g *Graph) Len() int {
	return len(g.tasks)
}

// Names returns task names in input order.
func (g *Graph) Names() []string {
	out := make([]string, len(g.tasks))
	for i, t := range g.tasks {
		out[i] = t.Name()
	}
	return out
}

// Tasks returns the tasks in input order.
func (g *Graph) Tasks() []task.Task {
	out := make([]task.Task, len(g.tasks))
	copy(out, g.tasks)
	return out
}

// Task looks up a task by name.
func (g *Graph) Task(name string) (task.Task, bool) {
	i, ok := g.index[name]
	if !ok {
		return task.Task{}, false
	}
	return g.tasks[i], true
}

// Has reports whether the graph contains a task with the given name.
func (g *Graph) Has(name string) bool {
	_, ok := g.index[name]
	return ok
}

// Predecessors returns the direct predecessors of a task in declared order.
func (g *Graph) Predecessors(name string) []string {
	i, ok := g.index[name]
	if !ok {
		return nil
	}
	return g.names(g.revAdj[i])
}

// Successors returns the direct successors of a task in input order.
func (g *Graph) Successors(name string) []string {
	i, ok := g.index[name]
	if !ok {
		return nil
	}
	return g.names(g.adj[i])
}

// TopologicalOrder returns every task name such that each task appears
// after all of its predecessors. Ties are broken by input order.
func (g *Graph) TopologicalOrder() []string {
	return g.names(g.order)
}

// Edges returns all dependency edges, grouped by predecessor in input order.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for from, succs := range g.adj {
		for _, to := range succs {
			edges = append(edges, Edge{From: g.tasks[from].Name(), To: g.tasks[to].Name()})
		}
	}
	return edges
}

// Roots returns tasks with no predecessors, in input order.
func (g *Graph) Roots() []string {
	var roots []string
	for i, t := range g.tasks {
		if len(g.revAdj[i]) == 0 {
			roots = append(roots, t.Name())
		}
	}
	return roots
}

// Leaves returns tasks with no successors, in input order.
func (g *Graph) Leaves() []string {
	var leaves []string
	for i, t := range g.tasks {
		if len(g.adj[i]) == 0 {
			leaves = append(leaves, t.Name())
		}
	}
	return leaves
}

// Depths returns, per task, the number of edges on the longest path from
// any root to that task.
func (g *Graph) Depths() map[string]int {
	depth := make([]int, len(g.tasks))
	for _, u := range g.order {
		for _, p := range g.revAdj[u] {
			if depth[p]+1 > depth[u] {
				depth[u] = depth[p] + 1
			}
		}
	}
	out := make(map[string]int, len(g.tasks))
	for i, t := range g.tasks {
		out[t.Name()] = depth[i]
	}
	return out
}

// Durations maps each task name to its expected duration.
func (g *Graph) Durations() map[string]float64 {
	return task.Durations(g.tasks)
}

// positionHeap is a min-heap of input positions.
type positionHeap []int

func (h positionHeap) Len() int           { return len(h) }
func (h positionHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h positionHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *positionHeap) Push(x any)        { *h = append(*h, x.(int)) }
func (h *positionHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
