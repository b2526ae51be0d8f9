package graph

import "github.com/joshharrison/critpath/internal/task"

// Edge is a dependency: From must finish before To starts.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Graph is an immutable, validated directed acyclic graph of tasks.
// All name-ordered results follow the original input order.
type Graph struct {
	tasks  []task.Task
	index  map[string]int // task name -> input position
	adj    [][]int        // position -> successor positions
	revAdj [][]int        // position -> predecessor positions
	order  []int          // topological order of positions
}
