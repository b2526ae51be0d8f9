package planner

import (
	"time"

	"github.com/joshharrison/critpath/internal/cpm"
	"github.com/joshharrison/critpath/internal/graph"
	"github.com/joshharrison/critpath/internal/task"
)

// TaskDeps holds per-task predecessor and successor lists.
type TaskDeps struct {
	Predecessors map[string][]string `json:"predecessors"`
	Successors   map[string][]string `json:"successors"`
}

// Plan is a scheduled project: the validated tasks, their dependency
// structure and the critical path report.
type Plan struct {
	ID               string        `json:"id"`
	Title            string        `json:"title"`
	CreatedAt        time.Time     `json:"created_at"`
	TotalTasks       int           `json:"total_tasks"`
	TotalWaves       int           `json:"total_waves"`
	Tasks            []task.Record `json:"tasks"`
	Deps             TaskDeps      `json:"deps"`
	Report           *cpm.Report   `json:"report"`
	CriticalVariance float64       `json:"critical_variance"`
	CriticalStdDev   float64       `json:"critical_std_dev"`
	Deadline         *DeadlineOdds `json:"deadline,omitempty"`

	graph *graph.Graph
}

// Graph returns the dependency graph the plan was scheduled from.
func (p *Plan) Graph() *graph.Graph { return p.graph }

// DeadlineOdds is the normal-approximation probability of finishing the
// project by Deadline.
type DeadlineOdds struct {
	Deadline    float64 `json:"deadline"`
	Probability float64 `json:"probability"`
}

// Config controls plan generation.
type Config struct {
	// Deadline, when positive, adds a completion probability to the plan.
	Deadline float64
}
