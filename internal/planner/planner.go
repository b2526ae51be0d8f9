package planner

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joshharrison/critpath/internal/cpm"
	"github.com/joshharrison/critpath/internal/graph"
	"github.com/joshharrison/critpath/internal/task"
)

const defaultTitle = "Untitled project"

var now = time.Now

// Generate validates the dependency graph of tasks, schedules it and
// returns the resulting Plan. Graph errors are returned unwrapped so
// callers can match them with errors.As.
func Generate(title string, tasks []task.Task, config Config) (*Plan, error) {
	g, err := graph.Build(tasks)
	if err != nil {
		return nil, err
	}

	report, err := cpm.Analyze(g)
	if err != nil {
		return nil, fmt.Errorf("schedule: %w", err)
	}

	if strings.TrimSpace(title) == "" {
		title = defaultTitle
	}

	plan := &Plan{
		ID:         uuid.New().String(),
		Title:      title,
		CreatedAt:  now(),
		TotalTasks: g.Len(),
		TotalWaves: len(report.Waves),
		Tasks:      make([]task.Record, 0, g.Len()),
		Deps: TaskDeps{
			Predecessors: make(map[string][]string, g.Len()),
			Successors:   make(map[string][]string, g.Len()),
		},
		Report: report,
		graph:  g,
	}

	for _, t := range g.Tasks() {
		plan.Tasks = append(plan.Tasks, t.Record())
		plan.Deps.Predecessors[t.Name()] = nonNil(g.Predecessors(t.Name()))
		plan.Deps.Successors[t.Name()] = nonNil(g.Successors(t.Name()))
		if report.IsCritical(t.Name()) {
			plan.CriticalVariance += t.Variance()
		}
	}
	plan.CriticalStdDev = math.Sqrt(plan.CriticalVariance)

	if config.Deadline > 0 {
		plan.Deadline = &DeadlineOdds{
			Deadline:    config.Deadline,
			Probability: completionProbability(config.Deadline, report.ProjectDuration, plan.CriticalStdDev),
		}
	}

	return plan, nil
}

// completionProbability returns P(T <= deadline) for T ~ N(mean, stddev²).
// A zero stddev makes the outcome certain either way.
func completionProbability(deadline, mean, stddev float64) float64 {
	if stddev == 0 {
		if deadline >= mean {
			return 1
		}
		return 0
	}
	z := (deadline - mean) / stddev
	return 0.5 * (1 + math.Erf(z/math.Sqrt2))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
