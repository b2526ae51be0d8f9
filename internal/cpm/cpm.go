package cpm

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/joshharrison/critpath/internal/graph"
)

// ErrMissingDuration is returned when the duration map has no entry for a
// task of the graph. It signals a caller bug, not invalid user input.
var ErrMissingDuration = errors.New("no duration for task")

// criticalTolerance bounds the rounding noise accepted when deciding
// whether a slack value is zero. Stored slack values are never rounded.
const criticalTolerance = 1e-9

// Analyze schedules g using each task's own expected duration.
func Analyze(g *graph.Graph) (*Report, error) {
	if g == nil {
		return nil, fmt.Errorf("cpm: nil graph")
	}
	return Schedule(g, g.Durations())
}

// Schedule performs critical path analysis over a validated graph.
// The forward pass walks the topological order, the backward pass walks it
// in reverse, so every task is visited after the tasks it depends on.
func Schedule(g *graph.Graph, durations map[string]float64) (*Report, error) {
	if g == nil {
		return nil, fmt.Errorf("cpm: nil graph")
	}
	order := g.TopologicalOrder()
	for _, name := range order {
		if _, ok := durations[name]; !ok {
			return nil, fmt.Errorf("cpm: %w %q", ErrMissingDuration, name)
		}
	}

	es := make(map[string]float64, len(order))
	ef := make(map[string]float64, len(order))
	ls := make(map[string]float64, len(order))
	lf := make(map[string]float64, len(order))

	// Forward pass: ES = max(EF of predecessors), EF = ES + duration
	for _, name := range order {
		start := 0.0
		for i, pred := range g.Predecessors(name) {
			if i == 0 || ef[pred] > start {
				start = ef[pred]
			}
		}
		es[name] = start
		ef[name] = start + durations[name]
	}

	projectDuration := maxFinish(order, ef)

	// Backward pass: LF = min(LS of successors), LS = LF - duration
	for i := len(order) - 1; i >= 0; i-- {
		name := order[i]
		finish := projectDuration
		for j, succ := range g.Successors(name) {
			if j == 0 || ls[succ] < finish {
				finish = ls[succ]
			}
		}
		lf[name] = finish
		ls[name] = finish - durations[name]
	}

	return Assemble(g, es, ef, ls, lf), nil
}

// Assemble builds a Report from per-task times. Entries follow the graph's
// original input order; each entry's duration is EF - ES.
func Assemble(g *graph.Graph, es, ef, ls, lf map[string]float64) *Report {
	names := g.Names()
	order := g.TopologicalOrder()

	projectDuration := maxFinish(order, ef)
	tolerance := criticalTolerance * math.Max(1, math.Abs(projectDuration))

	report := &Report{
		ProjectDuration: projectDuration,
		Entries:         make([]Entry, 0, len(names)),
		CriticalPath:    []string{},
		TopoOrder:       order,
	}

	byName := make(map[string]int, len(names))
	for _, name := range names {
		slack := ls[name] - es[name]
		byName[name] = len(report.Entries)
		report.Entries = append(report.Entries, Entry{
			TaskName: name,
			Duration: ef[name] - es[name],
			ES:       es[name],
			EF:       ef[name],
			LS:       ls[name],
			LF:       lf[name],
			Slack:    slack,
			Critical: math.Abs(slack) <= tolerance,
		})
	}

	for _, name := range order {
		if report.Entries[byName[name]].Critical {
			report.CriticalPath = append(report.CriticalPath, name)
		}
	}

	report.Waves = computeWaves(report, byName, tolerance)
	return report
}

func maxFinish(order []string, ef map[string]float64) float64 {
	if len(order) == 0 {
		return 0
	}
	longest := ef[order[0]]
	for _, name := range order[1:] {
		if ef[name] > longest {
			longest = ef[name]
		}
	}
	return longest
}

// computeWaves groups tasks by their earliest start time. Start times within
// tolerance of a wave's first start belong to that wave, so sums that differ
// only by rounding land together.
func computeWaves(report *Report, byName map[string]int, tolerance float64) []Wave {
	distinct := make(map[float64]bool)
	for _, e := range report.Entries {
		distinct[e.ES] = true
	}
	sorted := make([]float64, 0, len(distinct))
	for start := range distinct {
		sorted = append(sorted, start)
	}
	sort.Float64s(sorted)

	var starts []float64
	waveOf := make(map[float64]int, len(sorted))
	for _, start := range sorted {
		if len(starts) == 0 || start-starts[len(starts)-1] > tolerance {
			starts = append(starts, start)
		}
		waveOf[start] = len(starts) - 1
	}

	groups := make([][]string, len(starts))
	for _, name := range report.TopoOrder {
		i := waveOf[report.Entries[byName[name]].ES]
		groups[i] = append(groups[i], name)
	}

	waves := make([]Wave, len(starts))
	for i, start := range starts {
		names := groups[i]

		hasCritical := false
		for _, name := range names {
			report.Entries[byName[name]].Wave = i
			if report.Entries[byName[name]].Critical {
				hasCritical = true
			}
		}

		// Critical tasks first within a wave, otherwise topological order.
		sort.SliceStable(names, func(a, b int) bool {
			return report.Entries[byName[names[a]]].Critical && !report.Entries[byName[names[b]]].Critical
		})

		waves[i] = Wave{
			Index:      i,
			Start:      start,
			TaskNames:  names,
			IsCritical: hasCritical,
		}
	}

	return waves
}
