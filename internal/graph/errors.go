package graph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidGraph     = errors.New("invalid task graph")
	ErrDuplicateTask    = fmt.Errorf("%w: duplicate task name", ErrInvalidGraph)
	ErrInvalidReference = fmt.Errorf("%w: unknown predecessor", ErrInvalidGraph)
	ErrCycle            = fmt.Errorf("%w: dependency cycle", ErrInvalidGraph)
)

// DuplicateTaskNameError reports two tasks sharing a name.
type DuplicateTaskNameError struct {
	Name string
}

func (e *DuplicateTaskNameError) Error() string {
	return fmt.Sprintf("duplicate task name %q", e.Name)
}

func (e *DuplicateTaskNameError) Unwrap() error { return ErrDuplicateTask }

// InvalidReferenceError reports a predecessor that names no known task.
type InvalidReferenceError struct {
	Task      string
	Reference string
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("task %q depends on unknown task %q", e.Task, e.Reference)
}

func (e *InvalidReferenceError) Unwrap() error { return ErrInvalidReference }

// CycleError reports a dependency cycle. Members lists the cycle in edge
// order with the first task repeated at the end, e.g. [a b a].
type CycleError struct {
	Members []string
}

func (e *CycleError) Error() string {
	if len(e.Members) == 0 {
		return "dependency cycle detected"
	}
	return "dependency cycle detected: " + strings.Join(e.Members, " -> ")
}

func (e *CycleError) Unwrap() error { return ErrCycle }
