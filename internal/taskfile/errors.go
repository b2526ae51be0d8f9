package taskfile

import (
	"errors"
	"fmt"
)

// ErrInvalidRecord is wrapped by every RecordError.
var ErrInvalidRecord = errors.New("invalid task record")

// RecordError reports a task record rejected at load time. Index is the
// 1-based position of the record in the file.
type RecordError struct {
	Index  int
	Name   string
	Field  string
	Reason string
}

func (e *RecordError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("record %d: %s: %s", e.Index, e.Field, e.Reason)
	}
	return fmt.Sprintf("record %d (%q): %s: %s", e.Index, e.Name, e.Field, e.Reason)
}

func (e *RecordError) Unwrap() error { return ErrInvalidRecord }
