// Package taskfile reads and writes project task lists.
//
// Three encodings are accepted, chosen by file extension: YAML (.yaml,
// .yml), JSON (.json) and CSV (.csv). Every record passes the same
// validation before it becomes a task.Task, so the scheduling core only
// ever sees well-formed estimates.
package taskfile

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/joshharrison/critpath/internal/task"
)

// Format identifies a task file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// File is a loaded project: an optional title and its tasks in file order.
type File struct {
	Project string
	Tasks   []task.Task
}

// rawRecord is a record as decoded, before validation. Nil estimates were
// absent from the input.
type rawRecord struct {
	name         string
	optimistic   *float64
	mostLikely   *float64
	pessimistic  *float64
	predecessors []string
}

// FormatFromPath picks the encoding from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported task file extension %q (want .yaml, .yml, .json or .csv)", filepath.Ext(path))
	}
}

// Load reads and validates the task file at path.
func Load(path string) (*File, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read task file: %w", err)
	}
	f, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes data in the given format and validates every record.
func Parse(data []byte, format Format) (*File, error) {
	var (
		project string
		records []rawRecord
		err     error
	)
	switch format {
	case FormatYAML:
		project, records, err = decodeYAML(data)
	case FormatJSON:
		project, records, err = decodeJSON(data)
	case FormatCSV:
		records, err = decodeCSV(data)
	default:
		return nil, fmt.Errorf("unsupported task file format %q", format)
	}
	if err != nil {
		return nil, err
	}

	tasks, err := fromRecords(records)
	if err != nil {
		return nil, err
	}
	return &File{Project: project, Tasks: tasks}, nil
}

// fromRecords validates decoded records and builds tasks from them.
func fromRecords(records []rawRecord) ([]task.Task, error) {
	tasks := make([]task.Task, 0, len(records))
	for i, rec := range records {
		t, err := validate(i+1, rec)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// Input is a task record as submitted over the HTTP API. A nil estimate was
// omitted by the client and is rejected as required, the same as in files.
type Input struct {
	Name         string   `json:"name"`
	Optimistic   *float64 `json:"optimistic"`
	MostLikely   *float64 `json:"most_likely"`
	Pessimistic  *float64 `json:"pessimistic"`
	Predecessors []string `json:"predecessors,omitempty"`
}

// NewInput builds an Input with all three estimates present.
func NewInput(name string, optimistic, mostLikely, pessimistic float64, predecessors ...string) Input {
	return Input{
		Name:         name,
		Optimistic:   &optimistic,
		MostLikely:   &mostLikely,
		Pessimistic:  &pessimistic,
		Predecessors: predecessors,
	}
}

// InputFrom converts a task back to its submitted form.
func InputFrom(t task.Task) Input {
	return NewInput(t.Name(), t.Optimistic(), t.MostLikely(), t.Pessimistic(), t.Predecessors()...)
}

// Validate checks task records received over the HTTP API and converts them
// to tasks.
func Validate(inputs []Input) ([]task.Task, error) {
	raw := make([]rawRecord, len(inputs))
	for i, in := range inputs {
		raw[i] = rawRecord{
			name:         in.Name,
			optimistic:   in.Optimistic,
			mostLikely:   in.MostLikely,
			pessimistic:  in.Pessimistic,
			predecessors: in.Predecessors,
		}
	}
	return fromRecords(raw)
}

func validate(index int, rec rawRecord) (task.Task, error) {
	name := strings.TrimSpace(rec.name)
	fail := func(field, reason string) error {
		return &RecordError{Index: index, Name: name, Field: field, Reason: reason}
	}

	if name == "" {
		return task.Task{}, fail("name", "must not be empty")
	}

	fields := []struct {
		name  string
		value *float64
	}{
		{"optimistic", rec.optimistic},
		{"most_likely", rec.mostLikely},
		{"pessimistic", rec.pessimistic},
	}
	for _, f := range fields {
		switch {
		case f.value == nil:
			return task.Task{}, fail(f.name, "is required")
		case math.IsNaN(*f.value) || math.IsInf(*f.value, 0):
			return task.Task{}, fail(f.name, "must be a finite number")
		case *f.value < 0:
			return task.Task{}, fail(f.name, "must not be negative")
		}
	}

	o, m, p := *rec.optimistic, *rec.mostLikely, *rec.pessimistic
	if o > m {
		return task.Task{}, fail("optimistic", "must not exceed most_likely")
	}
	if m > p {
		return task.Task{}, fail("most_likely", "must not exceed pessimistic")
	}

	return task.New(name, o, m, p, cleanNames(rec.predecessors)...), nil
}

// cleanNames trims each name and drops blanks.
func cleanNames(names []string) []string {
	var out []string
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// splitNames splits a delimited predecessor list. Both ',' and ';' separate
// names.
func splitNames(s string) []string {
	return cleanNames(strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';'
	}))
}

type yamlDocument struct {
	Project string        `yaml:"project,omitempty"`
	Tasks   []task.Record `yaml:"tasks"`
}

// Write encodes f as YAML. Predecessors are written in list form.
func Write(w io.Writer, f *File) error {
	doc := yamlDocument{Project: f.Project, Tasks: make([]task.Record, len(f.Tasks))}
	for i, t := range f.Tasks {
		doc.Tasks[i] = t.Record()
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// WriteFile writes f as YAML to path.
func WriteFile(path string, f *File) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(out, f); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
