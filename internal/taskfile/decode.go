package taskfile

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// nameList accepts either a YAML sequence of names or a single
// comma-separated string.
type nameList []string

func (l *nameList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			*l = nil
			return nil
		}
		*l = splitNames(value.Value)
		return nil
	case yaml.SequenceNode:
		var names []string
		if err := value.Decode(&names); err != nil {
			return err
		}
		*l = names
		return nil
	default:
		return fmt.Errorf("line %d: predecessors must be a list or a comma-separated string", value.Line)
	}
}

type yamlRecord struct {
	Name         string   `yaml:"name"`
	Optimistic   *float64 `yaml:"optimistic"`
	MostLikely   *float64 `yaml:"most_likely"`
	Pessimistic  *float64 `yaml:"pessimistic"`
	Predecessors nameList `yaml:"predecessors"`
}

type yamlInput struct {
	Project string       `yaml:"project"`
	Tasks   []yamlRecord `yaml:"tasks"`
}

func decodeYAML(data []byte) (string, []rawRecord, error) {
	var in yamlInput
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&in); err != nil {
		if errors.Is(err, io.EOF) {
			return "", nil, nil
		}
		return "", nil, fmt.Errorf("parse yaml: %w", err)
	}

	records := make([]rawRecord, len(in.Tasks))
	for i, r := range in.Tasks {
		records[i] = rawRecord{
			name:         r.Name,
			optimistic:   r.Optimistic,
			mostLikely:   r.MostLikely,
			pessimistic:  r.Pessimistic,
			predecessors: r.Predecessors,
		}
	}
	return in.Project, records, nil
}

// decodeJSON accepts either {"project": ..., "tasks": [...]} or a bare
// array of task objects.
func decodeJSON(data []byte) (string, []rawRecord, error) {
	if !gjson.ValidBytes(data) {
		return "", nil, errors.New("parse json: malformed document")
	}

	root := gjson.ParseBytes(data)
	list := root
	project := ""
	if root.IsObject() {
		project = root.Get("project").String()
		list = root.Get("tasks")
	}
	if !list.IsArray() {
		return "", nil, errors.New("parse json: tasks must be an array")
	}

	var (
		records []rawRecord
		err     error
	)
	list.ForEach(func(_, item gjson.Result) bool {
		var rec rawRecord
		rec, err = jsonRecord(len(records)+1, item)
		if err != nil {
			return false
		}
		records = append(records, rec)
		return true
	})
	if err != nil {
		return "", nil, err
	}
	return project, records, nil
}

func jsonRecord(index int, item gjson.Result) (rawRecord, error) {
	if !item.IsObject() {
		return rawRecord{}, &RecordError{Index: index, Field: "record", Reason: "must be an object"}
	}

	var rec rawRecord
	name := item.Get("name")
	if name.Exists() && name.Type != gjson.String {
		return rawRecord{}, &RecordError{Index: index, Field: "name", Reason: "must be a string"}
	}
	rec.name = name.Str

	fail := func(field, reason string) error {
		return &RecordError{Index: index, Name: strings.TrimSpace(rec.name), Field: field, Reason: reason}
	}

	number := func(field string) (*float64, error) {
		r := item.Get(field)
		switch r.Type {
		case gjson.Null:
			return nil, nil
		case gjson.Number:
			v := r.Num
			return &v, nil
		case gjson.String:
			v, err := strconv.ParseFloat(strings.TrimSpace(r.Str), 64)
			if err != nil {
				return nil, fail(field, "must be a number")
			}
			return &v, nil
		default:
			return nil, fail(field, "must be a number")
		}
	}

	var err error
	if rec.optimistic, err = number("optimistic"); err != nil {
		return rawRecord{}, err
	}
	if rec.mostLikely, err = number("most_likely"); err != nil {
		return rawRecord{}, err
	}
	if rec.pessimistic, err = number("pessimistic"); err != nil {
		return rawRecord{}, err
	}

	preds := item.Get("predecessors")
	switch {
	case preds.IsArray():
		for _, p := range preds.Array() {
			if p.Type != gjson.String {
				return rawRecord{}, fail("predecessors", "must contain only task names")
			}
			rec.predecessors = append(rec.predecessors, p.Str)
		}
	case preds.Type == gjson.String:
		rec.predecessors = splitNames(preds.Str)
	case preds.Type == gjson.Null:
	default:
		return rawRecord{}, fail("predecessors", "must be a list or a comma-separated string")
	}
	return rec, nil
}

var csvColumns = []string{"name", "optimistic", "most_likely", "pessimistic"}

// decodeCSV reads a header row followed by one task per row. The
// predecessors column is optional; names inside it are separated by ';' or
// ','.
func decodeCSV(data []byte) ([]rawRecord, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
		cols[key] = i
	}
	for _, c := range csvColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("parse csv: header is missing column %q", c)
		}
	}

	var records []rawRecord
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}

		index := len(records) + 1
		get := func(col string) string {
			i, ok := cols[col]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		rec := rawRecord{name: get("name"), predecessors: splitNames(get("predecessors"))}
		for _, f := range []struct {
			col string
			dst **float64
		}{
			{"optimistic", &rec.optimistic},
			{"most_likely", &rec.mostLikely},
			{"pessimistic", &rec.pessimistic},
		} {
			raw := get(f.col)
			if raw == "" {
				continue
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, &RecordError{Index: index, Name: rec.name, Field: f.col, Reason: "must be a number"}
			}
			*f.dst = &v
		}
		records = append(records, rec)
	}
	return records, nil
}
