package cpm

// Report holds the complete critical path analysis of one project.
// A Report is never mutated after Schedule or Assemble returns it.
type Report struct {
	ProjectDuration float64  `json:"project_duration"`
	Entries         []Entry  `json:"entries"`       // original input order
	CriticalPath    []string `json:"critical_path"` // critical tasks in topological order
	TopoOrder       []string `json:"topo_order"`
	Waves           []Wave   `json:"waves"` // tasks grouped by earliest start
}

// Entry holds the scheduling info for a single task.
type Entry struct {
	TaskName string  `json:"task_name"`
	Duration float64 `json:"duration"`
	ES       float64 `json:"es"` // earliest start
	EF       float64 `json:"ef"` // earliest finish
	LS       float64 `json:"ls"` // latest start
	LF       float64 `json:"lf"` // latest finish
	Slack    float64 `json:"slack"`
	Critical bool    `json:"critical"`
	Wave     int     `json:"wave"`
}

// Wave is a group of tasks sharing the same earliest start time.
type Wave struct {
	Index      int      `json:"index"`
	Start      float64  `json:"start"`
	TaskNames  []string `json:"task_names"`
	IsCritical bool     `json:"is_critical"` // true if wave contains critical path tasks
}

// Entry returns the entry for the named task.
func (r *Report) Entry(name string) (Entry, bool) {
	for _, e := range r.Entries {
		if e.TaskName == name {
			return e, true
		}
	}
	return Entry{}, false
}

// IsCritical reports whether the named task lies on the critical path.
func (r *Report) IsCritical(name string) bool {
	e, ok := r.Entry(name)
	return ok && e.Critical
}
