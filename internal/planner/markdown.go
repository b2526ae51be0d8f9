package planner

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/joshharrison/critpath/internal/ui"
)

const defaultMarkdownTemplate = `# {{.Title}}

Plan ` + "`{{.ID}}`" + `, generated {{.CreatedAt.Format "2006-01-02 15:04"}}

- **Project duration:** {{num .Report.ProjectDuration}}
- **Critical path:** {{join .Report.CriticalPath " → "}}
- **Critical path std-dev:** {{num .CriticalStdDev}}
{{- if .Deadline}}
- **Chance to finish by {{num .Deadline.Deadline}}:** {{percent .Deadline.Probability}}
{{- end}}

| Task | Duration | ES | EF | LS | LF | Slack | Critical |
|------|---------:|---:|---:|---:|---:|------:|:--------:|
{{- range .Report.Entries}}
| {{.TaskName}} | {{num .Duration}} | {{num .ES}} | {{num .EF}} | {{num .LS}} | {{num .LF}} | {{num .Slack}} | {{if .Critical}}⚡{{end}} |
{{- end}}
`

var templateFuncs = template.FuncMap{
	"num":     ui.Num,
	"join":    strings.Join,
	"percent": percent,
}

func percent(p float64) string {
	return fmt.Sprintf("%.1f%%", p*100)
}

// RenderMarkdown renders plan using either a custom template file or the
// default Markdown report. Templates may use the num, join and percent
// helpers.
func RenderMarkdown(plan *Plan, templatePath string) (string, error) {
	tmplStr := defaultMarkdownTemplate
	if templatePath != "" {
		content, err := os.ReadFile(templatePath)
		if err != nil {
			return "", fmt.Errorf("read template: %w", err)
		}
		tmplStr = string(content)
	}

	tmpl, err := template.New("report").Funcs(templateFuncs).Parse(tmplStr)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, plan); err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return buf.String(), nil
}
