package layout

import (
	"fmt"
	"io"
	"strings"

	"github.com/joshharrison/critpath/internal/cpm"
	"github.com/joshharrison/critpath/internal/graph"
	"github.com/joshharrison/critpath/internal/ui"
)

// WriteDOT writes g as a Graphviz digraph. Critical tasks and the edges
// between them are drawn in red.
func WriteDOT(w io.Writer, g *graph.Graph, report *cpm.Report) error {
	view := FromGraph(g, report)

	if _, err := fmt.Fprintln(w, "digraph critpath {"); err != nil {
		return err
	}
	fmt.Fprintln(w, "  rankdir=LR;")
	fmt.Fprintln(w, "  node [shape=box, style=rounded];")
	fmt.Fprintln(w)

	for _, n := range view.Nodes {
		lines := []string{dotEscape(n.Label), "d=" + ui.Num(n.Duration)}
		if report != nil {
			lines = append(lines,
				fmt.Sprintf("ES %s  EF %s", ui.Num(n.ES), ui.Num(n.EF)),
				fmt.Sprintf("LS %s  LF %s", ui.Num(n.LS), ui.Num(n.LF)))
		}
		// \n is Graphviz's centred line break inside a quoted label.
		attrs := `label="` + strings.Join(lines, `\n`) + `"`
		if n.Critical {
			attrs += `, style="rounded,bold", color=red`
		}
		fmt.Fprintf(w, "  \"%s\" [%s];\n", dotEscape(n.ID), attrs)
	}

	fmt.Fprintln(w)

	for _, e := range view.Edges {
		style := ""
		if e.Critical {
			style = ` [color=red, penwidth=2]`
		}
		fmt.Fprintf(w, "  \"%s\" -> \"%s\"%s;\n", dotEscape(e.From), dotEscape(e.To), style)
	}

	_, err := fmt.Fprintln(w, "}")
	return err
}

// dotEscape quotes s for use inside a double-quoted DOT ID. Only the
// backslash and the double quote are special there.
func dotEscape(s string) string {
	return dotReplacer.Replace(s)
}

var dotReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// WriteASCII prints the graph wave by wave with each task's outgoing edges.
func WriteASCII(w io.Writer, g *graph.Graph, report *cpm.Report) {
	fmt.Fprintf(w, "🔗 %s\n", ui.BoldCyan("Task Dependency Graph"))
	fmt.Fprintln(w, ui.Cyan("═══════════════════════"))
	fmt.Fprintln(w)

	for _, wave := range report.Waves {
		fmt.Fprintf(w, "%s ⏱  t=%s %s\n", ui.Cyan("──"), ui.Num(wave.Start), ui.Cyan("──────────────────────────────"))
		for _, name := range wave.TaskNames {
			e, _ := report.Entry(name)
			fmt.Fprintf(w, "  %s [%s] d=%s slack=%s\n",
				ui.CriticalMarker(e.Critical), ui.BoldMagenta(name), ui.Num(e.Duration), ui.Num(e.Slack))

			for _, succ := range g.Successors(name) {
				fmt.Fprintf(w, "      %s %s\n", ui.Dim("└──→"), ui.Magenta(succ))
			}
		}
		fmt.Fprintln(w)
	}
}
