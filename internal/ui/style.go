package ui

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
)

// Sprint color functions for building styled strings.
var (
	Bold        = color.New(color.Bold).SprintFunc()
	Dim         = color.New(color.Faint).SprintFunc()
	Cyan        = color.New(color.FgCyan).SprintFunc()
	Green       = color.New(color.FgGreen).SprintFunc()
	Red         = color.New(color.FgRed).SprintFunc()
	Yellow      = color.New(color.FgYellow).SprintFunc()
	Magenta     = color.New(color.FgMagenta).SprintFunc()
	BoldCyan    = color.New(color.Bold, color.FgCyan).SprintFunc()
	BoldGreen   = color.New(color.Bold, color.FgGreen).SprintFunc()
	BoldRed     = color.New(color.Bold, color.FgRed).SprintFunc()
	BoldYellow  = color.New(color.Bold, color.FgYellow).SprintFunc()
	BoldMagenta = color.New(color.Bold, color.FgMagenta).SprintFunc()
	BoldWhite   = color.New(color.Bold, color.FgWhite).SprintFunc()
)

// DisableColor turns off ANSI styling for every helper in this package.
func DisableColor() {
	color.NoColor = true
}

// PrintLogo renders the colored critpath banner to w.
func PrintLogo(w io.Writer) {
	frame := color.New(color.FgCyan)
	path := color.New(color.FgYellow)
	brand := color.New(color.Bold, color.FgMagenta)
	tag := color.New(color.Faint)

	fmt.Fprintln(w)
	frame.Fprintln(w, "   +------------------------------+")
	path.Fprintln(w, "   |  o---o---o-------o---o---o   |")
	brand.Fprintln(w, "   |   C R I T I C A L  P A T H   |")
	path.Fprintln(w, "   |      `---o---o---'           |")
	frame.Fprintln(w, "   +------------------------------+")
	tag.Fprintf(w, "   %s PERT estimates, CPM schedules\n", Dim("⏱"))
	fmt.Fprintln(w)
}

// Num formats a schedule time for display: up to two decimals, trailing
// zeros trimmed. Presentation rounding only; stored values keep full
// precision.
func Num(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	for len(s) > 0 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if len(s) > 0 && s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	if s == "-0" {
		s = "0"
	}
	return s
}

// CriticalMarker returns the marker shown next to critical tasks.
func CriticalMarker(critical bool) string {
	if critical {
		return BoldYellow("⚡")
	}
	return " "
}

// SlackIcon returns a colored icon summarising a task's slack.
func SlackIcon(slack float64, critical bool) string {
	switch {
	case critical:
		return Red("●")
	case slack < 1:
		return Yellow("◐")
	default:
		return Green("○")
	}
}
