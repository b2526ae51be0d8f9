package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshharrison/critpath/internal/config"
	"github.com/joshharrison/critpath/internal/planner"
	"github.com/joshharrison/critpath/internal/taskfile"
	"github.com/joshharrison/critpath/internal/ui"
)

var (
	flagJSON    bool
	flagNoColor bool

	cfg *config.Config
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "critpath",
		Short: "Schedule projects with PERT estimates and the critical path method",
		Long: `critpath reads a project's tasks with optimistic, most likely and pessimistic
estimates, derives PERT expected durations, and computes a critical path
schedule: earliest and latest start and finish, slack, and total duration.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if flagNoColor {
				ui.DisableColor()
			}
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Machine-readable JSON output")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(estimateCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(scheduleCmd())
	rootCmd.AddCommand(graphCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(browseCmd())
	rootCmd.AddCommand(inferDepsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadPlan is shared by every command that schedules a task file.
func loadPlan(path string, deadline float64) (*taskfile.File, *planner.Plan, error) {
	f, err := taskfile.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if len(f.Tasks) == 0 {
		return nil, nil, fmt.Errorf("%s: no tasks found", path)
	}

	title := f.Project
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	plan, err := planner.Generate(title, f.Tasks, planner.Config{Deadline: deadline})
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, plan, nil
}

// --- Output helpers ---

func outputJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// openOutput returns stdout, or a created file when path is set.
func openOutput(path string) (io.Writer, func() error, error) {
	if path == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return f, f.Close, nil
}
