package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joshharrison/critpath/internal/browser"
	"github.com/joshharrison/critpath/internal/claude"
	"github.com/joshharrison/critpath/internal/config"
	"github.com/joshharrison/critpath/internal/graph"
	"github.com/joshharrison/critpath/internal/layout"
	"github.com/joshharrison/critpath/internal/planner"
	"github.com/joshharrison/critpath/internal/reporter"
	"github.com/joshharrison/critpath/internal/session"
	"github.com/joshharrison/critpath/internal/taskfile"
	"github.com/joshharrison/critpath/internal/ui"
	"github.com/joshharrison/critpath/internal/viewer"
)

func estimateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "estimate OPTIMISTIC MOST_LIKELY PESSIMISTIC",
		Short: "Print the PERT expected duration of a three-point estimate",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var values [3]float64
			for i, a := range args {
				v, err := strconv.ParseFloat(a, 64)
				if err != nil {
					return fmt.Errorf("argument %d: %q is not a number", i+1, a)
				}
				values[i] = v
			}

			tasks, err := taskfile.Validate([]taskfile.Input{
				taskfile.NewInput("estimate", values[0], values[1], values[2]),
			})
			if err != nil {
				return err
			}
			t := tasks[0]

			if flagJSON {
				return outputJSON(os.Stdout, viewer.EstimateResponse{
					Expected: t.Expected(),
					StdDev:   t.StdDev(),
					Variance: t.Variance(),
				})
			}

			fmt.Printf("⏱  Expected: %s  %s\n", ui.BoldWhite(ui.Num(t.Expected())),
				ui.Dim(fmt.Sprintf("(σ %s)", ui.Num(t.StdDev()))))
			return nil
		},
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a task file for invalid records, unknown references and cycles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := taskfile.Load(args[0])
			if err != nil {
				return err
			}

			g, err := graph.Build(f.Tasks)
			if err != nil {
				if flagJSON {
					outputJSON(os.Stdout, map[string]any{"valid": false, "error": err.Error()})
				} else {
					fmt.Printf("%s %s\n", ui.BoldRed("❌ Invalid:"), err)
					var cycleErr *graph.CycleError
					if errors.As(err, &cycleErr) {
						fmt.Printf("   %s %s\n", ui.Dim("cycle:"), ui.Yellow(strings.Join(cycleErr.Members, " → ")))
					}
				}
				return err
			}

			if flagJSON {
				return outputJSON(os.Stdout, map[string]any{
					"valid":  true,
					"tasks":  g.Len(),
					"edges":  len(g.Edges()),
					"roots":  g.Roots(),
					"leaves": g.Leaves(),
				})
			}

			fmt.Printf("%s %d tasks, %d dependencies\n", ui.BoldGreen("✅ Valid:"), g.Len(), len(g.Edges()))
			fmt.Printf("   %s %s\n", ui.Dim("starts:"), strings.Join(g.Roots(), ", "))
			fmt.Printf("   %s %s\n", ui.Dim("ends:  "), strings.Join(g.Leaves(), ", "))
			return nil
		},
	}
}

func scheduleCmd() *cobra.Command {
	var (
		flagFormat   string
		flagOutput   string
		flagTemplate string
		flagDeadline float64
		flagPublish  string
	)

	cmd := &cobra.Command{
		Use:   "schedule FILE",
		Short: "Compute and print the critical path schedule of a task file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, plan, err := loadPlan(args[0], flagDeadline)
			if err != nil {
				return err
			}

			if flagPublish != "" {
				inputs := make([]taskfile.Input, len(f.Tasks))
				for i, t := range f.Tasks {
					inputs[i] = taskfile.InputFrom(t)
				}
				resp, err := viewer.PostProject(cmd.Context(), flagPublish, viewer.ProjectRequest{
					Project:  plan.Title,
					Tasks:    inputs,
					Deadline: flagDeadline,
				})
				if err != nil {
					return fmt.Errorf("publish: %w", err)
				}
				fmt.Fprintf(os.Stderr, "📡 Published as %s\n", ui.Bold(resp.ID))
			}

			if flagJSON {
				flagFormat = "json"
			}
			template := flagTemplate
			if template == "" {
				template = cfg.TemplatePath
			}

			w, closeOut, err := openOutput(flagOutput)
			if err != nil {
				return err
			}

			rpt := reporter.New(plan)
			switch flagFormat {
			case "table":
				rpt.PrintTable(w)
				fmt.Fprint(w, rpt.Summary())
			case "json":
				err = outputJSON(w, plan)
			case "csv":
				err = rpt.WriteCSV(w)
			case "markdown", "md":
				var md string
				md, err = planner.RenderMarkdown(plan, template)
				if err == nil {
					_, err = fmt.Fprint(w, md)
				}
			default:
				err = fmt.Errorf("unknown format %q (want table, json, csv or markdown)", flagFormat)
			}
			if cerr := closeOut(); err == nil {
				err = cerr
			}
			return err
		},
	}

	cmd.Flags().StringVar(&flagFormat, "format", "table", "Output format (table, json, csv, markdown)")
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Write output to a file instead of stdout")
	cmd.Flags().StringVar(&flagTemplate, "template", "", "Custom Markdown template path")
	cmd.Flags().Float64Var(&flagDeadline, "deadline", 0, "Report the chance of finishing by this time")
	cmd.Flags().StringVar(&flagPublish, "publish", "", "Also submit the project to a running viewer (e.g. http://localhost:7171)")

	return cmd
}

func graphCmd() *cobra.Command {
	var flagFormat string

	cmd := &cobra.Command{
		Use:   "graph FILE",
		Short: "Print the task dependency graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, plan, err := loadPlan(args[0], 0)
			if err != nil {
				return err
			}
			if flagJSON {
				flagFormat = "json"
			}

			switch flagFormat {
			case "ascii":
				layout.WriteASCII(os.Stdout, plan.Graph(), plan.Report)
				return nil
			case "dot":
				return layout.WriteDOT(os.Stdout, plan.Graph(), plan.Report)
			case "json":
				return outputJSON(os.Stdout, layout.FromGraph(plan.Graph(), plan.Report))
			default:
				return fmt.Errorf("unknown format %q (want ascii, dot or json)", flagFormat)
			}
		},
	}

	cmd.Flags().StringVar(&flagFormat, "format", "ascii", "Output format (ascii, dot, json)")

	return cmd
}

func serveCmd() *cobra.Command {
	var (
		flagPort     int
		flagTemplate string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP viewer service",
		Long: `Starts an HTTP API that schedules submitted projects, keeps recent results
in memory and streams each new schedule to websocket subscribers.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			port := cfg.Port
			if flagPort > 0 {
				port = flagPort
			}
			template := flagTemplate
			if template == "" {
				template = cfg.TemplatePath
			}

			store, err := session.New(cfg.SessionSize)
			if err != nil {
				return err
			}
			srv := viewer.New(store, template)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ui.PrintLogo(os.Stdout)
			fmt.Printf("🌐 Viewer listening on %s\n", ui.Bold(fmt.Sprintf("http://localhost:%d", port)))
			return viewer.ListenAndServe(ctx, fmt.Sprintf(":%d", port), srv.Routes())
		},
	}

	cmd.Flags().IntVar(&flagPort, "port", 0, fmt.Sprintf("Port to listen on (default %d or CRITPATH_PORT)", config.DefaultPort))
	cmd.Flags().StringVar(&flagTemplate, "template", "", "Custom Markdown template path")

	return cmd
}

func browseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse FILE",
		Short: "Explore a schedule interactively in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, plan, err := loadPlan(args[0], 0)
			if err != nil {
				return err
			}
			return browser.Run(plan)
		},
	}
}

func inferDepsCmd() *cobra.Command {
	var (
		flagApply    bool
		flagModel    string
		flagOutput   string
		flagFromFile string
	)

	cmd := &cobra.Command{
		Use:   "infer-deps FILE",
		Short: "Use Claude to propose missing task dependencies",
		Long: `Sends task names and expected durations to Claude and asks for missing
dependencies. Proposals naming unknown tasks, repeating declared
dependencies or closing a cycle are skipped. By default runs in dry-run
mode; use --apply to write the merged task list as YAML.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			f, err := taskfile.Load(path)
			if err != nil {
				return err
			}
			if len(f.Tasks) == 0 {
				return fmt.Errorf("%s: no tasks found", path)
			}
			if _, err := graph.Build(f.Tasks); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			// Progress lines go to stderr in --json mode so stdout stays a
			// single JSON document.
			out := cmd.OutOrStdout()
			status := out
			if flagJSON {
				status = cmd.ErrOrStderr()
			}

			var result *claude.InferDepsResult
			if flagFromFile != "" {
				data, err := os.ReadFile(flagFromFile)
				if err != nil {
					return fmt.Errorf("read from-file: %w", err)
				}
				if result, err = claude.ParseResult(string(data)); err != nil {
					return err
				}
				fmt.Fprintf(status, "📂 Loaded %s edges from %s\n", ui.Bold(len(result.Edges)), ui.Dim(flagFromFile))
			} else {
				model := flagModel
				if model == "" {
					model = cfg.Model
				}
				client, err := claude.NewClient(cfg.APIKey, model)
				if err != nil {
					return err
				}

				fmt.Fprintf(status, "🔍 Sending %s tasks to Claude for dependency inference...\n", ui.Bold(len(f.Tasks)))
				if result, err = client.InferDeps(cmd.Context(), claude.Summaries(f.Tasks)); err != nil {
					return fmt.Errorf("infer deps: %w", err)
				}
			}

			accepted, skipped := claude.Filter(f.Tasks, result.Edges)

			written := ""
			var merged *taskfile.File
			if flagApply {
				written = flagOutput
				if written == "" {
					written = yamlPath(path)
				}
				merged = &taskfile.File{Project: f.Project, Tasks: claude.Apply(f.Tasks, accepted)}
				if err := taskfile.WriteFile(written, merged); err != nil {
					return err
				}
			}

			if flagJSON {
				if accepted == nil {
					accepted = []claude.DepEdge{}
				}
				if skipped == nil {
					skipped = []claude.SkippedEdge{}
				}
				return outputJSON(out, struct {
					Edges   []claude.DepEdge     `json:"edges"`
					Skipped []claude.SkippedEdge `json:"skipped"`
					Summary string               `json:"summary"`
					Written string               `json:"written,omitempty"`
				}{accepted, skipped, result.Summary, written})
			}

			for _, s := range skipped {
				fmt.Fprintf(out, "  %s %s after %s: %s\n", ui.Yellow("⏭️  SKIP:"), s.Edge.Task, s.Edge.Predecessor, s.Reason)
			}
			fmt.Fprintf(out, "\n🔗 Inferred %s dependencies (%d proposed, %d after validation):\n\n",
				ui.Bold(len(accepted)), len(result.Edges), len(accepted))
			for _, e := range accepted {
				fmt.Fprintf(out, "  %s %s after %s  %s\n", ui.Cyan("→"), ui.BoldMagenta(e.Task), ui.BoldMagenta(e.Predecessor), ui.Dim(e.Reason))
			}
			if result.Summary != "" {
				fmt.Fprintf(out, "\n💡 %s %s\n", ui.BoldWhite("Summary:"), result.Summary)
			}

			if merged == nil {
				fmt.Fprintf(out, "\n🎯 %s\n", ui.Yellow("Dry run; use --apply to write these dependencies."))
				return nil
			}
			fmt.Fprintf(out, "\n🏁 Wrote %s tasks with %s new dependencies to %s\n",
				ui.Bold(len(merged.Tasks)), ui.BoldGreen(len(accepted)), written)
			return nil
		},
	}

	cmd.Flags().BoolVar(&flagApply, "apply", false, "Write the merged task list (default: dry-run)")
	cmd.Flags().StringVar(&flagModel, "model", "", "Claude model to use (default: CRITPATH_MODEL or "+claude.DefaultModel+")")
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "YAML file to write with --apply (default: alongside FILE)")
	cmd.Flags().StringVar(&flagFromFile, "from-file", "", "Load proposed deps from a JSON file instead of calling Claude")

	return cmd
}

// yamlPath returns path itself for YAML files, otherwise the same name with
// a .yaml extension.
func yamlPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return path
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".yaml"
}
