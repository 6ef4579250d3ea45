package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ormasoftchile/appgen/pkg/generator"
	"github.com/ormasoftchile/appgen/pkg/kernel/answers"
	"github.com/ormasoftchile/appgen/pkg/kernel/tracker"
	"github.com/ormasoftchile/appgen/pkg/prompt"
	"github.com/ormasoftchile/appgen/pkg/ui"
)

// runFlags are shared by "new" and "run".
type runFlags struct {
	dryRun      bool
	skipInstall bool
}

func (f *runFlags) bind(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Print external commands instead of running them (files are still written)")
	cmd.Flags().BoolVar(&f.skipInstall, "skip-install", false, "Skip rewriting package.json and installing dependencies")
}

// --- new ---

func newNewCmd(g *globalFlags) *cobra.Command {
	rf := &runFlags{}
	var saveAnswers string
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a project, asking for every answer interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := g.setup()
			if err != nil {
				return err
			}
			defer closeQuietly(e, cmd.ErrOrStderr())

			c, err := prompt.NewTerminal(e.cfg)
			if err != nil {
				return err
			}
			ans, err := c.Collect(cmd.Context())
			c.Close()
			if errors.Is(err, prompt.ErrAborted) {
				fmt.Fprintln(cmd.ErrOrStderr(), "Cancelled.")
				return errReported
			}
			if err != nil {
				return err
			}

			if saveAnswers != "" {
				if err := writeAnswers(saveAnswers, ans); err != nil {
					return err
				}
				e.log.Info().Str("path", saveAnswers).Msg("answers saved")
			}
			return execute(cmd, g, e, rf, ans)
		},
	}
	rf.bind(cmd)
	cmd.Flags().StringVar(&saveAnswers, "save-answers", "", "Also write the collected answers to this YAML file")
	return cmd
}

// --- run ---

func newRunCmd(g *globalFlags) *cobra.Command {
	rf := &runFlags{}
	var answersPath string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Create a project from an answers file without prompting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := g.setup()
			if err != nil {
				return err
			}
			defer closeQuietly(e, cmd.ErrOrStderr())

			ans, err := loadAnswers(answersPath)
			if err != nil {
				return err
			}
			return execute(cmd, g, e, rf, ans)
		},
	}
	rf.bind(cmd)
	cmd.Flags().StringVarP(&answersPath, "answers", "a", "", "Answers file (YAML or JSON)")
	_ = cmd.MarkFlagRequired("answers")
	return cmd
}

// execute runs the pipeline for finalized answers and prints the outcome.
func execute(cmd *cobra.Command, g *globalFlags, e *env, rf *runFlags, ans *answers.Answers) error {
	out := cmd.OutOrStdout()
	status := ui.NewStatusPrinter(out, e.plain)

	gen, err := generator.New(generator.Options{
		Config:      e.cfg,
		DryRun:      rf.dryRun,
		SkipInstall: rf.skipInstall,
		Out:         out,
		Sinks:       []tracker.Sink{status, tracker.LogSink(e.log)},
		Report:      status,
		TracePath:   g.tracePath,
		Logger:      e.log,
	})
	if err != nil {
		return err
	}

	findings := gen.Validate(ans)
	if printFindings(cmd.ErrOrStderr(), findings) {
		return errReported
	}

	fmt.Fprint(out, ui.Header(e.plain))
	res, err := gen.Run(cmd.Context(), ans)
	if err != nil {
		return err
	}
	if res.Status == "completed" {
		fmt.Fprint(out, ui.RenderSummary(res.Summary, e.plain))
		return nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), ui.RenderFailure(res.FailedStep, res.Reason, e.plain))
	return errReported
}

func loadAnswers(path string) (*answers.Answers, error) {
	a, err := answers.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := a.Finalize(); err != nil {
		return nil, err
	}
	return a, nil
}

func writeAnswers(path string, a *answers.Answers) error {
	data, err := yaml.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write answers: %w", err)
	}
	return nil
}

// printFindings prints warnings and errors and reports whether any error
// was found.
func printFindings(w io.Writer, errs []*answers.ValidationError) bool {
	var failures []*answers.ValidationError
	for _, e := range errs {
		if e.Severity == "warning" {
			fmt.Fprintf(w, "  ⚠ [%s] %s\n", e.Phase, e.Message)
			if e.Path != "" {
				fmt.Fprintf(w, "    at: %s\n", e.Path)
			}
			continue
		}
		failures = append(failures, e)
	}
	if len(failures) == 0 {
		return false
	}
	fmt.Fprintf(w, "Validation failed: %d error(s)\n\n", len(failures))
	for i, e := range failures {
		fmt.Fprintf(w, "  %d. [%s] %s\n", i+1, e.Phase, e.Message)
		if e.Path != "" {
			fmt.Fprintf(w, "     at: %s\n", e.Path)
		}
	}
	return true
}
