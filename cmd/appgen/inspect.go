package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ormasoftchile/appgen/pkg/generator"
	"github.com/ormasoftchile/appgen/pkg/kernel/answers"
	"github.com/ormasoftchile/appgen/pkg/kernel/engine"
	"github.com/ormasoftchile/appgen/pkg/scaffold"
	"github.com/ormasoftchile/appgen/pkg/ui"
)

// --- validate ---

func newValidateCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [answers.yaml]",
		Short: "Validate an answers file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := g.setup()
			if err != nil {
				return err
			}
			defer closeQuietly(e, cmd.ErrOrStderr())

			a, errs := answers.ValidateFile(args[0], e.cfg.ValidateOptions())
			if printFindings(cmd.ErrOrStderr(), errs) {
				return errReported
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is valid (%d variants, project dir %s)\n",
				a.ProjectName, len(a.BuildVariants), a.ProjectDir)
			return nil
		},
	}
}

// --- plan ---

func newPlanCmd(g *globalFlags) *cobra.Command {
	var (
		answersPath string
		format      string
		skipInstall bool
	)
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the actions a run would execute, without running them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := g.setup()
			if err != nil {
				return err
			}
			defer closeQuietly(e, cmd.ErrOrStderr())

			a, errs := answers.ValidateFile(answersPath, e.cfg.ValidateOptions())
			if printFindings(cmd.ErrOrStderr(), errs) {
				return errReported
			}
			gen, err := generator.New(generator.Options{Config: e.cfg, DryRun: true, SkipInstall: skipInstall, Logger: e.log})
			if err != nil {
				return err
			}
			p, err := gen.Plan(a)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "text":
				fmt.Fprintf(out, "Plan for %s (%d actions, %d steps)\n\n", a.ProjectDir, p.Len(), len(p.Steps()))
				fmt.Fprintln(out, strings.Join(p.Describe(), "\n"))
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				defer enc.Close()
				return enc.Encode(p.Entries())
			case "json":
				data, err := json.MarshalIndent(p.Entries(), "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
			default:
				return fmt.Errorf("unknown format %q (want text, yaml or json)", format)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&answersPath, "answers", "a", "", "Answers file (YAML or JSON)")
	cmd.Flags().StringVarP(&format, "output", "o", "text", "Output format: text, yaml or json")
	cmd.Flags().BoolVar(&skipInstall, "skip-install", false, "Leave out the package installation step")
	_ = cmd.MarkFlagRequired("answers")
	return cmd
}

// --- schema ---

func newSchemaCmd() *cobra.Command {
	schemaCmd := &cobra.Command{
		Use:   "schema",
		Short: "Schema operations",
	}
	schemaCmd.AddCommand(&cobra.Command{
		Use:   "export",
		Short: "Export the answers JSON Schema to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := answers.GenerateJSONSchema()
			if err != nil {
				return fmt.Errorf("generate schema: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	})
	return schemaCmd
}

// --- status ---

func newStatusCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status [project-dir]",
		Short: "Show the outcome of the last run in a project directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			plain := g.noColor
			rec, err := engine.LoadRecord(dir)
			if err != nil {
				return fmt.Errorf("no run recorded in %s: %w", dir, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %s %s at %s\n\n", rec.RunID, rec.Status, rec.FinishedAt.Local().Format("2006-01-02 15:04:05"))
			status := ui.NewStatusPrinter(out, plain)
			for _, s := range rec.Steps {
				status.StepChanged(s)
			}
			if rec.Summary != nil {
				fmt.Fprint(out, ui.RenderSummary(rec.Summary, plain))
			} else if rec.Status == "failed" {
				fmt.Fprint(out, ui.RenderFailure(rec.FailedStep, rec.Reason, plain))
			}
			return nil
		},
	}
}

// --- templates ---

func newTemplatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the embedded project templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := scaffold.TemplateNames()
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
}
