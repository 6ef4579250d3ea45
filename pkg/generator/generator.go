// Package generator wires configuration, the process runner, the scaffold
// handlers and the engine into one reusable unit. The CLI and the MCP
// server both drive runs through it.
package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ormasoftchile/appgen/pkg/config"
	"github.com/ormasoftchile/appgen/pkg/kernel/action"
	"github.com/ormasoftchile/appgen/pkg/kernel/answers"
	"github.com/ormasoftchile/appgen/pkg/kernel/engine"
	"github.com/ormasoftchile/appgen/pkg/kernel/pipeline"
	"github.com/ormasoftchile/appgen/pkg/kernel/trace"
	"github.com/ormasoftchile/appgen/pkg/kernel/tracker"
	"github.com/ormasoftchile/appgen/pkg/procexec"
	"github.com/ormasoftchile/appgen/pkg/scaffold"
)

// Options configures a Generator.
type Options struct {
	Config *config.Config // defaults to config.DefaultConfig()

	// DryRun prints external commands instead of running them. Files are
	// still written.
	DryRun      bool
	SkipInstall bool

	// Out receives dry-run command lines. Defaults to io.Discard.
	Out io.Writer

	// Runner replaces the process runner chosen from DryRun.
	Runner procexec.Runner

	// Sinks observe step transitions; Report receives report lines.
	Sinks  []tracker.Sink
	Report action.Reporter

	// TracePath, when set, receives a JSONL trace of the run.
	TracePath string

	Logger zerolog.Logger
}

// Generator plans and runs project generation.
type Generator struct {
	opts     Options
	cfg      *config.Config
	reg      *action.Registry
	recorder *procexec.Recorder
}

// New builds the action registry for opts.
func New(opts Options) (*Generator, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	out := opts.Out
	if out == nil {
		out = io.Discard
	}

	runner := opts.Runner
	if runner == nil {
		if opts.DryRun {
			runner = &procexec.DryRunner{Out: out}
		} else {
			runner = &procexec.ExecRunner{Retries: cfg.Install.Retries, Log: opts.Logger}
		}
	}
	rec := procexec.NewRecorder(runner)

	reg := action.NewRegistry()
	if err := engine.RegisterBuiltins(reg); err != nil {
		return nil, err
	}
	if err := scaffold.Register(reg, scaffold.Deps{Runner: rec, Config: cfg, DryRun: opts.DryRun}); err != nil {
		return nil, err
	}
	return &Generator{opts: opts, cfg: cfg, reg: reg, recorder: rec}, nil
}

// Config is the configuration the generator runs with.
func (g *Generator) Config() *config.Config { return g.cfg }

// Validate runs the answers validation configured for this generator.
func (g *Generator) Validate(ans *answers.Answers) []*answers.ValidationError {
	return answers.Validate(ans, g.cfg.ValidateOptions())
}

// Plan builds the pipeline for finalized answers without running it.
func (g *Generator) Plan(ans *answers.Answers) (*pipeline.Pipeline, error) {
	return pipeline.Build(ans, g.reg, pipeline.Options{SkipInstall: g.opts.SkipInstall})
}

// Run validates, plans and executes. Validation and planning problems are
// returned as errors; a failed run is reported through the result. The run
// record is saved whenever the project directory exists afterwards.
func (g *Generator) Run(ctx context.Context, ans *answers.Answers) (*engine.RunResult, error) {
	if errs := g.Validate(ans); answers.HasErrors(errs) {
		return nil, &InvalidAnswersError{Errors: errs}
	}
	p, err := g.Plan(ans)
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}

	runID := uuid.NewString()
	var tw *trace.Writer
	if g.opts.TracePath != "" {
		tw, err = trace.NewFileWriter(g.opts.TracePath, runID)
		if err != nil {
			return nil, fmt.Errorf("open trace: %w", err)
		}
		defer tw.Close()
	}

	eng := engine.New(g.reg, engine.RunConfig{
		RunID:   runID,
		Tracker: tracker.New(g.opts.Sinks...),
		Trace:   tw,
		Report:  g.opts.Report,
		Logger:  g.opts.Logger,
	})
	res := eng.Run(ctx, ans, p)

	if info, err := os.Stat(ans.ProjectDir); err == nil && info.IsDir() {
		if err := engine.SaveRecord(ans.ProjectDir, engine.NewRecord(ans, res)); err != nil {
			g.opts.Logger.Warn().Err(err).Msg("could not save run record")
		}
	}
	return res, nil
}

// Commands returns every external command issued so far.
func (g *Generator) Commands() []procexec.Captured {
	return g.recorder.Calls()
}

// InvalidAnswersError carries the validation findings that stopped a run.
type InvalidAnswersError struct {
	Errors []*answers.ValidationError
}

func (e *InvalidAnswersError) Error() string {
	n := 0
	first := ""
	for _, v := range e.Errors {
		if v.Severity == "error" {
			if n == 0 {
				first = v.Error()
			}
			n++
		}
	}
	if n == 1 {
		return "invalid answers: " + first
	}
	return fmt.Sprintf("invalid answers: %d errors, first: %s", n, first)
}

// IsInvalidAnswers reports whether err stems from answers validation.
func IsInvalidAnswers(err error) bool {
	var ie *InvalidAnswersError
	return errors.As(err, &ie)
}
