// Package engine implements the sequential pipeline executor.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ormasoftchile/appgen/pkg/kernel/action"
	"github.com/ormasoftchile/appgen/pkg/kernel/answers"
	"github.com/ormasoftchile/appgen/pkg/kernel/pipeline"
	"github.com/ormasoftchile/appgen/pkg/kernel/trace"
	"github.com/ormasoftchile/appgen/pkg/kernel/tracker"
)

// RunConfig configures a pipeline execution.
type RunConfig struct {
	RunID   string           // generated when empty
	Tracker *tracker.Tracker // created when nil
	Trace   *trace.Writer    // optional JSONL audit trail
	Report  action.Reporter  // detail, skip and warning lines; discarded when nil
	Logger  zerolog.Logger
}

// RunResult is the outcome of executing a pipeline.
type RunResult struct {
	RunID      string
	Status     string // "completed", "failed"
	Summary    *answers.Summary
	FailedStep string
	Reason     string
	Steps      []tracker.Step
	Duration   time.Duration
	Error      error
}

// StepError names the first fatal step of a failed run. Step is empty when
// the failing action was neither tracked nor inside a bracket.
type StepError struct {
	Step   string
	Action string
	Index  int
	Err    error
}

func (e *StepError) Error() string {
	if e.Step != "" {
		return fmt.Sprintf("step %q failed: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("action %d (%s) failed: %v", e.Index+1, e.Action, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Engine executes pipelines against a registry of handlers.
type Engine struct {
	cfg     RunConfig
	reg     *action.Registry
	tracker *tracker.Tracker
	trace   *trace.Writer
	report  *capture
	log     zerolog.Logger

	// open is the bracket step most recently begun and not yet completed.
	open string
}

// New creates an engine for the given registry.
func New(reg *action.Registry, cfg RunConfig) *Engine {
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}
	tr := cfg.Tracker
	if tr == nil {
		tr = tracker.New()
	}
	if cfg.Trace != nil {
		tr.AddSink(tracker.TraceSink(cfg.Trace))
	}
	rep := cfg.Report
	if rep == nil {
		rep = action.NopReporter{}
	}
	log := cfg.Logger.With().Str("run_id", cfg.RunID).Logger()

	return &Engine{
		cfg:     cfg,
		reg:     reg,
		tracker: tr,
		trace:   cfg.Trace,
		report:  &capture{next: rep, trace: cfg.Trace, log: log},
		log:     log,
	}
}

// Tracker returns the tracker the engine reports to.
func (e *Engine) Tracker() *tracker.Tracker { return e.tracker }

// Run executes the pipeline strictly sequentially. Action i+1 starts only
// after action i has settled; the first fatal error halts the run.
func (e *Engine) Run(ctx context.Context, ans *answers.Answers, p *pipeline.Pipeline) *RunResult {
	start := time.Now()
	actions := p.Actions()

	ans.Signals.Observe(func(s answers.Signal) {
		_ = e.trace.EmitSignal(s.Variant, string(s.Kind), s.Detail)
		e.log.Debug().Str("variant", s.Variant).Str("signal", string(s.Kind)).Str("detail", s.Detail).Msg("signal recorded")
	})
	defer ans.Signals.Observe(nil)

	_ = e.trace.EmitRunStart(ans.ProjectName, map[string]any{
		"project_dir":    ans.ProjectDir,
		"bundle_id":      ans.BundleID,
		"build_variants": ans.BuildVariants,
	}, len(actions))
	e.log.Info().Str("project", ans.ProjectSlug).Int("actions", len(actions)).Msg("pipeline started")

	result := e.execute(ctx, ans, actions)
	result.RunID = e.cfg.RunID
	result.Duration = time.Since(start)
	result.Steps = e.tracker.Steps()

	var summary map[string]any
	if result.Summary != nil {
		summary = result.Summary.Map()
	}
	_ = e.trace.EmitRunComplete(summary, result.Status, result.Duration)

	if result.Error != nil {
		e.log.Error().Err(result.Error).Str("step", result.FailedStep).Msg("pipeline failed")
	} else {
		e.log.Info().Dur("duration", result.Duration).Msg("pipeline completed")
	}
	return result
}

func (e *Engine) execute(ctx context.Context, ans *answers.Answers, actions []action.Action) *RunResult {
	e.open = ""
	e.report.summary = nil

	for i, a := range actions {
		if err := ctx.Err(); err != nil {
			return e.fail(i, a, err)
		}

		_ = e.trace.EmitActionStart(i, a.Type, a.StepName)
		began := time.Now()

		err := e.invoke(ctx, a, ans)

		if err != nil {
			_ = e.trace.EmitActionComplete(i, a.Type, trace.StatusFailed, time.Since(began), &trace.Failure{
				Kind:    failureKind(err),
				Message: err.Error(),
			})
			return e.fail(i, a, err)
		}
		_ = e.trace.EmitActionComplete(i, a.Type, trace.StatusSuccess, time.Since(began), nil)

		switch pl := a.Payload.(type) {
		case action.StepBegin:
			e.open = pl.Step
		case action.StepComplete:
			if e.open == pl.Step {
				e.open = ""
			}
		}
	}

	return &RunResult{
		Status:  "completed",
		Summary: e.report.summary,
	}
}

// fail terminates the step the failing action belonged to and builds the
// failed result. Untracked actions inside a bracket fail the bracket step.
func (e *Engine) fail(i int, a action.Action, err error) *RunResult {
	step := a.StepName
	if step == "" && e.open != "" {
		step = e.open
		e.tracker.Fail(step, err.Error())
	}
	if step == "" {
		if s, ok := e.tracker.Failed(); ok {
			step = s.Name
		}
	}
	return &RunResult{
		Status:     "failed",
		FailedStep: step,
		Reason:     err.Error(),
		Error:      &StepError{Step: step, Action: a.Type, Index: i, Err: err},
	}
}

func failureKind(err error) string {
	var unk *action.UnknownActionError
	var pte *action.PayloadTypeError
	var pe *panicError
	switch {
	case errors.As(err, &unk):
		return "unknown_action"
	case errors.As(err, &pte):
		return "payload"
	case errors.As(err, &pe):
		return "panic"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}

// capture forwards report lines and keeps the summary for the result.
type capture struct {
	next    action.Reporter
	trace   *trace.Writer
	log     zerolog.Logger
	summary *answers.Summary
}

func (c *capture) Detail(msg string) {
	c.log.Debug().Msg(msg)
	c.next.Detail(msg)
}

func (c *capture) Skipped(msg string) {
	c.log.Warn().Str("outcome", "skipped").Msg(msg)
	c.next.Skipped(msg)
}

func (c *capture) Warn(msg string) {
	_ = c.trace.EmitWarning(msg)
	c.log.Warn().Msg(msg)
	c.next.Warn(msg)
}

func (c *capture) Summary(s *answers.Summary) {
	c.summary = s
	c.next.Summary(s)
}
