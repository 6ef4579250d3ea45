package engine

import (
	"context"

	"github.com/ormasoftchile/appgen/pkg/kernel/action"
)

// RegisterBuiltins registers the orchestration actions every pipeline uses:
// step brackets and the terminal summary.
func RegisterBuiltins(reg *action.Registry) error {
	builtins := map[string]action.Handler{
		action.TypeStepBegin:    action.Typed(stepBegin),
		action.TypeStepComplete: action.Typed(stepComplete),
		action.TypeFinish:       action.Typed(finish),
	}
	for _, typ := range []string{action.TypeStepBegin, action.TypeStepComplete, action.TypeFinish} {
		if err := reg.Register(typ, builtins[typ]); err != nil {
			return err
		}
	}
	return nil
}

func stepBegin(_ context.Context, inv *action.Invocation, p action.StepBegin) (action.Result, error) {
	inv.Tracker.Begin(p.Step)
	return action.Immediate(""), nil
}

func stepComplete(_ context.Context, inv *action.Invocation, p action.StepComplete) (action.Result, error) {
	inv.Tracker.Complete(p.Step)
	return action.Immediate(""), nil
}

func finish(_ context.Context, inv *action.Invocation, _ action.Finish) (action.Result, error) {
	inv.Report.Summary(inv.Answers.Summary())
	return action.Immediate("summary emitted"), nil
}
