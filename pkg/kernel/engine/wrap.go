package engine

import (
	"context"
	"fmt"

	"github.com/ormasoftchile/appgen/pkg/kernel/action"
	"github.com/ormasoftchile/appgen/pkg/kernel/answers"
)

type panicError struct {
	actionType string
	value      any
}

func (e *panicError) Error() string {
	return fmt.Sprintf("%s: panic: %v", e.actionType, e.value)
}

// invoke runs one action. Tracked actions get a begin before the handler
// and exactly one matching terminal status after it settles; the handler's
// message never reaches the caller. Errors are returned unchanged.
func (e *Engine) invoke(ctx context.Context, a action.Action, ans *answers.Answers) (err error) {
	h, err := e.reg.Resolve(a.Type)
	if err != nil {
		return err
	}

	if a.Tracked() {
		e.tracker.Begin(a.StepName)
		defer func() {
			if err != nil {
				e.tracker.Fail(a.StepName, err.Error())
				return
			}
			e.tracker.Complete(a.StepName)
		}()
	}

	// registered after the tracker defer so it runs first
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{actionType: a.Type, value: r}
		}
	}()

	inv := &action.Invocation{
		Answers: ans,
		Payload: a.Payload,
		Tracker: e.tracker,
		Report:  e.report,
		Log:     e.log.With().Str("action", a.Type).Str("step", a.StepName).Logger(),
	}

	res, err := h(ctx, inv)
	if err != nil {
		return err
	}
	msg, err := res.Await(ctx)
	if err != nil {
		if ctx.Err() != nil && err == ctx.Err() {
			// the handler may still touch answers and the reporter
			res.Settle()
		}
		return err
	}
	if msg != "" {
		inv.Log.Debug().Msg(msg)
	}
	return nil
}
