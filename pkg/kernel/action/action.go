// Package action defines pipeline actions, their typed payloads, the handler
// contract and the registry handlers are resolved from.
package action

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ormasoftchile/appgen/pkg/kernel/answers"
	"github.com/ormasoftchile/appgen/pkg/kernel/tracker"
)

// Action is one registered, invokable unit of work. An empty StepName means
// the action is untracked.
type Action struct {
	Type     string  `json:"type" yaml:"type"`
	Payload  Payload `json:"payload,omitempty" yaml:"payload,omitempty"`
	StepName string  `json:"step,omitempty" yaml:"step,omitempty"`
}

// Tracked reports whether the action participates in step reporting.
func (a Action) Tracked() bool { return a.StepName != "" }

func (a Action) String() string {
	if a.StepName == "" {
		return a.Type
	}
	return fmt.Sprintf("%s [%s]", a.Type, a.StepName)
}

// Reporter receives per-action detail lines that are not step transitions.
type Reporter interface {
	// Detail reports a success line such as "[DEVELOP] Copied icon icon.png".
	Detail(msg string)
	// Skipped reports a degraded outcome that does not stop the pipeline.
	Skipped(msg string)
	// Warn reports a warning, e.g. a failed optional sub-step.
	Warn(msg string)
	// Summary receives the final run summary.
	Summary(s *answers.Summary)
}

// NopReporter discards everything.
type NopReporter struct{}

func (NopReporter) Detail(string)           {}
func (NopReporter) Skipped(string)          {}
func (NopReporter) Warn(string)             {}
func (NopReporter) Summary(*answers.Summary) {}

// Invocation is the explicit context handed to a handler.
type Invocation struct {
	Answers *answers.Answers
	Payload Payload
	Tracker *tracker.Tracker
	Report  Reporter
	Log     zerolog.Logger
}

// Handler performs one action. It may read and write inv.Answers in place.
// Only a returned error (or a failed Pending outcome) is fatal.
type Handler func(ctx context.Context, inv *Invocation) (Result, error)

// PayloadTypeError is returned when a handler receives a payload of the wrong type.
type PayloadTypeError struct {
	Want string
	Got  Payload
}

func (e *PayloadTypeError) Error() string {
	return fmt.Sprintf("payload type mismatch: want %s, got %T", e.Want, e.Got)
}

// Typed adapts a handler written against a concrete payload type.
func Typed[P Payload](fn func(ctx context.Context, inv *Invocation, p P) (Result, error)) Handler {
	return func(ctx context.Context, inv *Invocation) (Result, error) {
		p, ok := inv.Payload.(P)
		if !ok {
			var zero P
			return Result{}, &PayloadTypeError{Want: fmt.Sprintf("%T", zero), Got: inv.Payload}
		}
		return fn(ctx, inv, p)
	}
}
