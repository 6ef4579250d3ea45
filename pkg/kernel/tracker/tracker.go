// Package tracker records per-step status for a pipeline run and reports each
// status transition to its sinks exactly once.
package tracker

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ormasoftchile/appgen/pkg/kernel/trace"
)

// Status is the display status of a named step.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// Step is a named, independently tracked unit of pipeline work.
type Step struct {
	Name    string `json:"name" yaml:"name"`
	Status  Status `json:"status" yaml:"status"`
	Ordinal int    `json:"ordinal" yaml:"ordinal"`
	Reason  string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Line renders the step in the canonical status-line form,
// e.g. "running step 2: Cleaning Default Files".
func (s Step) Line() string {
	return fmt.Sprintf("%s step %d: %s", s.Status, s.Ordinal, s.Name)
}

// Sink observes emitted step transitions. Sinks are called while the tracker
// holds its lock and must not call back into the tracker.
type Sink interface {
	StepChanged(step Step)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(step Step)

// StepChanged implements Sink.
func (f SinkFunc) StepChanged(step Step) { f(step) }

// Tracker holds ordered step identities and their statuses for one run.
type Tracker struct {
	mu    sync.Mutex
	steps map[string]*Step
	next  int
	sinks []Sink
}

// New creates a tracker reporting to the given sinks.
func New(sinks ...Sink) *Tracker {
	return &Tracker{
		steps: make(map[string]*Step),
		sinks: sinks,
	}
}

// AddSink registers an additional observer.
func (t *Tracker) AddSink(s Sink) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sinks = append(t.sinks, s)
}

// Begin marks a step running. It is a no-op when the step is already running
// or has reached a terminal status, so several actions sharing one step name
// produce a single running line. Reports whether a transition was emitted.
func (t *Tracker) Begin(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.lookup(name)
	if s.Status == StatusRunning || s.Status.Terminal() {
		return false
	}
	s.Status = StatusRunning
	t.emit(s)
	return true
}

// Complete marks a step succeeded. Completing twice is observably identical
// to completing once. A failed step stays failed.
func (t *Tracker) Complete(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.lookup(name)
	if s.Status.Terminal() {
		return false
	}
	s.Status = StatusSucceeded
	t.emit(s)
	return true
}

// Fail marks a step failed and records the reason. The failure is emitted
// once; a step that already succeeded does not regress.
func (t *Tracker) Fail(name, reason string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.lookup(name)
	if s.Status.Terminal() {
		return false
	}
	s.Status = StatusFailed
	s.Reason = reason
	t.emit(s)
	return true
}

// Status returns the current status of a step; unknown steps are pending.
func (t *Tracker) Status(name string) Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.steps[name]; ok {
		return s.Status
	}
	return StatusPending
}

// Steps returns a snapshot of all referenced steps ordered by ordinal.
func (t *Tracker) Steps() []Step {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Step, 0, len(t.steps))
	for _, s := range t.steps {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ordinal < out[j].Ordinal })
	return out
}

// Failed returns the first failed step, if any.
func (t *Tracker) Failed() (Step, bool) {
	for _, s := range t.Steps() {
		if s.Status == StatusFailed {
			return s, true
		}
	}
	return Step{}, false
}

// lookup returns the step, assigning the next ordinal on first reference.
func (t *Tracker) lookup(name string) *Step {
	if s, ok := t.steps[name]; ok {
		return s
	}
	t.next++
	s := &Step{Name: name, Status: StatusPending, Ordinal: t.next}
	t.steps[name] = s
	return s
}

func (t *Tracker) emit(s *Step) {
	snapshot := *s
	for _, sink := range t.sinks {
		sink.StepChanged(snapshot)
	}
}

// TraceSink writes step_start and step_complete events for each transition.
func TraceSink(tw *trace.Writer) Sink {
	return SinkFunc(func(s Step) {
		switch s.Status {
		case StatusRunning:
			_ = tw.EmitStepStart(s.Name, s.Ordinal)
		case StatusSucceeded:
			_ = tw.EmitStepComplete(s.Name, s.Ordinal, trace.StatusSuccess, nil)
		case StatusFailed:
			_ = tw.EmitStepComplete(s.Name, s.Ordinal, trace.StatusFailed, &trace.Failure{
				Kind:    "step",
				Message: s.Reason,
			})
		}
	})
}

// LogSink logs each transition at debug level, failures at error level.
func LogSink(log zerolog.Logger) Sink {
	return SinkFunc(func(s Step) {
		ev := log.Debug()
		if s.Status == StatusFailed {
			ev = log.Error().Str("reason", s.Reason)
		}
		ev.Str("step", s.Name).Int("ordinal", s.Ordinal).Str("status", string(s.Status)).Msg("step transition")
	})
}
