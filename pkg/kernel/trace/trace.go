// Package trace implements the pipeline's append-only JSONL audit trail.
package trace

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// EventType enumerates all pipeline trace event types.
type EventType string

const (
	EventRunStart       EventType = "run_start"
	EventRunComplete    EventType = "run_complete"
	EventStepStart      EventType = "step_start"
	EventStepComplete   EventType = "step_complete"
	EventActionStart    EventType = "action_start"
	EventActionComplete EventType = "action_complete"
	EventSignalRecorded EventType = "signal_recorded"
	EventWarning        EventType = "warning"
)

// StepStatus is the terminal status of a step or action.
type StepStatus string

const (
	StatusSuccess StepStatus = "success"
	StatusFailed  StepStatus = "failed"
	StatusSkipped StepStatus = "skipped"
)

// Event is a single trace event written to the JSONL stream.
type Event struct {
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	RunID     string         `json:"run_id"`
	Data      map[string]any `json:"data,omitempty"`
}

// Failure describes why a step or action failed.
type Failure struct {
	Kind    string `json:"kind"` // process, template, io, unknown_action, panic
	Message string `json:"message"`
}

// Writer writes trace events to an append-only JSONL stream.
// A nil *Writer is valid and discards every event.
type Writer struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	runID  string
	enc    *json.Encoder
}

// NewWriter creates a trace writer that writes to the given io.Writer.
func NewWriter(w io.Writer, runID string) *Writer {
	return &Writer{
		w:     w,
		runID: runID,
		enc:   json.NewEncoder(w),
	}
}

// NewFileWriter creates a trace writer that appends to a JSONL file.
func NewFileWriter(path, runID string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	tw := NewWriter(f, runID)
	tw.closer = f
	return tw, nil
}

// RunID returns the run identifier stamped on every event.
func (tw *Writer) RunID() string {
	if tw == nil {
		return ""
	}
	return tw.runID
}

// Close closes the underlying file when the writer owns one.
func (tw *Writer) Close() error {
	if tw == nil || tw.closer == nil {
		return nil
	}
	return tw.closer.Close()
}

// Emit writes a single trace event.
func (tw *Writer) Emit(eventType EventType, data map[string]any) error {
	if tw == nil {
		return nil
	}
	tw.mu.Lock()
	defer tw.mu.Unlock()

	evt := Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		RunID:     tw.runID,
		Data:      data,
	}
	return tw.enc.Encode(evt)
}

// EmitStepStart emits a step_start event.
func (tw *Writer) EmitStepStart(step string, ordinal int) error {
	return tw.Emit(EventStepStart, map[string]any{
		"step":    step,
		"ordinal": ordinal,
	})
}

// EmitStepComplete emits a step_complete event.
func (tw *Writer) EmitStepComplete(step string, ordinal int, status StepStatus, failure *Failure) error {
	data := map[string]any{
		"step":    step,
		"ordinal": ordinal,
		"status":  string(status),
	}
	if failure != nil {
		data["failure"] = map[string]any{
			"kind":    failure.Kind,
			"message": failure.Message,
		}
	}
	return tw.Emit(EventStepComplete, data)
}

// EmitActionStart emits an action_start event.
func (tw *Writer) EmitActionStart(index int, actionType, step string) error {
	data := map[string]any{
		"index": index,
		"type":  actionType,
	}
	if step != "" {
		data["step"] = step
	}
	return tw.Emit(EventActionStart, data)
}

// EmitActionComplete emits an action_complete event.
func (tw *Writer) EmitActionComplete(index int, actionType string, status StepStatus, duration time.Duration, failure *Failure) error {
	data := map[string]any{
		"index":    index,
		"type":     actionType,
		"status":   string(status),
		"duration": duration.String(),
	}
	if failure != nil {
		data["failure"] = map[string]any{
			"kind":    failure.Kind,
			"message": failure.Message,
		}
	}
	return tw.Emit(EventActionComplete, data)
}

// EmitSignal emits a signal_recorded event for a variant-scoped outcome.
func (tw *Writer) EmitSignal(variant, signal, detail string) error {
	data := map[string]any{
		"variant": variant,
		"signal":  signal,
	}
	if detail != "" {
		data["detail"] = detail
	}
	return tw.Emit(EventSignalRecorded, data)
}

// EmitWarning emits a warning event.
func (tw *Writer) EmitWarning(message string) error {
	return tw.Emit(EventWarning, map[string]any{"message": message})
}

// EmitRunStart emits a run_start event with the project identity and variants.
func (tw *Writer) EmitRunStart(project string, inputs map[string]any, actions int) error {
	data := map[string]any{
		"project": project,
		"actions": actions,
	}
	if inputs != nil {
		data["inputs"] = inputs
	}
	return tw.Emit(EventRunStart, data)
}

// EmitRunComplete emits a run_complete event.
func (tw *Writer) EmitRunComplete(summary map[string]any, status string, duration time.Duration) error {
	data := map[string]any{
		"status":   status,
		"duration": duration.String(),
	}
	if summary != nil {
		data["summary"] = summary
	}
	return tw.Emit(EventRunComplete, data)
}
