package trace

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWriter_Emit(t *testing.T) {
	var buf bytes.Buffer
	tw := NewWriter(&buf, "test-run-1")

	err := tw.Emit(EventStepStart, map[string]any{
		"step":    "Copying Icons",
		"ordinal": 4,
	})
	if err != nil {
		t.Fatalf("Emit error: %v", err)
	}

	// Parse the JSONL line
	var evt Event
	if err := json.Unmarshal(buf.Bytes(), &evt); err != nil {
		t.Fatalf("JSON unmarshal: %v (raw: %s)", err, buf.String())
	}
	if evt.Type != EventStepStart {
		t.Errorf("type = %q, want step_start", evt.Type)
	}
	if evt.RunID != "test-run-1" {
		t.Errorf("run_id = %q", evt.RunID)
	}
	if evt.Data["step"] != "Copying Icons" {
		t.Errorf("step = %v", evt.Data["step"])
	}
}

func TestWriter_EmitStepComplete(t *testing.T) {
	var buf bytes.Buffer
	tw := NewWriter(&buf, "run-1")

	if err := tw.EmitStepComplete("Installing Packages", 7, StatusSuccess, nil); err != nil {
		t.Fatal(err)
	}

	var evt Event
	json.Unmarshal(buf.Bytes(), &evt)
	if evt.Data["status"] != "success" {
		t.Errorf("status = %v", evt.Data["status"])
	}
	// JSON numbers decode as float64
	if evt.Data["ordinal"] != float64(7) {
		t.Errorf("ordinal = %v", evt.Data["ordinal"])
	}
}

func TestWriter_EmitStepComplete_WithFailure(t *testing.T) {
	var buf bytes.Buffer
	tw := NewWriter(&buf, "run-1")

	err := tw.EmitStepComplete("Installing Packages", 7, StatusFailed, &Failure{
		Kind: "process", Message: "npm install: exit code 1",
	})
	if err != nil {
		t.Fatal(err)
	}

	var evt Event
	json.Unmarshal(buf.Bytes(), &evt)
	if evt.Data["status"] != "failed" {
		t.Errorf("status = %v", evt.Data["status"])
	}
	failure, ok := evt.Data["failure"].(map[string]any)
	if !ok {
		t.Fatal("expected failure object")
	}
	if failure["kind"] != "process" {
		t.Errorf("failure.kind = %v", failure["kind"])
	}
}

func TestWriter_MultipleEvents_JSONL(t *testing.T) {
	var buf bytes.Buffer
	tw := NewWriter(&buf, "run-1")

	tw.EmitActionStart(0, "create-project", "")
	tw.EmitActionComplete(0, "create-project", StatusSuccess, time.Second, nil)
	tw.EmitSignal("prod", "icon_failed", "dimensions 512x512")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Errorf("expected 3 JSONL lines, got %d", len(lines))
	}

	// Each line should be valid JSON
	for i, line := range lines {
		var evt Event
		if err := json.Unmarshal([]byte(line), &evt); err != nil {
			t.Errorf("line %d: invalid JSON: %v", i, err)
		}
	}
}

func TestWriter_EmitActionStart_OmitsEmptyStep(t *testing.T) {
	var buf bytes.Buffer
	tw := NewWriter(&buf, "run-1")

	tw.EmitActionStart(3, "render", "")

	var evt Event
	json.Unmarshal(buf.Bytes(), &evt)
	if _, ok := evt.Data["step"]; ok {
		t.Errorf("untracked action should not carry a step, got %v", evt.Data["step"])
	}
}

func TestWriter_RunComplete(t *testing.T) {
	var buf bytes.Buffer
	tw := NewWriter(&buf, "run-1")

	tw.EmitRunComplete(map[string]any{"icon_count": 2}, "completed", time.Second)

	var evt Event
	json.Unmarshal(buf.Bytes(), &evt)
	if evt.Type != EventRunComplete {
		t.Errorf("type = %q", evt.Type)
	}
	summary, _ := evt.Data["summary"].(map[string]any)
	if summary["icon_count"] != float64(2) {
		t.Errorf("summary.icon_count = %v", summary["icon_count"])
	}
}

func TestWriter_Nil(t *testing.T) {
	var tw *Writer
	if err := tw.EmitWarning("ignored"); err != nil {
		t.Errorf("nil writer Emit: %v", err)
	}
	if tw.RunID() != "" {
		t.Errorf("nil writer RunID = %q", tw.RunID())
	}
	if err := tw.Close(); err != nil {
		t.Errorf("nil writer Close: %v", err)
	}
}

func TestNewFileWriter_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.jsonl")

	for i := 0; i < 2; i++ {
		tw, err := NewFileWriter(path, "run-1")
		if err != nil {
			t.Fatal(err)
		}
		tw.EmitWarning("expo install --fix failed")
		if err := tw.Close(); err != nil {
			t.Fatal(err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), "\n"); n != 2 {
		t.Errorf("expected 2 lines after two writers, got %d", n)
	}
}
