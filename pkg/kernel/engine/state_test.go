package engine

import (
	"testing"

	"github.com/ormasoftchile/appgen/pkg/kernel/answers"
	"github.com/ormasoftchile/appgen/pkg/kernel/tracker"
)

func TestSaveLoadRecord(t *testing.T) {
	dir := t.TempDir()
	ans := &answers.Answers{ProjectName: "Demo", BuildVariants: []string{"develop"}}
	res := &RunResult{
		RunID:      "test-run-123",
		Status:     "failed",
		FailedStep: "Installing Packages",
		Reason:     "npm install: exit status 1",
		Steps: []tracker.Step{
			{Name: "Installing Packages", Status: tracker.StatusFailed, Ordinal: 1, Reason: "npm install: exit status 1"},
		},
	}

	if err := SaveRecord(dir, NewRecord(ans, res)); err != nil {
		t.Fatalf("SaveRecord: %v", err)
	}

	loaded, err := LoadRecord(dir)
	if err != nil {
		t.Fatalf("LoadRecord: %v", err)
	}
	if loaded.RunID != "test-run-123" {
		t.Errorf("RunID = %q", loaded.RunID)
	}
	if loaded.FailedStep != "Installing Packages" {
		t.Errorf("FailedStep = %q", loaded.FailedStep)
	}
	if len(loaded.Steps) != 1 || loaded.Steps[0].Status != tracker.StatusFailed {
		t.Errorf("Steps = %+v", loaded.Steps)
	}
	if loaded.Answers == nil || loaded.Answers.ProjectName != "Demo" {
		t.Errorf("Answers = %+v", loaded.Answers)
	}
}

func TestLoadRecord_NotFound(t *testing.T) {
	if _, err := LoadRecord(t.TempDir()); err == nil {
		t.Error("expected error for missing record")
	}
}
