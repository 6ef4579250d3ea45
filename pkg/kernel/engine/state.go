package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ormasoftchile/appgen/pkg/kernel/answers"
	"github.com/ormasoftchile/appgen/pkg/kernel/tracker"
)

// StateFile is where a run record is kept, relative to the project directory.
const StateFile = ".appgen/run.json"

// RunRecord captures the outcome of a run for later inspection.
type RunRecord struct {
	RunID      string           `json:"run_id"`
	Status     string           `json:"status"`
	FinishedAt time.Time        `json:"finished_at"`
	Answers    *answers.Answers `json:"answers"`
	Steps      []tracker.Step   `json:"steps"`
	Summary    *answers.Summary `json:"summary,omitempty"`
	FailedStep string           `json:"failed_step,omitempty"`
	Reason     string           `json:"reason,omitempty"`
}

// NewRecord builds a record from a finished run.
func NewRecord(ans *answers.Answers, res *RunResult) *RunRecord {
	return &RunRecord{
		RunID:      res.RunID,
		Status:     res.Status,
		FinishedAt: time.Now().UTC(),
		Answers:    ans,
		Steps:      res.Steps,
		Summary:    res.Summary,
		FailedStep: res.FailedStep,
		Reason:     res.Reason,
	}
}

// SaveRecord persists the record under projectDir.
func SaveRecord(projectDir string, rec *RunRecord) error {
	path := filepath.Join(projectDir, filepath.FromSlash(StateFile))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}

// LoadRecord reads the record persisted under projectDir.
func LoadRecord(projectDir string) (*RunRecord, error) {
	path := filepath.Join(projectDir, filepath.FromSlash(StateFile))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}

	var rec RunRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}
	return &rec, nil
}
