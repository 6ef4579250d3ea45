package procexec

import (
	"context"
	"os"
	"strings"
	"sync"
)

// Captured records a single command invocation.
type Captured struct {
	Command  string `yaml:"command" json:"command"`
	Dir      string `yaml:"dir,omitempty" json:"dir,omitempty"`
	ExitCode int    `yaml:"exit_code" json:"exit_code"`
	Stdout   string `yaml:"stdout,omitempty" json:"stdout,omitempty"`
	Stderr   string `yaml:"stderr,omitempty" json:"stderr,omitempty"`
	Error    string `yaml:"error,omitempty" json:"error,omitempty"`
}

// Recorder wraps a Runner and captures every invocation.
type Recorder struct {
	inner   Runner
	mu      sync.Mutex
	calls   []Captured
	secrets []string // env var names whose values should be redacted
}

// NewRecorder creates a recording wrapper around an existing runner.
func NewRecorder(inner Runner) *Recorder {
	return &Recorder{inner: inner}
}

// SetSecrets configures env var names whose values are redacted in captured output.
func (r *Recorder) SetSecrets(envVars []string) {
	r.secrets = envVars
}

// Run delegates to the inner runner and records the invocation, failed or not.
func (r *Recorder) Run(ctx context.Context, cmd Command) (*Result, error) {
	res, err := r.inner.Run(ctx, cmd)

	c := Captured{
		Command: r.redact(cmd.String()),
		Dir:     cmd.Dir,
	}
	if res != nil {
		c.ExitCode = res.ExitCode
		c.Stdout = r.redact(res.Stdout)
		c.Stderr = r.redact(res.Stderr)
	}
	if err != nil {
		c.Error = r.redact(err.Error())
	}

	r.mu.Lock()
	r.calls = append(r.calls, c)
	r.mu.Unlock()
	return res, err
}

// Calls returns a copy of the captured invocations.
func (r *Recorder) Calls() []Captured {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Captured(nil), r.calls...)
}

// redact replaces secret values with <REDACTED>.
func (r *Recorder) redact(s string) string {
	for _, envVar := range r.secrets {
		val := os.Getenv(envVar)
		if val != "" {
			s = strings.ReplaceAll(s, val, "<REDACTED>")
		}
	}
	return s
}
