// Package procexec runs the external processes used to create and install
// projects.
package procexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// Command is one external process invocation.
type Command struct {
	Name string   `yaml:"name" json:"name"`
	Args []string `yaml:"args,omitempty" json:"args,omitempty"`
	Dir  string   `yaml:"dir,omitempty" json:"dir,omitempty"`
	Env  []string `yaml:"env,omitempty" json:"env,omitempty"` // extra KEY=VALUE entries
}

// FromArgv builds a command from a resolved argv.
func FromArgv(argv []string, dir string) (Command, error) {
	if len(argv) == 0 {
		return Command{}, fmt.Errorf("empty argv")
	}
	return Command{Name: argv[0], Args: argv[1:], Dir: dir}, nil
}

// String renders the command line for display.
func (c Command) String() string {
	parts := append([]string{c.Name}, c.Args...)
	for i, p := range parts {
		if strings.ContainsAny(p, " \t\"'") {
			parts[i] = fmt.Sprintf("%q", p)
		}
	}
	return strings.Join(parts, " ")
}

// Result is the output of a finished process.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Runner runs a command to completion. A non-zero exit is returned as a
// *ProcessError together with the result.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, cmd Command) (*Result, error)

// Run implements Runner.
func (f RunnerFunc) Run(ctx context.Context, cmd Command) (*Result, error) { return f(ctx, cmd) }

// ProcessError reports a process that could not start or exited non-zero.
// Its message carries the process's stderr text.
type ProcessError struct {
	Command  Command
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ProcessError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Command.Name, e.Err)
	if tail := lastLines(e.Stderr, 5); tail != "" {
		msg += ": " + tail
	}
	return msg
}

func (e *ProcessError) Unwrap() error { return e.Err }

func lastLines(s string, n int) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}

// ExecRunner runs commands with os/exec, capturing output.
type ExecRunner struct {
	// Retries is how many times a non-zero exit is retried with exponential
	// backoff. Zero disables retry. Failures to start are never retried.
	Retries         int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Log             zerolog.Logger
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	if r.Retries <= 0 {
		return r.once(ctx, cmd)
	}

	b := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(orDefault(r.InitialInterval, time.Second)),
		backoff.WithMaxInterval(orDefault(r.MaxInterval, 10*time.Second)),
		backoff.WithMaxElapsedTime(0),
	)
	attempt := 0
	return backoff.RetryWithData(func() (*Result, error) {
		attempt++
		res, err := r.once(ctx, cmd)
		if err == nil {
			return res, nil
		}
		var pe *ProcessError
		if errors.As(err, &pe) && pe.ExitCode > 0 {
			r.Log.Warn().Str("command", cmd.String()).Int("attempt", attempt).Int("exit_code", pe.ExitCode).Msg("command failed, retrying")
			return res, err
		}
		return res, backoff.Permanent(err)
	}, backoff.WithContext(backoff.WithMaxRetries(b, uint64(r.Retries)), ctx))
}

func (r *ExecRunner) once(ctx context.Context, cmd Command) (*Result, error) {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...) //#nosec G204 -- argv comes from the operator's configuration
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	r.Log.Debug().Str("command", cmd.String()).Str("dir", cmd.Dir).Msg("exec")
	start := time.Now()
	err := c.Run()
	res := &Result{
		Stdout:   normalizeLineEndings(stdout.String()),
		Stderr:   normalizeLineEndings(stderr.String()),
		Duration: time.Since(start),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		} else {
			res.ExitCode = -1
		}
		return res, &ProcessError{Command: cmd, ExitCode: res.ExitCode, Stderr: res.Stderr, Err: err}
	}
	return res, nil
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// normalizeLineEndings replaces \r\n with \n for cross-platform consistency.
func normalizeLineEndings(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

// DryRunner prints commands instead of running them and always succeeds.
type DryRunner struct {
	Out io.Writer
}

// Run implements Runner.
func (d *DryRunner) Run(_ context.Context, cmd Command) (*Result, error) {
	out := d.Out
	if out == nil {
		out = os.Stdout
	}
	if cmd.Dir != "" {
		fmt.Fprintf(out, "  [dry-run] would execute: %s (in %s)\n", cmd, cmd.Dir)
	} else {
		fmt.Fprintf(out, "  [dry-run] would execute: %s\n", cmd)
	}
	return &Result{}, nil
}
