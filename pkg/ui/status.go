package ui

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/ormasoftchile/appgen/pkg/kernel/answers"
	"github.com/ormasoftchile/appgen/pkg/kernel/tracker"
)

// StatusPrinter prints step transitions and report lines as they happen.
// It is both a tracker sink and an action reporter. In plain mode every
// step line has the form "<status> step <n>: <name>" with no styling.
type StatusPrinter struct {
	mu      sync.Mutex
	out     io.Writer
	plain   bool
	summary *answers.Summary
}

// NewStatusPrinter writes to w. Plain disables colors and glyphs.
func NewStatusPrinter(w io.Writer, plain bool) *StatusPrinter {
	return &StatusPrinter{out: w, plain: plain}
}

// StepChanged implements tracker.Sink.
func (p *StatusPrinter) StepChanged(s tracker.Step) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.plain {
		fmt.Fprintln(p.out, s.Line())
		if s.Status == tracker.StatusFailed && s.Reason != "" {
			fmt.Fprintf(p.out, "  reason: %s\n", s.Reason)
		}
		return
	}

	label := fmt.Sprintf("Step %d: %s", s.Ordinal, s.Name)
	switch s.Status {
	case tracker.StatusRunning:
		fmt.Fprintf(p.out, "  %s %s\n", stepRunning.Render(GlyphRunning), label)
	case tracker.StatusSucceeded:
		fmt.Fprintf(p.out, "  %s %s\n", stepSucceeded.Render(GlyphSucceeded), label)
	case tracker.StatusFailed:
		fmt.Fprintf(p.out, "  %s %s\n", stepFailed.Render(GlyphFailed), label)
		if s.Reason != "" {
			fmt.Fprintf(p.out, "    %s\n", failReason.Render("FAIL: "+s.Reason))
		}
	}
}

// Detail implements action.Reporter.
func (p *StatusPrinter) Detail(msg string) {
	p.line(GlyphSucceeded, detailStyle, msg)
}

// Skipped implements action.Reporter.
func (p *StatusPrinter) Skipped(msg string) {
	p.line(GlyphSkipped, skippedStyle, msg)
}

// Warn implements action.Reporter.
func (p *StatusPrinter) Warn(msg string) {
	p.line(GlyphWarning, warnStyle, msg)
}

// Summary implements action.Reporter. The summary is kept and printed by
// the caller once the run has finished.
func (p *StatusPrinter) Summary(s *answers.Summary) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.summary = s
}

// LastSummary returns the summary reported by the run, if any.
func (p *StatusPrinter) LastSummary() *answers.Summary {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.summary
}

func (p *StatusPrinter) line(glyph string, style lipgloss.Style, msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.plain {
		fmt.Fprintf(p.out, "    %s\n", msg)
		return
	}
	fmt.Fprintf(p.out, "    %s %s\n", style.Render(glyph), msg)
}
