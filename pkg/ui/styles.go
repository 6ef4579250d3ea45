// Package ui renders pipeline progress, report lines and the run summary
// to the terminal.
package ui

import "github.com/charmbracelet/lipgloss"

// Step status glyphs: meaning does not rely on color alone.
const (
	GlyphRunning   = "○"
	GlyphSucceeded = "✓"
	GlyphFailed    = "✗"
	GlyphSkipped   = "⊘"
	GlyphWarning   = "⚠"
)

var (
	colorGreen  = lipgloss.Color("42")
	colorRed    = lipgloss.Color("196")
	colorYellow = lipgloss.Color("214")
	colorCyan   = lipgloss.Color("51")
	colorDim    = lipgloss.Color("240")
	colorWhite  = lipgloss.Color("255")
)

// --- Header ---

var headerStyle = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(colorCyan).
	Foreground(colorWhite).
	Bold(true).
	Padding(0, 2).
	Width(61)

// --- Step lines ---

var (
	stepRunning = lipgloss.NewStyle().
			Foreground(colorCyan)

	stepSucceeded = lipgloss.NewStyle().
			Foreground(colorGreen)

	stepFailed = lipgloss.NewStyle().
			Foreground(colorRed)

	failReason = lipgloss.NewStyle().
			Foreground(colorRed)
)

// --- Report lines ---

var (
	detailStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	skippedStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	warnStyle = lipgloss.NewStyle().
			Foreground(colorYellow).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)
)

// --- Outcome ---

var (
	successStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)
)
