// Package browser is an interactive filesystem picker used while collecting
// answers: one mode selects a directory, the other a file, optionally
// checked against required image dimensions.
package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/ormasoftchile/appgen/pkg/imaging"
)

// Mode selects what the browser picks.
type Mode int

const (
	ModeDirectory Mode = iota
	ModeFile
)

// State is the browser's lifecycle. Selected and Cancelled are final.
type State int

const (
	StateBrowsing State = iota
	StateSelected
	StateCancelled
)

// EntryKind classifies a row in the listing.
type EntryKind int

const (
	EntryParent EntryKind = iota
	EntrySelect
	EntryDir
	EntryFile
)

// Entry is one selectable row.
type Entry struct {
	Kind EntryKind
	Name string
	Path string
}

// Label is the text shown for the entry.
func (e Entry) Label() string {
	switch e.Kind {
	case EntryParent:
		return "📁 .. (Parent Directory)"
	case EntrySelect:
		return "✓ Select this directory"
	case EntryDir:
		return "📁 " + e.Name + "/"
	default:
		return "🖼  " + e.Name
	}
}

// Constraints restrict which files can be picked in file mode.
type Constraints struct {
	// Extensions are lowercase, dot-prefixed. Empty accepts any file.
	Extensions []string
	// Width and Height, when both positive, are the required image size.
	Width  int
	Height int
}

func (c Constraints) accepts(name string) bool {
	if len(c.Extensions) == 0 {
		return true
	}
	return slices.Contains(c.Extensions, strings.ToLower(filepath.Ext(name)))
}

// ListEntries builds the rows for dir: parent (unless dir is a root),
// "select this directory" in directory mode, sub-directories sorted by name
// with hidden ones and node_modules left out, then matching files in file
// mode.
func ListEntries(dir string, mode Mode, c Constraints) ([]Entry, error) {
	items, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	if parent := filepath.Dir(dir); parent != dir {
		entries = append(entries, Entry{Kind: EntryParent, Name: "..", Path: parent})
	}
	if mode == ModeDirectory {
		entries = append(entries, Entry{Kind: EntrySelect, Name: ".", Path: dir})
	}

	var dirs, files []Entry
	for _, it := range items {
		name := it.Name()
		switch {
		case it.IsDir():
			if strings.HasPrefix(name, ".") || name == "node_modules" {
				continue
			}
			dirs = append(dirs, Entry{Kind: EntryDir, Name: name, Path: filepath.Join(dir, name)})
		case mode == ModeFile && it.Type().IsRegular() && c.accepts(name):
			files = append(files, Entry{Kind: EntryFile, Name: name, Path: filepath.Join(dir, name)})
		}
	}
	// os.ReadDir already sorts by filename.
	entries = append(entries, dirs...)
	return append(entries, files...), nil
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("51"))
	cursorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

const defaultPageSize = 15

// Model is the Bubble Tea model of the picker.
type Model struct {
	mode     Mode
	prompt   string
	cons     Constraints
	dir      string
	entries  []Entry
	cursor   int
	offset   int
	pageSize int
	width    int // 0 until the first WindowSizeMsg; no truncation
	state    State
	selected string
	notice   string
	help     help.Model
}

// New opens the browser at start (the working directory when empty).
func New(mode Mode, prompt, start string, c Constraints) (Model, error) {
	if start == "" {
		start = "."
	}
	abs, err := filepath.Abs(start)
	if err != nil {
		return Model{}, err
	}
	m := Model{
		mode:     mode,
		prompt:   prompt,
		cons:     c,
		pageSize: defaultPageSize,
		help:     help.New(),
	}
	if err := m.open(abs); err != nil {
		return Model{}, fmt.Errorf("read directory %s: %w", abs, err)
	}
	return m, nil
}

// State reports where the browser is in its lifecycle.
func (m Model) State() State { return m.state }

// Selected is the chosen path; empty unless State is StateSelected.
func (m Model) Selected() string { return m.selected }

// Dir is the directory currently listed.
func (m Model) Dir() string { return m.dir }

// Entries are the rows currently listed.
func (m Model) Entries() []Entry { return m.entries }

// Cursor is the index of the highlighted row.
func (m Model) Cursor() int { return m.cursor }

// Notice is the message shown below the listing, if any.
func (m Model) Notice() string { return m.notice }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state != StateBrowsing {
		return m, nil
	}
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.pageSize = max(3, msg.Height-6)
		m.scroll()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.state = StateCancelled
			return m, tea.Quit
		case key.Matches(msg, keys.Up):
			m.move(-1)
		case key.Matches(msg, keys.Down):
			m.move(1)
		case key.Matches(msg, keys.PgUp):
			m.move(-m.pageSize)
		case key.Matches(msg, keys.PgDown):
			m.move(m.pageSize)
		case key.Matches(msg, keys.Back):
			if parent := filepath.Dir(m.dir); parent != m.dir {
				m.navigate(parent)
			}
		case key.Matches(msg, keys.Open):
			if len(m.entries) == 0 {
				return m, nil
			}
			if m.choose(m.entries[m.cursor]) {
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

// choose acts on an entry and reports whether a selection was made.
func (m *Model) choose(e Entry) bool {
	switch e.Kind {
	case EntryParent, EntryDir:
		m.navigate(e.Path)
	case EntrySelect:
		m.state = StateSelected
		m.selected = e.Path
		return true
	case EntryFile:
		if !m.cons.accepts(e.Name) {
			m.notice = "Not a supported file type: " + e.Name
			return false
		}
		if m.cons.Width > 0 && m.cons.Height > 0 {
			d, err := imaging.ValidateDimensions(e.Path, m.cons.Width, m.cons.Height)
			if err != nil {
				m.notice = "Could not read image: " + err.Error()
				return false
			}
			if !d.Matches {
				m.notice = fmt.Sprintf("Image dimensions are %s, but %dx%d is required. Please select a different file.",
					d, m.cons.Width, m.cons.Height)
				return false
			}
		}
		m.state = StateSelected
		m.selected = e.Path
		return true
	}
	return false
}

func (m *Model) navigate(dir string) {
	if err := m.open(dir); err != nil {
		m.notice = "Error reading directory: " + err.Error()
	}
}

func (m *Model) open(dir string) error {
	entries, err := ListEntries(dir, m.mode, m.cons)
	if err != nil {
		return err
	}
	m.dir = dir
	m.entries = entries
	m.cursor = 0
	m.offset = 0
	m.notice = ""
	return nil
}

func (m *Model) move(delta int) {
	if len(m.entries) == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.entries)-1)
	m.scroll()
}

func (m *Model) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.pageSize {
		m.offset = m.cursor - m.pageSize + 1
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.state != StateBrowsing {
		return ""
	}
	var b strings.Builder
	if m.prompt != "" {
		b.WriteString(titleStyle.Render(m.prompt) + "\n")
	}
	b.WriteString(dimStyle.Render(truncate("📁 Browse: "+m.dir, m.width)) + "\n\n")

	end := min(m.offset+m.pageSize, len(m.entries))
	for i := m.offset; i < end; i++ {
		label := truncate(m.entries[i].Label(), m.width-4)
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("❯ "+label) + "\n")
		} else {
			b.WriteString("  " + label + "\n")
		}
	}
	if m.mode == ModeFile && !m.hasFiles() {
		b.WriteString(noticeStyle.Render("  ⚠ No matching files in this directory") + "\n")
	}
	if m.notice != "" {
		b.WriteString("\n" + noticeStyle.Render(truncate(m.notice, m.width)) + "\n")
	}
	b.WriteString("\n" + m.help.View(keys) + "\n")
	return b.String()
}

func (m Model) hasFiles() bool {
	for _, e := range m.entries {
		if e.Kind == EntryFile {
			return true
		}
	}
	return false
}

func truncate(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// run drives a model to completion on the terminal.
func run(m Model) (string, error) {
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return "", err
	}
	fm := final.(Model)
	if fm.State() != StateSelected {
		return "", nil
	}
	return fm.Selected(), nil
}

// SelectDirectory lets the user pick a directory starting at start. It
// returns "" when the user cancels.
func SelectDirectory(prompt, start string) (string, error) {
	m, err := New(ModeDirectory, prompt, start, Constraints{})
	if err != nil {
		return "", err
	}
	return run(m)
}

// SelectFile lets the user pick a file matching c starting at start. A file
// failing the dimension check is rejected in place and the user keeps
// browsing. It returns "" when the user cancels.
func SelectFile(prompt, start string, c Constraints) (string, error) {
	m, err := New(ModeFile, prompt, start, c)
	if err != nil {
		return "", err
	}
	return run(m)
}
