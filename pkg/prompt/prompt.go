// Package prompt collects answers interactively: project location, name,
// bundle identifier, build variants and one icon per variant.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/ormasoftchile/appgen/pkg/browser"
	"github.com/ormasoftchile/appgen/pkg/config"
	"github.com/ormasoftchile/appgen/pkg/imaging"
	"github.com/ormasoftchile/appgen/pkg/kernel/answers"
)

// ErrAborted is returned when the user interrupts a prompt.
var ErrAborted = errors.New("prompt aborted")

// LineReader is the line-editing surface used for questions. It is
// satisfied by *readline.Instance.
type LineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
	Close() error
}

// Collector asks the questions in order and returns finalized answers.
type Collector struct {
	in  LineReader
	out io.Writer
	cfg *config.Config

	// Start is where browsing begins; the working directory when empty.
	Start string

	// BrowseDirectory and BrowseFile open the interactive picker. They
	// return "" when the user cancels.
	BrowseDirectory func(prompt, start string) (string, error)
	BrowseFile      func(prompt, start string, c browser.Constraints) (string, error)
}

// New builds a collector reading from in and echoing notices to out.
func New(in LineReader, out io.Writer, cfg *config.Config) *Collector {
	return &Collector{
		in:              in,
		out:             out,
		cfg:             cfg,
		BrowseDirectory: browser.SelectDirectory,
		BrowseFile:      browser.SelectFile,
	}
}

// NewTerminal builds a collector on a readline instance bound to the
// process terminal.
func NewTerminal(cfg *config.Config) (*Collector, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "? ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("init readline: %w", err)
	}
	return New(rl, rl.Stdout(), cfg), nil
}

// Close releases the line reader.
func (c *Collector) Close() error {
	return c.in.Close()
}

// Collect runs every question. The returned answers are finalized but not
// validated beyond what each question enforces.
func (c *Collector) Collect(ctx context.Context) (*answers.Answers, error) {
	a := &answers.Answers{}
	var err error

	if a.ProjectPath, err = c.location(ctx); err != nil {
		return nil, err
	}
	if a.ProjectName, err = c.ask(ctx, "What is your project name?", c.cfg.Project.DefaultName); err != nil {
		return nil, err
	}
	if a.BundleID, err = c.bundleID(ctx, a.ProjectName); err != nil {
		return nil, err
	}
	if a.BuildVariants, err = c.variants(ctx); err != nil {
		return nil, err
	}

	a.IconPaths = make(map[string]string, len(a.BuildVariants))
	for _, v := range a.BuildVariants {
		p, err := c.icon(ctx, v)
		if err != nil {
			return nil, err
		}
		a.IconPaths[v] = p
	}

	if err := a.Finalize(); err != nil {
		return nil, err
	}
	return a, nil
}

func (c *Collector) location(ctx context.Context) (string, error) {
	choice, err := c.choose(ctx, "Where should the project be created?", "Browse directories", "Type path manually")
	if err != nil {
		return "", err
	}
	if choice == 0 {
		dir, err := c.BrowseDirectory("Where should the project be created?", c.Start)
		if err != nil {
			return "", err
		}
		if dir == "" {
			return "./", nil
		}
		return dir, nil
	}
	def := c.cfg.Project.DefaultPath
	if def == "" || def == "." {
		def = "./"
	}
	return c.askValid(ctx, "Enter directory path (absolute or relative):", def, func(s string) string {
		if s == "" {
			return "Path cannot be empty"
		}
		return ""
	})
}

func (c *Collector) bundleID(ctx context.Context, name string) (string, error) {
	opts := c.cfg.ValidateOptions()
	return c.askValid(ctx, "What is your bundle identifier? (e.g., com.company.app)", answers.DefaultBundleID(name), func(s string) string {
		if s == "" {
			return "Bundle identifier is required"
		}
		// Only bundle_id findings matter here; the rest of the candidate just
		// has to get past the schema phase.
		candidate := &answers.Answers{ProjectName: name, BundleID: s, BuildVariants: c.cfg.Variants.Default}
		if candidate.ProjectName == "" {
			candidate.ProjectName = "app"
		}
		if len(candidate.BuildVariants) == 0 {
			candidate.BuildVariants = []string{"develop"}
		}
		for _, e := range answers.Validate(candidate, opts) {
			if e.Path == "bundle_id" && e.Severity == "error" {
				return e.Message
			}
		}
		return ""
	})
}

func (c *Collector) variants(ctx context.Context) ([]string, error) {
	available := c.cfg.Variants.Available
	defaults := c.cfg.Variants.Default
	question := fmt.Sprintf("Which build variants do you need? [%s]", strings.Join(available, ", "))

	var picked []string
	_, err := c.askValid(ctx, question, strings.Join(defaults, ","), func(s string) string {
		picked = nil
		for _, f := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' }) {
			v := strings.ToLower(f)
			if len(available) > 0 && !slices.Contains(available, v) {
				return fmt.Sprintf("Unknown build variant %q (choose from %s)", f, strings.Join(available, ", "))
			}
			if !slices.Contains(picked, v) {
				picked = append(picked, v)
			}
		}
		if len(picked) == 0 {
			return "You must select at least one build variant"
		}
		return ""
	})
	if err != nil {
		return nil, err
	}
	return picked, nil
}

func (c *Collector) icon(ctx context.Context, variant string) (string, error) {
	size := c.cfg.Icons.Size
	question := fmt.Sprintf("Select icon image (%dx%d PNG) - will be used for app icon and splash screen for %s:",
		size, size, strings.ToUpper(variant))

	choice, err := c.choose(ctx, question, "Browse files", "Type path manually", "Skip (add later)")
	if err != nil {
		return "", err
	}
	switch choice {
	case 0:
		return c.BrowseFile(question, c.Start, browser.Constraints{
			Extensions: []string{".png"},
			Width:      size,
			Height:     size,
		})
	case 1:
		return c.askValid(ctx, "Enter file path (absolute or relative):", "", func(s string) string {
			return checkIcon(s, size)
		})
	default:
		return "", nil
	}
}

func checkIcon(path string, size int) string {
	if path == "" {
		return "Path cannot be empty (or press Ctrl+C to cancel)"
	}
	if _, err := os.Stat(path); err != nil {
		return "File does not exist"
	}
	d, err := imaging.ValidateDimensions(path, size, size)
	if err != nil {
		return "Could not read image: " + err.Error()
	}
	if !d.Matches {
		return fmt.Sprintf("Image dimensions are %s, but %dx%d is required", d, size, size)
	}
	return ""
}

// choose prints numbered options and returns the picked index. An empty
// answer picks the first option.
func (c *Collector) choose(ctx context.Context, question string, options ...string) (int, error) {
	fmt.Fprintln(c.out, question)
	for i, o := range options {
		fmt.Fprintf(c.out, "  %d) %s\n", i+1, o)
	}
	var picked int
	_, err := c.askValid(ctx, "Choose", "1", func(s string) string {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > len(options) {
			return fmt.Sprintf("Enter a number between 1 and %d", len(options))
		}
		picked = n - 1
		return ""
	})
	return picked, err
}

// askValid repeats the question until check returns "".
func (c *Collector) askValid(ctx context.Context, question, def string, check func(string) string) (string, error) {
	for {
		s, err := c.ask(ctx, question, def)
		if err != nil {
			return "", err
		}
		msg := check(s)
		if msg == "" {
			return s, nil
		}
		fmt.Fprintf(c.out, ">> %s\n", msg)
	}
}

// ask reads one trimmed line; an empty line yields def.
func (c *Collector) ask(ctx context.Context, question, def string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p := "? " + question + " "
	if def != "" {
		p += "(" + def + ") "
	}
	c.in.SetPrompt(p)
	line, err := c.in.Readline()
	if err != nil {
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			return "", ErrAborted
		}
		return "", err
	}
	if s := strings.TrimSpace(line); s != "" {
		return s, nil
	}
	return def, nil
}
