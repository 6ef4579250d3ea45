package prompt

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chzyer/readline"

	"github.com/ormasoftchile/appgen/pkg/browser"
	"github.com/ormasoftchile/appgen/pkg/config"
)

// scripted replays fixed lines and records every prompt shown.
type scripted struct {
	lines   []string
	prompts []string
	closed  bool
}

func (s *scripted) Readline() (string, error) {
	if len(s.lines) == 0 {
		return "", readline.ErrInterrupt
	}
	l := s.lines[0]
	s.lines = s.lines[1:]
	return l, nil
}

func (s *scripted) SetPrompt(p string) { s.prompts = append(s.prompts, p) }

func (s *scripted) Close() error {
	s.closed = true
	return nil
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Icons.Size = 16
	return cfg
}

func writeIcon(t *testing.T, dir, name string, size int) string {
	t.Helper()
	p := filepath.Join(dir, name)
	f, err := os.Create(p)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewNRGBA(image.Rect(0, 0, size, size))); err != nil {
		t.Fatal(err)
	}
	return p
}

func newCollector(lines ...string) (*Collector, *scripted, *bytes.Buffer) {
	in := &scripted{lines: lines}
	var out bytes.Buffer
	c := New(in, &out, testConfig())
	c.BrowseDirectory = func(string, string) (string, error) {
		return "", errors.New("unexpected directory browse")
	}
	c.BrowseFile = func(string, string, browser.Constraints) (string, error) {
		return "", errors.New("unexpected file browse")
	}
	return c, in, &out
}

func TestCollect_TypedAnswers(t *testing.T) {
	dir := t.TempDir()
	good := writeIcon(t, dir, "good.png", 16)
	bad := writeIcon(t, dir, "bad.png", 8)

	c, _, out := newCollector(
		"2", dir, // type the location
		"Demo Shop",
		"com.demo-shop.app", // rejected: hyphen
		"",                  // default com.demoshop.app
		"develop, staging",  // rejected: unknown
		"develop,prod,develop",
		"2", "", bad, filepath.Join(dir, "missing.png"), good, // develop: typed, re-prompted until valid
		"3", // prod: skipped
	)

	a, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if a.ProjectName != "Demo Shop" || a.ProjectSlug != "demo-shop" {
		t.Errorf("name=%q slug=%q", a.ProjectName, a.ProjectSlug)
	}
	if a.BundleID != "com.demoshop.app" {
		t.Errorf("bundle = %q", a.BundleID)
	}
	if strings.Join(a.BuildVariants, ",") != "develop,prod" {
		t.Errorf("variants = %v", a.BuildVariants)
	}
	if a.IconPaths["develop"] != good || a.IconPaths["prod"] != "" {
		t.Errorf("icons = %v", a.IconPaths)
	}
	if _, ok := a.IconPaths["prod"]; !ok {
		t.Error("skipped variant should still have an entry")
	}
	if a.ProjectDir != filepath.Join(dir, "demo-shop") {
		t.Errorf("project dir = %q", a.ProjectDir)
	}

	for _, want := range []string{
		"Bundle identifier cannot contain hyphens. Use dots (.) instead.",
		`Unknown build variant "staging"`,
		"Path cannot be empty (or press Ctrl+C to cancel)",
		"Image dimensions are 8x8, but 16x16 is required",
		"File does not exist",
		"for DEVELOP:",
		"3) Skip (add later)",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestCollect_Browse(t *testing.T) {
	dir := t.TempDir()
	c, in, _ := newCollector("1", "", "", "prod", "1")
	c.Start = dir

	var gotConstraints browser.Constraints
	c.BrowseDirectory = func(_, start string) (string, error) {
		if start != dir {
			t.Errorf("browse start = %q", start)
		}
		return dir, nil
	}
	c.BrowseFile = func(_, _ string, cons browser.Constraints) (string, error) {
		gotConstraints = cons
		return "", nil // cancelled
	}

	a, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if a.ProjectName != "Test Expo App" || a.BundleID != "com.testexpoapp.app" {
		t.Errorf("defaults not applied: %q %q", a.ProjectName, a.BundleID)
	}
	if a.BasePath() != dir {
		t.Errorf("base = %q", a.BasePath())
	}
	if gotConstraints.Width != 16 || gotConstraints.Extensions[0] != ".png" {
		t.Errorf("constraints = %+v", gotConstraints)
	}
	if a.IconPaths["prod"] != "" {
		t.Errorf("cancelled browse should skip the icon, got %q", a.IconPaths["prod"])
	}
	if !strings.HasSuffix(in.prompts[1], "(Test Expo App) ") {
		t.Errorf("name prompt = %q", in.prompts[1])
	}
}

func TestCollect_CancelledDirectoryBrowse(t *testing.T) {
	c, _, _ := newCollector("1", "x", "", "develop", "3")
	c.BrowseDirectory = func(string, string) (string, error) { return "", nil }
	t.Chdir(t.TempDir())

	a, err := c.Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if a.ProjectPath != "." {
		t.Errorf("project path = %q, want .", a.ProjectPath)
	}
}

func TestCollect_Interrupted(t *testing.T) {
	c, _, _ := newCollector("2", "./")
	if _, err := c.Collect(context.Background()); !errors.Is(err, ErrAborted) {
		t.Errorf("err = %v, want ErrAborted", err)
	}
}

func TestCollect_ContextCancelled(t *testing.T) {
	c, _, _ := newCollector("2")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Collect(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
}

func TestChoose_Reprompts(t *testing.T) {
	c, _, out := newCollector("9", "abc", "2")
	got, err := c.choose(context.Background(), "Pick", "a", "b")
	if err != nil {
		t.Fatal(err)
	}
	if got != 1 {
		t.Errorf("choice = %d", got)
	}
	if strings.Count(out.String(), "Enter a number between 1 and 2") != 2 {
		t.Errorf("output:\n%s", out.String())
	}
}

func TestClose(t *testing.T) {
	c, in, _ := newCollector()
	if err := c.Close(); err != nil || !in.closed {
		t.Error("reader not closed")
	}
}
