// Package scaffold implements the project-generation action handlers and
// registers them with an action registry.
package scaffold

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/ormasoftchile/appgen/pkg/config"
	"github.com/ormasoftchile/appgen/pkg/kernel/action"
	"github.com/ormasoftchile/appgen/pkg/procexec"
)

//go:embed all:templates
var embedded embed.FS

// Deps are the collaborators the handlers use.
type Deps struct {
	Runner    procexec.Runner
	Config    *config.Config
	Templates fs.FS // defaults to Templates(Config.Templates.Dir)

	// DryRun tolerates a project that was never created because external
	// commands only printed what they would do.
	DryRun bool
}

type handlers struct {
	runner    procexec.Runner
	cfg       *config.Config
	templates fs.FS
	dryRun    bool
}

// Register registers every scaffold handler. Orchestration actions
// (step brackets and finish) are registered by the engine.
func Register(reg *action.Registry, deps Deps) error {
	if deps.Runner == nil {
		return errors.New("scaffold: runner is required")
	}
	cfg := deps.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	tmpl := deps.Templates
	if tmpl == nil {
		tmpl = Templates(cfg.Templates.Dir)
	}
	h := &handlers{runner: deps.Runner, cfg: cfg, templates: tmpl, dryRun: deps.DryRun}

	for _, r := range []struct {
		typ     string
		handler action.Handler
	}{
		{action.TypeCreateProject, action.Typed(h.createProject)},
		{action.TypeCleanupDefaults, action.Typed(h.cleanupDefaults)},
		{action.TypeSetupStructure, action.Typed(h.setupStructure)},
		{action.TypeRender, action.Typed(h.render)},
		{action.TypeEnsureDir, action.Typed(h.ensureDir)},
		{action.TypeCopyIcon, action.Typed(h.copyIcon)},
		{action.TypeAdaptiveIcon, action.Typed(h.adaptiveIcon)},
		{action.TypeInstallPackages, action.Typed(h.installPackages)},
	} {
		if err := reg.Register(r.typ, r.handler); err != nil {
			return fmt.Errorf("scaffold: %w", err)
		}
	}
	return nil
}

// Templates returns the project file templates. Files in dir, when set,
// take precedence over the embedded set.
func Templates(dir string) fs.FS {
	base, _ := fs.Sub(embedded, "templates")
	if dir == "" {
		return base
	}
	return overlayFS{top: os.DirFS(dir), base: base}
}

// TemplateNames lists every embedded template path.
func TemplateNames() ([]string, error) {
	var names []string
	err := fs.WalkDir(embedded, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			names = append(names, strings.TrimPrefix(path, "templates/"))
		}
		return nil
	})
	return names, err
}

// overlayFS serves files from top, falling back to base when top lacks them.
type overlayFS struct {
	top, base fs.FS
}

func (o overlayFS) Open(name string) (fs.File, error) {
	f, err := o.top.Open(name)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return o.base.Open(name)
}

// warn reports a non-fatal problem and keeps it for the summary.
func warn(inv *action.Invocation, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	inv.Answers.Signals.Warn(msg)
	inv.Report.Warn(msg)
}

func variantTag(v string) string {
	if v == "" {
		return ""
	}
	return "[" + strings.ToUpper(v) + "]"
}
