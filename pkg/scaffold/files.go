package scaffold

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ormasoftchile/appgen/pkg/kernel/action"
	"github.com/ormasoftchile/appgen/pkg/kernel/eval"
)

// render writes one project file from a template, rendered against the
// answers. An existing file is left alone unless Force is set.
func (h *handlers) render(_ context.Context, inv *action.Invocation, p action.RenderTemplate) (action.Result, error) {
	if !p.Force {
		if _, err := os.Stat(p.Path); err == nil {
			return action.Immediate("kept existing " + p.Path), nil
		}
	}

	text, err := fs.ReadFile(h.templates, p.Template)
	if err != nil {
		return action.Result{}, fmt.Errorf("template %s: %w", p.Template, err)
	}
	out, err := eval.Render(p.Template, string(text), inv.Answers)
	if err != nil {
		return action.Result{}, err
	}

	if err := os.MkdirAll(filepath.Dir(p.Path), 0o755); err != nil {
		return action.Result{}, fmt.Errorf("create directory for %s: %w", p.Path, err)
	}
	if err := os.WriteFile(p.Path, out, 0o644); err != nil {
		return action.Result{}, fmt.Errorf("write %s: %w", p.Path, err)
	}
	return action.Immediate("wrote " + p.Path), nil
}

func (h *handlers) ensureDir(_ context.Context, _ *action.Invocation, p action.EnsureDir) (action.Result, error) {
	if err := os.MkdirAll(p.Path, 0o755); err != nil {
		return action.Result{}, fmt.Errorf("create %s: %w", p.Path, err)
	}
	if p.Keep {
		keep := filepath.Join(p.Path, ".gitkeep")
		if _, err := os.Stat(keep); os.IsNotExist(err) {
			if err := os.WriteFile(keep, nil, 0o644); err != nil {
				return action.Result{}, fmt.Errorf("write %s: %w", keep, err)
			}
		}
	}
	return action.Immediate(""), nil
}
