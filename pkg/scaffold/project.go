package scaffold

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/ormasoftchile/appgen/pkg/kernel/action"
	"github.com/ormasoftchile/appgen/pkg/kernel/eval"
	"github.com/ormasoftchile/appgen/pkg/procexec"
)

// Folders created by setup-structure, relative to the project directory.
var Folders = []string{
	"src/navigation",
	"src/screens",
	"src/components",
	"src/features/user",
	"src/services",
	"src/store",
	"src/hooks",
	"src/constants",
	"src/assets/images",
	"src/assets/fonts",
	"src/types",
	"src/theme",
}

// DefaultFiles are the template leftovers removed by cleanup-defaults.
var DefaultFiles = []string{
	"assets/adaptive-icon.png",
	"assets/favicon.png",
	"assets/icon.png",
	"assets/splash-icon.png",
	"app.json",
	"App.tsx",
}

const indexTS = `import { registerRootComponent } from 'expo';

// Import the main app component from src
import App from './src/App';

// Register the main component
registerRootComponent(App);
`

// createProject reports its own step because the external command, not the
// pipeline, decides when the project exists.
func (h *handlers) createProject(ctx context.Context, inv *action.Invocation, p action.CreateProject) (action.Result, error) {
	step := p.StepName
	inv.Tracker.Begin(step)

	fail := func(err error) error {
		err = fmt.Errorf("failed to create Expo project: %w", err)
		inv.Tracker.Fail(step, err.Error())
		return err
	}

	if err := os.MkdirAll(p.BaseDir, 0o755); err != nil {
		return action.Result{}, fail(err)
	}
	argv, err := eval.ResolveArgs(h.cfg.Project.CreateCommand, inv.Answers)
	if err != nil {
		return action.Result{}, fail(err)
	}
	cmd, err := procexec.FromArgv(argv, p.BaseDir)
	if err != nil {
		return action.Result{}, fail(err)
	}

	return action.Go(ctx, func(ctx context.Context) (string, error) {
		if _, err := h.runner.Run(ctx, cmd); err != nil {
			return "", fail(err)
		}
		inv.Tracker.Complete(step)
		return fmt.Sprintf("Expo project %q created", p.Slug), nil
	}), nil
}

func (h *handlers) cleanupDefaults(_ context.Context, inv *action.Invocation, p action.CleanupDefaults) (action.Result, error) {
	removed := 0
	for _, rel := range DefaultFiles {
		path := filepath.Join(p.ProjectDir, filepath.FromSlash(rel))
		err := os.Remove(path)
		switch {
		case err == nil:
			removed++
		case errors.Is(err, fs.ErrNotExist):
		default:
			warn(inv, "Could not remove %s: %v", rel, err)
		}
	}

	assets := filepath.Join(p.ProjectDir, "assets")
	if entries, err := os.ReadDir(assets); err == nil && len(entries) == 0 {
		if err := os.Remove(assets); err == nil {
			removed++
		}
	}

	if removed == 0 {
		return action.Immediate("No default files found to remove"), nil
	}
	return action.Immediate(fmt.Sprintf("Removed %d default file(s)", removed)), nil
}

func (h *handlers) setupStructure(_ context.Context, _ *action.Invocation, p action.SetupStructure) (action.Result, error) {
	for _, rel := range Folders {
		if err := os.MkdirAll(filepath.Join(p.ProjectDir, filepath.FromSlash(rel)), 0o755); err != nil {
			return action.Result{}, fmt.Errorf("create %s: %w", rel, err)
		}
	}
	if err := os.WriteFile(filepath.Join(p.ProjectDir, "index.ts"), []byte(indexTS), 0o644); err != nil {
		return action.Result{}, fmt.Errorf("write index.ts: %w", err)
	}
	return action.Immediate("Created src folder structure"), nil
}

// installPackages rewrites package.json and installs every dependency at its
// latest version. The compatibility fix afterwards only warns on failure.
func (h *handlers) installPackages(ctx context.Context, inv *action.Invocation, p action.InstallPackages) (action.Result, error) {
	dir := p.ProjectDir
	if _, err := os.Stat(dir); err != nil && !h.dryRun {
		return action.Result{}, fmt.Errorf("project directory not found: %s", dir)
	}

	pkgPath := filepath.Join(dir, "package.json")
	switch err := rewritePackageJSON(pkgPath, h.cfg.Install.Scripts, h.cfg.Install.Dependencies, h.cfg.Install.DevDependencies); {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist) && h.dryRun:
		inv.Report.Detail("package.json not found; skipping rewrite (dry run)")
	case errors.Is(err, fs.ErrNotExist):
		return action.Result{}, fmt.Errorf("package.json not found in %s", dir)
	default:
		return action.Result{}, err
	}

	install := installCommand(h.cfg.Install.Command, h.cfg.Install.Dependencies, h.cfg.Install.DevDependencies, dir)
	var fix *procexec.Command
	if len(h.cfg.Install.FixCommand) > 0 {
		argv, err := eval.ResolveArgs(h.cfg.Install.FixCommand, inv.Answers)
		if err != nil {
			return action.Result{}, fmt.Errorf("fix command: %w", err)
		}
		c, err := procexec.FromArgv(argv, dir)
		if err != nil {
			return action.Result{}, fmt.Errorf("fix command: %w", err)
		}
		fix = &c
	}

	return action.Go(ctx, func(ctx context.Context) (string, error) {
		if _, err := h.runner.Run(ctx, install); err != nil {
			return "", fmt.Errorf("failed to install packages: %w", err)
		}
		if fix != nil {
			if _, err := h.runner.Run(ctx, *fix); err != nil {
				warn(inv, "%s failed; packages are installed, run it manually later: %v", fix, err)
			}
		}
		return "Packages installed successfully", nil
	}), nil
}

// rewritePackageJSON replaces scripts and both dependency sets, keeping
// every other field.
func rewritePackageJSON(path string, scripts, deps, devDeps map[string]string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var pkg map[string]any
	if err := json.Unmarshal(data, &pkg); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	pkg["scripts"] = scripts
	pkg["dependencies"] = deps
	pkg["devDependencies"] = devDeps

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(pkg); err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// installCommand appends "<name>@latest" for every dependency, runtime
// dependencies first, each set in name order.
func installCommand(prefix []string, deps, devDeps map[string]string, dir string) procexec.Command {
	args := append([]string(nil), prefix[1:]...)
	for _, set := range []map[string]string{deps, devDeps} {
		names := make([]string, 0, len(set))
		for name := range set {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			args = append(args, name+"@latest")
		}
	}
	return procexec.Command{Name: prefix[0], Args: args, Dir: dir}
}
