// Package pipeline builds the ordered, immutable action list for a run from
// finalized answers.
package pipeline

import (
	"fmt"
	"path/filepath"

	"github.com/ormasoftchile/appgen/pkg/kernel/action"
	"github.com/ormasoftchile/appgen/pkg/kernel/answers"
)

// Step names shown to the operator.
const (
	StepCreateProject   = "Creating Expo Project"
	StepCleanup         = "Cleaning Default Files"
	StepStructure       = "Setting Up Project Structure"
	StepAppConfig       = "Generating App Config"
	StepCopyIcons       = "Copying Icons"
	StepAdaptiveIcons   = "Generating Adaptive Icons"
	StepInstallPackages = "Installing Packages"
)

// IconDir is the icon destination relative to the project directory.
const IconDir = "src/assets/icons"

// SourceTemplates lists the source files generated under the structure step,
// as project-relative paths. Each is rendered from the template of the same
// name with a ".tmpl" suffix.
var SourceTemplates = []string{
	"src/App.tsx",
	"src/navigation/AppNavigator.tsx",
	"src/navigation/AuthNavigator.tsx",
	"src/navigation/TabNavigator.tsx",
	"src/screens/HomeScreen.tsx",
	"src/components/Button.tsx",
	"src/components/Input.tsx",
	"src/components/Header.tsx",
	"src/features/user/user.service.ts",
	"src/features/user/user.slice.ts",
	"src/features/user/user.types.ts",
	"src/services/api.ts",
	"src/store/index.ts",
	"src/store/rootReducer.ts",
	"src/hooks/useAuth.ts",
	"src/hooks/useTheme.ts",
	"src/constants/colors.ts",
	"src/constants/fonts.ts",
	"src/constants/strings.ts",
	"src/types/index.ts",
	"src/theme/index.ts",
}

// ConfigTemplates are rendered under the app-config step, always overwriting.
var ConfigTemplates = []string{
	"app.config.ts",
	"eslint.config.js",
	".env",
}

// Options tunes pipeline construction.
type Options struct {
	// NativeTypes are action types whose handlers report their own outcome;
	// they are always passed through unwrapped. Defaults to {"render"}.
	NativeTypes []string
	// SkipInstall omits the package-installation step.
	SkipInstall bool
}

// Pipeline is an ordered sequence of actions, fixed once built.
type Pipeline struct {
	actions []action.Action
}

// Actions returns a copy of the ordered actions.
func (p *Pipeline) Actions() []action.Action {
	return append([]action.Action(nil), p.actions...)
}

// Len returns the number of actions.
func (p *Pipeline) Len() int { return len(p.actions) }

// Steps returns the distinct tracked step names in first-reference order,
// including bracket steps.
func (p *Pipeline) Steps() []string {
	seen := map[string]bool{}
	var out []string
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	for _, a := range p.actions {
		switch pl := a.Payload.(type) {
		case action.CreateProject:
			add(pl.StepName)
		case action.StepBegin:
			add(pl.Step)
		default:
			add(a.StepName)
		}
	}
	return out
}

// Build emits the ordered action list for finalized answers. Every action
// type must resolve in reg; an unresolved type fails the build.
func Build(ans *answers.Answers, reg *action.Registry, opts Options) (*Pipeline, error) {
	if ans.ProjectDir == "" {
		return nil, fmt.Errorf("build pipeline: answers not finalized")
	}
	native := opts.NativeTypes
	if native == nil {
		native = []string{action.TypeRender}
	}

	b := &builder{native: make(map[string]bool, len(native))}
	for _, t := range native {
		b.native[t] = true
	}
	dir := ans.ProjectDir

	// 1. project creation reports its own step
	b.add(action.Action{Type: action.TypeCreateProject, Payload: action.CreateProject{
		BaseDir:  ans.BasePath(),
		Slug:     ans.ProjectSlug,
		StepName: StepCreateProject,
	}})

	// 2
	b.add(action.Action{Type: action.TypeCleanupDefaults, StepName: StepCleanup,
		Payload: action.CleanupDefaults{ProjectDir: dir}})

	// 3-4. folders and source files share one bracket so the step stays
	// running until the last file is written
	b.bracket(StepStructure, func() {
		b.add(action.Action{Type: action.TypeSetupStructure, Payload: action.SetupStructure{ProjectDir: dir}})
		for _, rel := range SourceTemplates {
			b.add(action.Action{Type: action.TypeRender, Payload: action.RenderTemplate{
				Template: rel + ".tmpl",
				Path:     filepath.Join(dir, filepath.FromSlash(rel)),
			}})
		}
	})

	// 5. app configuration
	b.bracket(StepAppConfig, func() {
		for _, rel := range ConfigTemplates {
			b.add(action.Action{Type: action.TypeRender, Payload: action.RenderTemplate{
				Template: rel + ".tmpl",
				Path:     filepath.Join(dir, rel),
				Force:    true,
			}})
		}
	})

	// 6. icons, in variant order
	if len(ans.IconPaths) > 0 {
		iconDir := filepath.Join(dir, filepath.FromSlash(IconDir))
		b.add(action.Action{Type: action.TypeEnsureDir, Payload: action.EnsureDir{Path: iconDir, Keep: true}})
		for _, v := range ans.BuildVariants {
			src := ans.IconSource(v)
			if src == "" {
				continue
			}
			abs, err := filepath.Abs(src)
			if err != nil {
				return nil, fmt.Errorf("build pipeline: icon for %s: %w", v, err)
			}
			iconDest := filepath.Join(iconDir, fmt.Sprintf("icon-%s.png", v))
			b.add(action.Action{Type: action.TypeCopyIcon, StepName: StepCopyIcons, Payload: action.CopyIcon{
				Variant: v,
				Source:  abs,
				Dest:    iconDest,
			}})
			b.add(action.Action{Type: action.TypeAdaptiveIcon, StepName: StepAdaptiveIcons, Payload: action.AdaptiveIcon{
				Variant: v,
				Source:  iconDest,
				Dest:    filepath.Join(iconDir, fmt.Sprintf("adaptive-icon-%s.png", v)),
			}})
		}
	}

	// 7
	if !opts.SkipInstall {
		b.add(action.Action{Type: action.TypeInstallPackages, StepName: StepInstallPackages,
			Payload: action.InstallPackages{ProjectDir: dir}})
	}

	// 8
	b.add(action.Action{Type: action.TypeFinish, Payload: action.Finish{}})

	for i, a := range b.actions {
		if _, err := reg.Resolve(a.Type); err != nil {
			return nil, fmt.Errorf("build pipeline: action %d: %w", i, err)
		}
	}
	return &Pipeline{actions: b.actions}, nil
}

type builder struct {
	actions []action.Action
	native  map[string]bool
}

// add applies the wrapping policy: native actions are never tracked.
func (b *builder) add(a action.Action) {
	if b.native[a.Type] {
		a.StepName = ""
	}
	b.actions = append(b.actions, a)
}

func (b *builder) bracket(step string, body func()) {
	b.add(action.Action{Type: action.TypeStepBegin, Payload: action.StepBegin{Step: step}})
	body()
	b.add(action.Action{Type: action.TypeStepComplete, Payload: action.StepComplete{Step: step}})
}
