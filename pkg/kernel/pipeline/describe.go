package pipeline

import (
	"fmt"
	"path/filepath"

	"github.com/ormasoftchile/appgen/pkg/kernel/action"
)

// Entry is one action rendered for plan output.
type Entry struct {
	Index   int            `json:"index" yaml:"index"`
	Type    string         `json:"type" yaml:"type"`
	Step    string         `json:"step,omitempty" yaml:"step,omitempty"`
	Detail  string         `json:"detail,omitempty" yaml:"detail,omitempty"`
	Payload action.Payload `json:"payload,omitempty" yaml:"payload,omitempty"`
}

// Entries returns the plan in a serializable form.
func (p *Pipeline) Entries() []Entry {
	out := make([]Entry, len(p.actions))
	for i, a := range p.actions {
		out[i] = Entry{
			Index:   i + 1,
			Type:    a.Type,
			Step:    a.StepName,
			Detail:  detail(a.Payload),
			Payload: a.Payload,
		}
	}
	return out
}

// Describe returns one human-readable line per action.
func (p *Pipeline) Describe() []string {
	lines := make([]string, len(p.actions))
	for i, e := range p.Entries() {
		step := ""
		if e.Step != "" {
			step = fmt.Sprintf(" [%s]", e.Step)
		}
		lines[i] = fmt.Sprintf("%2d. %-17s%s %s", e.Index, e.Type, step, e.Detail)
	}
	return lines
}

func detail(p action.Payload) string {
	switch pl := p.(type) {
	case action.CreateProject:
		return fmt.Sprintf("%s in %s", pl.Slug, pl.BaseDir)
	case action.CleanupDefaults:
		return pl.ProjectDir
	case action.SetupStructure:
		return pl.ProjectDir
	case action.StepBegin:
		return "begin " + pl.Step
	case action.StepComplete:
		return "complete " + pl.Step
	case action.RenderTemplate:
		if pl.Force {
			return filepath.Base(pl.Path) + " (overwrite)"
		}
		return pl.Path
	case action.EnsureDir:
		return pl.Path
	case action.CopyIcon:
		return fmt.Sprintf("%s: %s -> %s", pl.Variant, pl.Source, filepath.Base(pl.Dest))
	case action.AdaptiveIcon:
		return fmt.Sprintf("%s: %s", pl.Variant, filepath.Base(pl.Dest))
	case action.InstallPackages:
		return pl.ProjectDir
	default:
		return ""
	}
}
