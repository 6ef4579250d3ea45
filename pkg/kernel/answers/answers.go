// Package answers holds the single mutable record shared by every action of
// a pipeline run: the user's answers, values derived from them, and the
// per-variant signals steps use to talk to each other.
package answers

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Answers is the Answer State of one pipeline run.
type Answers struct {
	ProjectPath   string            `yaml:"project_path,omitempty" json:"project_path,omitempty" jsonschema:"description=Directory the project folder is created in (default .)"`
	ProjectName   string            `yaml:"project_name" json:"project_name" jsonschema:"minLength=1,description=Human readable project name"`
	ProjectSlug   string            `yaml:"project_slug,omitempty" json:"project_slug,omitempty" jsonschema:"description=Folder and package slug (derived from project_name when empty)"`
	BundleID      string            `yaml:"bundle_id,omitempty" json:"bundle_id,omitempty" jsonschema:"description=Reverse-domain bundle identifier (derived from project_name when empty)"`
	BuildVariants []string          `yaml:"build_variants" json:"build_variants" jsonschema:"minItems=1,description=Selected build variants"`
	IconPaths     map[string]string `yaml:"icon_paths,omitempty" json:"icon_paths,omitempty" jsonschema:"description=1024x1024 PNG icon source per variant; empty means skipped"`

	// ProjectDir is the resolved absolute target directory.
	ProjectDir string `yaml:"-" json:"-"`

	Signals Signals `yaml:"-" json:"-"`
}

var nonAlnumRun = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases name, collapses every run of non-alphanumerics to a
// single "-" and trims leading and trailing dashes.
func Slugify(name string) string {
	s := nonAlnumRun.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}

// DefaultBundleID derives "com.<name>.app" from the project name, keeping
// only lowercase alphanumerics and dropping a leading digit.
func DefaultBundleID(name string) string {
	s := nonAlnumRun.ReplaceAllString(strings.ToLower(name), "")
	if s != "" && s[0] >= '0' && s[0] <= '9' {
		s = s[1:]
	}
	return fmt.Sprintf("com.%s.app", s)
}

// Finalize fills in derived values. It is called once after prompting or
// loading and before the pipeline is built.
func (a *Answers) Finalize() error {
	a.ProjectPath = strings.TrimRight(strings.TrimSpace(a.ProjectPath), "/")
	if a.ProjectPath == "" {
		a.ProjectPath = "."
	}
	a.ProjectName = strings.TrimSpace(a.ProjectName)
	if a.ProjectSlug == "" {
		a.ProjectSlug = Slugify(a.ProjectName)
	}
	if a.BundleID == "" && a.ProjectName != "" {
		a.BundleID = DefaultBundleID(a.ProjectName)
	}
	if a.IconPaths == nil {
		a.IconPaths = make(map[string]string, len(a.BuildVariants))
	}
	for v, p := range a.IconPaths {
		a.IconPaths[v] = strings.TrimSpace(p)
	}

	base, err := filepath.Abs(a.ProjectPath)
	if err != nil {
		return fmt.Errorf("resolve project path %q: %w", a.ProjectPath, err)
	}
	a.ProjectDir = filepath.Join(base, a.ProjectSlug)
	return nil
}

// BasePath is the absolute directory the project is created in.
func (a *Answers) BasePath() string {
	return filepath.Dir(a.ProjectDir)
}

// DefaultVariant is the variant written to the generated .env file.
func (a *Answers) DefaultVariant() string {
	if len(a.BuildVariants) == 0 {
		return ""
	}
	return a.BuildVariants[0]
}

// IconSource returns the trimmed icon source for a variant ("" when skipped).
func (a *Answers) IconSource(variant string) string {
	return a.IconPaths[variant]
}

// ConfiguredIconCount counts icon entries as configured, including entries
// the user skipped or that later failed validation.
func (a *Answers) ConfiguredIconCount() int {
	return len(a.IconPaths)
}

// Summary is the record produced by a successful run.
type Summary struct {
	ProjectName   string           `json:"project_name" yaml:"project_name"`
	ProjectPath   string           `json:"project_path" yaml:"project_path"`
	ProjectSlug   string           `json:"project_slug" yaml:"project_slug"`
	BuildVariants []string         `json:"build_variants" yaml:"build_variants"`
	IconCount     int              `json:"icon_count" yaml:"icon_count"`
	Icons         []VariantOutcome `json:"icons,omitempty" yaml:"icons,omitempty"`
	Warnings      []string         `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Summary derives the run summary from the current state.
func (a *Answers) Summary() *Summary {
	return &Summary{
		ProjectName:   a.ProjectName,
		ProjectPath:   a.ProjectDir,
		ProjectSlug:   a.ProjectSlug,
		BuildVariants: append([]string(nil), a.BuildVariants...),
		IconCount:     a.ConfiguredIconCount(),
		Icons:         a.Signals.Outcomes(a.BuildVariants, a.IconPaths),
		Warnings:      a.Signals.Warnings(),
	}
}

// Map returns the summary as a generic map for trace events.
func (s *Summary) Map() map[string]any {
	return map[string]any{
		"project_name":   s.ProjectName,
		"project_path":   s.ProjectPath,
		"project_slug":   s.ProjectSlug,
		"build_variants": s.BuildVariants,
		"icon_count":     s.IconCount,
	}
}
