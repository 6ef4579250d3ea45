package answers

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// ValidationError represents one error or warning from the validation pipeline.
type ValidationError struct {
	Phase    string `json:"phase"` // structural, semantic, domain
	Path     string `json:"path"`  // JSON-path-like location
	Message  string `json:"message"`
	Severity string `json:"severity"` // error, warning
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("[%s] %s at %s", e.Phase, e.Message, e.Path)
	}
	return fmt.Sprintf("[%s] %s", e.Phase, e.Message)
}

func errorf(phase, path, msg string, args ...any) *ValidationError {
	return &ValidationError{
		Phase:    phase,
		Path:     path,
		Message:  fmt.Sprintf(msg, args...),
		Severity: "error",
	}
}

func warningf(phase, path, msg string, args ...any) *ValidationError {
	return &ValidationError{
		Phase:    phase,
		Path:     path,
		Message:  fmt.Sprintf(msg, args...),
		Severity: "warning",
	}
}

// HasErrors reports whether any entry has error severity.
func HasErrors(errs []*ValidationError) bool {
	for _, e := range errs {
		if e.Severity == "error" {
			return true
		}
	}
	return false
}

// Rule is a domain rule written as an expr-lang boolean expression over the
// answers environment (project_name, project_slug, bundle_id,
// build_variants, icon_paths, allowed_variants). The rule passes when the
// expression evaluates to true.
type Rule struct {
	Name     string `yaml:"name" mapstructure:"name" json:"name"`
	Path     string `yaml:"path" mapstructure:"path" json:"path"`
	Expr     string `yaml:"expr" mapstructure:"expr" json:"expr"`
	Message  string `yaml:"message" mapstructure:"message" json:"message"`
	Severity string `yaml:"severity" mapstructure:"severity" json:"severity"` // error (default), warning
}

// BuiltinRules are always evaluated before any configured rules.
var BuiltinRules = []Rule{
	{
		Name:    "project-name-required",
		Path:    "project_name",
		Expr:    `trim(project_name) != ""`,
		Message: "Project name is required",
	},
	{
		Name:    "project-slug-nonempty",
		Path:    "project_name",
		Expr:    `project_slug != ""`,
		Message: "Project name must contain at least one letter or digit",
	},
	{
		Name:    "bundle-id-required",
		Path:    "bundle_id",
		Expr:    `trim(bundle_id) != ""`,
		Message: "Bundle identifier is required",
	},
	{
		Name:    "bundle-id-no-hyphens",
		Path:    "bundle_id",
		Expr:    `!(bundle_id contains "-")`,
		Message: "Bundle identifier cannot contain hyphens. Use dots (.) instead.",
	},
	{
		Name:    "bundle-id-reverse-domain",
		Path:    "bundle_id",
		Expr:    `bundle_id == "" || bundle_id contains "-" || bundle_id matches "^[a-z][a-z0-9]*(\\.[a-z][a-z0-9]*)+$"`,
		Message: "Bundle identifier must be in reverse domain notation (e.g., com.company.app). No hyphens allowed.",
	},
	{
		Name:    "variants-required",
		Path:    "build_variants",
		Expr:    `len(build_variants) > 0`,
		Message: "You must select at least one build variant",
	},
	{
		Name:    "variants-known",
		Path:    "build_variants",
		Expr:    `len(allowed_variants) == 0 || all(build_variants, # in allowed_variants)`,
		Message: "Unknown build variant; allowed variants are configured under variants.available",
	},
	{
		Name:     "icons-for-selected-variants",
		Path:     "icon_paths",
		Expr:     `all(keys(icon_paths), # in build_variants)`,
		Message:  "icon_paths has entries for variants that are not selected; they are ignored",
		Severity: "warning",
	},
}

// Options configures validation.
type Options struct {
	// AllowedVariants restricts build_variants; empty allows any name.
	AllowedVariants []string
	// Rules are evaluated after BuiltinRules.
	Rules []Rule
}

// ValidateFile runs the full 3-phase pipeline on an answers file and
// returns the finalized answers.
func ValidateFile(path string, opts Options) (*Answers, []*ValidationError) {
	// Phase 1: Structural (strict YAML decode)
	a, err := LoadFile(path)
	if err != nil {
		return nil, []*ValidationError{errorf("structural", "", "failed to load: %s", err)}
	}
	if err := a.Finalize(); err != nil {
		return nil, []*ValidationError{errorf("structural", "project_path", "%s", err)}
	}
	return a, Validate(a, opts)
}

// Validate runs phases 2 and 3 on finalized answers.
func Validate(a *Answers, opts Options) []*ValidationError {
	var errs []*ValidationError

	// Phase 2: Semantic (JSON Schema validation)
	errs = append(errs, validateSemantic(a)...)
	if HasErrors(errs) {
		return errs
	}

	// Phase 3: Domain
	errs = append(errs, validateDomain(a, opts)...)
	return errs
}

var (
	compileOnce sync.Once
	compiled    *sjsonschema.Schema
	compileErr  error
)

func answersSchema() (*sjsonschema.Schema, error) {
	compileOnce.Do(func() {
		schemaJSON, err := GenerateJSONSchema()
		if err != nil {
			compileErr = fmt.Errorf("generate schema: %w", err)
			return
		}
		var schemaDoc any
		if err := json.Unmarshal(schemaJSON, &schemaDoc); err != nil {
			compileErr = fmt.Errorf("unmarshal schema: %w", err)
			return
		}
		c := sjsonschema.NewCompiler()
		if err := c.AddResource("answers-v1.json", schemaDoc); err != nil {
			compileErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile("answers-v1.json")
	})
	return compiled, compileErr
}

func validateSemantic(a *Answers) []*ValidationError {
	sch, err := answersSchema()
	if err != nil {
		return []*ValidationError{errorf("semantic", "", "%s", err)}
	}

	data, err := json.Marshal(a)
	if err != nil {
		return []*ValidationError{errorf("semantic", "", "marshal for schema validation: %v", err)}
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return []*ValidationError{errorf("semantic", "", "unmarshal document: %v", err)}
	}

	if err := sch.Validate(doc); err != nil {
		ve, ok := err.(*sjsonschema.ValidationError)
		if !ok {
			return []*ValidationError{errorf("semantic", "", "%v", err)}
		}
		var errs []*ValidationError
		for _, cause := range flattenValidationErrors(ve) {
			errs = append(errs, errorf("semantic", strings.Join(cause.InstanceLocation, "/"), "%v", cause.ErrorKind))
		}
		return errs
	}
	return nil
}

func flattenValidationErrors(ve *sjsonschema.ValidationError) []*sjsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*sjsonschema.ValidationError{ve}
	}
	var flat []*sjsonschema.ValidationError
	for _, cause := range ve.Causes {
		flat = append(flat, flattenValidationErrors(cause)...)
	}
	return flat
}

// Env builds the expr environment for domain rules.
func (a *Answers) Env(allowed []string) map[string]any {
	icons := make(map[string]any, len(a.IconPaths))
	for k, v := range a.IconPaths {
		icons[k] = v
	}
	return map[string]any{
		"project_name":     a.ProjectName,
		"project_slug":     a.ProjectSlug,
		"bundle_id":        a.BundleID,
		"build_variants":   toAny(a.BuildVariants),
		"icon_paths":       icons,
		"allowed_variants": toAny(allowed),
	}
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func validateDomain(a *Answers, opts Options) []*ValidationError {
	var errs []*ValidationError
	env := a.Env(opts.AllowedVariants)

	rules := append(slices.Clone(BuiltinRules), opts.Rules...)
	for _, r := range rules {
		ok, err := evalRule(r, env)
		if err != nil {
			errs = append(errs, errorf("domain", r.Path, "rule %s: %v", r.Name, err))
			continue
		}
		if ok {
			continue
		}
		if r.Severity == "warning" {
			errs = append(errs, warningf("domain", r.Path, "%s", r.Message))
		} else {
			errs = append(errs, errorf("domain", r.Path, "%s", r.Message))
		}
	}

	seen := make(map[string]bool, len(a.BuildVariants))
	for i, v := range a.BuildVariants {
		if seen[v] {
			errs = append(errs, errorf("domain", fmt.Sprintf("build_variants[%d]", i), "duplicate build variant %q", v))
		}
		seen[v] = true
	}

	var missing []string
	for _, v := range a.BuildVariants {
		if _, ok := a.IconPaths[v]; !ok {
			missing = append(missing, v)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		errs = append(errs, warningf("domain", "icon_paths", "no icon configured for %s; add one later under src/assets/icons", strings.Join(missing, ", ")))
	}
	return errs
}

var (
	programMu sync.Mutex
	programs  = map[string]*vm.Program{}
)

func evalRule(r Rule, env map[string]any) (bool, error) {
	programMu.Lock()
	program, ok := programs[r.Expr]
	programMu.Unlock()
	if !ok {
		p, err := expr.Compile(r.Expr, expr.Env(env), expr.AsBool())
		if err != nil {
			return false, fmt.Errorf("compile %q: %w", r.Expr, err)
		}
		programMu.Lock()
		programs[r.Expr] = p
		programMu.Unlock()
		program = p
	}
	output, err := expr.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("eval %q: %w", r.Expr, err)
	}
	result, ok := output.(bool)
	if !ok {
		return false, fmt.Errorf("%q did not return bool (got %T)", r.Expr, output)
	}
	return result, nil
}
