package answers

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var defaultVariants = []string{"develop", "qa", "preprod", "prod"}

func valid(t *testing.T) *Answers {
	t.Helper()
	a := &Answers{
		ProjectPath:   t.TempDir(),
		ProjectName:   "Test Expo App",
		BuildVariants: []string{"develop", "prod"},
		IconPaths:     map[string]string{"develop": "", "prod": ""},
	}
	if err := a.Finalize(); err != nil {
		t.Fatal(err)
	}
	return a
}

func messages(errs []*ValidationError) string {
	var b strings.Builder
	for _, e := range errs {
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return b.String()
}

func TestValidate_Valid(t *testing.T) {
	errs := Validate(valid(t), Options{AllowedVariants: defaultVariants})
	if len(errs) != 0 {
		t.Errorf("unexpected errors:\n%s", messages(errs))
	}
}

func TestValidate_BundleID(t *testing.T) {
	tests := []struct {
		id      string
		wantErr string
	}{
		{"com.company.app", ""},
		{"com.company", ""},
		{"com", "reverse domain notation"},
		{"com.my-company.app", "cannot contain hyphens"},
		{"Com.Company.App", "reverse domain notation"},
		{"com.1company.app", "reverse domain notation"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			a := valid(t)
			a.BundleID = tt.id
			errs := Validate(a, Options{})
			got := messages(errs)
			if tt.wantErr == "" {
				if HasErrors(errs) {
					t.Errorf("unexpected errors:\n%s", got)
				}
				return
			}
			if !strings.Contains(got, tt.wantErr) {
				t.Errorf("want %q in:\n%s", tt.wantErr, got)
			}
		})
	}
}

func TestValidate_Variants(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		a := valid(t)
		a.BuildVariants = []string{}
		errs := Validate(a, Options{})
		if !HasErrors(errs) {
			t.Fatal("expected error for empty variants")
		}
	})
	t.Run("unknown", func(t *testing.T) {
		a := valid(t)
		a.BuildVariants = []string{"develop", "staging"}
		errs := Validate(a, Options{AllowedVariants: defaultVariants})
		if !strings.Contains(messages(errs), "Unknown build variant") {
			t.Errorf("got:\n%s", messages(errs))
		}
	})
	t.Run("duplicate", func(t *testing.T) {
		a := valid(t)
		a.BuildVariants = []string{"qa", "qa"}
		a.IconPaths = map[string]string{"qa": ""}
		errs := Validate(a, Options{})
		if !strings.Contains(messages(errs), `duplicate build variant "qa"`) {
			t.Errorf("got:\n%s", messages(errs))
		}
	})
}

func TestValidate_IconWarnings(t *testing.T) {
	a := valid(t)
	a.IconPaths = map[string]string{"develop": "", "qa": ""}
	errs := Validate(a, Options{})
	if HasErrors(errs) {
		t.Fatalf("icon mismatches should only warn:\n%s", messages(errs))
	}
	got := messages(errs)
	if !strings.Contains(got, "not selected") {
		t.Errorf("missing extra-entry warning:\n%s", got)
	}
	if !strings.Contains(got, "no icon configured for prod") {
		t.Errorf("missing absent-entry warning:\n%s", got)
	}
}

func TestValidate_ProjectName(t *testing.T) {
	a := valid(t)
	a.ProjectName = "!!!"
	a.ProjectSlug = ""
	a.Finalize()
	errs := Validate(a, Options{})
	if !strings.Contains(messages(errs), "at least one letter or digit") {
		t.Errorf("got:\n%s", messages(errs))
	}
}

func TestValidate_ConfiguredRule(t *testing.T) {
	a := valid(t)
	rules := []Rule{{
		Name:    "company-prefix",
		Path:    "bundle_id",
		Expr:    `bundle_id startsWith "com.acme."`,
		Message: "bundle id must live under com.acme",
	}}
	errs := Validate(a, Options{Rules: rules})
	if !strings.Contains(messages(errs), "com.acme") {
		t.Errorf("got:\n%s", messages(errs))
	}
}

func TestValidate_BadRuleExpression(t *testing.T) {
	a := valid(t)
	errs := Validate(a, Options{Rules: []Rule{{Name: "broken", Expr: `project_name +`}}})
	if !strings.Contains(messages(errs), "rule broken") {
		t.Errorf("got:\n%s", messages(errs))
	}
}

func TestValidate_SemanticStopsDomain(t *testing.T) {
	a := valid(t)
	a.BuildVariants = nil // marshals as null
	errs := Validate(a, Options{})
	if len(errs) == 0 {
		t.Fatal("expected semantic error")
	}
	for _, e := range errs {
		if e.Phase != "semantic" {
			t.Errorf("domain phase ran after semantic errors: %s", e)
		}
	}
}

func TestValidateFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "answers.yaml")
	content := `project_path: ` + dir + `
project_name: Demo App
bundle_id: com.demo.app
build_variants: [develop, prod]
icon_paths:
  develop: ""
  prod: ""
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	a, errs := ValidateFile(path, Options{AllowedVariants: defaultVariants})
	if len(errs) != 0 {
		t.Fatalf("errors:\n%s", messages(errs))
	}
	if a.ProjectDir != filepath.Join(dir, "demo-app") {
		t.Errorf("project dir = %q", a.ProjectDir)
	}
}

func TestValidateFile_Structural(t *testing.T) {
	_, errs := ValidateFile(filepath.Join(t.TempDir(), "missing.yaml"), Options{})
	if len(errs) != 1 || errs[0].Phase != "structural" {
		t.Fatalf("errs = %v", errs)
	}
}

func TestGenerateJSONSchema(t *testing.T) {
	data, err := GenerateJSONSchema()
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	if doc["$id"] != SchemaID {
		t.Errorf("$id = %v", doc["$id"])
	}
	if !strings.Contains(string(data), "build_variants") {
		t.Error("schema missing build_variants")
	}
	if strings.Contains(string(data), "Signals") || strings.Contains(string(data), "ProjectDir") {
		t.Error("schema leaks runtime fields")
	}
}
