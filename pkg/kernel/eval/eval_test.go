package eval

import (
	"strings"
	"testing"
)

type project struct {
	ProjectName   string
	ProjectSlug   string
	BuildVariants []string
}

func TestResolve_Literal(t *testing.T) {
	result, err := Resolve("--no-install", nil)
	if err != nil {
		t.Fatal(err)
	}
	if result != "--no-install" {
		t.Errorf("got %q", result)
	}
}

func TestResolve_StructField(t *testing.T) {
	p := project{ProjectSlug: "my-app"}
	result, err := Resolve("{{ .ProjectSlug }}", p)
	if err != nil {
		t.Fatal(err)
	}
	if result != "my-app" {
		t.Errorf("got %q", result)
	}
}

func TestResolve_MapVar(t *testing.T) {
	vars := map[string]any{"slug": "demo"}
	result, err := Resolve("create {{ .slug }}", vars)
	if err != nil {
		t.Fatal(err)
	}
	if result != "create demo" {
		t.Errorf("got %q", result)
	}
}

func TestResolve_MissingKey(t *testing.T) {
	_, err := Resolve("{{ .nope }}", map[string]any{})
	if err == nil {
		t.Fatal("expected error for missing key")
	}
}

func TestResolve_ParseError(t *testing.T) {
	_, err := Resolve("{{ .unclosed", nil)
	if err == nil || !strings.Contains(err.Error(), "parse") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestResolveArgs(t *testing.T) {
	p := project{ProjectSlug: "my-app"}
	tests := []struct {
		name string
		argv []string
		want []string
	}{
		{"literal", []string{"npx", "expo", "install", "--fix"}, []string{"npx", "expo", "install", "--fix"}},
		{"templated", []string{"npx", "create-expo-app@latest", "{{ .ProjectSlug }}"}, []string{"npx", "create-expo-app@latest", "my-app"}},
		{"empty dropped", []string{"npm", "{{ if false }}--verbose{{ end }}", "install"}, []string{"npm", "install"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveArgs(tt.argv, p)
			if err != nil {
				t.Fatal(err)
			}
			if strings.Join(got, " ") != strings.Join(tt.want, " ") || len(got) != len(tt.want) {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveArgs_ErrorNamesElement(t *testing.T) {
	_, err := ResolveArgs([]string{"ok", "{{ .Missing }}"}, map[string]any{})
	if err == nil || !strings.Contains(err.Error(), "argv[1]") {
		t.Fatalf("expected argv[1] error, got %v", err)
	}
}

func TestRender_FileDelims(t *testing.T) {
	p := project{ProjectName: "My App", BuildVariants: []string{"develop", "prod"}}
	src := `const styles = { container: {{ flex: 1 }} }; // [[ .ProjectName ]] [[ join ", " .BuildVariants ]]`
	out, err := Render("App.tsx", src, p)
	if err != nil {
		t.Fatal(err)
	}
	want := `const styles = { container: {{ flex: 1 }} }; // My App develop, prod`
	if string(out) != want {
		t.Errorf("got %q\nwant %q", out, want)
	}
}

func TestRender_Funcs(t *testing.T) {
	p := project{ProjectName: "My App", BuildVariants: []string{"qa"}}
	tests := []struct {
		src  string
		want string
	}{
		{`[[ quote .ProjectName ]]`, `"My App"`},
		{`[[ lower .ProjectName ]]`, `my app`},
		{`[[ upper (first .BuildVariants) ]]`, `QA`},
		{`[[ json .BuildVariants ]]`, `["qa"]`},
		{`[[ default "x" "" ]]`, `x`},
	}
	for _, tt := range tests {
		out, err := Render("t", tt.src, p)
		if err != nil {
			t.Fatalf("%s: %v", tt.src, err)
		}
		if string(out) != tt.want {
			t.Errorf("%s: got %q, want %q", tt.src, out, tt.want)
		}
	}
}

func TestRender_ErrorNamesTemplate(t *testing.T) {
	_, err := Render("src/App.tsx", "[[ .Nope ]]", project{})
	if err == nil || !strings.Contains(err.Error(), "src/App.tsx") {
		t.Fatalf("expected error naming template, got %v", err)
	}
}
