// Package eval resolves text/template expressions used by command argv
// templates and project file templates.
package eval

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/template"
)

// FileDelims are the delimiters used by project file templates. TSX sources
// use "{{" for inline style objects, so file templates cannot use the default.
var FileDelims = [2]string{"[[", "]]"}

// Resolve evaluates a template string against a data value (a struct or a map).
// Returns the rendered string.
// Example: Resolve("npx create-expo-app@latest {{ .ProjectSlug }}", ans) → "npx create-expo-app@latest my-app"
func Resolve(tmpl string, data any) (string, error) {
	if !strings.Contains(tmpl, "{{") {
		return tmpl, nil // fast path for literals
	}

	t, err := template.New("").Option("missingkey=error").Funcs(builtinFuncs()).Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("template parse: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("template eval: %w", err)
	}
	return buf.String(), nil
}

// ResolveArgs resolves every element of an argv template. Elements that
// render to an empty string are dropped so optional flags can be templated away.
func ResolveArgs(argv []string, data any) ([]string, error) {
	out := make([]string, 0, len(argv))
	for i, a := range argv {
		resolved, err := Resolve(a, data)
		if err != nil {
			return nil, fmt.Errorf("argv[%d] %q: %w", i, a, err)
		}
		if resolved == "" {
			continue
		}
		out = append(out, resolved)
	}
	return out, nil
}

// Render executes a named file template using FileDelims.
func Render(name, text string, data any) ([]byte, error) {
	t, err := template.New(name).
		Delims(FileDelims[0], FileDelims[1]).
		Option("missingkey=error").
		Funcs(builtinFuncs()).
		Parse(text)
	if err != nil {
		return nil, fmt.Errorf("template %s: parse: %w", name, err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// builtinFuncs provides template functions for expressions.
func builtinFuncs() template.FuncMap {
	return template.FuncMap{
		"lower": strings.ToLower,
		"upper": strings.ToUpper,
		"join": func(sep string, items []string) string {
			return strings.Join(items, sep)
		},
		"quote": strconv.Quote,
		"default": func(def, val any) any {
			if val == nil || fmt.Sprint(val) == "" {
				return def
			}
			return val
		},
		"json": func(v any) (string, error) {
			b, err := json.Marshal(v)
			if err != nil {
				return "", err
			}
			return string(b), nil
		},
		"first": func(items []string) string {
			if len(items) == 0 {
				return ""
			}
			return items[0]
		},
	}
}
