package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func writeAnswers(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "answers.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func validAnswers(t *testing.T) string {
	return writeAnswers(t, "project_path: "+t.TempDir()+"\n"+`project_name: Field Notes
build_variants: [develop, prod]
icon_paths:
  develop: ""
  prod: ""
`)
}

func call(t *testing.T, fn func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (*mcp.CallToolResult, string) {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	result, err := fn(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Content) == 0 {
		t.Fatal("empty result")
	}
	text, _ := result.Content[0].(mcp.TextContent)
	return result, text.Text
}

func TestHandleValidate_MissingPath(t *testing.T) {
	h := &Handlers{}
	result, _ := call(t, h.HandleValidate, map[string]any{})
	if !result.IsError {
		t.Error("expected error for missing path")
	}
}

func TestHandleValidate(t *testing.T) {
	h := &Handlers{}
	result, text := call(t, h.HandleValidate, map[string]any{"path": validAnswers(t)})
	if result.IsError {
		t.Fatalf("unexpected error: %s", text)
	}
	if !strings.Contains(text, "Field Notes is valid (2 variants)") {
		t.Errorf("text = %q", text)
	}

	bad := writeAnswers(t, "project_name: X\nbundle_id: com.x-y.app\nbuild_variants: [develop]\n")
	result, text = call(t, h.HandleValidate, map[string]any{"path": bad})
	if !result.IsError || !strings.Contains(text, "cannot contain hyphens") {
		t.Errorf("IsError=%v text=%q", result.IsError, text)
	}
}

func TestHandleSchema(t *testing.T) {
	h := &Handlers{}
	result, text := call(t, h.HandleSchema, map[string]any{})
	if result.IsError {
		t.Error("expected success for schema")
	}
	if !strings.Contains(text, "build_variants") {
		t.Error("schema should describe build_variants")
	}
}

func TestHandlePlan(t *testing.T) {
	h := &Handlers{}
	result, text := call(t, h.HandlePlan, map[string]any{"path": validAnswers(t), "skip_install": true})
	if result.IsError {
		t.Fatalf("plan failed: %s", text)
	}
	var plan struct {
		Steps   []string         `json:"steps"`
		Actions []map[string]any `json:"actions"`
	}
	if err := json.Unmarshal([]byte(text), &plan); err != nil {
		t.Fatal(err)
	}
	if len(plan.Steps) == 0 || plan.Steps[0] != "Creating Expo Project" {
		t.Errorf("steps = %v", plan.Steps)
	}
	for _, s := range plan.Steps {
		if s == "Installing Packages" {
			t.Error("skip_install ignored")
		}
	}
	if len(plan.Actions) == 0 {
		t.Error("no actions")
	}
}

func TestHandleRun_DefaultsToDryRun(t *testing.T) {
	h := &Handlers{}
	result, text := call(t, h.HandleRun, map[string]any{"path": validAnswers(t)})
	if result.IsError {
		t.Fatalf("run failed: %s", text)
	}
	var resp map[string]any
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["mode"] != "dry-run" || resp["status"] != "completed" {
		t.Errorf("resp = %v", resp)
	}
	output, _ := resp["output"].(string)
	if !strings.Contains(output, "[dry-run] would execute: npx create-expo-app@latest field-notes") {
		t.Errorf("output:\n%s", output)
	}
	if !strings.Contains(output, "succeeded step 1: Creating Expo Project") {
		t.Errorf("output missing step lines:\n%s", output)
	}
}

func TestHandleRun_UnknownMode(t *testing.T) {
	h := &Handlers{}
	result, _ := call(t, h.HandleRun, map[string]any{"path": validAnswers(t), "mode": "staging"})
	if !result.IsError {
		t.Error("expected error for unknown mode")
	}
}

func TestNewServer(t *testing.T) {
	if NewServer("test", nil) == nil {
		t.Fatal("nil server")
	}
}
