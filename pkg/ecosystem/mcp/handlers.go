// Package mcp exposes appgen to AI agents over the Model Context Protocol.
package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ormasoftchile/appgen/pkg/config"
	"github.com/ormasoftchile/appgen/pkg/generator"
	"github.com/ormasoftchile/appgen/pkg/kernel/answers"
	"github.com/ormasoftchile/appgen/pkg/kernel/tracker"
	"github.com/ormasoftchile/appgen/pkg/procexec"
	"github.com/ormasoftchile/appgen/pkg/ui"
)

// Handlers implements the appgen MCP tools.
type Handlers struct {
	Config *config.Config

	// Runner replaces the real process runner in "real" mode.
	Runner procexec.Runner
}

func (h *Handlers) config() *config.Config {
	if h.Config == nil {
		return config.DefaultConfig()
	}
	return h.Config
}

// HandleValidate implements the appgen/validate MCP tool.
func (h *Handlers) HandleValidate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	path, _ := args["path"].(string)
	if path == "" {
		return errorResult("path argument is required"), nil
	}

	a, errs := answers.ValidateFile(path, h.config().ValidateOptions())
	if answers.HasErrors(errs) {
		return errorResult(formatErrors(errs)), nil
	}
	msg := fmt.Sprintf("✓ %s is valid (%d variants)", a.ProjectName, len(a.BuildVariants))
	if w := formatWarnings(errs); w != "" {
		msg += "\nwarnings: " + w
	}
	return textResult(msg), nil
}

// HandlePlan implements the appgen/plan MCP tool.
func (h *Handlers) HandlePlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	path, _ := args["path"].(string)
	if path == "" {
		return errorResult("path argument is required"), nil
	}
	skip, _ := args["skip_install"].(bool)

	a, errs := answers.ValidateFile(path, h.config().ValidateOptions())
	if answers.HasErrors(errs) {
		return errorResult(formatErrors(errs)), nil
	}
	g, err := generator.New(generator.Options{Config: h.config(), DryRun: true, SkipInstall: skip})
	if err != nil {
		return errorResult(err.Error()), nil
	}
	p, err := g.Plan(a)
	if err != nil {
		return errorResult(err.Error()), nil
	}

	data, _ := json.MarshalIndent(map[string]any{
		"project_dir": a.ProjectDir,
		"steps":       p.Steps(),
		"actions":     p.Entries(),
	}, "", "  ")
	return textResult(string(data)), nil
}

// HandleSchema implements the appgen/schema MCP tool.
func (h *Handlers) HandleSchema(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := answers.GenerateJSONSchema()
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(string(data)), nil
}

// HandleRun implements the appgen/run MCP tool.
func (h *Handlers) HandleRun(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	path, _ := args["path"].(string)
	if path == "" {
		return errorResult("path argument is required"), nil
	}
	mode, _ := args["mode"].(string)
	if mode == "" {
		mode = "dry-run" // safe default for AI agents
	}
	if mode != "dry-run" && mode != "real" {
		return errorResult(fmt.Sprintf("unknown mode %q, use 'real' or 'dry-run'", mode)), nil
	}
	skip, _ := args["skip_install"].(bool)

	a, errs := answers.ValidateFile(path, h.config().ValidateOptions())
	if answers.HasErrors(errs) {
		return errorResult(formatErrors(errs)), nil
	}

	var out bytes.Buffer
	status := ui.NewStatusPrinter(&out, true)
	opts := generator.Options{
		Config:      h.config(),
		DryRun:      mode == "dry-run",
		SkipInstall: skip,
		Out:         &out,
		Sinks:       []tracker.Sink{status},
		Report:      status,
	}
	if mode == "real" {
		opts.Runner = h.Runner
	}
	g, err := generator.New(opts)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	result, err := g.Run(ctx, a)
	if err != nil {
		return errorResult(err.Error()), nil
	}

	response := map[string]any{
		"run_id":   result.RunID,
		"status":   result.Status,
		"duration": result.Duration.String(),
		"mode":     mode,
		"commands": g.Commands(),
	}
	if result.Summary != nil {
		response["summary"] = result.Summary
	}
	if result.FailedStep != "" {
		response["failed_step"] = result.FailedStep
	}
	if result.Error != nil {
		response["error"] = result.Error.Error()
	}
	if out.Len() > 0 {
		response["output"] = out.String()
	}

	data, _ := json.MarshalIndent(response, "", "  ")
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(string(data))},
		IsError: result.Status == "failed",
	}, nil
}

func formatErrors(errs []*answers.ValidationError) string {
	var msgs []string
	for _, e := range errs {
		if e.Severity == "error" {
			msgs = append(msgs, fmt.Sprintf("[%s] %s", e.Phase, e.Message))
		}
	}
	return strings.Join(msgs, "; ")
}

func formatWarnings(errs []*answers.ValidationError) string {
	var msgs []string
	for _, e := range errs {
		if e.Severity == "warning" {
			msgs = append(msgs, e.Message)
		}
	}
	return strings.Join(msgs, "; ")
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(msg),
		},
		IsError: true,
	}
}
