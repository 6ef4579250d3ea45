// Package main provides the appgen-mcp binary: an MCP server over stdio
// for AI agents.
package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/ormasoftchile/appgen/pkg/config"
	amcp "github.com/ormasoftchile/appgen/pkg/ecosystem/mcp"
)

var version = "dev"

func main() {
	cfg, err := config.Load(os.Getenv("APPGEN_CONFIG_PATH"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	s := amcp.NewServer(version, cfg)
	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
