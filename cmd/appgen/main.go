// Package main provides the appgen CLI: it collects answers for a new Expo
// project and runs the generation pipeline.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ormasoftchile/appgen/pkg/config"
	"github.com/ormasoftchile/appgen/pkg/logging"
)

// Version is set at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// errReported marks failures that were already printed to the user.
var errReported = errors.New("reported")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	verbose    bool
	noColor    bool
	tracePath  string
}

// env is what a command needs once flags are parsed.
type env struct {
	cfg      *config.Config
	log      zerolog.Logger
	closeLog func() error
	plain    bool
}

func (g *globalFlags) setup() (*env, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	log, closeLog, err := logging.New(cfg.Log, g.verbose, os.Stderr)
	if err != nil {
		return nil, err
	}
	plain := g.noColor || termenv.EnvNoColor()
	return &env{cfg: cfg, log: log, closeLog: closeLog, plain: plain}, nil
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "appgen",
		Short:         "Expo project generator",
		Long:          "appgen scaffolds a React Native (Expo) project with build variants, icons, a source layout and pinned dependencies.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "Path to config file (default: search user config dir, then ./appgen.yaml)")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "Enable debug logging")
	pf.BoolVar(&g.noColor, "no-color", false, "Plain output without colors or glyphs")
	pf.StringVar(&g.tracePath, "trace", "", "Append a JSONL trace of the run to this file")

	root.AddCommand(
		newNewCmd(g),
		newRunCmd(g),
		newPlanCmd(g),
		newValidateCmd(g),
		newSchemaCmd(),
		newStatusCmd(g),
		newTemplatesCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "appgen %s (build: %s)\n", version, commit)
		},
	}
}

func closeQuietly(e *env, w io.Writer) {
	if err := e.closeLog(); err != nil {
		fmt.Fprintf(w, "warning: close log: %v\n", err)
	}
}
