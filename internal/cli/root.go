// Package cli implements the feature-replicator command line: the MCP
// stdio server plus direct list/scan/export commands for scripting.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/HendryAvila/feature-replicator/internal/config"
)

// options holds the persistent flags shared by every command.
type options struct {
	configPath string
	verbose    bool
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "feature-replicator",
		Short: "Document legacy features so they can be rebuilt",
		Long: `feature-replicator scans legacy codebases (C#, Java, PHP, Python,
JavaScript/TypeScript), finds candidate features and extracts their
specification: inputs, outputs, SQL data sources, file system operations,
external services and business rules.

Run "feature-replicator serve" from an MCP client, or use list/scan/export
directly.

Quick Start:
  feature-replicator list ./legacy --language php
  feature-replicator scan ./legacy --id php-page-ventas --file ventas.php > spec.json
  feature-replicator export --spec spec.json --out docs/features`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "",
		"configuration file (JSON or YAML); defaults to $"+config.EnvConfigPath+" or "+config.DefaultConfigFile)
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output")

	root.AddCommand(
		newServeCmd(opts),
		newListCmd(opts),
		newScanCmd(opts),
		newExportCmd(opts),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the configuration and builds the logger. The returned
// function closes the log file, if any.
func (o *options) setup(stderr io.Writer) (*config.Config, *slog.Logger, func(), error) {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	bootstrap := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(config.ResolvePath(o.configPath), bootstrap)
	if err != nil {
		return nil, nil, nil, err
	}

	if cfg.LogFile == "" {
		return cfg, bootstrap, func() {}, nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		bootstrap.Warn("log file unavailable, logging to stderr", "path", cfg.LogFile, "error", err)
		return cfg, bootstrap, func() {}, nil
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	return cfg, logger, func() { f.Close() }, nil
}
