package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/frankndungu/pdf-to-csv-parser/pkg/config"
	"github.com/frankndungu/pdf-to-csv-parser/pkg/reference"
)

var version = "0.1.0"

// app carries the state shared by every subcommand once the root command
// has loaded configuration.
type app struct {
	cfgFile  string
	logLevel string
	output   string

	config *config.Manager
	logger *slog.Logger
	runID  string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "clausemap",
		Short: "Recover the clause structure of standards documents",
		Long: `Clausemap reads the text of a scanned standard of measurement (SMM,
CESMM) and recovers its hierarchy of sections, subsections, numbered
clauses and lettered subclauses as flat records.

Records can be written as CSV, JSON, JSON lines, YAML or a terminal table,
and checked for coverage against the reference table of expected sections.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(
		&a.cfgFile, "config", "", "config file (default: ./clausemap.yaml or ~/.clausemap/clausemap.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&a.logLevel, "log-level", "", "log level: debug, info, warn or error",
	)
	rootCmd.PersistentFlags().StringVarP(
		&a.output, "output", "o", "", "output format: csv, json, jsonl, yaml or table",
	)

	rootCmd.AddCommand(parseCmd(a))
	rootCmd.AddCommand(coverageCmd(a))
	rootCmd.AddCommand(referenceCmd(a))
	rootCmd.AddCommand(configCmd(a))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

// setup loads configuration, applies flag overrides and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	mgr, err := config.NewManager(a.cfgFile)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		if err := mgr.Set("log_level", a.logLevel); err != nil {
			return err
		}
	}
	if a.output != "" {
		if err := mgr.Set("output_format", a.output); err != nil {
			return err
		}
	}
	a.config = mgr

	a.runID = uuid.NewString()
	a.logger = newLogger(cmd.ErrOrStderr(), mgr.Get().Level()).With("run_id", a.runID)
	slog.SetDefault(a.logger)

	if file := mgr.ConfigFile(); file != "" {
		a.logger.Debug("loaded config", "file", file)
	}
	return nil
}

// registry loads the built-in reference sets plus those in the configured
// directory.
func (a *app) registry() (*reference.Registry, error) {
	dir := a.config.Get().ReferenceDir
	registry, err := reference.NewRegistryWithDirectory(dir, a.logger)
	if err != nil {
		return nil, fmt.Errorf("loading reference sets: %w", err)
	}
	return registry, nil
}

// referenceSet resolves name, or the configured default when name is empty.
func (a *app) referenceSet(name string) (*reference.Set, error) {
	if name == "" {
		name = a.config.Get().ReferenceSet
	}
	registry, err := a.registry()
	if err != nil {
		return nil, err
	}
	return registry.Get(name)
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
