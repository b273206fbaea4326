package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/json-to-terraform/connector/internal/config"
	_ "github.com/json-to-terraform/connector/internal/handler" // register handlers
	"github.com/json-to-terraform/connector/internal/logger"
)

// app is the state shared by subcommands once the root pre-run has loaded it.
type app struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg *config.Config
	log *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:           "connector",
		Short:         "Reconcile container links on a canvas and export them to Terraform",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", config.DefaultPath(), "path to config.toml")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&a.logFormat, "log-format", "", "log format (json, text)")

	registerReplayCmd(rootCmd, a)
	registerAnchorCmd(rootCmd, a)
	registerDiffCmd(rootCmd)

	return rootCmd
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	a.cfg = cfg
	a.log = logger.NewWith(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	return nil
}
