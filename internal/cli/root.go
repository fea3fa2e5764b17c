// Package cli implements the careerpath commands.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-careerpath/internal/config"
	"github.com/goliatone/go-careerpath/internal/logging"
)

type rootOptions struct {
	configPath string
	logLevel   string
	logDev     bool

	cfg    *config.Config
	logger *logging.Logger
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "careerpath",
		Short: "Career path prediction form",
		Long: `careerpath collects a 21 field student profile over three pages and asks
a prediction service for a likely career path.

Run "careerpath serve" for the web form, "careerpath fill" for the terminal
flow and "careerpath stub" for a local prediction service.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			opts.logger.Sync()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "YAML config file (default: $"+config.EnvConfigFile+")")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	flags.BoolVar(&opts.logDev, "log-dev", false, "Human readable development logs")

	root.AddCommand(newServeCommand(opts), newFillCommand(opts), newStubCommand(opts))
	return root
}

func (o *rootOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if cmd.Flags().Changed("log-dev") {
		cfg.Log.Development = o.logDev
	}

	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Development: cfg.Log.Development})
	if err != nil {
		return err
	}
	o.cfg = cfg
	o.logger = logger
	return nil
}

// finalize re-validates the configuration after command flags were applied.
func (o *rootOptions) finalize() error {
	if err := o.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}
