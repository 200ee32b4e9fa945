package cmd

import (
	"fmt"
	"os"

	"github.com/brewvote/server/internal/config"
	"github.com/spf13/cobra"
)

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

// Execute runs the CLI. It is called by main.main.
func Execute() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCommand builds a fresh command tree so tests don't share flag state.
func newRootCommand() *cobra.Command {
	opts := &globalOptions{}

	serve := newServeCommand(opts)
	root := &cobra.Command{
		Use:   "server",
		Short: "brewvote server - event voting backend",
		Long: `brewvote server runs the voting backend for beer tasting events.

It serves the voter ballot links, brewer feedback pages and the event admin
API, and manages the PostgreSQL schema.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve.RunE(cmd, args)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file (environment variables override it)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error) (default: info)")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "log format (json, console) (default: json)")

	root.AddCommand(serve)
	root.AddCommand(newMigrateCommand(opts))
	root.AddCommand(newVersionCommand())
	root.AddCommand(newHealthcheckCommand())
	return root
}

// applyLogFlags lets --log-level and --log-format override the config.
func (o *globalOptions) applyLogFlags(cfg *config.Config) {
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Logging.Format = o.logFormat
	}
}
