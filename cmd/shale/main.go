// Command shale is the interactive host for the runtime: a REPL, a
// script runner, and a -c one-liner mode, all driving the same engine
// through the line parser in this package.
package main

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shale-sh/shale/config"
	"github.com/shale-sh/shale/logger"
	"github.com/shale-sh/shale/version"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// Evaluation failures already rendered their diagnostics.
		if !stderrors.Is(err, errEvalFailed) {
			fmt.Fprintln(os.Stderr, "shale:", err)
		}
		os.Exit(1)
	}
}

type rootOptions struct {
	configFile string
	threads    int
	command    string
	logLevel   string
	noColor    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:     "shale [script]",
		Short:   "A structured-data shell runtime",
		Long:    "shale runs pipelines over typed values: lists, records, streams.\nWith no arguments it starts an interactive session.",
		Args:    cobra.MaximumNArgs(1),
		Version: version.GetShortVersion(),

		SilenceUsage:  true,
		SilenceErrors: true,

		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			logger.Init(cfg.Log)
			logger.RegisterDefaults()

			h, shutdown, err := newHost(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer shutdown()

			switch {
			case opts.command != "":
				return h.runCommandLine(cmd.Context(), opts.command)
			case len(args) == 1:
				return h.runScript(cmd.Context(), args[0])
			default:
				return h.runREPL(cmd.Context())
			}
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configFile, "config", "", "config file path")
	flags.IntVar(&opts.threads, "threads", 0, "worker pool size for parallel stages")
	flags.StringVarP(&opts.command, "command", "c", "", "run one command line and exit")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable ANSI styling in diagnostics")
	return cmd
}

// loadConfig resolves the runtime configuration and applies the command
// line overrides on top of it.
func loadConfig(opts *rootOptions) (*config.RuntimeConfig, error) {
	var loaderOpts []config.LoaderOption
	if opts.configFile != "" {
		loaderOpts = append(loaderOpts, config.WithConfigFile(opts.configFile))
	}
	cfg, err := config.Load(loaderOpts...)
	if err != nil {
		return nil, err
	}
	if opts.threads > 0 {
		cfg.Threads = opts.threads
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.noColor {
		cfg.Errors.NoColor = true
	}
	return cfg, nil
}
