// Package cli implements the pkglicense command-line interface.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/arc-language/pkglicense"
	"github.com/arc-language/pkglicense/pkg/core"
)

// options holds the global flags and the configuration they produce
type options struct {
	cfgFile    string
	debug      bool
	csv        bool
	format     string
	policy     string
	lenient    bool
	jobs       int
	timeout    time.Duration
	statusFile string

	config *core.Config
}

// Execute executes the root command
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "pkglicense",
		Short: "Report the license of every installed dpkg package",
		Long: `pkglicense - installed package license report

Lists the installed dpkg packages and determines each package's license
through an ordered chain of resolvers: machine-readable copyright files,
references to /usr/share/common-licenses, cached .deb archives, the
bundled license registry, SQLite databases and external plugins.

The first resolver with an answer wins. Packages no resolver knows are
reported as "unknown".`,
		Args:          cobra.NoArgs,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.initConfig(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, opts)
		},
	}

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.cfgFile, "config", "", "config file (default is $HOME/.config/pkglicense/config.yaml)")
	pf.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	pf.StringVar(&opts.policy, "policy", "", "on resolver errors: strict (abort) or lenient (report unknown-error)")
	pf.BoolVar(&opts.lenient, "lenient", false, "shorthand for --policy lenient")
	pf.IntVarP(&opts.jobs, "jobs", "j", 0, "packages resolved concurrently")
	pf.DurationVar(&opts.timeout, "timeout", 0, "time limit for each resolver probe")
	pf.StringVar(&opts.statusFile, "status-file", "", "dpkg status database")

	// Report flags
	rootCmd.Flags().BoolVar(&opts.csv, "csv", false, "output CSV instead of a table")
	rootCmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: table, csv or markdown")

	// Add commands
	rootCmd.AddCommand(newResolveCmd(opts))
	rootCmd.AddCommand(newResolversCmd(opts))
	rootCmd.AddCommand(newSyncCmd(opts))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// initConfig loads the config file, applies flag overrides and attaches
// the logger to the command context
func (o *options) initConfig(cmd *cobra.Command) error {
	cfg, err := core.LoadConfig(o.cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Override config with flags
	flags := cmd.Flags()
	if o.debug {
		cfg.Debug = true
	}
	if o.csv {
		cfg.Format = "csv"
	}
	if flags.Changed("format") {
		cfg.Format = o.format
	}
	if flags.Changed("policy") {
		cfg.Policy = o.policy
	}
	if o.lenient {
		cfg.Policy = pkglicense.PolicyLenient.String()
	}
	if flags.Changed("jobs") {
		cfg.Jobs = o.jobs
	}
	if flags.Changed("timeout") {
		cfg.Timeout = o.timeout
	}
	if flags.Changed("status-file") {
		cfg.StatusFile = o.statusFile
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	level := log.InfoLevel
	if cfg.Debug {
		level = log.DebugLevel
	}
	logger := newLogger(cmd.ErrOrStderr(), level)
	cfg.Logger = componentLogger(logger)

	o.config = cfg
	cmd.SetContext(withLogger(cmd.Context(), logger))
	return nil
}

func runReport(cmd *cobra.Command, opts *options) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	l, err := pkglicense.New(opts.config)
	if err != nil {
		return err
	}
	defer l.Close()

	logger.Debug("resolver chain", "order", l.Strategies(), "policy", opts.config.Policy, "jobs", opts.config.Jobs)

	prog := newProgress(logger)
	stats, err := l.Report(ctx, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	prog.done("Report complete",
		"packages", stats.Total,
		"resolved", stats.Resolved,
		"unknown", stats.Unknown,
		"failed", stats.Failed,
	)
	for name, n := range stats.ByStrategy {
		logger.Debug("resolved by", "strategy", name, "packages", n)
	}
	return nil
}
