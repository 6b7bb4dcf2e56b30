package cli

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// Env is populated from KEEPAWAY_* variables before any subcommand runs.
	Env Config

	// Lookuper overrides the process environment (for testing).
	Lookuper envconfig.Lookuper

	// Logger is built by the root command from --verbose and
	// KEEPAWAY_LOG_LEVEL. Subcommands executed on their own fall back to
	// slog.Default.
	Logger *slog.Logger
}

// Config holds environment defaults. Flags always win over these.
type Config struct {
	DB       string `env:"KEEPAWAY_DB"`
	LogLevel string `env:"KEEPAWAY_LOG_LEVEL, default=info"`
	Format   string `env:"KEEPAWAY_FORMAT"`
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the keepaway CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keepaway",
		Short: "keepaway - item routing simulation",
		Long: `Simulate workers passing items to each other by arithmetic rules.

Workers inspect their items in turn, apply an operation to each item and
throw it to another worker based on a divisibility test. The score of a
run is the product of the two largest per-worker handling counts.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	// Add subcommands
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// setup loads environment defaults, validates global flags and installs
// the logger.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := &envconfig.Config{Target: &o.Env, Lookuper: o.Lookuper}
	if cfg.Lookuper == nil {
		cfg.Lookuper = envconfig.OsLookuper()
	}
	if err := envconfig.ProcessWith(ctx, cfg); err != nil {
		return WrapExitError(ExitCommandError, "invalid environment", err)
	}

	if !cmd.Flags().Changed("format") && o.Env.Format != "" {
		o.Format = o.Env.Format
	}
	if !isValidFormat(o.Format) {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}

	level, err := o.logLevel()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid KEEPAWAY_LOG_LEVEL", err)
	}
	o.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	}))
	return nil
}

// logLevel resolves the log level. --verbose forces debug.
func (o *RootOptions) logLevel() (slog.Level, error) {
	if o.Verbose {
		return slog.LevelDebug, nil
	}
	var level slog.Level
	if o.Env.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(o.Env.LogLevel)); err != nil {
		return 0, err
	}
	return level, nil
}

func (o *RootOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// formatter builds the output formatter for a command. Verbose logs go to
// stderr so they never corrupt JSON output.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
