package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/basm/internal/config"
	"github.com/roach88/basm/internal/optimizer"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the basm CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "basm",
		Short: "basm - tape-machine optimizer and interpreter",
		Long: `Optimize and run programs for the eight-instruction tape machine.

The optimizer merges, reorders and removes pointer-relative cell updates
without changing what a program reads or writes.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", config.DefaultPath, "CUE configuration file (ignored if missing)")

	cmd.AddCommand(NewOptimizeCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// newLogger builds the diagnostic logger. Logs always go to stderr so they
// never mix with program output or JSON.
func newLogger(opts *RootOptions, cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	}))
}

// loadConfig reads the configuration file named by --config. The default
// path may be absent; an explicitly named file must exist.
func loadConfig(opts *RootOptions, cmd *cobra.Command) (config.Config, error) {
	path := opts.ConfigPath
	if path == "" {
		return config.Default(), nil
	}
	if flag := cmd.Flags().Lookup("config"); flag != nil && flag.Changed {
		return config.Load(path)
	}
	return config.LoadOptional(path)
}

// newOptimizer builds the optimizer described by cfg.
func newOptimizer(cfg config.Config, logger *slog.Logger) *optimizer.Optimizer {
	return optimizer.New(
		optimizer.WithLogger(logger),
		optimizer.WithReorderRounds(cfg.Optimizer.ReorderRounds),
	)
}
