package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/basm/internal/harness"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Input string
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Verify that optimization preserves a program's behaviour",
		Long: `Run a program before and after optimization and compare the results.

Both runs use the interpreter settings from the configuration file and the
same input. Output and error outcome must match.

Exit codes:
  0 - Optimized program behaves identically
  1 - Behaviour differs
  2 - Command error`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Input, "input", "", "program input")

	return cmd
}

func runCheck(opts *CheckOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd)

	src, err := readProgram(cmd, path)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeReadFailed, err.Error(), err)
	}
	cfg, err := loadConfig(opts.RootOptions, cmd)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, err.Error(), err)
	}

	scenario := &harness.Scenario{
		Name:        filepath.Base(path),
		Description: fmt.Sprintf("check %s", path),
		Program:     src,
		Input:       opts.Input,
		Interpreter: cfg.Interpreter,
	}
	h := harness.New(
		harness.WithLogger(logger),
		harness.WithOptimizer(newOptimizer(cfg, logger)),
	)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	result, err := h.Run(ctx, scenario)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), err)
	}

	if formatter.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: result}
		if !result.Pass {
			resp.Status = "error"
			resp.Error = &CLIError{Code: ErrCodeCheckFailed, Message: "optimized program behaves differently", Details: result.Errors}
		}
		if err := formatter.JSON(resp); err != nil {
			return err
		}
	} else {
		outputCheckText(formatter, result, len(src))
	}

	if !result.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("check failed with %d difference(s)", len(result.Errors)))
	}
	return nil
}

func outputCheckText(formatter *OutputFormatter, result *harness.Result, sourceLen int) {
	w := formatter.Writer
	if result.Pass {
		fmt.Fprintf(w, "✓ %s: equivalent (%d -> %d bytes)\n", result.Scenario, sourceLen, len(result.Program))
		formatter.VerboseLog("optimized: %s", result.Program)
		return
	}

	fmt.Fprintf(w, "✗ %s: optimized program behaves differently\n", result.Scenario)
	for _, e := range result.Errors {
		fmt.Fprintf(w, "  %s\n", e)
	}
}
