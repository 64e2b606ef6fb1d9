package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/basm/internal/config"
	"github.com/roach88/basm/internal/interpreter"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Optimize bool
	Show     bool
	Dump     bool
	Input    string

	// Interpreter settings. Only flags set on the command line override the
	// configuration file.
	Settings config.Interpreter
}

// RunResult is the JSON payload of the run command.
type RunResult struct {
	Program string  `json:"program,omitempty"`
	Output  string  `json:"output"`
	Steps   int64   `json:"steps"`
	Pointer int     `json:"pointer"`
	Tape    []int64 `json:"tape,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <file|->",
		Short: "Execute a tape-machine program",
		Long: `Execute a tape-machine program with the interpreter.

Input comes from --input when given, otherwise from stdin. Interpreter
settings default to the configuration file; flags override it.

Examples:
  basm run hello.bf
  basm run add.bf --number-input --number-output --input "2 3"
  basm run prog.bf --optimize --show --dump --cell-size 16 --overflow abort`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProgram(opts, args[0], cmd)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&opts.Optimize, "optimize", false, "optimize the program before running it")
	flags.BoolVar(&opts.Show, "show", false, "print the executed program before running it")
	flags.BoolVar(&opts.Dump, "dump", false, "print the tape after the program ends")
	flags.StringVar(&opts.Input, "input", "", "program input (default: stdin)")
	flags.IntVar(&opts.Settings.CellBits, "cell-size", 8, "cell width in bits (8|16|32)")
	flags.BoolVar(&opts.Settings.Signed, "signed", false, "use signed cells")
	flags.StringVar(&opts.Settings.Overflow, "overflow", "wrap", "overflow policy (wrap|saturate|abort)")
	flags.IntVar(&opts.Settings.TapeLimit, "tape-limit", 0, "maximum number of cells, 0 for unbounded")
	flags.BoolVar(&opts.Settings.NumberInput, "number-input", false, "read whitespace-separated integers")
	flags.BoolVar(&opts.Settings.NumberOutput, "number-output", false, "write cells as decimal numbers")
	flags.Int64Var(&opts.Settings.MaxSteps, "max-steps", 0, "instruction budget, 0 for unbounded")

	return cmd
}

// interpreterSettings overlays the flags the user set on the file settings.
func interpreterSettings(cmd *cobra.Command, file, flags config.Interpreter) config.Interpreter {
	settings := file
	changed := cmd.Flags().Changed
	if changed("cell-size") {
		settings.CellBits = flags.CellBits
	}
	if changed("signed") {
		settings.Signed = flags.Signed
	}
	if changed("overflow") {
		settings.Overflow = flags.Overflow
	}
	if changed("tape-limit") {
		settings.TapeLimit = flags.TapeLimit
	}
	if changed("number-input") {
		settings.NumberInput = flags.NumberInput
	}
	if changed("number-output") {
		settings.NumberOutput = flags.NumberOutput
	}
	if changed("max-steps") {
		settings.MaxSteps = flags.MaxSteps
	}
	return settings
}

func runProgram(opts *RunOptions, path string, cmd *cobra.Command) error {
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
	settings, err := interpreterSettings(cmd, cfg.Interpreter, opts.Settings).Runtime()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeSettings, err.Error(), err)
	}

	program := src
	if opts.Optimize {
		program = newOptimizer(cfg, logger).Run(src).Output
		logger.Debug("optimized program", "source_len", len(src), "optimized_len", len(program))
	}

	var in io.Reader = cmd.InOrStdin()
	if cmd.Flags().Changed("input") || path == "-" {
		in = strings.NewReader(opts.Input)
	}

	// JSON mode buffers the program output so it lands inside the envelope.
	var out bytes.Buffer
	var w io.Writer = &out
	if formatter.Format != "json" {
		if opts.Show {
			fmt.Fprintln(formatter.Writer, program)
		}
		w = formatter.Writer
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	it := interpreter.New(program, settings, in, w)
	runErr := it.Run(ctx)
	logger.Debug("program finished", "steps", it.Steps(), "pointer", it.Pointer())

	result := RunResult{
		Output:  out.String(),
		Steps:   it.Steps(),
		Pointer: it.Pointer(),
	}
	if opts.Show {
		result.Program = program
	}
	if opts.Dump {
		result.Tape = it.Tape()
	}

	if formatter.Format == "json" {
		if runErr != nil {
			resp := CLIResponse{Status: "error", Data: result, Error: programError(runErr)}
			if err := formatter.JSON(resp); err != nil {
				return err
			}
			return WrapExitError(ExitFailure, "program failed", runErr)
		}
		return formatter.JSON(CLIResponse{Status: "ok", Data: result})
	}

	if opts.Dump {
		dumpTape(formatter.GetErrWriter(), result)
	}
	if runErr != nil {
		cliErr := programError(runErr)
		fmt.Fprintf(formatter.GetErrWriter(), "Error [%s]: %s\n", cliErr.Code, cliErr.Message)
		return WrapExitError(ExitFailure, "program failed", runErr)
	}
	return nil
}

// programError converts an execution failure to its response form.
func programError(err error) *CLIError {
	var ierr *interpreter.Error
	if errors.As(err, &ierr) {
		return &CLIError{Code: ierr.Code, Message: ierr.Message, Details: map[string]int64{"at": ierr.At}}
	}
	return &CLIError{Code: ErrCodeGeneric, Message: err.Error()}
}

// dumpTape prints the final tape with the pointer cell bracketed.
func dumpTape(w io.Writer, result RunResult) {
	fmt.Fprintf(w, "\nsteps: %d\npointer: %d\ntape:", result.Steps, result.Pointer)
	for i, v := range result.Tape {
		if i == result.Pointer {
			fmt.Fprintf(w, " [%d]", v)
		} else {
			fmt.Fprintf(w, " %d", v)
		}
	}
	fmt.Fprintln(w)
}
