package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/basm/internal/optimizer"
	"github.com/roach88/basm/internal/store"
)

// OptimizeOptions holds flags for the optimize command.
type OptimizeOptions struct {
	*RootOptions
	Output   string // output file path
	Database string // optimization cache, optional
	Label    string // label stored with the recorded run

	// IDGenerator overrides run IDs (for testing). If nil, the store uses UUIDv7.
	IDGenerator store.IDGenerator
}

// OptimizeResult is the JSON payload of the optimize command.
type OptimizeResult struct {
	SourceHash string                `json:"source_hash"`
	SourceLen  int                   `json:"source_len"`
	OutputLen  int                   `json:"output_len"`
	Passes     []optimizer.PassStats `json:"passes"`
	Output     string                `json:"output"`
	Cached     bool                  `json:"cached,omitempty"`
	RunID      string                `json:"run_id,omitempty"`
}

// NewOptimizeCommand creates the optimize command.
func NewOptimizeCommand(rootOpts *RootOptions) *cobra.Command {
	return newOptimizeCommand(&OptimizeOptions{RootOptions: rootOpts})
}

func newOptimizeCommand(opts *OptimizeOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "optimize <file|->",
		Short: "Optimize a tape-machine program",
		Long: `Optimize a tape-machine program and print the result.

Use "-" to read the program from stdin. With --db the output is cached
by source hash and every invocation is recorded in the run history.

Examples:
  basm optimize prog.bf
  basm optimize prog.bf -o prog.opt.bf
  cat prog.bf | basm optimize - --db basm.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOptimize(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite optimization cache")
	cmd.Flags().StringVar(&opts.Label, "label", "", "label for the recorded run (requires --db)")

	return cmd
}

func runOptimize(opts *OptimizeOptions, path string, cmd *cobra.Command) error {
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

	res := newOptimizer(cfg, logger).Run(src)
	result := OptimizeResult{
		SourceHash: store.SourceHash(src),
		SourceLen:  len(src),
		OutputLen:  len(res.Output),
		Passes:     res.Passes,
		Output:     res.Output,
	}
	for _, p := range res.Passes {
		formatter.VerboseLog("%-30s %6d ops %8d bytes", p.Name, p.Operations, p.Length)
	}

	if opts.Database != "" {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if err := cacheOptimization(ctx, opts, src, res, &result, logger); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), err)
		}
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(result.Output), 0644); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), err)
		}
	}

	if formatter.Format == "json" {
		return formatter.JSON(CLIResponse{Status: "ok", Data: result, TraceID: result.RunID})
	}

	if opts.Output != "" {
		fmt.Fprintf(formatter.Writer, "Wrote optimized program to %s (%d -> %d bytes)\n",
			opts.Output, result.SourceLen, result.OutputLen)
		return nil
	}
	fmt.Fprintln(formatter.Writer, result.Output)
	return nil
}

// cacheOptimization stores the output under the source hash and records the
// run. A cached source keeps its first output; result is updated to serve it.
func cacheOptimization(ctx context.Context, opts *OptimizeOptions, src string, res optimizer.Result, result *OptimizeResult, logger *slog.Logger) error {
	var storeOpts []store.Option
	if opts.IDGenerator != nil {
		storeOpts = append(storeOpts, store.WithIDGenerator(opts.IDGenerator))
	}
	st, err := store.Open(opts.Database, storeOpts...)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	cached, found, err := st.Lookup(ctx, result.SourceHash)
	if err != nil {
		return err
	}
	if found {
		logger.Debug("cache hit", "source_hash", result.SourceHash, "seq", cached.Seq)
		result.Cached = true
		result.Output = cached.Output
		result.OutputLen = cached.OutputLen
	} else {
		if err := st.PutOptimization(ctx, store.NewOptimization(src, res.Output)); err != nil {
			return err
		}
		logger.Debug("cached optimization", "source_hash", result.SourceHash)
	}

	run, err := st.RecordRun(ctx, store.Run{
		SourceHash: result.SourceHash,
		Label:      opts.Label,
		Report:     store.NewReport(res),
	})
	if err != nil {
		return err
	}
	result.RunID = run.ID
	logger.Info("run recorded", "id", run.ID, "seq", run.Seq)
	return nil
}
