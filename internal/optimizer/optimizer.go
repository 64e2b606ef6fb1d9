package optimizer

import (
	"io"
	"log/slog"
)

// DefaultReorderRounds is the number of reorder passes in the default
// pipeline: one before merging and one after.
const DefaultReorderRounds = 2

// Optimize rewrites a tape-machine program with the default pipeline.
// The output produces the same I/O as src under any interpreter
// configuration.
func Optimize(src string) string {
	return New().Run(src).Output
}

// Pass is one rewrite over a block's operations. Passes recurse into nested
// blocks themselves.
type Pass struct {
	Name string
	Run  func([]Operation) []Operation
}

var (
	reorderPass = Pass{Name: "reorder_operations", Run: ReorderOperations}
	mergePass   = Pass{Name: "merge_offsets", Run: MergeOffsets}
	zeroingPass = Pass{Name: "remove_offsets_before_zeroing", Run: RemoveOffsetsBeforeZeroing}
)

// PassStats records the program after one pass.
type PassStats struct {
	Name       string `json:"name"`
	Operations int    `json:"operations"`
	Length     int    `json:"length"`
}

// Result is the outcome of one optimizer run.
type Result struct {
	Output string      `json:"output"`
	Before Counts      `json:"before"`
	After  Counts      `json:"after"`
	Passes []PassStats `json:"passes"`
}

// Optimizer runs the pass pipeline. The zero value is not usable; call New.
type Optimizer struct {
	logger        *slog.Logger
	reorderRounds int
}

// Option configures an Optimizer.
type Option func(*Optimizer)

// WithLogger routes per-pass debug logs to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Optimizer) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithReorderRounds sets how many reorder passes run. The first runs before
// merging, the rest after. Values below 1 are ignored.
func WithReorderRounds(n int) Option {
	return func(o *Optimizer) {
		if n >= 1 {
			o.reorderRounds = n
		}
	}
}

// New creates an Optimizer.
func New(opts ...Option) *Optimizer {
	o := &Optimizer{
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		reorderRounds: DefaultReorderRounds,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Pipeline returns the passes in execution order.
func (o *Optimizer) Pipeline() []Pass {
	passes := []Pass{reorderPass, mergePass}
	for i := 1; i < o.reorderRounds; i++ {
		passes = append(passes, reorderPass)
	}
	return append(passes, zeroingPass)
}

// Run parses src, applies the pipeline and serializes the result.
func (o *Optimizer) Run(src string) Result {
	program := Parse(src)
	ops := program.Ops

	res := Result{Before: Count(ops)}
	o.logger.Debug("parsed program",
		"length", len(src),
		"operations", res.Before.Total(),
		"dynamic", program.Dynamic)

	out := src
	for _, pass := range o.Pipeline() {
		ops = pass.Run(ops)

		out = Serialize(ops)
		stats := PassStats{Name: pass.Name, Operations: Count(ops).Total(), Length: len(out)}
		res.Passes = append(res.Passes, stats)
		o.logger.Debug("pass applied",
			"pass", stats.Name,
			"operations", stats.Operations,
			"length", stats.Length)
	}

	res.After = Count(ops)
	res.Output = out
	return res
}
