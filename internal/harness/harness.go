package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/basm/internal/interpreter"
	"github.com/roach88/basm/internal/optimizer"
)

// Harness runs scenarios. The zero value is not usable; call New.
type Harness struct {
	optimizer *optimizer.Optimizer
	logger    *slog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger routes scenario progress to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = logger
	}
}

// WithOptimizer replaces the default optimizer.
func WithOptimizer(o *optimizer.Optimizer) Option {
	return func(h *Harness) {
		h.optimizer = o
	}
}

// New creates a Harness that logs nothing and uses the default pipeline.
func New(opts ...Option) *Harness {
	h := &Harness{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.optimizer == nil {
		h.optimizer = optimizer.New(optimizer.WithLogger(h.logger))
	}
	return h
}

// Run executes scenario with a default Harness.
func Run(scenario *Scenario) (*Result, error) {
	return New().Run(context.Background(), scenario)
}

// Run executes the scenario's program before and after optimization and
// evaluates the result. The error is non-nil only when the scenario itself
// is unusable; behavioural mismatches are reported in Result.Errors.
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	if err := ValidateScenario(scenario); err != nil {
		return nil, err
	}
	cfg, err := scenario.Interpreter.Runtime()
	if err != nil {
		return nil, fmt.Errorf("interpreter settings: %w", err)
	}

	result := NewResult(scenario.Name)
	result.Program = h.optimizer.Run(scenario.Program).Output

	result.Source = execute(ctx, scenario.Program, cfg, scenario.Input)
	result.Optimized = execute(ctx, result.Program, cfg, scenario.Input)

	for _, msg := range EvaluateAssertions(scenario, result) {
		result.AddError(msg)
	}

	h.logger.Info("scenario completed",
		"scenario", scenario.Name,
		"pass", result.Pass,
		"source_len", len(scenario.Program),
		"optimized_len", len(result.Program),
	)
	return result, nil
}

func execute(ctx context.Context, program string, cfg interpreter.Config, input string) Execution {
	out, err := interpreter.Execute(ctx, program, cfg, []byte(input))

	ex := Execution{Output: string(out)}
	if err != nil {
		ex.Error = err.Error()
		var ierr *interpreter.Error
		if errors.As(err, &ierr) {
			ex.ErrorCode = ierr.Code
		} else {
			ex.ErrorCode = "io"
		}
	}
	return ex
}
