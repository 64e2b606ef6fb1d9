package harness

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/basm/internal/config"
	"github.com/roach88/basm/internal/interpreter"
	"github.com/roach88/basm/internal/optimizer"
)

func strPtr(s string) *string { return &s }

func TestRun_Equivalent(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "letter",
		Description: "prints A",
		Program:     "++++++++[>++++++++<-]>+.",
		Expect:      &Expect{Output: strPtr("A")},
	})
	require.NoError(t, err)

	assert.True(t, result.Pass, result.Errors)
	assert.Equal(t, "A", result.Source.Output)
	assert.Equal(t, "A", result.Optimized.Output)
	assert.Empty(t, result.Source.ErrorCode)
}

func TestRun_ExpectMismatch(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "wrong",
		Description: "expects the wrong letter",
		Program:     "++++++++[>++++++++<-]>+.",
		Expect:      &Expect{Output: strPtr("B")},
	})
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Assertion failed: output")
	assert.Contains(t, result.Errors[0], "Optimized program:")
}

func TestRun_ExpectedError(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "overflow",
		Description: "abort on underflow",
		Program:     "-.",
		Interpreter: config.Interpreter{Overflow: "abort"},
		Expect:      &Expect{Error: interpreter.CodeAbortedDueToOverflow},
	})
	require.NoError(t, err)

	assert.True(t, result.Pass, result.Errors)
	assert.Equal(t, interpreter.CodeAbortedDueToOverflow, result.Source.ErrorCode)
	assert.Equal(t, interpreter.CodeAbortedDueToOverflow, result.Optimized.ErrorCode)
}

func TestRun_UnexpectedError(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "underflow",
		Description: "fails although success was expected",
		Program:     "<+",
		Expect:      &Expect{},
	})
	require.NoError(t, err)

	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "failure E202")
}

func TestRun_StepLimitComparesPrefix(t *testing.T) {
	s := &Scenario{
		Name:        "spin",
		Description: "never terminates",
		Program:     "+.[++]",
	}
	s.Interpreter.MaxSteps = 50

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
	assert.Equal(t, interpreter.CodeStepLimitExceeded, result.Source.ErrorCode)
}

func TestRun_InvalidScenario(t *testing.T) {
	_, err := Run(&Scenario{Name: "x", Program: "+"})
	require.Error(t, err)
	assert.Equal(t, ErrCodeMissingField, validationCode(t, err))
}

func TestHarness_Options(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	h := New(WithLogger(logger), WithOptimizer(optimizer.New(optimizer.WithReorderRounds(1))))
	result, err := h.Run(context.Background(), &Scenario{
		Name:        "logged",
		Description: "logs completion",
		Program:     "+++++[-]",
	})
	require.NoError(t, err)

	assert.True(t, result.Pass)
	assert.Equal(t, "[-]", result.Program)
	assert.Contains(t, logs.String(), "scenario completed")
	assert.Contains(t, logs.String(), "scenario=logged")
}

func TestAssertEquivalent(t *testing.T) {
	errs := assertEquivalent(
		Execution{Output: "ab"},
		Execution{Output: "ac", ErrorCode: interpreter.CodeTapeLimitExceeded},
	)
	require.Len(t, errs, 2)
	assert.Equal(t, AssertSameOutput, errs[0].(*AssertionError).Type)
	assert.Equal(t, AssertSameError, errs[1].(*AssertionError).Type)

	errs = assertEquivalent(
		Execution{Output: "ab", ErrorCode: interpreter.CodeStepLimitExceeded},
		Execution{Output: "xab"},
	)
	require.Len(t, errs, 1)
	assert.Equal(t, AssertOutputPrefixed, errs[0].(*AssertionError).Type)

	assert.Empty(t, assertEquivalent(Execution{Output: "x"}, Execution{Output: "x"}))
}
