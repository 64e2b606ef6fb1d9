package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/basm/internal/interpreter"
)

// Assertion kinds reported in AssertionError.Type.
const (
	AssertOutput         = "output"
	AssertError          = "error"
	AssertSameOutput     = "same_output"
	AssertSameError      = "same_error"
	AssertOutputPrefixed = "output_prefix"
)

// AssertionError is returned when a check fails. It carries the optimized
// program so the failure can be reproduced.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Program  string
}

func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if e.Program != "" {
		fmt.Fprintf(&buf, "\nOptimized program:\n  %s\n", e.Program)
	}

	return buf.String()
}

// EvaluateAssertions checks result against the scenario's expect clause and
// the two runs against each other. It returns one message per failed check.
func EvaluateAssertions(s *Scenario, result *Result) []string {
	var errs []error
	if s.Expect != nil {
		errs = append(errs, assertExpect(s.Expect, result.Source)...)
	}
	errs = append(errs, assertEquivalent(result.Source, result.Optimized)...)

	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		if ae, ok := err.(*AssertionError); ok {
			ae.Program = result.Program
		}
		msgs = append(msgs, err.Error())
	}
	return msgs
}

func assertExpect(exp *Expect, got Execution) []error {
	var errs []error

	if exp.Output != nil && *exp.Output != got.Output {
		errs = append(errs, &AssertionError{
			Type:     AssertOutput,
			Expected: fmt.Sprintf("%q", *exp.Output),
			Actual:   fmt.Sprintf("%q", got.Output),
		})
	}

	if exp.Error != got.ErrorCode {
		errs = append(errs, &AssertionError{
			Type:     AssertError,
			Expected: describeOutcome(exp.Error),
			Actual:   describeOutcome(got.ErrorCode),
		})
	}

	return errs
}

// assertEquivalent compares the source run with the optimized run. A source
// run cut short by its step budget only constrains the optimized output's
// prefix.
func assertEquivalent(src, opt Execution) []error {
	if src.ErrorCode == interpreter.CodeStepLimitExceeded {
		if !strings.HasPrefix(opt.Output, src.Output) {
			return []error{&AssertionError{
				Type:     AssertOutputPrefixed,
				Expected: fmt.Sprintf("output starting with %q", src.Output),
				Actual:   fmt.Sprintf("%q", opt.Output),
			}}
		}
		return nil
	}

	var errs []error
	if src.Output != opt.Output {
		errs = append(errs, &AssertionError{
			Type:     AssertSameOutput,
			Expected: fmt.Sprintf("%q", src.Output),
			Actual:   fmt.Sprintf("%q", opt.Output),
		})
	}
	if src.ErrorCode != opt.ErrorCode {
		errs = append(errs, &AssertionError{
			Type:     AssertSameError,
			Expected: describeOutcome(src.ErrorCode),
			Actual:   describeOutcome(opt.ErrorCode),
		})
	}
	return errs
}

func describeOutcome(code string) string {
	if code == "" {
		return "success"
	}
	return "failure " + code
}
