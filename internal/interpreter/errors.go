package interpreter

import "fmt"

// Error codes for execution failures (E200-E299).
const (
	CodeTapeLimitExceeded             = "E201"
	CodeTapePointerOutOfBounds        = "E202"
	CodeInstructionPointerOutOfBounds = "E203"
	CodeAbortedDueToOverflow          = "E204"
	CodeInvalidInput                  = "E205"
	CodeStepLimitExceeded             = "E206"
	CodeCancelled                     = "E207"
)

// Error is an execution failure. At is the cell index, instruction index or
// limit the failure refers to, depending on Code.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	At      int64  `json:"at"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors by code so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Sentinels for errors.Is.
var (
	ErrTapeLimitExceeded             = &Error{Code: CodeTapeLimitExceeded}
	ErrTapePointerOutOfBounds        = &Error{Code: CodeTapePointerOutOfBounds}
	ErrInstructionPointerOutOfBounds = &Error{Code: CodeInstructionPointerOutOfBounds}
	ErrAbortedDueToOverflow          = &Error{Code: CodeAbortedDueToOverflow}
	ErrInvalidInput                  = &Error{Code: CodeInvalidInput}
	ErrStepLimitExceeded             = &Error{Code: CodeStepLimitExceeded}
	ErrCancelled                     = &Error{Code: CodeCancelled}
)

func tapeLimitError(limit, tried int) *Error {
	return &Error{
		Code:    CodeTapeLimitExceeded,
		Message: fmt.Sprintf("the tape size limit was exceeded, tried to expand to %d, but limit is %d", tried, limit),
		At:      int64(tried),
	}
}

func overflowError(at int) *Error {
	return &Error{
		Code:    CodeAbortedDueToOverflow,
		Message: fmt.Sprintf("aborted due to overflow at cell %d", at),
		At:      int64(at),
	}
}
