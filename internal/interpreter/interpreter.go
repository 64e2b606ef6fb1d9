// Package interpreter executes tape-machine programs.
//
// Programs are compiled to clumped bytecode and run against a tape that
// grows on demand. Cell width, signedness, overflow policy, tape limit and
// I/O encoding are configurable; see Config.
package interpreter

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"unicode"
	"unicode/utf8"
)

// cancelCheckInterval is how many steps run between context checks.
const cancelCheckInterval = 4096

// Interpreter runs one program. It is not safe for concurrent use.
type Interpreter struct {
	cfg  Config
	code []Instruction

	tape  []int64
	ptr   int
	ip    int
	steps int64

	in  *bufio.Reader
	out io.Writer
}

// New prepares program for execution. A nil in behaves as empty input and a
// nil out discards output.
func New(program string, cfg Config, in io.Reader, out io.Writer) *Interpreter {
	if in == nil {
		in = bytes.NewReader(nil)
	}
	if out == nil {
		out = io.Discard
	}
	return &Interpreter{
		cfg:  cfg,
		code: Compile(program),
		in:   bufio.NewReader(in),
		out:  out,
	}
}

// Execute runs program to completion and returns everything it wrote, even
// when execution fails part way.
func Execute(ctx context.Context, program string, cfg Config, input []byte) ([]byte, error) {
	var out bytes.Buffer
	err := New(program, cfg, bytes.NewReader(input), &out).Run(ctx)
	return out.Bytes(), err
}

// Run steps until the program ends, fails or ctx is cancelled.
func (it *Interpreter) Run(ctx context.Context) error {
	for {
		if it.steps%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return &Error{Code: CodeCancelled, Message: "execution cancelled", At: it.steps, Err: err}
			}
		}

		more, err := it.Step()
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

// Step executes one instruction. It returns false once the instruction
// pointer has left the program.
func (it *Interpreter) Step() (bool, error) {
	if it.ip >= len(it.code) {
		return false, nil
	}
	if it.cfg.MaxSteps > 0 && it.steps >= it.cfg.MaxSteps {
		return false, &Error{
			Code:    CodeStepLimitExceeded,
			Message: fmt.Sprintf("step limit of %d reached", it.cfg.MaxSteps),
			At:      it.cfg.MaxSteps,
		}
	}
	it.steps++

	inst := it.code[it.ip]
	switch inst.Op {
	case OpAdd:
		if err := it.add(int64(inst.N)); err != nil {
			return false, err
		}

	case OpSub:
		if err := it.add(-int64(inst.N)); err != nil {
			return false, err
		}

	case OpRight:
		it.ptr += inst.N

	case OpLeft:
		if it.ptr < inst.N {
			return false, &Error{
				Code:    CodeTapePointerOutOfBounds,
				Message: "the tape pointer has gone into negatives",
				At:      int64(it.ptr - inst.N),
			}
		}
		it.ptr -= inst.N

	case OpOpen:
		cell, err := it.cell()
		if err != nil {
			return false, err
		}
		if *cell == 0 {
			if inst.N < 0 {
				// Nothing closes this loop: skipping it runs off the end.
				it.ip = len(it.code)
				return true, nil
			}
			it.ip = inst.N
		}

	case OpClose:
		cell, err := it.cell()
		if err != nil {
			return false, err
		}
		if *cell != 0 {
			if inst.N < 0 {
				return false, &Error{
					Code:    CodeInstructionPointerOutOfBounds,
					Message: "the instruction pointer has gone into negatives",
					At:      int64(it.ip),
				}
			}
			it.ip = inst.N
		}

	case OpIn:
		if err := it.read(); err != nil {
			return false, err
		}

	case OpOut:
		if err := it.write(); err != nil {
			return false, err
		}
	}

	it.ip++
	return true, nil
}

// Tape returns the cells allocated so far. The slice is owned by the
// interpreter.
func (it *Interpreter) Tape() []int64 {
	return it.tape
}

// Pointer returns the current tape position.
func (it *Interpreter) Pointer() int {
	return it.ptr
}

// Steps returns the number of instructions executed.
func (it *Interpreter) Steps() int64 {
	return it.steps
}

// cell returns the current cell, growing the tape up to it first.
func (it *Interpreter) cell() (*int64, error) {
	if it.ptr >= len(it.tape) {
		if it.cfg.TapeLimit > 0 && it.ptr+1 > it.cfg.TapeLimit {
			return nil, tapeLimitError(it.cfg.TapeLimit, it.ptr+1)
		}
		it.tape = append(it.tape, make([]int64, it.ptr+1-len(it.tape))...)
	}
	return &it.tape[it.ptr], nil
}

func (it *Interpreter) add(delta int64) error {
	cell, err := it.cell()
	if err != nil {
		return err
	}
	return it.store(cell, *cell+delta)
}

// store writes v into cell under the configured overflow policy.
func (it *Interpreter) store(cell *int64, v int64) error {
	lo, hi := it.cfg.Cell.Bounds()
	if v >= lo && v <= hi {
		*cell = v
		return nil
	}

	switch it.cfg.Overflow {
	case Saturate:
		*cell = min(max(v, lo), hi)
	case Abort:
		return overflowError(it.ptr)
	default:
		span := hi - lo + 1
		r := (v - lo) % span
		if r < 0 {
			r += span
		}
		*cell = lo + r
	}
	return nil
}

// read fills the current cell from input. At end of input the cell keeps
// its value.
func (it *Interpreter) read() error {
	cell, err := it.cell()
	if err != nil {
		return err
	}

	if !it.cfg.NumberInput {
		r, _, err := it.in.ReadRune()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return &Error{Code: CodeInvalidInput, Message: "reading input", At: int64(it.ptr), Err: err}
		}
		return it.store(cell, int64(r))
	}

	token, err := it.nextToken()
	if err != nil {
		return &Error{Code: CodeInvalidInput, Message: "reading input", At: int64(it.ptr), Err: err}
	}
	if token == "" {
		return nil
	}
	n, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return &Error{
			Code:    CodeInvalidInput,
			Message: fmt.Sprintf("input %q is not an integer", token),
			At:      int64(it.ptr),
			Err:     err,
		}
	}
	return it.store(cell, n)
}

// nextToken returns the next whitespace-delimited word, or "" at end of input.
func (it *Interpreter) nextToken() (string, error) {
	var word []rune
	for {
		r, _, err := it.in.ReadRune()
		if errors.Is(err, io.EOF) {
			return string(word), nil
		}
		if err != nil {
			return "", err
		}
		if unicode.IsSpace(r) {
			if len(word) > 0 {
				return string(word), nil
			}
			continue
		}
		word = append(word, r)
	}
}

func (it *Interpreter) write() error {
	cell, err := it.cell()
	if err != nil {
		return err
	}

	if it.cfg.NumberOutput {
		_, err = fmt.Fprintf(it.out, "%d ", *cell)
	} else {
		r := utf8.RuneError
		if *cell >= 0 && *cell <= utf8.MaxRune && utf8.ValidRune(rune(*cell)) {
			r = rune(*cell)
		}
		_, err = io.WriteString(it.out, string(r))
	}
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
