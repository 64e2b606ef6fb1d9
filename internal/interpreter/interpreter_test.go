package interpreter

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, program string, cfg Config, input string) (*Interpreter, string, error) {
	t.Helper()
	var out strings.Builder
	it := New(program, cfg, strings.NewReader(input), &out)
	err := it.Run(context.Background())
	return it, out.String(), err
}

func TestCompile(t *testing.T) {
	code := Compile("+++>> comment [-]<")
	assert.Equal(t, []Instruction{
		{Op: OpAdd, N: 3},
		{Op: OpRight, N: 2},
		{Op: OpOpen, N: 4},
		{Op: OpSub, N: 1},
		{Op: OpClose, N: 2},
		{Op: OpLeft, N: 1},
	}, code)
}

func TestCompileUnmatched(t *testing.T) {
	assert.Equal(t, []Instruction{{Op: OpClose, N: -1}, {Op: OpOpen, N: -1}}, Compile("]["))
}

func TestMultiply(t *testing.T) {
	it, _, err := run(t, "++++++++++++>++++<[->>+<<]>[>[->+<<<+>>]>[-<+>]<<-]", Config{}, "")
	require.NoError(t, err)
	assert.Equal(t, []int64{48, 0, 12, 0}, it.Tape())
	assert.Equal(t, 1, it.Pointer())
}

func TestOutput(t *testing.T) {
	_, out, err := run(t, "++++++++[>++++++++<-]>+.", Config{}, "")
	require.NoError(t, err)
	assert.Equal(t, "A", out)
}

func TestOverflowPolicies(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		src  string
		want int64
	}{
		{"u8 wraps down", Config{}, "-", 255},
		{"u8 wraps up", Config{}, "-+", 0},
		{"i8 holds negatives", Config{Cell: I8}, "-", -1},
		{"i8 wraps at max", Config{Cell: I8}, strings.Repeat("+", 128), -128},
		{"u8 saturates low", Config{Overflow: Saturate}, "---", 0},
		{"i8 saturates high", Config{Cell: I8, Overflow: Saturate}, strings.Repeat("+", 200), 127},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it, _, err := run(t, tt.src, tt.cfg, "")
			require.NoError(t, err)
			require.NotEmpty(t, it.Tape())
			assert.Equal(t, tt.want, it.Tape()[0])
		})
	}
}

func TestOverflowAbort(t *testing.T) {
	_, _, err := run(t, ">-", Config{Overflow: Abort}, "")
	require.ErrorIs(t, err, ErrAbortedDueToOverflow)

	var ierr *Error
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, int64(1), ierr.At)
}

func TestTapePointerOutOfBounds(t *testing.T) {
	_, _, err := run(t, "><<", Config{}, "")
	assert.ErrorIs(t, err, ErrTapePointerOutOfBounds)
}

func TestTapeLimit(t *testing.T) {
	_, _, err := run(t, ">>+", Config{TapeLimit: 2}, "")
	assert.ErrorIs(t, err, ErrTapeLimitExceeded)

	it, _, err := run(t, ">+>>", Config{TapeLimit: 2}, "")
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 1}, it.Tape())
}

func TestUnmatchedBrackets(t *testing.T) {
	_, _, err := run(t, "+]", Config{}, "")
	assert.ErrorIs(t, err, ErrInstructionPointerOutOfBounds)

	_, out, err := run(t, "]+.", Config{}, "")
	require.NoError(t, err)
	assert.Equal(t, "\x01", out)

	_, out, err = run(t, "[+.", Config{}, "")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestCharacterInput(t *testing.T) {
	_, out, err := run(t, ",>,.<.", Config{}, "hé")
	require.NoError(t, err)
	assert.Equal(t, "éh", out)
}

func TestInputAtEOFKeepsCell(t *testing.T) {
	_, out, err := run(t, "+,.", Config{}, "")
	require.NoError(t, err)
	assert.Equal(t, "\x01", out)
}

func TestNumberIO(t *testing.T) {
	cfg := Config{Cell: I32, NumberInput: true, NumberOutput: true}
	_, out, err := run(t, ",>,[-<+>]<.", cfg, "  3\n4 ")
	require.NoError(t, err)
	assert.Equal(t, "7 ", out)

	_, _, err = run(t, ",", cfg, "seven")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNumberInputAppliesOverflow(t *testing.T) {
	it, _, err := run(t, ",", Config{NumberInput: true}, "300")
	require.NoError(t, err)
	assert.Equal(t, int64(44), it.Tape()[0])

	_, _, err = run(t, ",", Config{NumberInput: true, Overflow: Abort}, "300")
	assert.ErrorIs(t, err, ErrAbortedDueToOverflow)
}

func TestInvalidRuneOutput(t *testing.T) {
	_, out, err := run(t, "-.", Config{Cell: I32}, "")
	require.NoError(t, err)
	assert.Equal(t, "�", out)
}

func TestMaxSteps(t *testing.T) {
	it, _, err := run(t, "+[]", Config{MaxSteps: 100}, "")
	assert.ErrorIs(t, err, ErrStepLimitExceeded)
	assert.Equal(t, int64(100), it.Steps())
}

func TestCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New("+[]", Config{}, nil, nil).Run(ctx)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecuteKeepsPartialOutput(t *testing.T) {
	out, err := Execute(context.Background(), "+.<", Config{}, nil)
	assert.ErrorIs(t, err, ErrTapePointerOutOfBounds)
	assert.Equal(t, []byte("\x01"), out)
}

func TestCellKindFor(t *testing.T) {
	k, err := CellKindFor(16, true)
	require.NoError(t, err)
	assert.Equal(t, I16, k)
	assert.Equal(t, "i16", k.String())

	_, err = CellKindFor(12, false)
	assert.Error(t, err)
}

func TestParseOverflow(t *testing.T) {
	o, err := ParseOverflow("saturate")
	require.NoError(t, err)
	assert.Equal(t, Saturate, o)

	o, err = ParseOverflow("")
	require.NoError(t, err)
	assert.Equal(t, Wrap, o)

	_, err = ParseOverflow("explode")
	assert.Error(t, err)
}
