package optimizer_test

import (
	"context"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/basm/internal/interpreter"
	"github.com/roach88/basm/internal/optimizer"
)

const equivalenceSteps = 100_000

var equivalenceInput = []byte("the quick brown fox")

// randomProgram builds a balanced program. The leading moves keep small
// leftward drifts off the tape origin.
func randomProgram(r *rand.Rand) string {
	return strings.Repeat(">", 8) + randomBody(r, 0)
}

func randomBody(r *rand.Rand, depth int) string {
	var sb strings.Builder
	for range r.IntN(12) {
		switch k := r.IntN(10); {
		case k < 3:
			sb.WriteString(strings.Repeat("+", 1+r.IntN(4)))
		case k < 5:
			sb.WriteString(strings.Repeat("-", 1+r.IntN(3)))
		case k < 6:
			sb.WriteByte('>')
		case k < 7:
			sb.WriteByte('<')
		case k < 8:
			sb.WriteByte(".,"[r.IntN(2)])
		case k < 9 && depth < 2:
			sb.WriteByte('[')
			sb.WriteString(randomBody(r, depth+1))
			sb.WriteByte(']')
		default:
			sb.WriteString(" x ")
		}
	}
	return sb.String()
}

// trimZeros drops trailing zero cells. An all-zero tape and a tape that was
// never touched both come back nil.
func trimZeros(tape []int64) []int64 {
	for len(tape) > 0 && tape[len(tape)-1] == 0 {
		tape = tape[:len(tape)-1]
	}
	if len(tape) == 0 {
		return nil
	}
	return tape
}

func execute(t *testing.T, program string, steps int64) ([]byte, []int64, error) {
	t.Helper()
	var out strings.Builder
	it := interpreter.New(program, interpreter.Config{MaxSteps: steps},
		strings.NewReader(string(equivalenceInput)), &out)
	err := it.Run(context.Background())
	return []byte(out.String()), trimZeros(it.Tape()), err
}

func assertEquivalent(t *testing.T, src string) bool {
	t.Helper()
	wantOut, wantTape, err := execute(t, src, equivalenceSteps)
	if err != nil {
		return false
	}

	opt := optimizer.Optimize(src)
	gotOut, gotTape, err := execute(t, opt, 4*equivalenceSteps)
	require.NoError(t, err, "source %q optimized to %q", src, opt)
	assert.Equal(t, wantOut, gotOut, "source %q optimized to %q", src, opt)
	assert.Equal(t, wantTape, gotTape, "source %q optimized to %q", src, opt)
	return true
}

func TestOptimizePreservesBehaviour(t *testing.T) {
	programs := []string{
		"++++++++++++>++++<[->>+<<]>[>[->+<<<+>>]>[-<+>]<<-]",
		"++++++++[>++++++++<-]>+.+.+.",
		">+++>++<<[-]>>[-<+>]<.",
		",>,<.>.",
		">>+++>.<+<[-]<-->+.",
		"+++>[-]<--.",
		">+[.-]<.",
		">+[,.[-]]<.",
		"+++[->+<]>.[",
	}
	for _, src := range programs {
		assert.True(t, assertEquivalent(t, src), "fixture %q did not terminate", src)
	}
}

func TestTrimZeros(t *testing.T) {
	assert.Nil(t, trimZeros([]int64{0, 0}))
	assert.Nil(t, trimZeros(nil))
	assert.Equal(t, []int64{0, 3}, trimZeros([]int64{0, 3, 0}))
}

func TestOptimizeKeepsNestedIOOrder(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{">+[.-]<.", "\x01\x00"},
		{">+[,.[-]]<.", "t\x00"},
		{"+++[->+<]>.[", "\x03"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, _, err := execute(t, optimizer.Optimize(tt.src), equivalenceSteps)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestOptimizePreservesBehaviourRandom(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))

	checked := 0
	for range 500 {
		if assertEquivalent(t, randomProgram(r)) {
			checked++
		}
	}
	assert.Greater(t, checked, 100)
}
