package interpreter

import "fmt"

// Opcode is a clumped tape-machine instruction.
type Opcode uint8

const (
	OpAdd   Opcode = iota // `+` N times
	OpSub                 // `-` N times
	OpRight               // `>` N times
	OpLeft                // `<` N times
	OpOpen                // `[`
	OpClose               // `]`
	OpIn                  // `,`
	OpOut                 // `.`
)

var opcodeNames = [...]string{"add", "sub", "right", "left", "open", "close", "in", "out"}

func (o Opcode) String() string {
	if int(o) < len(opcodeNames) {
		return opcodeNames[o]
	}
	return fmt.Sprintf("opcode(%d)", o)
}

// Instruction is one bytecode step. N is the repeat count for the
// arithmetic and move opcodes and the jump target for brackets (-1 when the
// bracket is unmatched).
type Instruction struct {
	Op Opcode
	N  int
}

// Compile filters src down to the operator alphabet, clumps runs of the same
// arithmetic or move operator and resolves bracket jump targets.
func Compile(src string) []Instruction {
	var code []Instruction
	var open []int

	for i := 0; i < len(src); i++ {
		var op Opcode
		switch src[i] {
		case '+':
			op = OpAdd
		case '-':
			op = OpSub
		case '>':
			op = OpRight
		case '<':
			op = OpLeft
		case '[':
			open = append(open, len(code))
			code = append(code, Instruction{Op: OpOpen, N: -1})
			continue
		case ']':
			inst := Instruction{Op: OpClose, N: -1}
			if n := len(open); n > 0 {
				target := open[n-1]
				open = open[:n-1]
				code[target].N = len(code)
				inst.N = target
			}
			code = append(code, inst)
			continue
		case ',':
			code = append(code, Instruction{Op: OpIn})
			continue
		case '.':
			code = append(code, Instruction{Op: OpOut})
			continue
		default:
			continue
		}

		if n := len(code); n > 0 && code[n-1].Op == op {
			code[n-1].N++
			continue
		}
		code = append(code, Instruction{Op: op, N: 1})
	}

	return code
}
