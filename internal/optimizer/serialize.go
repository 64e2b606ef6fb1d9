package optimizer

import "strings"

// Serialize turns ops back into program text, starting with the pointer at
// cell 0. Each positioned operation is preceded by the shortest `>`/`<` run
// that reaches its cell.
func Serialize(ops []Operation) string {
	var sb strings.Builder
	writeOps(&sb, ops)
	return sb.String()
}

// Source serializes the block as a whole program, without brackets.
func (b *Block) Source() string {
	return Serialize(b.Ops)
}

// writeOps returns the cell the pointer is left on.
func writeOps(sb *strings.Builder, ops []Operation) int {
	pointer := 0
	for _, op := range ops {
		if cell, ok := op.Position(); ok {
			move(sb, cell-pointer)
			pointer = cell
		}

		switch o := op.(type) {
		case *BlockOp:
			writeBlock(sb, o.Block)
		case *Offset:
			r := int64(o.Recurrence)
			if r > 0 {
				sb.WriteString(strings.Repeat("+", int(r)))
			} else {
				sb.WriteString(strings.Repeat("-", int(-r)))
			}
		case *InOut:
			sb.WriteByte(o.Kind.Char())
		case *LooseBracket:
			sb.WriteByte(o.Kind.Char())
		case *Text:
			sb.WriteString(o.Raw)
		}
	}
	return pointer
}

// writeBlock emits a loop whose body ends on the dynamic endpoint, or back on
// the entry cell when the block is static.
func writeBlock(sb *strings.Builder, b *Block) {
	sb.WriteByte('[')
	last := writeOps(sb, b.Ops)
	target := 0
	if b.Dynamic {
		target = b.Endpoint
	}
	move(sb, target-last)
	sb.WriteByte(']')
}

func move(sb *strings.Builder, delta int) {
	if delta > 0 {
		sb.WriteString(strings.Repeat(">", delta))
	} else if delta < 0 {
		sb.WriteString(strings.Repeat("<", -delta))
	}
}
