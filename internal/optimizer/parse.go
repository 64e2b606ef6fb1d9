package optimizer

import "math"

// Parse reads a tape-machine program into its top-level block.
//
// Parsing never fails. Brackets that cannot be paired become LooseBracket
// nodes, and everything outside the operator alphabet becomes Text.
func Parse(src string) *Block {
	ops, endpoint := parseRegion(src)
	return &Block{Ops: ops, Endpoint: endpoint, Dynamic: isDynamic(ops, endpoint)}
}

// parseRegion scans src relative to its own entry cell and returns the
// operations with the net pointer displacement.
func parseRegion(src string) ([]Operation, int) {
	opensAfter, closesAfter := bracketsAfter(src)

	var ops []Operation
	pos := 0
	depth, blockStart := 0, 0
	textStart := -1

	for i := 0; i < len(src); i++ {
		c := src[i]

		// Looking for the bracket that closes the block opened at blockStart.
		if depth > 0 {
			switch c {
			case '[':
				depth++
			case ']':
				depth--
				if depth == 0 {
					inner, endpoint := parseRegion(src[blockStart+1 : i])
					ops = append(ops, &BlockOp{
						Cell:  pos,
						Block: &Block{Ops: inner, Endpoint: endpoint, Dynamic: isDynamic(inner, endpoint)},
					})
				}
			}
			continue
		}

		if !isOperator(c) {
			if textStart < 0 {
				textStart = i
			}
			continue
		}
		if textStart >= 0 {
			ops = append(ops, &Text{Raw: src[textStart:i]})
			textStart = -1
		}

		switch c {
		case '>':
			pos++
		case '<':
			pos--
		case '+':
			ops = pushOffset(ops, pos, 1)
		case '-':
			ops = pushOffset(ops, pos, -1)
		case ',':
			ops = append(ops, &InOut{Cell: pos, Kind: In})
		case '.':
			ops = append(ops, &InOut{Cell: pos, Kind: Out})
		case '[':
			if opensAfter[i] >= closesAfter[i] {
				ops = append(ops, &LooseBracket{Cell: pos, Kind: Open})
			} else {
				depth, blockStart = 1, i
			}
		case ']':
			ops = append(ops, &LooseBracket{Cell: pos, Kind: Close})
		}
	}
	if textStart >= 0 {
		ops = append(ops, &Text{Raw: src[textStart:]})
	}

	return dropVoidOffsets(ops), pos
}

// pushOffset extends a trailing same-cell offset or starts a new one when
// there is none or the counter would overflow.
func pushOffset(ops []Operation, cell int, delta int32) []Operation {
	if n := len(ops); n > 0 {
		if last, ok := ops[n-1].(*Offset); ok && last.Cell == cell {
			if (delta > 0 && last.Recurrence < math.MaxInt32) || (delta < 0 && last.Recurrence > math.MinInt32) {
				last.Recurrence += delta
				return ops
			}
		}
	}
	return append(ops, &Offset{Cell: cell, Recurrence: delta})
}

// bracketsAfter counts, for every byte index i, the `[` and `]` in src[i+1:].
func bracketsAfter(src string) (opens, closes []int) {
	opens = make([]int, len(src))
	closes = make([]int, len(src))
	o, c := 0, 0
	for i := len(src) - 1; i >= 0; i-- {
		opens[i], closes[i] = o, c
		switch src[i] {
		case '[':
			o++
		case ']':
			c++
		}
	}
	return opens, closes
}

func isDynamic(ops []Operation, endpoint int) bool {
	if endpoint != 0 {
		return true
	}
	for _, op := range ops {
		if b, ok := op.(*BlockOp); ok && b.Block.Dynamic {
			return true
		}
	}
	return false
}

func isOperator(c byte) bool {
	switch c {
	case '>', '<', '+', '-', ',', '.', '[', ']':
		return true
	}
	return false
}
