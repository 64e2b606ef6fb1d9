package optimizer

// RemoveOffsetsBeforeZeroing drops offsets whose effect is erased by a
// following `[-]` or `[+]` on the same cell.
//
// For each zeroing block the window reaches back to the nearest operation
// that fences the zeroed cell. Offsets on that cell inside the window are
// never observed.
func RemoveOffsetsBeforeZeroing(ops []Operation) []Operation {
	for idx, op := range ops {
		blk, ok := op.(*BlockOp)
		if !ok || !blk.Block.IsZeroing() {
			continue
		}

		start := 0
		for j := idx - 1; j >= 0; j-- {
			if Fences(ops[j], blk.Cell) {
				start = j + 1
				break
			}
		}

		for _, prev := range ops[start:idx] {
			if off, ok := prev.(*Offset); ok && off.Cell == blk.Cell {
				off.Recurrence = 0
			}
		}
	}

	ops = dropVoidOffsets(ops)
	forEachBlock(ops, RemoveOffsetsBeforeZeroing)
	return ops
}
