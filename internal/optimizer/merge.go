package optimizer

import "math"

// MergeOffsets folds same-cell offsets together as far as fencing allows.
//
// Each offset looks inside its validity range for the earliest nonzero
// offset on the same cell that precedes it, adds its recurrence there and
// zeroes itself. Offsets summing to zero vanish. Indices are collected up
// front and stay valid because nothing is removed until the final
// compaction.
func MergeOffsets(ops []Operation) []Operation {
	var offsets []int
	for i, op := range ops {
		if _, ok := op.(*Offset); ok {
			offsets = append(offsets, i)
		}
	}

	for _, i := range offsets {
		self := ops[i].(*Offset)
		if self.Recurrence == 0 {
			continue
		}

		lo, _ := ValidityRange(ops, i)
		for j := lo; j < i; j++ {
			other, ok := ops[j].(*Offset)
			if !ok || other.Cell != self.Cell || other.Recurrence == 0 {
				continue
			}

			sum := int64(other.Recurrence) + int64(self.Recurrence)
			if sum > math.MaxInt32 || sum < math.MinInt32 {
				break
			}
			other.Recurrence = int32(sum)
			self.Recurrence = 0
			break
		}
	}

	ops = dropVoidOffsets(ops)
	forEachBlock(ops, MergeOffsets)
	return ops
}
