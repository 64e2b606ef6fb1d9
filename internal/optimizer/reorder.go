package optimizer

import (
	"math"
	"slices"
)

// ReorderOperations moves operations within their validity ranges to cut the
// pointer travel needed to serialize ops.
//
// Every operation is visited once, lowest unvisited index first. It is lifted
// out and reinserted where it adds the least detour; ties go to the earliest
// index. The result is greedy, so running the pass again can still improve
// on it.
func ReorderOperations(ops []Operation) []Operation {
	t := newProcessTracker(ops)

	for {
		idx, ok := t.nextUnprocessed()
		if !ok {
			break
		}

		lo, hi := ValidityRange(t.ops, idx)
		op := t.remove(idx)

		best, bestCost := idx, math.MaxInt
		for i := lo; i < hi; i++ {
			if cost := lostDistance(op, t.ops, i); cost < bestCost {
				best, bestCost = i, cost
			}
		}

		t.insert(best, op)
		t.processed[best] = true
	}

	ops = t.ops
	forEachBlock(ops, ReorderOperations)
	return ops
}

// lostDistance is the extra travel caused by inserting op at idx: the walk
// from the previous positioned operation through op to the next one, minus
// the direct walk between them. Missing neighbours count as cell 0.
func lostDistance(op Operation, ops []Operation, idx int) int {
	cell, ok := op.Position()
	if !ok {
		return 0
	}

	before := 0
	for i := idx - 1; i >= 0; i-- {
		if c, ok := ops[i].Position(); ok {
			before = c
			break
		}
	}
	after := 0
	for i := idx; i < len(ops); i++ {
		if c, ok := ops[i].Position(); ok {
			after = c
			break
		}
	}

	return abs(cell-before) + abs(after-cell) - abs(after-before)
}

// processTracker keeps a processed flag next to every operation. The flags
// follow their operation through each remove and insert.
type processTracker struct {
	ops       []Operation
	processed []bool
}

func newProcessTracker(ops []Operation) *processTracker {
	return &processTracker{
		ops:       ops,
		processed: make([]bool, len(ops)),
	}
}

func (t *processTracker) nextUnprocessed() (int, bool) {
	idx := slices.Index(t.processed, false)
	return idx, idx >= 0
}

func (t *processTracker) remove(idx int) Operation {
	op := t.ops[idx]
	t.ops = slices.Delete(t.ops, idx, idx+1)
	t.processed = slices.Delete(t.processed, idx, idx+1)
	return op
}

func (t *processTracker) insert(idx int, op Operation) {
	t.ops = slices.Insert(t.ops, idx, op)
	t.processed = slices.Insert(t.processed, idx, false)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
