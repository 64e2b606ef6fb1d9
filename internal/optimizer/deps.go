package optimizer

import "slices"

// CellSet is a set of relative cell indices.
type CellSet map[int]struct{}

// Has reports whether cell is in the set.
func (s CellSet) Has(cell int) bool {
	_, ok := s[cell]
	return ok
}

// Sorted returns the cells in increasing order.
func (s CellSet) Sorted() []int {
	cells := make([]int, 0, len(s))
	for c := range s {
		cells = append(cells, c)
	}
	slices.Sort(cells)
	return cells
}

// Fences reports whether op depends on the value of cell idx being stable
// across it. Offsets are blind to the value they adjust and fence nothing.
func Fences(op Operation, idx int) bool {
	switch o := op.(type) {
	case *BlockOp:
		return o.Block.fences(idx - o.Cell)
	case *InOut:
		return idx == o.Cell
	case *LooseBracket:
		// An unpaired bracket may still close a loop at run time.
		return true
	default:
		return false
	}
}

// fences works in the block's own frame. The loop always tests cell 0.
func (b *Block) fences(idx int) bool {
	if b.Dynamic || idx == 0 {
		return true
	}
	for _, op := range b.Ops {
		if Fences(op, idx) {
			return true
		}
	}
	return false
}

// Modifies returns the cells op is guaranteed to write.
//
// Loose brackets write nothing. CanSwap treats them as barriers instead.
func Modifies(op Operation) CellSet {
	set := CellSet{}
	modifiesInto(set, op, 0)
	return set
}

func modifiesInto(set CellSet, op Operation, base int) {
	switch o := op.(type) {
	case *BlockOp:
		for _, child := range o.Block.Ops {
			modifiesInto(set, child, base+o.Cell)
		}
	case *InOut:
		if o.Kind == In {
			set[base+o.Cell] = struct{}{}
		}
	case *Offset:
		set[base+o.Cell] = struct{}{}
	}
}

// CanSwap reports whether a and b may exchange places without changing
// observable behaviour. The relation is symmetric.
//
// Text and loose brackets are barriers: an unpaired bracket may still be
// half of a loop the interpreter runs. Two operations that both perform
// I/O, at any nesting depth, never swap.
func CanSwap(a, b Operation) bool {
	if isBarrier(a) || isBarrier(b) {
		return false
	}
	if hasIO(a) && hasIO(b) {
		return false
	}

	if isDynamicBlock(a) || isDynamicBlock(b) {
		return false
	}

	for cell := range Modifies(a) {
		if Fences(b, cell) {
			return false
		}
	}
	for cell := range Modifies(b) {
		if Fences(a, cell) {
			return false
		}
	}
	return true
}

func isBarrier(op Operation) bool {
	switch op.(type) {
	case *Text, *LooseBracket:
		return true
	}
	return false
}

// hasIO reports whether op reads or writes, directly or inside a block.
func hasIO(op Operation) bool {
	switch o := op.(type) {
	case *InOut:
		return true
	case *BlockOp:
		return slices.ContainsFunc(o.Block.Ops, hasIO)
	}
	return false
}

func isDynamicBlock(op Operation) bool {
	b, ok := op.(*BlockOp)
	return ok && b.Block.Dynamic
}

// ValidityRange returns the widest window [lo, hi) around idx whose members
// all swap with ops[idx]. An index outside ops yields an empty range.
func ValidityRange(ops []Operation, idx int) (lo, hi int) {
	if idx < 0 || idx >= len(ops) {
		return 0, 0
	}
	op := ops[idx]

	hi = idx + 1
	for hi < len(ops) && CanSwap(op, ops[hi]) {
		hi++
	}

	lo = idx
	for lo > 0 && CanSwap(op, ops[lo-1]) {
		lo--
	}
	return lo, hi
}
