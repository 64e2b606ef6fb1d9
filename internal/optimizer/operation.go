package optimizer

import "fmt"

// Operation is one node of a parsed tape-machine program.
//
// The set of implementations is closed: *BlockOp, *Offset, *InOut,
// *LooseBracket and *Text. Passes mutate nodes in place, so operations are
// always held by pointer.
type Operation interface {
	// Position returns the cell the operation acts on.
	// Text has no position and returns false.
	Position() (int, bool)

	operation()
}

// IOKind distinguishes input from output.
type IOKind int

const (
	// In reads one value into the cell (`,`).
	In IOKind = iota
	// Out writes the cell's value (`.`).
	Out
)

// Char returns the operator character for the kind.
func (k IOKind) Char() byte {
	if k == In {
		return ','
	}
	return '.'
}

// BracketKind distinguishes an opening from a closing loose bracket.
type BracketKind int

const (
	// Open is an unmatched `[`.
	Open BracketKind = iota
	// Close is an unmatched `]`.
	Close
)

// Char returns the bracket character for the kind.
func (k BracketKind) Char() byte {
	if k == Open {
		return '['
	}
	return ']'
}

// BlockOp is a matched loop entered at Cell.
type BlockOp struct {
	Cell  int
	Block *Block
}

// Offset adds Recurrence to Cell. A zero Recurrence is void and gets
// filtered by the pass that produced it.
type Offset struct {
	Cell       int
	Recurrence int32
}

// InOut is a single read or write on Cell.
type InOut struct {
	Cell int
	Kind IOKind
}

// LooseBracket is a bracket the parser could not pair.
type LooseBracket struct {
	Cell int
	Kind BracketKind
}

// Text is a run of inert characters.
type Text struct {
	Raw string
}

func (o *BlockOp) Position() (int, bool)      { return o.Cell, true }
func (o *Offset) Position() (int, bool)       { return o.Cell, true }
func (o *InOut) Position() (int, bool)        { return o.Cell, true }
func (o *LooseBracket) Position() (int, bool) { return o.Cell, true }
func (o *Text) Position() (int, bool)         { return 0, false }

func (*BlockOp) operation()      {}
func (*Offset) operation()       {}
func (*InOut) operation()        {}
func (*LooseBracket) operation() {}
func (*Text) operation()         {}

func (o *BlockOp) String() string {
	return fmt.Sprintf("Block@%d%s", o.Cell, o.Block)
}

func (o *Offset) String() string {
	return fmt.Sprintf("Offset@%d(%+d)", o.Cell, o.Recurrence)
}

func (o *InOut) String() string {
	return fmt.Sprintf("InOut@%d(%c)", o.Cell, o.Kind.Char())
}

func (o *LooseBracket) String() string {
	return fmt.Sprintf("Loose@%d(%c)", o.Cell, o.Kind.Char())
}

func (o *Text) String() string {
	return fmt.Sprintf("Text(%q)", o.Raw)
}

// Block is the body of a matched loop, or of the whole program.
type Block struct {
	Ops []Operation

	// Endpoint is the net pointer displacement of one pass through Ops.
	// It is only meaningful when Dynamic is set.
	Endpoint int
	// Dynamic is set when the displacement is nonzero or any nested block
	// is dynamic.
	Dynamic bool
}

// IsDynamic reports whether one iteration may leave the pointer elsewhere
// than the entry cell.
func (b *Block) IsDynamic() bool {
	return b.Dynamic
}

// DynamicEndpoint returns the displacement of a dynamic block.
func (b *Block) DynamicEndpoint() (int, bool) {
	return b.Endpoint, b.Dynamic
}

// IsZeroing reports whether the block is `[-]` or `[+]`, ignoring text.
func (b *Block) IsZeroing() bool {
	if b.Dynamic {
		return false
	}

	var only Operation
	for _, op := range b.Ops {
		if _, ok := op.(*Text); ok {
			continue
		}
		if only != nil {
			return false
		}
		only = op
	}

	off, ok := only.(*Offset)
	if !ok {
		return false
	}
	return off.Cell == 0 && (off.Recurrence == 1 || off.Recurrence == -1)
}

func (b *Block) String() string {
	if b.Dynamic {
		return fmt.Sprintf("%v->%d", b.Ops, b.Endpoint)
	}
	return fmt.Sprintf("%v", b.Ops)
}

// Counts tallies operations by variant, nested blocks included.
type Counts struct {
	Blocks        int `json:"blocks"`
	Offsets       int `json:"offsets"`
	InOuts        int `json:"in_outs"`
	LooseBrackets int `json:"loose_brackets"`
	Texts         int `json:"texts"`
}

// Total returns the number of operations counted.
func (c Counts) Total() int {
	return c.Blocks + c.Offsets + c.InOuts + c.LooseBrackets + c.Texts
}

// Count walks ops recursively.
func Count(ops []Operation) Counts {
	var c Counts
	countInto(&c, ops)
	return c
}

func countInto(c *Counts, ops []Operation) {
	for _, op := range ops {
		switch o := op.(type) {
		case *BlockOp:
			c.Blocks++
			countInto(c, o.Block.Ops)
		case *Offset:
			c.Offsets++
		case *InOut:
			c.InOuts++
		case *LooseBracket:
			c.LooseBrackets++
		case *Text:
			c.Texts++
		}
	}
}

// dropVoidOffsets compacts ops in place, removing zero-recurrence offsets.
func dropVoidOffsets(ops []Operation) []Operation {
	kept := ops[:0]
	for _, op := range ops {
		if off, ok := op.(*Offset); ok && off.Recurrence == 0 {
			continue
		}
		kept = append(kept, op)
	}
	clear(ops[len(kept):])
	return kept
}

// forEachBlock applies pass to the children of every block in ops.
func forEachBlock(ops []Operation, pass func([]Operation) []Operation) {
	for _, op := range ops {
		if b, ok := op.(*BlockOp); ok {
			b.Block.Ops = pass(b.Block.Ops)
		}
	}
}
