package interpreter

import (
	"fmt"
	"math"
)

// CellKind is the integer type every tape cell holds.
type CellKind int

const (
	U8 CellKind = iota
	I8
	U16
	I16
	U32
	I32
)

// CellKindFor maps a bit width and signedness to a CellKind.
func CellKindFor(bits int, signed bool) (CellKind, error) {
	switch {
	case bits == 8 && !signed:
		return U8, nil
	case bits == 8:
		return I8, nil
	case bits == 16 && !signed:
		return U16, nil
	case bits == 16:
		return I16, nil
	case bits == 32 && !signed:
		return U32, nil
	case bits == 32:
		return I32, nil
	}
	return U8, fmt.Errorf("unsupported cell size %d: must be 8, 16 or 32", bits)
}

// Bounds returns the smallest and largest value a cell can hold.
func (k CellKind) Bounds() (lo, hi int64) {
	switch k {
	case I8:
		return math.MinInt8, math.MaxInt8
	case U16:
		return 0, math.MaxUint16
	case I16:
		return math.MinInt16, math.MaxInt16
	case U32:
		return 0, math.MaxUint32
	case I32:
		return math.MinInt32, math.MaxInt32
	default:
		return 0, math.MaxUint8
	}
}

func (k CellKind) String() string {
	switch k {
	case I8:
		return "i8"
	case U16:
		return "u16"
	case I16:
		return "i16"
	case U32:
		return "u32"
	case I32:
		return "i32"
	default:
		return "u8"
	}
}

// Overflow selects what happens when a cell leaves its bounds.
type Overflow int

const (
	Wrap Overflow = iota
	Saturate
	Abort
)

// ParseOverflow accepts "wrap", "saturate" or "abort".
func ParseOverflow(s string) (Overflow, error) {
	switch s {
	case "wrap", "":
		return Wrap, nil
	case "saturate":
		return Saturate, nil
	case "abort":
		return Abort, nil
	}
	return Wrap, fmt.Errorf("unknown overflow policy %q: must be wrap, saturate or abort", s)
}

func (o Overflow) String() string {
	switch o {
	case Saturate:
		return "saturate"
	case Abort:
		return "abort"
	default:
		return "wrap"
	}
}

// Config controls how a program is executed. The zero value runs u8 cells
// with wrapping arithmetic on an unbounded tape.
type Config struct {
	Cell     CellKind
	Overflow Overflow

	// TapeLimit caps the number of cells. Zero means unbounded.
	TapeLimit int

	// NumberInput reads whitespace-separated integers instead of characters.
	NumberInput bool
	// NumberOutput writes cell values as decimal numbers followed by a space.
	NumberOutput bool

	// MaxSteps bounds the number of executed instructions. Zero means unbounded.
	MaxSteps int64
}
