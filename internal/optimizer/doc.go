// Package optimizer rewrites tape-machine programs to cut redundant operators.
//
// A program is text over the alphabet `> < + - , . [ ]`; every other
// character is inert and passed through untouched. The optimizer parses the
// text into a tree of operations addressed by relative cell offsets, runs a
// fixed pipeline of rewrite passes over it and serializes the tree back.
//
// # Model
//
// Cells are plain integers relative to the tape position at the entry of the
// enclosing region. Pointer moves are not operations: they are folded into
// the cell index of the operations that follow them and regenerated by the
// serializer.
//
//   - BlockOp: a matched `[...]` loop, owning its child operations
//   - Offset: a coalesced run of `+`/`-` on one cell
//   - InOut: a single `,` or `.`
//   - LooseBracket: an unmatched `[` or `]`, passed through as-is
//   - Text: a run of inert characters
//
// A block is dynamic when one iteration does not provably return the pointer
// to its entry cell. Dynamic blocks fence every cell.
//
// # Safety
//
// Every rewrite is justified by the read/write interference test in CanSwap:
// an operation may only move across neighbours that do not observe a cell it
// writes and do not write a cell it observes. ValidityRange turns that test
// into the window each pass is confined to. Only I/O is observable; the final
// pointer position is not preserved.
//
// # Pipeline
//
//	parse -> reorder -> merge -> reorder -> remove offsets before zeroing -> serialize
//
// Optimize runs it with defaults. New builds an Optimizer that also reports
// per-pass statistics.
package optimizer
