// Package cell implements the uniform, fixed-size tagged value used to
// represent every runtime value: the header/extra/payload cell described in
// spec §3 and §4.C.
//
// A Cell is always exactly four machine words wide: Header (kind,
// quote_depth, flags packed into one word), Extra (binding or type-specific
// bits), and a two-word Payload. This mirrors hive/cell.go's on-disk view of
// a hive cell (header describing size/kind, payload holding the NK/VK/...
// body) with the disk bytes replaced by an in-memory word layout.
package cell

import (
	"math"

	"github.com/relang/corevm/core/kind"
	"github.com/relang/corevm/core/noderef"
)

// Flags packs the per-cell boolean bits from spec §3.
type Flags uint16

const (
	// FlagProtected marks the cell read-only.
	FlagProtected Flags = 1 << iota
	// FlagEnfixed marks an action cell invoked from the right of its
	// first argument (infix dispatch).
	FlagEnfixed
	// FlagUnevaluated marks a value that came literally from source
	// rather than being produced by evaluation.
	FlagUnevaluated
	// FlagConst marks the cell as part of the read-only "constness wave".
	FlagConst
	// FlagExplicitlyMutable marks a cell that opted out of the constness
	// wave via the `mutable` operation; it survives copies.
	FlagExplicitlyMutable
	// FlagFirstIsNode marks Payload[0] as holding a noderef.Ref rather
	// than an immediate scalar, so the GC traces it.
	FlagFirstIsNode
	// FlagSecondIsNode marks Payload[1] as holding a noderef.Ref.
	FlagSecondIsNode
	// FlagNewlineBefore is a rendering hint only; it never affects
	// evaluation.
	FlagNewlineBefore
	// FlagArgMarkedChecked is engine-private: the argument slot has
	// already passed type-checking during fulfillment.
	FlagArgMarkedChecked
	// FlagOutMarkedStale is engine-private: the output cell holds a
	// value from a prior step that lookahead may still consume (the
	// "stale" marking used by invisibles, see spec §4.G FINISH).
	FlagOutMarkedStale
)

// copyMask is the set of flags that survive a Copy (spec §3 "Invariants":
// "Copying a cell preserves kind, quote_depth, const, protected (target),
// but clears enfixed, unevaluated, and the engine's mark bits"). FirstIsNode
// and SecondIsNode describe what kind of content Payload already holds, not
// evaluation history, so they travel with the copied payload words instead
// of being stripped like the other bits.
const copyMask = FlagConst | FlagExplicitlyMutable | FlagNewlineBefore | FlagFirstIsNode | FlagSecondIsNode

// Header is the packed kind/quote_depth/flags word.
type Header struct {
	Kind       kind.Kind
	QuoteDepth uint8
	Flags      Flags
}

// Cell is the fundamental runtime value: exactly four words.
type Cell struct {
	Header  Header
	Extra   uint64
	Payload [2]uint64
}

// End returns the array-terminator sentinel cell (spec §3: a cell whose
// header's kind byte is zero is, by construction, an end marker — no
// payload is ever read from it).
func End() Cell {
	return Cell{}
}

// IsEnd reports whether c is the array-terminator sentinel.
func (c Cell) IsEnd() bool {
	return c.Header.Kind.IsEnd()
}

// Kind returns the cell's type tag.
func (c Cell) Kind() kind.Kind { return c.Header.Kind }

// QuoteDepth returns the number of literal quote marks surrounding c.
func (c Cell) QuoteDepth() uint8 { return c.Header.QuoteDepth }

// HasFlag reports whether all bits in f are set.
func (c Cell) HasFlag(f Flags) bool { return c.Header.Flags&f == f }

// SetFlag sets the given bits.
func (c *Cell) SetFlag(f Flags) { c.Header.Flags |= f }

// ClearFlag clears the given bits.
func (c *Cell) ClearFlag(f Flags) { c.Header.Flags &^= f }

// Protected reports whether c is read-only.
func (c Cell) Protected() bool { return c.HasFlag(FlagProtected) }

// Const reports whether c carries the constness wave (directly, or via an
// explicit-mutable override that has not been applied — see Mutable).
func (c Cell) Const() bool {
	return c.HasFlag(FlagConst) && !c.HasFlag(FlagExplicitlyMutable)
}

// ConstWave sets FlagConst on c, implementing the "wave of constness" the
// evaluator propagates onto every cell fetched from a const-marked frame
// (spec §4.C), unless the cell has opted out via Mutable.
func (c *Cell) ConstWave() {
	if c.HasFlag(FlagExplicitlyMutable) {
		return
	}
	c.SetFlag(FlagConst)
}

// Mutable sets FlagExplicitlyMutable, inverting the constness view for c.
// The bit survives subsequent copies (it is in copyMask) so the opt-out is
// not lost by Move_Value-style copying.
func (c *Cell) Mutable() {
	c.SetFlag(FlagExplicitlyMutable)
	c.ClearFlag(FlagConst)
}

// Copy returns a cell suitable as the destination of a Move_Value: kind,
// quote_depth, const, newline-before, and the first/second-is-node payload
// markers survive; enfixed, unevaluated, and the engine-private mark bits
// (arg_marked_checked, out_marked_stale) do not. This is the invariant
// exercised in spec §8 ("Cell preservation mask").
func (c Cell) Copy() Cell {
	return Cell{
		Header: Header{
			Kind:       c.Header.Kind,
			QuoteDepth: c.Header.QuoteDepth,
			Flags:      c.Header.Flags & copyMask,
		},
		Extra:   c.Extra,
		Payload: c.Payload,
	}
}

// SetNode stores a node reference in payload slot i (0 or 1) and marks it
// traced by the GC.
func (c *Cell) SetNode(i int, ref noderef.Ref) {
	c.Payload[i] = uint64(ref)
	if i == 0 {
		c.SetFlag(FlagFirstIsNode)
	} else {
		c.SetFlag(FlagSecondIsNode)
	}
}

// Node returns the node reference stored in payload slot i, and whether
// that slot is in fact marked as holding a node.
func (c Cell) Node(i int) (noderef.Ref, bool) {
	flag := FlagFirstIsNode
	if i != 0 {
		flag = FlagSecondIsNode
	}
	if !c.HasFlag(flag) {
		return noderef.Nil, false
	}
	return noderef.Ref(c.Payload[i]), true
}

// SetInt64 writes an immediate integer payload.
func (c *Cell) SetInt64(v int64) {
	c.Header.Kind = kind.KindInteger
	c.Payload[0] = uint64(v)
}

// Int64 reads the immediate integer payload.
func (c Cell) Int64() int64 { return int64(c.Payload[0]) }

// SetDecimal writes an immediate decimal payload.
func (c *Cell) SetDecimal(v float64) {
	c.Header.Kind = kind.KindDecimal
	c.Payload[0] = math.Float64bits(v)
}

// Decimal reads the immediate decimal payload.
func (c Cell) Decimal() float64 { return math.Float64frombits(c.Payload[0]) }

// SetLogic writes an immediate boolean payload.
func (c *Cell) SetLogic(v bool) {
	c.Header.Kind = kind.KindLogic
	if v {
		c.Payload[0] = 1
	} else {
		c.Payload[0] = 0
	}
}

// Logic reads the immediate boolean payload.
func (c Cell) Logic() bool { return c.Payload[0] != 0 }

// Blank returns the singleton blank value.
func Blank() Cell {
	return Cell{Header: Header{Kind: kind.KindBlank}}
}

// IsBlank reports whether c is the blank value.
func (c Cell) IsBlank() bool { return c.Header.Kind == kind.KindBlank }

// Null returns the null value (spec's "no value" marker, distinct from
// blank: a parameter fetch that saw end writes Null, not Blank).
func Null() Cell {
	return Cell{Header: Header{Kind: kind.KindNull}}
}

// IsNull reports whether c is the null value.
func (c Cell) IsNull() bool { return c.Header.Kind == kind.KindNull }

// Requote reapplies n additional quote marks, escaping into a pairing would
// be required past a representable maximum; corevm uses a uint8 depth and
// saturates rather than escaping, which is sufficient for the bounded test
// programs this runtime executes (see core/limits for the general
// nesting-depth guard).
func (c Cell) Requote(n uint8) Cell {
	out := c
	depth := int(c.Header.QuoteDepth) + int(n)
	if depth > 255 {
		depth = 255
	}
	out.Header.QuoteDepth = uint8(depth)
	return out
}

// Unquote removes one level of quoting. Calling Unquote on a cell with
// QuoteDepth 0 is a programmer error (checked by callers against
// QuoteDepth() > 0 first) and returns c unchanged.
func (c Cell) Unquote() Cell {
	if c.Header.QuoteDepth == 0 {
		return c
	}
	out := c
	out.Header.QuoteDepth--
	return out
}

// Quote adds one level of quoting (no other header bit changes), matching
// scenario §8.4 ('a b c] evaluated ==> a).
func (c Cell) Quote() Cell {
	out := c
	out.Header.QuoteDepth++
	return out
}
