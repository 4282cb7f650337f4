package feed

import (
	"fmt"

	"github.com/relang/corevm/core/bind"
	"github.com/relang/corevm/core/cell"
	"github.com/relang/corevm/core/series"
)

// Scanner is the external collaborator that turns a UTF-8 source fragment
// into an array of cells (spec §6 "From the scanner"). corevm's own
// core/scan package implements it; the full dialect scanner remains out of
// scope per spec.md §1 — only the interface and a minimal implementation
// exist here.
type Scanner interface {
	Scan(src []byte, line int, binder *bind.Table) (series.Series, error)
}

// Instruction models a variadic-list element that is neither a cell nor raw
// UTF-8 text: an opaque "release after use" handle (spec §4.E: "an
// instruction singular"). Release, if non-nil, is invoked once the feed has
// consumed the instruction.
type Instruction struct {
	Release func()
}

// Flags track the per-feed state bits from spec §4.E.
type Flags uint8

const (
	FlagConst Flags = 1 << iota
	FlagNoLookahead
	FlagBarrierHit
	FlagTookHold
)

// srcKind discriminates the two feed sources.
type srcKind uint8

const (
	srcArray srcKind = iota
	srcVariadic
)

// Feed is the uniform one-step-lookahead cursor spec §4.E describes.
type Feed struct {
	src srcKind

	// array source
	array series.Series
	index int

	// variadic source
	items     []any
	itemIdx   int
	splice    series.Series
	spliceIdx int
	hasSplice bool
	scanner   Scanner
	binder    *bind.Table

	specifier bind.Specifier
	flags     Flags

	value   cell.Cell
	pending cell.Cell
	gotten  *cell.Cell // cached lookup for value, when value is a word
}

// NewArray creates a feed over an array series starting at index, bound by
// specifier.
func NewArray(arr series.Series, index int, sp bind.Specifier) *Feed {
	f := &Feed{src: srcArray, array: arr, index: index, specifier: sp}
	f.value = f.cellAt(index)
	f.pending = f.cellAt(index + 1)
	return f
}

func (f *Feed) cellAt(i int) cell.Cell {
	if i < 0 || i >= f.array.Len() {
		return cell.End()
	}
	c, err := f.array.At(i)
	if err != nil {
		return cell.End()
	}
	return *c
}

// NewVariadic creates a feed over a C-variadic-style list of mixed items:
// cell.Cell, string (UTF-8 fragment to scan), Instruction, or nil (an
// explicit end sentinel).
func NewVariadic(items []any, scanner Scanner, binder *bind.Table, sp bind.Specifier) *Feed {
	f := &Feed{src: srcVariadic, items: items, scanner: scanner, binder: binder, specifier: sp}
	f.value = f.pullVariadic()
	f.pending = f.pullVariadic()
	return f
}

// Value returns the current cell (spec's `feed.value`).
func (f *Feed) Value() cell.Cell { return f.value }

// Pending returns the one-step lookahead cell.
func (f *Feed) Pending() cell.Cell { return f.pending }

// Specifier returns the binding specifier in effect for this feed.
func (f *Feed) Specifier() bind.Specifier { return f.specifier }

// AtEnd reports whether the current value is the end sentinel.
func (f *Feed) AtEnd() bool { return f.value.IsEnd() }

// HasFlag reports whether all bits in want are set.
func (f *Feed) HasFlag(want Flags) bool { return f.flags&want == want }

// SetFlag sets flag bits.
func (f *Feed) SetFlag(set Flags) { f.flags |= set }

// ClearFlag clears flag bits.
func (f *Feed) ClearFlag(clear Flags) { f.flags &^= clear }

// Gotten returns the cached variable lookup for the current value, if any
// was stashed via SetGotten since the last advance.
func (f *Feed) Gotten() (cell.Cell, bool) {
	if f.gotten == nil {
		return cell.Cell{}, false
	}
	return *f.gotten, true
}

// SetGotten caches a variable lookup result against the current value, so
// a second consumer of the same step (e.g. lookahead re-examining the same
// word) does not repeat the resolve.
func (f *Feed) SetGotten(v cell.Cell) {
	cp := v
	f.gotten = &cp
}

// FetchNext advances the feed by one slot and returns the value that was
// current before advancing (spec §4.F contract: `fetch_next(feed) →
// prior_value_ptr`).
//
// For a variadic source, spec requires this prior value be copied into a
// stable feed-owned slot before advancing, because the pointer may
// reference memory about to be freed (a scanned sub-array or a released
// API handle). In Go, cell.Cell is a plain value type and the return below
// is already an independent copy, so that requirement is met for free —
// the stash exists at the type level (copy semantics), not as an extra
// field.
func (f *Feed) FetchNext() cell.Cell {
	prior := f.value
	f.gotten = nil

	f.value = f.pending
	switch f.src {
	case srcArray:
		f.index++
		f.pending = f.cellAt(f.index + 1)
	case srcVariadic:
		f.pending = f.pullVariadic()
	}
	return prior
}

// pullVariadic implements the "pointer detector" dispatch of spec §4.E: a
// variadic item is one of cell pointer, UTF-8 string, instruction
// singular, or end sentinel.
func (f *Feed) pullVariadic() cell.Cell {
	for {
		if f.hasSplice {
			if f.spliceIdx < f.splice.Len() {
				c, err := f.splice.At(f.spliceIdx)
				f.spliceIdx++
				if err == nil {
					return *c
				}
			}
			f.hasSplice = false
		}

		if f.itemIdx >= len(f.items) {
			return cell.End()
		}
		item := f.items[f.itemIdx]
		f.itemIdx++

		switch v := item.(type) {
		case cell.Cell:
			return v
		case *cell.Cell:
			return *v
		case string:
			arr, err := f.scanSpliced(v)
			if err != nil {
				// A malformed variadic fragment surfaces as an end
				// marker; the evaluator will see it as an incomplete
				// expression. The scan error itself is discarded.
				return cell.End()
			}
			f.splice = arr
			f.spliceIdx = 0
			f.hasSplice = true
			continue
		case Instruction:
			if v.Release != nil {
				v.Release()
			}
			continue
		case nil:
			return cell.End()
		default:
			continue
		}
	}
}

// scanSpliced invokes the scanner and interns the resulting array (spec
// §4.E: "the resulting array is interned (managed) and spliced").
func (f *Feed) scanSpliced(src string) (series.Series, error) {
	if f.scanner == nil {
		return series.Series{}, fmt.Errorf("feed: variadic string fragment but no scanner configured")
	}
	arr, err := f.scanner.Scan([]byte(src), 0, f.binder)
	if err != nil {
		return series.Series{}, err
	}
	_ = arr.Manage() // interned: owned by the GC from this point on
	return arr, nil
}
