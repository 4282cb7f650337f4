package series

import (
	"errors"
	"fmt"

	"github.com/relang/corevm/core/arena"
	"github.com/relang/corevm/core/cell"
	"github.com/relang/corevm/core/noderef"
)

// Errors mirror the failure semantics spec §4.B requires: mutation on a
// frozen/protected/held/auto-locked series fails with a specific kind;
// access on an inaccessible series fails distinctly; allocation failure is
// its own kind.
var (
	ErrFrozen      = errors.New("series: frozen (permanently read-only)")
	ErrProtected   = errors.New("series: protected (read-only)")
	ErrHeld        = errors.New("series: held (read-locked for enumeration)")
	ErrInaccessible = errors.New("series: data freed (inaccessible)")
	ErrOutOfMemory = errors.New("series: out of memory")
)

// Flags requested at creation time.
type Flags uint8

const (
	// AlwaysDynamic forces a heap-grown buffer even if the requested
	// capacity would fit embedded.
	AlwaysDynamic Flags = 1 << iota
	// PowerOf2 rounds the allocated capacity up to the next power of two
	// instead of the nearest pool size class.
	PowerOf2
)

// embeddedCap is the inline content capacity a node can hold before a
// series must go dynamic. Chosen to match hive/alloc's smallest non-zero
// size class so "does this fit embedded" and "which size class" share one
// table (see nextCapacity).
const embeddedCap = 16

// pageBackedThreshold is the byte-series size past which growth switches
// from Go-heap append to a real anonymous page mapping (arena.MmapBytes),
// so the runtime's largest single allocations exercise a page-granular
// allocator instead of relying entirely on the Go allocator to grow a
// slice that size.
const pageBackedThreshold = 64 * 1024

// Series is a handle onto a node-resident SeriesSlot: a variable-width
// vector with bias/used/rest accounting (spec §3, §4.B).
type Series struct {
	a   *arena.Arena
	ref noderef.Ref
}

// New wraps an existing node reference as a Series view. Used internally
// once a node has been allocated; most callers should use Make.
func New(a *arena.Arena, ref noderef.Ref) Series {
	return Series{a: a, ref: ref}
}

// Ref returns the underlying node reference (for storing into a cell
// payload via cell.Cell.SetNode).
func (s Series) Ref() noderef.Ref { return s.ref }

func (s Series) slot() (*arena.SeriesSlot, error) {
	p, err := s.a.Payload(s.ref)
	if err != nil {
		return nil, err
	}
	ss, ok := p.(*arena.SeriesSlot)
	if !ok {
		return nil, fmt.Errorf("series: node %d is not a series", s.ref)
	}
	if ss.Inaccess {
		return nil, ErrInaccessible
	}
	return ss, nil
}

// nextCapacity rounds a requested element count up to a pool size class
// (hive/alloc/size_classes.go's doubling-bucket table), or to the next
// power of two when flags request it (spec §4.B "POWER_OF_2").
func nextCapacity(need int, flags Flags) int {
	if flags&PowerOf2 != 0 {
		cap := 1
		for cap < need {
			cap <<= 1
		}
		return cap
	}
	classes := []int{embeddedCap, 32, 64, 128, 256, 512, 1024, 2048, 4096}
	for _, c := range classes {
		if need <= c {
			return c
		}
	}
	// beyond the largest class: round up to the next 4096 boundary, the
	// way hive/alloc rounds big allocations up to an HBIN page multiple.
	return (need + 4095) &^ 4095
}

// Make allocates a new series of the given logical capacity, width, and
// flags (spec §4.B: `make(capacity, width, flags)`). width == 0 means the
// series holds cells (an array); any other width is the byte width of one
// element.
func Make(a *arena.Arena, capacity int, width uint8, flags Flags) Series {
	rest := capacity
	dynamic := flags&AlwaysDynamic != 0 || capacity > embeddedCap
	if dynamic {
		rest = nextCapacity(capacity, flags)
	} else {
		rest = embeddedCap
	}

	slot := &arena.SeriesSlot{Width: width, Rest: int32(rest), Dynamic: dynamic}
	if width == 0 {
		slot.Cells = make([]cell.Cell, 0, rest)
	} else {
		slot.Bytes = make([]byte, 0, rest*int(width))
	}

	ref := a.AllocNode(slot)
	return Series{a: a, ref: ref}
}

// Len returns the number of occupied elements (alias of Used for
// readability at call sites; spec uses both names interchangeably).
func (s Series) Len() int {
	ss, err := s.slot()
	if err != nil {
		return 0
	}
	return int(ss.Used)
}

// Used is the number of occupied elements.
func (s Series) Used() int { return s.Len() }

// Rest is the total element capacity before growth is required.
func (s Series) Rest() int {
	ss, err := s.slot()
	if err != nil {
		return 0
	}
	return int(ss.Rest)
}

// Bias is the leading slack permitting amortized head insertion/removal.
func (s Series) Bias() int {
	ss, err := s.slot()
	if err != nil {
		return 0
	}
	return int(ss.Bias)
}

// Width reports the byte width of one element, or 0 for an array of cells.
func (s Series) Width() uint8 {
	ss, err := s.slot()
	if err != nil {
		return 0
	}
	return ss.Width
}

// IsArray reports whether this series holds cells rather than bytes.
func (s Series) IsArray() bool { return s.Width() == 0 }

// IsDynamic reports whether the series has grown past embedded storage.
func (s Series) IsDynamic() bool {
	ss, err := s.slot()
	if err != nil {
		return false
	}
	return ss.Dynamic
}

func (s Series) checkMutable() (*arena.SeriesSlot, error) {
	ss, err := s.slot()
	if err != nil {
		return nil, err
	}
	switch {
	case ss.Frozen:
		return nil, ErrFrozen
	case ss.HeldBy > 0:
		return nil, ErrHeld
	case ss.Protect:
		return nil, ErrProtected
	}
	return ss, nil
}

// At returns a pointer to the cell at logical index i (array series only).
func (s Series) At(i int) (*cell.Cell, error) {
	ss, err := s.slot()
	if err != nil {
		return nil, err
	}
	if !s.IsArray() {
		return nil, fmt.Errorf("series: At(cell) called on a byte series (width=%d)", ss.Width)
	}
	idx := int(ss.Bias) + i
	if idx < 0 || idx >= len(ss.Cells) {
		return nil, fmt.Errorf("series: index %d out of range (used=%d)", i, ss.Used)
	}
	return &ss.Cells[idx], nil
}

// ByteAt returns the byte at logical index i (byte series only).
func (s Series) ByteAt(i int) (byte, error) {
	ss, err := s.slot()
	if err != nil {
		return 0, err
	}
	if s.IsArray() {
		return 0, fmt.Errorf("series: ByteAt called on an array series")
	}
	idx := int(ss.Bias) + i
	if idx < 0 || idx >= len(ss.Bytes) {
		return 0, fmt.Errorf("series: index %d out of range (used=%d)", i, ss.Used)
	}
	return ss.Bytes[idx], nil
}

// SetByteAt writes the byte at logical index i (byte series only),
// honoring the same frozen/protected/held checks as a mutating array
// write.
func (s Series) SetByteAt(i int, v byte) error {
	ss, err := s.checkMutable()
	if err != nil {
		return err
	}
	if s.IsArray() {
		return fmt.Errorf("series: SetByteAt called on an array series")
	}
	idx := int(ss.Bias) + i
	if idx < 0 || idx >= len(ss.Bytes) {
		return fmt.Errorf("series: index %d out of range (used=%d)", i, ss.Used)
	}
	ss.Bytes[idx] = v
	return nil
}

// Head returns a pointer to the first element (array series).
func (s Series) Head() (*cell.Cell, error) { return s.At(0) }

// Tail returns the logical index one past the last element (array series
// "tail pointer" in spec terms — here expressed as an index since Go slices
// make a literal pointer-to-end awkward and unsafe).
func (s Series) Tail() int { return s.Len() }

// Last returns a pointer to the final element (array series).
func (s Series) Last() (*cell.Cell, error) {
	n := s.Len()
	if n == 0 {
		return nil, fmt.Errorf("series: Last on empty series")
	}
	return s.At(n - 1)
}

// ExpandTail grows the series by delta elements, reallocating if necessary,
// and returns the (now-valid) index of the first newly available slot
// (spec §4.B: "if used+δ+1 > rest calls expand... otherwise just bumps
// used").
func (s Series) ExpandTail(delta int) (int, error) {
	ss, err := s.checkMutable()
	if err != nil {
		return 0, err
	}
	start := int(ss.Used)
	need := start + delta + 1 // +1 reserves room for the trailing terminator
	if need > int(ss.Rest) {
		s.grow(ss, delta)
	}
	ss.Used += int32(delta)
	if s.IsArray() {
		for len(ss.Cells) < int(ss.Bias)+int(ss.Used) {
			ss.Cells = append(ss.Cells, cell.Cell{})
		}
	} else {
		for len(ss.Bytes) < (int(ss.Bias)+int(ss.Used))*int(ss.Width) {
			ss.Bytes = append(ss.Bytes, 0)
		}
	}
	return start, nil
}

func (s Series) grow(ss *arena.SeriesSlot, delta int) {
	newRest := nextCapacity(int(ss.Used)+delta+1, 0)
	ss.Rest = int32(newRest)
	ss.Dynamic = true

	if ss.Width == 0 {
		return // arrays grow through Go's own slice append; nothing to page-back
	}
	needBytes := newRest * int(ss.Width)
	if needBytes < pageBackedThreshold {
		return
	}
	buf, err := arena.MmapBytes(needBytes)
	if err != nil {
		return // fall back to ordinary Go-heap append growth
	}
	n := copy(buf, ss.Bytes)
	if ss.PageBacked {
		_ = arena.MunmapBytes(ss.Bytes)
	}
	ss.Bytes = buf[:n]
	ss.PageBacked = true
}

// Term writes the trailing sentinel: a zero byte for byte series, an "end"
// cell for arrays (spec §4.B `term`/`term_len`).
func (s Series) Term() error {
	ss, err := s.checkMutable()
	if err != nil {
		return err
	}
	if s.IsArray() {
		idx := int(ss.Bias) + int(ss.Used)
		for len(ss.Cells) <= idx {
			ss.Cells = append(ss.Cells, cell.Cell{})
		}
		ss.Cells[idx] = cell.End()
	} else {
		idx := (int(ss.Bias) + int(ss.Used)) * int(ss.Width)
		for len(ss.Bytes) <= idx {
			ss.Bytes = append(ss.Bytes, 0)
		}
		ss.Bytes[idx] = 0
	}
	return nil
}

// TermLen sets Used to n and writes the trailing sentinel in one step.
func (s Series) TermLen(n int) error {
	ss, err := s.checkMutable()
	if err != nil {
		return err
	}
	ss.Used = int32(n)
	return s.Term()
}

// Manage transitions the backing node manual -> managed.
func (s Series) Manage() error { return s.a.Manage(s.ref) }

// Freeze permanently marks the series (and, for arrays, every nested array
// it references, transitively) read-only, per spec §4.B: freezing an array
// "must deeply freeze (recursively)." A visited-set guards against cyclic
// array references (an array that directly or indirectly contains itself).
func (s Series) Freeze() error {
	return s.freezeDeep(make(map[noderef.Ref]bool))
}

func (s Series) freezeDeep(seen map[noderef.Ref]bool) error {
	if seen[s.ref] {
		return nil
	}
	seen[s.ref] = true

	ss, err := s.slot()
	if err != nil {
		return err
	}
	ss.Frozen = true

	if !s.IsArray() {
		return nil
	}
	for i := 0; i < s.Len(); i++ {
		c, err := s.At(i)
		if err != nil {
			return err
		}
		for slot := 0; slot < 2; slot++ {
			ref, ok := c.Node(slot)
			if !ok {
				continue
			}
			payload, err := s.a.Payload(ref)
			if err != nil {
				continue // dangling/freed ref: nothing to freeze
			}
			childSlot, ok := payload.(*arena.SeriesSlot)
			if !ok || childSlot.Width != 0 {
				continue // not an array-kind series (e.g. a context varlist, a string)
			}
			child := Series{a: s.a, ref: ref}
			if err := child.freezeDeep(seen); err != nil {
				return err
			}
		}
	}
	return nil
}

// Frozen reports whether the series has been permanently locked.
func (s Series) Frozen() bool {
	ss, err := s.slot()
	if err != nil {
		return false
	}
	return ss.Frozen
}

// Hold takes a scoped read-lock for the duration of an enumeration or
// evaluation; nested holds nest (a counter, not a boolean), matching the
// "permits nested evaluations of the same array" contract in spec §5.
func (s Series) Hold() error {
	ss, err := s.slot()
	if err != nil {
		return err
	}
	ss.HeldBy++
	return nil
}

// ReleaseHold releases one scoped read-lock.
func (s Series) ReleaseHold() error {
	ss, err := s.slot()
	if err != nil {
		return err
	}
	if ss.HeldBy > 0 {
		ss.HeldBy--
	}
	return nil
}

// Held reports whether the series currently has an active hold.
func (s Series) Held() bool {
	ss, err := s.slot()
	if err != nil {
		return false
	}
	return ss.HeldBy > 0
}

// Protect reversibly marks the series read-only (user-facing `protect`).
func (s Series) Protect() error {
	ss, err := s.slot()
	if err != nil {
		return err
	}
	ss.Protect = true
	return nil
}

// Unprotect reverses Protect. It is a no-op on a frozen series (frozen is
// permanent, by design).
func (s Series) Unprotect() error {
	ss, err := s.slot()
	if err != nil {
		return err
	}
	if ss.Frozen {
		return nil
	}
	ss.Protect = false
	return nil
}

// AutoLock transitions the series to frozen as a side effect of using it in
// a context that requires a stable identity (e.g. a map key), per spec §5
// "Auto-lock". Per the Open Question resolution in SPEC_FULL.md, the first
// mutation attempt after this call fails regardless of which alias (Series
// handle) performs it, because Frozen lives on the shared node, not on this
// handle.
func (s Series) AutoLock() error {
	return s.Freeze()
}
