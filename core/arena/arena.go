package arena

import (
	"errors"
	"fmt"

	"github.com/relang/corevm/core/cell"
	"github.com/relang/corevm/core/noderef"
)

// ErrBadRef indicates an invalid or out-of-bounds node reference, mirroring
// hive/alloc's ErrBadRef for cell references.
var ErrBadRef = errors.New("arena: bad node reference")

// ErrFreeManaged indicates an attempt to free a node the GC now owns.
var ErrFreeManaged = errors.New("arena: cannot free a managed node")

// defaultBallast is the number of allocations permitted before the arena
// reports that a recycle (GC) is due: NeedsRecycle turns true after 4096
// allocations.
const defaultBallast = 4096

// Payload is implemented by the two node variants spec §3 allows: a Series
// header, or a two-cell Pairing (heap-allocated pair value / deep-quote
// escape target).
type Payload interface {
	isNodePayload()
}

// Pairing is a two-cell node used for heap-allocated pair values and for
// cells whose quote_depth has escaped past the representable inline maximum
// (spec §3, §8 "Quote round-trip").
type Pairing struct {
	First, Second cell.Cell
}

func (Pairing) isNodePayload() {}

// SeriesSlot is the node-resident half of a Series: the header fields the
// core/series package manipulates (width/bias/used/rest/link/misc) plus
// either inline embedded bytes or a pointer to a dynamic allocation. It is
// deliberately untyped about *what* the dynamic allocation holds — that is
// core/series's concern — the arena only owns slot lifetime.
type SeriesSlot struct {
	Width uint8 // 0 means "holds cells" (an array); otherwise byte width of one element
	Bias  int32
	Used  int32
	Rest  int32

	// Bytes backs a byte-element series (width > 0: strings, binaries,
	// bitsets). Cells backs an array (width == 0). Exactly one is used,
	// selected by Width.
	Bytes []byte
	Cells []cell.Cell

	Dynamic bool // false: embedded (content sized by the header); true: heap-grown

	Link     uint64 // series-type-specific aux data (may itself be a noderef.Ref)
	Misc     uint64
	LinkNode bool // mirrors header flag: Link holds a node reference
	MiscNode bool // mirrors header flag: Misc holds a node reference

	Frozen   bool
	Protect  bool
	HeldBy   int // scoped read-lock count (spec §4.B Hold/ReleaseHold)
	Inaccess bool

	PageBacked bool // Bytes is an MmapBytes allocation rather than Go-heap, once large enough
}

func (*SeriesSlot) isNodePayload() {}

// node is one pool slot. Free/managed mirror the is_free/managed bits spec
// §3/§4.A describe; guardCount implements the "stack of guards" that pins a
// node against GC regardless of reachability.
type node struct {
	free       bool
	managed    bool
	marked     bool // GC mark bit, valid only during a sweep
	guardCount int
	data       Payload
}

// Arena is a pool of fixed-size node slots, identified by index.
//
// It is not safe for concurrent use — per spec §5 the whole runtime is
// single-threaded and cooperative, and the arena is one of the "shared
// resources" owned exclusively by the evaluator thread.
type Arena struct {
	nodes   []node
	free    []noderef.Ref // free list for O(1) allocation (§4.A)
	ballast int
	total   int
}

// New creates an empty arena with the default ballast.
func New() *Arena {
	return &Arena{ballast: defaultBallast}
}

// AllocNode returns an uninitialized, unmanaged, unguarded node slot.
// Ballast is decremented; NeedsRecycle reports true once it reaches zero.
func (a *Arena) AllocNode(data Payload) noderef.Ref {
	a.ballast--
	a.total++

	if n := len(a.free); n > 0 {
		ref := a.free[n-1]
		a.free = a.free[:n-1]
		slot := &a.nodes[ref]
		*slot = node{data: data}
		return ref
	}

	a.nodes = append(a.nodes, node{data: data})
	return noderef.Ref(len(a.nodes) - 1)
}

// FreeNode marks a node free for reuse. It is an error to free a managed
// node — only the GC may reclaim those (spec §4.A: "must not be called on
// managed nodes").
func (a *Arena) FreeNode(ref noderef.Ref) error {
	n, err := a.at(ref)
	if err != nil {
		return err
	}
	if n.managed {
		return fmt.Errorf("%w: node %d", ErrFreeManaged, ref)
	}
	if n.free {
		return nil // idempotent, mirrors hive/alloc's tolerance of double-free of already-free cells
	}
	releasePayload(n.data)
	n.free = true
	n.data = nil
	a.free = append(a.free, ref)
	return nil
}

// releasePayload unmaps a page-backed series's storage before the slot is
// discarded. Anything not a page-backed SeriesSlot is left to the Go GC.
func releasePayload(data Payload) {
	ss, ok := data.(*SeriesSlot)
	if !ok || !ss.PageBacked {
		return
	}
	_ = MunmapBytes(ss.Bytes)
	ss.Bytes = nil
	ss.PageBacked = false
}

// Manage transitions a node from manual to GC-managed (spec §3 lifecycle:
// "after which only GC reclaims them").
func (a *Arena) Manage(ref noderef.Ref) error {
	n, err := a.at(ref)
	if err != nil {
		return err
	}
	n.managed = true
	return nil
}

// Managed reports whether the node is GC-owned.
func (a *Arena) Managed(ref noderef.Ref) bool {
	n, err := a.at(ref)
	if err != nil {
		return false
	}
	return n.managed
}

// Guard pins ref against GC sweep regardless of reachability, pushing onto
// the node's guard count (a stack of guards, per spec §3).
func (a *Arena) Guard(ref noderef.Ref) error {
	n, err := a.at(ref)
	if err != nil {
		return err
	}
	n.guardCount++
	return nil
}

// Unguard pops one guard off ref.
func (a *Arena) Unguard(ref noderef.Ref) error {
	n, err := a.at(ref)
	if err != nil {
		return err
	}
	if n.guardCount > 0 {
		n.guardCount--
	}
	return nil
}

// Payload returns the node's data, or an error for a bad/free reference.
func (a *Arena) Payload(ref noderef.Ref) (Payload, error) {
	n, err := a.at(ref)
	if err != nil {
		return nil, err
	}
	if n.free {
		return nil, fmt.Errorf("%w: node %d is free", ErrBadRef, ref)
	}
	return n.data, nil
}

// NeedsRecycle reports whether ballast has been exhausted and a GC sweep is
// due (spec §4.A: "decrements ballast, signals GC if ballast ≤ 0").
func (a *Arena) NeedsRecycle() bool {
	return a.ballast <= 0
}

// Recharge resets ballast after a sweep.
func (a *Arena) Recharge() {
	a.ballast = defaultBallast
}

// Live returns the number of non-free slots currently allocated.
func (a *Arena) Live() int {
	return len(a.nodes) - len(a.free)
}

func (a *Arena) at(ref noderef.Ref) (*node, error) {
	i := int(ref)
	if i < 0 || i >= len(a.nodes) {
		return nil, fmt.Errorf("%w: %d", ErrBadRef, ref)
	}
	return &a.nodes[i], nil
}

// Mark sets the GC mark bit on ref, called by a tracer walking reachable
// roots (the data stack, frame stack, guarded nodes, and any node reachable
// from those via FirstIsNode/SecondIsNode payload slots).
func (a *Arena) Mark(ref noderef.Ref) {
	if n, err := a.at(ref); err == nil {
		n.marked = true
	}
}

// Sweep iterates every pool slot in order and frees any managed node that
// is neither marked reachable nor guarded, exactly as spec §4.A describes:
// "the GC sweeps pools in order; a free-bit distinguishes live from free
// without a separate free list walk." Unmanaged (manual) nodes are never
// swept — their owner is responsible for FreeNode. The mark bit is cleared
// on every node visited so the next cycle starts clean.
func (a *Arena) Sweep() (freed int) {
	for i := range a.nodes {
		n := &a.nodes[i]
		if n.free {
			continue
		}
		if n.managed && !n.marked && n.guardCount == 0 {
			releasePayload(n.data)
			n.free = true
			n.data = nil
			a.free = append(a.free, noderef.Ref(i))
			freed++
			continue
		}
		n.marked = false
	}
	a.Recharge()
	return freed
}
