// Package kind enumerates the cell type tag shared by every value in the
// runtime. It plays the role hivekit's pkg/types registry-value enum plays
// for REG_SZ/REG_DWORD/...: a small closed byte enum with classification
// helpers, read off a single discriminant byte.
package kind

// Kind tags the payload interpretation of a Cell's header.
type Kind uint8

// The zero value, KindEnd, doubles as the array terminator sentinel (see
// spec §3: "the second byte of the header is 0 iff the cell is an end
// marker"). Every other kind is non-zero so a zeroed Cell is always a valid,
// recognizable end marker without further initialization.
const (
	KindEnd Kind = iota

	KindBlock
	KindGroup
	KindWord
	KindSetWord
	KindGetWord
	KindPath
	KindSetPath
	KindGetPath
	KindAction
	KindFrame
	KindContext
	KindInteger
	KindDecimal
	KindText
	KindBinary
	KindBitset
	KindLogic
	KindBlank
	KindNull
	KindVoid
	KindHandle
	KindDate
	KindTime
	KindPair
	KindMap
	KindTypeset
	KindPseudotype
)

//go:generate stringer -type=Kind

var names = map[Kind]string{
	KindEnd:        "end",
	KindBlock:      "block!",
	KindGroup:      "group!",
	KindWord:       "word!",
	KindSetWord:    "set-word!",
	KindGetWord:    "get-word!",
	KindPath:       "path!",
	KindSetPath:    "set-path!",
	KindGetPath:    "get-path!",
	KindAction:     "action!",
	KindFrame:      "frame!",
	KindContext:    "object!",
	KindInteger:    "integer!",
	KindDecimal:    "decimal!",
	KindText:       "text!",
	KindBinary:     "binary!",
	KindBitset:     "bitset!",
	KindLogic:      "logic!",
	KindBlank:      "blank!",
	KindNull:       "null",
	KindVoid:       "void!",
	KindHandle:     "handle!",
	KindDate:       "date!",
	KindTime:       "time!",
	KindPair:       "pair!",
	KindMap:        "map!",
	KindTypeset:    "typeset!",
	KindPseudotype: "pseudotype!",
}

// String renders the Rebol-style type name (e.g. "integer!").
func (k Kind) String() string {
	if n, ok := names[k]; ok {
		return n
	}
	return "unknown!"
}

// IsEnd reports whether k is the array terminator sentinel.
func (k Kind) IsEnd() bool { return k == KindEnd }

// IsWordlike reports whether k is one of the word/set-word/get-word family
// that resolves through a binding rather than carrying its value directly.
func (k Kind) IsWordlike() bool {
	switch k {
	case KindWord, KindSetWord, KindGetWord:
		return true
	default:
		return false
	}
}

// IsPathlike reports whether k is one of the path family.
func (k Kind) IsPathlike() bool {
	switch k {
	case KindPath, KindSetPath, KindGetPath:
		return true
	default:
		return false
	}
}

// inertKinds are the types the evaluator core copies to output verbatim
// (spec §4.G LOOKAHEAD_START, "If inert"), never dispatched or looked up.
var inertKinds = map[Kind]bool{
	KindBlock:   true,
	KindInteger: true,
	KindDecimal: true,
	KindText:    true,
	KindBinary:  true,
	KindBitset:  true,
	KindLogic:   true,
	KindBlank:   true,
	KindNull:    true,
	KindDate:    true,
	KindTime:    true,
	KindPair:    true,
	KindMap:     true,
	KindTypeset: true,
}

// IsInert reports whether a cell of this kind evaluates to itself.
func (k Kind) IsInert() bool {
	return inertKinds[k]
}

// IsQuotable reports whether values of this kind may carry a non-zero
// quote_depth per spec §3 (everything may, in principle; this exists as a
// narrow hook for future kind-specific exceptions and documents the intent).
func (k Kind) IsQuotable() bool {
	return true
}

// HoldsNode reports whether a cell of this kind stores its payload as node
// references (series-backed: blocks, contexts, actions, strings, ...) as
// opposed to an immediate scalar payload (integer, logic, blank, ...).
func (k Kind) HoldsNode() bool {
	switch k {
	case KindBlock, KindGroup, KindPath, KindSetPath, KindGetPath,
		KindAction, KindFrame, KindContext, KindText, KindBinary,
		KindBitset, KindMap, KindHandle:
		return true
	default:
		return false
	}
}
