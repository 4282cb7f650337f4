package bind

import (
	"errors"

	"github.com/relang/corevm/core/arena"
	"github.com/relang/corevm/core/cell"
	"github.com/relang/corevm/core/noderef"
)

// ErrUnbound indicates a word lookup on a word with no binding at all
// (spec §4.G LOOKAHEAD_START: "If the word has no binding, fail").
var ErrUnbound = errors.New("bind: word is unbound")

// Mode distinguishes the three things a Specifier can resolve to.
type Mode uint8

const (
	// ModeUnbound: no specifier in effect; any relative word reached
	// through it fails to resolve.
	ModeUnbound Mode = iota
	// ModeContext: the specifier is a context varlist. Relative words
	// resolve directly against it; specific words use their own binding.
	ModeContext
	// ModeActionParamlist: the specifier names the action whose body
	// relative words are bound into; resolving requires combining this
	// with the frame instance currently executing that action.
	ModeActionParamlist
	// ModeFrame: the specifier is a frame instance (its varlist doubles
	// as the context for words relative to the frame's action).
	ModeFrame
)

// Specifier resolves a relative word (one bound to an action paramlist
// rather than a concrete context) to a concrete value location (spec §3
// "Binding / Specifier").
type Specifier struct {
	Mode Mode
	Ref  noderef.Ref
}

// Unbound is the specifier that resolves nothing.
var Unbound = Specifier{Mode: ModeUnbound}

// wordExtraAction marks a word's Extra field as an action-paramlist-relative
// binding rather than a context-specific one. Kept as the high bit of the
// 64-bit Extra field so SetNode-style payload flags (which only govern
// Payload[0]/[1]) are untouched.
const wordExtraAction = uint64(1) << 63

// BindSpecific sets c's binding to a concrete context (spec: "specific
// words as (symbol, context)").
func BindSpecific(c *cell.Cell, ctxRef noderef.Ref) {
	c.Extra = uint64(ctxRef)
}

// BindRelative sets c's binding to an action paramlist, to be resolved
// later against whatever Specifier the evaluator supplies (spec: "relative
// words as (symbol, action) plus an out-of-band specifier").
func BindRelative(c *cell.Cell, paramlistRef noderef.Ref) {
	c.Extra = uint64(paramlistRef) | wordExtraAction
}

// Unbind clears c's binding.
func Unbind(c *cell.Cell) {
	c.Extra = 0
}

// IsRelative reports whether c is bound relative to an action paramlist
// rather than to a concrete context.
func IsRelative(c *cell.Cell) bool {
	return c.Extra&wordExtraAction != 0
}

// IsBound reports whether c carries any binding at all.
func IsBound(c *cell.Cell) bool {
	return c.Extra != 0
}

// bindingRef extracts the node reference half of Extra, masking off the
// relative-binding marker bit.
func bindingRef(c *cell.Cell) noderef.Ref {
	return noderef.Ref(c.Extra &^ wordExtraAction)
}

// Resolve looks up c's value location. If c is specifically bound, its own
// binding is used directly; if c is relatively bound, spec combines it
// with the specifier in effect at the point of evaluation (the Specifier
// passed to Resolve); an unbound word fails with ErrUnbound.
func Resolve(a *arena.Arena, c *cell.Cell, sp Specifier) (*cell.Cell, error) {
	if !IsBound(c) {
		return nil, ErrUnbound
	}

	sym := Symbol(c.Payload[0])

	if !IsRelative(c) {
		ctx, err := FromVarlistRef(a, bindingRef(c))
		if err != nil {
			return nil, err
		}
		return ctx.Get(sym)
	}

	// Relative word: the paramlist identity in Extra is not consulted;
	// the concrete storage comes from the specifier's frame/context
	// varlist.
	switch sp.Mode {
	case ModeContext, ModeFrame:
		ctx, err := FromVarlistRef(a, sp.Ref)
		if err != nil {
			return nil, err
		}
		return ctx.Get(sym)
	default:
		return nil, ErrUnbound
	}
}
