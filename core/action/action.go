package action

import (
	"errors"

	"github.com/relang/corevm/core/bind"
	"github.com/relang/corevm/core/noderef"
)

// Sentinel errors mirror hive/subkeys/errors.go's one-error-per-failure-mode
// style.
var (
	// ErrUnknownAction indicates a noderef.Ref the Registry never defined.
	ErrUnknownAction = errors.New("action: unknown action reference")
	// ErrNotEnoughArgs indicates the feed ran out before a required
	// parameter (one without endable/skippable/soft-quote/local/return
	// class) could
	// be fulfilled.
	ErrNotEnoughArgs = errors.New("action: not enough arguments")
	// ErrUnknownRefinement indicates a path named a refinement the
	// action's paramlist does not declare.
	ErrUnknownRefinement = errors.New("action: unknown refinement")
)

// ParamClass names one of the parameter-fulfillment disciplines spec §4.I
// enumerates.
type ParamClass uint8

const (
	// ParamNormal: the argument is a fully evaluated expression,
	// participating in enfix lookahead.
	ParamNormal ParamClass = iota
	// ParamTight: a fully evaluated expression, but without consuming a
	// following enfix op (spec's "tight" binding).
	ParamTight
	// ParamHardQuote: the next value is taken literally, unevaluated.
	ParamHardQuote
	// ParamSoftQuote: literal unless the next value is a group (or a
	// word/get-word the dialect chooses to escape), in which case it is
	// evaluated.
	ParamSoftQuote
	// ParamReturn: the paramlist's own return-value slot; consumes no
	// input.
	ParamReturn
	// ParamLocal: a callee-local variable; consumes no input, starts
	// blank.
	ParamLocal
	// ParamEndable: like Normal, but an end-of-feed yields null instead
	// of ErrNotEnoughArgs.
	ParamEndable
	// ParamSkippable: like Endable, and additionally may be skipped by a
	// type mismatch (checked by the caller before Dispatch, since this
	// package has no type-constraint table of its own).
	ParamSkippable
)

// consumesInput reports whether class requires taking a value from the
// feed (as opposed to being locally synthesized).
func (c ParamClass) consumesInput() bool {
	switch c {
	case ParamReturn, ParamLocal:
		return false
	default:
		return true
	}
}

// Param describes one paramlist slot.
type Param struct {
	Sym        bind.Symbol
	Class      ParamClass
	Refinement bool // this slot is itself a refinement gate (a logic flag)
	UnderRef   bool // this slot's value is only fulfilled if the nearest preceding Refinement slot was requested
}

// Action is a callable's paramlist plus its native body. Dispatch is
// invoked once all parameters are fulfilled into the callee Frame's
// Varlist; it is the only place domain-specific behavior (arithmetic,
// series mutation, control flow) enters core/action.
type Action struct {
	Name     string
	Params   []Param
	Enfix    bool
	// Invisible marks an action whose result must never overwrite the
	// caller's out cell (comment, elide): the evaluator core routes its
	// result to a scratch cell and leaves out's stale mark untouched
	// (spec §4.G "Invisibles").
	Invisible bool
	Dispatch  func(c *Call) error
}

// Registry assigns stable noderef.Ref identities to Actions, playing the
// role hive/index plays for resolving a stable key to its underlying
// record: index 0 is reserved (noderef.Nil), so the first Define call
// returns 1.
type Registry struct {
	actions []*Action
}

// NewRegistry creates an empty action registry.
func NewRegistry() *Registry {
	return &Registry{actions: []*Action{nil}}
}

// Define registers act and returns its stable reference.
func (r *Registry) Define(act *Action) noderef.Ref {
	ref := noderef.Ref(len(r.actions))
	r.actions = append(r.actions, act)
	return ref
}

// Get resolves ref back to its Action.
func (r *Registry) Get(ref noderef.Ref) (*Action, bool) {
	i := int(ref)
	if i <= 0 || i >= len(r.actions) {
		return nil, false
	}
	a := r.actions[i]
	return a, a != nil
}
