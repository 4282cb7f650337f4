package bind

import (
	"fmt"

	"github.com/relang/corevm/core/arena"
	"github.com/relang/corevm/core/cell"
	"github.com/relang/corevm/core/kind"
	"github.com/relang/corevm/core/noderef"
	"github.com/relang/corevm/core/series"
)

// Context pairs a keylist and a varlist array exactly as spec §3 describes:
// varlist[0] is the archetypal cell naming the context; keys at positions
// 1..N name fields; varlist[i] holds the value for key i.
type Context struct {
	Keylist series.Series
	Varlist series.Series
}

// NewContext allocates an empty context with capacity for numFields fields
// plus the archetype slot.
func NewContext(a *arena.Arena, numFields int) Context {
	keylist := series.Make(a, numFields+1, 0, 0)
	varlist := series.Make(a, numFields+1, 0, 0)

	if _, err := keylist.ExpandTail(1); err != nil {
		panic(err) // fresh series, cannot fail
	}
	if _, err := varlist.ExpandTail(1); err != nil {
		panic(err)
	}

	root, _ := varlist.At(0)
	root.Header.Kind = kind.KindContext
	root.SetFlag(cell.FlagProtected)
	root.SetNode(0, varlist.Ref())

	return Context{Keylist: keylist, Varlist: varlist}
}

// Archetype returns the root cell naming this context.
func (c Context) Archetype() (*cell.Cell, error) { return c.Varlist.At(0) }

// NumFields returns the number of fields (excluding the archetype slot).
func (c Context) NumFields() int {
	n := c.Varlist.Len() - 1
	if n < 0 {
		return 0
	}
	return n
}

// AddField appends a new field named sym, initialized to blank, and
// returns its 1-based field index.
func (c Context) AddField(sym Symbol) (int, error) {
	kStart, err := c.Keylist.ExpandTail(1)
	if err != nil {
		return 0, err
	}
	vStart, err := c.Varlist.ExpandTail(1)
	if err != nil {
		return 0, err
	}
	if kStart != vStart {
		return 0, fmt.Errorf("bind: keylist/varlist desynchronized (%d != %d)", kStart, vStart)
	}

	kc, _ := c.Keylist.At(kStart)
	kc.SetInt64(int64(sym))

	vc, _ := c.Varlist.At(vStart)
	*vc = cell.Blank()

	return vStart, nil
}

// KeyAt returns the symbol naming field index i (1-based, matching
// varlist[i]).
func (c Context) KeyAt(i int) (Symbol, error) {
	kc, err := c.Keylist.At(i)
	if err != nil {
		return NoSymbol, err
	}
	return Symbol(kc.Int64()), nil
}

// Find returns the field index for sym, or false if the context has no
// such field.
func (c Context) Find(sym Symbol) (int, bool) {
	for i := 1; i < c.Keylist.Len(); i++ {
		if s, err := c.KeyAt(i); err == nil && s == sym {
			return i, true
		}
	}
	return 0, false
}

// Get returns a pointer to the value cell for sym.
func (c Context) Get(sym Symbol) (*cell.Cell, error) {
	i, ok := c.Find(sym)
	if !ok {
		return nil, fmt.Errorf("bind: no such field: symbol %d", sym)
	}
	return c.Varlist.At(i)
}

// Ref returns the node reference of the varlist, the handle stored in a
// word's Extra field once it is specifically bound to this context.
func (c Context) Ref() noderef.Ref { return c.Varlist.Ref() }

// FromVarlistRef reconstructs a Context view from a varlist node reference
// and the arena (used when resolving a word's Extra binding back to a
// context). The keylist is recovered from the archetype cell's Payload[1]
// slot, which LinkKeylist populates with the keylist's node reference.
func FromVarlistRef(a *arena.Arena, varlistRef noderef.Ref) (Context, error) {
	varlist := series.New(a, varlistRef)
	root, err := varlist.At(0)
	if err != nil {
		return Context{}, err
	}
	klRef, ok := root.Node(1)
	if !ok {
		return Context{}, fmt.Errorf("bind: varlist archetype has no keylist link")
	}
	return Context{Keylist: series.New(a, klRef), Varlist: varlist}, nil
}

// LinkKeylist records the keylist's node reference on the archetype cell's
// second payload slot so FromVarlistRef can recover it later.
func (c Context) LinkKeylist() error {
	root, err := c.Archetype()
	if err != nil {
		return err
	}
	root.SetNode(1, c.Keylist.Ref())
	return nil
}
