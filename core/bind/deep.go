package bind

import (
	"github.com/relang/corevm/core/arena"
	"github.com/relang/corevm/core/cell"
	"github.com/relang/corevm/core/kind"
	"github.com/relang/corevm/core/noderef"
	"github.com/relang/corevm/core/series"
)

// Deep walks arr and every block/group/path it nests, binding each
// word/set-word/get-word cell specifically to ctxRef. A set-word whose
// symbol the context lacks adds that field to it. This is what a
// freshly scanned program needs before it can be evaluated at all: the
// scanner (core/scan) never binds anything, leaving every word's Extra
// field zero (spec's "unbound" state); a loader binds the whole tree into
// its target context exactly once, the way a freshly read block is bound
// to the user context before DO ever sees it.
func Deep(a *arena.Arena, arr series.Series, ctxRef noderef.Ref) error {
	for i := 0; i < arr.Len(); i++ {
		c, err := arr.At(i)
		if err != nil {
			return err
		}
		if err := bindCell(a, c, ctxRef); err != nil {
			return err
		}
	}
	return nil
}

func bindCell(a *arena.Arena, c *cell.Cell, ctxRef noderef.Ref) error {
	switch c.Kind() {
	case kind.KindWord, kind.KindGetWord:
		if !IsBound(c) {
			BindSpecific(c, ctxRef)
		}
	case kind.KindSetWord:
		if !IsBound(c) {
			ctx, err := FromVarlistRef(a, ctxRef)
			if err != nil {
				return err
			}
			if _, ok := ctx.Find(Symbol(c.Payload[0])); !ok {
				if _, err := ctx.AddField(Symbol(c.Payload[0])); err != nil {
					return err
				}
			}
			BindSpecific(c, ctxRef)
		}
	case kind.KindBlock, kind.KindGroup, kind.KindPath, kind.KindSetPath, kind.KindGetPath:
		ref, ok := c.Node(0)
		if !ok {
			return nil
		}
		return Deep(a, series.New(a, ref), ctxRef)
	}
	return nil
}
