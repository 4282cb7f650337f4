package action

import (
	"errors"
	"fmt"

	"github.com/relang/corevm/core/arena"
	"github.com/relang/corevm/core/bind"
	"github.com/relang/corevm/core/cell"
	"github.com/relang/corevm/core/kind"
	"github.com/relang/corevm/core/series"
)

// ErrBadIndex indicates a pick/poke integer selector out of the target
// series' bounds.
var ErrBadIndex = errors.New("action: index out of range")

// ErrNotPickable indicates a path step whose target kind supports neither
// integer indexing (a series) nor word lookup (a context).
var ErrNotPickable = errors.New("action: value is not pickable")

// ErrPathGroupsDisallowed indicates a computed (group) path step was
// encountered while no_path_groups was in effect (spec §4.J
// "no_path_groups").
var ErrPathGroupsDisallowed = errors.New("action: group path steps are disallowed here")

// Pick implements the path `pick` operation (spec §4.J): selector is
// either an integer cell (1-based index into a series-kind target) or a
// word cell (field lookup into a context-kind target).
func Pick(a *arena.Arena, target cell.Cell, selector cell.Cell) (cell.Cell, error) {
	switch target.Kind() {
	case kind.KindBlock, kind.KindGroup, kind.KindPath:
		ref, ok := target.Node(0)
		if !ok {
			return cell.Cell{}, ErrNotPickable
		}
		arr := series.New(a, ref)
		idx := int(selector.Int64()) - 1
		c, err := arr.At(idx)
		if err != nil {
			return cell.Cell{}, fmt.Errorf("%w: %v", ErrBadIndex, err)
		}
		return *c, nil

	case kind.KindContext:
		ref, ok := target.Node(0)
		if !ok {
			return cell.Cell{}, ErrNotPickable
		}
		ctx, err := bind.FromVarlistRef(a, ref)
		if err != nil {
			return cell.Cell{}, err
		}
		sym := bind.Symbol(selector.Payload[0])
		c, err := ctx.Get(sym)
		if err != nil {
			return cell.Cell{}, err
		}
		return *c, nil

	default:
		return cell.Cell{}, ErrNotPickable
	}
}

// Poke implements the symmetric `poke` write.
func Poke(a *arena.Arena, target cell.Cell, selector cell.Cell, value cell.Cell) error {
	switch target.Kind() {
	case kind.KindBlock, kind.KindGroup, kind.KindPath:
		ref, ok := target.Node(0)
		if !ok {
			return ErrNotPickable
		}
		arr := series.New(a, ref)
		idx := int(selector.Int64()) - 1
		c, err := arr.At(idx)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrBadIndex, err)
		}
		*c = value.Copy()
		return nil

	case kind.KindContext:
		ref, ok := target.Node(0)
		if !ok {
			return ErrNotPickable
		}
		ctx, err := bind.FromVarlistRef(a, ref)
		if err != nil {
			return err
		}
		sym := bind.Symbol(selector.Payload[0])
		c, err := ctx.Get(sym)
		if err != nil {
			return err
		}
		*c = value.Copy()
		return nil

	default:
		return ErrNotPickable
	}
}

// CollectRefinements walks a path's array (its first element naming the
// callee, every subsequent element a refinement word), implementing
// push_path_refines: it returns the refinement symbols in call-site order,
// ready to pass to Fulfiller.Dispatch as requested. noPathGroups, when
// true, rejects a group step anywhere in the path (spec §4.J
// "no_path_groups").
func CollectRefinements(a *arena.Arena, pathRef cell.Cell, noPathGroups bool) (headSym bind.Symbol, refinements []bind.Symbol, err error) {
	ref, ok := pathRef.Node(0)
	if !ok {
		return bind.NoSymbol, nil, ErrNotPickable
	}
	arr := series.New(a, ref)
	if arr.Len() == 0 {
		return bind.NoSymbol, nil, fmt.Errorf("action: empty path")
	}

	head, err := arr.At(0)
	if err != nil {
		return bind.NoSymbol, nil, err
	}
	headSym = bind.Symbol(head.Payload[0])

	for i := 1; i < arr.Len(); i++ {
		step, err := arr.At(i)
		if err != nil {
			return bind.NoSymbol, nil, err
		}
		if step.Kind() == kind.KindGroup && noPathGroups {
			return bind.NoSymbol, nil, ErrPathGroupsDisallowed
		}
		if step.Kind().IsWordlike() {
			refinements = append(refinements, bind.Symbol(step.Payload[0]))
		}
	}
	return headSym, refinements, nil
}
