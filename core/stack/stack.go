package stack

import (
	"fmt"

	"github.com/relang/corevm/core/cell"
)

// growBlock is the amortized growth unit (spec §4.D: "Expansion is
// amortized in blocks (e.g., 128 cells)").
const growBlock = 128

// Stack is the global, implicitly GC-rooted cell stack.
type Stack struct {
	cells []cell.Cell
	top   int
}

// New creates an empty data stack.
func New() *Stack {
	return &Stack{cells: make([]cell.Cell, growBlock)}
}

// Depth returns the current top index (the data-stack-pointer, "DSP").
func (s *Stack) Depth() int { return s.top }

// Push appends a cell, growing in growBlock-sized chunks when needed.
func (s *Stack) Push(v cell.Cell) {
	if s.top >= len(s.cells) {
		grown := make([]cell.Cell, len(s.cells)+growBlock)
		copy(grown, s.cells)
		s.cells = grown
	}
	s.cells[s.top] = v
	s.top++
}

// Drop pops and discards the top cell.
func (s *Stack) Drop() error {
	if s.top == 0 {
		return fmt.Errorf("stack: drop on empty stack")
	}
	s.top--
	s.cells[s.top] = cell.Cell{}
	return nil
}

// Peek returns a pointer to the cell at depth-from-top offset 0 (the top
// cell), or an error if the stack is empty.
func (s *Stack) Peek() (*cell.Cell, error) {
	if s.top == 0 {
		return nil, fmt.Errorf("stack: peek on empty stack")
	}
	return &s.cells[s.top-1], nil
}

// At returns a pointer to the absolute stack slot i (0-based from the
// bottom).
func (s *Stack) At(i int) (*cell.Cell, error) {
	if i < 0 || i >= s.top {
		return nil, fmt.Errorf("stack: index %d out of range (depth=%d)", i, s.top)
	}
	return &s.cells[i], nil
}

// Mark returns the current depth, to be passed to DropTo or PopToArray
// later (spec: "on normal function return, stack top must equal its value
// on entry; on error throw, the trap unwinds it").
func (s *Stack) Mark() int { return s.top }

// DropTo truncates the stack back to mark, discarding everything pushed
// since. This is both the normal "restore on return" path and the trap
// unwind path (spec §7 "fail... restoring all snapshotted counters").
func (s *Stack) DropTo(mark int) error {
	if mark < 0 || mark > s.top {
		return fmt.Errorf("stack: bad mark %d (depth=%d)", mark, s.top)
	}
	for i := mark; i < s.top; i++ {
		s.cells[i] = cell.Cell{}
	}
	s.top = mark
	return nil
}

// PopToArray drains everything pushed since mark into a plain slice (in
// push order) and truncates the stack to mark, implementing
// `pop_to_array(mark)`.
func (s *Stack) PopToArray(mark int) ([]cell.Cell, error) {
	if mark < 0 || mark > s.top {
		return nil, fmt.Errorf("stack: bad mark %d (depth=%d)", mark, s.top)
	}
	out := make([]cell.Cell, s.top-mark)
	copy(out, s.cells[mark:s.top])
	if err := s.DropTo(mark); err != nil {
		return nil, err
	}
	return out, nil
}

// Balanced reports whether the stack's current depth matches mark — the
// invariant spec §8 calls "stack balance".
func (s *Stack) Balanced(mark int) bool {
	return s.top == mark
}
