package trap

import (
	"fmt"

	"github.com/relang/corevm/core/cell"
)

// Snapshot records the depth counters a trap restores on failure: data
// stack depth, guard-stack depth, and frame-stack depth, per spec §7
// "push_trap(handler, state) snapshots data-stack depth, ... frame top,
// guard depth".
type Snapshot struct {
	DataStackDepth int
	GuardDepth     int
	FrameDepth     int
}

// FailError is the panic value Fail raises. Catch recovers it and the
// caller restores the snapshotted counters; Fail itself never touches
// engine state, since the counters to restore live with the Catch call
// that established the trap boundary, not with the failure site.
type FailError struct {
	Err  error
	Snap Snapshot
}

func (e *FailError) Error() string { return e.Err.Error() }
func (e *FailError) Unwrap() error { return e.Err }

// ThrownValue is the panic value Throw raises: a value paired with a name
// cell, travelling as first-class control flow rather than an error (spec
// §7 "Throws are not errors"). Catch intercepts any thrown value;
// CatchNamed intercepts only a matching name and re-panics the rest.
type ThrownValue struct {
	Name  string
	Value cell.Cell
}

func (t *ThrownValue) Error() string {
	return fmt.Sprintf("uncaught throw: %s", t.Name)
}

var trapStack []Snapshot

// PushTrap records snap as the innermost trap boundary's restore point.
func PushTrap(snap Snapshot) {
	trapStack = append(trapStack, snap)
}

// DropTrap removes the innermost trap boundary. Callers pair every
// PushTrap with exactly one DropTrap, normally via defer.
func DropTrap() {
	if len(trapStack) == 0 {
		return
	}
	trapStack = trapStack[:len(trapStack)-1]
}

// Depth returns the number of currently pushed trap boundaries.
func Depth() int { return len(trapStack) }

// Fail raises a non-local exit that unwinds to the nearest Catch,
// carrying snap so the catcher can restore stack/guard/frame depth
// exactly as they stood when the trap was pushed.
func Fail(err error, snap Snapshot) {
	panic(&FailError{Err: err, Snap: snap})
}

// Throw raises a first-class control-flow value (break, continue, return,
// a custom throw) distinct from an error.
func Throw(name string, value cell.Cell) {
	panic(&ThrownValue{Name: name, Value: value})
}

// Catch pushes a trap boundary with snap, runs fn, and recovers any Fail
// or Throw raised within it. At most one of the two results is non-nil
// on return (both nil means fn completed normally). A panic value that is
// neither *FailError nor *ThrownValue is an internal error and is
// re-panicked rather than swallowed.
func Catch(snap Snapshot, fn func()) (failErr *FailError, thrown *ThrownValue) {
	PushTrap(snap)
	defer DropTrap()

	defer func() {
		if r := recover(); r != nil {
			switch v := r.(type) {
			case *FailError:
				failErr = v
			case *ThrownValue:
				thrown = v
			default:
				panic(r)
			}
		}
	}()

	fn()
	return
}

// CatchNamed behaves like Catch but only intercepts a throw whose name
// matches want; any other thrown value is re-panicked so it continues
// unwinding toward an outer, matching catch (spec §7: throws "must be
// explicitly caught by name").
func CatchNamed(snap Snapshot, want string, fn func()) (failErr *FailError, value *cell.Cell) {
	failErr, thrown := Catch(snap, fn)
	if thrown == nil {
		return failErr, nil
	}
	if thrown.Name != want {
		panic(thrown)
	}
	v := thrown.Value
	return failErr, &v
}
