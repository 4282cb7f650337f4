package corevm

import (
	"context"
	"errors"

	"github.com/relang/corevm/core/action"
	"github.com/relang/corevm/core/arena"
	"github.com/relang/corevm/core/bind"
	"github.com/relang/corevm/core/cell"
	"github.com/relang/corevm/core/diag"
	"github.com/relang/corevm/core/eval"
	"github.com/relang/corevm/core/feed"
	"github.com/relang/corevm/core/frame"
	"github.com/relang/corevm/core/limits"
	"github.com/relang/corevm/core/natives"
	"github.com/relang/corevm/core/noderef"
	"github.com/relang/corevm/core/scan"
	"github.com/relang/corevm/core/series"
	"github.com/relang/corevm/core/signals"
)

// Engine wires together one arena, symbol table, action registry, root
// context, evaluator core, and scanner into the single object a caller
// needs to run programs. Each Engine has its own arena, table, registry and
// root context; the frame stack (core/frame) and the trap stack (core/trap)
// are package-level and shared by all Engines.
type Engine struct {
	Arena    *arena.Arena
	Table    *bind.Table
	Registry *action.Registry
	Root     bind.Context
	Limits   *limits.Guard
	Signals  *signals.Set
	eval     *eval.Engine
	scanner  *scan.Scanner
	bound    *boundScanner
}

// New creates an Engine with its own arena, a fresh root context holding
// the fixed native library (+, *, if/else, comment, append, true, false),
// and conservative default recursion limits.
func New() *Engine {
	a := arena.New()
	tab := bind.NewTable()
	reg := action.NewRegistry()
	root := bind.NewContext(a, 0)
	if err := root.LinkKeylist(); err != nil {
		panic(err) // fresh context, cannot fail
	}

	guard := limits.NewGuard(limits.Default())
	sig := &signals.Set{}

	ev := eval.New(a, reg)
	ev.Limits = guard
	ev.Signals = sig

	if err := natives.Register(a, reg, tab, ev, root); err != nil {
		panic(err) // fixed native set registering into a fresh context
	}

	sc := scan.NewGuarded(a, guard)

	e := &Engine{
		Arena:    a,
		Table:    tab,
		Registry: reg,
		Root:     root,
		Limits:   guard,
		Signals:  sig,
		eval:     ev,
		scanner:  sc,
	}
	e.bound = &boundScanner{inner: sc, arena: a, ctxRef: root.Ref()}
	return e
}

// Do scans source, binds every word in it to the root context, and runs it
// to completion, returning the final expression's value. A panic escaping
// the evaluator is recovered and returned as an error carrying a
// core/diag report.
func (e *Engine) Do(source string) (cell.Cell, error) {
	arr, err := e.bound.Scan([]byte(source), 1, e.Table)
	if err != nil {
		return cell.Cell{}, err
	}
	return e.run(feed.NewArray(arr, 0, bind.Unbound))
}

// DoVariadic runs a C-variadic-style mixed list (cell.Cell, *cell.Cell,
// string source fragments, feed.Instruction, or nil as an explicit
// terminator), splicing and binding any scanned string fragment against
// the root context as it is pulled into the feed.
func (e *Engine) DoVariadic(items ...any) (cell.Cell, error) {
	fd := feed.NewVariadic(items, e.bound, e.Table, bind.Unbound)
	return e.run(fd)
}

// Scan lexes and binds source without evaluating it, for callers that want
// to inspect program structure (an interactive dump/dialect tool, say)
// rather than run it.
func (e *Engine) Scan(source string) (series.Series, error) {
	return e.bound.Scan([]byte(source), 1, e.Table)
}

func (e *Engine) run(fd *feed.Feed) (out cell.Cell, err error) {
	fr := &frame.Frame{Out: &out, Feed: fd}
	frame.Push(fr)
	defer frame.Pop(fr)
	defer func() {
		if r := recover(); r != nil {
			report := diag.Recover(r, frame.Top())
			for t := frame.Top(); t != nil && t != fr; t = frame.Top() {
				frame.Pop(t)
			}
			out, err = cell.Cell{}, errors.New(report.String())
		}
	}()
	if err := e.eval.Run(context.Background(), fr); err != nil {
		return cell.Cell{}, err
	}
	return out, nil
}

// boundScanner adapts core/scan's Scanner to feed.Scanner by binding every
// word in the freshly scanned array to a fixed target context immediately
// after scanning it — core/scan itself never binds anything (spec's
// scanner is purely lexical), so whichever entry point owns the feed must
// do this exactly once per scanned fragment.
type boundScanner struct {
	inner  *scan.Scanner
	arena  *arena.Arena
	ctxRef noderef.Ref
}

func (b *boundScanner) Scan(src []byte, line int, binder *bind.Table) (series.Series, error) {
	arr, err := b.inner.Scan(src, line, binder)
	if err != nil {
		return series.Series{}, err
	}
	if err := bind.Deep(b.arena, arr, b.ctxRef); err != nil {
		return series.Series{}, err
	}
	return arr, nil
}
