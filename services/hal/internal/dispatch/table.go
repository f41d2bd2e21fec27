// Package dispatch maps interrupt sources to handlers. The table is filled at
// boot, before any source is unmasked, and is then only read from interrupt
// context.
package dispatch

import (
	"isrcell-go/errcode"
	"isrcell-go/services/hal/internal/critical"
	"isrcell-go/services/hal/internal/periph"
)

// Handler is an interrupt entry point. It must clear its own pending
// condition before returning.
type Handler func()

// Dependency is a shared cell a handler borrows from. *cell.Cell[T] satisfies it.
type Dependency interface {
	Name() string
	Populated(tok critical.Token) bool
}

type TraceKind uint8

const (
	TraceRegistered TraceKind = iota + 1
	TraceArmed
	TraceDisarmed
	TraceInvoked
)

// TraceEvent is reported to the optional Tracer. Name is the handler name.
type TraceEvent struct {
	Kind   TraceKind
	Source periph.Source
	Name   string
}

// Tracer observes table activity. Trace is called from interrupt context for
// TraceInvoked and must not block.
type Tracer interface {
	Trace(ev TraceEvent)
}

type entry struct {
	name  string
	h     Handler
	deps  []Dependency
	armed bool
	calls uint32
}

type Table struct {
	ctrl    periph.Controller
	ex      *critical.Executor
	entries [periph.MaxSources]entry
	tracer  Tracer
}

func New(ctrl periph.Controller, ex *critical.Executor) *Table {
	return &Table{ctrl: ctrl, ex: ex}
}

// SetTracer installs tr (nil removes it).
func (t *Table) SetTracer(tr Tracer) { t.tracer = tr }

func (t *Table) trace(k TraceKind, src periph.Source, name string) {
	if t.tracer != nil {
		t.tracer.Trace(TraceEvent{Kind: k, Source: src, Name: name})
	}
}

func (t *Table) slot(op string, src periph.Source) (*entry, error) {
	if int(src) >= len(t.entries) {
		return nil, &errcode.E{C: errcode.UnknownSource, Op: op}
	}
	return &t.entries[src], nil
}

// Register binds h to src. deps are the cells h borrows from; Arm refuses to
// unmask src until all of them are populated.
func (t *Table) Register(src periph.Source, name string, h Handler, deps ...Dependency) error {
	e, err := t.slot("dispatch.Register", src)
	if err != nil {
		return err
	}
	if h == nil {
		return &errcode.E{C: errcode.UnknownSource, Op: "dispatch.Register", Msg: name}
	}
	if e.armed {
		return &errcode.E{C: errcode.SourceArmed, Op: "dispatch.Register", Msg: e.name}
	}
	*e = entry{name: name, h: h, deps: deps}
	t.trace(TraceRegistered, src, name)
	return nil
}

// Arm unmasks src at the controller once every dependency holds a handle.
// The check and the unmask happen in one critical section.
func (t *Table) Arm(src periph.Source) error {
	e, err := t.slot("dispatch.Arm", src)
	if err != nil {
		return err
	}
	if e.h == nil {
		return &errcode.E{C: errcode.UnknownSource, Op: "dispatch.Arm"}
	}
	var missing Dependency
	t.ex.Run(func(tok critical.Token) {
		for _, d := range e.deps {
			if !d.Populated(tok) {
				missing = d
				return
			}
		}
		e.armed = true
		t.ctrl.Unmask(src)
	})
	if missing != nil {
		return &errcode.E{C: errcode.NotPopulated, Op: "dispatch.Arm", Msg: e.name + " needs " + missing.Name()}
	}
	t.trace(TraceArmed, src, e.name)
	return nil
}

// Disarm masks src. The handler stays registered.
func (t *Table) Disarm(src periph.Source) {
	e, err := t.slot("dispatch.Disarm", src)
	if err != nil || !e.armed {
		return
	}
	t.ctrl.Mask(src)
	e.armed = false
	t.trace(TraceDisarmed, src, e.name)
}

// Invoke runs the handler for src. Called by the hardware vector (or the host
// simulator). A source with no handler halts, like an unhandled interrupt.
func (t *Table) Invoke(src periph.Source) {
	if int(src) >= len(t.entries) || t.entries[src].h == nil {
		panic(errcode.UnknownSource)
	}
	e := &t.entries[src]
	e.calls++
	t.trace(TraceInvoked, src, e.name)
	e.h()
}

// Armed reports whether src is currently unmasked through this table.
func (t *Table) Armed(src periph.Source) bool {
	return int(src) < len(t.entries) && t.entries[src].armed
}

// Stats returns how many times src's handler has run.
func (t *Table) Stats(src periph.Source) uint32 {
	if int(src) >= len(t.entries) {
		return 0
	}
	return t.entries[src].calls
}
