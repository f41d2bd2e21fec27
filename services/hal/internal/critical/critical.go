// Package critical implements the critical-section executor: the only
// concurrency primitive the firmware uses. A section masks every maskable
// interrupt for the duration of a unit of work and restores the exact mask
// state it found on exit, so nested sections never re-enable interrupts early.
package critical

import "isrcell-go/errcode"

// State is the interrupt mask state saved on entry to a section.
type State uintptr

// Mask is the part of the interrupt controller the executor drives.
type Mask interface {
	MaskAll() State
	Restore(State)
}

// Probe observes section entry/exit. Used by instrumented tests.
type Probe interface {
	Enter(depth uint32)
	Exit(depth uint32)
}

// Executor runs work with interrupts masked. One per core; there is one core.
type Executor struct {
	mask  Mask
	depth uint32
	epoch uint32 // bumped each time an outermost section opens
	probe Probe
}

func New(m Mask) *Executor { return &Executor{mask: m} }

// SetProbe installs p (nil removes it).
func (e *Executor) SetProbe(p Probe) { e.probe = p }

// Depth is the current nesting depth; 0 outside any section.
func (e *Executor) Depth() uint32 { return e.depth }

// Run masks interrupts, runs work, and restores the saved mask state even if
// work panics. work must not block or do I/O.
func (e *Executor) Run(work func(Token)) {
	st := e.mask.MaskAll()
	if e.depth == 0 {
		e.epoch++
	}
	e.depth++
	if e.probe != nil {
		e.probe.Enter(e.depth)
	}
	defer func() {
		if e.probe != nil {
			e.probe.Exit(e.depth)
		}
		e.depth--
		e.mask.Restore(st)
	}()
	work(Token{ex: e, epoch: e.epoch})
}

// Do is Run for work that produces a value.
func Do[R any](e *Executor, work func(Token) R) (r R) {
	e.Run(func(tok Token) { r = work(tok) })
	return r
}

// Token witnesses that interrupts are masked. Only Run creates a live one; it
// goes stale when the outermost section that produced it exits.
type Token struct {
	ex    *Executor
	epoch uint32
}

// Valid reports whether the section that issued tok is still open.
func (t Token) Valid() bool {
	return t.ex != nil && t.ex.depth > 0 && t.ex.epoch == t.epoch
}

// Check halts on a forged or stale token.
func (t Token) Check() {
	if !t.Valid() {
		panic(errcode.NoCriticalSection)
	}
}
