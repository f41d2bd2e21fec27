// Package toggle holds the two interrupt-driven state machines: a latch flipped
// on every accepted rising edge of an external line, and a latch flipped on
// every timer update event. Both share one routine that flips the latch and
// drives the output pin.
package toggle

import (
	"time"

	"isrcell-go/services/hal/internal/cell"
	"isrcell-go/services/hal/internal/critical"
	"isrcell-go/services/hal/internal/periph"
	"isrcell-go/x/timex"
)

// Output names one GPIO output bit behind a shared port cell.
type Output struct {
	Port *cell.Cell[periph.GPIOPort]
	Pin  periph.Pin
}

// Latch is a persistent bit owned by exactly one handler. It starts false.
type Latch struct {
	on    bool
	flips uint32
}

// Flip inverts the latch and writes the new value to out. Requires a live token.
func (l *Latch) Flip(tok critical.Token, out Output) bool {
	l.on = !l.on
	l.flips++
	on := l.on
	out.Port.With(tok, func(g periph.GPIOPort) { g.SetOutput(out.Pin, on) })
	return on
}

func (l *Latch) On() bool      { return l.on }
func (l *Latch) Flips() uint32 { return l.flips }

// EdgeToggle is the handler for one external-interrupt line.
type EdgeToggle struct {
	ex    *critical.Executor
	unit  *cell.Cell[periph.EdgeUnit]
	line  uint8
	out   Output
	clock timex.Clock

	// window 0 accepts every edge, bounces included.
	window     time.Duration
	last       time.Time
	seen       bool
	suppressed uint32

	latch Latch
}

type EdgeConfig struct {
	Line     uint8
	Out      Output
	Debounce time.Duration
	Clock    timex.Clock // required when Debounce > 0
}

func NewEdge(ex *critical.Executor, unit *cell.Cell[periph.EdgeUnit], cfg EdgeConfig) *EdgeToggle {
	return &EdgeToggle{
		ex:     ex,
		unit:   unit,
		line:   cfg.Line,
		out:    cfg.Out,
		clock:  cfg.Clock,
		window: cfg.Debounce,
	}
}

// Handle is the interrupt entry point. The pending bit is cleared before
// anything else, including for edges the debounce window rejects.
func (t *EdgeToggle) Handle() {
	t.ex.Run(func(tok critical.Token) {
		t.unit.With(tok, func(u periph.EdgeUnit) { u.ClearPending(t.line) })
		if t.window > 0 && t.clock != nil {
			now := t.clock.Now()
			if t.seen && now.Sub(t.last) < t.window {
				t.suppressed++
				return
			}
			t.last, t.seen = now, true
		}
		t.latch.Flip(tok, t.out)
	})
}

func (t *EdgeToggle) Latch() bool        { return t.latch.On() }
func (t *EdgeToggle) Flips() uint32      { return t.latch.Flips() }
func (t *EdgeToggle) Suppressed() uint32 { return t.suppressed }

// PeriodicToggle is the handler for a timer update event.
type PeriodicToggle struct {
	ex    *critical.Executor
	timer *cell.Cell[periph.Timer]
	out   Output

	// Optional controller-level unpend before the peripheral flag is cleared.
	ctrl periph.Controller
	src  periph.Source

	latch Latch
}

type PeriodicConfig struct {
	Out Output
	// Unpend, when Ctrl is set, clears Src at the controller on entry.
	Unpend bool
	Ctrl   periph.Controller
	Src    periph.Source
}

func NewPeriodic(ex *critical.Executor, timer *cell.Cell[periph.Timer], cfg PeriodicConfig) *PeriodicToggle {
	t := &PeriodicToggle{ex: ex, timer: timer, out: cfg.Out, src: cfg.Src}
	if cfg.Unpend {
		t.ctrl = cfg.Ctrl
	}
	return t
}

// Handle is the interrupt entry point.
func (t *PeriodicToggle) Handle() {
	if t.ctrl != nil {
		t.ctrl.ClearPending(t.src)
	}
	t.ex.Run(func(tok critical.Token) {
		t.timer.With(tok, func(tm periph.Timer) { tm.ClearUpdate() })
		t.latch.Flip(tok, t.out)
	})
}

func (t *PeriodicToggle) Latch() bool   { return t.latch.On() }
func (t *PeriodicToggle) Flips() uint32 { return t.latch.Flips() }
