// services/hal/internal/platform/factories_host.go
//go:build !rp2040

package platform

import (
	"io"
	"os"
	"time"

	"isrcell-go/services/hal/internal/halerr"
	"isrcell-go/services/hal/internal/periph"
	"isrcell-go/x/timex"
)

// NumPins matches the RP2040 user GPIO range (GP0..GP29).
const NumPins = 30

// Host boards route peripherals to the same controller lines as the RP2040
// (IO_IRQ_BANK0 and TIMER_IRQ_1).
var simSources = periph.Sources{Edge: 13, Timer: 1}

// ----------------------------- GPIO (host) -----------------------------------

// SimGPIO is a GPIO port register file. It also instruments access: an
// access that starts while another is still in flight is counted as an
// overlap, which can only happen if an interrupt preempted an unguarded
// access.
type SimGPIO struct {
	out    [NumPins]bool
	in     [NumPins]bool
	isOut  [NumPins]bool
	inited [NumPins]bool

	edge *SimEdge

	busy     int
	overlaps uint32
	writes   uint32
	onAccess func(pin periph.Pin)
}

func (g *SimGPIO) enter(pin periph.Pin) {
	if g.busy > 0 {
		g.overlaps++
	}
	g.busy++
	if g.busy == 1 && g.onAccess != nil {
		g.onAccess(pin)
	}
}

func (g *SimGPIO) exit() { g.busy-- }

func (g *SimGPIO) ConfigureOutput(pin periph.Pin) error {
	if pin >= NumPins {
		return halerr.ErrUnknownPin
	}
	g.isOut[pin], g.inited[pin] = true, true
	g.out[pin] = false
	return nil
}

func (g *SimGPIO) ConfigureInput(pin periph.Pin, pull periph.Pull) error {
	if pin >= NumPins {
		return halerr.ErrUnknownPin
	}
	g.isOut[pin], g.inited[pin] = false, true
	g.in[pin] = pull == periph.PullUp
	return nil
}

func (g *SimGPIO) SetOutput(pin periph.Pin, level bool) {
	g.enter(pin)
	defer g.exit()
	if pin < NumPins && g.isOut[pin] {
		g.out[pin] = level
		g.writes++
	}
}

func (g *SimGPIO) Output(pin periph.Pin) bool {
	g.enter(pin)
	defer g.exit()
	return pin < NumPins && g.out[pin]
}

func (g *SimGPIO) Input(pin periph.Pin) bool {
	g.enter(pin)
	defer g.exit()
	return pin < NumPins && g.in[pin]
}

// Drive sets an input level from outside the chip. Edges are reported to the
// edge unit.
func (g *SimGPIO) Drive(pin periph.Pin, level bool) {
	if pin >= NumPins {
		return
	}
	old := g.in[pin]
	g.in[pin] = level
	if g.edge != nil {
		g.edge.observe(pin, old, level)
	}
}

// Press drives one rising and one falling edge.
func (g *SimGPIO) Press(pin periph.Pin) {
	g.Drive(pin, true)
	g.Drive(pin, false)
}

// Level reads an output latch without counting as an access.
func (g *SimGPIO) Level(pin periph.Pin) bool { return pin < NumPins && g.out[pin] }

// Overlaps counts accesses that began while another was in flight.
func (g *SimGPIO) Overlaps() uint32 { return g.overlaps }

// Writes counts SetOutput calls on output pins.
func (g *SimGPIO) Writes() uint32 { return g.writes }

// OnAccess runs fn at the start of every outermost register access.
func (g *SimGPIO) OnAccess(fn func(pin periph.Pin)) { g.onAccess = fn }

// ----------------------------- Edge unit (host) ------------------------------

const numLines = 16

type simLine struct {
	pin  periph.Pin
	edge periph.Edge
	on   bool
}

// SimEdge is the external-interrupt unit. A pending line keeps its
// controller source asserted until the handler clears it.
type SimEdge struct {
	ctrl    *SimController
	src     periph.Source
	lines   [numLines]simLine
	pending uint16
	clears  [numLines]uint32
}

func (e *SimEdge) Watch(line uint8, pin periph.Pin, edge periph.Edge) error {
	if line >= numLines {
		return halerr.ErrUnsupported
	}
	if pin >= NumPins {
		return halerr.ErrUnknownPin
	}
	e.lines[line] = simLine{pin: pin, edge: edge, on: edge != periph.EdgeNone}
	return nil
}

func (e *SimEdge) Pending(line uint8) bool {
	return line < numLines && e.pending&(1<<line) != 0
}

func (e *SimEdge) ClearPending(line uint8) {
	if line >= numLines {
		return
	}
	e.pending &^= 1 << line
	e.clears[line]++
}

// Clears counts ClearPending calls for line.
func (e *SimEdge) Clears(line uint8) uint32 { return e.clears[line%numLines] }

func (e *SimEdge) asserted() bool { return e.pending != 0 }

func (e *SimEdge) observe(pin periph.Pin, old, level bool) {
	var seen periph.Edge
	switch {
	case !old && level:
		seen = periph.EdgeRising
	case old && !level:
		seen = periph.EdgeFalling
	default:
		return
	}
	raised := false
	for i := range e.lines {
		l := &e.lines[i]
		if !l.on || l.pin != pin {
			continue
		}
		if l.edge == seen || l.edge == periph.EdgeBoth {
			e.pending |= 1 << uint(i)
			raised = true
		}
	}
	if raised {
		e.ctrl.Raise(e.src)
	}
}

// ----------------------------- Timer (host) ----------------------------------

// SimTimer overflows once per periph.TimerPeriod of simulated time.
type SimTimer struct {
	ctrl *SimController
	src  periph.Source

	period  time.Duration
	acc     time.Duration
	irq     bool
	running bool
	uif     bool

	updates uint32
	clears  uint32
}

func (t *SimTimer) Configure(reload, prescale uint32) error {
	period, ok := periph.TimerPeriod(reload, prescale)
	if reload == 0 || !ok {
		return halerr.ErrInvalidPeriod
	}
	t.period = period
	t.acc = 0
	return nil
}

func (t *SimTimer) EnableUpdateIRQ()    { t.irq = true }
func (t *SimTimer) Start()              { t.running = true }
func (t *SimTimer) UpdatePending() bool { return t.uif }

func (t *SimTimer) ClearUpdate() {
	t.uif = false
	t.clears++
}

// Overflow forces one update event.
func (t *SimTimer) Overflow() {
	if !t.running {
		return
	}
	t.uif = true
	t.updates++
	if t.irq {
		t.ctrl.Raise(t.src)
	}
}

// Elapse runs the counter for d of simulated time.
func (t *SimTimer) Elapse(d time.Duration) {
	if !t.running || t.period <= 0 {
		return
	}
	t.acc += d
	for t.acc >= t.period {
		t.acc -= t.period
		t.Overflow()
	}
}

func (t *SimTimer) Period() time.Duration { return t.period }
func (t *SimTimer) Updates() uint32       { return t.updates }
func (t *SimTimer) Clears() uint32        { return t.clears }

func (t *SimTimer) asserted() bool { return t.irq && t.uif }

// ----------------------------- ADC (host) ------------------------------------

// SimADC converts a settable 12-bit value after Latency polls of Done.
type SimADC struct {
	Latency int

	pin         periph.Pin
	enabled     bool
	value       uint16
	left        int
	converting  bool
	conversions uint32
}

func (a *SimADC) Enable(pin periph.Pin) error {
	if pin < 26 || pin >= NumPins {
		return halerr.ErrUnknownPin
	}
	a.pin, a.enabled = pin, true
	return nil
}

func (a *SimADC) StartConversion() {
	a.converting = true
	a.left = a.Latency
}

func (a *SimADC) Done() bool {
	if a.left > 0 {
		a.left--
		return false
	}
	return true
}

func (a *SimADC) Data() uint16 {
	if a.converting {
		a.converting = false
		a.conversions++
	}
	return a.value
}

// Set changes the analog input; only the low 12 bits are converted.
func (a *SimADC) Set(v uint16)        { a.value = v & 0x0FFF }
func (a *SimADC) Conversions() uint32 { return a.conversions }

// ----------------------------- PWM (host) ------------------------------------

type SimPWM struct {
	pin     periph.Pin
	reload  uint32
	compare uint32
	running bool
	writes  uint32
	onSet   func(v uint32)
}

func (w *SimPWM) Configure(pin periph.Pin, reload uint32) error {
	if pin >= NumPins {
		return halerr.ErrUnknownPin
	}
	if reload == 0 {
		return halerr.ErrInvalidPeriod
	}
	w.pin, w.reload = pin, reload
	return nil
}

func (w *SimPWM) SetCompare(v uint32) {
	w.compare = v
	w.writes++
	if w.onSet != nil {
		w.onSet(v)
	}
}

func (w *SimPWM) Start() { w.running = true }

func (w *SimPWM) Compare() uint32         { return w.compare }
func (w *SimPWM) Writes() uint32          { return w.writes }
func (w *SimPWM) OnSet(fn func(v uint32)) { w.onSet = fn }

// ----------------------------- Board (host) ----------------------------------

type SimConfig struct {
	// Start is the initial simulated time (zero: Unix epoch).
	Start time.Time
	// Realtime paces the board with the system clock instead of a manual one.
	Realtime bool
	// ADCLatency is the number of Done polls before a conversion completes.
	ADCLatency int
}

// SimBoard is a periph.Board backed by simulated register files. Time only
// moves when main context sleeps; the timer runs for the slept interval and
// then the OnIdle hook runs, which is where tests inject external events.
type SimBoard struct {
	once periph.Once
	ctrl *SimController

	GPIO  *SimGPIO
	Edge  *SimEdge
	Timer *SimTimer
	ADC   *SimADC
	PWM   *SimPWM

	manual *timex.Manual
	clock  simClock
	last   time.Time
	onIdle func(now time.Time)
}

func NewSimBoard(cfg SimConfig) *SimBoard {
	start := cfg.Start
	if start.IsZero() {
		start = time.Unix(0, 0)
	}
	ctrl := newSimController()
	edge := &SimEdge{ctrl: ctrl, src: simSources.Edge}
	b := &SimBoard{
		ctrl:  ctrl,
		GPIO:  &SimGPIO{edge: edge},
		Edge:  edge,
		Timer: &SimTimer{ctrl: ctrl, src: simSources.Timer},
		ADC:   &SimADC{Latency: cfg.ADCLatency},
		PWM:   &SimPWM{},
	}
	var base timex.Clock = timex.System{}
	if !cfg.Realtime {
		b.manual = timex.NewManual(start)
		base = b.manual
	}
	b.clock = simClock{base: base, b: b}
	b.last = base.Now()

	ctrl.route(simSources.Edge, edge.asserted)
	ctrl.route(simSources.Timer, b.Timer.asserted)
	return b
}

func (b *SimBoard) Take() (*periph.Peripherals, error) {
	return b.once.Take(func() periph.Bundle {
		return periph.Bundle{GPIO: b.GPIO, Edge: b.Edge, Timer: b.Timer, ADC: b.ADC, PWM: b.PWM}
	})
}

func (b *SimBoard) Controller() periph.Controller    { return b.ctrl }
func (b *SimBoard) Sources() periph.Sources          { return simSources }
func (b *SimBoard) Clock() timex.Clock               { return b.clock }
func (b *SimBoard) Route(invoke func(periph.Source)) { b.ctrl.invoke = invoke }

// IRQ exposes the simulated controller for tests.
func (b *SimBoard) IRQ() *SimController { return b.ctrl }

// Manual is the underlying manual clock (nil for realtime boards).
func (b *SimBoard) Manual() *timex.Manual { return b.manual }

// OnIdle installs fn to run after every main-context sleep.
func (b *SimBoard) OnIdle(fn func(now time.Time)) { b.onIdle = fn }

// Elapse moves simulated time forward outside any sleep, running the timer.
func (b *SimBoard) Elapse(d time.Duration) {
	if b.manual == nil {
		return
	}
	b.manual.Advance(d)
	b.tick(b.manual.Now())
}

func (b *SimBoard) tick(now time.Time) {
	if d := now.Sub(b.last); d > 0 {
		b.last = now
		b.Timer.Elapse(d)
	}
}

type simClock struct {
	base timex.Clock
	b    *SimBoard
}

func (c simClock) Now() time.Time { return c.base.Now() }

func (c simClock) SleepUntil(t time.Time) {
	c.base.SleepUntil(t)
	now := c.base.Now()
	c.b.tick(now)
	if c.b.onIdle != nil {
		c.b.onIdle(now)
	}
}

// ----------------------------- Defaults (host) -------------------------------

// DefaultBoard is a realtime simulated board.
func DefaultBoard() periph.Board { return NewSimBoard(SimConfig{Realtime: true}) }

// Console is the log sink.
func Console() io.Writer { return os.Stderr }

// Halt stops the program. On host builds it panics with err so callers and
// tests can observe the fatal path.
func Halt(err error) {
	panic(err)
}
