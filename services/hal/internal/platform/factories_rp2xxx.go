// services/hal/internal/platform/factories_rp2xxx.go
//go:build rp2040

package platform

import (
	"device/rp"
	"io"
	"machine"
	"runtime/interrupt"
	"runtime/volatile"
	"sync"

	"github.com/jangala-dev/tinygo-uartx/uartx"

	"isrcell-go/services/hal/internal/halerr"
	"isrcell-go/services/hal/internal/periph"
	"isrcell-go/x/mathx"
	"isrcell-go/x/timex"
)

// -----------------------------------------------------------------------------
// Defaults used by hal.Boot on Raspberry Pi Pico (RP2040)
// -----------------------------------------------------------------------------

const (
	maxPin   = 29
	pwmHz    = 1000
	consoleB = 115200
)

// DefaultBoard returns the Pico board. Peripherals are configured lazily by
// the program that takes them.
func DefaultBoard() periph.Board { return &rp2Board{} }

var consoleOnce sync.Once

// Console is UART0 on the board-default pins.
func Console() io.Writer {
	consoleOnce.Do(func() {
		_ = uartx.UART0.Configure(uartx.UARTConfig{
			BaudRate: consoleB,
			TX:       machine.UART0_TX_PIN,
			RX:       machine.UART0_RX_PIN,
		})
	})
	return uartx.UART0
}

// Halt masks every interrupt and spins. The caller has already logged the error.
func Halt(error) {
	interrupt.Disable()
	for {
	}
}

// ---- Board ----

type rp2Board struct {
	once periph.Once
	ctrl nvic
}

func (b *rp2Board) Take() (*periph.Peripherals, error) {
	return b.once.Take(func() periph.Bundle {
		return periph.Bundle{
			GPIO:  rp2GPIO{},
			Edge:  rp2Edge{},
			Timer: &rp2Timer{},
			ADC:   &rp2ADC{},
			PWM:   &rp2PWM{},
		}
	})
}

func (b *rp2Board) Controller() periph.Controller    { return b.ctrl }
func (b *rp2Board) Sources() periph.Sources          { return periph.Sources{Edge: edgeSource, Timer: timerSource} }
func (b *rp2Board) Clock() timex.Clock               { return timex.System{} }
func (b *rp2Board) Route(invoke func(periph.Source)) { vector = invoke }

// ---- GPIO implementation ----

type rp2GPIO struct{}

func (rp2GPIO) ConfigureOutput(pin periph.Pin) error {
	if pin > maxPin {
		return halerr.ErrUnknownPin
	}
	p := machine.Pin(pin)
	p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	p.Low()
	return nil
}

func (rp2GPIO) ConfigureInput(pin periph.Pin, pull periph.Pull) error {
	if pin > maxPin {
		return halerr.ErrUnknownPin
	}
	var mode machine.PinMode
	switch pull {
	case periph.PullUp:
		mode = machine.PinInputPullup
	case periph.PullDown:
		mode = machine.PinInputPulldown
	default:
		mode = machine.PinInput
	}
	machine.Pin(pin).Configure(machine.PinConfig{Mode: mode})
	return nil
}

func (rp2GPIO) SetOutput(pin periph.Pin, level bool) { machine.Pin(pin).Set(level) }
func (rp2GPIO) Output(pin periph.Pin) bool           { return machine.Pin(pin).Get() }
func (rp2GPIO) Input(pin periph.Pin) bool            { return machine.Pin(pin).Get() }

// ---- Edge unit (IO_BANK0 interrupts) ----

// Each pin is its own line; line numbers must equal pin numbers.
type rp2Edge struct{}

const (
	evEdgeLow  = 0x4
	evEdgeHigh = 0x8
)

func intr(line uint8) *volatile.Register32 {
	switch line / 8 {
	case 0:
		return &rp.IO_BANK0.INTR0
	case 1:
		return &rp.IO_BANK0.INTR1
	case 2:
		return &rp.IO_BANK0.INTR2
	default:
		return &rp.IO_BANK0.INTR3
	}
}

func (rp2Edge) Watch(line uint8, pin periph.Pin, edge periph.Edge) error {
	if pin > maxPin {
		return halerr.ErrUnknownPin
	}
	if uint8(pin) != line {
		return halerr.ErrUnsupported
	}
	var change machine.PinChange
	switch edge {
	case periph.EdgeRising:
		change = machine.PinRising
	case periph.EdgeFalling:
		change = machine.PinFalling
	case periph.EdgeBoth:
		change = machine.PinToggle
	default:
		return machine.Pin(pin).SetInterrupt(change, nil)
	}
	if err := machine.Pin(pin).SetInterrupt(change, func(machine.Pin) { invoke(edgeSource) }); err != nil {
		return err
	}
	// SetInterrupt enables the bank interrupt; keep it masked until armed.
	rp.PPB.NVIC_ICER.Set(1 << edgeSource)
	return nil
}

func (rp2Edge) Pending(line uint8) bool {
	shift := 4 * uint32(line%8)
	return intr(line).Get()&((evEdgeLow|evEdgeHigh)<<shift) != 0
}

func (rp2Edge) ClearPending(line uint8) {
	shift := 4 * uint32(line%8)
	intr(line).Set((evEdgeLow | evEdgeHigh) << shift)
}

// ---- Timer (alarm 1 re-armed on every update) ----

type rp2Timer struct {
	periodUS uint32
	next     uint32
}

func (t *rp2Timer) Configure(reload, prescale uint32) error {
	ns, ok := periph.TimerPeriod(reload, prescale)
	if !ok {
		return halerr.ErrInvalidPeriod
	}
	us := mathx.CeilDiv(uint64(ns), 1000)
	if us == 0 || us > 1<<31 {
		return halerr.ErrInvalidPeriod
	}
	t.periodUS = uint32(us)
	return nil
}

func (t *rp2Timer) EnableUpdateIRQ() {
	registerTimerVector()
	rp.TIMER.INTE.SetBits(rp.TIMER_INTE_ALARM_1)
}

func (t *rp2Timer) Start() {
	t.next = rp.TIMER.TIMERAWL.Get() + t.periodUS
	rp.TIMER.ALARM1.Set(t.next)
}

func (t *rp2Timer) UpdatePending() bool { return rp.TIMER.INTR.HasBits(rp.TIMER_INTR_ALARM_1) }

// ClearUpdate acknowledges the alarm and schedules the next one, which is
// what gives the alarm auto-reload behaviour.
func (t *rp2Timer) ClearUpdate() {
	rp.TIMER.INTR.Set(rp.TIMER_INTR_ALARM_1)
	t.next += t.periodUS
	rp.TIMER.ALARM1.Set(t.next)
}

// ---- ADC (single conversion, polled) ----

type rp2ADC struct {
	channel uint32
}

func (a *rp2ADC) Enable(pin periph.Pin) error {
	if pin < 26 || pin > maxPin {
		return halerr.ErrUnknownPin
	}
	machine.InitADC()
	adc := machine.ADC{Pin: machine.Pin(pin)}
	adc.Configure(machine.ADCConfig{})
	a.channel = uint32(pin) - 26
	return nil
}

func (a *rp2ADC) StartConversion() {
	rp.ADC.CS.ReplaceBits(a.channel<<rp.ADC_CS_AINSEL_Pos, rp.ADC_CS_AINSEL_Msk, 0)
	rp.ADC.CS.SetBits(rp.ADC_CS_START_ONCE)
}

func (a *rp2ADC) Done() bool   { return rp.ADC.CS.HasBits(rp.ADC_CS_READY) }
func (a *rp2ADC) Data() uint16 { return uint16(rp.ADC.RESULT.Get()) }

// ---- PWM ----

// pwmSlice is the subset of machine's PWM group we use.
type pwmSlice interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Top() uint32
	Set(channel uint8, value uint32)
	Enable(enable bool)
}

func sliceFor(pin periph.Pin) pwmSlice {
	switch (pin >> 1) & 7 {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	default:
		return machine.PWM7
	}
}

// rp2PWM maps compare values in [0..reload) onto the slice's own TOP.
type rp2PWM struct {
	s      pwmSlice
	ch     uint8
	reload uint32
}

func (w *rp2PWM) Configure(pin periph.Pin, reload uint32) error {
	if pin > maxPin {
		return halerr.ErrUnknownPin
	}
	if reload == 0 {
		return halerr.ErrInvalidPeriod
	}
	s := sliceFor(pin)
	if err := s.Configure(machine.PWMConfig{Period: uint64(timex.PeriodFromHz(pwmHz))}); err != nil {
		return err
	}
	ch, err := s.Channel(machine.Pin(pin))
	if err != nil {
		return err
	}
	w.s, w.ch, w.reload = s, ch, reload
	return nil
}

func (w *rp2PWM) SetCompare(v uint32) {
	if w.s == nil {
		return
	}
	w.s.Set(w.ch, uint32(uint64(mathx.Min(v, w.reload))*uint64(w.s.Top())/uint64(w.reload)))
}

func (w *rp2PWM) Start() {
	if w.s != nil {
		w.s.Enable(true)
	}
}
