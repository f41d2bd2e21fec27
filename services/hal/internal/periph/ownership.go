package periph

import "isrcell-go/errcode"

// Peripherals is the unique bundle of ownership handles. Each handle can be
// moved out exactly once; a second move halts, so a handle never lives in two
// places.
type Peripherals struct {
	gpio  GPIOPort
	edge  EdgeUnit
	timer Timer
	adc   ADC
	pwm   PWM

	moved uint8
}

const (
	movedGPIO uint8 = 1 << iota
	movedEdge
	movedTimer
	movedADC
	movedPWM
)

// Bundle is the set of register files a platform exposes. A nil field means
// the board does not have that peripheral.
type Bundle struct {
	GPIO  GPIOPort
	Edge  EdgeUnit
	Timer Timer
	ADC   ADC
	PWM   PWM
}

func (p *Peripherals) take(bit uint8, present bool, what string) {
	if p.moved&bit != 0 {
		panic(&errcode.E{C: errcode.HandleMoved, Op: "periph.Move", Msg: what})
	}
	if !present {
		panic(&errcode.E{C: errcode.Unsupported, Op: "periph.Move", Msg: what})
	}
	p.moved |= bit
}

func (p *Peripherals) MoveGPIO() GPIOPort {
	p.take(movedGPIO, p.gpio != nil, "gpio")
	g := p.gpio
	p.gpio = nil
	return g
}

func (p *Peripherals) MoveEdge() EdgeUnit {
	p.take(movedEdge, p.edge != nil, "edge")
	e := p.edge
	p.edge = nil
	return e
}

func (p *Peripherals) MoveTimer() Timer {
	p.take(movedTimer, p.timer != nil, "timer")
	t := p.timer
	p.timer = nil
	return t
}

func (p *Peripherals) MoveADC() ADC {
	p.take(movedADC, p.adc != nil, "adc")
	a := p.adc
	p.adc = nil
	return a
}

func (p *Peripherals) MovePWM() PWM {
	p.take(movedPWM, p.pwm != nil, "pwm")
	w := p.pwm
	p.pwm = nil
	return w
}

// Once enforces the take-exactly-once rule for a board. The zero value is
// ready to use.
type Once struct {
	taken bool
}

// Take builds the bundle on the first call and fails on every later one.
func (o *Once) Take(build func() Bundle) (*Peripherals, error) {
	if o.taken {
		return nil, &errcode.E{C: errcode.PeripheralsTaken, Op: "periph.Take"}
	}
	o.taken = true
	b := build()
	return &Peripherals{gpio: b.GPIO, edge: b.Edge, timer: b.Timer, adc: b.ADC, pwm: b.PWM}, nil
}

// Taken reports whether the bundle has been handed out.
func (o *Once) Taken() bool { return o.taken }
