// services/hal/programs.go
package hal

import (
	"context"

	"isrcell-go/services/hal/internal/cell"
	"isrcell-go/services/hal/internal/periph"
	"isrcell-go/services/hal/internal/poll"
	"isrcell-go/services/hal/internal/toggle"
	"isrcell-go/x/logx"
	"isrcell-go/x/timex"
)

// blink: LED toggles every BlinkPeriod from main context.
func (rt *Runtime) setupBlink() error {
	g := rt.p.MoveGPIO()
	if err := g.ConfigureOutput(periph.Pin(rt.cfg.LEDPin)); err != nil {
		return wrap("blink.led", err)
	}
	rt.populate(put(rt.gpio, g))

	led := rt.led()
	on := false
	rt.loop = func(ctx context.Context) error {
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			on = !on
			cell.Lock(rt.ex, led.Port, func(g periph.GPIOPort) { g.SetOutput(led.Pin, on) })
			timex.Sleep(rt.clock, rt.cfg.BlinkPeriod)
		}
	}
	return nil
}

// input: LED mirrors the button, polled every PollPeriod.
func (rt *Runtime) setupInput() error {
	g := rt.p.MoveGPIO()
	if err := g.ConfigureOutput(periph.Pin(rt.cfg.LEDPin)); err != nil {
		return wrap("input.led", err)
	}
	btn := periph.Pin(rt.cfg.ButtonPin)
	if err := g.ConfigureInput(btn, pull(rt.cfg.ButtonPull)); err != nil {
		return wrap("input.button", err)
	}
	rt.populate(put(rt.gpio, g))

	led := rt.led()
	rt.loop = func(ctx context.Context) error {
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			cell.Lock(rt.ex, led.Port, func(g periph.GPIOPort) { g.SetOutput(led.Pin, g.Input(btn)) })
			timex.Sleep(rt.clock, rt.cfg.PollPeriod)
		}
	}
	return nil
}

// edge-toggle: LED flips on every accepted rising edge of the button line.
func (rt *Runtime) setupEdgeToggle() error {
	g := rt.p.MoveGPIO()
	if err := g.ConfigureOutput(periph.Pin(rt.cfg.LEDPin)); err != nil {
		return wrap("edge.led", err)
	}
	btn := periph.Pin(rt.cfg.ButtonPin)
	if err := g.ConfigureInput(btn, pull(rt.cfg.ButtonPull)); err != nil {
		return wrap("edge.button", err)
	}
	e := rt.p.MoveEdge()
	if err := e.Watch(rt.cfg.ButtonLine, btn, periph.EdgeRising); err != nil {
		return wrap("edge.watch", err)
	}

	rt.populate(put(rt.gpio, g), put(rt.exti, e))

	rt.edge = toggle.NewEdge(rt.ex, rt.exti, toggle.EdgeConfig{
		Line:     rt.cfg.ButtonLine,
		Out:      rt.led(),
		Debounce: rt.cfg.Debounce,
		Clock:    rt.clock,
	})
	if err := rt.arm(rt.src.Edge, "edge-toggle", rt.edge.Handle, rt.gpio, rt.exti); err != nil {
		return err
	}
	rt.loop = rt.idle
	return nil
}

// timer-toggle: LED flips on every timer update event.
func (rt *Runtime) setupTimerToggle() error {
	g := rt.p.MoveGPIO()
	if err := g.ConfigureOutput(periph.Pin(rt.cfg.LEDPin)); err != nil {
		return wrap("timer.led", err)
	}
	t := rt.p.MoveTimer()
	if err := t.Configure(rt.cfg.TimerReload, rt.cfg.TimerPrescale); err != nil {
		return wrap("timer.configure", err)
	}
	t.EnableUpdateIRQ()
	t.Start()

	rt.populate(put(rt.gpio, g), put(rt.tim, t))

	rt.timer = toggle.NewPeriodic(rt.ex, rt.tim, toggle.PeriodicConfig{
		Out:    rt.led(),
		Unpend: rt.cfg.UnpendTimer,
		Ctrl:   rt.board.Controller(),
		Src:    rt.src.Timer,
	})
	if err := rt.arm(rt.src.Timer, "timer-toggle", rt.timer.Handle, rt.gpio, rt.tim); err != nil {
		return err
	}
	rt.loop = rt.idle
	return nil
}

// adc-threshold: LED on while the ADC sample is above ADCThreshold.
func (rt *Runtime) setupADCThreshold() error {
	g := rt.p.MoveGPIO()
	if err := g.ConfigureOutput(periph.Pin(rt.cfg.LEDPin)); err != nil {
		return wrap("adc.led", err)
	}
	a := rt.p.MoveADC()
	if err := a.Enable(periph.Pin(rt.cfg.ADCPin)); err != nil {
		return wrap("adc.enable", err)
	}
	rt.populate(put(rt.gpio, g))

	rt.thresh = poll.NewThreshold(rt.ex, a, rt.led(), rt.cfg.ADCThreshold)
	rt.log.Info("adc", logx.Hex("threshold", uint32(rt.cfg.ADCThreshold)))
	rt.loop = func(ctx context.Context) error {
		return rt.thresh.Run(ctx, rt.clock, rt.cfg.PollPeriod)
	}
	return nil
}

// pwm-ramp: PWM duty climbs by PWMStep and wraps at PWMReload.
func (rt *Runtime) setupPWMRamp() error {
	w := rt.p.MovePWM()
	if err := w.Configure(periph.Pin(rt.cfg.PWMPin), rt.cfg.PWMReload); err != nil {
		return wrap("pwm.configure", err)
	}
	w.Start()

	rt.ramp = poll.NewRamp(w, rt.cfg.PWMReload, rt.cfg.PWMStep)
	rt.log.Info("pwm", logx.Hex("reload", rt.cfg.PWMReload), logx.Uint("step", uint64(rt.cfg.PWMStep)))
	rt.loop = func(ctx context.Context) error {
		return rt.ramp.Run(ctx, rt.clock, rt.cfg.RampPeriod)
	}
	return nil
}
