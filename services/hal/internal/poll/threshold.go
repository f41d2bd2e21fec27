// Package poll holds the main-context loops that need no interrupts: a
// single-conversion ADC compared against a threshold, and a PWM duty ramp.
// Both may block; neither ever blocks inside a critical section.
package poll

import (
	"context"
	"time"

	"tinygo.org/x/drivers"

	"isrcell-go/services/hal/internal/critical"
	"isrcell-go/services/hal/internal/periph"
	"isrcell-go/services/hal/internal/toggle"
	"isrcell-go/x/timex"
)

var _ drivers.Sensor = (*Threshold)(nil)

// Threshold samples one ADC channel and drives an output bit high while the
// sample is strictly above Limit.
type Threshold struct {
	ex    *critical.Executor
	adc   periph.ADC
	out   toggle.Output
	limit uint16

	value   uint16
	samples uint32
}

func NewThreshold(ex *critical.Executor, adc periph.ADC, out toggle.Output, limit uint16) *Threshold {
	return &Threshold{ex: ex, adc: adc, out: out, limit: limit}
}

// Update runs one conversion when Voltage is requested. The end-of-conversion
// wait has no timeout: a stuck converter hangs the caller.
func (t *Threshold) Update(which drivers.Measurement) error {
	if which&drivers.Voltage == 0 {
		return nil
	}
	t.adc.StartConversion()
	for !t.adc.Done() {
	}
	t.value = t.adc.Data()
	t.samples++
	return nil
}

// Raw is the last converted value.
func (t *Threshold) Raw() uint16 { return t.value }

func (t *Threshold) Samples() uint32 { return t.samples }

func (t *Threshold) Above() bool { return t.value > t.limit }

// Apply writes the comparison result to the output bit.
func (t *Threshold) Apply() bool {
	on := t.Above()
	t.ex.Run(func(tok critical.Token) {
		t.out.Port.With(tok, func(g periph.GPIOPort) { g.SetOutput(t.out.Pin, on) })
	})
	return on
}

// Run samples, applies and waits every until ctx is done.
func (t *Threshold) Run(ctx context.Context, clk timex.Clock, every time.Duration) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := t.Update(drivers.Voltage); err != nil {
			return err
		}
		t.Apply()
		timex.Sleep(clk, every)
	}
}
