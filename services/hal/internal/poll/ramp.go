package poll

import (
	"context"
	"time"

	"isrcell-go/services/hal/internal/periph"
	"isrcell-go/x/ramp"
	"isrcell-go/x/timex"
)

// Ramp advances a PWM compare value by a fixed step each iteration, wrapping
// to zero at the reload value.
type Ramp struct {
	pwm periph.PWM
	saw ramp.Sawtooth
}

func NewRamp(pwm periph.PWM, reload, step uint32) *Ramp {
	return &Ramp{pwm: pwm, saw: ramp.Sawtooth{Period: reload, Step: step}}
}

// Step writes the current duty and returns it.
func (r *Ramp) Step() uint32 { return r.saw.Advance(r.pwm.SetCompare) }

// Next is the duty the following Step will write.
func (r *Ramp) Next() uint32 { return r.saw.Level() }

// Run steps every interval until ctx is done.
func (r *Ramp) Run(ctx context.Context, clk timex.Clock, every time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.saw.Run(every, func(d time.Duration) bool {
		timex.Sleep(clk, d)
		return ctx.Err() == nil
	}, r.pwm.SetCompare)
	return ctx.Err()
}
