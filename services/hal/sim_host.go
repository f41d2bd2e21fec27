// services/hal/sim_host.go
//go:build !rp2040

package hal

import (
	"context"
	"errors"
	"time"

	"isrcell-go/services/hal/internal/periph"
	"isrcell-go/services/hal/internal/platform"
	"isrcell-go/types"
	"isrcell-go/x/logx"
)

// SimOptions drives a program on the simulated board. External events are
// injected each time main context idles, so their timing is quantised to the
// program's sleep period.
type SimOptions struct {
	// Duration of simulated time to run for.
	Duration time.Duration
	// PressEvery presses the button at this interval. 0 never presses.
	PressEvery time.Duration
	// ADC samples are presented to the converter in turn, one per idle.
	ADC []uint16
	// ADCLatency is the number of Done polls a conversion takes.
	ADCLatency int
}

// Report summarises a simulated run.
type Report struct {
	Program types.Program `yaml:"program"`
	Elapsed time.Duration `yaml:"elapsed"`
	LED     bool          `yaml:"led"`

	Presses    uint32 `yaml:"presses"`
	Handled    uint32 `yaml:"handled"`
	Flips      uint32 `yaml:"flips"`
	Suppressed uint32 `yaml:"suppressed"`
	EdgeClears uint32 `yaml:"edge_clears"`

	TimerUpdates uint32 `yaml:"timer_updates"`
	TimerClears  uint32 `yaml:"timer_clears"`
	Unpends      uint32 `yaml:"unpends"`

	Sections uint32 `yaml:"sections"`
	Overlaps uint32 `yaml:"overlaps"`

	Conversions uint32 `yaml:"adc_conversions"`
	PWMWrites   uint32 `yaml:"pwm_writes"`
	PWMCompare  uint32 `yaml:"pwm_compare"`
}

// Simulate boots cfg.Program on a fresh simulated board with a manual clock
// and runs it for opt.Duration of virtual time.
func Simulate(cfg types.Config, opt SimOptions, log *logx.Logger) (Report, error) {
	b := platform.NewSimBoard(platform.SimConfig{ADCLatency: opt.ADCLatency})
	rt, err := Start(b, cfg, log)
	if err != nil {
		return Report{}, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		t0      = b.Clock().Now()
		next    = t0.Add(opt.PressEvery)
		presses uint32
		sample  int
	)
	if len(opt.ADC) > 0 {
		b.ADC.Set(opt.ADC[0])
	}
	b.OnIdle(func(now time.Time) {
		for opt.PressEvery > 0 && !now.Before(next) {
			b.GPIO.Press(periph.Pin(cfg.ButtonPin))
			presses++
			next = next.Add(opt.PressEvery)
		}
		if len(opt.ADC) > 0 {
			sample++
			b.ADC.Set(opt.ADC[sample%len(opt.ADC)])
		}
		if now.Sub(t0) >= opt.Duration {
			cancel()
		}
	})
	if err := rt.Loop(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return Report{}, err
	}

	src := rt.src
	r := Report{
		Program:      cfg.Program,
		Elapsed:      b.Clock().Now().Sub(t0),
		LED:          b.GPIO.Level(periph.Pin(cfg.LEDPin)),
		Presses:      presses,
		Handled:      rt.table.Stats(src.Edge) + rt.table.Stats(src.Timer),
		EdgeClears:   b.Edge.Clears(cfg.ButtonLine),
		TimerUpdates: b.Timer.Updates(),
		TimerClears:  b.Timer.Clears(),
		Unpends:      b.IRQ().Unpends(src.Timer),
		Sections:     b.IRQ().Sections(),
		Overlaps:     b.GPIO.Overlaps(),
		Conversions:  b.ADC.Conversions(),
		PWMWrites:    b.PWM.Writes(),
		PWMCompare:   b.PWM.Compare(),
	}
	if rt.edge != nil {
		r.Flips += rt.edge.Flips()
		r.Suppressed = rt.edge.Suppressed()
	}
	if rt.timer != nil {
		r.Flips += rt.timer.Flips()
	}
	log.Info("simulated", logx.Str("program", string(cfg.Program)), logx.Uint("ms", uint64(r.Elapsed/time.Millisecond)))
	return r, nil
}
