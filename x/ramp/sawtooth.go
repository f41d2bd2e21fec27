package ramp

import (
	"time"

	"isrcell-go/x/mathx"
)

// Step sets the next duty value in [0..period).
type Step func(level uint32)

// Tick waits for d and reports whether to continue (false => cancelled).
type Tick func(d time.Duration) bool

// Sawtooth is a caller-driven duty ramp: start, start+step, ... wrapping to
// zero modulo period.
type Sawtooth struct {
	Period uint32
	Step   uint32
	level  uint32
}

// Level returns the value the next Advance will emit.
func (s *Sawtooth) Level() uint32 { return s.level }

// Reset sets the next emitted level (clamped into [0..period)).
func (s *Sawtooth) Reset(level uint32) {
	if s.Period == 0 {
		s.level = 0
		return
	}
	s.level = mathx.Min(level, s.Period-1)
}

// Advance emits the current level and moves to the next one.
func (s *Sawtooth) Advance(set Step) uint32 {
	cur := s.level
	set(cur)
	s.level = mathx.WrapAdd(cur, s.Step, s.Period)
	return cur
}

// Run emits a level, waits every, and repeats until tick reports cancellation.
// Call it from the main loop; it never touches interrupt state.
func (s *Sawtooth) Run(every time.Duration, tick Tick, set Step) {
	for {
		s.Advance(set)
		if !tick(every) {
			return
		}
	}
}
