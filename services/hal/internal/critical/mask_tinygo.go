//go:build tinygo

package critical

import "runtime/interrupt"

// InterruptMask masks interrupts on the running core via the TinyGo runtime
// (PRIMASK on Cortex-M).
type InterruptMask struct{}

func (InterruptMask) MaskAll() State  { return State(interrupt.Disable()) }
func (InterruptMask) Restore(s State) { interrupt.Restore(interrupt.State(s)) }
