// services/hal/internal/platform/irq_rp2xxx.go
//go:build rp2040

package platform

import (
	"device/rp"
	"runtime/interrupt"

	"isrcell-go/services/hal/internal/critical"
	"isrcell-go/services/hal/internal/periph"
)

// Controller lines used on the RP2040. TIMER_IRQ_0 belongs to the runtime's
// sleep alarm, so the periodic toggle runs on alarm 1.
const (
	edgeSource  = periph.Source(rp.IRQ_IO_IRQ_BANK0)
	timerSource = periph.Source(rp.IRQ_TIMER_IRQ_1)
)

// vector is installed by Board.Route before any source is unmasked.
var vector func(periph.Source)

func invoke(src periph.Source) {
	if vector != nil {
		vector(src)
	}
}

// interrupt.New needs a constant IRQ and a plain function.
func timerISR(interrupt.Interrupt) { invoke(timerSource) }

func registerTimerVector() {
	irq := interrupt.New(rp.IRQ_TIMER_IRQ_1, timerISR)
	irq.SetPriority(0xc0)
	// Stays masked in the NVIC until dispatch arms it.
	rp.PPB.NVIC_ICER.Set(1 << timerSource)
}

// nvic drives the Cortex-M0+ NVIC of the executing core. The global mask is
// PRIMASK through the TinyGo runtime.
type nvic struct {
	critical.InterruptMask
}

func (nvic) Unmask(src periph.Source) {
	mask := uint32(1) << src
	// Clear pending before enable
	// (if the source is actually asserted, it will immediately re-pend)
	rp.PPB.NVIC_ICPR.Set(mask)
	rp.PPB.NVIC_ISER.Set(mask)
}

func (nvic) Mask(src periph.Source)         { rp.PPB.NVIC_ICER.Set(uint32(1) << src) }
func (nvic) Pending(src periph.Source) bool { return rp.PPB.NVIC_ISPR.Get()&(uint32(1)<<src) != 0 }
func (nvic) ClearPending(src periph.Source) { rp.PPB.NVIC_ICPR.Set(uint32(1) << src) }
