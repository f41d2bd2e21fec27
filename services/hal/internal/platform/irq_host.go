// services/hal/internal/platform/irq_host.go
//go:build !rp2040

package platform

import (
	"math/bits"

	"isrcell-go/services/hal/internal/critical"
	"isrcell-go/services/hal/internal/halerr"
	"isrcell-go/services/hal/internal/periph"
)

// livelockLimit bounds back-to-back re-entries of a source whose handler
// keeps returning without clearing it.
const livelockLimit = 1 << 12

// SimController models a single-core interrupt controller: one global enable
// bit plus per-source enable and pending bits. Raising an unmasked source
// with interrupts enabled runs its handler synchronously, preempting the
// caller the way hardware preempts main context. Everything runs on one
// goroutine.
type SimController struct {
	enabled  bool
	unmasked uint32
	pending  uint32
	active   bool

	invoke   func(periph.Source)
	asserted [periph.MaxSources]func() bool

	unpends  [periph.MaxSources]uint32
	entries  [periph.MaxSources]uint32
	masks    uint32
	restores uint32
}

func newSimController() *SimController { return &SimController{enabled: true} }

func bit(src periph.Source) uint32 { return 1 << (uint32(src) % 32) }

func (c *SimController) MaskAll() critical.State {
	c.masks++
	prev := c.enabled
	c.enabled = false
	if prev {
		return 1
	}
	return 0
}

func (c *SimController) Restore(s critical.State) {
	c.restores++
	c.enabled = s == 1
	c.deliver()
}

func (c *SimController) Unmask(src periph.Source) {
	c.unmasked |= bit(src)
	c.deliver()
}

func (c *SimController) Mask(src periph.Source)         { c.unmasked &^= bit(src) }
func (c *SimController) Pending(src periph.Source) bool { return c.pending&bit(src) != 0 }

func (c *SimController) ClearPending(src periph.Source) {
	c.pending &^= bit(src)
	c.unpends[src%periph.MaxSources]++
}

// Raise pends src as its peripheral would and delivers it if possible.
func (c *SimController) Raise(src periph.Source) {
	c.pending |= bit(src)
	c.deliver()
}

// Enabled reports the global interrupt enable bit.
func (c *SimController) Enabled() bool { return c.enabled }

// Unmasked reports whether src is enabled at the controller.
func (c *SimController) Unmasked(src periph.Source) bool { return c.unmasked&bit(src) != 0 }

// Entries counts handler entries for src.
func (c *SimController) Entries(src periph.Source) uint32 { return c.entries[src%periph.MaxSources] }

// Unpends counts explicit ClearPending calls for src.
func (c *SimController) Unpends(src periph.Source) uint32 { return c.unpends[src%periph.MaxSources] }

// Sections counts MaskAll calls, i.e. critical sections entered.
func (c *SimController) Sections() uint32 { return c.masks }

func (c *SimController) route(src periph.Source, asserted func() bool) {
	c.asserted[src%periph.MaxSources] = asserted
}

// deliver runs pending, unmasked sources lowest number first. A handler is
// never preempted by another source; anything raised meanwhile waits until
// it returns. A source whose peripheral still asserts after its handler
// returns pends again.
func (c *SimController) deliver() {
	if c.active || c.invoke == nil {
		return
	}
	c.active = true
	defer func() { c.active = false }()

	// refires counts back-to-back re-entries of last.
	var (
		last    periph.Source
		refires int
	)
	for c.enabled {
		ready := c.pending & c.unmasked
		if ready == 0 {
			return
		}
		src := periph.Source(bits.TrailingZeros32(ready))
		if src != last {
			last, refires = src, 0
		}
		c.pending &^= bit(src)
		c.entries[src]++
		c.invoke(src)
		if f := c.asserted[src]; f != nil && f() {
			refires++
			if refires > livelockLimit {
				panic(halerr.ErrLivelock)
			}
			c.pending |= bit(src)
		} else {
			refires = 0
		}
	}
}
