// Package periph defines the register-file interfaces the firmware is allowed
// to drive, the ownership bundle handed out once at boot, and the board
// abstraction a platform implements.
package periph

import (
	"isrcell-go/services/hal/internal/critical"
	"isrcell-go/x/timex"
)

// Pin is a GPIO number in the board's native scheme (GP0..GP29 on the Pico).
type Pin uint8

type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

// Edge selection for the external-interrupt unit.
type Edge uint8

const (
	EdgeNone Edge = iota
	EdgeRising
	EdgeFalling
	EdgeBoth
)

// Source identifies an interrupt line at the controller.
type Source uint8

// MaxSources bounds the dispatch table.
const MaxSources = 32

// ---- Register files ----

type GPIOPort interface {
	ConfigureOutput(pin Pin) error
	ConfigureInput(pin Pin, pull Pull) error
	SetOutput(pin Pin, level bool)
	Output(pin Pin) bool
	Input(pin Pin) bool
}

// EdgeUnit is the external-interrupt unit. A line is bound to one pin.
type EdgeUnit interface {
	Watch(line uint8, pin Pin, edge Edge) error
	Pending(line uint8) bool
	ClearPending(line uint8)
}

// Timer is a free-running counter with an update (overflow) event.
type Timer interface {
	Configure(reload, prescale uint32) error
	EnableUpdateIRQ()
	Start()
	UpdatePending() bool
	ClearUpdate()
}

// ADC is a single-conversion converter on one analog pin.
type ADC interface {
	Enable(pin Pin) error
	StartConversion()
	Done() bool
	Data() uint16
}

// PWM is one compare channel on a free-running counter.
type PWM interface {
	Configure(pin Pin, reload uint32) error
	SetCompare(v uint32)
	Start()
}

// Controller is the interrupt controller. MaskAll/Restore act on the global
// mask; the rest on individual sources.
type Controller interface {
	critical.Mask
	Unmask(src Source)
	Mask(src Source)
	Pending(src Source) bool
	ClearPending(src Source)
}

// Sources names the controller lines a board routes its peripherals to.
type Sources struct {
	Edge  Source
	Timer Source
}

// Board is what a platform provides.
type Board interface {
	// Take hands out the peripheral bundle. Only the first call succeeds.
	Take() (*Peripherals, error)
	Controller() Controller
	Sources() Sources
	Clock() timex.Clock
	// Route installs the function the interrupt vectors call. Must be set
	// before any source is unmasked.
	Route(invoke func(src Source))
}
