// services/hal/internal/halerr/errors.go
package halerr

import "errors"

var (
	// Build/config
	ErrUnknownPin    = errors.New("unknown_pin")
	ErrInvalidPeriod = errors.New("invalid_period")

	// Simulation only: a handler returned without clearing its source.
	ErrLivelock = errors.New("livelock")

	// Generic / pass-through
	ErrUnsupported = errors.New("unsupported")
)
