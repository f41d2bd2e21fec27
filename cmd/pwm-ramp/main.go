// cmd/pwm-ramp/main.go
package main

import (
	"isrcell-go/services/hal"
	"isrcell-go/types"
)

// Ramps the PWM duty on GP16 in a sawtooth.
func main() { hal.Main(types.ProgramPWMRamp) }
