// cmd/timer-toggle/main.go
package main

import (
	"isrcell-go/services/hal"
	"isrcell-go/types"
)

// Flips the LED on each timer update (about 73.7 ms).
func main() { hal.Main(types.ProgramTimerToggle) }
