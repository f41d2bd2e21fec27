// cmd/edge-toggle/main.go
package main

import (
	"isrcell-go/services/hal"
	"isrcell-go/types"
)

// Flips the LED on each rising edge of the button.
func main() { hal.Main(types.ProgramEdgeToggle) }
