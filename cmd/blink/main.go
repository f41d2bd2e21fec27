// cmd/blink/main.go
package main

import (
	"isrcell-go/services/hal"
	"isrcell-go/types"
)

// Blinks the LED from main context.
func main() { hal.Main(types.ProgramBlink) }
