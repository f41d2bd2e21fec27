// cmd/input/main.go
package main

import (
	"isrcell-go/services/hal"
	"isrcell-go/types"
)

// Mirrors the button onto the LED by polling.
func main() { hal.Main(types.ProgramInput) }
