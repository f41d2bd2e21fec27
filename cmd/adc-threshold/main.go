// cmd/adc-threshold/main.go
package main

import (
	"isrcell-go/services/hal"
	"isrcell-go/types"
)

// Lights the LED while ADC0 reads above the threshold.
func main() { hal.Main(types.ProgramADCThreshold) }
