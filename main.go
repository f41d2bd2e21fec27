package main

import (
	"isrcell-go/services/hal"
	"isrcell-go/types"
)

func main() {
	hal.Main(types.ProgramEdgeToggle)
}
