// cmd/isrsim/serial.go
//go:build !rp2040

package main

import (
	"fmt"
	"io"

	"github.com/tarm/serial"
)

// openSerial mirrors the firmware console onto a host serial device, so the
// log looks the same as a board's UART0.
func openSerial(dev string, baud int) (io.WriteCloser, error) {
	p, err := serial.OpenPort(&serial.Config{Name: dev, Baud: baud})
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", dev, err)
	}
	return p, nil
}
