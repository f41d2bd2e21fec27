//go:build !rp2040

package hal

import (
	"errors"
	"testing"
	"time"

	"isrcell-go/errcode"
	"isrcell-go/types"
)

func TestSimulateEdgeToggle(t *testing.T) {
	r, err := Simulate(config(types.ProgramEdgeToggle), SimOptions{
		Duration:   time.Second,
		PressEvery: 100 * time.Millisecond,
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if r.Presses != 10 || r.Flips != 10 || r.Handled != 10 || r.EdgeClears != 10 {
		t.Fatalf("report %+v", r)
	}
	if r.LED || r.Overlaps != 0 || r.Elapsed != time.Second {
		t.Fatalf("report %+v", r)
	}
}

func TestSimulateTimerToggle(t *testing.T) {
	r, err := Simulate(config(types.ProgramTimerToggle), SimOptions{Duration: time.Second}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if r.TimerUpdates != 13 || r.TimerClears != 13 || r.Flips != 13 || r.Unpends != 13 {
		t.Fatalf("report %+v", r)
	}
	if !r.LED {
		t.Fatal("13 flips should leave the LED on")
	}
}

func TestSimulateADCThreshold(t *testing.T) {
	r, err := Simulate(config(types.ProgramADCThreshold), SimOptions{
		Duration:   40 * time.Millisecond,
		ADC:        []uint16{0x300, 0x100},
		ADCLatency: 3,
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if r.Conversions != 4 || r.LED {
		t.Fatalf("report %+v", r)
	}
}

func TestSimulateRejectsInvalidConfig(t *testing.T) {
	cfg := config(types.ProgramPWMRamp)
	cfg.PWMStep = cfg.PWMReload
	if _, err := Simulate(cfg, SimOptions{Duration: time.Second}, nil); !errors.Is(err, errcode.InvalidConfig) {
		t.Fatalf("err = %v", err)
	}
}
