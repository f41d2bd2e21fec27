package poll

import (
	"context"
	"testing"
	"time"

	"tinygo.org/x/drivers"

	"isrcell-go/services/hal/internal/cell"
	"isrcell-go/services/hal/internal/critical"
	"isrcell-go/services/hal/internal/periph"
	"isrcell-go/services/hal/internal/toggle"
	"isrcell-go/x/timex"
)

type fakePort struct{ out [32]bool }

func (p *fakePort) ConfigureOutput(periph.Pin) error             { return nil }
func (p *fakePort) ConfigureInput(periph.Pin, periph.Pull) error { return nil }
func (p *fakePort) SetOutput(pin periph.Pin, v bool)             { p.out[pin] = v }
func (p *fakePort) Output(pin periph.Pin) bool                   { return p.out[pin] }
func (p *fakePort) Input(periph.Pin) bool                        { return false }

// fakeADC reports done after busy polls of Done.
type fakeADC struct {
	value  uint16
	busy   int
	left   int
	starts int
	polls  int
}

func (a *fakeADC) Enable(periph.Pin) error { return nil }
func (a *fakeADC) StartConversion()        { a.starts++; a.left = a.busy }
func (a *fakeADC) Data() uint16            { return a.value }
func (a *fakeADC) Done() bool {
	a.polls++
	if a.left > 0 {
		a.left--
		return false
	}
	return true
}

type fakePWM struct{ duty []uint32 }

func (w *fakePWM) Configure(periph.Pin, uint32) error { return nil }
func (w *fakePWM) SetCompare(v uint32)                { w.duty = append(w.duty, v) }
func (w *fakePWM) Start()                             {}

const led periph.Pin = 25

func newOutput(ex *critical.Executor) (*fakePort, toggle.Output) {
	port := &fakePort{}
	c := cell.New[periph.GPIOPort]("gpio")
	ex.Run(func(tok critical.Token) { c.Store(tok, port) })
	return port, toggle.Output{Port: c, Pin: led}
}

func TestThresholdIsExclusive(t *testing.T) {
	cases := []struct {
		value uint16
		want  bool
	}{
		{0x300, true},
		{0x100, false},
		{0x200, false},
		{0x201, true},
	}
	for _, tc := range cases {
		ex := critical.New(critical.InterruptMask{})
		port, out := newOutput(ex)
		port.out[led] = !tc.want
		adc := &fakeADC{value: tc.value, busy: 3}
		th := NewThreshold(ex, adc, out, 0x200)

		if err := th.Update(drivers.Voltage); err != nil {
			t.Fatalf("Update: %v", err)
		}
		if got := th.Apply(); got != tc.want || port.out[led] != tc.want {
			t.Fatalf("value %#x: apply=%v pin=%v want %v", tc.value, got, port.out[led], tc.want)
		}
		if adc.polls != 4 {
			t.Fatalf("value %#x: polls = %d, want 4", tc.value, adc.polls)
		}
	}
}

func TestThresholdIgnoresOtherMeasurements(t *testing.T) {
	ex := critical.New(critical.InterruptMask{})
	_, out := newOutput(ex)
	adc := &fakeADC{value: 0x300}
	th := NewThreshold(ex, adc, out, 0x200)
	if err := th.Update(drivers.Temperature); err != nil {
		t.Fatal(err)
	}
	if adc.starts != 0 || th.Samples() != 0 {
		t.Fatalf("conversion started for a non-voltage request")
	}
}

func TestThresholdRunStopsOnCancel(t *testing.T) {
	ex := critical.New(critical.InterruptMask{})
	port, out := newOutput(ex)
	adc := &fakeADC{value: 0x100}
	th := NewThreshold(ex, adc, out, 0x200)

	ctx, cancel := context.WithCancel(context.Background())
	clk := timex.NewManual(time.Unix(0, 0))
	clk.OnSleep(func(time.Time) {
		switch th.Samples() {
		case 2:
			adc.value = 0x300
		case 4:
			cancel()
		}
	})

	if err := th.Run(ctx, clk, 10*time.Millisecond); err != context.Canceled {
		t.Fatalf("Run = %v", err)
	}
	if th.Samples() != 4 || !port.out[led] {
		t.Fatalf("samples=%d led=%v", th.Samples(), port.out[led])
	}
	if !clk.Now().Equal(time.Unix(0, 0).Add(40 * time.Millisecond)) {
		t.Fatalf("virtual time = %v", clk.Now())
	}
}

func TestRampWrapsAtReload(t *testing.T) {
	w := &fakePWM{}
	r := NewRamp(w, 0x8000, 256)

	for i := 0; i < 0x80; i++ {
		r.Step()
	}
	if last := w.duty[len(w.duty)-1]; last != 0x7F00 {
		t.Fatalf("duty after 128 steps = %#x, want 0x7f00", last)
	}
	if r.Next() != 0 {
		t.Fatalf("0x7f00 + 256 = %#x, want wrap to 0", r.Next())
	}
	if r.Step() != 0 {
		t.Fatal("wrapped duty not written")
	}
	if w.duty[0] != 0 || w.duty[1] != 256 {
		t.Fatalf("ramp start = %v", w.duty[:2])
	}
}

func TestRampRunStopsOnCancel(t *testing.T) {
	w := &fakePWM{}
	r := NewRamp(w, 0x8000, 256)

	ctx, cancel := context.WithCancel(context.Background())
	clk := timex.NewManual(time.Unix(0, 0))
	clk.OnSleep(func(time.Time) {
		if len(w.duty) == 3 {
			cancel()
		}
	})
	if err := r.Run(ctx, clk, time.Millisecond); err != context.Canceled {
		t.Fatalf("Run = %v", err)
	}
	if len(w.duty) != 3 || w.duty[2] != 512 {
		t.Fatalf("duty = %v", w.duty)
	}
}
