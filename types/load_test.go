//go:build !tinygo

package types

import (
	"errors"
	"strings"
	"testing"
	"time"

	"isrcell-go/errcode"
)

func TestLoadConfigOverDefaults(t *testing.T) {
	c, err := ParseConfig([]byte(`
program: timer-toggle
led_pin: 2
debounce: 15ms
unpend_timer: false
`))
	if err != nil {
		t.Fatal(err)
	}
	if c.Program != ProgramTimerToggle || c.LEDPin != 2 || c.Debounce != 15*time.Millisecond || c.UnpendTimer {
		t.Fatalf("loaded %+v", c)
	}
	// Untouched keys keep their defaults.
	if c.ButtonPin != 15 || c.TimerReload != 0x1FFFF || c.IdlePeriod != 100*time.Millisecond {
		t.Fatalf("defaults lost: %+v", c)
	}
}

func TestLoadConfigEmptyIsDefault(t *testing.T) {
	c, err := LoadConfig(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if c != DefaultConfig() {
		t.Fatalf("empty document = %+v", c)
	}
}

func TestLoadConfigRejects(t *testing.T) {
	for name, doc := range map[string]string{
		"unknown key":  "blink_rate: 3\n",
		"bad type":     "led_pin: lots\n",
		"invalid":      "program: morse\n",
		"zero step":    "pwm_step: 0\n",
		"timer period": "timer_reload: 0xFFFFFFFF\ntimer_prescale: 0xFFFFFFFF\n",
	} {
		if _, err := ParseConfig([]byte(doc)); !errors.Is(err, errcode.InvalidConfig) {
			t.Errorf("%s: err = %v", name, err)
		}
	}
}

func TestConfigYAMLRoundTrip(t *testing.T) {
	want := DefaultConfig()
	want.Program = ProgramPWMRamp
	want.Debounce = 5 * time.Millisecond
	b, err := want.YAML()
	if err != nil {
		t.Fatal(err)
	}
	got, err := ParseConfig(b)
	if err != nil {
		t.Fatalf("%v\n%s", err, b)
	}
	if got != want {
		t.Fatalf("round trip:\n%s\ngot %+v", b, got)
	}
}
