package types

import (
	"errors"
	"testing"
	"time"

	"isrcell-go/errcode"
)

func TestDefaultConfigIsValid(t *testing.T) {
	c := DefaultConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if c.ADCThreshold != 0x200 || c.PWMReload != 0x8000 || c.PWMStep != 256 {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.Debounce != 0 {
		t.Fatal("debounce must default to 0")
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"program":    func(c *Config) { c.Program = "morse" },
		"pull":       func(c *Config) { c.ButtonPull = 7 },
		"reload":     func(c *Config) { c.PWMReload = 0 },
		"step":       func(c *Config) { c.PWMStep = c.PWMReload },
		"timer":      func(c *Config) { c.TimerReload = 0 },
		"timer max":  func(c *Config) { c.TimerReload, c.TimerPrescale = 0xFFFFFFFF, 0xFFFFFFFF },
		"timer long": func(c *Config) { c.TimerReload, c.TimerPrescale = 0xFFFFFFFF, 0x3FFFFFFF },
		"debounce":   func(c *Config) { c.Debounce = -time.Millisecond },
		"period":     func(c *Config) { c.IdlePeriod = 0 },
	}
	for name, mut := range cases {
		c := DefaultConfig()
		mut(&c)
		if err := c.Validate(); !errors.Is(err, errcode.InvalidConfig) {
			t.Fatalf("%s: Validate = %v, want invalid_config", name, err)
		}
	}
}

func TestEveryProgramValidates(t *testing.T) {
	for _, p := range Programs {
		c := DefaultConfig()
		c.Program = p
		if err := c.Validate(); err != nil {
			t.Fatalf("%s: %v", p, err)
		}
	}
}

func TestValidateAcceptsLongTimerPeriod(t *testing.T) {
	c := DefaultConfig()
	c.TimerReload, c.TimerPrescale = 0xFFFFFFFF, 4
	if err := c.Validate(); err != nil {
		t.Fatalf("22 minute period rejected: %v", err)
	}
}
