package types

import (
	"time"

	"golang.org/x/exp/slices"

	"isrcell-go/errcode"
	"isrcell-go/x/timex"
)

// Firmware configuration. Firmware builds compile it in; host builds can
// also read it from YAML (see LoadConfig).

type Program string

const (
	ProgramBlink        Program = "blink"
	ProgramInput        Program = "input"
	ProgramEdgeToggle   Program = "edge-toggle"
	ProgramTimerToggle  Program = "timer-toggle"
	ProgramADCThreshold Program = "adc-threshold"
	ProgramPWMRamp      Program = "pwm-ramp"
)

// Programs lists every known program in a stable order.
var Programs = []Program{
	ProgramBlink,
	ProgramInput,
	ProgramEdgeToggle,
	ProgramTimerToggle,
	ProgramADCThreshold,
	ProgramPWMRamp,
}

type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

type Config struct {
	Program Program `yaml:"program"`

	// Pins (board GPIO numbers).
	LEDPin     uint8 `yaml:"led_pin"`
	ButtonPin  uint8 `yaml:"button_pin"`
	ButtonLine uint8 `yaml:"button_line"` // external-interrupt line watching ButtonPin
	ButtonPull Pull  `yaml:"button_pull"`
	ADCPin     uint8 `yaml:"adc_pin"`
	PWMPin     uint8 `yaml:"pwm_pin"`

	// ADC: LED on iff sample > ADCThreshold.
	ADCThreshold uint16 `yaml:"adc_threshold"`

	// PWM: compare advances by PWMStep modulo PWMReload each iteration.
	PWMReload uint32 `yaml:"pwm_reload"`
	PWMStep   uint32 `yaml:"pwm_step"`

	// Timer: update event every (TimerReload+1)*(TimerPrescale+1) base ticks.
	TimerReload   uint32 `yaml:"timer_reload"`
	TimerPrescale uint32 `yaml:"timer_prescale"`
	// UnpendTimer clears the controller-level pending bit on handler entry.
	UnpendTimer bool `yaml:"unpend_timer"`

	// Debounce is the minimum spacing between accepted edges. 0 accepts all.
	Debounce time.Duration `yaml:"debounce"`

	BlinkPeriod time.Duration `yaml:"blink_period"`
	PollPeriod  time.Duration `yaml:"poll_period"`
	RampPeriod  time.Duration `yaml:"ramp_period"`
	IdlePeriod  time.Duration `yaml:"idle_period"`
}

// DefaultConfig is the Pico wiring: onboard LED on GP25, a pulled-down button
// on GP15, the potentiometer on ADC0 (GP26), and the PWM output on GP16.
func DefaultConfig() Config {
	return Config{
		Program:       ProgramEdgeToggle,
		LEDPin:        25,
		ButtonPin:     15,
		ButtonLine:    15,
		ButtonPull:    PullDown,
		ADCPin:        26,
		PWMPin:        16,
		ADCThreshold:  0x200,
		PWMReload:     0x8000,
		PWMStep:       256,
		TimerReload:   0x1FFFF,
		TimerPrescale: 8,
		UnpendTimer:   true,
		Debounce:      0,
		BlinkPeriod:   500 * time.Millisecond,
		PollPeriod:    10 * time.Millisecond,
		RampPeriod:    10 * time.Millisecond,
		IdlePeriod:    100 * time.Millisecond,
	}
}

// TimerBaseHz is the timer's counting clock ahead of the prescaler.
const TimerBaseHz = 16_000_000

func invalid(msg string) error {
	return &errcode.E{C: errcode.InvalidConfig, Op: "config", Msg: msg}
}

// Validate reports the first field that cannot be used.
func (c Config) Validate() error {
	switch {
	case !slices.Contains(Programs, c.Program):
		return invalid("unknown program " + string(c.Program))
	case c.ButtonPull > PullDown:
		return invalid("button pull")
	case c.PWMReload == 0:
		return invalid("pwm reload is zero")
	case c.PWMStep == 0 || c.PWMStep >= c.PWMReload:
		return invalid("pwm step out of range")
	case c.TimerReload == 0:
		return invalid("timer reload is zero")
	case !c.timerPeriodOK():
		return invalid("timer period out of range")
	case c.Debounce < 0:
		return invalid("negative debounce")
	case c.BlinkPeriod <= 0, c.PollPeriod <= 0, c.RampPeriod <= 0, c.IdlePeriod <= 0:
		return invalid("non-positive period")
	}
	return nil
}

func (c Config) timerPeriodOK() bool {
	_, ok := timex.CounterPeriod(c.TimerReload, c.TimerPrescale, TimerBaseHz)
	return ok
}
