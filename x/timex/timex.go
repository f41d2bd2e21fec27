package timex

import (
	"math"
	"math/bits"
	"sync"
	"time"
)

// Clock is the time source used by delay loops. Firmware code never spins on a
// loop count; it asks the clock to wait until an instant.
type Clock interface {
	Now() time.Time
	SleepUntil(t time.Time)
}

// Sleep waits d on c.
func Sleep(c Clock, d time.Duration) {
	c.SleepUntil(c.Now().Add(d))
}

// PeriodFromHz returns a nanosecond period for a requested frequency.
// freqHz==0 is coerced to 1 to avoid division by zero.
func PeriodFromHz(freqHz uint32) time.Duration {
	if freqHz == 0 {
		freqHz = 1
	}
	return time.Duration(1_000_000_000 / uint64(freqHz))
}

// CounterPeriod is the time a counter clocked at hz takes to run
// (reload+1)*(prescale+1) ticks, rounded up to the nanosecond. ok is false
// when the result does not fit a time.Duration.
func CounterPeriod(reload, prescale uint32, hz uint64) (d time.Duration, ok bool) {
	if hz == 0 {
		return 0, false
	}
	thi, ticks := bits.Mul64(uint64(reload)+1, uint64(prescale)+1)
	if thi != 0 {
		return 0, false
	}
	hi, lo := bits.Mul64(ticks, uint64(time.Second))
	if hi >= hz {
		return 0, false
	}
	q, r := bits.Div64(hi, lo, hz)
	if r != 0 {
		q++
	}
	if q == 0 || q > math.MaxInt64 {
		return 0, false
	}
	return time.Duration(q), true
}

// System is the runtime clock (time.Now / time.Sleep; the TinyGo runtime maps
// these onto the hardware timer).
type System struct{}

func (System) Now() time.Time { return time.Now() }

func (System) SleepUntil(t time.Time) {
	if d := time.Until(t); d > 0 {
		time.Sleep(d)
	}
}

// Manual is a deterministic clock for tests. SleepUntil jumps virtual time
// forward and then runs the OnSleep hook, which is where a test injects the
// hardware events that would have happened while main context was idle.
type Manual struct {
	mu      sync.Mutex
	now     time.Time
	sleeps  int
	onSleep func(now time.Time)
}

func NewManual(start time.Time) *Manual { return &Manual{now: start} }

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}

func (m *Manual) SleepUntil(t time.Time) {
	m.mu.Lock()
	if t.After(m.now) {
		m.now = t
	}
	m.sleeps++
	hook, now := m.onSleep, m.now
	m.mu.Unlock()
	if hook != nil {
		hook(now)
	}
}

// OnSleep installs fn to run after every SleepUntil.
func (m *Manual) OnSleep(fn func(now time.Time)) {
	m.mu.Lock()
	m.onSleep = fn
	m.mu.Unlock()
}

// Sleeps reports how many times SleepUntil was called.
func (m *Manual) Sleeps() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sleeps
}
