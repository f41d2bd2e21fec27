package timex

import (
	"testing"
	"time"
)

func TestManualSleepAdvancesAndRunsHook(t *testing.T) {
	start := time.Unix(0, 0)
	m := NewManual(start)
	var seen []time.Time
	m.OnSleep(func(now time.Time) { seen = append(seen, now) })

	Sleep(m, 10*time.Millisecond)
	Sleep(m, 5*time.Millisecond)

	if got := m.Now().Sub(start); got != 15*time.Millisecond {
		t.Fatalf("virtual time = %v, want 15ms", got)
	}
	if m.Sleeps() != 2 || len(seen) != 2 {
		t.Fatalf("sleeps=%d hook=%d, want 2/2", m.Sleeps(), len(seen))
	}
}

func TestManualSleepUntilPastDoesNotRewind(t *testing.T) {
	m := NewManual(time.Unix(100, 0))
	m.SleepUntil(time.Unix(50, 0))
	if !m.Now().Equal(time.Unix(100, 0)) {
		t.Fatalf("clock went backwards: %v", m.Now())
	}
}

func TestPeriodFromHz(t *testing.T) {
	if got := PeriodFromHz(1000); got != time.Millisecond {
		t.Fatalf("PeriodFromHz(1000) = %v", got)
	}
	if got := PeriodFromHz(0); got != time.Second {
		t.Fatalf("PeriodFromHz(0) = %v", got)
	}
}

func TestCounterPeriod(t *testing.T) {
	const hz = 16_000_000
	cases := []struct {
		reload, prescale uint32
		want             time.Duration
		ok               bool
	}{
		{15_999, 0, time.Millisecond, true},
		{1, 0, 125 * time.Nanosecond, true},
		{0, 0, 63 * time.Nanosecond, true},
		// 2^32 * 5 ticks: the product overflows 64 bits once scaled to ns.
		{0xFFFFFFFF, 4, 1_342_177_280 * time.Microsecond, true},
		{0xFFFFFFFF, 0x3FFFFFFF, 0, false},
		{0xFFFFFFFF, 0xFFFFFFFE, 0, false},
		{0xFFFFFFFF, 0xFFFFFFFF, 0, false},
	}
	for _, tc := range cases {
		got, ok := CounterPeriod(tc.reload, tc.prescale, hz)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("CounterPeriod(%#x, %#x) = %v, %v; want %v, %v", tc.reload, tc.prescale, got, ok, tc.want, tc.ok)
		}
	}
	if _, ok := CounterPeriod(1, 1, 0); ok {
		t.Fatal("zero clock accepted")
	}
}
