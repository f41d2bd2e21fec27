package periph

import (
	"time"

	"isrcell-go/types"
	"isrcell-go/x/timex"
)

// TimerBaseHz is the timer's counting clock ahead of the prescaler.
const TimerBaseHz = types.TimerBaseHz

// TimerPeriod is the time between update events for a reload/prescale pair:
// (reload+1)*(prescale+1) base ticks, rounded up to the nanosecond. ok is
// false when the period does not fit a time.Duration.
func TimerPeriod(reload, prescale uint32) (time.Duration, bool) {
	return timex.CounterPeriod(reload, prescale, TimerBaseHz)
}
