package service

import (
	"math/rand"
	"time"
)

// Trading session windows, evaluated as wall-clock hour/minute in the
// operator's local timezone. The US window crosses midnight.
var sessionWindows = map[string][]window{
	"US": {{start: 22*60 + 30, end: 5 * 60}},
	"HK": {
		{start: 9*60 + 30, end: 12 * 60},
		{start: 13 * 60, end: 16 * 60},
	},
}

type window struct {
	start int // minutes since midnight, inclusive
	end   int // minutes since midnight, inclusive; end < start means cross-midnight
}

func (w window) contains(minute int) bool {
	if w.end < w.start {
		return minute >= w.start || minute <= w.end
	}
	return minute >= w.start && minute <= w.end
}

// InSession reports whether the market is inside an active trading window
// at the given local time. Unknown markets are never in session.
func InSession(market string, now time.Time) bool {
	minute := now.Hour()*60 + now.Minute()
	for _, w := range sessionWindows[market] {
		if w.contains(minute) {
			return true
		}
	}
	return false
}

// PollDelay returns how long to sleep before the next poll and whether
// polling should happen at all this round. Inside a trading window the delay
// is randomized between min and max so many followers of the same feed do
// not poll in lockstep. Outside every window there is no defined off-session
// polling policy: ok is false and the caller applies its long pause.
func PollDelay(market string, now time.Time, min, max time.Duration) (time.Duration, bool) {
	if !InSession(market, now) {
		return 0, false
	}
	if max <= min {
		return min, true
	}
	return min + time.Duration(rand.Int63n(int64(max-min))), true
}
