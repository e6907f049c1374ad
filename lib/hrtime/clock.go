package hrtime

import "time"

// Clock is a monotonic clock. Now is the elapsed duration since the
// clock was created and never goes backwards.
type Clock interface {
	Now() time.Duration
	Since(begin time.Duration) time.Duration
}

var (
	// GoMonotonicClock reads the runtime monotonic clock.
	GoMonotonicClock Clock = newGoMonotonicClock()
	// SysMonotonicClock reads the OS monotonic counter directly,
	// CLOCK_MONOTONIC on unix and QPC on windows.
	SysMonotonicClock Clock = newSysMonotonicClock()
)

type goMonotonicClock struct {
	start time.Time
}

func newGoMonotonicClock() *goMonotonicClock {
	return &goMonotonicClock{start: time.Now()}
}

func (c *goMonotonicClock) Now() time.Duration {
	return time.Since(c.start)
}

func (c *goMonotonicClock) Since(begin time.Duration) time.Duration {
	return c.Now() - begin
}

// Lap is one named phase measured by a Stopwatch.
type Lap struct {
	Name    string
	Elapsed time.Duration
}

// Stopwatch splits a run into consecutive phases. It belongs to a
// single goroutine.
type Stopwatch struct {
	clock Clock
	begin time.Duration
	last  time.Duration
	laps  []Lap
}

func NewStopwatch(clock Clock) *Stopwatch {
	if clock == nil {
		clock = SysMonotonicClock
	}
	now := clock.Now()
	return &Stopwatch{
		clock: clock,
		begin: now,
		last:  now,
		laps:  make([]Lap, 0, 4),
	}
}

// Lap closes the current phase under name and starts the next one.
func (sw *Stopwatch) Lap(name string) time.Duration {
	now := sw.clock.Now()
	elapsed := now - sw.last
	sw.last = now
	sw.laps = append(sw.laps, Lap{Name: name, Elapsed: elapsed})
	return elapsed
}

func (sw *Stopwatch) Laps() []Lap {
	res := make([]Lap, len(sw.laps))
	copy(res, sw.laps)
	return res
}

// Total is the time from the start to the last lap.
func (sw *Stopwatch) Total() time.Duration {
	return sw.last - sw.begin
}
