//go:build !windows
// +build !windows

package hrtime

import (
	"time"

	"github.com/samber/lo"
	"golang.org/x/sys/unix"
)

type unixMonotonicClock struct {
	startTs int64
}

func newSysMonotonicClock() *unixMonotonicClock {
	return &unixMonotonicClock{startTs: unixMonotonicNano()}
}

func unixMonotonicNano() int64 {
	ts := unix.Timespec{}
	lo.Must0(unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts))
	return ts.Nano()
}

func (c *unixMonotonicClock) Now() time.Duration {
	return time.Duration(unixMonotonicNano() - c.startTs)
}

func (c *unixMonotonicClock) Since(begin time.Duration) time.Duration {
	return c.Now() - begin
}

// Resolution of the CLOCK_MONOTONIC clock.
func Resolution() time.Duration {
	res := unix.Timespec{}
	if err := unix.ClockGetres(unix.CLOCK_MONOTONIC, &res); err != nil {
		return time.Microsecond
	}
	return time.Duration(res.Nano())
}
