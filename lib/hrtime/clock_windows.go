//go:build windows
// +build windows

package hrtime

// References:
// https://github.com/azul3d-legacy/clock
// https://github1s.com/loov/hrtime
// https://learn.microsoft.com/en-us/windows/win32/sysinfo/acquiring-high-resolution-time-stamps

import (
	"errors"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	kernel32 = windows.NewLazyDLL("kernel32.dll")
	procQPF  = kernel32.NewProc("QueryPerformanceFrequency")
	procQPC  = kernel32.NewProc("QueryPerformanceCounter")
)

// https://learn.microsoft.com/en-us/windows/win32/api/profileapi/nf-profileapi-queryperformancefrequency
func getFrequency() int64 {
	var freq int64
	r1, _, err := procQPF.Call(uintptr(unsafe.Pointer(&freq)))
	if err != nil && !errors.Is(err, windows.SEVERITY_SUCCESS) || r1 != 1 {
		panic(err)
	}
	return freq
}

// https://learn.microsoft.com/en-us/windows/win32/api/profileapi/nf-profileapi-queryperformancecounter
func getCounter() int64 {
	var counter int64
	r1, _, err := procQPC.Call(uintptr(unsafe.Pointer(&counter)))
	if err != nil && !errors.Is(err, windows.SEVERITY_SUCCESS) || r1 != 1 {
		panic(err)
	}
	return counter
}

type qpcMonotonicClock struct {
	freq    int64
	counter int64
}

func newSysMonotonicClock() *qpcMonotonicClock {
	return &qpcMonotonicClock{freq: getFrequency(), counter: getCounter()}
}

func (c *qpcMonotonicClock) Now() time.Duration {
	return time.Duration(getCounter()-c.counter) * time.Second / time.Duration(c.freq)
}

func (c *qpcMonotonicClock) Since(begin time.Duration) time.Duration {
	return c.Now() - begin
}

// Resolution of the performance counter.
func Resolution() time.Duration {
	return time.Second / time.Duration(getFrequency())
}
