package workload

import (
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/cpu"
)

const cacheLinePadSize = unsafe.Sizeof(cpu.CacheLinePad{})

// monotonicNonZeroID only increases. It restarts from 1 on overflow.
// The value occupies a whole cache line to avoid false sharing between
// generators used by concurrent bench tasks.
type monotonicNonZeroID struct {
	_   [cacheLinePadSize - unsafe.Sizeof(*new(uint64))]byte
	val uint64
	_   [cacheLinePadSize - unsafe.Sizeof(*new(uint64))]byte
}

func (id *monotonicNonZeroID) next() uint64 {
	var v uint64
	if v = atomic.AddUint64(&id.val, 1); v == 0 {
		v = atomic.AddUint64(&id.val, 1)
	}
	return v
}

// Gen generates the next number of a stream.
type Gen func() uint64

func MonotonicNonZeroID() Gen {
	src := &monotonicNonZeroID{val: 0}
	return src.next
}
