//go:build riscv64

package mmio

import (
	"sync/atomic"
	"unsafe"
)

// Physical is the bus of the running hart: addresses are used as they
// are, so it only makes sense with translation off.
//
// The uintptr to pointer conversions are intended. addr is a physical
// RAM or MMIO location outside the Go heap, so the garbage collector
// never moves or frees it.
type Physical struct{}

var _ Bus = Physical{}

func (Physical) Load64(addr uint64) uint64 {
	return atomic.LoadUint64((*uint64)(unsafe.Pointer(uintptr(addr))))
}

func (Physical) Store64(addr, val uint64) {
	atomic.StoreUint64((*uint64)(unsafe.Pointer(uintptr(addr))), val)
}
