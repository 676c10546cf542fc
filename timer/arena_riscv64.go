//go:build riscv64

package timer

import (
	"unsafe"

	"github.com/bobuhiro11/rvstart/mmio"
	"github.com/bobuhiro11/rvstart/param"
)

var scratch [param.NCPU][Words]uint64

// HardwareArena is the arena in the kernel image, reached through the
// physical bus.
func HardwareArena() *Arena {
	return NewArena(mmio.Physical{}, uint64(uintptr(unsafe.Pointer(&scratch))))
}
