//go:build riscv64

package boot

import (
	"github.com/bobuhiro11/rvstart/csr"
	"github.com/bobuhiro11/rvstart/mmio"
	"github.com/bobuhiro11/rvstart/timer"
)

// Hart is what _entry calls on real hardware, on the stack it set up
// for the hart. timervec is the address of the assembly trap entry.
func Hart(main func(), timervec uint64) {
	Start(csr.Hardware{}, mmio.Physical{}, Layout{
		Main:     FuncAddr(main),
		TimerVec: timervec,
		Scratch:  timer.HardwareArena(),
		Interval: timer.DefaultInterval,
	})
}
