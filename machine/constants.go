package machine

import (
	"github.com/bobuhiro11/rvstart/param"
	"github.com/bobuhiro11/rvstart/riscv"
	"github.com/bobuhiro11/rvstart/timer"
)

// InitialRegState GuestPhysAddr                      kernel image [+ offset]
//
//	                0x02000000    +------------------+
//	                              |   CLINT          |
//	                0x02010000    +------------------+
//	                              |                  |
//	PC -->          0x80000000    +------------------+ _entry [+ 0]
//	                              |   entry.S        |
//	mtvec -->       0x80000100    +------------------+ timervec
//	                              |   kernelvec.S    |
//	mepc -->        0x80001000    +------------------+ main
//	                              |   text, data     |
//	                0x80010000    +------------------+ stack0
//	SP (hart h) --> +(h+1)*4096   |   NCPU stacks    |
//	                0x80018000    +------------------+ timer_scratch
//	mscratch -->    +h*40         |   NCPU * 5 words |
//	                              +------------------+
//	                              |   free RAM       |
//	                KERNBASE+mem  +------------------+
const (
	entryAddr    = riscv.KERNBASE
	timerVecAddr = riscv.KERNBASE + 0x100
	mainAddr     = riscv.KERNBASE + 0x1000
	stack0Addr   = riscv.KERNBASE + 0x1_0000
	scratchAddr  = stack0Addr + param.NCPU*param.KStackSize

	// MinMemSize is enough RAM for the image above.
	MinMemSize = scratchAddr + param.NCPU*timer.Size - riscv.KERNBASE

	// DefaultMemSize is a megabyte: the boot path never touches more.
	DefaultMemSize = 1 << 20
)

// Symbols are the link addresses of the kernel image the machine boots.
type Symbols struct {
	Entry    uint64 // _entry, the reset vector
	TimerVec uint64 // timervec
	Main     uint64 // main
	Stack0   uint64
	Scratch  uint64 // timer_scratch
}

// DefaultSymbols matches the layout drawn above.
func DefaultSymbols() Symbols {
	return Symbols{
		Entry:    entryAddr,
		TimerVec: timerVecAddr,
		Main:     mainAddr,
		Stack0:   stack0Addr,
		Scratch:  scratchAddr,
	}
}
