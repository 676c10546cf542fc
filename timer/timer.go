// Package timer arms the machine-mode timer of a hart and lays out the
// scratch area the machine-mode timer trap entry works from.
//
// The trap entry (timervec) finds the area through mscratch. On every
// interrupt it saves three registers in slots 0-2, adds slot 4 to the
// compare register whose address is in slot 3, and raises a supervisor
// software interrupt. This package only writes the first deadline.
package timer

import (
	"github.com/bobuhiro11/rvstart/csr"
	"github.com/bobuhiro11/rvstart/mmio"
	"github.com/bobuhiro11/rvstart/riscv"
)

// Scratch slots. The order is shared with timervec.
const (
	Save0 = iota
	Save1
	Save2
	CompareAddr
	Interval

	Words = 5
	Size  = Words * 8
)

// DefaultInterval is about 1/10th of a second on qemu.
const DefaultInterval = 1_000_000

// Deadline is the compare value that fires interval ticks after now.
// It wraps like the 64-bit register does.
func Deadline(now, interval uint64) uint64 {
	return now + interval
}

// Init arms hart's timer interval ticks from now, fills its scratch
// area and enables machine timer interrupts with vec as the trap vector.
// It must run on hart itself, in machine mode.
func Init(m csr.Machine, bus mmio.Bus, a *Arena, hart int, vec, interval uint64) {
	cmp := riscv.CLINTMtimecmp(hart)

	// ask the CLINT for a timer interrupt.
	bus.Store64(cmp, Deadline(bus.Load64(riscv.CLINTMtime), interval))

	a.SetSlot(hart, CompareAddr, cmp)
	a.SetSlot(hart, Interval, interval)

	m.SetMtvec(vec)
	m.SetMscratch(a.Addr(hart))

	m.SetMstatus(m.Mstatus() | riscv.MstatusMIE)
	m.SetMie(m.Mie() | riscv.MieMTIE)
}
