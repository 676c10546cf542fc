// Package boot is the first Go code every hart runs: it takes the hart
// from machine mode into supervisor mode.
package boot

import (
	"reflect"

	"github.com/bobuhiro11/rvstart/csr"
	"github.com/bobuhiro11/rvstart/mmio"
	"github.com/bobuhiro11/rvstart/riscv"
	"github.com/bobuhiro11/rvstart/timer"
)

// Layout is what the linker knows and the hart does not.
type Layout struct {
	// Main is the supervisor-mode entry point.
	Main uint64

	// TimerVec is the machine-mode timer trap entry.
	TimerVec uint64

	Scratch  *timer.Arena
	Interval uint64
}

// SupervisorInterrupts are the sie bits boot turns on: external, timer
// and software.
const SupervisorInterrupts = riscv.SieSEIE | riscv.SieSTIE | riscv.SieSSIE

// Start runs on every hart at reset, in machine mode, on the hart's own
// stack, with no coordination with other harts. It never returns: it
// ends with mret into l.Main in supervisor mode.
func Start(r csr.Registers, bus mmio.Bus, l Layout) {
	// set M Previous Privilege mode to Supervisor, for mret.
	r.SetMstatus(riscv.SetMPP(r.Mstatus(), riscv.PrivS))

	// set M Exception Program Counter to main, for mret.
	r.SetMepc(l.Main)

	// disable paging for now.
	r.SetSatp(0)

	// delegate all interrupts and exceptions to supervisor mode.
	r.SetMedeleg(riscv.DelegateAll)
	r.SetMideleg(riscv.DelegateAll)
	r.SetSie(r.Sie() | SupervisorInterrupts)

	// give supervisor mode access to all of physical memory. The address
	// goes first: it is the top of the region pmpcfg0 describes.
	r.SetPmpaddr0(riscv.PMPAddrMax)
	r.SetPmpcfg0(riscv.PMPAllRWX)

	// ask for clock interrupts.
	id := r.Mhartid()
	timer.Init(r, bus, l.Scratch, int(id), l.TimerVec, l.Interval)

	// keep each CPU's hartid in its tp register, for cpuid().
	r.SetTP(id)

	// switch to supervisor mode and jump to main().
	r.Mret()
}

// FuncAddr returns the entry address of a Go function, for filling a
// Layout from symbols linked into the kernel.
func FuncAddr(fn any) uint64 {
	return uint64(reflect.ValueOf(fn).Pointer())
}
