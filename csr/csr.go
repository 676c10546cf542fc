// Package csr is typed access to the control and status registers of the
// hart the caller is running on.
//
// A write executes exactly one privileged instruction with exactly the
// given bits. Nothing here masks, validates or retries; a bad value either
// traps at once in machine mode or misbehaves later.
package csr

import "github.com/bobuhiro11/rvstart/riscv"

// Machine is the machine-mode register file.
type Machine interface {
	Mhartid() uint64

	Mstatus() uint64
	SetMstatus(uint64)

	// Mepc is where mret jumps.
	Mepc() uint64
	SetMepc(uint64)

	Medeleg() uint64
	SetMedeleg(uint64)
	Mideleg() uint64
	SetMideleg(uint64)

	Mie() uint64
	SetMie(uint64)

	Mtvec() uint64
	SetMtvec(uint64)

	Mscratch() uint64
	SetMscratch(uint64)

	Mcause() uint64
	Mtval() uint64

	Mcounteren() uint64
	SetMcounteren(uint64)

	Pmpcfg0() uint64
	SetPmpcfg0(uint64)
	Pmpaddr0() uint64
	SetPmpaddr0(uint64)

	// Mret switches to the privilege in mstatus.MPP at Mepc. It does not
	// return.
	Mret()
}

// Supervisor is the supervisor-mode register file plus the two general
// registers the kernel reads directly.
type Supervisor interface {
	Sstatus() uint64
	SetSstatus(uint64)

	Sie() uint64
	SetSie(uint64)

	Sip() uint64
	SetSip(uint64)

	Sepc() uint64
	SetSepc(uint64)

	Stvec() uint64
	SetStvec(uint64)

	// Satp holds the root page table and translation mode.
	Satp() uint64
	SetSatp(uint64)

	Scause() uint64
	Stval() uint64

	Time() uint64

	SP() uint64
	RA() uint64

	// TP holds this hart's id once boot has run.
	TP() uint64
	SetTP(uint64)

	// SfenceVMA flushes every TLB entry.
	SfenceVMA()
}

// Registers is everything a hart running in machine mode can reach.
type Registers interface {
	Machine
	Supervisor
}

// IntrOn enables device interrupts.
func IntrOn(s Supervisor) {
	s.SetSstatus(s.Sstatus() | riscv.SstatusSIE)
}

// IntrOff disables device interrupts.
func IntrOff(s Supervisor) {
	s.SetSstatus(s.Sstatus() &^ riscv.SstatusSIE)
}

// IntrGet reports whether device interrupts are enabled.
func IntrGet(s Supervisor) bool {
	return s.Sstatus()&riscv.SstatusSIE != 0
}

// CPUID is the hart id kept in tp.
func CPUID(s Supervisor) int {
	return int(s.TP())
}
