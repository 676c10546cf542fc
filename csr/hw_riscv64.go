//go:build riscv64

package csr

// Hardware is the register file of the hart executing the call. Using it
// from anything but machine mode on bare metal traps.
type Hardware struct{}

var _ Registers = Hardware{}

// Implemented in hw_riscv64.s.
func readMhartid() uint64
func readMstatus() uint64
func readMepc() uint64
func readMedeleg() uint64
func readMideleg() uint64
func readMie() uint64
func readMtvec() uint64
func readMscratch() uint64
func readMcause() uint64
func readMtval() uint64
func readMcounteren() uint64
func readPmpcfg0() uint64
func readPmpaddr0() uint64
func readSstatus() uint64
func readSie() uint64
func readSip() uint64
func readSepc() uint64
func readStvec() uint64
func readSatp() uint64
func readScause() uint64
func readStval() uint64
func readTime() uint64
func writeMstatus(x uint64)
func writeMepc(x uint64)
func writeMedeleg(x uint64)
func writeMideleg(x uint64)
func writeMie(x uint64)
func writeMtvec(x uint64)
func writeMscratch(x uint64)
func writeMcounteren(x uint64)
func writePmpcfg0(x uint64)
func writePmpaddr0(x uint64)
func writeSstatus(x uint64)
func writeSie(x uint64)
func writeSip(x uint64)
func writeSepc(x uint64)
func writeStvec(x uint64)
func writeSatp(x uint64)
func readSP() uint64
func readRA() uint64
func readTP() uint64
func writeTP(x uint64)
func sfenceVMA()
func mret()

func (Hardware) Mhartid() uint64 { return readMhartid() }
func (Hardware) Mstatus() uint64 { return readMstatus() }
func (Hardware) Mepc() uint64 { return readMepc() }
func (Hardware) Medeleg() uint64 { return readMedeleg() }
func (Hardware) Mideleg() uint64 { return readMideleg() }
func (Hardware) Mie() uint64 { return readMie() }
func (Hardware) Mtvec() uint64 { return readMtvec() }
func (Hardware) Mscratch() uint64 { return readMscratch() }
func (Hardware) Mcause() uint64 { return readMcause() }
func (Hardware) Mtval() uint64 { return readMtval() }
func (Hardware) Mcounteren() uint64 { return readMcounteren() }
func (Hardware) Pmpcfg0() uint64 { return readPmpcfg0() }
func (Hardware) Pmpaddr0() uint64 { return readPmpaddr0() }
func (Hardware) Sstatus() uint64 { return readSstatus() }
func (Hardware) Sie() uint64 { return readSie() }
func (Hardware) Sip() uint64 { return readSip() }
func (Hardware) Sepc() uint64 { return readSepc() }
func (Hardware) Stvec() uint64 { return readStvec() }
func (Hardware) Satp() uint64 { return readSatp() }
func (Hardware) Scause() uint64 { return readScause() }
func (Hardware) Stval() uint64 { return readStval() }
func (Hardware) Time() uint64 { return readTime() }

func (Hardware) SetMstatus(x uint64) { writeMstatus(x) }
func (Hardware) SetMepc(x uint64) { writeMepc(x) }
func (Hardware) SetMedeleg(x uint64) { writeMedeleg(x) }
func (Hardware) SetMideleg(x uint64) { writeMideleg(x) }
func (Hardware) SetMie(x uint64) { writeMie(x) }
func (Hardware) SetMtvec(x uint64) { writeMtvec(x) }
func (Hardware) SetMscratch(x uint64) { writeMscratch(x) }
func (Hardware) SetMcounteren(x uint64) { writeMcounteren(x) }
func (Hardware) SetPmpcfg0(x uint64) { writePmpcfg0(x) }
func (Hardware) SetPmpaddr0(x uint64) { writePmpaddr0(x) }
func (Hardware) SetSstatus(x uint64) { writeSstatus(x) }
func (Hardware) SetSie(x uint64) { writeSie(x) }
func (Hardware) SetSip(x uint64) { writeSip(x) }
func (Hardware) SetSepc(x uint64) { writeSepc(x) }
func (Hardware) SetStvec(x uint64) { writeStvec(x) }
func (Hardware) SetSatp(x uint64) { writeSatp(x) }

func (Hardware) SP() uint64 { return readSP() }

// RA is the return address of the stub call, inside RA itself.
func (Hardware) RA() uint64 { return readRA() }

func (Hardware) TP() uint64 { return readTP() }
func (Hardware) SetTP(x uint64) { writeTP(x) }
func (Hardware) SfenceVMA() { sfenceVMA() }

// Mret does not return.
func (Hardware) Mret() { mret() }
