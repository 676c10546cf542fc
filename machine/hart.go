package machine

import (
	"encoding/binary"
	"errors"
	"runtime"

	"github.com/sirupsen/logrus"

	"github.com/bobuhiro11/rvstart/csr"
	"github.com/bobuhiro11/rvstart/insn"
	"github.com/bobuhiro11/rvstart/mmio"
	"github.com/bobuhiro11/rvstart/riscv"
)

// State is a hart's architectural state, one field per register the boot
// path can reach.
type State struct {
	Priv riscv.Priv
	PC   uint64
	SP   uint64
	TP   uint64

	Mhartid    uint64
	Mstatus    uint64
	Mepc       uint64
	Medeleg    uint64
	Mideleg    uint64
	Mie        uint64
	Mip        uint64
	Mtvec      uint64
	Mscratch   uint64
	Mcause     uint64
	Mtval      uint64
	Mcounteren uint64
	Pmpcfg0    uint64
	Pmpaddr0   uint64

	Stvec  uint64
	Sepc   uint64
	Scause uint64
	Stval  uint64
	Satp   uint64
}

// Hart is one simulated hardware thread. It implements csr.Registers and
// mmio.Bus for code running on it; that code must run on the goroutine
// the machine starts for the hart, since a fault or mret ends it.
type Hart struct {
	id    int
	m     *Machine
	state State

	// atMret is the state as the boot code left it, just before mret.
	atMret   State
	switched bool

	trace      []insn.Word
	fault      error
	interrupts int
	log        *logrus.Entry
}

var (
	_ csr.Registers = &Hart{}
	_ mmio.Bus      = &Hart{}
)

func newHart(m *Machine, id int) *Hart {
	h := &Hart{
		id:  id,
		m:   m,
		log: logrus.WithField("hart", id),
	}
	h.reset()

	return h
}

func (h *Hart) reset() {
	h.state = State{
		Priv:    riscv.PrivM,
		PC:      h.m.sym.Entry,
		SP:      riscv.StackTop(h.m.sym.Stack0, h.id),
		Mhartid: uint64(h.id),
	}
	h.atMret = State{}
	h.switched = false
	h.trace = nil
	h.fault = nil
	h.interrupts = 0
}

func (h *Hart) ID() int {
	return h.id
}

// State returns a copy of the hart's registers.
func (h *Hart) State() State {
	return h.state
}

// SetState replaces the hart's registers. Only use it while the hart is
// not running.
func (h *Hart) SetState(s State) {
	h.state = s
}

// ExitState is the state at the moment the hart executed mret, and false
// if it never did.
func (h *Hart) ExitState() (State, bool) {
	return h.atMret, h.switched
}

func (h *Hart) Trace() []insn.Word {
	return h.trace
}

// Fault is the trap that stopped the hart, if any.
func (h *Hart) Fault() error {
	return h.fault
}

// Interrupts counts machine timer interrupts taken.
func (h *Hart) Interrupts() int {
	return h.interrupts
}

// halt stops the hart. It does not return.
func (h *Hart) halt(f *Fault) {
	f.Hart = h.id
	h.fault = f
	h.log.WithError(f).Error("hart halted")
	runtime.Goexit()
}

func (h *Hart) exec(w insn.Word) {
	h.trace = append(h.trace, w)

	if h.log.Logger.IsLevelEnabled(logrus.TraceLevel) {
		h.log.Tracef("%#x: %s", h.state.PC, insn.Disassemble(w))
	}
}

// check faults an access to csr the current privilege may not make.
func (h *Hart) check(w insn.Word, n uint16, write bool) {
	if riscv.Priv((n>>8)&3) > h.state.Priv {
		h.halt(&Fault{Reason: ErrIllegalInstruction, Word: w})
	}

	if write && n>>10 == 3 {
		h.halt(&Fault{Reason: ErrIllegalInstruction, Word: w})
	}
}

func (h *Hart) read(n uint16) uint64 {
	w := insn.CSRRead(n)
	h.exec(w)
	h.check(w, n, false)

	s := &h.state

	switch n {
	case riscv.CSRMhartid:
		return s.Mhartid
	case riscv.CSRMstatus:
		return s.Mstatus
	case riscv.CSRMepc:
		return s.Mepc
	case riscv.CSRMedeleg:
		return s.Medeleg
	case riscv.CSRMideleg:
		return s.Mideleg
	case riscv.CSRMie:
		return s.Mie
	case riscv.CSRMip:
		return s.Mip
	case riscv.CSRMtvec:
		return s.Mtvec
	case riscv.CSRMscratch:
		return s.Mscratch
	case riscv.CSRMcause:
		return s.Mcause
	case riscv.CSRMtval:
		return s.Mtval
	case riscv.CSRMcounteren:
		return s.Mcounteren
	case riscv.CSRPmpcfg0:
		return s.Pmpcfg0
	case riscv.CSRPmpaddr0:
		return s.Pmpaddr0
	case riscv.CSRSstatus:
		return s.Mstatus & riscv.SstatusMask
	case riscv.CSRSie:
		return s.Mie & riscv.SieMask
	case riscv.CSRSip:
		return s.Mip & riscv.SipMask
	case riscv.CSRSepc:
		return s.Sepc
	case riscv.CSRStvec:
		return s.Stvec
	case riscv.CSRSatp:
		return s.Satp
	case riscv.CSRScause:
		return s.Scause
	case riscv.CSRStval:
		return s.Stval
	case riscv.CSRTime:
		return h.m.clint.Mtime()
	}

	h.halt(&Fault{Reason: ErrIllegalInstruction, Word: w})

	return 0
}

func (h *Hart) write(n uint16, v uint64) {
	w := insn.CSRWrite(n)
	h.exec(w)
	h.check(w, n, true)

	s := &h.state

	switch n {
	case riscv.CSRMstatus:
		if riscv.MPP(v) == 2 {
			h.halt(&Fault{Reason: ErrReservedMode, Word: w})
		}

		s.Mstatus = v
	case riscv.CSRMepc:
		s.Mepc = v
	case riscv.CSRMedeleg:
		s.Medeleg = v
	case riscv.CSRMideleg:
		s.Mideleg = v
	case riscv.CSRMie:
		s.Mie = v
	case riscv.CSRMip:
		s.Mip = v
	case riscv.CSRMtvec:
		s.Mtvec = v
	case riscv.CSRMscratch:
		s.Mscratch = v
	case riscv.CSRMcounteren:
		s.Mcounteren = v
	case riscv.CSRPmpcfg0:
		s.Pmpcfg0 = v
	case riscv.CSRPmpaddr0:
		s.Pmpaddr0 = v
	case riscv.CSRSstatus:
		s.Mstatus = s.Mstatus&^riscv.SstatusMask | v&riscv.SstatusMask
	case riscv.CSRSie:
		s.Mie = s.Mie&^riscv.SieMask | v&riscv.SieMask
	case riscv.CSRSip:
		s.Mip = s.Mip&^riscv.SipMask | v&riscv.SipMask
	case riscv.CSRSepc:
		s.Sepc = v
	case riscv.CSRStvec:
		s.Stvec = v
	case riscv.CSRSatp:
		s.Satp = v
	default:
		h.halt(&Fault{Reason: ErrIllegalInstruction, Word: w})
	}
}

func (h *Hart) Mhartid() uint64 { return h.read(riscv.CSRMhartid) }
func (h *Hart) Mstatus() uint64 { return h.read(riscv.CSRMstatus) }
func (h *Hart) Mepc() uint64 { return h.read(riscv.CSRMepc) }
func (h *Hart) Medeleg() uint64 { return h.read(riscv.CSRMedeleg) }
func (h *Hart) Mideleg() uint64 { return h.read(riscv.CSRMideleg) }
func (h *Hart) Mie() uint64 { return h.read(riscv.CSRMie) }
func (h *Hart) Mtvec() uint64 { return h.read(riscv.CSRMtvec) }
func (h *Hart) Mscratch() uint64 { return h.read(riscv.CSRMscratch) }
func (h *Hart) Mcause() uint64 { return h.read(riscv.CSRMcause) }
func (h *Hart) Mtval() uint64 { return h.read(riscv.CSRMtval) }
func (h *Hart) Mcounteren() uint64 { return h.read(riscv.CSRMcounteren) }
func (h *Hart) Pmpcfg0() uint64 { return h.read(riscv.CSRPmpcfg0) }
func (h *Hart) Pmpaddr0() uint64 { return h.read(riscv.CSRPmpaddr0) }
func (h *Hart) Sstatus() uint64 { return h.read(riscv.CSRSstatus) }
func (h *Hart) Sie() uint64 { return h.read(riscv.CSRSie) }
func (h *Hart) Sip() uint64 { return h.read(riscv.CSRSip) }
func (h *Hart) Sepc() uint64 { return h.read(riscv.CSRSepc) }
func (h *Hart) Stvec() uint64 { return h.read(riscv.CSRStvec) }
func (h *Hart) Satp() uint64 { return h.read(riscv.CSRSatp) }
func (h *Hart) Scause() uint64 { return h.read(riscv.CSRScause) }
func (h *Hart) Stval() uint64 { return h.read(riscv.CSRStval) }
func (h *Hart) Time() uint64 { return h.read(riscv.CSRTime) }

func (h *Hart) SetMstatus(x uint64) { h.write(riscv.CSRMstatus, x) }
func (h *Hart) SetMepc(x uint64) { h.write(riscv.CSRMepc, x) }
func (h *Hart) SetMedeleg(x uint64) { h.write(riscv.CSRMedeleg, x) }
func (h *Hart) SetMideleg(x uint64) { h.write(riscv.CSRMideleg, x) }
func (h *Hart) SetMie(x uint64) { h.write(riscv.CSRMie, x) }
func (h *Hart) SetMtvec(x uint64) { h.write(riscv.CSRMtvec, x) }
func (h *Hart) SetMscratch(x uint64) { h.write(riscv.CSRMscratch, x) }
func (h *Hart) SetMcounteren(x uint64) { h.write(riscv.CSRMcounteren, x) }
func (h *Hart) SetPmpcfg0(x uint64) { h.write(riscv.CSRPmpcfg0, x) }
func (h *Hart) SetPmpaddr0(x uint64) { h.write(riscv.CSRPmpaddr0, x) }
func (h *Hart) SetSstatus(x uint64) { h.write(riscv.CSRSstatus, x) }
func (h *Hart) SetSie(x uint64) { h.write(riscv.CSRSie, x) }
func (h *Hart) SetSip(x uint64) { h.write(riscv.CSRSip, x) }
func (h *Hart) SetSepc(x uint64) { h.write(riscv.CSRSepc, x) }
func (h *Hart) SetStvec(x uint64) { h.write(riscv.CSRStvec, x) }
func (h *Hart) SetSatp(x uint64) { h.write(riscv.CSRSatp, x) }

func (h *Hart) SP() uint64 {
	h.exec(insn.MvA0SP)

	return h.state.SP
}

// RA is the return address of the boot code, which the simulator does not
// have; it reads as the reset vector.
func (h *Hart) RA() uint64 {
	h.exec(insn.MvA0RA)

	return h.m.sym.Entry
}

func (h *Hart) TP() uint64 {
	h.exec(insn.MvA0TP)

	return h.state.TP
}

func (h *Hart) SetTP(x uint64) {
	h.exec(insn.MvTPA0)
	h.state.TP = x
}

// SfenceVMA has nothing to flush: the simulator does not translate.
func (h *Hart) SfenceVMA() {
	h.exec(insn.SFENCEVMA)

	if h.state.Priv < riscv.PrivS {
		h.halt(&Fault{Reason: ErrIllegalInstruction, Word: insn.SFENCEVMA})
	}
}

// Mret returns from machine mode to the mode in mstatus.MPP at mepc, runs
// whatever the machine has registered at that address, and ends the
// hart's goroutine. It does not return.
func (h *Hart) Mret() {
	h.exec(insn.MRET)

	if h.state.Priv != riscv.PrivM {
		h.halt(&Fault{Reason: ErrIllegalInstruction, Word: insn.MRET})
	}

	h.atMret = h.state
	h.switched = true

	s := h.state.Mstatus
	h.state.Priv = riscv.MPP(s)
	s = riscv.SetMPP(s, riscv.PrivU)

	if s&riscv.MstatusMPIE != 0 {
		s |= riscv.MstatusMIE
	} else {
		s &^= riscv.MstatusMIE
	}

	h.state.Mstatus = s | riscv.MstatusMPIE
	h.state.PC = h.state.Mepc

	h.log.WithFields(logrus.Fields{
		"priv": h.state.Priv,
		"pc":   h.state.PC,
	}).Info("mret")

	if fn, ok := h.m.code[h.state.PC]; ok {
		fn(h)
	}

	runtime.Goexit()
}

// Load64 is a load as executed by the hart; a bad address faults it.
func (h *Hart) Load64(addr uint64) uint64 {
	var b [8]byte

	if err := h.m.ReadAt(b[:], addr); err != nil {
		h.halt(&Fault{Reason: errors.Join(ErrAccessFault, err), Addr: addr})
	}

	return binary.LittleEndian.Uint64(b[:])
}

// Store64 is a store as executed by the hart; a bad address faults it.
func (h *Hart) Store64(addr, val uint64) {
	var b [8]byte

	binary.LittleEndian.PutUint64(b[:], val)

	if err := h.m.WriteAt(b[:], addr); err != nil {
		h.halt(&Fault{Reason: errors.Join(ErrAccessFault, err), Addr: addr})
	}
}
