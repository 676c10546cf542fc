package machine

import (
	"errors"
	"fmt"

	"github.com/bobuhiro11/rvstart/insn"
)

var (
	// ErrIllegalInstruction is raised for a CSR access above the current
	// privilege, a write to a read-only CSR, or mret outside M-mode.
	ErrIllegalInstruction = errors.New("illegal instruction")

	// ErrReservedMode is a write of the reserved encoding into mstatus.MPP.
	ErrReservedMode = errors.New("reserved privilege mode")

	// ErrAccessFault is a load or store nothing answers.
	ErrAccessFault = errors.New("access fault")

	// ErrNoTrapHandler is an interrupt taken while mtvec points at
	// something other than the timer vector.
	ErrNoTrapHandler = errors.New("no trap handler")

	// ErrBadScratch means mscratch does not point at a scratch area.
	ErrBadScratch = errors.New("mscratch does not point at a scratch area")

	// ErrReturned means the boot code returned instead of leaving M-mode.
	ErrReturned = errors.New("boot code returned")

	errTooManyHarts = errors.New("too many harts")
	errMemTooSmall  = errors.New("memory too small for the kernel image")
)

// Fault is a fatal trap taken by a hart. Nothing is installed to handle
// it, so the hart stops.
type Fault struct {
	Hart   int
	Reason error
	Word   insn.Word
	Addr   uint64
}

func (f *Fault) Error() string {
	if f.Word != 0 {
		return fmt.Sprintf("hart %d: %v: %s", f.Hart, f.Reason, insn.Disassemble(f.Word))
	}

	return fmt.Sprintf("hart %d: %v at %#x", f.Hart, f.Reason, f.Addr)
}

func (f *Fault) Unwrap() error {
	return f.Reason
}
