package machine

import (
	"fmt"

	"github.com/bobuhiro11/rvstart/insn"
)

// Asm returns a quoted string for the given instruction.
func Asm(w insn.Word) string {
	return "\"" + insn.Disassemble(w) + "\""
}

// Disassemble lists the privileged instructions the hart executed, in
// order, one per line.
func (h *Hart) Disassemble() []string {
	lines := make([]string, 0, len(h.trace))

	for i, w := range h.trace {
		lines = append(lines, fmt.Sprintf("%4d: %08x  %s", i, uint32(w), insn.Disassemble(w)))
	}

	return lines
}

// CSRWrites returns, in order, the CSR numbers the hart wrote.
func (h *Hart) CSRWrites() []uint16 {
	var csrs []uint16

	for _, w := range h.trace {
		if n, ok := w.CSR(); ok && w == insn.CSRWrite(n) {
			csrs = append(csrs, n)
		}
	}

	return csrs
}

// ReadWord reads a little-endian word of guest physical memory.
func (m *Machine) ReadWord(pa uint64) (uint64, error) {
	b := &stickyBus{m: m}
	v := b.Load64(pa)

	return v, b.err
}

// WriteWord writes a little-endian word of guest physical memory.
func (m *Machine) WriteWord(pa, v uint64) error {
	b := &stickyBus{m: m}
	b.Store64(pa, v)

	return b.err
}
