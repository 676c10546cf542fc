// Package insn encodes the handful of privileged instructions the boot
// path executes and turns recorded instruction words back into text.
package insn

import (
	"encoding/binary"
	"fmt"
	"sync"

	"golang.org/x/arch/riscv64/riscv64asm"
)

// Word is one 32-bit instruction.
type Word uint32

const (
	opSystem = 0x73

	funct3CSRRW = 1
	funct3CSRRS = 2
	funct3CSRRC = 3

	// Registers used by the assembly stubs.
	RegZero = 0
	RegA0   = 10
)

const (
	MRET      Word = 0x3020_0073
	SRET      Word = 0x1020_0073
	WFI       Word = 0x1050_0073
	SFENCEVMA Word = 0x1200_0073 // sfence.vma zero, zero

	// General registers move through a0 in the stubs.
	MvA0SP Word = 0x0001_0513 // mv a0, sp
	MvA0RA Word = 0x0000_8513 // mv a0, ra
	MvA0TP Word = 0x0002_0513 // mv a0, tp
	MvTPA0 Word = 0x0005_0213 // mv tp, a0
)

// EncodeCSR builds an I-type Zicsr instruction.
func EncodeCSR(funct3, rd, rs1 uint32, csr uint16) Word {
	return Word(uint32(csr&0xfff)<<20 | (rs1&0x1f)<<15 | (funct3&7)<<12 | (rd&0x1f)<<7 | opSystem)
}

// CSRRead is csrr a0, csr.
func CSRRead(csr uint16) Word {
	return EncodeCSR(funct3CSRRS, RegA0, RegZero, csr)
}

// CSRWrite is csrw csr, a0.
func CSRWrite(csr uint16) Word {
	return EncodeCSR(funct3CSRRW, RegZero, RegA0, csr)
}

// CSRSet is csrs csr, a0.
func CSRSet(csr uint16) Word {
	return EncodeCSR(funct3CSRRS, RegZero, RegA0, csr)
}

// CSRClear is csrc csr, a0.
func CSRClear(csr uint16) Word {
	return EncodeCSR(funct3CSRRC, RegZero, RegA0, csr)
}

// CSR returns the CSR number of a Zicsr instruction, and false if w is
// not one.
func (w Word) CSR() (uint16, bool) {
	if w&0x7f != opSystem {
		return 0, false
	}

	if f3 := (w >> 12) & 7; f3 == 0 || f3 == 4 {
		return 0, false
	}

	return uint16(w >> 20), true
}

// system instructions riscv64asm may not know about.
var privileged = map[Word]string{
	MRET:      "mret",
	SRET:      "sret",
	WFI:       "wfi",
	SFENCEVMA: "sfence.vma",
}

// decodeMu serializes riscv64asm.Decode, which updates package state.
var decodeMu sync.Mutex

// Disassemble returns w in GNU syntax. It is safe for concurrent use.
func Disassemble(w Word) string {
	if s, ok := privileged[w]; ok {
		return s
	}

	var b [4]byte

	binary.LittleEndian.PutUint32(b[:], uint32(w))

	decodeMu.Lock()
	inst, err := riscv64asm.Decode(b[:])
	decodeMu.Unlock()

	if err == nil {
		return riscv64asm.GNUSyntax(inst)
	}

	return fmt.Sprintf(".word %#08x", uint32(w))
}
