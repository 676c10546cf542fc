// Package pte describes the Sv39 page-table entry layout shared by every
// piece of the kernel that builds or walks a page table.
//
//	63      54 53                              10 9   8 7 6 5 4 3 2 1 0
//	+--------+----------------------------------+-----+-+-+-+-+-+-+-+-+
//	|reserved|               PPN                | RSW |D|A|G|U|X|W|R|V|
//	+--------+----------------------------------+-----+-+-+-+-+-+-+-+-+
package pte

import (
	"github.com/bobuhiro11/rvstart/param"
	"github.com/bobuhiro11/rvstart/riscv"
)

// Entry is one page-table entry.
type Entry uint64

// Flag bits.
const (
	V = 1 << 0 // valid
	R = 1 << 1
	W = 1 << 2
	X = 1 << 3
	U = 1 << 4 // user can access
	G = 1 << 5
	A = 1 << 6
	D = 1 << 7
)

const (
	PageShift = 12
	FlagBits  = 10
	FlagMask  = (1 << FlagBits) - 1
	PPNBits   = 44
	PPNMask   = (uint64(1) << PPNBits) - 1

	// IndexBits is the width of one level's index in a virtual address.
	IndexBits = 9
	IndexMask = (1 << IndexBits) - 1
	Levels    = 3

	// MaxVA is one beyond the highest possible virtual address. It is
	// one bit less than the max allowed by Sv39, to avoid having to
	// sign-extend virtual addresses that have the high bit set.
	MaxVA = uint64(1) << (IndexBits*Levels + PageShift - 1)
)

// Pack builds an entry from a page-aligned physical address and flags.
// Address bits above the 44-bit PPN are dropped, as the hardware does.
func Pack(pa uint64, flags uint64) Entry {
	ppn := (pa >> PageShift) & PPNMask

	return Entry(ppn<<FlagBits | flags&FlagMask)
}

// PA returns the physical address the entry points at.
func (e Entry) PA() uint64 {
	return (uint64(e) >> FlagBits & PPNMask) << PageShift
}

// Flags returns the low 10 bits of the entry.
func (e Entry) Flags() uint64 {
	return uint64(e) & FlagMask
}

func (e Entry) Valid() bool {
	return e&V != 0
}

// Leaf reports whether the entry maps a page rather than pointing at the
// next level table.
func (e Entry) Leaf() bool {
	return e&(R|W|X) != 0
}

// Shift returns the bit offset of level's index within a virtual address.
func Shift(level int) uint {
	return PageShift + IndexBits*uint(level)
}

// Index extracts the 9-bit page-table index for level from va.
func Index(level int, va uint64) uint64 {
	return (va >> Shift(level)) & IndexMask
}

func RoundUp(sz uint64) uint64 {
	return (sz + param.PGSIZE - 1) &^ (param.PGSIZE - 1)
}

func RoundDown(a uint64) uint64 {
	return a &^ (param.PGSIZE - 1)
}

// MakeSatp returns the satp value selecting Sv39 with root as the
// top-level table.
func MakeSatp(root uint64) uint64 {
	return riscv.SatpSv39 | root>>PageShift
}
