package memory

import (
	"errors"
	"fmt"
)

var errAddrSpaceOccupied = errors.New("address space occupied")

// AddressSpace is a range of guest physical addresses and the regions
// carved out of it.
type AddressSpace struct {
	Name      string
	Start     uint64
	Size      uint64
	Addresses []*AddressSpace
}

func NewAddressSpace(name string, start, size uint64) *AddressSpace {
	return &AddressSpace{
		Name:  name,
		Start: start,
		Size:  size,
	}
}

func (a *AddressSpace) End() uint64 {
	return a.Start + a.Size
}

func (a *AddressSpace) AddAddress(addr *AddressSpace) error {
	if !a.InRange(addr) || !a.IsFree(addr) {
		return fmt.Errorf("%s [%#x, %#x) in %s:%w", addr.Name, addr.Start, addr.End(), a.Name, errAddrSpaceOccupied)
	}

	a.Addresses = append(a.Addresses, addr)

	return nil
}

// InRange reports whether addr lies within a.
func (a *AddressSpace) InRange(addr *AddressSpace) bool {
	return addr.Start >= a.Start && addr.End() <= a.End()
}

// IsFree reports whether addr overlaps none of a's regions.
func (a *AddressSpace) IsFree(addr *AddressSpace) bool {
	for _, r := range a.Addresses {
		if addr.Start < r.End() && r.Start < addr.End() {
			return false
		}
	}

	return true
}

// Find returns the region containing pa.
func (a *AddressSpace) Find(pa uint64) (*AddressSpace, bool) {
	for _, r := range a.Addresses {
		if pa >= r.Start && pa < r.End() {
			return r, true
		}
	}

	return nil, false
}
