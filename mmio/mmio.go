package mmio

import "errors"

var (
	errUnaligned = errors.New("unaligned access")

	// ErrNoDevice means nothing answers at the address.
	ErrNoDevice = errors.New("no device at address")
)

// Bus is physical memory as a hart sees it. Loads and stores are 64-bit
// and happen as a single access.
type Bus interface {
	Load64(addr uint64) uint64
	Store64(addr, val uint64)
}

// Device describes the interface a memory-mapped device must implement
// regardless of where it is attached.
type Device interface {
	Read(off uint64, b []byte) error
	Write(off uint64, b []byte) error
	Base() uint64
	Size() uint64
}

// CheckAligned reports errUnaligned for an access of width len(b) at off.
func CheckAligned(off uint64, b []byte) error {
	if len(b) == 0 || off%uint64(len(b)) != 0 {
		return errUnaligned
	}

	return nil
}
