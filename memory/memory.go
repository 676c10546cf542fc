package memory

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

var (
	errOutOfRange = errors.New("access outside memory slot")
	errZeroSize   = errors.New("memory slot of size 0")
)

// Poison fills fresh RAM. Executing it or using it as a pointer should be
// easy to tell from a real value:
// 0:  00000000  .word 0x00000000 (illegal on RISC-V)
// 4:  deadbeef
const Poison = "\x00\x00\x00\x00\xef\xbe\xad\xde"

// PoisonWord is Poison read as a little-endian word.
const PoisonWord = 0xdead_beef_0000_0000

// Slot is a region of guest physical RAM backed by anonymous host memory.
type Slot struct {
	Name string
	Addr uint64
	Buf  []byte
}

// NewSlot maps size bytes for guest physical addresses [addr, addr+size).
func NewSlot(name string, addr uint64, size int) (*Slot, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%s:%w", name, errZeroSize)
	}

	buf, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("mmap %s (%#x bytes):%w", name, size, err)
	}

	// Poison memory.
	for i := 0; i < len(buf); i += len(Poison) {
		copy(buf[i:], Poison)
	}

	return &Slot{Name: name, Addr: addr, Buf: buf}, nil
}

func (s *Slot) Base() uint64 {
	return s.Addr
}

func (s *Slot) Size() uint64 {
	return uint64(len(s.Buf))
}

func (s *Slot) check(off uint64, n int) error {
	if off >= s.Size() || uint64(n) > s.Size()-off {
		return fmt.Errorf("%s: %#x+%d:%w", s.Name, s.Addr+off, n, errOutOfRange)
	}

	return nil
}

// Read copies len(b) bytes at offset off into b.
func (s *Slot) Read(off uint64, b []byte) error {
	if err := s.check(off, len(b)); err != nil {
		return err
	}

	copy(b, s.Buf[off:])

	return nil
}

// Write copies b into the slot at offset off.
func (s *Slot) Write(off uint64, b []byte) error {
	if err := s.check(off, len(b)); err != nil {
		return err
	}

	copy(s.Buf[off:], b)

	return nil
}

// Close unmaps the slot.
func (s *Slot) Close() error {
	if s.Buf == nil {
		return nil
	}

	err := unix.Munmap(s.Buf)
	s.Buf = nil

	return err
}
