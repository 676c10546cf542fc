package machine

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"

	"github.com/bobuhiro11/rvstart/mmio"
	"github.com/bobuhiro11/rvstart/param"
	"github.com/bobuhiro11/rvstart/riscv"
)

const (
	clintMsipOff     = 0x0
	clintMtimecmpOff = 0x4000
	clintMtimeOff    = 0xbff8
)

// CLINT is the core local interruptor: a free running mtime shared by
// every hart, and one mtimecmp and msip per hart.
type CLINT struct {
	mtime    atomic.Uint64
	mtimecmp [param.NCPU]atomic.Uint64
	msip     [param.NCPU]atomic.Uint32
}

var _ mmio.Device = &CLINT{}

func NewCLINT() *CLINT {
	c := &CLINT{}

	// Nothing fires until a hart asks for it.
	for i := range c.mtimecmp {
		c.mtimecmp[i].Store(^uint64(0))
	}

	return c
}

func (c *CLINT) Base() uint64 {
	return riscv.CLINT
}

func (c *CLINT) Size() uint64 {
	return riscv.CLINTSize
}

func (c *CLINT) Mtime() uint64 {
	return c.mtime.Load()
}

func (c *CLINT) Mtimecmp(hart int) uint64 {
	return c.mtimecmp[hart].Load()
}

// Advance moves mtime forward and returns the new value.
func (c *CLINT) Advance(ticks uint64) uint64 {
	return c.mtime.Add(ticks)
}

// Pending reports whether hart's machine timer interrupt is pending.
func (c *CLINT) Pending(hart int) bool {
	return c.Mtime() >= c.Mtimecmp(hart)
}

func (c *CLINT) hart(off, base, stride uint64) (int, bool) {
	if off < base || (off-base)%stride != 0 {
		return 0, false
	}

	h := (off - base) / stride
	if h >= param.NCPU {
		return 0, false
	}

	return int(h), true
}

func (c *CLINT) Read(off uint64, b []byte) error {
	if err := mmio.CheckAligned(off, b); err != nil {
		return fmt.Errorf("clint read %#x:%w", off, err)
	}

	switch {
	case len(b) == 8 && off == clintMtimeOff:
		binary.LittleEndian.PutUint64(b, c.Mtime())
	case len(b) == 8 && off >= clintMtimecmpOff && off < clintMtimeOff:
		h, ok := c.hart(off, clintMtimecmpOff, 8)
		if !ok {
			return fmt.Errorf("clint read %#x:%w", off, ErrAccessFault)
		}

		binary.LittleEndian.PutUint64(b, c.Mtimecmp(h))
	case len(b) == 4 && off < clintMtimecmpOff:
		h, ok := c.hart(off, clintMsipOff, 4)
		if !ok {
			return fmt.Errorf("clint read %#x:%w", off, ErrAccessFault)
		}

		binary.LittleEndian.PutUint32(b, c.msip[h].Load())
	default:
		return fmt.Errorf("clint read %#x len=%d:%w", off, len(b), ErrAccessFault)
	}

	return nil
}

func (c *CLINT) Write(off uint64, b []byte) error {
	if err := mmio.CheckAligned(off, b); err != nil {
		return fmt.Errorf("clint write %#x:%w", off, err)
	}

	switch {
	case len(b) == 8 && off == clintMtimeOff:
		c.mtime.Store(binary.LittleEndian.Uint64(b))
	case len(b) == 8 && off >= clintMtimecmpOff && off < clintMtimeOff:
		h, ok := c.hart(off, clintMtimecmpOff, 8)
		if !ok {
			return fmt.Errorf("clint write %#x:%w", off, ErrAccessFault)
		}

		c.mtimecmp[h].Store(binary.LittleEndian.Uint64(b))
	case len(b) == 4 && off < clintMtimecmpOff:
		h, ok := c.hart(off, clintMsipOff, 4)
		if !ok {
			return fmt.Errorf("clint write %#x:%w", off, ErrAccessFault)
		}

		c.msip[h].Store(binary.LittleEndian.Uint32(b) & 1)
	default:
		return fmt.Errorf("clint write %#x len=%d:%w", off, len(b), ErrAccessFault)
	}

	return nil
}
