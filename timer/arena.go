package timer

import (
	"github.com/bobuhiro11/rvstart/mmio"
	"github.com/bobuhiro11/rvstart/param"
)

// Arena is param.NCPU scratch areas laid end to end in physical memory.
// Hart h only ever touches area h, which is why none of it is locked.
type Arena struct {
	bus  mmio.Bus
	base uint64
}

func NewArena(bus mmio.Bus, base uint64) *Arena {
	return &Arena{bus: bus, base: base}
}

func (a *Arena) Base() uint64 {
	return a.base
}

// Addr is the physical address of hart's area, the value for mscratch.
func (a *Arena) Addr(hart int) uint64 {
	return a.base + uint64(hart)*Size
}

func (a *Arena) Slot(hart, slot int) uint64 {
	return a.bus.Load64(a.Addr(hart) + 8*uint64(slot))
}

func (a *Arena) SetSlot(hart, slot int, v uint64) {
	a.bus.Store64(a.Addr(hart)+8*uint64(slot), v)
}

// Hart maps an mscratch value back to the hart owning the area.
func (a *Arena) Hart(addr uint64) (int, bool) {
	if addr < a.base || (addr-a.base)%Size != 0 {
		return 0, false
	}

	h := int((addr - a.base) / Size)
	if h >= param.NCPU {
		return 0, false
	}

	return h, true
}
