package machine

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/bobuhiro11/rvstart/memory"
	"github.com/bobuhiro11/rvstart/mmio"
	"github.com/bobuhiro11/rvstart/param"
	"github.com/bobuhiro11/rvstart/riscv"
	"github.com/bobuhiro11/rvstart/serial"
	"github.com/bobuhiro11/rvstart/timer"
)

// Machine is a qemu virt style rv64 board: harts, a CLINT, a UART and RAM
// at KERNBASE. It runs Go code in place of the kernel image: the code given
// to Boot stands for _entry on every hart, and code registered with
// SetCode runs when a hart jumps to its address.
type Machine struct {
	harts   []*Hart
	ram     *memory.Slot
	clint   *CLINT
	uart    *serial.Serial
	as      *memory.AddressSpace
	devices []mmio.Device
	sym     Symbols
	code    map[uint64]func(h *Hart)
}

// New creates a machine with nCpus harts and memSize bytes of RAM.
func New(nCpus int, memSize int) (*Machine, error) {
	if nCpus < 1 || nCpus > param.NCPU {
		return nil, fmt.Errorf("%d harts, max %d:%w", nCpus, param.NCPU, errTooManyHarts)
	}

	if memSize < MinMemSize {
		return nil, fmt.Errorf("%#x bytes, need %#x:%w", memSize, MinMemSize, errMemTooSmall)
	}

	m := &Machine{
		clint: NewCLINT(),
		uart:  serial.New(io.Discard),
		as:    memory.NewAddressSpace("phys", 0, 1<<56),
		sym:   DefaultSymbols(),
		code:  map[uint64]func(h *Hart){},
	}

	ram, err := memory.NewSlot("ram", riscv.KERNBASE, memSize)
	if err != nil {
		return nil, err
	}

	m.ram = ram

	for _, d := range []mmio.Device{m.clint, m.uart, m.ram} {
		if err := m.AddDevice(d); err != nil {
			m.Close()

			return nil, err
		}
	}

	for i := 0; i < nCpus; i++ {
		m.harts = append(m.harts, newHart(m, i))
	}

	return m, nil
}

// AddDevice maps d on the bus.
func (m *Machine) AddDevice(d mmio.Device) error {
	name := fmt.Sprintf("%T", d)
	if err := m.as.AddAddress(memory.NewAddressSpace(name, d.Base(), d.Size())); err != nil {
		return err
	}

	m.devices = append(m.devices, d)

	return nil
}

func (m *Machine) Close() error {
	if m.ram == nil {
		return nil
	}

	return m.ram.Close()
}

func (m *Machine) Harts() []*Hart {
	return m.harts
}

func (m *Machine) Hart(i int) *Hart {
	return m.harts[i]
}

func (m *Machine) CLINT() *CLINT {
	return m.clint
}

// UART is the console. Its output goes nowhere until SetOutput.
func (m *Machine) UART() *serial.Serial {
	return m.uart
}

func (m *Machine) Symbols() Symbols {
	return m.sym
}

// SetCode registers fn as the code at addr. A hart that jumps to addr
// runs fn on its own goroutine.
func (m *Machine) SetCode(addr uint64, fn func(h *Hart)) {
	m.code[addr] = fn
}

func (m *Machine) device(pa uint64, n int) (mmio.Device, uint64, error) {
	for _, d := range m.devices {
		if pa >= d.Base() && pa-d.Base() < d.Size() {
			return d, pa - d.Base(), nil
		}
	}

	return nil, 0, fmt.Errorf("%#x+%d:%w", pa, n, mmio.ErrNoDevice)
}

// ReadAt reads guest physical memory.
func (m *Machine) ReadAt(b []byte, pa uint64) error {
	d, off, err := m.device(pa, len(b))
	if err != nil {
		return err
	}

	return d.Read(off, b)
}

// WriteAt writes guest physical memory.
func (m *Machine) WriteAt(b []byte, pa uint64) error {
	d, off, err := m.device(pa, len(b))
	if err != nil {
		return err
	}

	return d.Write(off, b)
}

// Reset puts every hart back in its reset state. RAM and the CLINT keep
// their contents.
func (m *Machine) Reset() {
	for _, h := range m.harts {
		h.reset()
	}
}

// Boot starts every hart at the reset vector, each on its own goroutine,
// with entry as the code found there. Harts do not wait for each other.
// Boot returns when every hart has left entry, by mret or by a fault; the
// faults are returned joined.
func (m *Machine) Boot(entry func(h *Hart)) error {
	var g errgroup.Group

	for _, h := range m.harts {
		h := h

		g.Go(func() error {
			return h.run(entry)
		})
	}

	if g.Wait() == nil {
		return nil
	}

	var errs []error

	for _, h := range m.harts {
		if err := h.Fault(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (h *Hart) run(entry func(h *Hart)) error {
	done := make(chan struct{})

	go func() {
		defer close(done)

		h.log.WithField("sp", fmt.Sprintf("%#x", h.state.SP)).Debug("reset")
		entry(h)

		// entry is expected to end in mret.
		h.halt(&Fault{Reason: ErrReturned, Addr: h.state.PC})
	}()

	<-done

	return h.fault
}

// Advance moves mtime forward by ticks and delivers the machine timer
// interrupts that became pending, the way timervec handles them: add the
// interval in scratch slot 4 to the compare register named by slot 3 and
// raise a supervisor software interrupt. It must not run during Boot.
func (m *Machine) Advance(ticks uint64) error {
	now := m.clint.Advance(ticks)

	var errs []error

	for _, h := range m.harts {
		if h.fault != nil {
			continue
		}

		if !m.clint.Pending(h.id) {
			h.state.Mip &^= riscv.MipMTIP

			continue
		}

		h.state.Mip |= riscv.MipMTIP

		if h.state.Mie&riscv.MieMTIE == 0 {
			continue
		}

		if h.state.Priv == riscv.PrivM && h.state.Mstatus&riscv.MstatusMIE == 0 {
			continue
		}

		if err := m.timervec(h); err != nil {
			h.fault = err
			h.log.WithError(err).Error("hart halted")
			errs = append(errs, err)

			continue
		}

		h.log.WithField("mtime", now).Debug("timer interrupt")
	}

	return errors.Join(errs...)
}

// stickyBus remembers the first failed access.
type stickyBus struct {
	m   *Machine
	err error
}

func (b *stickyBus) Load64(addr uint64) uint64 {
	var buf [8]byte

	if err := b.m.ReadAt(buf[:], addr); err != nil && b.err == nil {
		b.err = err
	}

	return binary.LittleEndian.Uint64(buf[:])
}

func (b *stickyBus) Store64(addr, val uint64) {
	var buf [8]byte

	binary.LittleEndian.PutUint64(buf[:], val)

	if err := b.m.WriteAt(buf[:], addr); err != nil && b.err == nil {
		b.err = err
	}
}

func (m *Machine) timervec(h *Hart) error {
	h.state.Mcause = 1<<63 | 7 // machine timer interrupt

	if h.state.Mtvec != m.sym.TimerVec {
		return &Fault{Hart: h.id, Reason: ErrNoTrapHandler, Addr: h.state.Mtvec}
	}

	bus := &stickyBus{m: m}
	a := timer.NewArena(bus, m.sym.Scratch)

	owner, ok := a.Hart(h.state.Mscratch)
	if !ok {
		return &Fault{Hart: h.id, Reason: ErrBadScratch, Addr: h.state.Mscratch}
	}

	// The simulator has no general registers for slots 0-2 to save.
	cmp := a.Slot(owner, timer.CompareAddr)
	interval := a.Slot(owner, timer.Interval)
	bus.Store64(cmp, timer.Deadline(bus.Load64(cmp), interval))

	if bus.err != nil {
		return &Fault{Hart: h.id, Reason: errors.Join(ErrAccessFault, bus.err), Addr: cmp}
	}

	// arrange for a supervisor software interrupt after this handler
	// returns.
	h.state.Mip |= riscv.MipSSIP
	h.interrupts++

	if !m.clint.Pending(h.id) {
		h.state.Mip &^= riscv.MipMTIP
	}

	return nil
}
