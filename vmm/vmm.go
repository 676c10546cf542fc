package vmm

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/bobuhiro11/rvstart/boot"
	"github.com/bobuhiro11/rvstart/machine"
	"github.com/bobuhiro11/rvstart/param"
	"github.com/bobuhiro11/rvstart/riscv"
	"github.com/bobuhiro11/rvstart/timer"
)

var (
	ErrNCPUs   = errors.New("number of harts out of range")
	ErrMemSize = errors.New("memory size too small")
	ErrNotInit = errors.New("vmm not initialized")
)

type Config struct {
	NCPUs    int
	MemSize  int
	Interval uint64
}

func DefaultConfig() Config {
	return Config{
		NCPUs:    1,
		MemSize:  machine.DefaultMemSize,
		Interval: timer.DefaultInterval,
	}
}

func (c Config) Validate() error {
	if c.NCPUs < 1 || c.NCPUs > param.NCPU {
		return fmt.Errorf("%d, want 1..%d:%w", c.NCPUs, param.NCPU, ErrNCPUs)
	}

	if c.MemSize < machine.MinMemSize {
		return fmt.Errorf("%#x, want at least %#x:%w", c.MemSize, machine.MinMemSize, ErrMemSize)
	}

	return nil
}

type VMM struct {
	*machine.Machine
	Config
}

func New(c Config) *VMM {
	return &VMM{
		Machine: nil,
		Config:  c,
	}
}

// Init instantiates a machine.
func (v *VMM) Init() error {
	if err := v.Validate(); err != nil {
		return err
	}

	m, err := machine.New(v.NCPUs, v.MemSize)
	if err != nil {
		return err
	}

	v.Machine = m

	return nil
}

// Report is what a hart looked like when it left machine mode, and what
// became of it afterwards.
type Report struct {
	Hart int
	Priv riscv.Priv
	PC   uint64
	TP   uint64

	// At mret.
	Mstatus  uint64
	Medeleg  uint64
	Mideleg  uint64
	Sie      uint64
	Satp     uint64
	Pmpcfg0  uint64
	Pmpaddr0 uint64
	Mtvec    uint64
	Mscratch uint64

	Scratch    [timer.Words]uint64
	Mtimecmp   uint64
	Interrupts int
	Trace      []string
	Fault      error
}

// Boot runs boot.Start on every hart and reports on each of them. A hart
// fault does not stop the others; the faults are returned joined, next to
// the reports.
func (v *VMM) Boot() ([]Report, error) {
	if v.Machine == nil {
		return nil, ErrNotInit
	}

	sym := v.Symbols()

	for i := 0; i < v.NCPUs; i++ {
		logrus.WithField("hart", i).Infof("Start hart %d of %d", i, v.NCPUs)
	}

	err := v.Machine.Boot(func(h *machine.Hart) {
		boot.Start(h, h, boot.Layout{
			Main:     sym.Main,
			TimerVec: sym.TimerVec,
			Scratch:  timer.NewArena(h, sym.Scratch),
			Interval: v.Interval,
		})
	})

	logrus.Info("All harts done")

	return v.Reports(), err
}

// Run lets intervals timer intervals go by, one at a time.
func (v *VMM) Run(intervals int) error {
	if v.Machine == nil {
		return ErrNotInit
	}

	for i := 0; i < intervals; i++ {
		if err := v.Advance(v.Interval); err != nil {
			return fmt.Errorf("interval %d:%w", i, err)
		}
	}

	return nil
}

func (v *VMM) Reports() []Report {
	sym := v.Symbols()
	arena := timer.NewArena(wordBus{v.Machine}, sym.Scratch)
	reports := make([]Report, 0, len(v.Harts()))

	for _, h := range v.Harts() {
		s := h.State()
		r := Report{
			Hart:       h.ID(),
			Priv:       s.Priv,
			PC:         s.PC,
			TP:         s.TP,
			Mtimecmp:   v.CLINT().Mtimecmp(h.ID()),
			Interrupts: h.Interrupts(),
			Trace:      h.Disassemble(),
			Fault:      h.Fault(),
		}

		if x, ok := h.ExitState(); ok {
			r.Mstatus = x.Mstatus
			r.Medeleg = x.Medeleg
			r.Mideleg = x.Mideleg
			r.Sie = x.Mie & riscv.SieMask
			r.Satp = x.Satp
			r.Pmpcfg0 = x.Pmpcfg0
			r.Pmpaddr0 = x.Pmpaddr0
			r.Mtvec = x.Mtvec
			r.Mscratch = x.Mscratch
		}

		for slot := range r.Scratch {
			r.Scratch[slot] = arena.Slot(h.ID(), slot)
		}

		reports = append(reports, r)
	}

	return reports
}

// wordBus reads memory from outside any hart. Scratch lives in RAM, so
// errors do not happen; a failed read yields 0.
type wordBus struct {
	m *machine.Machine
}

func (b wordBus) Load64(addr uint64) uint64 {
	v, err := b.m.ReadWord(addr)
	if err != nil {
		logrus.WithError(err).Warnf("read %#x", addr)
	}

	return v
}

func (b wordBus) Store64(addr, val uint64) {
	if err := b.m.WriteWord(addr, val); err != nil {
		logrus.WithError(err).Warnf("write %#x", addr)
	}
}
