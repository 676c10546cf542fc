package boot_test

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bobuhiro11/rvstart/boot"
	"github.com/bobuhiro11/rvstart/csr"
	"github.com/bobuhiro11/rvstart/insn"
	"github.com/bobuhiro11/rvstart/machine"
	"github.com/bobuhiro11/rvstart/memory"
	"github.com/bobuhiro11/rvstart/riscv"
	"github.com/bobuhiro11/rvstart/timer"
)

func newMachine(t *testing.T, nCpus int) *machine.Machine {
	t.Helper()

	m, err := machine.New(nCpus, machine.DefaultMemSize)
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() { m.Close() })

	return m
}

func start(m *machine.Machine, interval uint64) func(h *machine.Hart) {
	sym := m.Symbols()

	return func(h *machine.Hart) {
		boot.Start(h, h, boot.Layout{
			Main:     sym.Main,
			TimerVec: sym.TimerVec,
			Scratch:  timer.NewArena(h, sym.Scratch),
			Interval: interval,
		})
	}
}

func TestStart(t *testing.T) {
	t.Parallel()

	m := newMachine(t, 2)
	sym := m.Symbols()

	var inMain [2]bool

	m.SetCode(sym.Main, func(h *machine.Hart) {
		inMain[h.ID()] = csr.CPUID(h) == h.ID()
	})

	if err := m.Boot(start(m, timer.DefaultInterval)); err != nil {
		t.Fatal(err)
	}

	for i, h := range m.Harts() {
		id := uint64(i)

		if s := h.State(); s.Priv != riscv.PrivS || s.PC != sym.Main {
			t.Errorf("hart %d: got %v-mode at %#x, want S-mode at %#x", i, s.Priv, s.PC, sym.Main)
		}

		if !inMain[i] {
			t.Errorf("hart %d: main did not run with tp = hartid", i)
		}

		got, ok := h.ExitState()
		if !ok {
			t.Fatalf("hart %d never executed mret", i)
		}

		want := machine.State{
			Priv:     riscv.PrivM,
			PC:       sym.Entry,
			SP:       riscv.StackTop(sym.Stack0, i),
			TP:       id,
			Mhartid:  id,
			Mstatus:  riscv.MstatusMPPS | riscv.MstatusMIE,
			Mepc:     sym.Main,
			Medeleg:  0xffff_ffff_ffff_ffff,
			Mideleg:  0xffff_ffff_ffff_ffff,
			Mie:      riscv.SieSEIE | riscv.SieSTIE | riscv.SieSSIE | riscv.MieMTIE,
			Mtvec:    sym.TimerVec,
			Mscratch: sym.Scratch + id*timer.Size,
			Pmpcfg0:  0xf,
			Pmpaddr0: 0x3f_ffff_ffff_ffff,
		}

		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("hart %d state at mret mismatch (-want +got):\n%s", i, diff)
		}

		if got := m.CLINT().Mtimecmp(i); got != timer.DefaultInterval {
			t.Errorf("hart %d mtimecmp: got %d, want %d", i, got, timer.DefaultInterval)
		}
	}
}

func TestStartScratch(t *testing.T) {
	t.Parallel()

	m := newMachine(t, 2)
	sym := m.Symbols()

	if err := m.Boot(start(m, 12345)); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		base := sym.Scratch + uint64(i)*timer.Size

		want := []uint64{
			memory.PoisonWord,
			memory.PoisonWord,
			memory.PoisonWord,
			riscv.CLINTMtimecmp(i),
			12345,
		}

		for slot, w := range want {
			got, err := m.ReadWord(base + 8*uint64(slot))
			if err != nil {
				t.Fatal(err)
			}

			if got != w {
				t.Errorf("hart %d slot %d: got %#x, want %#x", i, slot, got, w)
			}
		}
	}

	// the area of a hart that was not started stays untouched.
	for slot := 0; slot < timer.Words; slot++ {
		got, err := m.ReadWord(sym.Scratch + 2*timer.Size + 8*uint64(slot))
		if err != nil {
			t.Fatal(err)
		}

		if got != memory.PoisonWord {
			t.Errorf("hart 2 slot %d: got %#x, want poison", slot, got)
		}
	}
}

func TestStartOrder(t *testing.T) {
	t.Parallel()

	m := newMachine(t, 1)

	if err := m.Boot(start(m, timer.DefaultInterval)); err != nil {
		t.Fatal(err)
	}

	h := m.Hart(0)

	want := []uint16{
		riscv.CSRMstatus,
		riscv.CSRMepc,
		riscv.CSRSatp,
		riscv.CSRMedeleg,
		riscv.CSRMideleg,
		riscv.CSRSie,
		riscv.CSRPmpaddr0,
		riscv.CSRPmpcfg0,
		riscv.CSRMtvec,
		riscv.CSRMscratch,
		riscv.CSRMstatus,
		riscv.CSRMie,
	}

	if diff := cmp.Diff(want, h.CSRWrites()); diff != "" {
		t.Errorf("csr writes mismatch (-want +got):\n%s", diff)
	}

	tr := h.Trace()
	if len(tr) < 2 {
		t.Fatalf("trace too short: %v", h.Disassemble())
	}

	if tr[len(tr)-1] != insn.MRET {
		t.Errorf("last instruction: got %s, want mret", machine.Asm(tr[len(tr)-1]))
	}

	if tr[len(tr)-2] != insn.MvTPA0 {
		t.Errorf("instruction before mret: got %s, want mv tp,a0", machine.Asm(tr[len(tr)-2]))
	}

	lines := h.Disassemble()
	if last := lines[len(lines)-1]; !strings.HasSuffix(last, "mret") {
		t.Errorf("last line: got %q, want mret", last)
	}
}

func TestStartKeepsOtherStatusBits(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(1))

	for n := 0; n < 32; n++ {
		m := newMachine(t, 1)
		h := m.Hart(0)

		s := h.State()
		s.Mstatus = r.Uint64()
		s.Mie = r.Uint64()
		h.SetState(s)

		if err := m.Boot(start(m, timer.DefaultInterval)); err != nil {
			t.Fatalf("mstatus %#x: %v", s.Mstatus, err)
		}

		got, _ := h.ExitState()

		if want := riscv.SetMPP(s.Mstatus, riscv.PrivS) | riscv.MstatusMIE; got.Mstatus != want {
			t.Errorf("mstatus %#x: got %#x, want %#x", s.Mstatus, got.Mstatus, want)
		}

		if want := s.Mie | boot.SupervisorInterrupts | riscv.MieMTIE; got.Mie != want {
			t.Errorf("mie %#x: got %#x, want %#x", s.Mie, got.Mie, want)
		}
	}
}

func TestStartEveryHart(t *testing.T) {
	t.Parallel()

	for n := 1; n <= 8; n++ {
		m := newMachine(t, n)

		if err := m.Boot(start(m, timer.DefaultInterval)); err != nil {
			t.Fatalf("%d harts: %v", n, err)
		}

		for _, h := range m.Harts() {
			s, _ := h.ExitState()
			if s.Medeleg != ^uint64(0) || s.Mideleg != ^uint64(0) {
				t.Errorf("%d harts, hart %d: medeleg %#x mideleg %#x", n, h.ID(), s.Medeleg, s.Mideleg)
			}

			if s.Satp != 0 || s.TP != uint64(h.ID()) {
				t.Errorf("%d harts, hart %d: satp %#x tp %d", n, h.ID(), s.Satp, s.TP)
			}
		}
	}
}

func TestFuncAddr(t *testing.T) {
	t.Parallel()

	if boot.FuncAddr(boot.Start) == 0 {
		t.Errorf("FuncAddr(Start): got 0")
	}

	if boot.FuncAddr(boot.Start) == boot.FuncAddr(boot.FuncAddr) {
		t.Errorf("FuncAddr: Start and FuncAddr share an address")
	}
}
