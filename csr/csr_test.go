package csr_test

import (
	"os"
	"regexp"
	"strconv"
	"testing"

	"github.com/bobuhiro11/rvstart/csr"
	"github.com/bobuhiro11/rvstart/insn"
	"github.com/bobuhiro11/rvstart/riscv"
)

type fakeSupervisor struct {
	csr.Supervisor
	sstatus uint64
	writes  int
}

func (f *fakeSupervisor) Sstatus() uint64 { return f.sstatus }

func (f *fakeSupervisor) SetSstatus(x uint64) {
	f.sstatus = x
	f.writes++
}

func TestIntr(t *testing.T) {
	t.Parallel()

	const other = riscv.SstatusSPP | riscv.SstatusSPIE | riscv.MstatusSUM

	f := &fakeSupervisor{sstatus: other}

	if csr.IntrGet(f) {
		t.Fatalf("IntrGet: got true, want false")
	}

	csr.IntrOn(f)

	if !csr.IntrGet(f) || f.sstatus != other|riscv.SstatusSIE {
		t.Fatalf("IntrOn: sstatus %#x, want %#x", f.sstatus, uint64(other|riscv.SstatusSIE))
	}

	csr.IntrOff(f)

	if csr.IntrGet(f) || f.sstatus != other {
		t.Fatalf("IntrOff: sstatus %#x, want %#x", f.sstatus, uint64(other))
	}

	if f.writes != 2 {
		t.Errorf("writes: got %d, want 2", f.writes)
	}
}

// The assembly stubs carry hand-written instruction words; make sure they
// agree with the encoder.
func TestStubWords(t *testing.T) {
	t.Parallel()

	b, err := os.ReadFile("hw_riscv64.s")
	if err != nil {
		t.Fatal(err)
	}

	numbers := map[string]uint16{
		"mhartid":    riscv.CSRMhartid,
		"mstatus":    riscv.CSRMstatus,
		"mepc":       riscv.CSRMepc,
		"medeleg":    riscv.CSRMedeleg,
		"mideleg":    riscv.CSRMideleg,
		"mie":        riscv.CSRMie,
		"mtvec":      riscv.CSRMtvec,
		"mscratch":   riscv.CSRMscratch,
		"mcause":     riscv.CSRMcause,
		"mtval":      riscv.CSRMtval,
		"mcounteren": riscv.CSRMcounteren,
		"pmpcfg0":    riscv.CSRPmpcfg0,
		"pmpaddr0":   riscv.CSRPmpaddr0,
		"sstatus":    riscv.CSRSstatus,
		"sie":        riscv.CSRSie,
		"sip":        riscv.CSRSip,
		"sepc":       riscv.CSRSepc,
		"stvec":      riscv.CSRStvec,
		"satp":       riscv.CSRSatp,
		"scause":     riscv.CSRScause,
		"stval":      riscv.CSRStval,
		"time":       riscv.CSRTime,
	}

	re := regexp.MustCompile(`WORD\s+\$0x([0-9a-f]+)\s+// (csrr a0,|csrw) (\w+)`)

	matches := re.FindAllStringSubmatch(string(b), -1)
	if len(matches) != 38 {
		t.Fatalf("found %d csr stubs, want 38", len(matches))
	}

	for _, m := range matches {
		w, err := strconv.ParseUint(m[1], 16, 32)
		if err != nil {
			t.Fatal(err)
		}

		n, ok := numbers[m[3]]
		if !ok {
			t.Fatalf("unknown csr %q", m[3])
		}

		want := insn.CSRRead(n)
		if m[2] == "csrw" {
			want = insn.CSRWrite(n)
		}

		if insn.Word(w) != want {
			t.Errorf("%s %s: stub has %#08x, encoder says %#08x", m[2], m[3], w, uint32(want))
		}
	}

	moves := map[string]insn.Word{
		"a0, sp": insn.MvA0SP,
		"a0, ra": insn.MvA0RA,
		"a0, tp": insn.MvA0TP,
		"tp, a0": insn.MvTPA0,
	}

	mv := regexp.MustCompile(`WORD\s+\$0x([0-9a-f]+)\s+// mv (\w+, \w+)`)

	found := mv.FindAllStringSubmatch(string(b), -1)
	if len(found) != len(moves) {
		t.Fatalf("found %d mv stubs, want %d", len(found), len(moves))
	}

	for _, m := range found {
		w, err := strconv.ParseUint(m[1], 16, 32)
		if err != nil {
			t.Fatal(err)
		}

		want, ok := moves[m[2]]
		if !ok {
			t.Fatalf("unexpected mv %s", m[2])
		}

		if insn.Word(w) != want {
			t.Errorf("mv %s: stub has %#08x, want %#08x", m[2], w, uint32(want))
		}

		delete(moves, m[2])
	}

	// general registers other than a0 go through WORD, never by name.
	if regexp.MustCompile(`MOV\s+[^\n]*\bX(2|4)\b`).Match(b) {
		t.Errorf("stubs name sp or tp as a register operand")
	}

	for _, w := range []insn.Word{insn.MRET, insn.SFENCEVMA} {
		if !regexp.MustCompile(`WORD\s+\$0x` + strconv.FormatUint(uint64(w), 16) + `\b`).Match(b) {
			t.Errorf("%#08x (%s) missing from stubs", uint32(w), insn.Disassemble(w))
		}
	}
}
