package riscv_test

import (
	"math/rand"
	"testing"

	"github.com/bobuhiro11/rvstart/riscv"
)

func TestSetMPPIsolation(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(3))
	statuses := []uint64{0, ^uint64(0), riscv.MstatusMPPM, riscv.MstatusMIE | riscv.MstatusSIE}

	for i := 0; i < 512; i++ {
		statuses = append(statuses, r.Uint64())
	}

	for _, s := range statuses {
		got := riscv.SetMPP(s, riscv.PrivS)

		if riscv.MPP(got) != riscv.PrivS {
			t.Fatalf("SetMPP(%#x, S): MPP is %v, want S", s, riscv.MPP(got))
		}

		if diff := (got ^ s) &^ riscv.MstatusMPP; diff != 0 {
			t.Fatalf("SetMPP(%#x, S) = %#x: bits %#x outside MPP changed", s, got, diff)
		}
	}
}

func TestPrivString(t *testing.T) {
	t.Parallel()

	for p, want := range map[riscv.Priv]string{
		riscv.PrivU: "U",
		riscv.PrivS: "S",
		riscv.PrivM: "M",
		2:           "reserved",
	} {
		if p.String() != want {
			t.Errorf("Priv(%d).String(): got %q, want %q", p, p.String(), want)
		}
	}
}

func TestCLINTLayout(t *testing.T) {
	t.Parallel()

	if got := riscv.CLINTMtimecmp(0); got != 0x200_4000 {
		t.Errorf("CLINTMtimecmp(0): got %#x, want 0x2004000", got)
	}

	if got := riscv.CLINTMtimecmp(3); got != 0x200_4018 {
		t.Errorf("CLINTMtimecmp(3): got %#x, want 0x2004018", got)
	}

	if riscv.CLINTMtime != 0x200_bff8 {
		t.Errorf("CLINTMtime: got %#x, want 0x200bff8", uint64(riscv.CLINTMtime))
	}

	if got := riscv.StackTop(0x8001_0000, 1); got != 0x8001_2000 {
		t.Errorf("StackTop(0x80010000, 1): got %#x, want 0x80012000", got)
	}
}

func TestPMP(t *testing.T) {
	t.Parallel()

	if riscv.PMPAddrMax != 0x3f_ffff_ffff_ffff {
		t.Errorf("PMPAddrMax: got %#x, want 0x3fffffffffffff", riscv.PMPAddrMax)
	}

	if riscv.PMPAllRWX != 0xf {
		t.Errorf("PMPAllRWX: got %#x, want 0xf", riscv.PMPAllRWX)
	}

	if got := riscv.PMPAddr(^uint64(0)); got != riscv.PMPAddrMax {
		t.Errorf("PMPAddr(~0): got %#x, want %#x", got, riscv.PMPAddrMax)
	}
}
