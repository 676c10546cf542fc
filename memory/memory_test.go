package memory_test

import (
	"bytes"
	"testing"

	"github.com/bobuhiro11/rvstart/memory"
)

func TestSlot(t *testing.T) {
	t.Parallel()

	s, err := memory.NewSlot("ram", 0x8000_0000, 1<<16)
	if err != nil {
		t.Fatal(err)
	}

	defer s.Close()

	if s.Base() != 0x8000_0000 || s.Size() != 1<<16 {
		t.Fatalf("slot: got [%#x, +%#x)", s.Base(), s.Size())
	}

	b := make([]byte, 8)
	if err := s.Read(0x100, b); err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(b, []byte(memory.Poison)) {
		t.Errorf("fresh RAM: got %x, want poison %x", b, memory.Poison)
	}

	want := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	if err := s.Write(0xfff8, want); err != nil {
		t.Fatal(err)
	}

	if err := s.Read(0xfff8, b); err != nil || !bytes.Equal(b, want) {
		t.Errorf("Read after Write: got (%x, %v), want (%x, nil)", b, err, want)
	}

	if err := s.Write(0xfffc, want); err == nil {
		t.Errorf("Write across the end: got nil, want err")
	}

	if err := s.Read(1<<16, b[:1]); err == nil {
		t.Errorf("Read past the end: got nil, want err")
	}

	if err := s.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestNewSlotZero(t *testing.T) {
	t.Parallel()

	if _, err := memory.NewSlot("empty", 0, 0); err == nil {
		t.Fatal("NewSlot(size 0): got nil, want err")
	}
}

func TestAddressSpace(t *testing.T) {
	t.Parallel()

	as := memory.NewAddressSpace("phys", 0, 1<<32)

	if err := as.AddAddress(memory.NewAddressSpace("clint", 0x200_0000, 0x1_0000)); err != nil {
		t.Fatal(err)
	}

	if err := as.AddAddress(memory.NewAddressSpace("ram", 0x8000_0000, 1<<20)); err != nil {
		t.Fatal(err)
	}

	for _, bad := range []*memory.AddressSpace{
		memory.NewAddressSpace("overlap-low", 0x1ff_ffff, 2),
		memory.NewAddressSpace("inside", 0x8000_1000, 0x10),
		memory.NewAddressSpace("outside", 1<<32, 1),
	} {
		if err := as.AddAddress(bad); err == nil {
			t.Errorf("AddAddress(%s): got nil, want err", bad.Name)
		}
	}

	if r, ok := as.Find(0x200_bff8); !ok || r.Name != "clint" {
		t.Errorf("Find(mtime): got (%v, %v), want clint", r, ok)
	}

	if _, ok := as.Find(0x1000); ok {
		t.Errorf("Find(0x1000): got ok, want not found")
	}
}
