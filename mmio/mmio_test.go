package mmio_test

import (
	"testing"

	"github.com/bobuhiro11/rvstart/mmio"
)

func TestCheckAligned(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		off  uint64
		size int
		ok   bool
	}{
		{0, 8, true},
		{8, 8, true},
		{4, 8, false},
		{4, 4, true},
		{2, 4, false},
		{0, 0, false},
	} {
		err := mmio.CheckAligned(tt.off, make([]byte, tt.size))
		if (err == nil) != tt.ok {
			t.Errorf("CheckAligned(%#x, %d): got %v, want ok=%v", tt.off, tt.size, err, tt.ok)
		}
	}
}
