// Package serial is the 16550a UART qemu virt puts at UART0.
package serial

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/bobuhiro11/rvstart/mmio"
	"github.com/bobuhiro11/rvstart/riscv"
)

const Size = 0x100

// Register offsets.
const (
	RHR = 0 // receive holding register (for input bytes)
	THR = 0 // transmit holding register (for output bytes)
	IER = 1 // interrupt enable register
	FCR = 2 // FIFO control register
	ISR = 2 // interrupt status register
	LCR = 3 // line control register
	MCR = 4
	LSR = 5 // line status register
	MSR = 6
	SCR = 7
)

const (
	LCRBaudLatch = 1 << 7 // special mode to set baud rate
	LSRRxReady   = 1 << 0 // input is waiting to be read from RHR
	LSRTxIdle    = 1 << 5 // THR can accept another character to send
	LSRTxEmpty   = 1 << 6
)

var errWidth = errors.New("uart registers are one byte wide")

type Serial struct {
	IER byte
	LCR byte
	FCR byte
	MCR byte
	SCR byte
	DLL byte
	DLM byte

	mu        sync.Mutex
	out       io.Writer
	inputChan chan byte
}

var _ mmio.Device = &Serial{}

func New(out io.Writer) *Serial {
	return &Serial{
		out:       out,
		inputChan: make(chan byte, 10000),
	}
}

func (s *Serial) GetInputChan() chan<- byte {
	return s.inputChan
}

func (s *Serial) SetOutput(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.out = w
}

func (s *Serial) Base() uint64 {
	return riscv.UART0
}

func (s *Serial) Size() uint64 {
	return Size
}

func (s *Serial) dlab() bool {
	return s.LCR&LCRBaudLatch != 0
}

func (s *Serial) Read(off uint64, b []byte) error {
	if len(b) != 1 {
		return fmt.Errorf("uart read %#x len=%d:%w", off, len(b), errWidth)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case off == RHR && !s.dlab():
		b[0] = 0
		if len(s.inputChan) > 0 {
			b[0] = <-s.inputChan
		}
	case off == RHR && s.dlab():
		b[0] = s.DLL
	case off == IER && !s.dlab():
		b[0] = s.IER
	case off == IER && s.dlab():
		b[0] = s.DLM
	case off == ISR:
		b[0] = 0x1 // no interrupt pending
	case off == LCR:
		b[0] = s.LCR
	case off == MCR:
		b[0] = s.MCR
	case off == LSR:
		b[0] = LSRTxIdle | LSRTxEmpty
		if len(s.inputChan) > 0 {
			b[0] |= LSRRxReady
		}
	case off == MSR:
		b[0] = 0
	case off == SCR:
		b[0] = s.SCR
	default:
		b[0] = 0
	}

	return nil
}

func (s *Serial) Write(off uint64, b []byte) error {
	if len(b) != 1 {
		return fmt.Errorf("uart write %#x len=%d:%w", off, len(b), errWidth)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	v := b[0]

	switch {
	case off == THR && !s.dlab():
		if _, err := s.out.Write(b); err != nil {
			return fmt.Errorf("uart output:%w", err)
		}
	case off == THR && s.dlab():
		s.DLL = v
	case off == IER && !s.dlab():
		s.IER = v
	case off == IER && s.dlab():
		s.DLM = v
	case off == FCR:
		s.FCR = v
	case off == LCR:
		s.LCR = v
	case off == MCR:
		s.MCR = v
	case off == SCR:
		s.SCR = v
	default:
		logrus.Debugf("uart: write %#x to %#x ignored", v, off)
	}

	return nil
}
