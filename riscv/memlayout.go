package riscv

import "github.com/bobuhiro11/rvstart/param"

// Physical memory layout of qemu -machine virt, from qemu's hw/riscv/virt.c.
//
//	00001000 -- boot ROM, provided by qemu
//	02000000 -- CLINT
//	0C000000 -- PLIC
//	10000000 -- uart0
//	10001000 -- virtio disk
//	80000000 -- boot ROM jumps here in machine mode
//	            -kernel loads the kernel here
//	unused RAM after 80000000.
const (
	UART0    = 0x1000_0000
	UART0IRQ = 10

	VIRTIO0    = 0x1000_1000
	VIRTIO0IRQ = 1

	// core local interruptor (CLINT), which contains the timer.
	CLINT       = 0x0200_0000
	CLINTSize   = 0x1_0000
	CLINTMtime  = CLINT + 0xbff8
	clintMsip   = CLINT + 0x0
	clintCmpOff = 0x4000

	PLIC = 0x0c00_0000

	KERNBASE = 0x8000_0000
	PHYSTOP  = KERNBASE + 128*1024*1024
)

// CLINTMtimecmp returns the address of hart's timer-compare register.
func CLINTMtimecmp(hart int) uint64 {
	return CLINT + clintCmpOff + 8*uint64(hart)
}

// CLINTMsip returns the address of hart's machine software interrupt
// pending register.
func CLINTMsip(hart int) uint64 {
	return clintMsip + 4*uint64(hart)
}

// StackTop returns the initial stack pointer of hart, given the base of
// the boot stack array. Stacks grow down, so hart h owns
// [stack0 + h*KStackSize, stack0 + (h+1)*KStackSize).
// stack0 + h*KStackSize is the base of that slice; StackTop is its top.
func StackTop(stack0 uint64, hart int) uint64 {
	return stack0 + uint64(hart+1)*param.KStackSize
}
