package flag

import (
	"fmt"
	"strconv"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"

	"github.com/bobuhiro11/rvstart/insn"
	"github.com/bobuhiro11/rvstart/machine"
	"github.com/bobuhiro11/rvstart/param"
	"github.com/bobuhiro11/rvstart/riscv"
	"github.com/bobuhiro11/rvstart/timer"
	"github.com/bobuhiro11/rvstart/vmm"
)

type CLI struct {
	Verbose int `short:"v" type:"counter" help:"log more; -vv logs every instruction"`

	Boot   BootCMD   `cmd:"" help:"boot every hart into supervisor mode and report"`
	Disasm DisasmCMD `cmd:"" help:"disassemble instruction words, or the boot trace of every hart"`
	Layout LayoutCMD `cmd:"" help:"print the physical memory layout"`
}

type BootCMD struct {
	NCPUs    int    `short:"c" name:"ncpus" help:"number of harts (default 1)"`
	MemSize  string `short:"m" help:"memory size: as number[gGmMkK], optional units, defaults to M"`
	Interval uint64 `short:"i" help:"timer interval in mtime ticks"`
	File     string `short:"f" name:"config" type:"existingfile" help:"TOML config file"`
	Ticks    int    `short:"t" help:"timer intervals to run after boot"`
}

type DisasmCMD struct {
	NCPUs int      `short:"c" name:"ncpus" default:"1" help:"number of harts to boot"`
	Words []string `arg:"" optional:"" help:"instruction words, e.g. 0x30200073"`
}

type LayoutCMD struct {
	NCPUs int `short:"c" name:"ncpus" default:"1" help:"number of harts"`
}

func Parse() error {
	c := CLI{}

	programName := "rvstart"
	programDesc := "rvstart boots RISC-V harts from machine mode into supervisor mode on a simulated qemu virt board"

	ctx := kong.Parse(&c,
		kong.Name(programName),
		kong.Description(programDesc),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	SetVerbosity(c.Verbose)

	err := ctx.Run()

	return err
}

func SetVerbosity(v int) {
	switch {
	case v >= 2:
		logrus.SetLevel(logrus.TraceLevel)
	case v == 1:
		logrus.SetLevel(logrus.DebugLevel)
	default:
		logrus.SetLevel(logrus.WarnLevel)
	}
}

// Config is the default config, then the config file, then the flags.
func (b *BootCMD) Config() (vmm.Config, error) {
	c := vmm.DefaultConfig()

	if b.File != "" {
		if err := LoadFile(b.File, &c); err != nil {
			return c, err
		}
	}

	f := File{NCPUs: b.NCPUs, MemSize: b.MemSize, Interval: b.Interval}
	if err := f.apply(&c); err != nil {
		return c, err
	}

	return c, c.Validate()
}

func (b *BootCMD) Run(ctx *kong.Context) error {
	c, err := b.Config()
	if err != nil {
		return err
	}

	v := vmm.New(c)
	if err := v.Init(); err != nil {
		return err
	}

	defer v.Close()

	reports, bootErr := v.Boot()

	if bootErr == nil && b.Ticks > 0 {
		if err := v.Run(b.Ticks); err != nil {
			return err
		}

		reports = v.Reports()
	}

	for _, r := range reports {
		fmt.Fprintf(ctx.Stdout, "hart %d: %v-mode pc=%#x tp=%d\n", r.Hart, r.Priv, r.PC, r.TP)

		if r.Fault != nil {
			fmt.Fprintf(ctx.Stdout, "\tfault: %v\n", r.Fault)

			continue
		}

		fmt.Fprintf(ctx.Stdout, "\tmstatus=%#x medeleg=%#x mideleg=%#x sie=%#x satp=%#x\n",
			r.Mstatus, r.Medeleg, r.Mideleg, r.Sie, r.Satp)
		fmt.Fprintf(ctx.Stdout, "\tpmpcfg0=%#x pmpaddr0=%#x mtvec=%#x mscratch=%#x\n",
			r.Pmpcfg0, r.Pmpaddr0, r.Mtvec, r.Mscratch)
		fmt.Fprintf(ctx.Stdout, "\tscratch=%#x mtimecmp=%d interrupts=%d\n",
			r.Scratch, r.Mtimecmp, r.Interrupts)
	}

	return bootErr
}

func (d *DisasmCMD) Run(ctx *kong.Context) error {
	if len(d.Words) > 0 {
		for _, s := range d.Words {
			w, err := strconv.ParseUint(s, 0, 32)
			if err != nil {
				return fmt.Errorf("%q:%w", s, err)
			}

			fmt.Fprintf(ctx.Stdout, "%08x  %s\n", w, insn.Disassemble(insn.Word(w)))
		}

		return nil
	}

	c := vmm.DefaultConfig()
	c.NCPUs = d.NCPUs

	v := vmm.New(c)
	if err := v.Init(); err != nil {
		return err
	}

	defer v.Close()

	reports, err := v.Boot()

	for _, r := range reports {
		fmt.Fprintf(ctx.Stdout, "hart %d:\n", r.Hart)

		for _, l := range r.Trace {
			fmt.Fprintln(ctx.Stdout, l)
		}
	}

	return err
}

func (l *LayoutCMD) Run(ctx *kong.Context) error {
	if l.NCPUs < 1 || l.NCPUs > param.NCPU {
		return fmt.Errorf("%d, want 1..%d:%w", l.NCPUs, param.NCPU, vmm.ErrNCPUs)
	}

	sym := machine.DefaultSymbols()
	arena := timer.NewArena(nil, sym.Scratch)

	fmt.Fprintf(ctx.Stdout, "%-10s %#x\n", "uart0", riscv.UART0)
	fmt.Fprintf(ctx.Stdout, "%-10s %#x\n", "virtio0", riscv.VIRTIO0)
	fmt.Fprintf(ctx.Stdout, "%-10s %#x\n", "clint", riscv.CLINT)
	fmt.Fprintf(ctx.Stdout, "%-10s %#x\n", "mtime", riscv.CLINTMtime)
	fmt.Fprintf(ctx.Stdout, "%-10s %#x\n", "plic", riscv.PLIC)
	fmt.Fprintf(ctx.Stdout, "%-10s %#x\n", "_entry", sym.Entry)
	fmt.Fprintf(ctx.Stdout, "%-10s %#x\n", "timervec", sym.TimerVec)
	fmt.Fprintf(ctx.Stdout, "%-10s %#x\n", "main", sym.Main)
	fmt.Fprintf(ctx.Stdout, "%-10s %#x\n", "stack0", sym.Stack0)
	fmt.Fprintf(ctx.Stdout, "%-10s %#x\n", "timer_scratch", sym.Scratch)

	for h := 0; h < l.NCPUs; h++ {
		fmt.Fprintf(ctx.Stdout, "hart %d: sp=%#x mtimecmp=%#x msip=%#x mscratch=%#x\n",
			h, riscv.StackTop(sym.Stack0, h), riscv.CLINTMtimecmp(h), riscv.CLINTMsip(h), arena.Addr(h))
	}

	return nil
}
