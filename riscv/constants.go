package riscv

// CSR numbers.
const (
	CSRSstatus    = 0x100
	CSRSie        = 0x104
	CSRStvec      = 0x105
	CSRScounteren = 0x106
	CSRSscratch   = 0x140
	CSRSepc       = 0x141
	CSRScause     = 0x142
	CSRStval      = 0x143
	CSRSip        = 0x144
	CSRSatp       = 0x180

	CSRMstatus    = 0x300
	CSRMisa       = 0x301
	CSRMedeleg    = 0x302
	CSRMideleg    = 0x303
	CSRMie        = 0x304
	CSRMtvec      = 0x305
	CSRMcounteren = 0x306
	CSRMscratch   = 0x340
	CSRMepc       = 0x341
	CSRMcause     = 0x342
	CSRMtval      = 0x343
	CSRMip        = 0x344
	CSRPmpcfg0    = 0x3a0
	CSRPmpaddr0   = 0x3b0

	CSRCycle   = 0xc00
	CSRTime    = 0xc01
	CSRMhartid = 0xf14
)

// Privilege levels as encoded in mstatus.MPP and the CSR number.
type Priv uint8

const (
	PrivU Priv = 0
	PrivS Priv = 1
	// 2 is reserved.
	PrivM Priv = 3
)

func (p Priv) String() string {
	switch p {
	case PrivU:
		return "U"
	case PrivS:
		return "S"
	case PrivM:
		return "M"
	}

	return "reserved"
}

const (
	// golangci-lint dislikes these names. They follow the field names of
	// the privileged architecture manual.

	// mstatus bits.
	MstatusSIE      = 1 << 1
	MstatusMIE      = 1 << 3
	MstatusSPIE     = 1 << 5
	MstatusUBE      = 1 << 6
	MstatusMPIE     = 1 << 7
	MstatusSPP      = 1 << 8
	MstatusVS       = 3 << 9
	MstatusMPPShift = 11
	MstatusMPP      = 3 << MstatusMPPShift
	MstatusFS       = 3 << 13
	MstatusXS       = 3 << 15
	MstatusMPRV     = 1 << 17
	MstatusSUM      = 1 << 18
	MstatusMXR      = 1 << 19
	MstatusUXL      = 3 << 32
	MstatusSD       = 1 << 63

	MstatusMPPU = uint64(PrivU) << MstatusMPPShift
	MstatusMPPS = uint64(PrivS) << MstatusMPPShift
	MstatusMPPM = uint64(PrivM) << MstatusMPPShift

	// sstatus is the S-visible subset of mstatus.
	SstatusSIE  = MstatusSIE
	SstatusSPIE = MstatusSPIE
	SstatusSPP  = MstatusSPP
	SstatusMask = MstatusSIE | MstatusSPIE | MstatusUBE | MstatusSPP | MstatusVS |
		MstatusFS | MstatusXS | MstatusSUM | MstatusMXR | MstatusUXL | MstatusSD

	// mie / mip bits.
	MieSSIE = 1 << 1
	MieMSIE = 1 << 3
	MieSTIE = 1 << 5
	MieMTIE = 1 << 7
	MieSEIE = 1 << 9
	MieMEIE = 1 << 11

	MipSSIP = MieSSIE
	MipMSIP = MieMSIE
	MipSTIP = MieSTIE
	MipMTIP = MieMTIE
	MipSEIP = MieSEIE
	MipMEIP = MieMEIE

	// sie and sip are views of mie and mip restricted to these bits.
	SieSSIE = MieSSIE
	SieSTIE = MieSTIE
	SieSEIE = MieSEIE
	SieMask = SieSSIE | SieSTIE | SieSEIE
	SipMask = SieMask

	// DelegateAll routes every exception and interrupt cause to S-mode.
	DelegateAll = ^uint64(0)

	// PMP configuration byte fields.
	PMPR     = 1 << 0
	PMPW     = 1 << 1
	PMPX     = 1 << 2
	PMPAOff  = 0 << 3
	PMPATOR  = 1 << 3
	PMPANA4  = 2 << 3
	PMPNAPOT = 3 << 3
	PMPL     = 1 << 7

	// PMPAddrMax is the largest value pmpaddr can hold on rv64: bits
	// 55..2 of a 56-bit physical address.
	PMPAddrMax = (uint64(1) << 54) - 1

	// PMPAllRWX is pmpcfg0 for one TOR region granting read, write and
	// execute to S and U mode.
	PMPAllRWX = PMPR | PMPW | PMPX | PMPATOR

	// satp.
	SatpModeShift = 60
	SatpBare      = uint64(0)
	SatpSv39      = uint64(8) << SatpModeShift
)
