package riscv

// SetMPP returns status with only the mstatus.MPP field replaced by p.
func SetMPP(status uint64, p Priv) uint64 {
	status &^= MstatusMPP
	status |= uint64(p) << MstatusMPPShift

	return status
}

// MPP extracts the previous-privilege field from an mstatus value.
func MPP(status uint64) Priv {
	return Priv((status & MstatusMPP) >> MstatusMPPShift)
}

// PMPAddr encodes a physical address for a pmpaddr register.
func PMPAddr(pa uint64) uint64 {
	return (pa >> 2) & PMPAddrMax
}
