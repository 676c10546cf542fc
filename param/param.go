package param

// Kernel sizing constants. Every subsystem that sizes a per-hart or
// per-process table agrees on these values.
const (
	NPROC       = 64   // maximum number of processes
	NCPU        = 8    // maximum number of harts
	NOFILE      = 16   // open files per process
	NFILE       = 100  // open files per system
	NINODE      = 50   // maximum number of active i-nodes
	NDEV        = 10   // maximum major device number
	ROOTDEV     = 1    // device number of file system root disk
	MAXARG      = 32   // max exec arguments
	MAXOPBLOCKS = 10   // max # of blocks any FS op writes
	LOGSIZE     = MAXOPBLOCKS * 3
	NBUF        = MAXOPBLOCKS * 3
	FSSIZE      = 2000 // size of file system in blocks
	MAXPATH     = 128

	// PGSIZE is the size of a page and of each hart's boot stack.
	PGSIZE = 4096

	// KStackSize is the boot stack every hart gets at reset.
	KStackSize = PGSIZE
)
