// Package lock holds the kernel's mutual exclusion lock.
package lock

// Spinlock is a mutual exclusion lock shared by harts.
type Spinlock struct {
	Locked uint32 // is the lock held?

	// For debugging:
	Name string // name of lock.
	CPU  int    // the hart holding the lock, -1 if none.
}

func New(name string) *Spinlock {
	return &Spinlock{Name: name, CPU: -1}
}

// Holding reports whether the lock is held by hart.
func (l *Spinlock) Holding(hart int) bool {
	return l.Locked != 0 && l.CPU == hart
}
