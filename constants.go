package mregion

import (
	"fmt"
	"os"
)

// Protection is the set of access rights on a mapped region.
type Protection uint8

const (
	protRead Protection = 1 << iota
	protWrite
	protExec
)

// Legal protection values. Write access always implies read access.
const (
	NoAccess         Protection = 0
	ReadOnly                    = protRead
	ReadWrite                   = protRead | protWrite
	Execute                     = protExec
	ReadExecute                 = protRead | protExec
	ReadWriteExecute            = protRead | protWrite | protExec
)

// Protections lists every legal protection value.
var Protections = []Protection{NoAccess, ReadOnly, ReadWrite, Execute, ReadExecute, ReadWriteExecute}

func (p Protection) valid() bool {
	return p&^ReadWriteExecute == 0 && (p&protWrite == 0 || p&protRead != 0)
}

// Writable returns true if p grants write access.
func (p Protection) Writable() bool { return p&protWrite != 0 }

// Executable returns true if p grants execute access.
func (p Protection) Executable() bool { return p&protExec != 0 }

// String renders p in ls style, e.g. "r-x".
func (p Protection) String() string {
	if !p.valid() {
		return fmt.Sprintf("Protection(%#x)", uint8(p))
	}
	b := []byte("---")
	if p&protRead != 0 {
		b[0] = 'r'
	}
	if p&protWrite != 0 {
		b[1] = 'w'
	}
	if p&protExec != 0 {
		b[2] = 'x'
	}
	return string(b)
}

// Visibility controls whether writes reach other mappers of the same backing object.
type Visibility uint8

const (
	// Private mappings are copy-on-write; writes stay in this process.
	Private Visibility = iota
	// Shared mappings write through to the backing object.
	Shared
)

// Visibilities lists every visibility value.
var Visibilities = []Visibility{Private, Shared}

func (v Visibility) valid() bool { return v <= Shared }

func (v Visibility) String() string {
	switch v {
	case Private:
		return "private"
	case Shared:
		return "shared"
	}
	return fmt.Sprintf("Visibility(%d)", uint8(v))
}

// SyncMode selects whether Flush waits for the write-back.
type SyncMode uint8

const (
	// Synchronous blocks until dirty pages are durably written.
	Synchronous SyncMode = iota
	// Asynchronous schedules the write-back and returns immediately.
	Asynchronous
)

func (m SyncMode) valid() bool { return m <= Asynchronous }

func (m SyncMode) String() string {
	switch m {
	case Synchronous:
		return "sync"
	case Asynchronous:
		return "async"
	}
	return fmt.Sprintf("SyncMode(%d)", uint8(m))
}

// Advice is a hint about how a region will be accessed.
type Advice uint8

const (
	AdviceNormal Advice = iota
	AdviceSequential
	AdviceRandom
	AdviceWillNeed
	AdviceDontNeed
)

func (a Advice) valid() bool { return a <= AdviceDontNeed }

// State is the lifecycle state of a Region.
type State uint8

const (
	// Unmapped is terminal; every operation fails. The zero Region is Unmapped.
	Unmapped State = iota
	// Active regions can be used.
	Active
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "unmapped"
}

// sysPageSize is the system's memory page size, cached at init time.
var sysPageSize = os.Getpagesize()

// PageSize returns the size every region length is rounded up to.
func PageSize() int {
	return sysPageSize
}

// alignUp rounds n up to a multiple of align, a power of two.
// Returns false on overflow.
func alignUp(n, align int) (int, bool) {
	r := (n + align - 1) &^ (align - 1)
	return r, r >= n
}
