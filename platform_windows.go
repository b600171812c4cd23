//go:build windows

package mregion

import (
	"golang.org/x/sys/windows"

	"github.com/Giulio2002/mregion/internal/osmap"
)

// allocationGranularity is the alignment MapViewOfFile requires of file offsets.
const allocationGranularity = 64 << 10

var windowsProtection = map[Protection]int{
	NoAccess:         windows.PAGE_NOACCESS,
	ReadOnly:         windows.PAGE_READONLY,
	ReadWrite:        windows.PAGE_READWRITE,
	Execute:          windows.PAGE_EXECUTE,
	ReadExecute:      windows.PAGE_EXECUTE_READ,
	ReadWriteExecute: windows.PAGE_EXECUTE_READWRITE,
}

// Writable pages of a copy-on-write view must use the WRITECOPY protections.
var windowsCopyProtection = map[Protection]int{
	NoAccess:         windows.PAGE_NOACCESS,
	ReadOnly:         windows.PAGE_READONLY,
	ReadWrite:        windows.PAGE_WRITECOPY,
	Execute:          windows.PAGE_EXECUTE,
	ReadExecute:      windows.PAGE_EXECUTE_READ,
	ReadWriteExecute: windows.PAGE_EXECUTE_WRITECOPY,
}

var windowsVisibility = map[Visibility]int{
	Private: windows.FILE_MAP_COPY,
	Shared:  0,
}

var windowsSync = map[SyncMode]int{
	Synchronous:  osmap.SyncFileBuffers,
	Asynchronous: 0,
}

// windowsFlags supports every combination: shared anonymous regions are
// pagefile-backed sections and protections are applied per view.
type windowsFlags struct{}

var platform PlatformFlags = windowsFlags{}

func (windowsFlags) Name() string { return "windows" }

func (windowsFlags) Protection(p Protection, v Visibility) int {
	if v == Private {
		return lookup(windowsCopyProtection, "protection", p)
	}
	return lookup(windowsProtection, "protection", p)
}

func (windowsFlags) Visibility(v Visibility) int {
	return lookup(windowsVisibility, "visibility", v)
}

// Anonymous is zero: anonymous sections are requested through the
// pagefile handle, not a flag.
func (windowsFlags) Anonymous() int { return 0 }

func (windowsFlags) Sync(m SyncMode) int {
	return lookup(windowsSync, "sync", m)
}

// Advice is ignored on Windows.
func (windowsFlags) Advice(Advice) int { return 0 }

func (windowsFlags) Supports(Protection, Visibility, bool) error { return nil }

func (windowsFlags) OffsetAlignment() int64 { return allocationGranularity }
