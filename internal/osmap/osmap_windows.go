//go:build windows

package osmap

import (
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

// SyncFileBuffers is the Flush flag that also flushes the file's buffers,
// making the flush durable. Without it FlushViewOfFile only starts the writes.
const SyncFileBuffers = 1

// Map creates a new mapping.
//
// Mapping is a two-step process: CreateFileMapping gives a section handle and
// MapViewOfFile maps it. The view keeps the section alive, so the section
// handle is closed before returning. Anonymous mappings are pagefile-backed
// sections created with full access; the requested protection is then applied
// with VirtualProtect.
func Map(req Request) ([]byte, error) {
	if req.Length <= 0 {
		return nil, ErrInvalidSize
	}

	prot := uint32(req.Prot)
	private := req.Flags&windows.FILE_MAP_COPY != 0

	handle := windows.Handle(req.Fd)
	maxSize := uint64(req.Offset) + uint64(req.Length)
	offset := uint64(req.Offset)

	var sectionProt, access, viewProt uint32
	if req.Anonymous {
		handle = windows.InvalidHandle
		maxSize = uint64(req.Length)
		offset = 0
		sectionProt = windows.PAGE_EXECUTE_READWRITE
		access = windows.FILE_MAP_WRITE | windows.FILE_MAP_EXECUTE
		viewProt = windows.PAGE_EXECUTE_READWRITE
		if private {
			access = windows.FILE_MAP_COPY | windows.FILE_MAP_EXECUTE
			viewProt = windows.PAGE_EXECUTE_WRITECOPY
		}
	} else {
		sectionProt = windows.PAGE_READONLY
		access = windows.FILE_MAP_READ
		switch {
		case private:
			sectionProt = windows.PAGE_WRITECOPY
			access = windows.FILE_MAP_COPY
		case writable(prot):
			sectionProt = windows.PAGE_READWRITE
			access = windows.FILE_MAP_WRITE
		}
		if executable(prot) {
			// PAGE_READONLY, PAGE_READWRITE and PAGE_WRITECOPY shifted
			// by 4 are their PAGE_EXECUTE_* counterparts.
			sectionProt <<= 4
			access |= windows.FILE_MAP_EXECUTE
		}
		viewProt = sectionProt
	}

	section, err := windows.CreateFileMapping(handle, nil, sectionProt, uint32(maxSize>>32), uint32(maxSize), nil)
	if err != nil {
		return nil, &Error{"CreateFileMapping", errors.WithMessagef(err, "len=%d off=%d", req.Length, offset)}
	}
	defer windows.CloseHandle(section)

	addr, err := windows.MapViewOfFile(section, access, uint32(offset>>32), uint32(offset), uintptr(req.Length))
	if err != nil {
		return nil, &Error{"MapViewOfFile", errors.WithMessagef(err, "len=%d off=%d", req.Length, offset)}
	}

	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), req.Length)
	if prot != viewProt {
		if err := Protect(data, req.Prot); err != nil {
			windows.UnmapViewOfFile(addr)
			return nil, err
		}
	}
	return data, nil
}

func writable(prot uint32) bool {
	switch prot {
	case windows.PAGE_READWRITE, windows.PAGE_WRITECOPY,
		windows.PAGE_EXECUTE_READWRITE, windows.PAGE_EXECUTE_WRITECOPY:
		return true
	}
	return false
}

func executable(prot uint32) bool {
	switch prot {
	case windows.PAGE_EXECUTE, windows.PAGE_EXECUTE_READ,
		windows.PAGE_EXECUTE_READWRITE, windows.PAGE_EXECUTE_WRITECOPY:
		return true
	}
	return false
}

// Unmap releases a view returned by Map.
func Unmap(b []byte) error {
	if len(b) == 0 {
		return ErrNotMapped
	}
	if err := windows.UnmapViewOfFile(Addr(b)); err != nil {
		return &Error{"UnmapViewOfFile", errors.WithMessagef(err, "addr=%#x", Addr(b))}
	}
	return nil
}

// Protect changes the access protection of the pages covering b.
func Protect(b []byte, prot int) error {
	if len(b) == 0 {
		return ErrNotMapped
	}
	var old uint32
	if err := windows.VirtualProtect(Addr(b), uintptr(len(b)), uint32(prot), &old); err != nil {
		return &Error{"VirtualProtect", errors.WithMessagef(err, "addr=%#x len=%d prot=%#x", Addr(b), len(b), prot)}
	}
	return nil
}

// Flush writes dirty pages covering b back to the file. With
// SyncFileBuffers set it also waits for the file's buffers to reach disk.
func Flush(b []byte, flag int, fd uintptr) error {
	if len(b) == 0 {
		return ErrNotMapped
	}
	if err := windows.FlushViewOfFile(Addr(b), uintptr(len(b))); err != nil {
		return &Error{"FlushViewOfFile", errors.WithMessagef(err, "addr=%#x len=%d", Addr(b), len(b))}
	}
	if flag&SyncFileBuffers != 0 {
		if err := windows.FlushFileBuffers(windows.Handle(fd)); err != nil {
			return &Error{"FlushFileBuffers", err}
		}
	}
	return nil
}

// Lock locks the pages covering b in memory (prevents swapping).
func Lock(b []byte) error {
	if err := windows.VirtualLock(Addr(b), uintptr(len(b))); err != nil {
		return &Error{"VirtualLock", err}
	}
	return nil
}

// Unlock unlocks the pages covering b.
func Unlock(b []byte) error {
	if err := windows.VirtualUnlock(Addr(b), uintptr(len(b))); err != nil {
		return &Error{"VirtualUnlock", err}
	}
	return nil
}

// Advise is a no-op; Windows has no madvise.
func Advise(b []byte, advice int) error {
	return nil
}

// CheckDescriptor reports an error if fd is no longer an open handle.
func CheckDescriptor(fd uintptr) error {
	if _, err := windows.GetFileType(windows.Handle(fd)); err != nil {
		return &Error{"GetFileType", err}
	}
	return nil
}
