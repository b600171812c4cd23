//go:build unix

package osmap

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Map creates a new mapping. The offset must be page-aligned.
func Map(req Request) ([]byte, error) {
	if req.Length <= 0 {
		return nil, ErrInvalidSize
	}

	fd := int(req.Fd)
	offset := req.Offset
	if req.Anonymous {
		fd = -1
		offset = 0
	}

	data, err := unix.Mmap(fd, offset, req.Length, req.Prot, req.Flags)
	if err != nil {
		return nil, &Error{"mmap", errors.WithMessagef(err, "len=%d off=%d prot=%#x flags=%#x", req.Length, offset, req.Prot, req.Flags)}
	}
	return data, nil
}

// Unmap releases a mapping returned by Map. b must be the exact slice Map returned.
func Unmap(b []byte) error {
	if len(b) == 0 {
		return ErrNotMapped
	}
	if err := unix.Munmap(b); err != nil {
		return &Error{"munmap", errors.WithMessagef(err, "addr=%#x len=%d", Addr(b), len(b))}
	}
	return nil
}

// Protect changes the access protection of the pages covering b.
func Protect(b []byte, prot int) error {
	if len(b) == 0 {
		return ErrNotMapped
	}
	if err := unix.Mprotect(b, prot); err != nil {
		return &Error{"mprotect", errors.WithMessagef(err, "addr=%#x len=%d prot=%#x", Addr(b), len(b), prot)}
	}
	return nil
}

// Flush writes dirty pages covering b back to the backing file.
// flag is MS_SYNC or MS_ASYNC; fd is unused because msync works on addresses.
func Flush(b []byte, flag int, _ uintptr) error {
	if len(b) == 0 {
		return ErrNotMapped
	}
	if err := unix.Msync(b, flag); err != nil {
		return &Error{"msync", errors.WithMessagef(err, "addr=%#x len=%d", Addr(b), len(b))}
	}
	return nil
}

// Lock locks the pages covering b in memory (prevents swapping).
func Lock(b []byte) error {
	if err := unix.Mlock(b); err != nil {
		return &Error{"mlock", err}
	}
	return nil
}

// Unlock unlocks the pages covering b.
func Unlock(b []byte) error {
	if err := unix.Munlock(b); err != nil {
		return &Error{"munlock", err}
	}
	return nil
}

// Advise provides hints to the kernel about memory usage patterns.
func Advise(b []byte, advice int) error {
	if err := unix.Madvise(b, advice); err != nil {
		return &Error{"madvise", err}
	}
	return nil
}

// CheckDescriptor reports an error if fd is no longer an open descriptor.
func CheckDescriptor(fd uintptr) error {
	if _, err := unix.FcntlInt(fd, unix.F_GETFD, 0); err != nil {
		return &Error{"fcntl", errors.WithMessagef(err, "fd=%d", fd)}
	}
	return nil
}
