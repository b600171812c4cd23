// Package osmap provides the operating system memory mapping primitives:
// map, unmap, protect and flush, plus locking and advice.
//
// Callers pass native flag values; nothing here knows about portable
// protection or visibility kinds.
package osmap

import "unsafe"

// Request describes one call to the mapping primitive.
type Request struct {
	Length    int     // Bytes to map, already page-rounded
	Prot      int     // Native protection
	Flags     int     // Native visibility flags, including the anonymous flag on Unix
	Fd        uintptr // Backing descriptor, ignored when Anonymous is set
	Offset    int64   // Offset into the backing file
	Anonymous bool
}

// Addr returns the address of the first byte of b.
func Addr(b []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))
}

// Error represents a failed primitive.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return "osmap: " + e.Op + ": " + e.Err.Error()
	}
	return "osmap: " + e.Op
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Common errors
var (
	ErrInvalidSize = &Error{Op: "invalid size"}
	ErrNotMapped   = &Error{Op: "not mapped"}
)
