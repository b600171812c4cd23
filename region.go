package mregion

import (
	"fmt"
	"os"

	"github.com/Giulio2002/mregion/internal/osmap"
)

// Backing is the object supplying a region's contents: anonymous memory or
// an open descriptor plus an offset.
type Backing struct {
	fd     uintptr
	offset int64
	file   bool
}

// Anonymous returns a backing of zero-filled memory not tied to any file.
func Anonymous() Backing {
	return Backing{}
}

// File returns a backing for an open descriptor. The descriptor only has to
// stay open while Map runs, but Flush reports BackingUnavailable once it is
// closed.
func File(fd uintptr, offset int64) Backing {
	return Backing{fd: fd, offset: offset, file: true}
}

// FromFile returns a backing for an already open file.
func FromFile(f *os.File, offset int64) Backing {
	return File(f.Fd(), offset)
}

// IsAnonymous returns true if b is not file-backed.
func (b Backing) IsAnonymous() bool { return !b.file }

// Fd returns the backing descriptor. Meaningless for anonymous backings.
func (b Backing) Fd() uintptr { return b.fd }

// Offset returns the offset into the backing file.
func (b Backing) Offset() int64 { return b.offset }

func (b Backing) String() string {
	if !b.file {
		return "anonymous"
	}
	return fmt.Sprintf("fd %d@%d", b.fd, b.offset)
}

// Region is one active memory mapping.
//
// The caller that received a Region from Map owns it. A Region has no
// internal lock: Unmap racing with any other call on the same Region must be
// prevented by the caller.
type Region struct {
	data       []byte // Whole mapping, page-rounded; nil once unmapped
	size       int    // Requested length
	protection Protection
	ceiling    Protection // Rights the region can ever be given
	visibility Visibility
	backing    Backing
	state      State

	owner   *Allocator
	slot    uint32
	tracked bool
}

// Base returns the address of the first mapped byte, or 0 once unmapped.
func (r *Region) Base() uintptr {
	if r.data == nil {
		return 0
	}
	return osmap.Addr(r.data)
}

// Len returns the mapped length, a multiple of the page size.
func (r *Region) Len() int {
	return len(r.data)
}

// Size returns the length requested from Map.
func (r *Region) Size() int {
	return r.size
}

// Bytes returns the mapped memory, Size bytes long. The slice is not
// managed by the Go runtime and must not be used after Unmap.
func (r *Region) Bytes() []byte {
	if r.data == nil {
		return nil
	}
	return r.data[:r.size:r.size]
}

// Protection returns the last protection applied to the whole region.
func (r *Region) Protection() Protection {
	return r.protection
}

// Visibility returns whether the region is private or shared.
func (r *Region) Visibility() Visibility {
	return r.visibility
}

// Backing returns the region's backing object.
func (r *Region) Backing() Backing {
	return r.backing
}

// State returns the lifecycle state.
func (r *Region) State() State {
	return r.state
}

// Active returns true until the region is unmapped.
func (r *Region) Active() bool {
	return r.state == Active
}

// Unmap releases the region through the allocator that created it.
func (r *Region) Unmap() error {
	if r.state == Unmapped {
		return NewError(AlreadyUnmapped, "unmap")
	}
	if r.owner == nil {
		return invalidf("unmap", "region was not created by an allocator")
	}
	return r.owner.Unmap(r)
}

func (r *Region) String() string {
	return fmt.Sprintf("region %#x+%d %s %s %s (%s)", r.Base(), r.Len(), r.protection, r.visibility, r.backing, r.state)
}

// checkActive returns NotActive for unmapped regions.
func (r *Region) checkActive(op string) error {
	if r.state != Active {
		return NewError(NotActive, op)
	}
	return nil
}

// span returns the pages covering [offset, offset+length). offset must be
// page-aligned; length is rounded up to whole pages.
func (r *Region) span(op string, offset, length int) ([]byte, error) {
	if offset < 0 || offset%sysPageSize != 0 {
		return nil, invalidf(op, "offset %d is not a multiple of the page size %d", offset, sysPageSize)
	}
	if length <= 0 || offset >= len(r.data) || length > len(r.data)-offset {
		return nil, invalidf(op, "range [%d, %d+%d) outside region of %d bytes", offset, offset, length, len(r.data))
	}
	end, _ := alignUp(offset+length, sysPageSize)
	return r.data[offset:end:end], nil
}
