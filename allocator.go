package mregion

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
	"weak"

	"github.com/sirupsen/logrus"

	"github.com/Giulio2002/mregion/internal/addrmap"
	"github.com/Giulio2002/mregion/internal/osmap"
	"github.com/Giulio2002/mregion/internal/slots"
)

// Allocator creates and destroys regions.
//
// Map and Unmap may be called concurrently on distinct regions. With
// tracking enabled the allocator remembers every region it handed out so
// leaks can be reported and released by Close.
type Allocator struct {
	flags     PlatformFlags
	tracking  atomic.Bool
	enforceWX atomic.Bool

	mu      sync.Mutex
	log     logrus.FieldLogger
	slots   *slots.Bitmap
	entries []entry     // Indexed by slot
	bases   addrmap.Map // Base address -> slot
}

// entry is the registry's view of a tracked region. It holds the region
// weakly; the caller owns it.
type entry struct {
	ref     weak.Pointer[Region]
	data    []byte
	backing Backing
	mapped  time.Time
	cleanup runtime.Cleanup
}

// lostRegion is what the cleanup of an unreachable region gets to see.
type lostRegion struct {
	base    uintptr
	length  int
	backing Backing
}

// NewAllocator creates an allocator using the platform's flag table.
// Tracking is off unless built with the mregiondebug tag.
func NewAllocator() *Allocator {
	a := &Allocator{
		flags: platform,
		slots: slots.NewBitmap(0),
	}
	a.tracking.Store(trackByDefault)
	return a
}

// SetTracking turns leak tracking on or off. Regions mapped while tracking
// was off are never tracked.
func (a *Allocator) SetTracking(on bool) {
	a.tracking.Store(on)
}

// Tracking reports whether new regions are tracked.
func (a *Allocator) Tracking() bool {
	return a.tracking.Load()
}

// SetEnforceWX makes Map and Protect reject protections that are both
// writable and executable.
func (a *Allocator) SetEnforceWX(on bool) {
	a.enforceWX.Store(on)
}

// SetLogger sets where leak reports go. Defaults to the logrus standard logger.
func (a *Allocator) SetLogger(log logrus.FieldLogger) {
	a.mu.Lock()
	a.log = log
	a.mu.Unlock()
}

func (a *Allocator) logger() logrus.FieldLogger {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.log == nil {
		return logrus.StandardLogger()
	}
	return a.log
}

// checkWX rejects rwx protections when W^X is enforced.
func (a *Allocator) checkWX(op string, p Protection) error {
	if a.enforceWX.Load() && p.Writable() && p.Executable() {
		return invalidf(op, "protection %s violates W^X", p)
	}
	return nil
}

// ceilingFor returns the rights a region can be given after creation.
// Anonymous memory can take any protection. A file mapping is limited by how
// it was mapped: it stays readable, and private copies stay writable.
func ceilingFor(p Protection, v Visibility, b Backing) Protection {
	if b.IsAnonymous() {
		return ReadWriteExecute
	}
	c := p | protRead
	if v == Private {
		c |= protWrite
	}
	return c
}

// Map creates a region of at least length bytes.
//
// length is rounded up to the page size. For file backings the offset must
// be a multiple of Platform().OffsetAlignment() and the descriptor must be
// open for the duration of the call.
func (a *Allocator) Map(length int, prot Protection, vis Visibility, backing Backing) (*Region, error) {
	const op = "map"

	if length <= 0 {
		return nil, invalidf(op, "length %d must be positive", length)
	}
	if !prot.valid() {
		return nil, invalidf(op, "invalid protection %s", prot)
	}
	if !vis.valid() {
		return nil, invalidf(op, "invalid visibility %s", vis)
	}
	if err := a.checkWX(op, prot); err != nil {
		return nil, err
	}
	if !backing.IsAnonymous() {
		if align := a.flags.OffsetAlignment(); backing.offset < 0 || backing.offset%align != 0 {
			return nil, invalidf(op, "offset %d is not a multiple of %d", backing.offset, align)
		}
	}
	if err := a.flags.Supports(prot, vis, backing.IsAnonymous()); err != nil {
		return nil, WrapError(PlatformUnsupported, op, err)
	}
	rounded, ok := alignUp(length, sysPageSize)
	if !ok {
		return nil, invalidf(op, "length %d overflows when rounded to pages", length)
	}

	flags := a.flags.Visibility(vis)
	if backing.IsAnonymous() {
		flags |= a.flags.Anonymous()
	}
	data, err := osmap.Map(osmap.Request{
		Length:    rounded,
		Prot:      a.flags.Protection(prot, vis),
		Flags:     flags,
		Fd:        backing.fd,
		Offset:    backing.offset,
		Anonymous: backing.IsAnonymous(),
	})
	if err != nil {
		return nil, wrapOS(op, err, ResourceExhausted)
	}

	r := &Region{
		data:       data,
		size:       length,
		protection: prot,
		ceiling:    ceilingFor(prot, vis, backing),
		visibility: vis,
		backing:    backing,
		state:      Active,
		owner:      a,
	}
	if a.tracking.Load() {
		a.track(r)
	}
	return r, nil
}

// Unmap releases r. Unmapping twice fails with AlreadyUnmapped. Unmap does
// not flush; call Flush first when the write-back must be guaranteed.
func (a *Allocator) Unmap(r *Region) error {
	const op = "unmap"

	if r == nil {
		return invalidf(op, "nil region")
	}
	if r.state == Unmapped {
		return NewError(AlreadyUnmapped, op)
	}
	if r.owner != a {
		return invalidf(op, "region belongs to another allocator")
	}
	if err := osmap.Unmap(r.data); err != nil {
		return wrapOS(op, err, InvalidArgument)
	}
	if r.tracked {
		a.untrack(r)
	}
	r.state = Unmapped
	r.data = nil
	return nil
}

func (a *Allocator) track(r *Region) {
	base := r.Base()

	a.mu.Lock()
	slot := a.slots.Allocate()
	if int(slot) >= len(a.entries) {
		entries := make([]entry, a.slots.Capacity())
		copy(entries, a.entries)
		a.entries = entries
	}
	a.entries[slot] = entry{
		ref:     weak.Make(r),
		data:    r.data,
		backing: r.backing,
		mapped:  time.Now(),
		cleanup: runtime.AddCleanup(r, a.reportLost, lostRegion{base, len(r.data), r.backing}),
	}
	a.bases.Set(base, slot)
	a.mu.Unlock()

	r.slot = slot
	r.tracked = true
}

func (a *Allocator) untrack(r *Region) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries[r.slot].cleanup.Stop()
	a.entries[r.slot] = entry{}
	a.bases.Delete(r.Base())
	a.slots.Free(r.slot)
	r.tracked = false
}

// reportLost runs when a tracked region becomes unreachable while mapped.
// The memory stays mapped: slices from Bytes may still point into it. Close
// releases it.
func (a *Allocator) reportLost(l lostRegion) {
	a.logger().WithFields(logrus.Fields{
		"base":    fmt.Sprintf("%#x", l.base),
		"len":     l.length,
		"backing": l.backing.String(),
	}).Warn("mregion: region became unreachable without Unmap")
}

// Lookup returns the tracked region whose mapping starts at base.
func (a *Allocator) Lookup(base uintptr) (*Region, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	slot, ok := a.bases.Get(base)
	if !ok {
		return nil, false
	}
	r := a.entries[slot].ref.Value()
	return r, r != nil
}

// Outstanding returns the number of tracked regions not yet unmapped.
func (a *Allocator) Outstanding() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return int(a.slots.Count())
}

// active returns the tracked regions that are still reachable.
func (a *Allocator) active() []*Region {
	a.mu.Lock()
	defer a.mu.Unlock()
	regions := make([]*Region, 0, a.slots.Count())
	a.slots.Each(func(slot uint32) {
		if r := a.entries[slot].ref.Value(); r != nil {
			regions = append(regions, r)
		}
	})
	return regions
}

// Close unmaps every tracked region that is still mapped and logs each one
// as a leak. It is the teardown safety net; nothing else may use the
// allocator's regions concurrently. Returns the first unmap error.
func (a *Allocator) Close() error {
	a.mu.Lock()
	var leaked []entry
	a.slots.Each(func(slot uint32) {
		e := a.entries[slot]
		e.cleanup.Stop()
		leaked = append(leaked, e)
		a.entries[slot] = entry{}
		a.bases.Delete(osmap.Addr(e.data))
		a.slots.Free(slot)
	})
	a.mu.Unlock()

	log := a.logger()
	var firstErr error
	for _, e := range leaked {
		log.WithFields(logrus.Fields{
			"base":    fmt.Sprintf("%#x", osmap.Addr(e.data)),
			"len":     len(e.data),
			"backing": e.backing.String(),
			"age":     time.Since(e.mapped).Round(time.Millisecond),
		}).Warn("mregion: unmapping leaked region")

		if err := osmap.Unmap(e.data); err != nil && firstErr == nil {
			firstErr = wrapOS("close", err, InvalidArgument)
		}
		if r := e.ref.Value(); r != nil {
			r.state = Unmapped
			r.data = nil
			r.tracked = false
		}
	}
	return firstErr
}

var std = NewAllocator()

// Default returns the process-wide allocator used by Map and Unmap.
func Default() *Allocator {
	return std
}

// Map creates a region using the default allocator.
func Map(length int, prot Protection, vis Visibility, backing Backing) (*Region, error) {
	return std.Map(length, prot, vis, backing)
}

// Unmap releases a region created by Map.
func Unmap(r *Region) error {
	return std.Unmap(r)
}
