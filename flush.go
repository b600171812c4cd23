package mregion

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/Giulio2002/mregion/internal/osmap"
)

// Flush writes the region's dirty pages back to its backing file.
//
// Synchronous blocks until the pages are durable; Asynchronous only
// schedules the write-back. Anonymous regions, Private regions and regions
// that were never writable have nothing to write back and always succeed.
func (r *Region) Flush(mode SyncMode) error {
	return r.flush(mode, 0, 0, true)
}

// FlushRange flushes the pages covering [offset, offset+length). offset must
// be page-aligned.
func (r *Region) FlushRange(offset, length int, mode SyncMode) error {
	return r.flush(mode, offset, length, false)
}

func (r *Region) flush(mode SyncMode, offset, length int, whole bool) error {
	const op = "flush"

	if err := r.checkActive(op); err != nil {
		return err
	}
	if !mode.valid() {
		return invalidf(op, "invalid sync mode %s", mode)
	}
	b := r.data
	if !whole {
		var err error
		if b, err = r.span(op, offset, length); err != nil {
			return err
		}
	}
	if r.backing.IsAnonymous() || r.visibility == Private || !r.ceiling.Writable() {
		return nil
	}

	if err := osmap.CheckDescriptor(r.backing.fd); err != nil {
		return WrapError(BackingUnavailable, op, err)
	}
	if err := osmap.Flush(b, r.owner.flags.Sync(mode), r.backing.fd); err != nil {
		return wrapOS(op, err, BackingUnavailable)
	}
	return nil
}

// FlushAll flushes every tracked region in parallel and returns the first
// error. Cancelling ctx stops further flushes from starting; flushes already
// running complete. Regions unmapped before the call are skipped. The caller
// must not Unmap tracked regions or call Close while FlushAll runs.
func (a *Allocator) FlushAll(ctx context.Context, mode SyncMode) error {
	if !mode.valid() {
		return invalidf("flush", "invalid sync mode %s", mode)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, r := range a.active() {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := r.Flush(mode); err != nil && !IsNotActive(err) {
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
