package mregion

import "github.com/Giulio2002/mregion/internal/osmap"

// Lock keeps the region's pages in physical memory.
func (r *Region) Lock() error {
	if err := r.checkActive("lock"); err != nil {
		return err
	}
	if err := osmap.Lock(r.data); err != nil {
		return wrapOS("lock", err, ResourceExhausted)
	}
	return nil
}

// Unlock allows the region's pages to be swapped out again.
func (r *Region) Unlock() error {
	if err := r.checkActive("unlock"); err != nil {
		return err
	}
	if err := osmap.Unlock(r.data); err != nil {
		return wrapOS("unlock", err, InvalidArgument)
	}
	return nil
}

// Advise tells the kernel how the region will be accessed. A no-op on
// platforms without madvise.
func (r *Region) Advise(a Advice) error {
	if err := r.checkActive("advise"); err != nil {
		return err
	}
	if !a.valid() {
		return invalidf("advise", "invalid advice %d", a)
	}
	if err := osmap.Advise(r.data, r.owner.flags.Advice(a)); err != nil {
		return wrapOS("advise", err, InvalidArgument)
	}
	return nil
}
