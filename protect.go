package mregion

import "github.com/Giulio2002/mregion/internal/osmap"

// Protect changes the protection of the whole region without remapping it.
func (r *Region) Protect(p Protection) error {
	return r.protect(p, 0, 0, true)
}

// ProtectRange changes the protection of the pages covering
// [offset, offset+length). offset must be page-aligned. Protection keeps
// reporting the last whole-region value.
func (r *Region) ProtectRange(p Protection, offset, length int) error {
	return r.protect(p, offset, length, false)
}

func (r *Region) protect(p Protection, offset, length int, whole bool) error {
	const op = "protect"

	if err := r.checkActive(op); err != nil {
		return err
	}
	if !p.valid() {
		return invalidf(op, "invalid protection %s", p)
	}
	if err := r.owner.checkWX(op, p); err != nil {
		return err
	}
	if p&^r.ceiling != 0 {
		return invalidf(op, "protection %s exceeds %s the region was mapped with", p, r.ceiling)
	}
	flags := r.owner.flags
	if err := flags.Supports(p, r.visibility, r.backing.IsAnonymous()); err != nil {
		return WrapError(PlatformUnsupported, op, err)
	}

	b := r.data
	if !whole {
		var err error
		if b, err = r.span(op, offset, length); err != nil {
			return err
		}
	}
	if err := osmap.Protect(b, flags.Protection(p, r.visibility)); err != nil {
		return wrapOS(op, err, InvalidArgument)
	}
	if whole {
		r.protection = p
	}
	return nil
}
