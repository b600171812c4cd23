package mregion

import "github.com/pkg/errors"

// PlatformFlags resolves portable kinds to the native flag values of one
// operating system. Exactly one implementation is compiled in; the rest of
// the package only talks to this interface.
//
// Resolution never fails at runtime. Combinations the platform cannot
// express are rejected up front by Supports.
type PlatformFlags interface {
	// Name identifies the variant, e.g. "linux".
	Name() string

	// Protection returns the native protection for p. Windows needs the
	// visibility to pick copy-on-write page protections.
	Protection(p Protection, v Visibility) int

	// Visibility returns the native visibility flag.
	Visibility(v Visibility) int

	// Anonymous returns the flag or'ed into Visibility for anonymous mappings.
	Anonymous() int

	// Sync returns the native flush flag.
	Sync(m SyncMode) int

	// Advice returns the native madvise value.
	Advice(a Advice) int

	// Supports returns nil if the combination can be mapped natively.
	Supports(p Protection, v Visibility, anonymous bool) error

	// OffsetAlignment is the alignment file offsets must have.
	OffsetAlignment() int64
}

// Platform returns the flag table compiled into this build.
func Platform() PlatformFlags {
	return platform
}

// lookup reads a table entry. A missing entry is a defect in the table,
// not a runtime condition.
func lookup[K comparable](table map[K]int, kind string, k K) int {
	v, ok := table[k]
	if !ok {
		panic(errors.Errorf("mregion: %s flag table has no entry for %v", kind, k))
	}
	return v
}
