//go:build openbsd

package mregion

import "github.com/pkg/errors"

// openbsdFlags enforces W^X: the kernel refuses writable+executable pages
// outside filesystems mounted wxallowed.
type openbsdFlags struct{ unixTable }

var platform PlatformFlags = openbsdFlags{}

func (openbsdFlags) Name() string { return "openbsd" }

func (openbsdFlags) Supports(p Protection, _ Visibility, _ bool) error {
	if p == ReadWriteExecute {
		return errors.New("openbsd enforces W^X")
	}
	return nil
}
