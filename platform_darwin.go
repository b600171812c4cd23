//go:build darwin

package mregion

import (
	"runtime"

	"github.com/pkg/errors"
)

// darwinFlags rejects writable+executable pages on arm64, where the kernel
// only allows them for MAP_JIT mappings of entitled processes.
type darwinFlags struct{ unixTable }

var platform PlatformFlags = darwinFlags{}

func (darwinFlags) Name() string { return "darwin" }

func (darwinFlags) Supports(p Protection, _ Visibility, _ bool) error {
	if p == ReadWriteExecute && runtime.GOARCH == "arm64" {
		return errors.New("rwx pages require MAP_JIT on darwin/arm64")
	}
	return nil
}
