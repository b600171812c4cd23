//go:build unix && !linux && !darwin && !freebsd && !netbsd && !dragonfly && !openbsd

package mregion

import "runtime"

// unixFlags covers the remaining System V derived platforms.
type unixFlags struct{ unixTable }

var platform PlatformFlags = unixFlags{}

func (unixFlags) Name() string { return runtime.GOOS }

func (unixFlags) Supports(Protection, Visibility, bool) error { return nil }
