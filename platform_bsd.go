//go:build freebsd || netbsd || dragonfly

package mregion

import "runtime"

type bsdFlags struct{ unixTable }

var platform PlatformFlags = bsdFlags{}

func (bsdFlags) Name() string { return runtime.GOOS }

func (bsdFlags) Supports(Protection, Visibility, bool) error { return nil }
