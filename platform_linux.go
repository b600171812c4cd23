//go:build linux

package mregion

import "golang.org/x/sys/unix"

// linuxFlags supports every combination. Shared anonymous mappings are
// backed by shmem and stay shared across fork.
type linuxFlags struct{ unixTable }

var platform PlatformFlags = linuxFlags{}

func (linuxFlags) Name() string { return "linux" }

func (linuxFlags) Anonymous() int { return unix.MAP_ANONYMOUS }

func (linuxFlags) Supports(Protection, Visibility, bool) error { return nil }
