//go:build unix

package mregion

import "golang.org/x/sys/unix"

var unixProtection = map[Protection]int{
	NoAccess:         unix.PROT_NONE,
	ReadOnly:         unix.PROT_READ,
	ReadWrite:        unix.PROT_READ | unix.PROT_WRITE,
	Execute:          unix.PROT_EXEC,
	ReadExecute:      unix.PROT_READ | unix.PROT_EXEC,
	ReadWriteExecute: unix.PROT_READ | unix.PROT_WRITE | unix.PROT_EXEC,
}

var unixVisibility = map[Visibility]int{
	Private: unix.MAP_PRIVATE,
	Shared:  unix.MAP_SHARED,
}

var unixSync = map[SyncMode]int{
	Synchronous:  unix.MS_SYNC,
	Asynchronous: unix.MS_ASYNC,
}

var unixAdvice = map[Advice]int{
	AdviceNormal:     unix.MADV_NORMAL,
	AdviceSequential: unix.MADV_SEQUENTIAL,
	AdviceRandom:     unix.MADV_RANDOM,
	AdviceWillNeed:   unix.MADV_WILLNEED,
	AdviceDontNeed:   unix.MADV_DONTNEED,
}

// unixTable holds the resolution shared by every Unix variant. Variants
// embed it and supply Name and Supports.
type unixTable struct{}

func (unixTable) Protection(p Protection, _ Visibility) int {
	return lookup(unixProtection, "protection", p)
}

func (unixTable) Visibility(v Visibility) int {
	return lookup(unixVisibility, "visibility", v)
}

func (unixTable) Anonymous() int {
	return unix.MAP_ANON
}

func (unixTable) Sync(m SyncMode) int {
	return lookup(unixSync, "sync", m)
}

func (unixTable) Advice(a Advice) int {
	return lookup(unixAdvice, "advice", a)
}

func (unixTable) OffsetAlignment() int64 {
	return int64(sysPageSize)
}
