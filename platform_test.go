package mregion

import (
	"strings"
	"testing"
)

func TestPlatformTable(t *testing.T) {
	p := Platform()
	if p.Name() == "" {
		t.Fatal("platform has no name")
	}

	// Every portable value must resolve; a missing entry panics.
	for _, prot := range Protections {
		for _, vis := range Visibilities {
			p.Protection(prot, vis)
		}
	}
	for _, vis := range Visibilities {
		p.Visibility(vis)
	}
	for _, mode := range []SyncMode{Synchronous, Asynchronous} {
		p.Sync(mode)
	}
	for _, a := range []Advice{AdviceNormal, AdviceSequential, AdviceRandom, AdviceWillNeed, AdviceDontNeed} {
		p.Advice(a)
	}

	if p.Visibility(Private) == p.Visibility(Shared) {
		t.Error("private and shared resolve to the same flag")
	}
	if p.Protection(ReadOnly, Shared) == p.Protection(ReadWrite, Shared) {
		t.Error("r-- and rw- resolve to the same flag")
	}

	align := p.OffsetAlignment()
	if align <= 0 || align%int64(PageSize()) != 0 {
		t.Errorf("offset alignment %d is not a multiple of the page size %d", align, PageSize())
	}
}

func TestPlatformMissingEntryPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for missing flag table entry")
		}
	}()
	Platform().Protection(protWrite, Private)
}

func TestProtectionString(t *testing.T) {
	want := map[Protection]string{
		NoAccess:         "---",
		ReadOnly:         "r--",
		ReadWrite:        "rw-",
		Execute:          "--x",
		ReadExecute:      "r-x",
		ReadWriteExecute: "rwx",
	}
	for p, s := range want {
		if p.String() != s {
			t.Errorf("%d: got %q, want %q", p, p.String(), s)
		}
	}
	if protWrite.valid() {
		t.Error("write-only protection should be invalid")
	}
}

func TestVersion(t *testing.T) {
	if v := Version(); !strings.Contains(v, Platform().Name()) {
		t.Errorf("version %q does not name the platform", v)
	}
}
