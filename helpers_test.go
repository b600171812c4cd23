package mregion

import (
	"os"
	"path/filepath"
	"testing"
)

// newFile creates a temp file of size bytes, closed on cleanup.
func newFile(t *testing.T, size int) (*os.File, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "region.dat")
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { f.Close() })
	if err := f.Truncate(int64(size)); err != nil {
		t.Fatal(err)
	}
	return f, path
}

// mustMap maps a region and unmaps it on cleanup if the test left it active.
func mustMap(t *testing.T, a *Allocator, length int, prot Protection, vis Visibility, b Backing) *Region {
	t.Helper()
	r, err := a.Map(length, prot, vis, b)
	if err != nil {
		t.Fatalf("Map(%d, %s, %s, %s) failed: %v", length, prot, vis, b, err)
	}
	t.Cleanup(func() {
		if r.Active() {
			r.Unmap()
		}
	})
	return r
}
