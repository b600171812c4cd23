//go:build unix

package osmap

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/sys/unix"
)

func TestMapAnonymous(t *testing.T) {
	size := os.Getpagesize()
	data, err := Map(Request{
		Length:    size,
		Prot:      unix.PROT_READ | unix.PROT_WRITE,
		Flags:     unix.MAP_PRIVATE | unix.MAP_ANON,
		Anonymous: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != size {
		t.Fatalf("length mismatch: got %d, want %d", len(data), size)
	}
	if Addr(data)%uintptr(size) != 0 {
		t.Errorf("base %#x is not page aligned", Addr(data))
	}

	copy(data, "anonymous")
	if err := Protect(data, unix.PROT_READ); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("anonymous")) {
		t.Error("data lost after mprotect")
	}
	if err := Unmap(data); err != nil {
		t.Fatal(err)
	}
}

func TestMapInvalidSize(t *testing.T) {
	_, err := Map(Request{Length: 0, Anonymous: true})
	if err != ErrInvalidSize {
		t.Errorf("expected ErrInvalidSize, got %v", err)
	}
	if err := Unmap(nil); err != ErrNotMapped {
		t.Errorf("expected ErrNotMapped, got %v", err)
	}
}

func TestMapFileFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.dat")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	size := os.Getpagesize()
	if err := f.Truncate(int64(size)); err != nil {
		t.Fatal(err)
	}

	data, err := Map(Request{
		Length: size,
		Prot:   unix.PROT_READ | unix.PROT_WRITE,
		Flags:  unix.MAP_SHARED,
		Fd:     f.Fd(),
	})
	if err != nil {
		t.Fatal(err)
	}
	defer Unmap(data)

	copy(data, "flushed")
	if err := Flush(data, unix.MS_SYNC, f.Fd()); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(got, []byte("flushed")) {
		t.Errorf("expected flushed data, got %q", got[:16])
	}
}

func TestMapErrno(t *testing.T) {
	// A descriptor that was never opened
	_, err := Map(Request{
		Length: os.Getpagesize(),
		Prot:   unix.PROT_READ,
		Flags:  unix.MAP_SHARED,
		Fd:     1 << 20,
	})
	if !errors.Is(err, unix.EBADF) {
		t.Errorf("expected EBADF, got %v", err)
	}

	if err := CheckDescriptor(1 << 20); !errors.Is(err, unix.EBADF) {
		t.Errorf("expected EBADF from CheckDescriptor, got %v", err)
	}
}
