package mregion

import (
	"fmt"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapUnmapAnonymous(t *testing.T) {
	a := NewAllocator()
	for _, prot := range Protections {
		for _, vis := range Visibilities {
			t.Run(fmt.Sprintf("%s/%s", prot, vis), func(t *testing.T) {
				r, err := a.Map(100, prot, vis, Anonymous())
				if platform.Supports(prot, vis, true) != nil {
					if Code(err) != PlatformUnsupported {
						t.Fatalf("expected PlatformUnsupported, got %v", err)
					}
					return
				}
				if err != nil {
					t.Fatal(err)
				}

				if r.Len() != PageSize() {
					t.Errorf("length should round up to %d, got %d", PageSize(), r.Len())
				}
				if r.Size() != 100 || len(r.Bytes()) != 100 {
					t.Errorf("size mismatch: Size=%d len(Bytes)=%d", r.Size(), len(r.Bytes()))
				}
				if r.Base() == 0 || r.Base()%uintptr(PageSize()) != 0 {
					t.Errorf("base %#x is not page aligned", r.Base())
				}
				if r.Protection() != prot || r.Visibility() != vis || !r.Backing().IsAnonymous() {
					t.Errorf("unexpected region %s", r)
				}
				if !r.Active() {
					t.Fatal("new region should be active")
				}

				if err := a.Unmap(r); err != nil {
					t.Fatal(err)
				}
				if r.State() != Unmapped || r.Bytes() != nil || r.Base() != 0 {
					t.Errorf("region not torn down: %s", r)
				}
				if err := a.Unmap(r); !IsAlreadyUnmapped(err) {
					t.Errorf("expected AlreadyUnmapped on double unmap, got %v", err)
				}
			})
		}
	}
}

func TestMapZeroLength(t *testing.T) {
	a := NewAllocator()
	for _, prot := range Protections {
		for _, vis := range Visibilities {
			for _, length := range []int{0, -1} {
				_, err := a.Map(length, prot, vis, Anonymous())
				if !IsInvalidArgument(err) {
					t.Errorf("Map(%d, %s, %s): expected InvalidArgument, got %v", length, prot, vis, err)
				}
			}
		}
	}
}

func TestMapInvalidArguments(t *testing.T) {
	a := NewAllocator()
	f, _ := newFile(t, PageSize())

	cases := []struct {
		name    string
		prot    Protection
		vis     Visibility
		backing Backing
	}{
		{"write only", protWrite, Private, Anonymous()},
		{"unknown bits", Protection(0x10), Private, Anonymous()},
		{"bad visibility", ReadOnly, Visibility(7), Anonymous()},
		{"unaligned offset", ReadOnly, Shared, FromFile(f, 1)},
		{"negative offset", ReadOnly, Shared, FromFile(f, -int64(platform.OffsetAlignment()))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := a.Map(PageSize(), tc.prot, tc.vis, tc.backing)
			require.Error(t, err)
			assert.True(t, IsInvalidArgument(err), "got %v", err)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestMapClosedDescriptor(t *testing.T) {
	f, _ := newFile(t, PageSize())
	fd := f.Fd()
	f.Close()

	_, err := NewAllocator().Map(PageSize(), ReadOnly, Shared, File(fd, 0))
	if Code(err) != BackingUnavailable {
		t.Errorf("expected BackingUnavailable, got %v", err)
	}
}

func TestUnmapForeignRegion(t *testing.T) {
	a, b := NewAllocator(), NewAllocator()
	r := mustMap(t, a, PageSize(), ReadWrite, Private, Anonymous())

	require.True(t, IsInvalidArgument(b.Unmap(r)))
	require.True(t, IsInvalidArgument(a.Unmap(nil)))
	require.True(t, r.Active())

	var zero Region
	require.False(t, zero.Active())
	require.ErrorIs(t, zero.Unmap(), ErrAlreadyUnmapped)
	require.ErrorIs(t, a.Unmap(&zero), ErrAlreadyUnmapped)
}

func TestDefaultAllocator(t *testing.T) {
	r, err := Map(10, ReadWrite, Private, Anonymous())
	require.NoError(t, err)
	copy(r.Bytes(), "default")
	require.NoError(t, Unmap(r))
	require.True(t, IsAlreadyUnmapped(Unmap(r)))
	require.Same(t, std, Default())
}

// Each goroutine owns its regions; none may observe another's base, length
// or contents.
func TestConcurrentMapUnmap(t *testing.T) {
	const (
		workers  = 8
		rounds   = 50
		perRound = 4
	)
	a := NewAllocator()
	a.SetTracking(true)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(id byte) {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				var regions []*Region
				for j := 0; j < perRound; j++ {
					length := (j + 1) * PageSize()
					r, err := a.Map(length, ReadWrite, Private, Anonymous())
					if !assert.NoError(t, err) {
						return
					}
					for k := range r.Bytes() {
						r.Bytes()[k] = id
					}
					regions = append(regions, r)
				}
				for j, r := range regions {
					assert.Equal(t, (j+1)*PageSize(), r.Len())
					for _, c := range r.Bytes() {
						if c != id {
							t.Errorf("worker %d: found byte %d in its region", id, c)
							break
						}
					}
					base := r.Base()
					got, ok := a.Lookup(base)
					assert.True(t, ok)
					assert.Same(t, r, got)
					assert.NoError(t, a.Unmap(r))
				}
			}
		}(byte(w + 1))
	}
	wg.Wait()

	assert.Equal(t, 0, a.Outstanding())
}

func TestTrackingClose(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	a := NewAllocator()
	a.SetTracking(true)
	a.SetLogger(log)

	var regions []*Region
	for i := 0; i < 3; i++ {
		r, err := a.Map(PageSize(), ReadWrite, Shared, Anonymous())
		require.NoError(t, err)
		regions = append(regions, r)
	}
	require.NoError(t, regions[0].Unmap())
	require.Equal(t, 2, a.Outstanding())

	got, ok := a.Lookup(regions[1].Base())
	require.True(t, ok)
	require.Same(t, regions[1], got)
	_, ok = a.Lookup(regions[1].Base() + 1)
	require.False(t, ok)

	require.NoError(t, a.Close())
	require.Equal(t, 0, a.Outstanding())

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, logrus.WarnLevel, e.Level)
		assert.Contains(t, e.Message, "leaked region")
		assert.Equal(t, "anonymous", e.Data["backing"])
	}

	for _, r := range regions[1:] {
		assert.False(t, r.Active())
		assert.True(t, IsAlreadyUnmapped(r.Unmap()))
	}
}

func TestUntrackedRegions(t *testing.T) {
	a := NewAllocator()
	a.SetTracking(false)
	r := mustMap(t, a, PageSize(), ReadOnly, Private, Anonymous())

	require.False(t, a.Tracking())
	require.Equal(t, 0, a.Outstanding())
	_, ok := a.Lookup(r.Base())
	require.False(t, ok)

	// Regions mapped before tracking was enabled stay untracked.
	a.SetTracking(true)
	require.NoError(t, r.Unmap())
	require.Equal(t, 0, a.Outstanding())
}
