package addrmap

import (
	"math/rand"
	"testing"
)

const page = 4096

func TestMap(t *testing.T) {
	var m Map

	if _, ok := m.Get(page); ok {
		t.Error("expected miss on empty map")
	}
	if m.Delete(page) {
		t.Error("delete on empty map should report false")
	}

	m.Set(1*page, 1)
	m.Set(2*page, 2)

	if v, ok := m.Get(1 * page); !ok || v != 1 {
		t.Errorf("Get(1 page) = %d, %v", v, ok)
	}
	if v, ok := m.Get(2 * page); !ok || v != 2 {
		t.Errorf("Get(2 pages) = %d, %v", v, ok)
	}
	if _, ok := m.Get(3 * page); ok {
		t.Error("Get(3 pages) should miss")
	}

	m.Set(1*page, 7)
	if v, _ := m.Get(1 * page); v != 7 {
		t.Errorf("update failed, got %d", v)
	}
	if m.Len() != 2 {
		t.Errorf("expected len=2, got %d", m.Len())
	}

	if !m.Delete(1 * page) {
		t.Error("delete should report true")
	}
	if _, ok := m.Get(1 * page); ok {
		t.Error("deleted key still present")
	}
	if m.Len() != 1 {
		t.Errorf("expected len=1, got %d", m.Len())
	}
}

// Deleting from the middle of probe chains must keep every other key reachable.
func TestMapChurn(t *testing.T) {
	var m Map
	ref := make(map[uintptr]uint32)
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 20000; i++ {
		key := uintptr(rng.Intn(2048)) * page
		if rng.Intn(3) == 0 {
			_, want := ref[key]
			if got := m.Delete(key); got != want {
				t.Fatalf("Delete(%#x) = %v, want %v", key, got, want)
			}
			delete(ref, key)
			continue
		}
		m.Set(key, uint32(i))
		ref[key] = uint32(i)
	}

	if m.Len() != len(ref) {
		t.Fatalf("len mismatch: got %d, want %d", m.Len(), len(ref))
	}
	for key, want := range ref {
		if got, ok := m.Get(key); !ok || got != want {
			t.Fatalf("Get(%#x) = %d, %v; want %d", key, got, ok, want)
		}
	}
}
