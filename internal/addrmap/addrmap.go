// Package addrmap maps region base addresses to registry slots.
// Uses fibonacci hashing so page-aligned keys spread across buckets.
package addrmap

import "math/bits"

// Map is an open addressing hash map from uintptr to uint32 with linear
// probing. The zero value is ready to use.
type Map struct {
	buckets []bucket
	count   int
	shift   uint // 64 - log2(len(buckets))
}

type bucket struct {
	key   uintptr
	value uint32
	used  bool
}

// 2^64 / golden ratio
const fibHash64 = 11400714819323198485

func (m *Map) index(key uintptr) int {
	return int((uint64(key) * fibHash64) >> m.shift)
}

func (m *Map) mask() int {
	return len(m.buckets) - 1
}

// Get returns the value stored for key.
func (m *Map) Get(key uintptr) (uint32, bool) {
	if len(m.buckets) == 0 {
		return 0, false
	}
	for i := m.index(key); ; i = (i + 1) & m.mask() {
		b := &m.buckets[i]
		if !b.used {
			return 0, false
		}
		if b.key == key {
			return b.value, true
		}
	}
}

// Set stores value for key, replacing any previous value.
func (m *Map) Set(key uintptr, value uint32) {
	if len(m.buckets) == 0 {
		m.resize(16)
	} else if m.count >= len(m.buckets)*3/4 {
		m.resize(len(m.buckets) * 2)
	}

	for i := m.index(key); ; i = (i + 1) & m.mask() {
		b := &m.buckets[i]
		if !b.used {
			*b = bucket{key: key, value: value, used: true}
			m.count++
			return
		}
		if b.key == key {
			b.value = value
			return
		}
	}
}

// Delete removes key. Later entries of the probe chain are shifted back so
// lookups never need tombstones.
func (m *Map) Delete(key uintptr) bool {
	if len(m.buckets) == 0 {
		return false
	}
	i := m.index(key)
	for {
		b := &m.buckets[i]
		if !b.used {
			return false
		}
		if b.key == key {
			break
		}
		i = (i + 1) & m.mask()
	}

	hole := i
	for j := (hole + 1) & m.mask(); m.buckets[j].used; j = (j + 1) & m.mask() {
		home := m.index(m.buckets[j].key)
		// Move j into the hole unless its home lies cyclically in (hole, j].
		if (j-home)&m.mask() >= (j-hole)&m.mask() {
			m.buckets[hole] = m.buckets[j]
			hole = j
		}
	}
	m.buckets[hole] = bucket{}
	m.count--
	return true
}

func (m *Map) resize(n int) {
	old := m.buckets
	m.buckets = make([]bucket, n)
	m.shift = uint(64 - bits.TrailingZeros(uint(n)))
	m.count = 0
	for i := range old {
		if old[i].used {
			m.Set(old[i].key, old[i].value)
		}
	}
}

// Len returns the number of entries.
func (m *Map) Len() int {
	return m.count
}
