// Package slots hands out small integer slot numbers for tracked regions.
package slots

import "math/bits"

const minSlots = 64

// Bitmap tracks which slots are in use.
// Uses uint64 words for efficient 64-bit operations.
type Bitmap struct {
	words    []uint64
	numSlots uint32
	freeHint uint32 // Lowest slot that may be free
}

// NewBitmap creates a bitmap with room for at least numSlots slots.
func NewBitmap(numSlots uint32) *Bitmap {
	if numSlots < minSlots {
		numSlots = minSlots
	}
	return &Bitmap{
		words:    make([]uint64, (numSlots+63)/64),
		numSlots: numSlots,
	}
}

// Allocate marks the lowest free slot at or after the hint as used and
// returns it. The bitmap doubles in size when every slot is taken.
func (b *Bitmap) Allocate() uint32 {
	for w := b.freeHint / 64; w < uint32(len(b.words)); w++ {
		word := b.words[w]
		if word == ^uint64(0) {
			continue
		}
		bit := uint32(bits.TrailingZeros64(^word))
		slot := w*64 + bit
		if slot >= b.numSlots {
			break
		}
		b.words[w] |= 1 << bit
		b.freeHint = slot + 1
		return slot
	}

	slot := b.numSlots
	b.grow(b.numSlots * 2)
	b.words[slot/64] |= 1 << (slot % 64)
	b.freeHint = slot + 1
	return slot
}

// grow extends the bitmap to newCap slots.
func (b *Bitmap) grow(newCap uint32) {
	if newCap <= b.numSlots {
		return
	}
	if n := (newCap + 63) / 64; n > uint32(len(b.words)) {
		words := make([]uint64, n)
		copy(words, b.words)
		b.words = words
	}
	b.numSlots = newCap
}

// Free releases a slot. Freeing an unused or out of range slot is a no-op.
func (b *Bitmap) Free(slot uint32) {
	if slot >= b.numSlots {
		return
	}
	b.words[slot/64] &^= 1 << (slot % 64)
	if slot < b.freeHint {
		b.freeHint = slot
	}
}

// IsAllocated reports whether slot is in use.
func (b *Bitmap) IsAllocated(slot uint32) bool {
	if slot >= b.numSlots {
		return false
	}
	return b.words[slot/64]&(1<<(slot%64)) != 0
}

// Each calls fn for every slot in use, in ascending order.
func (b *Bitmap) Each(fn func(slot uint32)) {
	for w, word := range b.words {
		for word != 0 {
			bit := uint32(bits.TrailingZeros64(word))
			fn(uint32(w)*64 + bit)
			word &= word - 1
		}
	}
}

// Count returns the number of slots in use.
func (b *Bitmap) Count() uint32 {
	var count uint32
	for _, word := range b.words {
		count += uint32(bits.OnesCount64(word))
	}
	return count
}

// Capacity returns the number of slots the bitmap can hold without growing.
func (b *Bitmap) Capacity() uint32 {
	return b.numSlots
}
