// Package ring implements the fixed-size circular array of heap.Slots that
// backs a quantile filter's sliding window: advancing the window reuses the
// oldest slot rather than allocating a new one.
package ring

import "github.com/rolling-quantiles/rq/internal/heap"

// Buffer is a ring of w Slots plus a write cursor. Slot c is the oldest
// once the window has filled.
//
// A Buffer is not safe for concurrent use.
type Buffer struct {
	slots  []heap.Slot
	cursor int
	count  int
}

// New allocates a Buffer of the given window size. Slots are zero-valued
// until a filter assigns them a Side and Index via a heap Push.
func New(window int) *Buffer {
	return &Buffer{slots: make([]heap.Slot, window)}
}

// Len returns the window size (capacity), not the number of samples seen.
func (b *Buffer) Len() int {
	return len(b.slots)
}

// Count returns the number of samples ingested so far, capped at Len().
func (b *Buffer) Count() int {
	return b.count
}

// Full reports whether the window has been completely populated at least
// once.
func (b *Buffer) Full() bool {
	return b.count == len(b.slots)
}

// CurrentSlot returns the slot the next sample will occupy: a fresh slot
// while filling, or the oldest occupied slot once the window is full.
func (b *Buffer) CurrentSlot() *heap.Slot {
	return &b.slots[b.cursor]
}

// SlotAtLag returns the slot at index (cursor - lag - 1) mod w, per
// spec.md §4.4's high-pass delayed-input reference: with lag = w/2 this is
// the window's center cell, lagging the most recently written sample by
// lag positions.
func (b *Buffer) SlotAtLag(lag int) *heap.Slot {
	n := len(b.slots)
	idx := ((b.cursor-lag-1)%n + n) % n
	return &b.slots[idx]
}

// Advance moves the cursor to the next slot, growing Count until the window
// fills.
func (b *Buffer) Advance() {
	if b.count < len(b.slots) {
		b.count++
	}
	b.cursor = (b.cursor + 1) % len(b.slots)
}
