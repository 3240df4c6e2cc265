package render_queue

import (
	"github.com/Carmen-Shannon/oxy-frame/engine/drawable"
)

// FrameIndex addresses a Renderable inside a FrameArena.
type FrameIndex uint32

// Renderable is the per-frame copy of everything a draw callback needs. It is written at
// queue-build time and stays unchanged until the arena is reset at the start of the next
// frame.
type Renderable struct {
	Drawable        drawable.Handle
	WorldTransform  [16]float32
	MaterialID      uint32
	Variant         drawable.VariantBits
	TransformOffset uint32 // index into the static or skinned transform buffer
}

// FrameArena owns the Renderable records referenced by queue entries for one frame.
type FrameArena struct {
	items []Renderable
}

// NewFrameArena creates an arena with room for capacity records.
//
// Parameters:
//   - capacity: initial capacity hint
//
// Returns:
//   - *FrameArena: the new arena
func NewFrameArena(capacity int) *FrameArena {
	return &FrameArena{items: make([]Renderable, 0, max(capacity, 0))}
}

// Reset drops every record while keeping the backing storage.
func (a *FrameArena) Reset() {
	a.items = a.items[:0]
}

// Add appends a record and returns its index.
//
// Parameters:
//   - r: the record
//
// Returns:
//   - FrameIndex: the index of the stored record
func (a *FrameArena) Add(r Renderable) FrameIndex {
	a.items = append(a.items, r)
	return FrameIndex(len(a.items) - 1)
}

// Get returns the record at idx. The pointer is valid until the next Reset or Add.
//
// Parameters:
//   - idx: the record index
//
// Returns:
//   - *Renderable: the record, or nil if idx is out of range
func (a *FrameArena) Get(idx FrameIndex) *Renderable {
	if int(idx) >= len(a.items) {
		return nil
	}
	return &a.items[idx]
}

// Len returns the number of records.
func (a *FrameArena) Len() int {
	return len(a.items)
}
