// Package render_queue holds the per-frame ordered draw lists. Each queue type is an
// independent list of entries; entries carry a sort key, a draw callback and an index into
// the frame arena that owns the data the callback reads.
package render_queue

import (
	"sort"
)

// QueueType selects one of the independent draw lists.
type QueueType int

const (
	QueueColour QueueType = iota
	QueueShadow
	QueueTransparent

	queueTypeCount
)

// String returns the queue type name.
func (t QueueType) String() string {
	switch t {
	case QueueColour:
		return "colour"
	case QueueShadow:
		return "shadow"
	case QueueTransparent:
		return "transparent"
	default:
		return "unknown"
	}
}

// QueueTypes lists every queue type in draw order.
func QueueTypes() []QueueType {
	return []QueueType{QueueShadow, QueueColour, QueueTransparent}
}

// DrawContext is whatever the renderer hands to a draw callback: the bound pipeline and
// the command recorder. It is opaque to this package.
type DrawContext any

// DrawFunc issues the draw for one entry.
type DrawFunc func(ctx DrawContext, r *Renderable) error

// QueueEntry is one draw in a queue.
type QueueEntry struct {
	Payload FrameIndex
	Draw    DrawFunc
	Key     SortKey
}

// RenderQueue is a set of independent per-type draw lists. Operations on one type never
// touch another. Not safe for concurrent use.
type RenderQueue struct {
	lists [queueTypeCount][]QueueEntry
}

// NewRenderQueue creates an empty queue set.
//
// Returns:
//   - *RenderQueue: the new queue set
func NewRenderQueue() *RenderQueue {
	return &RenderQueue{}
}

// Push appends entries to the list of type t, in order.
//
// Parameters:
//   - t: the queue type
//   - entries: the entries to append
func (q *RenderQueue) Push(t QueueType, entries ...QueueEntry) {
	if !t.valid() {
		return
	}
	q.lists[t] = append(q.lists[t], entries...)
}

// Sort orders the list of type t by ascending key. Equal keys keep insertion order.
//
// Parameters:
//   - t: the queue type
func (q *RenderQueue) Sort(t QueueType) {
	if !t.valid() {
		return
	}
	list := q.lists[t]
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Key < list[j].Key
	})
}

// Entries returns the list of type t. The slice is owned by the queue and valid until the
// next Push, Clear or Reset on that type.
//
// Parameters:
//   - t: the queue type
//
// Returns:
//   - []QueueEntry: the entries in draw order
func (q *RenderQueue) Entries(t QueueType) []QueueEntry {
	if !t.valid() {
		return nil
	}
	return q.lists[t]
}

// Len returns the number of entries of type t.
func (q *RenderQueue) Len(t QueueType) int {
	if !t.valid() {
		return 0
	}
	return len(q.lists[t])
}

// Clear empties the list of type t.
func (q *RenderQueue) Clear(t QueueType) {
	if !t.valid() {
		return
	}
	q.lists[t] = q.lists[t][:0]
}

// Reset empties every list.
func (q *RenderQueue) Reset() {
	for i := range q.lists {
		q.lists[i] = q.lists[i][:0]
	}
}

func (t QueueType) valid() bool {
	return t >= 0 && t < queueTypeCount
}
