package scene

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-frame/engine/drawable"
	"github.com/Carmen-Shannon/oxy-frame/engine/render_queue"
)

// BuildQueue rebuilds one queue type from culled candidates. It walks the candidates once
// in order, keeps the visible ones, copies each into the frame arena and pushes an entry
// keyed by (layer, material, variant). The list is then stable-sorted. Other queue types
// are not touched.
//
// Counts are incremented exactly once per pushed entry; the returned counts always sum to
// the queue length. Transform offsets are assigned per counter, so static and skinned
// drawables index their own transform buffers densely.
//
// Parameters:
//   - candidates: the culled candidates
//   - store: the drawable store the candidates reference
//   - arena: the frame arena, already reset for this frame
//   - queue: the render queue
//   - queueType: the list to rebuild
//   - draw: the draw callback stored in every entry
//
// Returns:
//   - Counts: static and skinned entry counts
//   - error: ErrInvalidDrawable if a visible candidate references a missing drawable; the
//     queue type is left empty in that case
func BuildQueue(
	candidates []Candidate,
	store *drawable.Store,
	arena *render_queue.FrameArena,
	queue *render_queue.RenderQueue,
	queueType render_queue.QueueType,
	draw render_queue.DrawFunc,
) (Counts, error) {
	queue.Clear(queueType)

	var counts Counts
	for i := range candidates {
		c := &candidates[i]
		if !c.Visible {
			continue
		}
		d := store.Get(c.Drawable)
		if d == nil {
			queue.Clear(queueType)
			return Counts{}, fmt.Errorf("%w: candidate %d references drawable %d", ErrInvalidDrawable, i, c.Drawable)
		}

		var offset uint32
		if d.Skinned() {
			offset = uint32(counts.Skinned)
			counts.Skinned++
		} else {
			offset = uint32(counts.Static)
			counts.Static++
		}

		idx := arena.Add(render_queue.Renderable{
			Drawable:        c.Drawable,
			WorldTransform:  c.WorldTransform,
			MaterialID:      d.MaterialID,
			Variant:         d.Variant,
			TransformOffset: offset,
		})
		queue.Push(queueType, render_queue.QueueEntry{
			Payload: idx,
			Draw:    draw,
			Key:     render_queue.NewSortKey(d.Layer, d.MaterialID, d.Variant),
		})
	}

	queue.Sort(queueType)
	return counts, nil
}
