package render_queue

import (
	"fmt"
	"testing"

	"github.com/Carmen-Shannon/oxy-frame/engine/drawable"
	"github.com/stretchr/testify/require"
)

func TestSortKeyFields(t *testing.T) {
	for idx, tc := range []struct {
		layer      drawable.Layer
		material   uint32
		variant    drawable.VariantBits
		material24 uint32
	}{
		{layer: 0, material: 0, variant: 0, material24: 0},
		{layer: 1, material: 5, variant: drawable.VariantHasSkin, material24: 5},
		{layer: 255, material: MaxMaterialID, variant: 0xffffffff, material24: MaxMaterialID},
		{layer: 2, material: 1<<24 | 3, variant: 7, material24: 3},
	} {
		t.Run(fmt.Sprintf("%d", idx), func(t *testing.T) {
			k := NewSortKey(tc.layer, tc.material, tc.variant)
			require.Equal(t, tc.layer, k.Layer())
			require.Equal(t, tc.material24, k.Material())
			require.Equal(t, tc.variant, k.Variant())
		})
	}
}

func TestSortKeyFieldPriority(t *testing.T) {
	// layer dominates material, material dominates variant
	require.Less(t, uint64(NewSortKey(0, MaxMaterialID, 0xffffffff)), uint64(NewSortKey(1, 0, 0)))
	require.Less(t, uint64(NewSortKey(0, 1, 0xffffffff)), uint64(NewSortKey(0, 2, 0)))
	require.Less(t, uint64(NewSortKey(0, 1, 1)), uint64(NewSortKey(0, 1, 2)))
}

func TestSortOrdersByLayerThenMaterial(t *testing.T) {
	q := NewRenderQueue()
	q.Push(QueueColour,
		QueueEntry{Payload: 0, Key: NewSortKey(0, 5, 0)},
		QueueEntry{Payload: 1, Key: NewSortKey(0, 2, 0)},
		QueueEntry{Payload: 2, Key: NewSortKey(1, 1, 0)},
	)
	q.Sort(QueueColour)

	entries := q.Entries(QueueColour)
	require.Len(t, entries, 3)
	require.Equal(t, []FrameIndex{1, 0, 2}, []FrameIndex{entries[0].Payload, entries[1].Payload, entries[2].Payload})
	require.Equal(t, uint32(2), entries[0].Key.Material())
	require.Equal(t, drawable.Layer(1), entries[2].Key.Layer())
}

func TestSortIsStable(t *testing.T) {
	q := NewRenderQueue()
	key := NewSortKey(0, 3, 0)
	for i := range 50 {
		q.Push(QueueColour, QueueEntry{Payload: FrameIndex(i), Key: key})
	}
	q.Push(QueueColour, QueueEntry{Payload: 99, Key: NewSortKey(0, 1, 0)})
	q.Sort(QueueColour)

	entries := q.Entries(QueueColour)
	require.Equal(t, FrameIndex(99), entries[0].Payload)
	for i := 1; i < len(entries); i++ {
		require.Equal(t, FrameIndex(i-1), entries[i].Payload)
	}
}

func TestQueueTypesAreIndependent(t *testing.T) {
	q := NewRenderQueue()
	q.Push(QueueShadow,
		QueueEntry{Payload: 0, Key: NewSortKey(0, 9, 0)},
		QueueEntry{Payload: 1, Key: NewSortKey(0, 1, 0)},
	)
	q.Push(QueueColour, QueueEntry{Payload: 5, Key: NewSortKey(0, 1, 0)})
	q.Sort(QueueColour)
	q.Clear(QueueColour)

	require.Equal(t, 0, q.Len(QueueColour))
	require.Equal(t, 2, q.Len(QueueShadow))
	require.Equal(t, FrameIndex(0), q.Entries(QueueShadow)[0].Payload)

	q.Reset()
	require.Equal(t, 0, q.Len(QueueShadow))
	require.Nil(t, q.Entries(QueueType(42)))
}

func TestFrameArena(t *testing.T) {
	a := NewFrameArena(1)
	i0 := a.Add(Renderable{MaterialID: 3})
	i1 := a.Add(Renderable{MaterialID: 4})
	require.Equal(t, 2, a.Len())
	require.Equal(t, uint32(4), a.Get(i1).MaterialID)
	require.Equal(t, uint32(3), a.Get(i0).MaterialID)
	require.Nil(t, a.Get(2))

	a.Reset()
	require.Equal(t, 0, a.Len())
	require.Nil(t, a.Get(i0))
}
