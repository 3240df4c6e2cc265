package world

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/Carmen-Shannon/oxy-frame/engine/drawable"
	"github.com/stretchr/testify/require"
)

func translate(x, y, z float32) [16]float32 {
	m := common.IdentityMatrix()
	m[12], m[13], m[14] = x, y, z
	return m
}

func TestAddNodeRejectsUnknownParent(t *testing.T) {
	w := New()
	_, err := w.AddNode(3)
	require.ErrorIs(t, err, ErrInvalidHandle)
	require.Equal(t, 0, w.Len())
}

func TestUpdateTransformsChainsParents(t *testing.T) {
	w := New()
	root, err := w.AddNode(NoParent, WithTransform(translate(1, 0, 0)))
	require.NoError(t, err)
	child, err := w.AddNode(root, WithTransform(translate(0, 2, 0)))
	require.NoError(t, err)
	grandchild, err := w.AddNode(child, WithTransform(translate(0, 0, 3)))
	require.NoError(t, err)

	w.UpdateTransforms()
	require.Equal(t, translate(1, 2, 3), w.WorldTransform(grandchild))
	require.Equal(t, []Handle{child}, w.Children(root))
	require.Equal(t, root, w.Parent(child))

	require.NoError(t, w.SetLocalTransform(root, translate(-1, 0, 0)))
	w.UpdateTransforms()
	require.Equal(t, translate(-1, 2, 3), w.WorldTransform(grandchild))
}

func TestVisitActiveSkipsInactiveSubtree(t *testing.T) {
	w := New()
	root, _ := w.AddNode(NoParent)
	a, _ := w.AddNode(root)
	aChild, _ := w.AddNode(a)
	b, _ := w.AddNode(root)
	other, _ := w.AddNode(NoParent, WithActive(false))
	otherChild, _ := w.AddNode(other)

	require.NoError(t, w.SetActive(a, false))

	var visited []Handle
	w.VisitActive(func(h Handle) { visited = append(visited, h) })
	require.Equal(t, []Handle{root, b}, visited)
	require.NotContains(t, visited, aChild)
	require.NotContains(t, visited, otherChild)
}

func TestAttachDrawableOwnership(t *testing.T) {
	w := New()
	d, err := w.Drawables().Add(drawable.Drawable{MaterialID: 1})
	require.NoError(t, err)
	n1, _ := w.AddNode(NoParent)
	n2, _ := w.AddNode(NoParent)

	require.NoError(t, w.AttachDrawable(n1, d))
	require.ErrorIs(t, w.AttachDrawable(n2, d), ErrDrawableAttached)
	require.ErrorIs(t, w.AttachDrawable(n2, 42), ErrInvalidHandle)

	got, ok := w.Drawable(n1)
	require.True(t, ok)
	require.Equal(t, d, got)
	_, ok = w.Drawable(n2)
	require.False(t, ok)
}
