package scene

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/Carmen-Shannon/oxy-frame/engine/camera"
	"github.com/Carmen-Shannon/oxy-frame/engine/drawable"
	"github.com/Carmen-Shannon/oxy-frame/engine/light"
	"github.com/Carmen-Shannon/oxy-frame/engine/render_queue"
	"github.com/Carmen-Shannon/oxy-frame/engine/task_splitter"
	"github.com/Carmen-Shannon/oxy-frame/engine/world"
	"github.com/stretchr/testify/require"
)

var unitBox = common.AABB{Min: [3]float32{-0.5, -0.5, -0.5}, Max: [3]float32{0.5, 0.5, 0.5}}

func translate(x, y, z float32) [16]float32 {
	m := common.IdentityMatrix()
	m[12], m[13], m[14] = x, y, z
	return m
}

// addDrawable creates a root node at pos carrying a unit-box drawable.
func addDrawable(t *testing.T, w *world.World, pos [3]float32, d drawable.Drawable) (world.Handle, drawable.Handle) {
	t.Helper()
	d.LocalBox = unitBox
	dh, err := w.Drawables().Add(d)
	require.NoError(t, err)
	h, err := w.AddNode(world.NoParent, world.WithTransform(translate(pos[0], pos[1], pos[2])))
	require.NoError(t, err)
	require.NoError(t, w.AttachDrawable(h, dh))
	return h, dh
}

// failingSplitter runs the first half of the range and then reports a worker failure.
type failingSplitter struct{}

func (failingSplitter) Workers() int        { return 2 }
func (failingSplitter) ChunkThreshold() int { return 0 }
func (failingSplitter) Close()              {}
func (failingSplitter) Run(n int, fn task_splitter.ChunkFunc) error {
	if err := fn(0, n/2); err != nil {
		return err
	}
	return fmt.Errorf("%w: chunk [%d, %d): %w", task_splitter.ErrWorkerFailed, n/2, n, errors.New("fault"))
}

func TestUpdateRequiresCamera(t *testing.T) {
	s := NewScene(world.New(), nil)
	require.ErrorIs(t, s.Update(0.016), ErrNoCamera)
}

func TestUpdateEndToEndAllVisible(t *testing.T) {
	w := world.New(world.WithCapacity(10000))
	for i := range 10000 {
		d := drawable.Drawable{MaterialID: uint32(i % 7)}
		if i%3 == 0 {
			d.Variant = drawable.VariantHasSkin
		}
		addDrawable(t, w, [3]float32{0, 0, 0}, d)
	}

	cam := camera.NewCamera(camera.WithPosition(0, 0, 5))
	sp := task_splitter.NewSplitter(task_splitter.WithWorkers(4), task_splitter.WithChunkThreshold(16))
	s := NewScene(w, cam, WithSplitter(sp))

	require.NoError(t, s.Update(0.016))

	q := s.Queue()
	counts := s.Counts()
	require.Equal(t, 10000, q.Len(render_queue.QueueColour))
	require.Equal(t, w.Drawables().CountVisible(drawable.VisibleRender), q.Len(render_queue.QueueColour))
	require.Equal(t, q.Len(render_queue.QueueColour), counts.Static+counts.Skinned)
	require.Equal(t, 3334, counts.Skinned)

	entries := q.Entries(render_queue.QueueColour)
	for i := 1; i < len(entries); i++ {
		require.LessOrEqual(t, uint64(entries[i-1].Key), uint64(entries[i].Key))
	}

	static, skinned := s.TransformUniforms()
	require.Len(t, static, counts.Static*TransformStride)
	require.Len(t, skinned, counts.Skinned*TransformStride)
	require.Len(t, s.CameraUniform(), camera.GPUCameraUniformSize)
}

func TestUpdateCullsOutsideBoxes(t *testing.T) {
	w := world.New()
	_, inside := addDrawable(t, w, [3]float32{0, 0, 0}, drawable.Drawable{MaterialID: 1})
	_, behind := addDrawable(t, w, [3]float32{0, 0, 20}, drawable.Drawable{MaterialID: 2})
	_, side := addDrawable(t, w, [3]float32{100, 0, 0}, drawable.Drawable{MaterialID: 3})

	s := NewScene(w, camera.NewCamera(camera.WithPosition(0, 0, 5)))
	require.NoError(t, s.Update(0.016))

	store := w.Drawables()
	require.True(t, store.Get(inside).IsVisible(drawable.VisibleRender))
	require.False(t, store.Get(behind).IsVisible(drawable.VisibleRender))
	require.False(t, store.Get(side).IsVisible(drawable.VisibleRender))

	candidates := s.Candidates()
	require.Len(t, candidates, 3)
	require.Equal(t, []bool{true, false, false}, []bool{candidates[0].Visible, candidates[1].Visible, candidates[2].Visible})
	require.Equal(t, 1, s.Queue().Len(render_queue.QueueColour))
	require.Equal(t, Counts{Static: 1}, s.Counts())
}

func TestUpdateSkipsInactiveSubtrees(t *testing.T) {
	w := world.New()
	parent, err := w.AddNode(world.NoParent)
	require.NoError(t, err)
	child, err := w.AddNode(parent)
	require.NoError(t, err)
	dh, err := w.Drawables().Add(drawable.Drawable{LocalBox: unitBox})
	require.NoError(t, err)
	require.NoError(t, w.AttachDrawable(child, dh))
	addDrawable(t, w, [3]float32{0, 0, 0}, drawable.Drawable{})

	require.NoError(t, w.SetActive(parent, false))

	s := NewScene(w, camera.NewCamera())
	require.NoError(t, s.Update(0.016))
	require.Len(t, s.Candidates(), 1)
	require.False(t, w.Drawables().Get(dh).IsVisible(drawable.VisibleRender))
}

func TestUpdateWorkerFailureCommitsNothing(t *testing.T) {
	w := world.New()
	var handles []drawable.Handle
	for range 8 {
		_, dh := addDrawable(t, w, [3]float32{0, 0, 0}, drawable.Drawable{})
		handles = append(handles, dh)
	}
	// a previous frame left every render bit set
	for _, dh := range handles {
		w.Drawables().Get(dh).Visibility |= drawable.VisibleRender
	}

	s := NewScene(w, camera.NewCamera(), WithSplitter(failingSplitter{}))
	err := s.Update(0.016)
	require.ErrorIs(t, err, task_splitter.ErrWorkerFailed)

	require.Equal(t, 0, w.Drawables().CountVisible(drawable.VisibleRender))
	for _, c := range s.Candidates() {
		require.False(t, c.Visible)
	}
}

func TestUpdateCullsLights(t *testing.T) {
	w := world.New()
	addDrawable(t, w, [3]float32{0, 0, 0}, drawable.Drawable{})
	near := light.NewLight(light.LightTypePoint, light.WithRange(2))
	far := light.NewLight(light.LightTypePoint, light.WithRange(2))
	sun := light.NewLight(light.LightTypeDirectional)
	off := light.NewLight(light.LightTypePoint, light.Disabled())

	nearNode, err := w.AddNode(world.NoParent, world.WithLight(near))
	require.NoError(t, err)
	_, err = w.AddNode(world.NoParent, world.WithLight(far), world.WithTransform(translate(500, 0, 0)))
	require.NoError(t, err)
	_, err = w.AddNode(world.NoParent, world.WithLight(sun), world.WithTransform(translate(500, 0, 0)))
	require.NoError(t, err)
	_, err = w.AddNode(world.NoParent, world.WithLight(off))
	require.NoError(t, err)

	s := NewScene(w, camera.NewCamera(), WithAmbientColor([3]float32{0.2, 0.2, 0.2}))
	require.NoError(t, s.Update(0.016))

	lights := s.VisibleLights()
	require.Len(t, lights, 2)
	require.Equal(t, nearNode, lights[0].Node)
	require.Equal(t, sun, lights[1].Light)
	require.Len(t, s.LightUniforms(), light.GPULightHeaderSize+2*light.GPULightSize)
}

func TestUniformsAreNamed(t *testing.T) {
	w := world.New()
	addDrawable(t, w, [3]float32{0, 0, 0}, drawable.Drawable{Variant: drawable.VariantHasSkin})
	s := NewScene(w, camera.NewCamera())
	require.NoError(t, s.Update(0.016))

	var names []string
	for _, u := range s.Uniforms() {
		names = append(names, u.Name)
	}
	require.Equal(t, []string{BufferCamera, BufferTransformsStatic, BufferTransformsSkinned, BufferLights}, names)

	static, skinned := s.TransformUniforms()
	require.Empty(t, static)
	require.Len(t, skinned, TransformStride)
}
