// Package world is the object graph the frame pipeline reads from. Nodes live in an arena
// addressed by Handle; parent and child links are indices into that arena, so the graph
// has no owning pointers and a node can never own its ancestor.
package world

import (
	"errors"
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/Carmen-Shannon/oxy-frame/engine/drawable"
	"github.com/Carmen-Shannon/oxy-frame/engine/light"
)

// Handle indexes a node in a World.
type Handle uint32

// NoParent marks a root node.
const NoParent Handle = math.MaxUint32

var (
	// ErrInvalidHandle is returned when a handle does not address a node or drawable.
	ErrInvalidHandle = errors.New("world: invalid handle")

	// ErrDrawableAttached is returned when a drawable is attached to a second node.
	ErrDrawableAttached = errors.New("world: drawable already attached")
)

type node struct {
	parent   Handle
	children []Handle
	active   bool

	local [16]float32
	world [16]float32

	drawable    drawable.Handle
	hasDrawable bool
	light       light.Light
}

// World is an arena of scene nodes plus the drawable store they reference.
// Nodes are appended after their parent, so arena order is a valid parent-first order.
// Not safe for concurrent mutation.
type World struct {
	nodes     []node
	drawables *drawable.Store
	owners    map[drawable.Handle]Handle
}

// New creates an empty World.
//
// Parameters:
//   - options: functional options to configure the world
//
// Returns:
//   - *World: the new world
func New(options ...WorldBuilderOption) *World {
	w := &World{
		owners: make(map[drawable.Handle]Handle),
	}
	for _, option := range options {
		option(w)
	}
	if w.drawables == nil {
		w.drawables = drawable.NewStore(0)
	}
	return w
}

// AddNode appends a node under parent (or as a root when parent is NoParent).
//
// Parameters:
//   - parent: the parent handle or NoParent
//   - options: functional options for the node
//
// Returns:
//   - Handle: the new node handle
//   - error: ErrInvalidHandle if parent does not exist
func (w *World) AddNode(parent Handle, options ...NodeBuilderOption) (Handle, error) {
	if parent != NoParent && !w.valid(parent) {
		return 0, fmt.Errorf("%w: parent %d", ErrInvalidHandle, parent)
	}

	n := node{
		parent: parent,
		active: true,
		local:  common.IdentityMatrix(),
		world:  common.IdentityMatrix(),
	}
	for _, option := range options {
		option(&n)
	}

	h := Handle(len(w.nodes))
	w.nodes = append(w.nodes, n)
	if parent != NoParent {
		w.nodes[parent].children = append(w.nodes[parent].children, h)
	}
	return h, nil
}

// SetActive toggles a node. An inactive node hides its whole subtree.
//
// Parameters:
//   - h: the node handle
//   - active: the new state
//
// Returns:
//   - error: ErrInvalidHandle if h does not exist
func (w *World) SetActive(h Handle, active bool) error {
	if !w.valid(h) {
		return fmt.Errorf("%w: node %d", ErrInvalidHandle, h)
	}
	w.nodes[h].active = active
	return nil
}

// SetLocalTransform replaces a node's transform relative to its parent.
// World transforms are refreshed by UpdateTransforms.
//
// Parameters:
//   - h: the node handle
//   - m: the column-major local transform
//
// Returns:
//   - error: ErrInvalidHandle if h does not exist
func (w *World) SetLocalTransform(h Handle, m [16]float32) error {
	if !w.valid(h) {
		return fmt.Errorf("%w: node %d", ErrInvalidHandle, h)
	}
	w.nodes[h].local = m
	return nil
}

// AttachDrawable binds a drawable to a node. A drawable may belong to one node only.
//
// Parameters:
//   - h: the node handle
//   - d: the drawable handle in Drawables()
//
// Returns:
//   - error: ErrInvalidHandle or ErrDrawableAttached
func (w *World) AttachDrawable(h Handle, d drawable.Handle) error {
	if !w.valid(h) {
		return fmt.Errorf("%w: node %d", ErrInvalidHandle, h)
	}
	if !w.drawables.Valid(d) {
		return fmt.Errorf("%w: drawable %d", ErrInvalidHandle, d)
	}
	if owner, ok := w.owners[d]; ok {
		return fmt.Errorf("%w: drawable %d is owned by node %d", ErrDrawableAttached, d, owner)
	}
	if w.nodes[h].hasDrawable {
		delete(w.owners, w.nodes[h].drawable)
	}
	w.nodes[h].drawable = d
	w.nodes[h].hasDrawable = true
	w.owners[d] = h
	return nil
}

// AttachLight binds a light to a node. The light follows the node's world transform.
//
// Parameters:
//   - h: the node handle
//   - l: the light, or nil to detach
//
// Returns:
//   - error: ErrInvalidHandle if h does not exist
func (w *World) AttachLight(h Handle, l light.Light) error {
	if !w.valid(h) {
		return fmt.Errorf("%w: node %d", ErrInvalidHandle, h)
	}
	w.nodes[h].light = l
	return nil
}

// UpdateTransforms recomputes every world transform as parent.world * local.
func (w *World) UpdateTransforms() {
	for i := range w.nodes {
		n := &w.nodes[i]
		if n.parent == NoParent {
			n.world = n.local
			continue
		}
		common.Mul4(n.world[:], w.nodes[n.parent].world[:], n.local[:])
	}
}

// VisitActive calls fn for every node whose own flag and every ancestor flag are active,
// in arena order.
//
// Parameters:
//   - fn: the visitor
func (w *World) VisitActive(fn func(h Handle)) {
	reachable := make([]bool, len(w.nodes))
	for i := range w.nodes {
		n := &w.nodes[i]
		reachable[i] = n.active && (n.parent == NoParent || reachable[n.parent])
		if reachable[i] {
			fn(Handle(i))
		}
	}
}

// Drawable returns the drawable attached to a node.
//
// Parameters:
//   - h: the node handle
//
// Returns:
//   - drawable.Handle: the attached drawable
//   - bool: false if the node has none
func (w *World) Drawable(h Handle) (drawable.Handle, bool) {
	if !w.valid(h) || !w.nodes[h].hasDrawable {
		return drawable.InvalidHandle, false
	}
	return w.nodes[h].drawable, true
}

// Light returns the light attached to a node, or nil.
func (w *World) Light(h Handle) light.Light {
	if !w.valid(h) {
		return nil
	}
	return w.nodes[h].light
}

// WorldTransform returns the node's world transform as of the last UpdateTransforms.
func (w *World) WorldTransform(h Handle) [16]float32 {
	if !w.valid(h) {
		return common.IdentityMatrix()
	}
	return w.nodes[h].world
}

// Parent returns the parent of a node, or NoParent.
func (w *World) Parent(h Handle) Handle {
	if !w.valid(h) {
		return NoParent
	}
	return w.nodes[h].parent
}

// Children returns the children of a node in insertion order.
func (w *World) Children(h Handle) []Handle {
	if !w.valid(h) {
		return nil
	}
	return w.nodes[h].children
}

// Drawables returns the drawable store referenced by this world.
func (w *World) Drawables() *drawable.Store {
	return w.drawables
}

// Len returns the number of nodes.
func (w *World) Len() int {
	return len(w.nodes)
}

func (w *World) valid(h Handle) bool {
	return int(h) < len(w.nodes)
}
