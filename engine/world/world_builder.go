package world

import (
	"github.com/Carmen-Shannon/oxy-frame/engine/drawable"
	"github.com/Carmen-Shannon/oxy-frame/engine/light"
)

// WorldBuilderOption is a functional option for configuring a World.
type WorldBuilderOption func(*World)

// WithDrawableStore makes the world reference an existing drawable store.
//
// Parameters:
//   - s: the store
//
// Returns:
//   - WorldBuilderOption: option function to apply
func WithDrawableStore(s *drawable.Store) WorldBuilderOption {
	return func(w *World) {
		w.drawables = s
	}
}

// WithCapacity preallocates room for n nodes.
//
// Parameters:
//   - n: expected node count
//
// Returns:
//   - WorldBuilderOption: option function to apply
func WithCapacity(n int) WorldBuilderOption {
	return func(w *World) {
		w.nodes = make([]node, 0, max(n, 0))
	}
}

// NodeBuilderOption is a functional option for configuring a node in AddNode.
type NodeBuilderOption func(*node)

// WithTransform sets the node's local transform.
//
// Parameters:
//   - m: the column-major local transform
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithTransform(m [16]float32) NodeBuilderOption {
	return func(n *node) {
		n.local = m
	}
}

// WithActive sets the initial active flag. Nodes are active by default.
//
// Parameters:
//   - active: the initial state
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithActive(active bool) NodeBuilderOption {
	return func(n *node) {
		n.active = active
	}
}

// WithLight attaches a light to the new node.
//
// Parameters:
//   - l: the light
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithLight(l light.Light) NodeBuilderOption {
	return func(n *node) {
		n.light = l
	}
}
