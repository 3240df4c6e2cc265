// Package drawable holds the renderable records owned by the object system. A Drawable is
// referenced by handle from world nodes, per-frame candidates and render queue entries; the
// only field the frame pipeline mutates is its visibility bitmask.
package drawable

import (
	"github.com/Carmen-Shannon/oxy-frame/common"
)

// Handle indexes a Drawable inside a Store.
type Handle uint32

// InvalidHandle never addresses a stored drawable; Store.Add returns it only with an error.
const InvalidHandle Handle = ^Handle(0)

// Layer is the coarse draw ordering bucket. It occupies the most significant bits of a
// render queue sort key.
type Layer uint8

const (
	LayerDefault Layer = iota
	LayerTransparent
	LayerOverlay
)

// VariantBits describes the geometry variant of a drawable.
type VariantBits uint32

const (
	VariantHasSkin VariantBits = 1 << iota
	VariantHasNormal
	VariantHasUV
	VariantHasTangent
	VariantHasColour
)

// VisibilityBits is the per-frame visibility mask of a drawable.
type VisibilityBits uint32

const (
	VisibleRender VisibilityBits = 1 << iota
	VisibleShadow
)

// Drawable is the per-object render record.
type Drawable struct {
	LocalBox   common.AABB
	MaterialID uint32
	Layer      Layer
	Variant    VariantBits
	Visibility VisibilityBits
}

// Skinned reports whether the drawable uses the skinned transform buffer.
//
// Returns:
//   - bool: true if VariantHasSkin is set
func (d *Drawable) Skinned() bool {
	return d.Variant&VariantHasSkin != 0
}

// IsVisible reports whether every bit in mask is set.
//
// Parameters:
//   - mask: the visibility bits to check
//
// Returns:
//   - bool: true if all bits are set
func (d *Drawable) IsVisible(mask VisibilityBits) bool {
	return d.Visibility&mask == mask
}
