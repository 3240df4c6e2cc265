package render_queue

import (
	"github.com/Carmen-Shannon/oxy-frame/engine/drawable"
)

// SortKey orders queue entries. Bit layout, most significant first:
//
//	63..56  layer     (8 bits)
//	55..32  material  (24 bits)
//	31..0   variant   (32 bits)
//
// Sorting by the raw integer groups draws by layer, then material, then variant.
type SortKey uint64

const (
	layerShift    = 56
	materialShift = 32

	// MaxMaterialID is the largest material id a key can hold; higher bits are truncated.
	// drawable.Store.Add rejects drawables above it.
	MaxMaterialID = drawable.MaxMaterialID
)

// NewSortKey packs the three ordering fields into a key.
//
// Parameters:
//   - layer: the render layer
//   - material: the material id, truncated to 24 bits
//   - variant: the geometry variant bits
//
// Returns:
//   - SortKey: the packed key
func NewSortKey(layer drawable.Layer, material uint32, variant drawable.VariantBits) SortKey {
	return SortKey(uint64(layer)<<layerShift |
		uint64(material&MaxMaterialID)<<materialShift |
		uint64(variant))
}

// Layer returns the layer field.
func (k SortKey) Layer() drawable.Layer {
	return drawable.Layer(k >> layerShift)
}

// Material returns the material field.
func (k SortKey) Material() uint32 {
	return uint32(k>>materialShift) & MaxMaterialID
}

// Variant returns the variant field.
func (k SortKey) Variant() drawable.VariantBits {
	return drawable.VariantBits(uint32(k))
}
