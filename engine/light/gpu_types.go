package light

import (
	"encoding/binary"

	"github.com/Carmen-Shannon/oxy-frame/common"
)

// MaxGPULights is the maximum number of lights marshaled into the light uniform buffer
// per frame. Visible lights beyond the budget are dropped in visit order.
const MaxGPULights = 256

// GPULightSize is the std430 size of one GPULight.
const GPULightSize = 64

// GPULightHeaderSize is the std430 size of the GPULightHeader.
const GPULightHeaderSize = 16

// GPULightSource is the WGSL definition of the Light struct.
// Matches GPULight layout exactly (64 bytes, std430 aligned).
const GPULightSource = `struct Light {
    position: vec3<f32>,
    light_type: u32,
    color: vec3<f32>,
    intensity: f32,
    direction: vec3<f32>,
    light_range: f32,
    inner_cone: f32,
    outer_cone: f32,
    casts_shadows: u32,
    _pad: u32,
}`

// GPULightHeaderSource is the WGSL definition of the LightHeader struct.
const GPULightHeaderSource = `struct LightHeader {
    ambient_color: vec3<f32>,
    light_count: u32,
}`

// GPULight is the GPU-aligned representation of a single light source.
// Size: 64 bytes (std430 aligned).
type GPULight struct {
	Position     [3]float32 // offset  0: world-space position (point/spot) or unused (directional)
	LightType    uint32     // offset 12: 0 = directional, 1 = point, 2 = spot
	Color        [3]float32 // offset 16: RGB color
	Intensity    float32    // offset 28: scalar multiplier
	Direction    [3]float32 // offset 32: normalized direction (directional/spot) or unused (point)
	LightRange   float32    // offset 44: attenuation cutoff distance
	InnerCone    float32    // offset 48: cos(inner half-angle) for spot
	OuterCone    float32    // offset 52: cos(outer half-angle) for spot
	CastsShadows uint32     // offset 56: 1 = casts shadows, 0 = does not
}

// Size returns the size of the marshaled GPULight in bytes.
//
// Returns:
//   - int: GPULightSize
func (g *GPULight) Size() int {
	return GPULightSize
}

// MarshalTo serializes the GPULight into buf, which must hold at least GPULightSize bytes.
//
// Parameters:
//   - buf: destination buffer
func (g *GPULight) MarshalTo(buf []byte) {
	for i := range 3 {
		common.PutFloat32(buf[i*4:], g.Position[i])
		common.PutFloat32(buf[16+i*4:], g.Color[i])
		common.PutFloat32(buf[32+i*4:], g.Direction[i])
	}
	binary.LittleEndian.PutUint32(buf[12:16], g.LightType)
	common.PutFloat32(buf[28:], g.Intensity)
	common.PutFloat32(buf[44:], g.LightRange)
	common.PutFloat32(buf[48:], g.InnerCone)
	common.PutFloat32(buf[52:], g.OuterCone)
	binary.LittleEndian.PutUint32(buf[56:60], g.CastsShadows)
	binary.LittleEndian.PutUint32(buf[60:64], 0) // padding
}

// Marshal serializes the GPULight into a new buffer.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload
func (g *GPULight) Marshal() []byte {
	buf := make([]byte, GPULightSize)
	g.MarshalTo(buf)
	return buf
}

// GPULightHeader is the header prepended to the light uniform buffer.
// Size: 16 bytes (vec3 + u32).
type GPULightHeader struct {
	AmbientColor [3]float32 // offset 0: scene ambient RGB
	LightCount   uint32     // offset 12: number of lights following the header
}

// Size returns the size of the marshaled header in bytes.
//
// Returns:
//   - int: GPULightHeaderSize
func (h *GPULightHeader) Size() int {
	return GPULightHeaderSize
}

// Marshal serializes the header into a new buffer.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload
func (h *GPULightHeader) Marshal() []byte {
	buf := make([]byte, GPULightHeaderSize)
	for i := range 3 {
		common.PutFloat32(buf[i*4:], h.AmbientColor[i])
	}
	binary.LittleEndian.PutUint32(buf[12:16], h.LightCount)
	return buf
}

// MarshalLightBuffer marshals world-space lights into a byte buffer. The layout is:
//
//	[GPULightHeader (16 bytes)] [GPULight × count (64 bytes each)]
//
// At most MaxGPULights lights are written; the header count matches what was written.
//
// Parameters:
//   - lights: the visible lights in world space
//   - ambient: the scene ambient color as RGB
//
// Returns:
//   - []byte: the marshaled buffer ready for GPU upload
func MarshalLightBuffer(lights []GPULight, ambient [3]float32) []byte {
	count := min(len(lights), MaxGPULights)

	header := GPULightHeader{AmbientColor: ambient, LightCount: uint32(count)}
	buf := make([]byte, GPULightHeaderSize+count*GPULightSize)
	copy(buf, header.Marshal())

	offset := GPULightHeaderSize
	for i := range count {
		lights[i].MarshalTo(buf[offset : offset+GPULightSize])
		offset += GPULightSize
	}
	return buf
}
