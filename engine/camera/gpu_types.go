package camera

import (
	"github.com/Carmen-Shannon/oxy-frame/common"
)

// GPUCameraUniformSize is the std140 size of the camera uniform block.
const GPUCameraUniformSize = 288

// GPUCameraUniformSource is the WGSL declaration matching GPUCameraUniform.
const GPUCameraUniformSource = `struct CameraUniform {
    mvp: mat4x4<f32>,
    position: vec3<f32>,
    projection: mat4x4<f32>,
    model: mat4x4<f32>,
    view: mat4x4<f32>,
    z_near: f32,
    z_far: f32,
}`

// GPUCameraUniform is the per-frame camera block. Field order is fixed and shaders read it
// bit-for-bit.
//
// Layout (std140):
//
//	mat4x4<f32> mvp         (offset   0)
//	vec3<f32>   position    (offset  64, padded to 80)
//	mat4x4<f32> projection  (offset  80)
//	mat4x4<f32> model       (offset 144)
//	mat4x4<f32> view        (offset 208)
//	f32         z_near      (offset 272)
//	f32         z_far       (offset 276, block padded to 288)
type GPUCameraUniform struct {
	MVP        [16]float32
	Position   [3]float32
	Projection [16]float32
	Model      [16]float32
	View       [16]float32
	ZNear      float32
	ZFar       float32
}

// Size returns the size of the marshaled block in bytes.
//
// Returns:
//   - int: GPUCameraUniformSize
func (g *GPUCameraUniform) Size() int {
	return GPUCameraUniformSize
}

// Marshal serializes the block into a little-endian buffer ready for upload.
//
// Returns:
//   - []byte: GPUCameraUniformSize bytes
func (g *GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, GPUCameraUniformSize)
	common.PutMat4(buf[0:], g.MVP)
	for i := range 3 {
		common.PutFloat32(buf[64+i*4:], g.Position[i])
	}
	common.PutMat4(buf[80:], g.Projection)
	common.PutMat4(buf[144:], g.Model)
	common.PutMat4(buf[208:], g.View)
	common.PutFloat32(buf[272:], g.ZNear)
	common.PutFloat32(buf[276:], g.ZFar)
	return buf
}
