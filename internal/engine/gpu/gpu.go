// Package gpu holds the vertex layout and the narrow seam between scene code
// and the OpenGL context. Scene, mesh and render code talk to Backend and
// Program; the GL type implements them against go-gl, and gputest records
// them for host-side tests.
package gpu

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is the interleaved vertex layout: position, normal, texture coordinates.
// Attribute locations are 0, 1 and 2 respectively.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
}

// TextureID is a GPU texture handle.
type TextureID uint32

// NoTexture is the explicit "no texture" sentinel. Binding it selects the
// backend's fallback checkerboard instead of an unbound texture unit.
const NoTexture TextureID = 0

// Texture units used by every lit draw.
const (
	UnitDiffuse = 0
	UnitShadow  = 1
)

// Buffers identifies an uploaded indexed triangle list.
type Buffers struct {
	VAO   uint32
	VBO   uint32
	EBO   uint32
	Count int32
}

// Valid reports whether the buffers hold drawable geometry.
func (b Buffers) Valid() bool {
	return b.VAO != 0 && b.Count > 0
}

// Program is a linked shader program that accepts named uniforms.
type Program interface {
	Use()
	Unuse()
	SetMat4(name string, m mgl32.Mat4)
	SetVec4(name string, v mgl32.Vec4)
	SetVec3(name string, v mgl32.Vec3)
	SetFloat(name string, f float32)
	SetInt(name string, i int32)
}

// Backend creates, draws and frees GPU resources.
type Backend interface {
	UploadMesh(vertices []Vertex, indices []uint32) (Buffers, error)
	DeleteMesh(b Buffers)

	// UploadTexture uploads img, choosing RGB or RGBA storage from its channel count.
	UploadTexture(img image.Image) (TextureID, error)
	DeleteTexture(id TextureID)

	// FallbackTexture returns the texture bound in place of NoTexture.
	FallbackTexture() TextureID

	// DrawMesh binds tex to UnitDiffuse and aux to UnitShadow, activates p,
	// draws b, then unbinds the program and both units.
	DrawMesh(b Buffers, p Program, tex, aux TextureID)
}
