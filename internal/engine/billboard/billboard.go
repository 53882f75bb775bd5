// Package billboard draws textured quads that turn to face the camera.
package billboard

import (
	"image"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/scenedemo/internal/engine/gpu"
	"github.com/Faultbox/scenedemo/internal/engine/mesh"
	"github.com/Faultbox/scenedemo/internal/engine/texture"
)

// Quad builds a width x height quad in the XY plane facing +Z, centered on
// the origin.
func Quad(width, height float32) ([]gpu.Vertex, []uint32) {
	w, h := width/2, height/2
	n := [3]float32{0, 0, 1}
	return []gpu.Vertex{
			{Position: [3]float32{w, h, 0}, Normal: n, TexCoord: [2]float32{1, 0}},
			{Position: [3]float32{w, -h, 0}, Normal: n, TexCoord: [2]float32{1, 1}},
			{Position: [3]float32{-w, -h, 0}, Normal: n, TexCoord: [2]float32{0, 1}},
			{Position: [3]float32{-w, h, 0}, Normal: n, TexCoord: [2]float32{0, 0}},
		}, []uint32{
			3, 2, 1,
			3, 1, 0,
		}
}

// Billboard is a quad at a fixed position whose orientation follows the camera.
type Billboard struct {
	mesh     *mesh.Mesh
	position mgl32.Vec3
	model    mgl32.Mat4
	tint     mgl32.Vec4
}

// New uploads a quad textured with img.
func New(backend gpu.Backend, img image.Image, name string, width, height float32, position mgl32.Vec3) (*Billboard, error) {
	v, f := Quad(width, height)
	m, err := mesh.New(backend, v, f, nil)
	if err != nil {
		return nil, err
	}
	if err := m.AddTextureImage(img, name, mesh.Diffuse); err != nil {
		m.Release()
		return nil, err
	}
	return &Billboard{
		mesh:     m,
		position: position,
		model:    mgl32.Translate3D(position[0], position[1], position[2]),
		tint:     mgl32.Vec4{1, 1, 1, 1},
	}, nil
}

// Load reads the texture at path and creates the billboard.
func Load(backend gpu.Backend, path string, width, height float32, position mgl32.Vec3) (*Billboard, error) {
	img, err := texture.Load(path)
	if err != nil {
		return nil, err
	}
	return New(backend, img, path, width, height, position)
}

// Position returns the billboard's center.
func (b *Billboard) Position() mgl32.Vec3 { return b.position }

// Model returns the matrix computed by the last Update.
func (b *Billboard) Model() mgl32.Mat4 { return b.model }

// Mesh returns the quad mesh.
func (b *Billboard) Mesh() *mesh.Mesh { return b.mesh }

// SetTint sets the color multiplied into the texture.
func (b *Billboard) SetTint(c mgl32.Vec4) { b.tint = c }

// Update turns the quad's +Z face towards cameraPos: yaw about Y from the
// horizontal offset, then pitch by the elevation angle.
func (b *Billboard) Update(cameraPos mgl32.Vec3) {
	d := cameraPos.Sub(b.position)
	yaw := float32(math.Atan2(float64(d[0]), float64(d[2])))
	horiz := float32(math.Hypot(float64(d[0]), float64(d[2])))
	pitch := float32(math.Atan2(float64(d[1]), float64(horiz)))

	p := b.position
	b.model = mgl32.Translate3D(p[0], p[1], p[2]).
		Mul4(mgl32.HomogRotate3DY(yaw)).
		Mul4(mgl32.HomogRotate3DX(-pitch))
}

// Render draws the quad with p.
func (b *Billboard) Render(p gpu.Program) {
	p.SetMat4("model", b.model)
	p.SetVec4("material", b.tint)
	b.mesh.Render(p, gpu.NoTexture)
}

// Destroy releases the quad and its texture.
func (b *Billboard) Destroy() {
	b.mesh.Release()
}
