// Package gputest provides a recording gpu.Backend and gpu.Program for tests
// that exercise rendering code without an OpenGL context.
package gputest

import (
	"errors"
	"image"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/scenedemo/internal/engine/gpu"
)

// Fallback is the texture ID the recorder reports as its fallback.
const Fallback gpu.TextureID = 9999

// ErrUpload is returned by uploads while FailUploads is set.
var ErrUpload = errors.New("gputest: upload failed")

// Draw is one recorded DrawMesh call, with the uniforms that were current on
// the program at the time.
type Draw struct {
	Buffers  gpu.Buffers
	Texture  gpu.TextureID
	Aux      gpu.TextureID
	Model    mgl32.Mat4
	Material mgl32.Vec4
}

// Recorder implements gpu.Backend and gpu.Program.
type Recorder struct {
	FailUploads bool

	Draws    []Draw
	Calls    []string
	Mat4s    map[string]mgl32.Mat4
	Vec4s    map[string]mgl32.Vec4
	Vec3s    map[string]mgl32.Vec3
	Floats   map[string]float32
	Ints     map[string]int32
	Meshes   map[uint32]gpu.Buffers
	Textures map[gpu.TextureID]image.Image

	// Deleted* count resources released through the backend.
	DeletedMeshes   int
	DeletedTextures int

	active  bool
	nextVAO uint32
	nextTex gpu.TextureID
}

// New returns an empty recorder.
func New() *Recorder {
	return &Recorder{
		Mat4s:    make(map[string]mgl32.Mat4),
		Vec4s:    make(map[string]mgl32.Vec4),
		Vec3s:    make(map[string]mgl32.Vec3),
		Floats:   make(map[string]float32),
		Ints:     make(map[string]int32),
		Meshes:   make(map[uint32]gpu.Buffers),
		Textures: make(map[gpu.TextureID]image.Image),
	}
}

// Active reports whether Use was called without a matching Unuse.
func (r *Recorder) Active() bool { return r.active }

// Reset drops recorded draws and calls but keeps resources.
func (r *Recorder) Reset() {
	r.Draws = nil
	r.Calls = nil
}

func (r *Recorder) Use() {
	r.active = true
	r.Calls = append(r.Calls, "use")
}

func (r *Recorder) Unuse() {
	r.active = false
	r.Calls = append(r.Calls, "unuse")
}

func (r *Recorder) SetMat4(name string, m mgl32.Mat4) { r.Mat4s[name] = m }
func (r *Recorder) SetVec4(name string, v mgl32.Vec4) { r.Vec4s[name] = v }
func (r *Recorder) SetVec3(name string, v mgl32.Vec3) { r.Vec3s[name] = v }
func (r *Recorder) SetFloat(name string, f float32)   { r.Floats[name] = f }
func (r *Recorder) SetInt(name string, i int32)       { r.Ints[name] = i }

func (r *Recorder) UploadMesh(vertices []gpu.Vertex, indices []uint32) (gpu.Buffers, error) {
	if r.FailUploads {
		return gpu.Buffers{}, ErrUpload
	}
	r.nextVAO++
	b := gpu.Buffers{VAO: r.nextVAO, VBO: r.nextVAO, EBO: r.nextVAO, Count: int32(len(indices))}
	r.Meshes[b.VAO] = b
	return b, nil
}

func (r *Recorder) DeleteMesh(b gpu.Buffers) {
	delete(r.Meshes, b.VAO)
	r.DeletedMeshes++
}

func (r *Recorder) UploadTexture(img image.Image) (gpu.TextureID, error) {
	if r.FailUploads {
		return gpu.NoTexture, ErrUpload
	}
	r.nextTex++
	r.Textures[r.nextTex] = img
	return r.nextTex, nil
}

func (r *Recorder) DeleteTexture(id gpu.TextureID) {
	if _, ok := r.Textures[id]; ok {
		delete(r.Textures, id)
		r.DeletedTextures++
	}
}

func (r *Recorder) FallbackTexture() gpu.TextureID { return Fallback }

// DrawMesh records the draw. Uniforms are read from p when p is a *Recorder.
func (r *Recorder) DrawMesh(b gpu.Buffers, p gpu.Program, tex, aux gpu.TextureID) {
	if tex == gpu.NoTexture {
		tex = Fallback
	}
	d := Draw{Buffers: b, Texture: tex, Aux: aux}
	if pr, ok := p.(*Recorder); ok {
		d.Model = pr.Mat4s["model"]
		d.Material = pr.Vec4s["material"]
	}
	p.Use()
	r.Draws = append(r.Draws, d)
	r.Calls = append(r.Calls, "draw")
	p.Unuse()
}
