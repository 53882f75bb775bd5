// Package skybox draws a cube-mapped sky behind the scene.
package skybox

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/scenedemo/internal/engine/asset"
	"github.com/Faultbox/scenedemo/internal/engine/gpu"
	"github.com/Faultbox/scenedemo/internal/engine/texture"
	"github.com/Faultbox/scenedemo/internal/logger"
)

// Face order matches GL_TEXTURE_CUBE_MAP_POSITIVE_X + i.
const (
	PosX = iota
	NegX
	PosY
	NegY
	PosZ
	NegZ
	FaceCount
)

// Faces holds the six face image paths in cube map order.
type Faces [FaceCount]string

// cubeVertices is a unit cube as 36 triangle-list positions.
var cubeVertices = [...]float32{
	-1, 1, -1, -1, -1, -1, 1, -1, -1, 1, -1, -1, 1, 1, -1, -1, 1, -1,
	-1, -1, 1, -1, -1, -1, -1, 1, -1, -1, 1, -1, -1, 1, 1, -1, -1, 1,
	1, -1, -1, 1, -1, 1, 1, 1, 1, 1, 1, 1, 1, 1, -1, 1, -1, -1,
	-1, -1, 1, -1, 1, 1, 1, 1, 1, 1, 1, 1, 1, -1, 1, -1, -1, 1,
	-1, 1, -1, 1, 1, -1, 1, 1, 1, 1, 1, 1, -1, 1, 1, -1, 1, -1,
	-1, -1, -1, -1, -1, 1, 1, -1, -1, 1, -1, -1, -1, -1, 1, 1, -1, 1,
}

// LoadFaces decodes the six faces. All faces must be square and the same size.
func LoadFaces(paths Faces) ([FaceCount]*image.RGBA, error) {
	var out [FaceCount]*image.RGBA
	size := 0
	for i, p := range paths {
		img, err := texture.Load(p)
		if err != nil {
			return out, err
		}
		b := img.Bounds()
		if b.Dx() != b.Dy() {
			return out, asset.Formatf("skybox", p, "face is %dx%d, want square", b.Dx(), b.Dy())
		}
		if i == 0 {
			size = b.Dx()
		} else if b.Dx() != size {
			return out, asset.Formatf("skybox", p, "face is %d px, first face is %d px", b.Dx(), size)
		}
		out[i] = texture.ToRGBA(img)
	}
	return out, nil
}

// Skybox is a cube map and the cube it is drawn on.
type Skybox struct {
	vao     uint32
	vbo     uint32
	cubeMap uint32
}

// Load reads six face images and uploads them.
func Load(paths Faces) (*Skybox, error) {
	faces, err := LoadFaces(paths)
	if err != nil {
		return nil, err
	}
	sb, err := New(faces)
	if err != nil {
		return nil, asset.Wrap("skybox", paths[0], fmt.Errorf("%w: %w", asset.ErrUpload, err))
	}
	logger.Info("skybox loaded", zap.Int("size", faces[0].Bounds().Dx()))
	return sb, nil
}

// New uploads decoded faces into a cube map.
func New(faces [FaceCount]*image.RGBA) (*Skybox, error) {
	sb := &Skybox{}

	gl.GenVertexArrays(1, &sb.vao)
	gl.BindVertexArray(sb.vao)
	gl.GenBuffers(1, &sb.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, sb.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(cubeVertices)*4, unsafe.Pointer(&cubeVertices[0]), gl.STATIC_DRAW)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
	gl.EnableVertexAttribArray(0)
	gl.BindVertexArray(0)

	gl.GenTextures(1, &sb.cubeMap)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, sb.cubeMap)
	for i, img := range faces {
		w, h := int32(img.Bounds().Dx()), int32(img.Bounds().Dy())
		gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(i), 0, gl.RGBA, w, h, 0,
			gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))
	}
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)

	if code := gl.GetError(); code != gl.NO_ERROR {
		sb.Destroy()
		return nil, fmt.Errorf("cube map upload: GL error 0x%x", code)
	}
	return sb, nil
}

// Draw renders the cube with p. Depth writes are off and the depth test is
// LEQUAL so the sky only fills pixels nothing else covered.
func (sb *Skybox) Draw(p gpu.Program) {
	gl.DepthMask(false)
	gl.DepthFunc(gl.LEQUAL)

	p.SetInt("skybox", gpu.UnitDiffuse)
	p.Use()
	gl.BindVertexArray(sb.vao)
	gl.ActiveTexture(gl.TEXTURE0 + gpu.UnitDiffuse)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, sb.cubeMap)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(cubeVertices)/3))
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)
	gl.BindVertexArray(0)
	p.Unuse()

	gl.DepthFunc(gl.LESS)
	gl.DepthMask(true)
}

// Destroy frees the cube map and buffers.
func (sb *Skybox) Destroy() {
	if sb.cubeMap != 0 {
		gl.DeleteTextures(1, &sb.cubeMap)
		sb.cubeMap = 0
	}
	if sb.vbo != 0 {
		gl.DeleteBuffers(1, &sb.vbo)
		sb.vbo = 0
	}
	if sb.vao != 0 {
		gl.DeleteVertexArrays(1, &sb.vao)
		sb.vao = 0
	}
}
