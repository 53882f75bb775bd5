package gpu

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/scenedemo/internal/engine/texture"
	"github.com/Faultbox/scenedemo/internal/logger"
)

// GL implements Backend on the current OpenGL 4.1 core context.
// It must be created after gl.Init and used only from the thread owning the context.
type GL struct {
	fallback TextureID
}

// NewGL creates the backend and uploads the fallback checkerboard.
func NewGL() (*GL, error) {
	b := &GL{}
	id, err := b.UploadTexture(texture.DefaultCheckerboard())
	if err != nil {
		return nil, fmt.Errorf("fallback texture: %w", err)
	}
	b.fallback = id
	return b, nil
}

// UploadMesh uploads interleaved vertices and triangle indices into a new VAO.
func (b *GL) UploadMesh(vertices []Vertex, indices []uint32) (Buffers, error) {
	if len(vertices) == 0 || len(indices) == 0 {
		return Buffers{}, fmt.Errorf("empty mesh: %d vertices, %d indices", len(vertices), len(indices))
	}

	var buf Buffers
	gl.GenVertexArrays(1, &buf.VAO)
	gl.BindVertexArray(buf.VAO)

	gl.GenBuffers(1, &buf.VBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, buf.VBO)
	vertexSize := int(unsafe.Sizeof(Vertex{}))
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*vertexSize, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	// Position
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, int32(vertexSize), 0)
	gl.EnableVertexAttribArray(0)
	// Normal
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, int32(vertexSize), 3*4)
	gl.EnableVertexAttribArray(1)
	// TexCoord
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, int32(vertexSize), 6*4)
	gl.EnableVertexAttribArray(2)

	gl.GenBuffers(1, &buf.EBO)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, buf.EBO)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, unsafe.Pointer(&indices[0]), gl.STATIC_DRAW)

	buf.Count = int32(len(indices))
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	if code := gl.GetError(); code != gl.NO_ERROR {
		b.DeleteMesh(buf)
		return Buffers{}, fmt.Errorf("mesh upload: GL error 0x%x", code)
	}
	return buf, nil
}

// DeleteMesh frees the VAO and both buffers.
func (b *GL) DeleteMesh(buf Buffers) {
	if buf.VAO != 0 {
		gl.DeleteVertexArrays(1, &buf.VAO)
	}
	if buf.VBO != 0 {
		gl.DeleteBuffers(1, &buf.VBO)
	}
	if buf.EBO != 0 {
		gl.DeleteBuffers(1, &buf.EBO)
	}
}

// UploadTexture uploads img with mipmaps and repeat wrapping.
func (b *GL) UploadTexture(img image.Image) (TextureID, error) {
	rgba := texture.ToRGBA(img)
	w, h := int32(rgba.Bounds().Dx()), int32(rgba.Bounds().Dy())
	if w == 0 || h == 0 {
		return NoTexture, fmt.Errorf("texture has zero size")
	}

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	if texture.Channels(img) == 3 {
		pix := texture.PackRGB(rgba)
		gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGB, w, h, 0, gl.RGB, gl.UNSIGNED_BYTE, unsafe.Pointer(&pix[0]))
		gl.PixelStorei(gl.UNPACK_ALIGNMENT, 4)
	} else {
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, w, h, 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&rgba.Pix[0]))
	}
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if code := gl.GetError(); code != gl.NO_ERROR {
		gl.DeleteTextures(1, &id)
		return NoTexture, fmt.Errorf("texture upload: GL error 0x%x", code)
	}
	logger.Debug("texture uploaded", zap.Uint32("id", id), zap.Int32("width", w), zap.Int32("height", h))
	return TextureID(id), nil
}

// DeleteTexture frees a texture. The fallback is never deleted this way.
func (b *GL) DeleteTexture(id TextureID) {
	if id == NoTexture || id == b.fallback {
		return
	}
	t := uint32(id)
	gl.DeleteTextures(1, &t)
}

// FallbackTexture returns the checkerboard bound in place of NoTexture.
func (b *GL) FallbackTexture() TextureID {
	return b.fallback
}

// DrawMesh issues one indexed draw with bind/unbind bracketing so no binding
// state leaks into the next draw.
func (b *GL) DrawMesh(buf Buffers, p Program, tex, aux TextureID) {
	if !buf.Valid() {
		return
	}
	if tex == NoTexture {
		tex = b.fallback
	}

	gl.BindVertexArray(buf.VAO)
	gl.ActiveTexture(gl.TEXTURE0 + UnitDiffuse)
	gl.BindTexture(gl.TEXTURE_2D, uint32(tex))
	gl.ActiveTexture(gl.TEXTURE0 + UnitShadow)
	gl.BindTexture(gl.TEXTURE_2D, uint32(aux))

	p.Use()
	gl.DrawElements(gl.TRIANGLES, buf.Count, gl.UNSIGNED_INT, nil)
	p.Unuse()

	gl.BindVertexArray(0)
	gl.ActiveTexture(gl.TEXTURE0 + UnitDiffuse)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.ActiveTexture(gl.TEXTURE0 + UnitShadow)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.ActiveTexture(gl.TEXTURE0)
}

// Destroy frees the fallback texture.
func (b *GL) Destroy() {
	if b.fallback != NoTexture {
		t := uint32(b.fallback)
		gl.DeleteTextures(1, &t)
		b.fallback = NoTexture
	}
}
