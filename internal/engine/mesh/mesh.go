// Package mesh owns GPU-resident geometry and the texture maps drawn with it.
package mesh

import (
	"fmt"
	"image"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/scenedemo/internal/engine/asset"
	"github.com/Faultbox/scenedemo/internal/engine/gpu"
	"github.com/Faultbox/scenedemo/internal/engine/texture"
	"github.com/Faultbox/scenedemo/internal/logger"
)

// Usage tags what a texture map is for.
type Usage int

const (
	Diffuse Usage = iota
	Specular
	Normal
)

func (u Usage) String() string {
	switch u {
	case Diffuse:
		return "diffuse"
	case Specular:
		return "specular"
	case Normal:
		return "normal"
	default:
		return fmt.Sprintf("usage(%d)", int(u))
	}
}

// ParseUsage parses a usage name. The empty string means Diffuse.
func ParseUsage(s string) (Usage, error) {
	switch strings.ToLower(s) {
	case "", "diffuse":
		return Diffuse, nil
	case "specular":
		return Specular, nil
	case "normal":
		return Normal, nil
	}
	return Diffuse, fmt.Errorf("unknown texture usage %q", s)
}

// Map is one texture map attached to a mesh.
type Map struct {
	ID       gpu.TextureID
	Usage    Usage
	Path     string
	Channels int
}

// geometry is the uploaded vertex/index data. It is shared by every mesh
// forked from the same upload and freed with the last of them.
type geometry struct {
	backend  gpu.Backend
	buffers  gpu.Buffers
	vertices []gpu.Vertex
	faces    []uint32
	lo, hi   mgl32.Vec3
	refs     int

	// textures counts the meshes holding each texture.
	textures map[gpu.TextureID]int
}

func (g *geometry) release() {
	g.refs--
	if g.refs > 0 {
		return
	}
	g.backend.DeleteMesh(g.buffers)
	g.buffers = gpu.Buffers{}
}

func (g *geometry) dropTexture(id gpu.TextureID) {
	g.textures[id]--
	if g.textures[id] > 0 {
		return
	}
	delete(g.textures, id)
	g.backend.DeleteTexture(id)
}

// Mesh is a drawable surface: one vertex/index buffer pair and zero or more
// texture maps, one of which is active. Meshes are shared between scene nodes
// and reference counted; GPU resources are freed when the last reference is
// released. Fork makes a mesh that draws the same buffers with its own
// texture list.
type Mesh struct {
	geo *geometry

	maps   []Map
	active int

	refs int
}

// New uploads vertices and faces and takes ownership of maps. An empty map
// list is valid; such a mesh draws with the backend's fallback texture.
// The returned mesh holds one reference.
func New(backend gpu.Backend, vertices []gpu.Vertex, faces []uint32, maps []Map) (*Mesh, error) {
	if len(faces)%3 != 0 {
		return nil, fmt.Errorf("face index count %d is not a multiple of 3", len(faces))
	}
	for _, idx := range faces {
		if int(idx) >= len(vertices) {
			return nil, fmt.Errorf("face index %d out of range (%d vertices)", idx, len(vertices))
		}
	}

	buf, err := backend.UploadMesh(vertices, faces)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", asset.ErrUpload, err)
	}

	geo := &geometry{
		backend:  backend,
		buffers:  buf,
		vertices: vertices,
		faces:    faces,
		refs:     1,
		textures: make(map[gpu.TextureID]int),
	}
	geo.lo, geo.hi = vertexBounds(vertices)
	for _, mp := range maps {
		geo.textures[mp.ID]++
	}
	return &Mesh{
		geo:  geo,
		maps: append([]Map(nil), maps...),
		refs: 1,
	}, nil
}

func vertexBounds(vertices []gpu.Vertex) (lo, hi mgl32.Vec3) {
	for i, v := range vertices {
		p := mgl32.Vec3(v.Position)
		if i == 0 {
			lo, hi = p, p
			continue
		}
		for k := 0; k < 3; k++ {
			lo[k] = min(lo[k], p[k])
			hi[k] = max(hi[k], p[k])
		}
	}
	return lo, hi
}

// Fork returns a new mesh with one reference that draws the same buffers
// and starts with a copy of m's maps and active index. Textures added to or
// cycled on either mesh afterwards do not affect the other.
func (m *Mesh) Fork() *Mesh {
	m.geo.refs++
	for _, mp := range m.maps {
		m.geo.textures[mp.ID]++
	}
	return &Mesh{
		geo:    m.geo,
		maps:   append([]Map(nil), m.maps...),
		active: m.active,
		refs:   1,
	}
}

// SharesGeometry reports whether m and o draw the same uploaded buffers.
func (m *Mesh) SharesGeometry(o *Mesh) bool { return m.geo == o.geo }

// Bounds returns the local-space box around the vertices. ok is false for a
// mesh without vertices.
func (m *Mesh) Bounds() (lo, hi mgl32.Vec3, ok bool) {
	return m.geo.lo, m.geo.hi, len(m.geo.vertices) > 0
}

// Vertices returns the CPU copy of the vertex data.
func (m *Mesh) Vertices() []gpu.Vertex { return m.geo.vertices }

// Faces returns the triangle index list.
func (m *Mesh) Faces() []uint32 { return m.geo.faces }

// Maps returns the texture maps in insertion order.
func (m *Mesh) Maps() []Map { return m.maps }

// ActiveIndex returns the index of the active map, or -1 when there are none.
func (m *Mesh) ActiveIndex() int {
	if len(m.maps) == 0 {
		return -1
	}
	return m.active
}

// ActiveTexture returns the texture bound to unit 0 when drawing,
// gpu.NoTexture when the mesh has no maps.
func (m *Mesh) ActiveTexture() gpu.TextureID {
	if len(m.maps) == 0 {
		return gpu.NoTexture
	}
	return m.maps[m.active].ID
}

// AddTexture loads the image at path and appends it as a new map.
// On failure the mesh is unchanged.
func (m *Mesh) AddTexture(path string, usage Usage) error {
	img, err := texture.Load(path)
	if err != nil {
		return err
	}
	return m.AddTextureImage(img, path, usage)
}

// AddTextureImage uploads an already decoded image and appends it as a new map.
func (m *Mesh) AddTextureImage(img image.Image, path string, usage Usage) error {
	id, err := m.geo.backend.UploadTexture(img)
	if err != nil {
		return asset.Wrap("texture", path, fmt.Errorf("%w: %w", asset.ErrUpload, err))
	}
	m.geo.textures[id]++
	m.maps = append(m.maps, Map{ID: id, Usage: usage, Path: path, Channels: texture.Channels(img)})
	logger.Debug("texture added",
		zap.String("path", path),
		zap.Stringer("usage", usage),
		zap.Int("maps", len(m.maps)),
	)
	return nil
}

// CycleTexture makes the next map active, wrapping to the first.
func (m *Mesh) CycleTexture() {
	if len(m.maps) == 0 {
		return
	}
	m.active = (m.active + 1) % len(m.maps)
}

// Render draws the mesh with p, binding the active texture to unit 0 and aux
// (typically the shadow map) to unit 1.
func (m *Mesh) Render(p gpu.Program, aux gpu.TextureID) {
	m.geo.backend.DrawMesh(m.geo.buffers, p, m.ActiveTexture(), aux)
}

// Retain adds a reference.
func (m *Mesh) Retain() *Mesh {
	m.refs++
	return m
}

// Release drops a reference. When none remain the mesh gives up its maps and
// its share of the geometry; GPU objects are deleted once no fork uses them.
func (m *Mesh) Release() {
	if m.refs <= 0 {
		return
	}
	m.refs--
	if m.refs > 0 {
		return
	}
	for _, mp := range m.maps {
		m.geo.dropTexture(mp.ID)
	}
	m.geo.release()
	m.maps = nil
	m.active = 0
}

// Refs returns the current reference count.
func (m *Mesh) Refs() int { return m.refs }
