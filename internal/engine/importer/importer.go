// Package importer loads glTF 2.0 models (.gltf and .glb) into the scene graph.
package importer

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/scenedemo/internal/engine/asset"
	"github.com/Faultbox/scenedemo/internal/engine/gpu"
	"github.com/Faultbox/scenedemo/internal/engine/mesh"
	"github.com/Faultbox/scenedemo/internal/engine/scene"
	"github.com/Faultbox/scenedemo/internal/logger"
)

// Options controls post-processing of imported geometry.
type Options struct {
	// FlipUV mirrors V, for textures authored with a bottom-left origin.
	FlipUV bool
	// GenNormals computes smooth normals for primitives that have none.
	GenNormals bool
	// GenUV generates spherical texture coordinates for primitives that have none.
	GenUV bool
}

// DefaultOptions generates missing normals and leaves UVs alone.
func DefaultOptions() Options {
	return Options{GenNormals: true}
}

// Load imports every triangle primitive in the model at path. The first
// primitive becomes a new root node and the others its children, each with
// the glTF node transform as its base matrix. Base color textures are loaded
// relative to the model file; a texture that fails to load is logged and the
// primitive draws with the fallback texture.
func Load(g *scene.Graph, backend gpu.Backend, path string, opts Options) (scene.NodeID, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return scene.NoNode, asset.Wrap("import", path, err)
		}
		return scene.NoNode, asset.Formatf("import", path, "%v", err)
	}

	l := &loader{
		doc:     doc,
		path:    path,
		opts:    opts,
		backend: backend,
		graph:   g,
		root:    scene.NoNode,
		log:     logger.Named("importer").With(zap.String("path", path)),
	}
	if err := l.load(); err != nil {
		l.release()
		return scene.NoNode, err
	}
	if len(l.parts) == 0 {
		return scene.NoNode, asset.Formatf("import", path, "no triangle primitives")
	}
	if err := l.attach(); err != nil {
		return scene.NoNode, err
	}
	l.log.Info("model imported", zap.Int("nodes", len(l.parts)))
	return l.root, nil
}

type loader struct {
	doc     *gltf.Document
	path    string
	opts    Options
	backend gpu.Backend
	graph   *scene.Graph
	log     *zap.Logger

	root  scene.NodeID
	parts []part
}

// part is one loaded primitive waiting to become a node.
type part struct {
	name  string
	mesh  *mesh.Mesh
	base  mgl32.Mat4
	color mgl32.Vec3
}

// instance is one placement of a glTF mesh.
type instance struct {
	mesh  int
	name  string
	world mgl32.Mat4
}

func (l *loader) load() error {
	for _, inst := range l.instances() {
		m := l.doc.Meshes[inst.mesh]
		for pi, prim := range m.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				l.log.Warn("skipping non-triangle primitive",
					zap.String("mesh", inst.name), zap.Int("primitive", pi))
				continue
			}
			if err := l.addPrimitive(inst, pi, prim); err != nil {
				return err
			}
		}
	}
	return nil
}

// instances lists mesh placements in scene order. Documents without nodes
// get one identity placement per mesh.
func (l *loader) instances() []instance {
	var out []instance
	var walk func(idx int, parent mgl32.Mat4, depth int)
	walk = func(idx int, parent mgl32.Mat4, depth int) {
		if idx < 0 || idx >= len(l.doc.Nodes) || depth > len(l.doc.Nodes) {
			return
		}
		n := l.doc.Nodes[idx]
		world := parent.Mul4(nodeMatrix(n))
		if n.Mesh != nil && *n.Mesh < len(l.doc.Meshes) {
			name := n.Name
			if name == "" {
				name = l.doc.Meshes[*n.Mesh].Name
			}
			out = append(out, instance{mesh: *n.Mesh, name: name, world: world})
		}
		for _, c := range n.Children {
			walk(c, world, depth+1)
		}
	}

	for _, root := range l.sceneRoots() {
		walk(root, mgl32.Ident4(), 0)
	}
	if len(out) > 0 {
		return out
	}
	for i, m := range l.doc.Meshes {
		out = append(out, instance{mesh: i, name: m.Name, world: mgl32.Ident4()})
	}
	return out
}

func (l *loader) sceneRoots() []int {
	if len(l.doc.Scenes) > 0 {
		s := 0
		if l.doc.Scene != nil && *l.doc.Scene < len(l.doc.Scenes) {
			s = *l.doc.Scene
		}
		return l.doc.Scenes[s].Nodes
	}
	// No scenes: every node that is nobody's child is a root.
	child := make(map[int]bool)
	for _, n := range l.doc.Nodes {
		for _, c := range n.Children {
			child[c] = true
		}
	}
	var roots []int
	for i := range l.doc.Nodes {
		if !child[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

// nodeMatrix returns a node's local transform: its matrix when set, otherwise
// T·R·S with glTF defaults for missing parts.
func nodeMatrix(n *gltf.Node) mgl32.Mat4 {
	var zero [16]float64
	if n.Matrix != zero && n.Matrix != identity64 {
		var m mgl32.Mat4
		for i, v := range n.Matrix {
			m[i] = float32(v)
		}
		return m
	}

	t := n.Translation
	r := n.Rotation
	s := n.Scale
	if r == [4]float64{} {
		r = [4]float64{0, 0, 0, 1}
	}
	if s == [3]float64{} {
		s = [3]float64{1, 1, 1}
	}
	q := mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}
	return mgl32.Translate3D(float32(t[0]), float32(t[1]), float32(t[2])).
		Mul4(q.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(float32(s[0]), float32(s[1]), float32(s[2])))
}

var identity64 = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

func (l *loader) addPrimitive(inst instance, pi int, prim *gltf.Primitive) error {
	vertices, faces, err := l.readGeometry(prim)
	if err != nil {
		return asset.Formatf("import", l.path, "mesh %q primitive %d: %v", inst.name, pi, err)
	}

	m, err := mesh.New(l.backend, vertices, faces, nil)
	if errors.Is(err, asset.ErrUpload) {
		return asset.Wrap("import", l.path, err)
	}
	if err != nil {
		return asset.Formatf("import", l.path, "mesh %q primitive %d: %v", inst.name, pi, err)
	}

	if src, ok := baseColorImage(l.doc, prim); ok {
		img, name, err := loadImage(l.doc, l.path, src)
		if err == nil {
			err = m.AddTextureImage(img, name, mesh.Diffuse)
		}
		if err != nil {
			l.log.Warn("base color texture unavailable", zap.String("image", name), zap.Error(err))
		}
	}

	name := inst.name
	if len(l.doc.Meshes[inst.mesh].Primitives) > 1 {
		name = fmt.Sprintf("%s.%d", inst.name, pi)
	}
	c := baseColorFactor(l.doc, prim)
	l.parts = append(l.parts, part{
		name:  name,
		mesh:  m,
		base:  inst.world,
		color: mgl32.Vec3{float32(c[0]), float32(c[1]), float32(c[2])},
	})
	return nil
}

// attach adds the loaded parts to the graph: the first as a new root, the
// rest as its children. Child bases are made relative to the root so each
// part keeps its glTF world placement.
func (l *loader) attach() error {
	rootInv := mgl32.Ident4()
	if len(l.parts) > 0 {
		if b := l.parts[0].base; b.Det() != 0 {
			rootInv = b.Inv()
		}
	}
	for i, p := range l.parts {
		base := p.base
		if i > 0 {
			base = rootInv.Mul4(base)
		}
		id := l.graph.NewNode(p.name, p.mesh, base)
		mat := scene.DefaultMaterial
		mat[0], mat[1], mat[2] = p.color[0], p.color[1], p.color[2]
		if err := l.graph.SetMaterial(id, mat); err != nil {
			return err
		}
		if l.root == scene.NoNode {
			l.root = id
			continue
		}
		if err := l.graph.AddChild(l.root, id); err != nil {
			return err
		}
	}
	return nil
}

func (l *loader) readGeometry(prim *gltf.Primitive) ([]gpu.Vertex, []uint32, error) {
	doc := l.doc
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok || posIdx >= len(doc.Accessors) {
		return nil, nil, fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, nil, fmt.Errorf("read positions: %w", err)
	}

	vertices := make([]gpu.Vertex, len(positions))
	for i, p := range positions {
		vertices[i].Position = p
	}

	var faces []uint32
	if prim.Indices != nil && *prim.Indices < len(doc.Accessors) {
		faces, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, nil, fmt.Errorf("read indices: %w", err)
		}
	} else {
		faces = make([]uint32, len(positions))
		for i := range faces {
			faces[i] = uint32(i)
		}
	}

	hasNormals := false
	if idx, ok := prim.Attributes[gltf.NORMAL]; ok && idx < len(doc.Accessors) {
		normals, err := modeler.ReadNormal(doc, doc.Accessors[idx], nil)
		if err != nil {
			return nil, nil, fmt.Errorf("read normals: %w", err)
		}
		for i := 0; i < len(vertices) && i < len(normals); i++ {
			vertices[i].Normal = normals[i]
		}
		hasNormals = len(normals) == len(vertices)
	}
	if !hasNormals && l.opts.GenNormals {
		SmoothNormals(vertices, faces[:len(faces)/3*3])
	}

	hasUV := false
	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok && idx < len(doc.Accessors) {
		uvs, err := modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
		if err != nil {
			return nil, nil, fmt.Errorf("read texture coordinates: %w", err)
		}
		for i := 0; i < len(vertices) && i < len(uvs); i++ {
			vertices[i].TexCoord = uvs[i]
		}
		hasUV = len(uvs) == len(vertices)
	}
	if !hasUV && l.opts.GenUV {
		SphericalUV(vertices)
	}
	if l.opts.FlipUV {
		FlipV(vertices)
	}

	return vertices, faces, nil
}

// release frees the meshes of a failed import. Nothing was added to the graph.
func (l *loader) release() {
	for _, p := range l.parts {
		p.mesh.Release()
	}
}
