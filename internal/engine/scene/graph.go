// Package scene holds the scene graph: an arena of nodes addressed by NodeID,
// each with a transform, an optional shared mesh, and child links.
package scene

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/scenedemo/internal/engine/gpu"
	"github.com/Faultbox/scenedemo/internal/engine/mesh"
	"github.com/Faultbox/scenedemo/internal/logger"
)

var (
	ErrInvalidNode = errors.New("scene: invalid node")
	ErrChildIndex  = errors.New("scene: child index out of range")
	ErrCycle       = errors.New("scene: child is an ancestor of parent")
	ErrHasParent   = errors.New("scene: node already has a parent")
	ErrNoMesh      = errors.New("scene: node has no mesh")
)

// DefaultMaterial is assigned to new nodes: white tint, shininess 32.
var DefaultMaterial = mgl32.Vec4{1, 1, 1, 32}

// Graph owns every node. It is not safe for concurrent use.
type Graph struct {
	nodes []Node
	stack []frame
}

type frame struct {
	id     NodeID
	parent mgl32.Mat4
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{}
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// NewNode adds a root node. m may be nil for a grouping node; otherwise the
// graph takes over the caller's reference. base is the import-time transform.
func (g *Graph) NewNode(name string, m *mesh.Mesh, base mgl32.Mat4) NodeID {
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, Node{
		name:      name,
		mesh:      m,
		transform: IdentityTransform(),
		base:      base,
		material:  DefaultMaterial,
		parent:    NoNode,
	})
	g.nodes[id].rebuild()
	return id
}

func (g *Graph) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(g.nodes)
}

// Node returns the node for id.
func (g *Graph) Node(id NodeID) (*Node, error) {
	if !g.valid(id) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidNode, id)
	}
	return &g.nodes[id], nil
}

// Find returns the first node with the given name.
func (g *Graph) Find(name string) (NodeID, bool) {
	for i := range g.nodes {
		if g.nodes[i].name == name {
			return NodeID(i), true
		}
	}
	return NoNode, false
}

// Roots returns every node without a parent, in creation order.
func (g *Graph) Roots() []NodeID {
	var roots []NodeID
	for i := range g.nodes {
		if g.nodes[i].parent == NoNode {
			roots = append(roots, NodeID(i))
		}
	}
	return roots
}

// AddChild appends child to parent's children. child must be a root and must
// not be parent or one of its ancestors.
func (g *Graph) AddChild(parent, child NodeID) error {
	if !g.valid(parent) {
		return fmt.Errorf("%w: parent %d", ErrInvalidNode, parent)
	}
	if !g.valid(child) {
		return fmt.Errorf("%w: child %d", ErrInvalidNode, child)
	}
	if g.nodes[child].parent != NoNode {
		return fmt.Errorf("%w: %q", ErrHasParent, g.nodes[child].name)
	}
	for a := parent; a != NoNode; a = g.nodes[a].parent {
		if a == child {
			return fmt.Errorf("%w: %q under %q", ErrCycle, g.nodes[child].name, g.nodes[parent].name)
		}
	}
	g.nodes[parent].children = append(g.nodes[parent].children, child)
	g.nodes[child].parent = parent
	return nil
}

// ChildCount returns the number of direct children.
func (g *Graph) ChildCount(parent NodeID) (int, error) {
	n, err := g.Node(parent)
	if err != nil {
		return 0, err
	}
	return len(n.children), nil
}

// Child returns the idx-th child of parent in insertion order.
func (g *Graph) Child(parent NodeID, idx int) (NodeID, error) {
	n, err := g.Node(parent)
	if err != nil {
		return NoNode, err
	}
	if idx < 0 || idx >= len(n.children) {
		return NoNode, fmt.Errorf("%w: %d of %d on %q", ErrChildIndex, idx, len(n.children), n.name)
	}
	return n.children[idx], nil
}

// walk visits id and its descendants in pre-order, passing each node's
// world matrix given the parent's world matrix.
func (g *Graph) walk(id NodeID, parent mgl32.Mat4, visit func(NodeID, *Node, mgl32.Mat4)) {
	g.stack = append(g.stack[:0], frame{id: id, parent: parent})
	for len(g.stack) > 0 {
		f := g.stack[len(g.stack)-1]
		g.stack = g.stack[:len(g.stack)-1]

		n := &g.nodes[f.id]
		world := f.parent.Mul4(n.local)
		visit(f.id, n, world)

		// Reverse push keeps children in insertion order.
		for i := len(n.children) - 1; i >= 0; i-- {
			g.stack = append(g.stack, frame{id: n.children[i], parent: world})
		}
	}
}

// Render draws root and its subtree with p. For every node with a mesh the
// world matrix goes to the "model" uniform and the node's material to
// "material" before the draw. aux is bound to the shadow texture unit.
func (g *Graph) Render(root NodeID, p gpu.Program, aux gpu.TextureID) error {
	if !g.valid(root) {
		return fmt.Errorf("%w: %d", ErrInvalidNode, root)
	}
	g.walk(root, mgl32.Ident4(), func(_ NodeID, n *Node, world mgl32.Mat4) {
		if n.mesh == nil {
			return
		}
		p.SetMat4("model", world)
		p.SetVec4("material", n.material)
		n.mesh.Render(p, aux)
	})
	return nil
}

// WorldMatrix composes the local matrices from the root down to id.
func (g *Graph) WorldMatrix(id NodeID) (mgl32.Mat4, error) {
	if !g.valid(id) {
		return mgl32.Ident4(), fmt.Errorf("%w: %d", ErrInvalidNode, id)
	}
	world := g.nodes[id].local
	for p := g.nodes[id].parent; p != NoNode; p = g.nodes[p].parent {
		world = g.nodes[p].local.Mul4(world)
	}
	return world, nil
}

// SetMaterial assigns material to id and every descendant, replacing any
// material set on them before.
func (g *Graph) SetMaterial(id NodeID, material mgl32.Vec4) error {
	if !g.valid(id) {
		return fmt.Errorf("%w: %d", ErrInvalidNode, id)
	}
	g.walk(id, mgl32.Ident4(), func(_ NodeID, n *Node, _ mgl32.Mat4) {
		n.material = material
	})
	return nil
}

// AddTexture loads an image and appends it to the node's mesh. Every node
// sharing the mesh sees the new map.
func (g *Graph) AddTexture(id NodeID, path string, usage mesh.Usage) error {
	n, err := g.Node(id)
	if err != nil {
		return err
	}
	if n.mesh == nil {
		return fmt.Errorf("%w: %q", ErrNoMesh, n.name)
	}
	return n.mesh.AddTexture(path, usage)
}

// CycleTexture advances the active map of the node's mesh.
func (g *Graph) CycleTexture(id NodeID) error {
	n, err := g.Node(id)
	if err != nil {
		return err
	}
	if n.mesh == nil {
		return fmt.Errorf("%w: %q", ErrNoMesh, n.name)
	}
	n.mesh.CycleTexture()
	logger.Debug("texture cycled",
		zap.String("node", n.name),
		zap.Int("active", n.mesh.ActiveIndex()),
	)
	return nil
}

// Clone copies id and its subtree. Copies share meshes with the originals.
// The new root has no parent.
func (g *Graph) Clone(id NodeID) (NodeID, error) {
	if !g.valid(id) {
		return NoNode, fmt.Errorf("%w: %d", ErrInvalidNode, id)
	}
	return g.clone(id, (*mesh.Mesh).Retain), nil
}

// Instance copies id and its subtree like Clone, but each copy gets a fork
// of its mesh: the GPU buffers are shared while texture maps and the active
// texture belong to the copy.
func (g *Graph) Instance(id NodeID) (NodeID, error) {
	if !g.valid(id) {
		return NoNode, fmt.Errorf("%w: %d", ErrInvalidNode, id)
	}
	return g.clone(id, (*mesh.Mesh).Fork), nil
}

func (g *Graph) clone(id NodeID, share func(*mesh.Mesh) *mesh.Mesh) NodeID {
	src := g.nodes[id]
	if src.mesh != nil {
		src.mesh = share(src.mesh)
	}
	dst := NodeID(len(g.nodes))
	src.parent = NoNode
	src.children = nil
	g.nodes = append(g.nodes, src)

	for _, c := range g.nodes[id].children {
		cc := g.clone(c, share)
		g.nodes[cc].parent = dst
		g.nodes[dst].children = append(g.nodes[dst].children, cc)
	}
	return dst
}

// Bounds returns the world-space axis-aligned box around the given
// subtrees. Each mesh contributes its local box transformed to world space,
// which can be looser than the vertices under rotation. ok is false when no
// node under roots has vertices.
func (g *Graph) Bounds(roots ...NodeID) (lo, hi mgl32.Vec3, ok bool) {
	for _, r := range roots {
		if !g.valid(r) {
			continue
		}
		g.walk(r, g.parentWorld(r), func(_ NodeID, n *Node, world mgl32.Mat4) {
			if n.mesh == nil {
				return
			}
			mlo, mhi, has := n.mesh.Bounds()
			if !has {
				return
			}
			for c := 0; c < 8; c++ {
				corner := mlo
				for i := 0; i < 3; i++ {
					if c&(1<<i) != 0 {
						corner[i] = mhi[i]
					}
				}
				p := mgl32.TransformCoordinate(corner, world)
				if !ok {
					lo, hi, ok = p, p, true
					continue
				}
				for i := 0; i < 3; i++ {
					lo[i] = min(lo[i], p[i])
					hi[i] = max(hi[i], p[i])
				}
			}
		})
	}
	return lo, hi, ok
}

func (g *Graph) parentWorld(id NodeID) mgl32.Mat4 {
	p := g.nodes[id].parent
	if p == NoNode {
		return mgl32.Ident4()
	}
	w, _ := g.WorldMatrix(p)
	return w
}

// Destroy releases every node's mesh reference and empties the graph.
func (g *Graph) Destroy() {
	for i := range g.nodes {
		if m := g.nodes[i].mesh; m != nil {
			m.Release()
		}
	}
	g.nodes = nil
	g.stack = nil
}
