package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/scenedemo/internal/engine/mesh"
)

// NodeID addresses a node inside its Graph.
type NodeID int32

// NoNode is the parent of a root node.
const NoNode NodeID = -1

// Node is one positionable, drawable entity. Its local matrix is rebuilt on
// every mutator call, so it always matches the transform fields.
//
// Pointers returned by Graph.Node are invalidated by the next NewNode or Clone
// on the same graph; hold NodeIDs across frames instead.
type Node struct {
	name      string
	mesh      *mesh.Mesh
	transform Transform
	base      mgl32.Mat4
	local     mgl32.Mat4
	material  mgl32.Vec4
	parent    NodeID
	children  []NodeID
}

func (n *Node) rebuild() {
	n.local = n.transform.Matrix(n.base)
}

// Name returns the node's name.
func (n *Node) Name() string { return n.name }

// Mesh returns the shared mesh, or nil for a grouping node.
func (n *Node) Mesh() *mesh.Mesh { return n.mesh }

// Parent returns the parent ID, NoNode for roots.
func (n *Node) Parent() NodeID { return n.parent }

// Children returns the child IDs in insertion order. The slice must not be modified.
func (n *Node) Children() []NodeID { return n.children }

func (n *Node) Position() mgl32.Vec3    { return n.transform.Position }
func (n *Node) Orientation() mgl32.Vec3 { return n.transform.Orientation }
func (n *Node) Scale() mgl32.Vec3       { return n.transform.Scale }
func (n *Node) Center() mgl32.Vec3      { return n.transform.Pivot }
func (n *Node) Transform() Transform    { return n.transform }

// Local returns the cached local matrix.
func (n *Node) Local() mgl32.Mat4 { return n.local }

// Base returns the fixed import-time transform applied before all others.
func (n *Node) Base() mgl32.Mat4 { return n.base }

// Material returns the tint/shininess vector pushed as the "material" uniform.
func (n *Node) Material() mgl32.Vec4 { return n.material }

func (n *Node) SetPosition(p mgl32.Vec3) {
	n.transform.Position = p
	n.rebuild()
}

func (n *Node) SetOrientation(o mgl32.Vec3) {
	n.transform.Orientation = o
	n.rebuild()
}

func (n *Node) SetScale(s mgl32.Vec3) {
	n.transform.Scale = s
	n.rebuild()
}

// SetCenter sets the pivot that rotation and scale are applied around.
func (n *Node) SetCenter(c mgl32.Vec3) {
	n.transform.Pivot = c
	n.rebuild()
}

// SetTransform replaces every transform field at once.
func (n *Node) SetTransform(t Transform) {
	n.transform = t
	n.rebuild()
}

// Move translates by offset.
func (n *Node) Move(offset mgl32.Vec3) {
	n.SetPosition(n.transform.Position.Add(offset))
}

// Rotate adds rotation to the Euler angles.
func (n *Node) Rotate(rotation mgl32.Vec3) {
	n.SetOrientation(n.transform.Orientation.Add(rotation))
}

// Grow multiplies the scale component-wise.
func (n *Node) Grow(growth mgl32.Vec3) {
	n.SetScale(mulElem(n.transform.Scale, growth))
}
