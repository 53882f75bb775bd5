package scene

import "github.com/go-gl/mathgl/mgl32"

// Transform is a node's placement relative to its parent.
// Orientation holds Euler angles in radians: X pitch, Y yaw, Z roll.
type Transform struct {
	Position    mgl32.Vec3
	Orientation mgl32.Vec3
	Scale       mgl32.Vec3
	Pivot       mgl32.Vec3
}

// IdentityTransform returns a transform with unit scale and nothing else.
func IdentityTransform() Transform {
	return Transform{Scale: mgl32.Vec3{1, 1, 1}}
}

// Matrix composes T(position)·T(pivot)·Rz·Rx·Ry·S(scale)·T(-pivot)·base.
// The Z, X, Y rotation order is fixed.
func (t Transform) Matrix(base mgl32.Mat4) mgl32.Mat4 {
	p, c, o, s := t.Position, t.Pivot, t.Orientation, t.Scale
	return mgl32.Translate3D(p[0], p[1], p[2]).
		Mul4(mgl32.Translate3D(c[0], c[1], c[2])).
		Mul4(mgl32.HomogRotate3DZ(o[2])).
		Mul4(mgl32.HomogRotate3DX(o[0])).
		Mul4(mgl32.HomogRotate3DY(o[1])).
		Mul4(mgl32.Scale3D(s[0], s[1], s[2])).
		Mul4(mgl32.Translate3D(-c[0], -c[1], -c[2])).
		Mul4(base)
}

// mulElem multiplies two vectors component-wise.
func mulElem(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}
