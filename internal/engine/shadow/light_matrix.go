package shadow

import (
	"github.com/go-gl/mathgl/mgl32"
)

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Center returns the center point of the AABB.
func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Radius returns the distance from center to corner.
func (b AABB) Radius() float32 {
	return b.Max.Sub(b.Min).Len() / 2
}

// minRadius keeps the light frustum non-degenerate for flat or empty scenes.
const minRadius = 1

// DirectionalLightMatrix computes the light view-projection for the shadow
// pass. toLight points from the scene towards the light and need not be
// normalized.
func DirectionalLightMatrix(toLight mgl32.Vec3, bounds AABB) mgl32.Mat4 {
	dir := toLight.Normalize()
	center := bounds.Center()
	radius := max(bounds.Radius(), minRadius)

	// Far enough to enclose the whole box.
	lightDistance := radius * 2.0
	lightPos := center.Add(dir.Mul(lightDistance))

	up := mgl32.Vec3{0, 1, 0}
	if abs32(dir[1]) > 0.99 {
		up = mgl32.Vec3{0, 0, 1}
	}
	view := mgl32.LookAtV(lightPos, center, up)

	padding := radius * 0.1
	halfSize := radius + padding
	near := float32(0.1)
	far := lightDistance + radius + padding

	proj := mgl32.Ortho(-halfSize, halfSize, -halfSize, halfSize, near, far)
	return proj.Mul4(view)
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
