// Package camera provides the cameras the scene can be viewed through.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Controls is one frame of camera input. Axis values are in [-1, 1];
// Look and Zoom are raw mouse deltas.
type Controls struct {
	Forward, Right, Up float32
	LookX, LookY       float32
	Zoom               float32
}

// Camera produces a view matrix from per-frame controls.
type Camera interface {
	Update(c Controls, dt float32)
	Position() mgl32.Vec3
	ViewMatrix() mgl32.Mat4
}

// Lens holds the projection parameters.
type Lens struct {
	FOV  float32 // vertical, degrees
	Near float32
	Far  float32
}

// DefaultLens is a 45 degree perspective lens.
func DefaultLens() Lens {
	return Lens{FOV: 45, Near: 0.1, Far: 500}
}

// Projection returns the perspective matrix for the given aspect ratio.
func (l Lens) Projection(aspect float32) mgl32.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return mgl32.Perspective(mgl32.DegToRad(l.FOV), aspect, l.Near, l.Far)
}

// FlyCamera moves freely. Yaw 0 looks down -Z; pitch is clamped short of
// straight up and down.
type FlyCamera struct {
	Pos   mgl32.Vec3
	Yaw   float32 // radians
	Pitch float32 // radians

	Speed       float32 // units per second
	Sensitivity float32 // radians per mouse pixel
	MaxPitch    float32
}

// NewFlyCamera creates a fly camera at pos looking down -Z.
func NewFlyCamera(pos mgl32.Vec3) *FlyCamera {
	return &FlyCamera{
		Pos:         pos,
		Speed:       5,
		Sensitivity: 0.003,
		MaxPitch:    mgl32.DegToRad(89),
	}
}

// Forward returns the unit view direction.
func (c *FlyCamera) Forward() mgl32.Vec3 {
	sy, cy := sincos(c.Yaw)
	sp, cp := sincos(c.Pitch)
	return mgl32.Vec3{sy * cp, sp, -cy * cp}
}

// Right returns the unit right vector on the XZ plane.
func (c *FlyCamera) Right() mgl32.Vec3 {
	sy, cy := sincos(c.Yaw)
	return mgl32.Vec3{cy, 0, sy}
}

// Update applies mouse look, then moves along the view direction, the
// horizontal right vector and world up.
func (c *FlyCamera) Update(in Controls, dt float32) {
	c.Yaw += in.LookX * c.Sensitivity
	c.Pitch -= in.LookY * c.Sensitivity
	c.Pitch = mgl32.Clamp(c.Pitch, -c.MaxPitch, c.MaxPitch)

	move := c.Forward().Mul(in.Forward).
		Add(c.Right().Mul(in.Right)).
		Add(mgl32.Vec3{0, in.Up, 0})
	if move.Len() > 1 {
		move = move.Normalize()
	}
	c.Pos = c.Pos.Add(move.Mul(c.Speed * dt))
}

func (c *FlyCamera) Position() mgl32.Vec3 { return c.Pos }

func (c *FlyCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Pos, c.Pos.Add(c.Forward()), mgl32.Vec3{0, 1, 0})
}

// OrbitCamera orbits around a center point.
type OrbitCamera struct {
	Center mgl32.Vec3

	// Spherical coordinates
	Distance  float32
	RotationX float32 // pitch, radians
	RotationY float32 // yaw, radians

	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	DragSensitivity float32
	ZoomSensitivity float32
}

// NewOrbitCamera creates a new orbit camera with default settings.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:        10.0,
		RotationX:       0.5,
		MinDistance:     1.0,
		MaxDistance:     200.0,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() mgl32.Vec3 {
	sx, cx := sincos(c.RotationX)
	sy, cy := sincos(c.RotationY)
	return c.Center.Add(mgl32.Vec3{cx * sy, sx, cx * cy}.Mul(c.Distance))
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Center, mgl32.Vec3{0, 1, 0})
}

// Update drags with the look deltas, zooms, and pans the center with the
// movement axes.
func (c *OrbitCamera) Update(in Controls, dt float32) {
	c.HandleDrag(in.LookX, in.LookY)
	if in.Zoom != 0 {
		c.HandleZoom(in.Zoom)
	}
	c.HandleMovement(in.Forward*dt, in.Right*dt, in.Up*dt)
}

// HandleDrag updates rotation based on mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.RotationY -= deltaX * c.DragSensitivity
	c.RotationX += deltaY * c.DragSensitivity
	c.RotationX = mgl32.Clamp(c.RotationX, c.MinPitch, c.MaxPitch)
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	c.Distance = mgl32.Clamp(c.Distance, c.MinDistance, c.MaxDistance)
}

// HandleMovement pans the center point relative to the current yaw.
func (c *OrbitCamera) HandleMovement(forward, right, up float32) {
	// Speed scales with distance for consistent feel
	speed := c.Distance

	dirX, dirZ := sincos(c.RotationY)
	rightX, rightZ := dirZ, -dirX

	// Negated so forward moves into the scene.
	c.Center[0] += (-dirX*forward + rightX*right) * speed
	c.Center[2] += (-dirZ*forward + rightZ*right) * speed
	c.Center[1] += up * speed
}

// FitToBounds centers on the box and backs off far enough to see it.
func (c *OrbitCamera) FitToBounds(lo, hi mgl32.Vec3) {
	c.Center = lo.Add(hi).Mul(0.5)
	c.Distance = mgl32.Clamp(hi.Sub(lo).Len()*1.2, c.MinDistance, c.MaxDistance)
	c.RotationX = 0.6
	c.RotationY = 0
}

func sincos(a float32) (float32, float32) {
	s, c := math.Sincos(float64(a))
	return float32(s), float32(c)
}
