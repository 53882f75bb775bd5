package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func vecClose(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	assert.True(t, want.ApproxEqualThreshold(got, 1e-4), "want %v got %v", want, got)
}

func TestFlyCameraDefaultsLookDownNegativeZ(t *testing.T) {
	c := NewFlyCamera(mgl32.Vec3{0, 1, 5})
	vecClose(t, mgl32.Vec3{0, 0, -1}, c.Forward())
	vecClose(t, mgl32.Vec3{1, 0, 0}, c.Right())

	// The view matrix maps a point straight ahead onto the -Z axis.
	p := mgl32.TransformCoordinate(mgl32.Vec3{0, 1, 0}, c.ViewMatrix())
	vecClose(t, mgl32.Vec3{0, 0, -5}, p)
}

func TestFlyCameraMoves(t *testing.T) {
	c := NewFlyCamera(mgl32.Vec3{})
	c.Speed = 2

	c.Update(Controls{Forward: 1}, 0.5)
	vecClose(t, mgl32.Vec3{0, 0, -1}, c.Pos)

	c.Update(Controls{Right: 1}, 1)
	vecClose(t, mgl32.Vec3{2, 0, -1}, c.Pos)

	c.Update(Controls{Up: -1}, 1)
	vecClose(t, mgl32.Vec3{2, -2, -1}, c.Pos)

	// Diagonal input is not faster than straight input.
	c.Pos = mgl32.Vec3{}
	c.Update(Controls{Forward: 1, Right: 1}, 1)
	assert.InDelta(t, 2, c.Pos.Len(), 1e-4)
}

func TestFlyCameraPitchClamp(t *testing.T) {
	c := NewFlyCamera(mgl32.Vec3{})
	c.Update(Controls{LookY: -1e6}, 0)
	assert.InDelta(t, c.MaxPitch, c.Pitch, 1e-6)
	c.Update(Controls{LookY: 1e6}, 0)
	assert.InDelta(t, -c.MaxPitch, c.Pitch, 1e-6)
}

func TestFlyCameraYawTurnsRight(t *testing.T) {
	c := NewFlyCamera(mgl32.Vec3{})
	c.Yaw = mgl32.DegToRad(90)
	vecClose(t, mgl32.Vec3{1, 0, 0}, c.Forward())
	vecClose(t, mgl32.Vec3{0, 0, 1}, c.Right())
}

func TestOrbitCamera(t *testing.T) {
	c := NewOrbitCamera()
	c.RotationX = 0
	c.Distance = 10
	vecClose(t, mgl32.Vec3{0, 0, 10}, c.Position())

	c.HandleZoom(1)
	assert.InDelta(t, 9, c.Distance, 1e-4)

	c.HandleZoom(-1e6)
	assert.Equal(t, c.MaxDistance, c.Distance)

	c.HandleDrag(0, 1e6)
	assert.Equal(t, c.MaxPitch, c.RotationX)
}

func TestOrbitFitToBounds(t *testing.T) {
	c := NewOrbitCamera()
	c.FitToBounds(mgl32.Vec3{-2, 0, -2}, mgl32.Vec3{2, 2, 2})
	vecClose(t, mgl32.Vec3{0, 1, 0}, c.Center)
	assert.Greater(t, c.Distance, float32(4))
}

func TestLensProjection(t *testing.T) {
	l := DefaultLens()
	p := l.Projection(16.0 / 9.0)

	near := mgl32.TransformCoordinate(mgl32.Vec3{0, 0, -l.Near}, p)
	far := mgl32.TransformCoordinate(mgl32.Vec3{0, 0, -l.Far}, p)
	assert.InDelta(t, -1, near[2], 1e-3)
	assert.InDelta(t, 1, far[2], 1e-3)

	assert.Equal(t, l.Projection(1), l.Projection(0))
}
