// Package lighting provides the directional sun light.
package lighting

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/scenedemo/internal/engine/gpu"
)

// SunDirection converts azimuth/elevation angles in degrees to a unit vector
// pointing towards the sun. Azimuth is rotation around Y measured from +Z,
// elevation is the angle above the horizon.
func SunDirection(azimuth, elevation float32) mgl32.Vec3 {
	azRad := float64(azimuth) * math.Pi / 180.0
	elRad := float64(elevation) * math.Pi / 180.0

	x := float32(math.Cos(elRad) * math.Sin(azRad))
	y := float32(math.Sin(elRad))
	z := float32(math.Cos(elRad) * math.Cos(azRad))

	return mgl32.Vec3{x, y, z}
}

// Sun is a directional light with an ambient term.
type Sun struct {
	Azimuth   float32
	Elevation float32
	Ambient   mgl32.Vec3
	Diffuse   mgl32.Vec3
}

// DefaultSun is a late-morning sun with soft ambient light.
func DefaultSun() Sun {
	return Sun{
		Azimuth:   45,
		Elevation: 50,
		Ambient:   mgl32.Vec3{0.25, 0.25, 0.28},
		Diffuse:   mgl32.Vec3{0.9, 0.88, 0.82},
	}
}

// ToSun returns the unit vector from the scene towards the sun.
func (s Sun) ToSun() mgl32.Vec3 {
	return SunDirection(s.Azimuth, s.Elevation)
}

// Apply writes the light uniforms. lightDir is the direction light travels.
func (s Sun) Apply(p gpu.Program) {
	p.SetVec3("lightDir", s.ToSun().Mul(-1))
	p.SetVec3("lightColor", s.Diffuse)
	p.SetVec3("ambientColor", s.Ambient)
}
